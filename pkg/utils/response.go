package utils

import "github.com/gofiber/fiber/v2"

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func Listed(c *fiber.Ctx, data interface{}, total int) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"total":   total,
		"data":    data,
	})
}
