package handlers

import (
	"errors"
	"strings"

	"github.com/filevault/backend/internal/catalog"
	"github.com/filevault/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}

// parseOptionalUUID treats nil and empty string as absent.
func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	parsed, err := parseUUID(*raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// catalogError maps the catalog error taxonomy onto HTTP statuses.
// Cross-user access surfaces as 404, never 403.
func catalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return utils.Error(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrInvalidInput):
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrWrongPin):
		return utils.Error(c, fiber.StatusUnauthorized, "wrong PIN")
	case errors.Is(err, catalog.ErrConflict):
		return utils.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrStoreUnavailable):
		return utils.Error(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		return utils.Error(c, fiber.StatusInternalServerError, "internal error")
	}
}
