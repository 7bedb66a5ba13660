package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/filevault/backend/internal/catalog"
	"github.com/filevault/backend/internal/middleware"
	"github.com/filevault/backend/internal/models"
	"github.com/filevault/backend/internal/store"
	"github.com/filevault/backend/pkg/logger"
	"github.com/filevault/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthHandler struct {
	Store   *store.Store
	Catalog *catalog.Service
	CodeTTL time.Duration
}

func NewAuthHandler(st *store.Store, svc *catalog.Service, codeTTL time.Duration) *AuthHandler {
	return &AuthHandler{Store: st, Catalog: svc, CodeTTL: codeTTL}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email and password are required")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
	}

	user := models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        req.Email,
		PasswordHash: hash,
	}
	err = h.Store.Transact(c.Context(), func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.First(&existing, "email = ?", req.Email).Error; err == nil {
			return catalog.ErrConflict
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		if errors.Is(err, catalog.ErrConflict) {
			return utils.Error(c, fiber.StatusConflict, "email already exists")
		}
		return utils.Error(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	logger.InfoWithUser(user.ID.String(), "user_registered", map[string]interface{}{
		"email": user.Email,
	})
	return utils.Success(c, fiber.StatusCreated, fiber.Map{"token": token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.Store.DB().First(&user, "email = ?", strings.TrimSpace(req.Email)).Error; err != nil {
		return utils.Error(c, fiber.StatusUnauthorized, "bad credentials")
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return utils.Error(c, fiber.StatusUnauthorized, "bad credentials")
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating token")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"token": token})
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

// SendCode issues a short-lived password-reset code. The code itself
// is only returned directly until a mail sender is wired up.
func (h *AuthHandler) SendCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating code")
	}
	codeHash, err := utils.HashPassword(code)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing code")
	}

	expiry := time.Now().Add(h.CodeTTL)
	err = h.Store.Transact(c.Context(), func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "email = ?", strings.TrimSpace(req.Email)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return catalog.ErrNotFound
			}
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"reset_code_hash":   codeHash,
			"reset_code_expiry": expiry,
			"code_verified":     false,
		}).Error
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"devCode": code})
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) checkResetCode(user *models.User, code string) (int, string) {
	if user.ResetCodeHash == nil || user.ResetCodeExpiry == nil {
		return fiber.StatusBadRequest, "no code requested"
	}
	if user.ResetCodeExpiry.Before(time.Now()) {
		return fiber.StatusBadRequest, "code expired"
	}
	if !utils.CheckPassword(*user.ResetCodeHash, code) {
		return fiber.StatusUnauthorized, "invalid code"
	}
	return 0, ""
}

func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	var failStatus int
	var failMessage string
	err := h.Store.Transact(c.Context(), func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "email = ?", strings.TrimSpace(req.Email)).Error; err != nil {
			failStatus, failMessage = fiber.StatusBadRequest, "no code requested"
			return catalog.ErrInvalidInput
		}
		if status, message := h.checkResetCode(&user, req.Code); status != 0 {
			failStatus, failMessage = status, message
			return catalog.ErrInvalidInput
		}
		return tx.Model(&user).Update("code_verified", true).Error
	})
	if err != nil {
		if failStatus != 0 {
			return utils.Error(c, failStatus, failMessage)
		}
		return utils.Error(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"verified": true})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.NewPassword == "" {
		return utils.Error(c, fiber.StatusBadRequest, "new password is required")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed hashing password")
	}

	var failStatus int
	var failMessage string
	err = h.Store.Transact(c.Context(), func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "email = ?", strings.TrimSpace(req.Email)).Error; err != nil {
			failStatus, failMessage = fiber.StatusBadRequest, "no code requested"
			return catalog.ErrInvalidInput
		}
		if status, message := h.checkResetCode(&user, req.Code); status != 0 {
			failStatus, failMessage = status, message
			return catalog.ErrInvalidInput
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"password_hash":     hash,
			"reset_code_hash":   nil,
			"reset_code_expiry": nil,
			"code_verified":     false,
		}).Error
	})
	if err != nil {
		if failStatus != 0 {
			return utils.Error(c, failStatus, failMessage)
		}
		return utils.Error(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"updated": true})
}

type setPinRequest struct {
	Pin string `json:"pin"`
}

func (h *AuthHandler) SetPin(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req setPinRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.Catalog.SetPin(c.Context(), currentUser.ID, req.Pin); err != nil {
		return catalogError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "pin_updated", map[string]interface{}{})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"pinSet": true})
}
