package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/mannaworks/manna-server/internal/config"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/middleware"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/mannaworks/manna-server/internal/services"
	"gorm.io/gorm"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type UserHandler struct {
	db             *gorm.DB
	accountService *services.AccountService
	cfg            *config.Config
}

func NewUserHandler(db *gorm.DB, accountService *services.AccountService, cfg *config.Config) *UserHandler {
	return &UserHandler{db: db, accountService: accountService, cfg: cfg}
}

func (h *UserHandler) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return c.JSON(user)
}

// UploadAvatar handles POST /users/me/avatar.
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	return h.uploadImage(c, "avatars", "avatar_url")
}

// UploadBackground handles POST /users/me/background.
func (h *UserHandler) UploadBackground(c *fiber.Ctx) error {
	return h.uploadImage(c, "backgrounds", "background_url")
}

func (h *UserHandler) uploadImage(c *fiber.Ctx, kind, column string) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Image file is required",
		})
	}

	if file.Size > maxImageSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Image size must be less than 5MB",
		})
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid image format. Only JPEG, PNG, WebP, and GIF are allowed",
		})
	}

	// Filename is derived from a sanitized identity plus a timestamp, never
	// from client-supplied names.
	filename := fmt.Sprintf("%s_%d%s", slug.Make(user.Username), time.Now().Unix(), ext)
	savePath := filepath.Join(h.cfg.UploadDir, kind, filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to save image",
		})
	}

	publicURL := fmt.Sprintf("%s/%s/%s", h.cfg.UploadBaseURL, kind, filename)
	if err := h.db.Model(user).Update(column, publicURL).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to update profile",
		})
	}

	return c.JSON(dto.UploadResponse{URL: publicURL})
}

// ChangeEmail handles POST /users/me/change-email. The change is simulated:
// validation runs, then success is reported without mutating the account.
func (h *UserHandler) ChangeEmail(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ChangeEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.accountService.ValidateEmailChange(user, req.NewEmail); err != nil {
		if errors.Is(err, services.ErrSocialAccount) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Email change request accepted"})
}

// ChangePassword handles POST /users/me/change-password. Simulated like
// ChangeEmail.
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.accountService.ValidatePasswordChange(user, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrSocialAccount) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Password change request accepted"})
}

// ProfileSettings handles PUT /users/me/profile-settings. Simulated: input is
// validated and normalized, then success is reported.
func (h *UserHandler) ProfileSettings(c *fiber.Ctx) error {
	if _, err := h.currentUser(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.ProfileSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.accountService.ValidateProfileSettings(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Profile settings saved", "phone": req.Phone})
}
