package handler

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type ProfileHandler struct {
	userRepo *repository.UserRepository
	storage  *storage.MinIOClient
}

func NewProfileHandler(userRepo *repository.UserRepository, storage *storage.MinIOClient) *ProfileHandler {
	return &ProfileHandler{userRepo: userRepo, storage: storage}
}

func (h *ProfileHandler) currentUser(c *fiber.Ctx) (*domain.User, error) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"UNAUTHORIZED", "Token tidak valid",
		))
	}
	user, err := h.userRepo.FindByID(*userID)
	if err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse(
			"NOT_FOUND", "User tidak ditemukan",
		))
	}
	return user, nil
}

func toProfileDTO(user *domain.User) dto.ProfileDTO {
	p := dto.ProfileDTO{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         string(user.Role),
		Division:     user.Division,
		ProfileImage: user.ProfileImage,
		Bio:          user.Bio,
		CreatedAt:    user.CreatedAt,
	}
	if user.PendingRole != nil {
		pending := string(*user.PendingRole)
		p.PendingRole = &pending
	}
	return p
}

func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if user == nil {
		return err
	}
	return c.JSON(dto.SuccessResponse(toProfileDTO(user), ""))
}

func (h *ProfileHandler) UpdateMe(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if user == nil {
		return err
	}

	var req dto.UpdateProfileRequest
	if !parseBody(c, &req) {
		return nil
	}

	if req.Email != nil && *req.Email != user.Email {
		taken, err := h.userRepo.EmailExists(*req.Email)
		if err != nil {
			return internalError(c)
		}
		if taken {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
				"CONFLICT", "Email sudah terdaftar",
			))
		}
		user.Email = *req.Email
	}
	if req.Division != nil {
		user.Division = req.Division
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}

	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toProfileDTO(user), "Profil berhasil diperbarui"))
}

func (h *ProfileHandler) UpdatePassword(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if user == nil {
		return err
	}

	var req dto.UpdatePasswordRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"INVALID_CREDENTIALS", "Password saat ini salah",
		))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c)
	}
	user.PasswordHash = string(hash)
	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Password berhasil diubah"))
}

// RequestRole files a pending role upgrade request to be reviewed by an admin.
func (h *ProfileHandler) RequestRole(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if user == nil {
		return err
	}

	var req dto.RoleRequestRequest
	if !parseBody(c, &req) {
		return nil
	}

	requested := domain.UserRole(req.Role)
	if user.Role == domain.RoleAdmin {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Admin tidak dapat mengajukan perubahan role",
		))
	}
	if user.Role == requested {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Anda sudah memiliki role tersebut",
		))
	}

	user.PendingRole = &requested
	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toProfileDTO(user), "Permintaan role dikirim"))
}

func (h *ProfileHandler) RevokeRoleRequest(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if user == nil {
		return err
	}

	user.PendingRole = nil
	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toProfileDTO(user), "Permintaan role dibatalkan"))
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if user == nil {
		return err
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "File avatar wajib diunggah",
		))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Format gambar tidak didukung",
		))
	}

	src, err := file.Open()
	if err != nil {
		return internalError(c)
	}
	defer src.Close()

	objectKey := fmt.Sprintf("avatars/%s/%s%s", user.ID, uuid.NewString(), ext)
	contentType := file.Header.Get("Content-Type")
	if err := h.storage.PutObject(c.Context(), objectKey, src, file.Size, contentType); err != nil {
		return internalError(c)
	}

	if user.ProfileImage != nil && *user.ProfileImage != "" {
		_ = h.storage.DeleteObject(*user.ProfileImage)
	}

	user.ProfileImage = &objectKey
	if err := h.userRepo.Update(user); err != nil {
		return internalError(c)
	}

	return c.JSON(dto.SuccessResponse(dto.AvatarResponse{
		ProfileImage: h.storage.GetPublicURL(objectKey),
	}, "Avatar berhasil diperbarui"))
}
