package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/auth"
	"github.com/kgpaabangizzul/diklat/internal/config"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	userRepo *repository.UserRepository
	authRepo *repository.AuthRepository
	jwt      *auth.JWTService
	cfg      *config.Config
}

func NewAuthHandler(userRepo *repository.UserRepository, authRepo *repository.AuthRepository, jwt *auth.JWTService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		authRepo: authRepo,
		jwt:      jwt,
		cfg:      cfg,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if !parseBody(c, &req) {
		return nil
	}

	if taken, err := h.userRepo.UsernameExists(req.Username); err != nil {
		return internalError(c)
	} else if taken {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Username sudah digunakan",
		))
	}
	if taken, err := h.userRepo.EmailExists(req.Email); err != nil {
		return internalError(c)
	} else if taken {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Email sudah terdaftar",
		))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c)
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := h.userRepo.Create(user); err != nil {
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.UserBriefDTO{
		ID:       user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	}, "Registrasi berhasil"))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Request body tidak valid",
		))
	}

	user, err := h.userRepo.FindByUsername(req.Username)
	if err != nil {
		user, err = h.userRepo.FindByEmail(req.Username)
	}
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"INVALID_CREDENTIALS", "Username atau password salah",
		))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"INVALID_CREDENTIALS", "Username atau password salah",
		))
	}

	accessToken, _, err := h.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return internalError(c)
	}

	refreshToken, tokenHash, expiresAt := h.jwt.GenerateRefreshToken()
	rt := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}
	if err := h.authRepo.CreateRefreshToken(rt); err != nil {
		return internalError(c)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: "Strict",
	})

	return c.JSON(dto.SuccessResponse(dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwt.GetAccessExpiry().Seconds()),
		User: dto.UserBriefDTO{
			ID:           user.ID,
			Username:     user.Username,
			Role:         string(user.Role),
			Division:     user.Division,
			ProfileImage: user.ProfileImage,
		},
	}, ""))
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_EXPIRED", "Refresh token tidak ada. Silakan login ulang.",
		))
	}

	tokenHash := auth.HashToken(refreshToken)
	storedToken, err := h.authRepo.FindRefreshTokenByHash(tokenHash)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_EXPIRED", "Refresh token tidak valid. Silakan login ulang.",
		))
	}

	if storedToken.IsRevoked || time.Now().After(storedToken.ExpiresAt) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"TOKEN_EXPIRED", "Refresh token telah expired. Silakan login ulang.",
		))
	}

	user, err := h.userRepo.FindByID(storedToken.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"UNAUTHORIZED", "User tidak ditemukan",
		))
	}

	accessToken, _, err := h.jwt.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return internalError(c)
	}

	return c.JSON(dto.SuccessResponse(dto.RefreshResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.jwt.GetAccessExpiry().Seconds()),
	}, ""))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	// Blacklist the current access token
	if jti, ok := c.Locals("jti").(string); ok && jti != "" {
		_ = h.authRepo.BlacklistToken(jti, userID, time.Now().Add(h.jwt.GetAccessExpiry()), "logout")
	}

	// Revoke the refresh token if present
	if refreshToken := c.Cookies("refresh_token"); refreshToken != "" {
		if stored, err := h.authRepo.FindRefreshTokenByHash(auth.HashToken(refreshToken)); err == nil {
			_ = h.authRepo.RevokeRefreshToken(stored.ID)
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})

	return c.JSON(dto.SuccessResponse(nil, "Logout berhasil"))
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"UNAUTHORIZED", "Token tidak valid",
		))
	}

	count, err := h.authRepo.RevokeAllUserTokens(*userID)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(dto.SuccessResponse(dto.LogoutAllResponse{
		SessionsTerminated: int(count),
	}, ""))
}

// SetupAdmin bootstraps the first admin account. It only works while no
// admin exists and the setup password matches the environment.
func (h *AuthHandler) SetupAdmin(c *fiber.Ctx) error {
	var req dto.SetupAdminRequest
	if !parseBody(c, &req) {
		return nil
	}

	if h.cfg.App.SetupPassword == "" || req.SetupPassword != h.cfg.App.SetupPassword {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
			"FORBIDDEN", "Setup password salah",
		))
	}

	exists, err := h.userRepo.AdminExists()
	if err != nil {
		return internalError(c)
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Akun admin sudah ada",
		))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return internalError(c)
	}

	admin := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := h.userRepo.Create(admin); err != nil {
		return internalError(c)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.UserBriefDTO{
		ID:       admin.ID,
		Username: admin.Username,
		Role:     string(admin.Role),
	}, "Admin berhasil dibuat"))
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse(
		"INTERNAL_ERROR", "Terjadi kesalahan pada server",
	))
}
