package dto

import (
	"time"

	"github.com/google/uuid"
)

// Profile (Me)
type ProfileDTO struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PendingRole  *string   `json:"pending_role,omitempty"`
	Division     *string   `json:"division,omitempty"`
	ProfileImage *string   `json:"profile_image,omitempty"`
	Bio          *string   `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Division *string `json:"division" validate:"omitempty,max=100"`
	Bio      *string `json:"bio" validate:"omitempty,max=2000"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Role request / revoke from account settings
type RoleRequestRequest struct {
	Role string `json:"role" validate:"required,oneof=pemateri admin"`
}

type AvatarResponse struct {
	ProfileImage string `json:"profile_image"`
}
