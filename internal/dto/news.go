package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNewsRequest struct {
	Title     string  `json:"title" validate:"required,max=255"`
	Content   string  `json:"content" validate:"required"`
	ImagePath *string `json:"image_path"`
}

type UpdateNewsRequest struct {
	Title     *string `json:"title" validate:"omitempty,max=255"`
	Content   *string `json:"content"`
	ImagePath *string `json:"image_path"`
}

type NewsDTO struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	ImagePath *string       `json:"image_path,omitempty"`
	Author    *UserBriefDTO `json:"author,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
