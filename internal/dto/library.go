package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadBookRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	FilePath    string  `json:"file_path" validate:"required"`
}

type ReviewBookRequest struct {
	Notes *string `json:"notes"`
}

type LibraryBookDTO struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	FileURL     string        `json:"file_url"`
	Status      string        `json:"status"`
	Uploader    *UserBriefDTO `json:"uploader,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}
