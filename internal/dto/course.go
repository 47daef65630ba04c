package dto

import (
	"time"

	"github.com/google/uuid"
)

// Course
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"required,oneof=medical admin it clinical"`
}

type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,oneof=medical admin it clinical"`
}

type CourseListDTO struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	ThumbnailURL  *string   `json:"thumbnail_url,omitempty"`
	Category      string    `json:"category"`
	Instructor    *UserBriefDTO `json:"instructor,omitempty"`
	ModuleCount   int64     `json:"module_count"`
	EnrolledCount int64     `json:"enrolled_count"`
	IsEnrolled    bool      `json:"is_enrolled"`
	CreatedAt     time.Time `json:"created_at"`
}

// Module
type CreateModuleRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"order_index"`
}

type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Description *string `json:"description"`
	OrderIndex  *int    `json:"order_index"`
}

// Material
type CreateMaterialRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description"`
	Type        string  `json:"type" validate:"required,oneof=pdf video assignment"`
	FilePath    *string `json:"file_path"`
}

// Comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// Submission
type CreateSubmissionRequest struct {
	TextContent *string `json:"text_content"`
	FilePath    *string `json:"file_path"`
}

type GradeSubmissionRequest struct {
	Score    int     `json:"score" validate:"min=0,max=100"`
	Feedback *string `json:"feedback"`
}

// Attendance
type AttendanceRequest struct {
	CourseID *uuid.UUID `json:"course_id"`
	Status   string     `json:"status" validate:"required,oneof=present late excused"`
}
