package dto

import (
	"time"

	"github.com/google/uuid"
)

// Admin - user management
type AdminCreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Role     string  `json:"role" validate:"required,oneof=admin pemateri user"`
	Division *string `json:"division" validate:"omitempty,max=100"`
}

type AdminUpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin pemateri user"`
}

type AdminUserDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	PendingRole *string   `json:"pending_role,omitempty"`
	Division    *string   `json:"division,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Admin - clinical configuration. The payloads mirror the stored config
// columns; question validation happens in the service so a malformed set is
// rejected in full.
type DocumentRulePayload struct {
	Type               string `json:"type" validate:"required,max=50"`
	Label              string `json:"label" validate:"required,max=255"`
	RequiresExpiration bool   `json:"requires_expiration"`
}

type AgreementTemplatePayload struct {
	Type  string `json:"type" validate:"required,max=50"`
	Title string `json:"title" validate:"required,max=255"`
	Text  string `json:"text" validate:"required"`
}

type QuestionPayload struct {
	ID            int      `json:"id"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption string   `json:"correct_option" validate:"required"`
}

type UpdateClinicalConfigRequest struct {
	Documents         *[]DocumentRulePayload      `json:"documents"`
	Agreements        *[]AgreementTemplatePayload `json:"agreements"`
	RequiredCourseIDs *[]uuid.UUID                `json:"required_course_ids"`
	PretestQuestions  *[]QuestionPayload          `json:"pretest_questions"`
	PosttestQuestions *[]QuestionPayload          `json:"posttest_questions"`
}

// Admin - competency checklist management
type CreateCompetencyRequest struct {
	Program             string  `json:"program" validate:"required,max=100"`
	CompetencyName      string  `json:"competency_name" validate:"required,max=255"`
	CompetencyCategory  *string `json:"competency_category" validate:"omitempty,max=100"`
	Description         *string `json:"description"`
	MinimumObservations int     `json:"minimum_observations" validate:"min=0"`
	MinimumAssists      int     `json:"minimum_assists" validate:"min=0"`
	MinimumIndependent  int     `json:"minimum_independent" validate:"min=0"`
	LearningObjectives  *string `json:"learning_objectives"`
	IsMandatory         *bool   `json:"is_mandatory"`
}

// Admin - supervisor assignment
type AssignSupervisorRequest struct {
	SupervisorID uuid.UUID `json:"supervisor_id" validate:"required"`
	CurrentUnit  *string   `json:"current_unit" validate:"omitempty,max=100"`
}

// Admin - dashboard
type DashboardStatsDTO struct {
	TotalUsers         int64 `json:"total_users"`
	TotalStudents      int64 `json:"total_students"`
	OnboardingComplete int64 `json:"onboarding_complete"`
	PendingDocuments   int64 `json:"pending_documents"`
	PendingRoleRequests int64 `json:"pending_role_requests"`
	PendingLibraryBooks int64 `json:"pending_library_books"`
	ActiveCases        int64 `json:"active_cases"`
	OpenIncidents      int64 `json:"open_incidents"`
}

// Admin - bulk student import from an Excel sheet
type ImportStudentsResultDTO struct {
	Created int                 `json:"created"`
	Skipped int                 `json:"skipped"`
	Errors  []ImportRowErrorDTO `json:"errors,omitempty"`
}

type ImportRowErrorDTO struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}
