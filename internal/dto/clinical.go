package dto

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// REGISTRATION AND ONBOARDING
// ============================================================================

type RegisterStudentRequest struct {
	StudentID         string  `json:"student_id" validate:"required,max=50"`
	Institution       string  `json:"institution" validate:"required,max=255"`
	Program           string  `json:"program" validate:"required,max=100"`
	Cohort            *string `json:"cohort" validate:"omitempty,max=50"`
	PracticeStartDate *string `json:"practice_start_date"`
	PracticeEndDate   *string `json:"practice_end_date"`
	PlacementHospital *string `json:"placement_hospital" validate:"omitempty,max=255"`
}

// GateStatusDTO is one onboarding stage with its progress detail.
type GateStatusDTO struct {
	Complete bool  `json:"complete"`
	Done     int   `json:"done"`
	Required int   `json:"required"`
}

type OnboardingStatusDTO struct {
	Documents          GateStatusDTO `json:"documents"`
	Agreements         GateStatusDTO `json:"agreements"`
	Elearning          GateStatusDTO `json:"elearning"`
	Pretest            GateStatusDTO `json:"pretest"`
	OnboardingComplete bool          `json:"onboarding_complete"`
}

type StudentProfileDTO struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.UUID     `json:"user_id"`
	StudentID          string        `json:"student_id"`
	Institution        string        `json:"institution"`
	Program            string        `json:"program"`
	Cohort             *string       `json:"cohort,omitempty"`
	PracticeStartDate  *string       `json:"practice_start_date,omitempty"`
	PracticeEndDate    *string       `json:"practice_end_date,omitempty"`
	PlacementHospital  *string       `json:"placement_hospital,omitempty"`
	CurrentUnit        *string       `json:"current_unit,omitempty"`
	Supervisor         *UserBriefDTO `json:"supervisor,omitempty"`
	DocumentsVerified  bool          `json:"documents_verified"`
	AgreementsSigned   bool          `json:"agreements_signed"`
	ElearningCompleted bool          `json:"elearning_completed"`
	PretestPassed      bool          `json:"pretest_passed"`
	OnboardingComplete bool          `json:"onboarding_complete"`
}

// ============================================================================
// DOCUMENTS AND AGREEMENTS
// ============================================================================

// UploadDocumentRequest is assembled by the handler from a multipart form;
// the file path is the object key returned by storage, never client input.
type UploadDocumentRequest struct {
	DocumentType   string
	FilePath       string
	ExpirationDate *string
}

type VerifyDocumentRequest struct {
	Status string  `json:"status" validate:"required,oneof=verified rejected"`
	Notes  *string `json:"notes"`
}

type LegalDocumentDTO struct {
	ID                uuid.UUID  `json:"id"`
	DocumentType      string     `json:"document_type"`
	Label             string     `json:"label,omitempty"`
	Status            string     `json:"status"`
	FileURL           string     `json:"file_url,omitempty"`
	VerificationNotes *string    `json:"verification_notes,omitempty"`
	ExpirationDate    *string    `json:"expiration_date,omitempty"`
	UploadedAt        time.Time  `json:"uploaded_at"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`
}

type SignAgreementRequest struct {
	AgreementType string `json:"agreement_type" validate:"required,max=50"`
	SignatureData string `json:"signature_data" validate:"required"`
}

type AgreementDTO struct {
	Type     string     `json:"type"`
	Title    string     `json:"title"`
	Text     string     `json:"text"`
	Signed   bool       `json:"signed"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

// ============================================================================
// PRE/POST TESTS
// ============================================================================

// QuestionDTO is a test question as served to the student, with the correct
// option stripped.
type QuestionDTO struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type SubmitAssessmentRequest struct {
	// question id (as string key) -> selected option
	Answers map[string]string `json:"answers" validate:"required"`
}

type AssessmentResultDTO struct {
	ID             uuid.UUID `json:"id"`
	AssessmentType string    `json:"assessment_type"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CorrectAnswers int       `json:"correct_answers"`
	PassingScore   int       `json:"passing_score"`
	Passed         bool      `json:"passed"`
	AttemptNumber  int       `json:"attempt_number"`
	TakenAt        time.Time `json:"taken_at"`
}

// ============================================================================
// LOGBOOK
// ============================================================================

type CreateLogbookEntryRequest struct {
	EntryDate          string  `json:"entry_date" validate:"required"`
	Unit               string  `json:"unit" validate:"required,max=100"`
	ProcedureName      string  `json:"procedure_name" validate:"required,max=255"`
	ProcedureType      *string `json:"procedure_type" validate:"omitempty,max=100"`
	Role               string  `json:"role" validate:"required,oneof=observe assist independent teach"`
	DurationMinutes    *int    `json:"duration_minutes" validate:"omitempty,min=1"`
	PatientCaseSummary *string `json:"patient_case_summary"`
	LearningPoints     *string `json:"learning_points"`
	SupervisorID       *uuid.UUID `json:"supervisor_id"`
}

type ValidateEntryRequest struct {
	Method string  `json:"method" validate:"required,oneof=pin qr manual"`
	PIN    *string `json:"pin"`
	Notes  *string `json:"notes"`
}

type SetValidationPINRequest struct {
	PIN string `json:"pin" validate:"required,len=6,numeric"`
}

type CompetencyProgressDTO struct {
	CompetencyID        uuid.UUID `json:"competency_id"`
	CompetencyName      string    `json:"competency_name"`
	CompetencyCategory  *string   `json:"competency_category,omitempty"`
	ObservationsCount   int       `json:"observations_count"`
	MinimumObservations int       `json:"minimum_observations"`
	AssistsCount        int       `json:"assists_count"`
	MinimumAssists      int       `json:"minimum_assists"`
	IndependentCount    int       `json:"independent_count"`
	MinimumIndependent  int       `json:"minimum_independent"`
	CompetencyLevel     string    `json:"competency_level"`
	SupervisorSignoff   bool      `json:"supervisor_signoff"`
}

// ============================================================================
// PATIENT CASES
// ============================================================================

type CreateCaseRequest struct {
	CaseTitle        string  `json:"case_title" validate:"required,max=255"`
	PatientAlias     *string `json:"patient_alias" validate:"omitempty,max=100"`
	Unit             *string `json:"unit" validate:"omitempty,max=100"`
	InitialDiagnosis *string `json:"initial_diagnosis" validate:"omitempty,max=255"`
	StartDate        string  `json:"start_date" validate:"required"`
	InitialNotes     *string `json:"initial_notes"`
}

type CreateDailyUpdateRequest struct {
	EntryDate       string  `json:"entry_date" validate:"required"`
	Status          *string `json:"status" validate:"omitempty,oneof=improving stable worsening discharged"`
	UpdateSummary   string  `json:"update_summary" validate:"required"`
	Interventions   *string `json:"interventions"`
	PatientResponse *string `json:"patient_response"`
	FollowUpPlan    *string `json:"follow_up_plan"`
	NextControlDate *string `json:"next_control_date"`
}

type CloseCaseRequest struct {
	EndDate *string `json:"end_date"`
}

// TimelineNodeDTO is one point on a patient case timeline. Kind is "start",
// "update", or "end".
type TimelineNodeDTO struct {
	Kind      string  `json:"kind"`
	Label     string  `json:"label"`
	Date      string  `json:"date"`
	DayNumber int     `json:"day_number"`
	Status    *string `json:"status,omitempty"`
	Summary   *string `json:"summary,omitempty"`
	UpdateID  *uuid.UUID `json:"update_id,omitempty"`
}

type CaseTimelineDTO struct {
	CaseID   uuid.UUID         `json:"case_id"`
	Title    string            `json:"title"`
	Status   string            `json:"status"`
	Timeline []TimelineNodeDTO `json:"timeline"`
}

// ============================================================================
// JOURNALS
// ============================================================================

type CreateJournalRequest struct {
	EntryDate        string  `json:"entry_date" validate:"required"`
	Shift            *string `json:"shift" validate:"omitempty,oneof=morning afternoon night"`
	Unit             *string `json:"unit" validate:"omitempty,max=100"`
	JournalText      string  `json:"journal_text" validate:"required"`
	WhatWentWell     *string `json:"what_went_well"`
	ChallengesFaced  *string `json:"challenges_faced"`
	LearningInsights *string `json:"learning_insights"`
	ConfidenceLevel  *int    `json:"confidence_level" validate:"omitempty,min=1,max=5"`
	EmotionTag       *string `json:"emotion_tag" validate:"omitempty,max=50"`
}

type JournalFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// ============================================================================
// ASSESSMENTS AND CERTIFICATION
// ============================================================================

type SubmitWeeklyAssessmentRequest struct {
	WeekNumber     int               `json:"week_number" validate:"required,min=1"`
	Unit           string            `json:"unit" validate:"required,max=100"`
	AssessmentType string            `json:"assessment_type" validate:"required,oneof=cbt case_study"`
	Answers        map[string]string `json:"answers"`
	CaseAnalysis   *string           `json:"case_analysis"`
}

type SubmitFinalExamRequest struct {
	ExamType       string            `json:"exam_type" validate:"required,oneof=cbt mini_osce case_study"`
	Answers        map[string]string `json:"answers"`
	CaseSubmission *string           `json:"case_submission"`
}

type GradeFinalExamRequest struct {
	Score            int     `json:"score" validate:"min=0,max=100"`
	ExaminerComments *string `json:"examiner_comments"`
}

type SubmitEvaluation360Request struct {
	StudentID               uuid.UUID `json:"student_id" validate:"required"`
	EvaluatorRole           string    `json:"evaluator_role" validate:"required,oneof=clinical_supervisor nurse lecturer self"`
	ClinicalCompetencyScore *int      `json:"clinical_competency_score" validate:"omitempty,min=1,max=5"`
	PatientSafetyScore      *int      `json:"patient_safety_score" validate:"omitempty,min=1,max=5"`
	ProfessionalismScore    *int      `json:"professionalism_score" validate:"omitempty,min=1,max=5"`
	CommunicationScore      *int      `json:"communication_score" validate:"omitempty,min=1,max=5"`
	LearningAttitudeScore   *int      `json:"learning_attitude_score" validate:"omitempty,min=1,max=5"`
	EmergencyResponseScore  *int      `json:"emergency_response_score" validate:"omitempty,min=1,max=5"`
	Comments                *string   `json:"comments"`
	Strengths               *string   `json:"strengths"`
	AreasForImprovement     *string   `json:"areas_for_improvement"`
}

type CertificateDTO struct {
	ID                   uuid.UUID `json:"id"`
	CertificateNumber    string    `json:"certificate_number"`
	FinalScore           *float64  `json:"final_score,omitempty"`
	PretestScore         *int      `json:"pretest_score,omitempty"`
	PosttestScore        *int      `json:"posttest_score,omitempty"`
	CBTScore             *int      `json:"cbt_score,omitempty"`
	OSCEScore            *int      `json:"osce_score,omitempty"`
	CaseStudyScore       *int      `json:"case_study_score,omitempty"`
	Evaluation360Average *float64  `json:"evaluation_360_average,omitempty"`
	IssuedAt             time.Time `json:"issued_at"`
	VerificationURL      *string   `json:"verification_url,omitempty"`
}

// ============================================================================
// INCIDENTS, FEEDBACK, ALUMNI
// ============================================================================

type ReportIncidentRequest struct {
	StudentID            *uuid.UUID `json:"student_id"`
	IncidentType         string     `json:"incident_type" validate:"required,oneof=medication_error patient_fall needle_stick near_miss equipment other"`
	Severity             string     `json:"severity" validate:"required,oneof=low medium high critical"`
	IncidentDate         string     `json:"incident_date" validate:"required"`
	Unit                 *string    `json:"unit" validate:"omitempty,max=100"`
	Description          string     `json:"description" validate:"required"`
	ImmediateActionTaken *string    `json:"immediate_action_taken"`
}

type UpdateIncidentRequest struct {
	Status             string  `json:"status" validate:"required,oneof=reported under_review resolved closed"`
	InvestigationNotes *string `json:"investigation_notes"`
}

type SubmitFeedbackRequest struct {
	FeedbackType            string  `json:"feedback_type" validate:"required,oneof=hospital supervisor program"`
	TeachingQualityRating   *int    `json:"teaching_quality_rating" validate:"omitempty,min=1,max=5"`
	FacilitiesRating        *int    `json:"facilities_rating" validate:"omitempty,min=1,max=5"`
	SupervisorSupportRating *int    `json:"supervisor_support_rating" validate:"omitempty,min=1,max=5"`
	SafetyClimateRating     *int    `json:"safety_climate_rating" validate:"omitempty,min=1,max=5"`
	OverallRating           *int    `json:"overall_experience_rating" validate:"omitempty,min=1,max=5"`
	Comments                *string `json:"comments"`
	Suggestions             *string `json:"suggestions"`
	IsAnonymous             bool    `json:"is_anonymous"`
}

type UpdateAlumniProfileRequest struct {
	GraduationYear  *int    `json:"graduation_year" validate:"omitempty,min=1990,max=2100"`
	CurrentPosition *string `json:"current_position" validate:"omitempty,max=255"`
	CurrentHospital *string `json:"current_hospital" validate:"omitempty,max=255"`
	Specialization  *string `json:"specialization" validate:"omitempty,max=100"`
	WillingToMentor *bool   `json:"willing_to_mentor"`
}
