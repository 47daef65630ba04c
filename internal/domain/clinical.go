package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enum types for the clinical placement workflow
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

type LogbookRole string

const (
	LogRoleObserve     LogbookRole = "observe"
	LogRoleAssist      LogbookRole = "assist"
	LogRoleIndependent LogbookRole = "independent"
	LogRoleTeach       LogbookRole = "teach"
)

func ValidLogbookRole(r LogbookRole) bool {
	switch r {
	case LogRoleObserve, LogRoleAssist, LogRoleIndependent, LogRoleTeach:
		return true
	}
	return false
}

type ValidationMethod string

const (
	ValidationPIN    ValidationMethod = "pin"
	ValidationQR     ValidationMethod = "qr"
	ValidationManual ValidationMethod = "manual"
)

type CompetencyLevel string

const (
	LevelNotYet     CompetencyLevel = "not_yet"
	LevelDeveloping CompetencyLevel = "developing"
	LevelCompetent  CompetencyLevel = "competent"
	LevelAdvanced   CompetencyLevel = "advanced"
)

type CaseStatus string

const (
	CaseActive CaseStatus = "active"
	CaseClosed CaseStatus = "closed"
)

type AssessmentType string

const (
	AssessmentPretest  AssessmentType = "pretest"
	AssessmentPosttest AssessmentType = "posttest"
)

type ExamType string

const (
	ExamCBT       ExamType = "cbt"
	ExamMiniOSCE  ExamType = "mini_osce"
	ExamCaseStudy ExamType = "case_study"
)

type IncidentStatus string

const (
	IncidentReported    IncidentStatus = "reported"
	IncidentUnderReview IncidentStatus = "under_review"
	IncidentResolved    IncidentStatus = "resolved"
	IncidentClosed      IncidentStatus = "closed"
)

// ============================================================================
// TYPED JSON COLUMNS
// ============================================================================
//
// Clinical configuration is persisted as JSON columns. Each column has a
// concrete element type so malformed admin input is caught at the decode
// boundary instead of leaking into gate evaluation. Stored data that fails to
// scan degrades to an empty collection.

// DocumentRule - a required onboarding document type
type DocumentRule struct {
	Type               string `json:"type"`
	Label              string `json:"label"`
	RequiresExpiration bool   `json:"requires_expiration"`
}

type DocumentRuleList []DocumentRule

func (l DocumentRuleList) Value() (driver.Value, error) {
	if l == nil {
		l = DocumentRuleList{}
	}
	return json.Marshal(l)
}

func (l *DocumentRuleList) Scan(value interface{}) error {
	*l = DocumentRuleList{}
	return scanJSON(value, l)
}

// AgreementTemplate - a consent form students must sign
type AgreementTemplate struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

type AgreementTemplateList []AgreementTemplate

func (l AgreementTemplateList) Value() (driver.Value, error) {
	if l == nil {
		l = AgreementTemplateList{}
	}
	return json.Marshal(l)
}

func (l *AgreementTemplateList) Scan(value interface{}) error {
	*l = AgreementTemplateList{}
	return scanJSON(value, l)
}

// Question - a multiple choice pretest/posttest question
type Question struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
}

type QuestionList []Question

func (l QuestionList) Value() (driver.Value, error) {
	if l == nil {
		l = QuestionList{}
	}
	return json.Marshal(l)
}

func (l *QuestionList) Scan(value interface{}) error {
	*l = QuestionList{}
	return scanJSON(value, l)
}

// UUIDList - ids of the courses required before the posttest
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	return json.Marshal(l)
}

func (l *UUIDList) Scan(value interface{}) error {
	*l = UUIDList{}
	return scanJSON(value, l)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	// Malformed stored data falls back to the empty collection set above.
	_ = json.Unmarshal(raw, dest)
	return nil
}

// ============================================================================
// CLINICAL ENTITIES
// ============================================================================

// ClinicalConfig - singleton policy row, lazily created with defaults
type ClinicalConfig struct {
	ID                uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	Documents         DocumentRuleList      `gorm:"type:jsonb;not null;default:'[]'" json:"documents"`
	Agreements        AgreementTemplateList `gorm:"type:jsonb;not null;default:'[]'" json:"agreements"`
	RequiredCourseIDs UUIDList              `gorm:"type:jsonb;not null;default:'[]'" json:"required_course_ids"`
	PretestQuestions  QuestionList          `gorm:"type:jsonb;not null;default:'[]'" json:"pretest_questions"`
	PosttestQuestions QuestionList          `gorm:"type:jsonb;not null;default:'[]'" json:"posttest_questions"`
	UpdatedAt         time.Time             `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy         *uuid.UUID            `gorm:"type:uuid" json:"updated_by,omitempty"`
}

func (ClinicalConfig) TableName() string { return "clinical_configs" }

// StudentProfile - one per user, carries the onboarding completion flags
type StudentProfile struct {
	BaseModel
	UserID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StudentID         string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"student_id"`
	Institution       string     `gorm:"type:varchar(255);not null" json:"institution"`
	Program           string     `gorm:"type:varchar(100);not null" json:"program"`
	Cohort            *string    `gorm:"type:varchar(50)" json:"cohort,omitempty"`
	PracticeStartDate *time.Time `gorm:"type:date" json:"practice_start_date,omitempty"`
	PracticeEndDate   *time.Time `gorm:"type:date" json:"practice_end_date,omitempty"`
	PlacementHospital *string    `gorm:"type:varchar(255)" json:"placement_hospital,omitempty"`
	CurrentUnit       *string    `gorm:"type:varchar(100)" json:"current_unit,omitempty"`
	SupervisorID      *uuid.UUID `gorm:"type:uuid;index" json:"supervisor_id,omitempty"`

	// Onboarding completion flags. Monotonic: once true they are only ever
	// cleared through the explicit document rejection path.
	DocumentsVerified  bool `gorm:"not null;default:false" json:"documents_verified"`
	AgreementsSigned   bool `gorm:"not null;default:false" json:"agreements_signed"`
	ElearningCompleted bool `gorm:"not null;default:false" json:"elearning_completed"`
	PretestPassed      bool `gorm:"not null;default:false" json:"pretest_passed"`
	OnboardingComplete bool `gorm:"not null;default:false" json:"onboarding_complete"`

	User       *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Supervisor *User `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
}

func (StudentProfile) TableName() string { return "student_profiles" }

// LegalDocument - at most one active document per (student, type); a new
// upload overwrites the existing row instead of inserting a duplicate.
type LegalDocument struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_student_doc_type" json:"student_id"`
	DocumentType      string         `gorm:"type:varchar(50);not null;uniqueIndex:uq_student_doc_type" json:"document_type"`
	FilePath          string         `gorm:"type:text;not null" json:"file_path"`
	Status            DocumentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	VerifiedByID      *uuid.UUID     `gorm:"type:uuid" json:"verified_by_id,omitempty"`
	VerificationNotes *string        `gorm:"type:text" json:"verification_notes,omitempty"`
	ExpirationDate    *time.Time     `gorm:"type:date" json:"expiration_date,omitempty"`
	UploadedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"uploaded_at"`
	VerifiedAt        *time.Time     `json:"verified_at,omitempty"`
	Student           *StudentProfile `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	VerifiedBy        *User           `gorm:"foreignKey:VerifiedByID" json:"verified_by,omitempty"`
}

func (LegalDocument) TableName() string { return "legal_documents" }

// DigitalAgreement - write-once signature per (student, type)
type DigitalAgreement struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_student_agreement" json:"student_id"`
	AgreementType      string     `gorm:"type:varchar(50);not null;uniqueIndex:uq_student_agreement" json:"agreement_type"`
	Content            string     `gorm:"type:text;not null" json:"content"`
	Signed             bool       `gorm:"not null;default:false" json:"signed"`
	SignatureData      *string    `gorm:"type:text" json:"-"`
	SignatureTimestamp *time.Time `json:"signature_timestamp,omitempty"`
	IPAddress          *string    `gorm:"type:varchar(50)" json:"ip_address,omitempty"`
	CreatedAt          time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DigitalAgreement) TableName() string { return "digital_agreements" }

// PreClinicalAssessment - immutable attempt record
type PreClinicalAssessment struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	AssessmentType AssessmentType `gorm:"type:varchar(20);not null" json:"assessment_type"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"total_questions"`
	CorrectAnswers int            `gorm:"not null" json:"correct_answers"`
	PassingScore   int            `gorm:"not null;default:80" json:"passing_score"`
	Passed         bool           `gorm:"not null;default:false" json:"passed"`
	AttemptNumber  int            `gorm:"not null;default:1" json:"attempt_number"`
	Answers        *string        `gorm:"type:text" json:"answers,omitempty"`
	TakenAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"taken_at"`
}

func (PreClinicalAssessment) TableName() string { return "preclinical_assessments" }

// LogbookEntry - one clinical procedure, immutable once validated
type LogbookEntry struct {
	BaseModel
	StudentID          uuid.UUID   `gorm:"type:uuid;not null;index" json:"student_id"`
	EntryDate          time.Time   `gorm:"type:date;not null;index" json:"entry_date"`
	Unit               string      `gorm:"type:varchar(100);not null" json:"unit"`
	ProcedureName      string      `gorm:"type:varchar(255);not null" json:"procedure_name"`
	ProcedureType      *string     `gorm:"type:varchar(100)" json:"procedure_type,omitempty"`
	Role               LogbookRole `gorm:"type:varchar(20);not null" json:"role"`
	DurationMinutes    *int        `json:"duration_minutes,omitempty"`
	PatientCaseSummary *string     `gorm:"type:text" json:"patient_case_summary,omitempty"`
	LearningPoints     *string     `gorm:"type:text" json:"learning_points,omitempty"`

	SupervisorID        *uuid.UUID        `gorm:"type:uuid;index" json:"supervisor_id,omitempty"`
	Validated           bool              `gorm:"not null;default:false" json:"validated"`
	ValidationMethod    *ValidationMethod `gorm:"type:varchar(20)" json:"validation_method,omitempty"`
	ValidationTimestamp *time.Time        `json:"validation_timestamp,omitempty"`
	SupervisorNotes     *string           `gorm:"type:text" json:"supervisor_notes,omitempty"`
	Locked              bool              `gorm:"not null;default:false" json:"locked"`

	Supervisor *User `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
}

func (LogbookEntry) TableName() string { return "logbook_entries" }

// CompetencyChecklist - per-program minimums required to reach competent
type CompetencyChecklist struct {
	BaseModel
	Program             string  `gorm:"type:varchar(100);not null;uniqueIndex:uq_program_competency" json:"program"`
	CompetencyName      string  `gorm:"type:varchar(255);not null;uniqueIndex:uq_program_competency" json:"competency_name"`
	CompetencyCategory  *string `gorm:"type:varchar(100)" json:"competency_category,omitempty"`
	Description         *string `gorm:"type:text" json:"description,omitempty"`
	MinimumObservations int     `gorm:"not null;default:0" json:"minimum_observations"`
	MinimumAssists      int     `gorm:"not null;default:0" json:"minimum_assists"`
	MinimumIndependent  int     `gorm:"not null;default:0" json:"minimum_independent"`
	LearningObjectives  *string `gorm:"type:text" json:"learning_objectives,omitempty"`
	IsMandatory         bool    `gorm:"not null;default:true" json:"is_mandatory"`
}

func (CompetencyChecklist) TableName() string { return "competency_checklists" }

// CompetencyProgress - accrual counters per (student, competency)
type CompetencyProgress struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_student_competency" json:"student_id"`
	CompetencyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uq_student_competency" json:"competency_id"`
	ObservationsCount int             `gorm:"not null;default:0" json:"observations_count"`
	AssistsCount      int             `gorm:"not null;default:0" json:"assists_count"`
	IndependentCount  int             `gorm:"not null;default:0" json:"independent_count"`
	CompetencyLevel   CompetencyLevel `gorm:"type:varchar(20);not null;default:'not_yet'" json:"competency_level"`
	SupervisorSignoff bool            `gorm:"not null;default:false" json:"supervisor_signoff"`
	SignoffDate       *time.Time      `json:"signoff_date,omitempty"`
	SignoffBy         *uuid.UUID      `gorm:"type:uuid" json:"signoff_by,omitempty"`
	Notes             *string         `gorm:"type:text" json:"notes,omitempty"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Competency *CompetencyChecklist `gorm:"foreignKey:CompetencyID" json:"competency,omitempty"`
}

func (CompetencyProgress) TableName() string { return "competency_progress" }

// PatientCase - long-term case tracking, one-way active -> closed
type PatientCase struct {
	BaseModel
	StudentID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	CaseTitle        string     `gorm:"type:varchar(255);not null" json:"case_title"`
	PatientAlias     *string    `gorm:"type:varchar(100)" json:"patient_alias,omitempty"`
	Unit             *string    `gorm:"type:varchar(100)" json:"unit,omitempty"`
	InitialDiagnosis *string    `gorm:"type:varchar(255)" json:"initial_diagnosis,omitempty"`
	StartDate        time.Time  `gorm:"type:date;not null;index" json:"start_date"`
	EndDate          *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Status           CaseStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	InitialNotes     *string    `gorm:"type:text" json:"initial_notes,omitempty"`

	DailyUpdates []PatientCaseDailyUpdate `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"daily_updates,omitempty"`
}

func (PatientCase) TableName() string { return "patient_cases" }

// PatientCaseDailyUpdate - at most one per (case, entry_date)
type PatientCaseDailyUpdate struct {
	BaseModel
	CaseID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_case_daily_update" json:"case_id"`
	EntryDate       time.Time  `gorm:"type:date;not null;uniqueIndex:uq_case_daily_update" json:"entry_date"`
	Status          *string    `gorm:"type:varchar(20)" json:"status,omitempty"`
	UpdateSummary   string     `gorm:"type:text;not null" json:"update_summary"`
	Interventions   *string    `gorm:"type:text" json:"interventions,omitempty"`
	PatientResponse *string    `gorm:"type:text" json:"patient_response,omitempty"`
	FollowUpPlan    *string    `gorm:"type:text" json:"follow_up_plan,omitempty"`
	NextControlDate *time.Time `gorm:"type:date" json:"next_control_date,omitempty"`
}

func (PatientCaseDailyUpdate) TableName() string { return "patient_case_daily_updates" }

// DailyJournal - at most one per (student, entry_date)
type DailyJournal struct {
	BaseModel
	StudentID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_student_journal" json:"student_id"`
	EntryDate        time.Time `gorm:"type:date;not null;uniqueIndex:uq_student_journal" json:"entry_date"`
	Shift            *string   `gorm:"type:varchar(20)" json:"shift,omitempty"`
	Unit             *string   `gorm:"type:varchar(100)" json:"unit,omitempty"`
	JournalText      string    `gorm:"type:text;not null" json:"journal_text"`
	WhatWentWell     *string   `gorm:"type:text" json:"what_went_well,omitempty"`
	ChallengesFaced  *string   `gorm:"type:text" json:"challenges_faced,omitempty"`
	LearningInsights *string   `gorm:"type:text" json:"learning_insights,omitempty"`
	ConfidenceLevel  *int      `json:"confidence_level,omitempty"`
	EmotionTag       *string   `gorm:"type:varchar(50)" json:"emotion_tag,omitempty"`

	SupervisorFeedback *string    `gorm:"type:text" json:"supervisor_feedback,omitempty"`
	SupervisorID       *uuid.UUID `gorm:"type:uuid" json:"supervisor_id,omitempty"`
	FeedbackTimestamp  *time.Time `json:"feedback_timestamp,omitempty"`
}

func (DailyJournal) TableName() string { return "daily_journals" }

// WeeklyAssessment - weekly CBT questions and mini case studies
type WeeklyAssessment struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	WeekNumber         int       `gorm:"not null" json:"week_number"`
	Unit               string    `gorm:"type:varchar(100);not null" json:"unit"`
	AssessmentType     string    `gorm:"type:varchar(20);not null" json:"assessment_type"`
	Score              *int      `json:"score,omitempty"`
	TotalQuestions     *int      `json:"total_questions,omitempty"`
	CorrectAnswers     *int      `json:"correct_answers,omitempty"`
	Answers            *string   `gorm:"type:text" json:"answers,omitempty"`
	CaseAnalysis       *string   `gorm:"type:text" json:"case_analysis,omitempty"`
	ParticipationScore *int      `json:"participation_score,omitempty"`
	SupervisorComments *string   `gorm:"type:text" json:"supervisor_comments,omitempty"`
	TakenAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"taken_at"`
}

func (WeeklyAssessment) TableName() string { return "weekly_assessments" }

// FinalExam - final competency examinations
type FinalExam struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	ExamType         ExamType   `gorm:"type:varchar(20);not null" json:"exam_type"`
	Score            *int       `json:"score,omitempty"`
	TotalPoints      int        `gorm:"not null" json:"total_points"`
	PassingScore     int        `gorm:"not null;default:75" json:"passing_score"`
	Passed           bool       `gorm:"not null;default:false" json:"passed"`
	AttemptNumber    int        `gorm:"not null;default:1" json:"attempt_number"`
	Stations         *string    `gorm:"type:text" json:"stations,omitempty"`
	CaseSubmission   *string    `gorm:"type:text" json:"case_submission,omitempty"`
	ExaminerID       *uuid.UUID `gorm:"type:uuid" json:"examiner_id,omitempty"`
	ExaminerComments *string    `gorm:"type:text" json:"examiner_comments,omitempty"`
	ExamDate         time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"exam_date"`
	GradedAt         *time.Time `json:"graded_at,omitempty"`
}

func (FinalExam) TableName() string { return "final_exams" }

// Evaluation360 - multi-rater evaluation, weighted by evaluator role
type Evaluation360 struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID     uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	EvaluatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"evaluator_id"`
	EvaluatorRole string    `gorm:"type:varchar(50);not null" json:"evaluator_role"`

	ClinicalCompetencyScore *int `json:"clinical_competency_score,omitempty"`
	PatientSafetyScore      *int `json:"patient_safety_score,omitempty"`
	ProfessionalismScore    *int `json:"professionalism_score,omitempty"`
	CommunicationScore      *int `json:"communication_score,omitempty"`
	LearningAttitudeScore   *int `json:"learning_attitude_score,omitempty"`
	EmergencyResponseScore  *int `json:"emergency_response_score,omitempty"`

	WeightPercentage     int       `gorm:"not null;default:0" json:"weight_percentage"`
	Comments             *string   `gorm:"type:text" json:"comments,omitempty"`
	Strengths            *string   `gorm:"type:text" json:"strengths,omitempty"`
	AreasForImprovement  *string   `gorm:"type:text" json:"areas_for_improvement,omitempty"`
	SubmittedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"submitted_at"`
}

func (Evaluation360) TableName() string { return "evaluations_360" }

// ClinicalCertificate - one per student, issued on completion
type ClinicalCertificate struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"student_id"`
	CertificateNumber string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"certificate_number"`
	QRCodePath        *string   `gorm:"type:text" json:"qr_code_path,omitempty"`
	PDFPath           *string   `gorm:"type:text" json:"pdf_path,omitempty"`

	FinalScore             *float64 `json:"final_score,omitempty"`
	PretestScore           *int     `json:"pretest_score,omitempty"`
	PosttestScore          *int     `json:"posttest_score,omitempty"`
	CBTScore               *int     `json:"cbt_score,omitempty"`
	OSCEScore              *int     `json:"osce_score,omitempty"`
	CaseStudyScore         *int     `json:"case_study_score,omitempty"`
	Evaluation360Average   *float64 `json:"evaluation_360_average,omitempty"`
	CompetencyAchievedPct  *float64 `json:"competency_achievement_percentage,omitempty"`

	IssuedByID      *uuid.UUID `gorm:"type:uuid" json:"issued_by_id,omitempty"`
	IssuedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"issued_at"`
	VerificationURL *string    `gorm:"type:text" json:"verification_url,omitempty"`
}

func (ClinicalCertificate) TableName() string { return "clinical_certificates" }

// IncidentReport - safety reporting; status progression beyond "reported" is
// driven externally, no transition logic here.
type IncidentReport struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"reporter_id"`
	StudentID            *uuid.UUID     `gorm:"type:uuid;index" json:"student_id,omitempty"`
	IncidentType         string         `gorm:"type:varchar(50);not null" json:"incident_type"`
	Severity             string         `gorm:"type:varchar(20);not null" json:"severity"`
	IncidentDate         time.Time      `gorm:"not null" json:"incident_date"`
	Unit                 *string        `gorm:"type:varchar(100)" json:"unit,omitempty"`
	Description          string         `gorm:"type:text;not null" json:"description"`
	ImmediateActionTaken *string        `gorm:"type:text" json:"immediate_action_taken,omitempty"`
	Investigated         bool           `gorm:"not null;default:false" json:"investigated"`
	InvestigatorID       *uuid.UUID     `gorm:"type:uuid" json:"investigator_id,omitempty"`
	InvestigationNotes   *string        `gorm:"type:text" json:"investigation_notes,omitempty"`
	Status               IncidentStatus `gorm:"type:varchar(20);not null;default:'reported';index" json:"status"`
	ReportedAt           time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"reported_at"`
	ResolvedAt           *time.Time     `json:"resolved_at,omitempty"`
}

func (IncidentReport) TableName() string { return "incident_reports" }

// StudentFeedback - feedback on hospital, supervisors, and program
type StudentFeedback struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_student_feedback_type" json:"student_id"`
	FeedbackType string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_student_feedback_type" json:"feedback_type"`

	TeachingQualityRating   *int `json:"teaching_quality_rating,omitempty"`
	FacilitiesRating        *int `json:"facilities_rating,omitempty"`
	SupervisorSupportRating *int `json:"supervisor_support_rating,omitempty"`
	SafetyClimateRating     *int `json:"safety_climate_rating,omitempty"`
	OverallRating           *int `json:"overall_experience_rating,omitempty"`

	Comments    *string   `gorm:"type:text" json:"comments,omitempty"`
	Suggestions *string   `gorm:"type:text" json:"suggestions,omitempty"`
	IsAnonymous bool      `gorm:"not null;default:false" json:"is_anonymous"`
	SubmittedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"submitted_at"`
}

func (StudentFeedback) TableName() string { return "student_feedbacks" }

// AlumniProfile - career tracking after the program
type AlumniProfile struct {
	BaseModel
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	StudentProfileID *uuid.UUID `gorm:"type:uuid" json:"student_profile_id,omitempty"`
	GraduationYear   *int       `json:"graduation_year,omitempty"`
	CurrentPosition  *string    `gorm:"type:varchar(255)" json:"current_position,omitempty"`
	CurrentHospital  *string    `gorm:"type:varchar(255)" json:"current_hospital,omitempty"`
	Specialization   *string    `gorm:"type:varchar(100)" json:"specialization,omitempty"`
	WillingToMentor  bool       `gorm:"not null;default:false" json:"willing_to_mentor"`
	User             *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (AlumniProfile) TableName() string { return "alumni_profiles" }

// SupervisorValidationPIN - bcrypt-hashed PIN per supervisor
type SupervisorValidationPIN struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SupervisorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"supervisor_id"`
	PINHash      string    `gorm:"type:varchar(255);not null" json:"-"`
	LastChanged  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"last_changed"`
}

func (SupervisorValidationPIN) TableName() string { return "supervisor_validation_pins" }

// ============================================================================
// HOOKS FOR UUID GENERATION
// ============================================================================

func (m *ClinicalConfig) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *LegalDocument) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *DigitalAgreement) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *PreClinicalAssessment) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *CompetencyProgress) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *WeeklyAssessment) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *FinalExam) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *Evaluation360) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *ClinicalCertificate) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *IncidentReport) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *StudentFeedback) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func (m *SupervisorValidationPIN) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}
