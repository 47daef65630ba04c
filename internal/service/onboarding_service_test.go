package service

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/database"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newOnboardingService(db *gorm.DB) *OnboardingService {
	return NewOnboardingService(
		repository.NewProfileRepository(db),
		repository.NewDocumentRepository(db),
		repository.NewAssessmentRepository(db),
		repository.NewCourseRepository(db),
		repository.NewConfigRepository(db),
	)
}

// createUser inserts a user row and returns it.
func createUser(t *testing.T, db *gorm.DB, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     fmt.Sprintf("user-%s", uuid.New().String()[:8]),
		Email:        fmt.Sprintf("%s@test.local", uuid.New().String()[:8]),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createStudent inserts a user with a registered student profile.
func createStudent(t *testing.T, db *gorm.DB, studentID string) (*domain.User, *domain.StudentProfile) {
	t.Helper()
	user := createUser(t, db, domain.RoleUser)
	profile := &domain.StudentProfile{
		UserID:      user.ID,
		StudentID:   studentID,
		Institution: "STIKes Harapan Bangsa",
		Program:     "Keperawatan",
	}
	require.NoError(t, db.Create(profile).Error)
	return user, profile
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

// correctAnswers builds a fully correct submission for a question set.
func correctAnswers(questions domain.QuestionList) map[string]string {
	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[strconv.Itoa(q.ID)] = q.CorrectOption
	}
	return answers
}

func TestEvaluateGatesAllStagesComplete(t *testing.T) {
	result := EvaluateGates(GateSnapshot{
		DocumentsDone: 4, DocumentsRequired: 4,
		AgreementsDone: 4, AgreementsRequired: 4,
		CoursesDone: 2, CoursesRequired: 2,
		PosttestPassed: true,
	})

	assert.True(t, result.Documents.Complete)
	assert.True(t, result.Agreements.Complete)
	assert.True(t, result.Elearning.Complete)
	assert.True(t, result.Pretest.Complete)
	assert.True(t, result.OnboardingComplete)
}

func TestEvaluateGatesEmptyRequirementNeverSatisfied(t *testing.T) {
	// Zero configured items means nothing can be done, and "0 of 0" must not
	// read as complete.
	result := EvaluateGates(GateSnapshot{
		DocumentsDone: 0, DocumentsRequired: 0,
		AgreementsDone: 0, AgreementsRequired: 0,
		CoursesDone: 0, CoursesRequired: 0,
		PosttestPassed: true,
	})

	assert.False(t, result.Documents.Complete)
	assert.False(t, result.Agreements.Complete)
	assert.False(t, result.Elearning.Complete)
	assert.False(t, result.OnboardingComplete)
}

func TestEvaluateGatesPartialProgress(t *testing.T) {
	result := EvaluateGates(GateSnapshot{
		DocumentsDone: 3, DocumentsRequired: 4,
		AgreementsDone: 4, AgreementsRequired: 4,
		CoursesDone: 1, CoursesRequired: 1,
		PosttestPassed: false,
	})

	assert.False(t, result.Documents.Complete)
	assert.Equal(t, 3, result.Documents.Done)
	assert.Equal(t, 4, result.Documents.Required)
	assert.True(t, result.Agreements.Complete)
	assert.True(t, result.Elearning.Complete)
	assert.False(t, result.Pretest.Complete)
	assert.Equal(t, 0, result.Pretest.Done)
	assert.False(t, result.OnboardingComplete)
}

func TestEvaluateGatesIsIdempotent(t *testing.T) {
	snapshot := GateSnapshot{
		DocumentsDone: 2, DocumentsRequired: 4,
		AgreementsDone: 1, AgreementsRequired: 4,
		CoursesDone: 0, CoursesRequired: 1,
		PosttestPassed: false,
	}
	first := EvaluateGates(snapshot)
	second := EvaluateGates(snapshot)
	assert.Equal(t, first, second)
}

func TestScoreAssessmentRoundingAtThreshold(t *testing.T) {
	testCases := []struct {
		correct, total int
		wantScore      int
		wantPassed     bool
	}{
		{30, 30, 100, true},
		{24, 30, 80, true},  // exactly at the threshold
		{23, 30, 77, false}, // 76.67 rounds up but still below 80
		{0, 30, 0, false},
		{3, 3, 100, true},
		{2, 3, 67, false},
	}
	for _, tc := range testCases {
		score, passed := ScoreAssessment(tc.correct, tc.total, 80)
		assert.Equal(t, tc.wantScore, score, "%d/%d", tc.correct, tc.total)
		assert.Equal(t, tc.wantPassed, passed, "%d/%d", tc.correct, tc.total)
	}
}

func TestScoreAssessmentZeroTotalNeverPasses(t *testing.T) {
	score, passed := ScoreAssessment(0, 0, 80)
	assert.Equal(t, 0, score)
	assert.False(t, passed)
}

func TestRegisterCreatesProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user := createUser(t, db, domain.RoleUser)

	profile, err := svc.Register(user.ID, dto.RegisterStudentRequest{
		StudentID:   "20260001",
		Institution: "STIKes Harapan Bangsa",
		Program:     "Keperawatan",
		Cohort:      strPtr("2026"),
	})
	require.NoError(t, err)
	assert.Equal(t, "20260001", profile.StudentID)
	assert.False(t, profile.OnboardingComplete)
}

func TestRegisterRejectsTakenStudentID(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	createStudent(t, db, "20260001")
	other := createUser(t, db, domain.RoleUser)

	_, err := svc.Register(other.ID, dto.RegisterStudentRequest{
		StudentID:   "20260001",
		Institution: "STIKes Harapan Bangsa",
		Program:     "Keperawatan",
	})
	assert.ErrorIs(t, err, ErrStudentIDTaken)
}

func TestRegisterUpdatesExistingProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")

	updated, err := svc.Register(user.ID, dto.RegisterStudentRequest{
		StudentID:   "20260001",
		Institution: "Universitas Airlangga",
		Program:     "Keperawatan",
	})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, updated.ID)
	assert.Equal(t, "Universitas Airlangga", updated.Institution)

	var count int64
	db.Model(&domain.StudentProfile{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUploadDocumentRejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, _ := createStudent(t, db, "20260001")

	_, err := svc.UploadDocument(user.ID, dto.UploadDocumentRequest{
		DocumentType: "driving_license",
		FilePath:     "documents/x.pdf",
	})
	assert.ErrorIs(t, err, ErrInvalidDocumentType)
}

func TestUploadDocumentReplacesPreviousOfSameType(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")

	first, err := svc.UploadDocument(user.ID, dto.UploadDocumentRequest{
		DocumentType: "referral",
		FilePath:     "documents/v1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentPending, first.Status)

	_, err = svc.UploadDocument(user.ID, dto.UploadDocumentRequest{
		DocumentType: "referral",
		FilePath:     "documents/v2.pdf",
	})
	require.NoError(t, err)

	var docs []domain.LegalDocument
	require.NoError(t, db.Where("student_id = ?", profile.ID).Find(&docs).Error)
	require.Len(t, docs, 1)
	assert.Equal(t, "documents/v2.pdf", docs[0].FilePath)
	assert.Equal(t, domain.DocumentPending, docs[0].Status)
}

func TestRejectedDocumentClearsDocumentsFlag(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")
	admin := createUser(t, db, domain.RoleAdmin)

	// All four configured document types uploaded; pending counts toward the gate.
	for _, docType := range []string{"referral", "health", "insurance", "integrity_pact"} {
		_, err := svc.UploadDocument(user.ID, dto.UploadDocumentRequest{
			DocumentType: docType,
			FilePath:     "documents/" + docType + ".pdf",
		})
		require.NoError(t, err)
	}

	_, result, err := svc.Status(user.ID)
	require.NoError(t, err)
	assert.True(t, result.Documents.Complete)

	var doc domain.LegalDocument
	require.NoError(t, db.Where("student_id = ? AND document_type = ?", profile.ID, "health").First(&doc).Error)

	_, err = svc.VerifyDocument(doc.ID, admin.ID, dto.VerifyDocumentRequest{
		Status: "rejected",
		Notes:  strPtr("Dokumen tidak terbaca"),
	})
	require.NoError(t, err)

	var reloaded domain.StudentProfile
	require.NoError(t, db.First(&reloaded, "id = ?", profile.ID).Error)
	assert.False(t, reloaded.DocumentsVerified)
}

func TestSignAgreementIsOneTime(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, _ := createStudent(t, db, "20260001")

	req := dto.SignAgreementRequest{
		AgreementType: "confidentiality",
		SignatureData: "data:image/png;base64,abc",
	}
	require.NoError(t, svc.SignAgreement(user.ID, req, "10.0.0.1"))

	err := svc.SignAgreement(user.ID, req, "10.0.0.1")
	assert.ErrorIs(t, err, ErrAgreementSigned)
}

func TestSignAgreementRejectsUnknownType(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, _ := createStudent(t, db, "20260001")

	err := svc.SignAgreement(user.ID, dto.SignAgreementRequest{
		AgreementType: "parking",
		SignatureData: "data:image/png;base64,abc",
	}, "10.0.0.1")
	assert.ErrorIs(t, err, ErrInvalidAgreementType)
}

func TestListAgreementsMergesSignatures(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, _ := createStudent(t, db, "20260001")

	require.NoError(t, svc.SignAgreement(user.ID, dto.SignAgreementRequest{
		AgreementType: "ethics",
		SignatureData: "data:image/png;base64,abc",
	}, "10.0.0.1"))

	agreements, err := svc.ListAgreements(user.ID)
	require.NoError(t, err)
	require.Len(t, agreements, 4)

	signed := 0
	for _, a := range agreements {
		if a.Signed {
			signed++
			assert.Equal(t, "ethics", a.Type)
			assert.NotNil(t, a.SignedAt)
		}
	}
	assert.Equal(t, 1, signed)
}

func TestStatusKeepsEarnedAgreementsFlagAfterConfigChange(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")

	for _, agreementType := range []string{"confidentiality", "ethics", "discipline", "emergency"} {
		require.NoError(t, svc.SignAgreement(user.ID, dto.SignAgreementRequest{
			AgreementType: agreementType,
			SignatureData: "data:image/png;base64,abc",
		}, "10.0.0.1"))
	}

	var before domain.StudentProfile
	require.NoError(t, db.First(&before, "id = ?", profile.ID).Error)
	require.True(t, before.AgreementsSigned)

	// Admin adds a fifth agreement type after the student already earned the
	// flag. A dashboard read must not claw it back.
	configRepo := repository.NewConfigRepository(db)
	config, err := configRepo.GetOrCreate()
	require.NoError(t, err)
	config.Agreements = append(config.Agreements, domain.AgreementTemplate{
		Type:  "radiation_safety",
		Title: "Keselamatan Radiasi",
		Text:  "Saya memahami prosedur keselamatan radiasi.",
	})
	require.NoError(t, db.Save(config).Error)

	_, result, err := svc.Status(user.ID)
	require.NoError(t, err)
	assert.False(t, result.Agreements.Complete)
	assert.Equal(t, 5, result.Agreements.Required)

	var reloaded domain.StudentProfile
	require.NoError(t, db.First(&reloaded, "id = ?", profile.ID).Error)
	assert.True(t, reloaded.AgreementsSigned)
}

func TestQuestionsStripCorrectOption(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)

	questions, err := svc.Questions(domain.AssessmentPretest)
	require.NoError(t, err)
	require.NotEmpty(t, questions)
	for _, q := range questions {
		assert.NotEmpty(t, q.Question)
		assert.NotEmpty(t, q.Options)
	}
}

func TestTakePretestRecordsAttemptNumbers(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, _ := createStudent(t, db, "20260001")

	config, err := repository.NewConfigRepository(db).GetOrCreate()
	require.NoError(t, err)

	first, err := svc.TakeAssessment(user.ID, domain.AssessmentPretest, dto.SubmitAssessmentRequest{
		Answers: map[string]string{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptNumber)
	assert.Equal(t, 0, first.Score)
	assert.False(t, first.Passed)

	second, err := svc.TakeAssessment(user.ID, domain.AssessmentPretest, dto.SubmitAssessmentRequest{
		Answers: correctAnswers(config.PretestQuestions),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptNumber)
	assert.Equal(t, 100, second.Score)
	assert.True(t, second.Passed)
}

func TestPosttestRequiresElearning(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, _ := createStudent(t, db, "20260001")

	config, err := repository.NewConfigRepository(db).GetOrCreate()
	require.NoError(t, err)

	_, err = svc.TakeAssessment(user.ID, domain.AssessmentPosttest, dto.SubmitAssessmentRequest{
		Answers: correctAnswers(config.PosttestQuestions),
	})
	assert.ErrorIs(t, err, ErrElearningIncomplete)
}

// enrollInClinicalCourse creates one clinical course and enrolls the user,
// satisfying the e-learning gate when no explicit requirement set exists.
func enrollInClinicalCourse(t *testing.T, db *gorm.DB, userID uuid.UUID) {
	t.Helper()
	instructor := createUser(t, db, domain.RolePemateri)
	course := &domain.Course{
		Title:        "Orientasi Keselamatan Pasien",
		InstructorID: instructor.ID,
		Category:     domain.CategoryClinical,
	}
	require.NoError(t, db.Create(course).Error)
	require.NoError(t, repository.NewCourseRepository(db).Enroll(userID, course.ID))
}

func TestPassingPosttestCompletesOnboarding(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")
	enrollInClinicalCourse(t, db, user.ID)

	config, err := repository.NewConfigRepository(db).GetOrCreate()
	require.NoError(t, err)

	attempt, err := svc.TakeAssessment(user.ID, domain.AssessmentPosttest, dto.SubmitAssessmentRequest{
		Answers: correctAnswers(config.PosttestQuestions),
	})
	require.NoError(t, err)
	assert.True(t, attempt.Passed)
	assert.Equal(t, domain.AssessmentPosttest, attempt.AssessmentType)

	var reloaded domain.StudentProfile
	require.NoError(t, db.First(&reloaded, "id = ?", profile.ID).Error)
	assert.True(t, reloaded.PretestPassed)
	assert.True(t, reloaded.ElearningCompleted)
	assert.True(t, reloaded.OnboardingComplete)
}

func TestPassingPosttestCompletesOnboardingWithoutDocuments(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")
	enrollInClinicalCourse(t, db, user.ID)

	config, err := repository.NewConfigRepository(db).GetOrCreate()
	require.NoError(t, err)

	// No documents or agreements: a passing posttest still completes
	// onboarding outright.
	_, err = svc.TakeAssessment(user.ID, domain.AssessmentPosttest, dto.SubmitAssessmentRequest{
		Answers: correctAnswers(config.PosttestQuestions),
	})
	require.NoError(t, err)

	var reloaded domain.StudentProfile
	require.NoError(t, db.First(&reloaded, "id = ?", profile.ID).Error)
	assert.True(t, reloaded.OnboardingComplete)
}

func TestFullOnboardingFlowFlipsCompleteFlag(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user, profile := createStudent(t, db, "20260001")
	enrollInClinicalCourse(t, db, user.ID)

	for _, docType := range []string{"referral", "health", "insurance", "integrity_pact"} {
		_, err := svc.UploadDocument(user.ID, dto.UploadDocumentRequest{
			DocumentType: docType,
			FilePath:     "documents/" + docType + ".pdf",
		})
		require.NoError(t, err)
	}
	for _, agreementType := range []string{"confidentiality", "ethics", "discipline", "emergency"} {
		require.NoError(t, svc.SignAgreement(user.ID, dto.SignAgreementRequest{
			AgreementType: agreementType,
			SignatureData: "data:image/png;base64,abc",
		}, "10.0.0.1"))
	}

	config, err := repository.NewConfigRepository(db).GetOrCreate()
	require.NoError(t, err)
	_, err = svc.TakeAssessment(user.ID, domain.AssessmentPosttest, dto.SubmitAssessmentRequest{
		Answers: correctAnswers(config.PosttestQuestions),
	})
	require.NoError(t, err)

	_, result, err := svc.Status(user.ID)
	require.NoError(t, err)
	assert.True(t, result.OnboardingComplete)

	var reloaded domain.StudentProfile
	require.NoError(t, db.First(&reloaded, "id = ?", profile.ID).Error)
	assert.True(t, reloaded.OnboardingComplete)
}

func TestStatusWithoutProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newOnboardingService(db)
	user := createUser(t, db, domain.RoleUser)

	_, _, err := svc.Status(user.ID)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
