package service

import (
	"regexp"
	"testing"

	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAssessmentService(db *gorm.DB) *AssessmentService {
	return NewAssessmentService(
		repository.NewAssessmentRepository(db),
		repository.NewProfileRepository(db),
		repository.NewLogbookRepository(db),
	)
}

func markOnboardingComplete(t *testing.T, db *gorm.DB, profile *domain.StudentProfile) {
	t.Helper()
	profile.DocumentsVerified = true
	profile.AgreementsSigned = true
	profile.ElearningCompleted = true
	profile.PretestPassed = true
	profile.OnboardingComplete = true
	require.NoError(t, db.Save(profile).Error)
}

func TestSubmitWeeklyKeepsAnswers(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	user, profile := createStudent(t, db, "20260001")

	assessment, err := svc.SubmitWeekly(user.ID, dto.SubmitWeeklyAssessmentRequest{
		WeekNumber:     2,
		Unit:           "IGD",
		AssessmentType: "cbt",
		Answers:        map[string]string{"1": "A", "2": "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, assessment.StudentID)
	assert.Equal(t, 2, assessment.WeekNumber)
	require.NotNil(t, assessment.Answers)
	assert.Contains(t, *assessment.Answers, `"1":"A"`)
}

func TestFinalExamRequiresOnboarding(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	user, _ := createStudent(t, db, "20260001")

	_, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	assert.ErrorIs(t, err, ErrOnboardingIncomplete)
}

func TestFinalExamAttemptNumbering(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	user, profile := createStudent(t, db, "20260001")
	markOnboardingComplete(t, db, profile)

	first, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.AttemptNumber)
	assert.Nil(t, first.Score)
	assert.False(t, first.Passed)

	second, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.AttemptNumber)

	// A different exam type starts its own sequence
	osce, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "mini_osce"})
	require.NoError(t, err)
	assert.Equal(t, 1, osce.AttemptNumber)
}

func TestGradeExamAgainstStoredThreshold(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	user, profile := createStudent(t, db, "20260001")
	examiner := createUser(t, db, domain.RolePemateri)
	markOnboardingComplete(t, db, profile)

	failing, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	require.NoError(t, err)
	graded, err := svc.GradeExam(failing.ID, examiner.ID, dto.GradeFinalExamRequest{Score: 74})
	require.NoError(t, err)
	assert.False(t, graded.Passed)

	passing, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	require.NoError(t, err)
	graded, err = svc.GradeExam(passing.ID, examiner.ID, dto.GradeFinalExamRequest{
		Score:            75,
		ExaminerComments: strPtr("Cukup baik"),
	})
	require.NoError(t, err)
	assert.True(t, graded.Passed)
	require.NotNil(t, graded.Score)
	assert.Equal(t, 75, *graded.Score)
	assert.NotNil(t, graded.GradedAt)

	_, err = svc.GradeExam(passing.ID, examiner.ID, dto.GradeFinalExamRequest{Score: 90})
	assert.ErrorIs(t, err, ErrExamAlreadyGraded)
}

func TestEvaluation360SelfOnlyForOwnProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	user, profile := createStudent(t, db, "20260001")
	_, otherProfile := createStudent(t, db, "20260002")

	// Self evaluation against another student's profile
	_, err := svc.SubmitEvaluation360(user, dto.SubmitEvaluation360Request{
		StudentID:               otherProfile.ID,
		EvaluatorRole:           "self",
		ClinicalCompetencyScore: intPtr(4),
	})
	assert.ErrorIs(t, err, ErrSelfEvaluationOnly)

	// A plain student cannot act as an external rater either
	_, err = svc.SubmitEvaluation360(user, dto.SubmitEvaluation360Request{
		StudentID:     profile.ID,
		EvaluatorRole: "nurse",
	})
	assert.ErrorIs(t, err, ErrSelfEvaluationOnly)

	eval, err := svc.SubmitEvaluation360(user, dto.SubmitEvaluation360Request{
		StudentID:               profile.ID,
		EvaluatorRole:           "self",
		ClinicalCompetencyScore: intPtr(4),
		CommunicationScore:      intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, eval.WeightPercentage)
}

func TestEvaluation360SupervisorWeight(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	_, profile := createStudent(t, db, "20260001")
	supervisor := createUser(t, db, domain.RolePemateri)

	eval, err := svc.SubmitEvaluation360(supervisor, dto.SubmitEvaluation360Request{
		StudentID:               profile.ID,
		EvaluatorRole:           "clinical_supervisor",
		ClinicalCompetencyScore: intPtr(4),
		PatientSafetyScore:      intPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, 40, eval.WeightPercentage)
	assert.Equal(t, supervisor.ID, eval.EvaluatorID)
}

func TestEvaluation360WeightedAverage(t *testing.T) {
	evals := []domain.Evaluation360{
		{
			EvaluatorRole:           "clinical_supervisor",
			WeightPercentage:        40,
			ClinicalCompetencyScore: intPtr(4),
			PatientSafetyScore:      intPtr(4),
		},
		{
			EvaluatorRole:      "self",
			WeightPercentage:   10,
			CommunicationScore: intPtr(5),
		},
	}

	avg := Evaluation360Average(evals)
	require.NotNil(t, avg)
	// (4.0*40 + 5.0*10) / 50
	assert.InDelta(t, 4.2, *avg, 0.0001)
}

func TestEvaluation360AverageIgnoresUnscored(t *testing.T) {
	evals := []domain.Evaluation360{
		{EvaluatorRole: "nurse", WeightPercentage: 30}, // no scored domains
	}
	assert.Nil(t, Evaluation360Average(evals))
	assert.Nil(t, Evaluation360Average(nil))
}

func TestIssueCertificateOncePerStudent(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	_, profile := createStudent(t, db, "20260001")
	admin := createUser(t, db, domain.RoleAdmin)
	markOnboardingComplete(t, db, profile)

	cert, err := svc.IssueCertificate(profile.ID, admin.ID, "https://diklat.example.com/")
	require.NoError(t, err)
	require.NotNil(t, cert.IssuedByID)
	assert.Equal(t, admin.ID, *cert.IssuedByID)

	pattern := regexp.MustCompile(`^CERT-\d{4}-20260001-[0-9A-F]{8}$`)
	assert.Regexp(t, pattern, cert.CertificateNumber)
	require.NotNil(t, cert.VerificationURL)
	assert.Equal(t,
		"https://diklat.example.com/api/v1/clinical/certificates/verify/"+cert.CertificateNumber,
		*cert.VerificationURL)

	_, err = svc.IssueCertificate(profile.ID, admin.ID, "https://diklat.example.com")
	assert.ErrorIs(t, err, ErrCertificateExists)
}

func TestIssueCertificateRequiresOnboarding(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	_, profile := createStudent(t, db, "20260001")
	admin := createUser(t, db, domain.RoleAdmin)

	_, err := svc.IssueCertificate(profile.ID, admin.ID, "https://diklat.example.com")
	assert.ErrorIs(t, err, ErrOnboardingIncomplete)
}

func TestCertificateAggregatesBestScores(t *testing.T) {
	db := setupTestDB(t)
	svc := newAssessmentService(db)
	user, profile := createStudent(t, db, "20260001")
	examiner := createUser(t, db, domain.RolePemateri)
	admin := createUser(t, db, domain.RoleAdmin)
	markOnboardingComplete(t, db, profile)

	// Two CBT attempts; the certificate keeps the better score.
	first, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	require.NoError(t, err)
	_, err = svc.GradeExam(first.ID, examiner.ID, dto.GradeFinalExamRequest{Score: 70})
	require.NoError(t, err)
	second, err := svc.SubmitFinalExam(user.ID, dto.SubmitFinalExamRequest{ExamType: "cbt"})
	require.NoError(t, err)
	_, err = svc.GradeExam(second.ID, examiner.ID, dto.GradeFinalExamRequest{Score: 88})
	require.NoError(t, err)

	_, err = svc.SubmitEvaluation360(examiner, dto.SubmitEvaluation360Request{
		StudentID:               profile.ID,
		EvaluatorRole:           "clinical_supervisor",
		ClinicalCompetencyScore: intPtr(4),
	})
	require.NoError(t, err)

	cert, err := svc.IssueCertificate(profile.ID, admin.ID, "https://diklat.example.com")
	require.NoError(t, err)
	require.NotNil(t, cert.CBTScore)
	assert.Equal(t, 88, *cert.CBTScore)
	assert.Nil(t, cert.OSCEScore)
	require.NotNil(t, cert.Evaluation360Average)
	assert.InDelta(t, 4.0, *cert.Evaluation360Average, 0.0001)
	require.NotNil(t, cert.FinalScore)
	assert.InDelta(t, 88.0, *cert.FinalScore, 0.0001)
}
