package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrOnboardingIncomplete = errors.New("pre-clinical onboarding not complete")
	ErrCertificateExists    = errors.New("certificate already issued")
	ErrSelfEvaluationOnly   = errors.New("students may only submit self evaluations")
	ErrExamAlreadyGraded    = errors.New("exam has already been graded")
)

const finalExamPassingScore = 75

// evaluation360Weights maps evaluator roles to their contribution.
var evaluation360Weights = map[string]int{
	"clinical_supervisor": 40,
	"nurse":               30,
	"lecturer":            20,
	"self":                10,
}

type AssessmentService struct {
	assessments *repository.AssessmentRepository
	profiles    *repository.ProfileRepository
	logbook     *repository.LogbookRepository
}

func NewAssessmentService(
	assessments *repository.AssessmentRepository,
	profiles *repository.ProfileRepository,
	logbook *repository.LogbookRepository,
) *AssessmentService {
	return &AssessmentService{
		assessments: assessments,
		profiles:    profiles,
		logbook:     logbook,
	}
}

// SubmitWeekly records a weekly assessment. CBT answers are kept with the
// record; case studies go in as analysis text awaiting supervisor comments.
func (s *AssessmentService) SubmitWeekly(userID uuid.UUID, req dto.SubmitWeeklyAssessmentRequest) (*domain.WeeklyAssessment, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	assessment := &domain.WeeklyAssessment{
		StudentID:      profile.ID,
		WeekNumber:     req.WeekNumber,
		Unit:           req.Unit,
		AssessmentType: req.AssessmentType,
		CaseAnalysis:   req.CaseAnalysis,
		TakenAt:        time.Now(),
	}
	if len(req.Answers) > 0 {
		raw, err := json.Marshal(req.Answers)
		if err != nil {
			return nil, err
		}
		answers := string(raw)
		assessment.Answers = &answers
	}

	if err := s.assessments.CreateWeekly(assessment); err != nil {
		return nil, err
	}
	return assessment, nil
}

// SubmitFinalExam registers an exam attempt. Grading happens separately; the
// attempt starts ungraded and unpassed. Requires completed onboarding.
func (s *AssessmentService) SubmitFinalExam(userID uuid.UUID, req dto.SubmitFinalExamRequest) (*domain.FinalExam, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}
	if !profile.OnboardingComplete {
		return nil, ErrOnboardingIncomplete
	}

	examType := domain.ExamType(req.ExamType)
	attemptCount, err := s.assessments.CountExamAttempts(profile.ID, examType)
	if err != nil {
		return nil, err
	}

	exam := &domain.FinalExam{
		StudentID:      profile.ID,
		ExamType:       examType,
		TotalPoints:    100,
		PassingScore:   finalExamPassingScore,
		AttemptNumber:  int(attemptCount) + 1,
		CaseSubmission: req.CaseSubmission,
		ExamDate:       time.Now(),
	}
	if len(req.Answers) > 0 {
		raw, err := json.Marshal(req.Answers)
		if err != nil {
			return nil, err
		}
		answers := string(raw)
		exam.Stations = &answers
	}

	if err := s.assessments.CreateExam(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// GradeExam records the examiner's score. Passing is decided against the
// exam's stored threshold.
func (s *AssessmentService) GradeExam(examID, examinerID uuid.UUID, req dto.GradeFinalExamRequest) (*domain.FinalExam, error) {
	exam, err := s.assessments.FindExamByID(examID)
	if err != nil {
		return nil, err
	}
	if exam.GradedAt != nil {
		return nil, ErrExamAlreadyGraded
	}

	now := time.Now()
	score := req.Score
	exam.Score = &score
	exam.Passed = score >= exam.PassingScore
	exam.ExaminerID = &examinerID
	exam.ExaminerComments = req.ExaminerComments
	exam.GradedAt = &now
	if err := s.assessments.UpdateExam(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// SubmitEvaluation360 records a multi-rater evaluation with the weight fixed
// by the evaluator role. Non-supervisors may only evaluate themselves.
func (s *AssessmentService) SubmitEvaluation360(evaluator *domain.User, req dto.SubmitEvaluation360Request) (*domain.Evaluation360, error) {
	if req.EvaluatorRole == "self" {
		profile, err := s.profiles.FindByID(req.StudentID)
		if err != nil {
			return nil, err
		}
		if profile.UserID != evaluator.ID {
			return nil, ErrSelfEvaluationOnly
		}
	} else if !evaluator.CanManageCourses() {
		return nil, ErrSelfEvaluationOnly
	}

	eval := &domain.Evaluation360{
		StudentID:               req.StudentID,
		EvaluatorID:             evaluator.ID,
		EvaluatorRole:           req.EvaluatorRole,
		ClinicalCompetencyScore: req.ClinicalCompetencyScore,
		PatientSafetyScore:      req.PatientSafetyScore,
		ProfessionalismScore:    req.ProfessionalismScore,
		CommunicationScore:      req.CommunicationScore,
		LearningAttitudeScore:   req.LearningAttitudeScore,
		EmergencyResponseScore:  req.EmergencyResponseScore,
		WeightPercentage:        evaluation360Weights[req.EvaluatorRole],
		Comments:                req.Comments,
		Strengths:               req.Strengths,
		AreasForImprovement:     req.AreasForImprovement,
		SubmittedAt:             time.Now(),
	}
	if err := s.assessments.CreateEvaluation(eval); err != nil {
		return nil, err
	}
	return eval, nil
}

// Evaluation360Average computes the weighted mean of the per-evaluation
// averages. Evaluations with no scored domains contribute nothing.
func Evaluation360Average(evals []domain.Evaluation360) *float64 {
	totalWeight := 0
	weighted := 0.0
	for _, e := range evals {
		avg, ok := evaluationMean(e)
		if !ok {
			continue
		}
		weighted += avg * float64(e.WeightPercentage)
		totalWeight += e.WeightPercentage
	}
	if totalWeight == 0 {
		return nil
	}
	result := weighted / float64(totalWeight)
	return &result
}

func evaluationMean(e domain.Evaluation360) (float64, bool) {
	scores := []*int{
		e.ClinicalCompetencyScore,
		e.PatientSafetyScore,
		e.ProfessionalismScore,
		e.CommunicationScore,
		e.LearningAttitudeScore,
		e.EmergencyResponseScore,
	}
	sum, n := 0, 0
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}

// IssueCertificate aggregates the student's best results into a one-time
// certificate. Requires completed onboarding.
func (s *AssessmentService) IssueCertificate(studentProfileID, issuerID uuid.UUID, baseURL string) (*domain.ClinicalCertificate, error) {
	profile, err := s.profiles.FindByID(studentProfileID)
	if err != nil {
		return nil, err
	}
	if !profile.OnboardingComplete {
		return nil, ErrOnboardingIncomplete
	}

	if _, err := s.assessments.FindCertificateByStudent(profile.ID); err == nil {
		return nil, ErrCertificateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pretest, err := s.assessments.BestScore(profile.ID, domain.AssessmentPretest)
	if err != nil {
		return nil, err
	}
	posttest, err := s.assessments.BestScore(profile.ID, domain.AssessmentPosttest)
	if err != nil {
		return nil, err
	}
	cbt, err := s.assessments.BestExamScore(profile.ID, domain.ExamCBT)
	if err != nil {
		return nil, err
	}
	osce, err := s.assessments.BestExamScore(profile.ID, domain.ExamMiniOSCE)
	if err != nil {
		return nil, err
	}
	caseStudy, err := s.assessments.BestExamScore(profile.ID, domain.ExamCaseStudy)
	if err != nil {
		return nil, err
	}

	evals, err := s.assessments.ListEvaluations(profile.ID)
	if err != nil {
		return nil, err
	}
	evalAvg := Evaluation360Average(evals)

	competencyPct, err := s.competencyAchievement(profile.ID)
	if err != nil {
		return nil, err
	}

	number := certificateNumber(profile.StudentID)
	verificationURL := fmt.Sprintf("%s/api/v1/clinical/certificates/verify/%s", strings.TrimRight(baseURL, "/"), number)

	cert := &domain.ClinicalCertificate{
		StudentID:             profile.ID,
		CertificateNumber:     number,
		FinalScore:            averageOfScores(posttest, cbt, osce, caseStudy),
		PretestScore:          pretest,
		PosttestScore:         posttest,
		CBTScore:              cbt,
		OSCEScore:             osce,
		CaseStudyScore:        caseStudy,
		Evaluation360Average:  evalAvg,
		CompetencyAchievedPct: competencyPct,
		IssuedByID:            &issuerID,
		IssuedAt:              time.Now(),
		VerificationURL:       &verificationURL,
	}
	if err := s.assessments.CreateCertificate(cert); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *AssessmentService) competencyAchievement(studentID uuid.UUID) (*float64, error) {
	items, err := s.logbook.ListProgress(studentID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	achieved := 0
	for _, p := range items {
		if p.CompetencyLevel == domain.LevelCompetent || p.CompetencyLevel == domain.LevelAdvanced {
			achieved++
		}
	}
	pct := float64(achieved) / float64(len(items)) * 100
	return &pct, nil
}

func averageOfScores(scores ...*int) *float64 {
	sum, n := 0, 0
	for _, s := range scores {
		if s != nil {
			sum += *s
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

func certificateNumber(studentID string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("CERT-%d-%s-%s", time.Now().Year(), studentID, suffix)
}

func (s *AssessmentService) requireProfile(userID uuid.UUID) (*domain.StudentProfile, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
