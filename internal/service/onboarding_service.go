package service

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound      = errors.New("student profile not found")
	ErrProfileExists        = errors.New("student profile already exists")
	ErrStudentIDTaken       = errors.New("student id already registered")
	ErrInvalidDocumentType  = errors.New("document type is not configured")
	ErrInvalidAgreementType = errors.New("agreement type is not configured")
	ErrAgreementSigned      = errors.New("agreement already signed")
	ErrElearningIncomplete  = errors.New("e-learning modules not completed")
	ErrNoQuestions          = errors.New("no questions configured")
)

const preClinicalPassingScore = 80

// GateSnapshot captures everything gate evaluation needs, so the evaluation
// itself stays a pure function over counts.
type GateSnapshot struct {
	DocumentsDone      int
	DocumentsRequired  int
	AgreementsDone     int
	AgreementsRequired int
	CoursesDone        int
	CoursesRequired    int
	PosttestPassed     bool
}

// GateResult is the evaluated stage state derived from a snapshot.
type GateResult struct {
	Documents          dto.GateStatusDTO
	Agreements         dto.GateStatusDTO
	Elearning          dto.GateStatusDTO
	Pretest            dto.GateStatusDTO
	OnboardingComplete bool
}

// EvaluateGates derives the onboarding stage states from a snapshot. Each
// stage requires at least one configured item; an empty requirement set can
// never be satisfied.
func EvaluateGates(s GateSnapshot) GateResult {
	documents := dto.GateStatusDTO{
		Done:     s.DocumentsDone,
		Required: s.DocumentsRequired,
		Complete: s.DocumentsRequired > 0 && s.DocumentsDone >= s.DocumentsRequired,
	}
	agreements := dto.GateStatusDTO{
		Done:     s.AgreementsDone,
		Required: s.AgreementsRequired,
		Complete: s.AgreementsRequired > 0 && s.AgreementsDone >= s.AgreementsRequired,
	}
	elearning := dto.GateStatusDTO{
		Done:     s.CoursesDone,
		Required: s.CoursesRequired,
		Complete: s.CoursesRequired > 0 && s.CoursesDone >= s.CoursesRequired,
	}
	pretest := dto.GateStatusDTO{
		Required: 1,
		Complete: s.PosttestPassed,
	}
	if s.PosttestPassed {
		pretest.Done = 1
	}

	return GateResult{
		Documents:          documents,
		Agreements:         agreements,
		Elearning:          elearning,
		Pretest:            pretest,
		OnboardingComplete: documents.Complete && agreements.Complete && elearning.Complete && pretest.Complete,
	}
}

// ScoreAssessment computes a percentage score, rounded to the nearest
// integer, and whether it clears the passing threshold.
func ScoreAssessment(correct, total, passingScore int) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	score := int(math.Round(float64(correct) / float64(total) * 100))
	return score, score >= passingScore
}

type OnboardingService struct {
	profiles    *repository.ProfileRepository
	documents   *repository.DocumentRepository
	assessments *repository.AssessmentRepository
	courses     *repository.CourseRepository
	config      *repository.ConfigRepository
}

func NewOnboardingService(
	profiles *repository.ProfileRepository,
	documents *repository.DocumentRepository,
	assessments *repository.AssessmentRepository,
	courses *repository.CourseRepository,
	config *repository.ConfigRepository,
) *OnboardingService {
	return &OnboardingService{
		profiles:    profiles,
		documents:   documents,
		assessments: assessments,
		courses:     courses,
		config:      config,
	}
}

// Register creates or updates the student profile. The onboarding flags are
// never touched here.
func (s *OnboardingService) Register(userID uuid.UUID, req dto.RegisterStudentRequest) (*domain.StudentProfile, error) {
	existing, err := s.profiles.FindByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	startDate, err := parseDatePtr(req.PracticeStartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDatePtr(req.PracticeEndDate)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		if existing.StudentID != req.StudentID {
			taken, err := s.profiles.StudentIDExists(req.StudentID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrStudentIDTaken
			}
		}
		existing.StudentID = req.StudentID
		existing.Institution = req.Institution
		existing.Program = req.Program
		existing.Cohort = req.Cohort
		existing.PlacementHospital = req.PlacementHospital
		existing.PracticeStartDate = startDate
		existing.PracticeEndDate = endDate
		if err := s.profiles.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	taken, err := s.profiles.StudentIDExists(req.StudentID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrStudentIDTaken
	}

	profile := &domain.StudentProfile{
		UserID:            userID,
		StudentID:         req.StudentID,
		Institution:       req.Institution,
		Program:           req.Program,
		Cohort:            req.Cohort,
		PlacementHospital: req.PlacementHospital,
		PracticeStartDate: startDate,
		PracticeEndDate:   endDate,
	}
	if err := s.profiles.Create(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Snapshot gathers current gate counts for a student from the live
// configuration.
func (s *OnboardingService) Snapshot(profile *domain.StudentProfile) (GateSnapshot, error) {
	config, err := s.config.GetOrCreate()
	if err != nil {
		return GateSnapshot{}, err
	}

	docs, err := s.documents.ListByStudent(profile.ID)
	if err != nil {
		return GateSnapshot{}, err
	}
	requiredDocTypes := make(map[string]bool, len(config.Documents))
	for _, rule := range config.Documents {
		requiredDocTypes[rule.Type] = true
	}
	docsDone := 0
	for _, d := range docs {
		if requiredDocTypes[d.DocumentType] && (d.Status == domain.DocumentPending || d.Status == domain.DocumentVerified) {
			docsDone++
		}
	}

	agreementTypes := make([]string, 0, len(config.Agreements))
	for _, a := range config.Agreements {
		agreementTypes = append(agreementTypes, a.Type)
	}
	agreementsDone, err := s.documents.CountSignedAgreements(profile.ID, agreementTypes)
	if err != nil {
		return GateSnapshot{}, err
	}

	coursesDone, coursesRequired, err := s.elearningProgress(profile.UserID, config)
	if err != nil {
		return GateSnapshot{}, err
	}

	posttestPassed, err := s.hasPassed(profile.ID, domain.AssessmentPosttest)
	if err != nil {
		return GateSnapshot{}, err
	}

	return GateSnapshot{
		DocumentsDone:      docsDone,
		DocumentsRequired:  len(config.Documents),
		AgreementsDone:     int(agreementsDone),
		AgreementsRequired: len(config.Agreements),
		CoursesDone:        coursesDone,
		CoursesRequired:    coursesRequired,
		PosttestPassed:     posttestPassed,
	}, nil
}

// Status evaluates the gates and persists any flag changes on the profile.
// Evaluation is pure; this is the only place the result is applied.
func (s *OnboardingService) Status(userID uuid.UUID) (*domain.StudentProfile, GateResult, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, GateResult{}, ErrProfileNotFound
		}
		return nil, GateResult{}, err
	}

	snapshot, err := s.Snapshot(profile)
	if err != nil {
		return nil, GateResult{}, err
	}
	result := EvaluateGates(snapshot)

	if err := s.apply(profile, result); err != nil {
		return nil, GateResult{}, err
	}
	return profile, result, nil
}

// apply writes the evaluated gate state onto the profile. Earned flags are
// only ever raised here: a document rejection is the one path that clears
// documents_verified, and agreements_signed never goes back down. Only the
// e-learning flag tracks the live requirement set in both directions.
func (s *OnboardingService) apply(profile *domain.StudentProfile, result GateResult) error {
	changed := false
	if result.Documents.Complete && !profile.DocumentsVerified {
		profile.DocumentsVerified = true
		changed = true
	}
	if result.Agreements.Complete && !profile.AgreementsSigned {
		profile.AgreementsSigned = true
		changed = true
	}
	if profile.ElearningCompleted != result.Elearning.Complete {
		profile.ElearningCompleted = result.Elearning.Complete
		changed = true
	}
	if result.Pretest.Complete && !profile.PretestPassed {
		profile.PretestPassed = true
		changed = true
	}
	if result.OnboardingComplete && !profile.OnboardingComplete {
		profile.OnboardingComplete = true
		changed = true
	}
	if !changed {
		return nil
	}
	return s.profiles.Update(profile)
}

func (s *OnboardingService) elearningProgress(userID uuid.UUID, config *domain.ClinicalConfig) (done, required int, err error) {
	if len(config.RequiredCourseIDs) > 0 {
		count, err := s.courses.CountEnrolledRequired(userID, config.RequiredCourseIDs)
		if err != nil {
			return 0, 0, err
		}
		return int(count), len(config.RequiredCourseIDs), nil
	}

	// No explicit requirement set: fall back to all clinical-category courses.
	clinical, total, err := s.courses.List(1, 1000, string(domain.CategoryClinical), "")
	if err != nil {
		return 0, 0, err
	}
	ids := make([]uuid.UUID, 0, len(clinical))
	for _, c := range clinical {
		ids = append(ids, c.ID)
	}
	enrolled, err := s.courses.CountEnrolledRequired(userID, ids)
	if err != nil {
		return 0, 0, err
	}
	return int(enrolled), int(total), nil
}

func (s *OnboardingService) hasPassed(studentID uuid.UUID, assessmentType domain.AssessmentType) (bool, error) {
	attempts, err := s.assessments.ListAttempts(studentID, assessmentType)
	if err != nil {
		return false, err
	}
	for _, a := range attempts {
		if a.Passed {
			return true, nil
		}
	}
	return false, nil
}

// UploadDocument stores a document upload, replacing any previous one of the
// same type and putting it back into review.
func (s *OnboardingService) UploadDocument(userID uuid.UUID, req dto.UploadDocumentRequest) (*domain.LegalDocument, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	config, err := s.config.GetOrCreate()
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, rule := range config.Documents {
		if rule.Type == req.DocumentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidDocumentType
	}

	expiration, err := parseDatePtr(req.ExpirationDate)
	if err != nil {
		return nil, err
	}

	doc := &domain.LegalDocument{
		StudentID:      profile.ID,
		DocumentType:   req.DocumentType,
		FilePath:       req.FilePath,
		Status:         domain.DocumentPending,
		ExpirationDate: expiration,
		UploadedAt:     time.Now(),
	}
	if err := s.documents.Upsert(doc); err != nil {
		return nil, err
	}

	// Re-evaluate so the documents flag reflects the new upload.
	if _, _, err := s.Status(userID); err != nil {
		return nil, err
	}
	return doc, nil
}

// VerifyDocument applies an admin review decision. A rejection is the only
// path that clears the documents flag on the profile.
func (s *OnboardingService) VerifyDocument(docID, reviewerID uuid.UUID, req dto.VerifyDocumentRequest) (*domain.LegalDocument, error) {
	doc, err := s.documents.FindByID(docID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc.Status = domain.DocumentStatus(req.Status)
	doc.VerifiedByID = &reviewerID
	doc.VerificationNotes = req.Notes
	doc.VerifiedAt = &now
	if err := s.documents.Update(doc); err != nil {
		return nil, err
	}

	if doc.Status == domain.DocumentRejected {
		profile, err := s.profiles.FindByID(doc.StudentID)
		if err != nil {
			return nil, err
		}
		if profile.DocumentsVerified {
			profile.DocumentsVerified = false
			if err := s.profiles.Update(profile); err != nil {
				return nil, err
			}
		}
	}
	return doc, nil
}

// ListAgreements merges the configured agreement set with the student's
// signatures.
func (s *OnboardingService) ListAgreements(userID uuid.UUID) ([]dto.AgreementDTO, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	config, err := s.config.GetOrCreate()
	if err != nil {
		return nil, err
	}
	signed, err := s.documents.ListAgreements(profile.ID)
	if err != nil {
		return nil, err
	}
	signedByType := make(map[string]*domain.DigitalAgreement, len(signed))
	for i := range signed {
		signedByType[signed[i].AgreementType] = &signed[i]
	}

	out := make([]dto.AgreementDTO, 0, len(config.Agreements))
	for _, tmpl := range config.Agreements {
		item := dto.AgreementDTO{
			Type:  tmpl.Type,
			Title: tmpl.Title,
			Text:  tmpl.Text,
		}
		if a, ok := signedByType[tmpl.Type]; ok && a.Signed {
			item.Signed = true
			item.SignedAt = a.SignatureTimestamp
		}
		out = append(out, item)
	}
	return out, nil
}

// SignAgreement records a one-time signature for a configured agreement.
func (s *OnboardingService) SignAgreement(userID uuid.UUID, req dto.SignAgreementRequest, ipAddress string) error {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return err
	}

	config, err := s.config.GetOrCreate()
	if err != nil {
		return err
	}
	var template *domain.AgreementTemplate
	for i := range config.Agreements {
		if config.Agreements[i].Type == req.AgreementType {
			template = &config.Agreements[i]
			break
		}
	}
	if template == nil {
		return ErrInvalidAgreementType
	}

	existing, err := s.documents.FindAgreement(profile.ID, req.AgreementType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil && existing.Signed {
		return ErrAgreementSigned
	}

	now := time.Now()
	if existing != nil {
		existing.Signed = true
		existing.SignatureData = &req.SignatureData
		existing.SignatureTimestamp = &now
		existing.IPAddress = &ipAddress
		err = s.documents.SaveAgreement(existing)
	} else {
		err = s.documents.CreateAgreement(&domain.DigitalAgreement{
			StudentID:          profile.ID,
			AgreementType:      req.AgreementType,
			Content:            template.Text,
			Signed:             true,
			SignatureData:      &req.SignatureData,
			SignatureTimestamp: &now,
			IPAddress:          &ipAddress,
		})
	}
	if err != nil {
		return err
	}

	_, _, err = s.Status(userID)
	return err
}

// Questions returns the configured question set for a test, with the correct
// options stripped.
func (s *OnboardingService) Questions(assessmentType domain.AssessmentType) ([]dto.QuestionDTO, error) {
	config, err := s.config.GetOrCreate()
	if err != nil {
		return nil, err
	}
	source := config.PretestQuestions
	if assessmentType == domain.AssessmentPosttest {
		source = config.PosttestQuestions
	}

	out := make([]dto.QuestionDTO, 0, len(source))
	for _, q := range source {
		out = append(out, dto.QuestionDTO{
			ID:       q.ID,
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return out, nil
}

// TakeAssessment grades a pretest or posttest submission against the
// configured answer key and records an immutable attempt. Passing the
// posttest completes onboarding.
func (s *OnboardingService) TakeAssessment(userID uuid.UUID, assessmentType domain.AssessmentType, req dto.SubmitAssessmentRequest) (*domain.PreClinicalAssessment, error) {
	profile, err := s.requireProfile(userID)
	if err != nil {
		return nil, err
	}

	config, err := s.config.GetOrCreate()
	if err != nil {
		return nil, err
	}
	questions := config.PretestQuestions
	if assessmentType == domain.AssessmentPosttest {
		questions = config.PosttestQuestions

		// The posttest is gated behind the e-learning modules.
		done, required, err := s.elearningProgress(userID, config)
		if err != nil {
			return nil, err
		}
		if required == 0 || done < required {
			return nil, ErrElearningIncomplete
		}
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	correct := 0
	for _, q := range questions {
		if answer, ok := req.Answers[strconv.Itoa(q.ID)]; ok && answer == q.CorrectOption {
			correct++
		}
	}
	score, passed := ScoreAssessment(correct, len(questions), preClinicalPassingScore)

	attemptCount, err := s.assessments.CountAttempts(profile.ID, assessmentType)
	if err != nil {
		return nil, err
	}

	attempt := &domain.PreClinicalAssessment{
		StudentID:      profile.ID,
		AssessmentType: assessmentType,
		Score:          score,
		TotalQuestions: len(questions),
		CorrectAnswers: correct,
		PassingScore:   preClinicalPassingScore,
		Passed:         passed,
		AttemptNumber:  int(attemptCount) + 1,
		TakenAt:        time.Now(),
	}
	if err := s.assessments.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	// A passing posttest completes onboarding outright; the e-learning gate
	// was already checked before grading.
	if passed && assessmentType == domain.AssessmentPosttest {
		profile.PretestPassed = true
		profile.ElearningCompleted = true
		profile.OnboardingComplete = true
		if err := s.profiles.Update(profile); err != nil {
			return nil, err
		}
	}
	return attempt, nil
}

func (s *OnboardingService) requireProfile(userID uuid.UUID) (*domain.StudentProfile, error) {
	profile, err := s.profiles.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func parseDatePtr(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
