package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
	"github.com/kgpaabangizzul/diklat/internal/storage"
)

// ClinicalHandler covers the student placement flow: registration, onboarding
// gates, legal documents, agreements, and the pre/post tests.
type ClinicalHandler struct {
	onboarding *service.OnboardingService
	docs       *repository.DocumentRepository
	courseRepo *repository.CourseRepository
	configRepo *repository.ConfigRepository
	storage    *storage.MinIOClient
}

func NewClinicalHandler(
	onboarding *service.OnboardingService,
	docs *repository.DocumentRepository,
	courseRepo *repository.CourseRepository,
	configRepo *repository.ConfigRepository,
	storage *storage.MinIOClient,
) *ClinicalHandler {
	return &ClinicalHandler{
		onboarding: onboarding,
		docs:       docs,
		courseRepo: courseRepo,
		configRepo: configRepo,
		storage:    storage,
	}
}

// serviceError maps domain errors from the clinical services to HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse(
			"NOT_FOUND", "Profil mahasiswa belum terdaftar",
		))
	case errors.Is(err, service.ErrStudentIDTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "NIM sudah terdaftar",
		))
	case errors.Is(err, service.ErrInvalidDocumentType):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Jenis dokumen tidak dikenal",
		))
	case errors.Is(err, service.ErrInvalidAgreementType):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Jenis perjanjian tidak dikenal",
		))
	case errors.Is(err, service.ErrAgreementSigned):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Perjanjian sudah ditandatangani",
		))
	case errors.Is(err, service.ErrElearningIncomplete):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
			"FORBIDDEN", "Selesaikan seluruh modul e-learning sebelum mengikuti post-test",
		))
	case errors.Is(err, service.ErrNoQuestions):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse(
			"NOT_FOUND", "Soal belum dikonfigurasi",
		))
	case errors.Is(err, service.ErrEntryLocked):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Entri logbook sudah divalidasi dan terkunci",
		))
	case errors.Is(err, service.ErrInvalidPIN):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse(
			"UNAUTHORIZED", "PIN validasi salah",
		))
	case errors.Is(err, service.ErrPINNotSet):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "PIN validasi belum diatur",
		))
	case errors.Is(err, service.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Peran logbook tidak dikenal",
		))
	case errors.Is(err, service.ErrNotEntryOwner), errors.Is(err, service.ErrCaseNotOwned),
		errors.Is(err, service.ErrJournalNotAllowed):
		return forbidden(c)
	case errors.Is(err, service.ErrCaseClosed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Kasus sudah ditutup",
		))
	case errors.Is(err, service.ErrDuplicateUpdate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Update untuk tanggal tersebut sudah ada",
		))
	case errors.Is(err, service.ErrDuplicateJournal):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Jurnal untuk tanggal tersebut sudah ada",
		))
	case errors.Is(err, service.ErrOnboardingIncomplete):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
			"FORBIDDEN", "Selesaikan tahap pra-klinik terlebih dahulu",
		))
	case errors.Is(err, service.ErrCertificateExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Sertifikat sudah diterbitkan",
		))
	case errors.Is(err, service.ErrSelfEvaluationOnly):
		return forbidden(c)
	case errors.Is(err, service.ErrExamAlreadyGraded):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Ujian sudah dinilai",
		))
	default:
		return internalError(c)
	}
}

func toStudentProfileDTO(profile *domain.StudentProfile) dto.StudentProfileDTO {
	d := dto.StudentProfileDTO{
		ID:                 profile.ID,
		UserID:             profile.UserID,
		StudentID:          profile.StudentID,
		Institution:        profile.Institution,
		Program:            profile.Program,
		Cohort:             profile.Cohort,
		PlacementHospital:  profile.PlacementHospital,
		CurrentUnit:        profile.CurrentUnit,
		DocumentsVerified:  profile.DocumentsVerified,
		AgreementsSigned:   profile.AgreementsSigned,
		ElearningCompleted: profile.ElearningCompleted,
		PretestPassed:      profile.PretestPassed,
		OnboardingComplete: profile.OnboardingComplete,
	}
	if profile.PracticeStartDate != nil {
		s := profile.PracticeStartDate.Format("2006-01-02")
		d.PracticeStartDate = &s
	}
	if profile.PracticeEndDate != nil {
		s := profile.PracticeEndDate.Format("2006-01-02")
		d.PracticeEndDate = &s
	}
	if profile.Supervisor != nil {
		d.Supervisor = &dto.UserBriefDTO{
			ID:           profile.Supervisor.ID,
			Username:     profile.Supervisor.Username,
			Role:         string(profile.Supervisor.Role),
			Division:     profile.Supervisor.Division,
			ProfileImage: profile.Supervisor.ProfileImage,
		}
	}
	return d
}

func gateResultDTO(result service.GateResult) dto.OnboardingStatusDTO {
	return dto.OnboardingStatusDTO{
		Documents:          result.Documents,
		Agreements:         result.Agreements,
		Elearning:          result.Elearning,
		Pretest:            result.Pretest,
		OnboardingComplete: result.OnboardingComplete,
	}
}

// Register creates (or updates) the caller's student placement profile.
func (h *ClinicalHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterStudentRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	profile, err := h.onboarding.Register(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(
		toStudentProfileDTO(profile), "Profil mahasiswa tersimpan",
	))
}

func (h *ClinicalHandler) MyProfile(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, result, err := h.onboarding.Status(*userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(fiber.Map{
		"profile":    toStudentProfileDTO(profile),
		"onboarding": gateResultDTO(result),
	}, ""))
}

// OnboardingStatus re-evaluates the four gates and returns their state.
func (h *ClinicalHandler) OnboardingStatus(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	_, result, err := h.onboarding.Status(*userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(gateResultDTO(result), ""))
}

// Documents

func (h *ClinicalHandler) toDocumentDTO(doc *domain.LegalDocument, labels map[string]string) dto.LegalDocumentDTO {
	d := dto.LegalDocumentDTO{
		ID:                doc.ID,
		DocumentType:      doc.DocumentType,
		Label:             labels[doc.DocumentType],
		Status:            string(doc.Status),
		VerificationNotes: doc.VerificationNotes,
		UploadedAt:        doc.UploadedAt,
		VerifiedAt:        doc.VerifiedAt,
	}
	if doc.FilePath != "" {
		d.FileURL = h.storage.GetPublicURL(doc.FilePath)
	}
	if doc.ExpirationDate != nil {
		s := doc.ExpirationDate.Format("2006-01-02")
		d.ExpirationDate = &s
	}
	return d
}

func (h *ClinicalHandler) documentLabels() map[string]string {
	labels := make(map[string]string)
	config, err := h.configRepo.GetOrCreate()
	if err != nil {
		return labels
	}
	for _, rule := range config.Documents {
		labels[rule.Type] = rule.Label
	}
	return labels
}

func (h *ClinicalHandler) MyDocuments(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, _, err := h.onboarding.Status(*userID)
	if err != nil {
		return serviceError(c, err)
	}

	docs, err := h.docs.ListByStudent(profile.ID)
	if err != nil {
		return internalError(c)
	}

	labels := h.documentLabels()
	items := make([]dto.LegalDocumentDTO, 0, len(docs))
	for i := range docs {
		items = append(items, h.toDocumentDTO(&docs[i], labels))
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

var documentExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// clinicalDocumentObjectKey builds the storage key for a legal document
// upload. Only formats the verification team can open are accepted.
func clinicalDocumentObjectKey(userID uuid.UUID, documentType, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !documentExtensions[ext] {
		return "", fmt.Errorf("unsupported document format %q", ext)
	}
	return fmt.Sprintf("clinical-documents/%s/%s-%s%s", userID, documentType, uuid.NewString(), ext), nil
}

// UploadDocument accepts the document as a multipart upload, stores it
// server-side, and records the key storage returned.
func (h *ClinicalHandler) UploadDocument(c *fiber.Ctx) error {
	documentType := c.FormValue("document_type")
	if documentType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Jenis dokumen wajib diisi",
		))
	}
	labels := h.documentLabels()
	if _, ok := labels[documentType]; !ok {
		return serviceError(c, service.ErrInvalidDocumentType)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "File dokumen wajib diunggah",
		))
	}

	userID := middleware.GetUserID(c)
	objectKey, err := clinicalDocumentObjectKey(*userID, documentType, file.Filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Format dokumen tidak didukung",
		))
	}

	src, err := file.Open()
	if err != nil {
		return internalError(c)
	}
	defer src.Close()

	if err := h.storage.PutObject(c.Context(), objectKey, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return internalError(c)
	}

	req := dto.UploadDocumentRequest{
		DocumentType: documentType,
		FilePath:     objectKey,
	}
	if v := c.FormValue("expiration_date"); v != "" {
		req.ExpirationDate = &v
	}

	doc, err := h.onboarding.UploadDocument(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(
		h.toDocumentDTO(doc, labels), "Dokumen berhasil diunggah dan menunggu verifikasi",
	))
}

// Agreements

func (h *ClinicalHandler) ListAgreements(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	agreements, err := h.onboarding.ListAgreements(*userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(agreements, ""))
}

func (h *ClinicalHandler) SignAgreement(c *fiber.Ctx) error {
	var req dto.SignAgreementRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	if err := h.onboarding.SignAgreement(*userID, req, c.IP()); err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(nil, "Perjanjian berhasil ditandatangani"))
}

// E-learning

// RequiredCourses lists the clinical e-learning modules with the caller's
// enrollment state.
func (h *ClinicalHandler) RequiredCourses(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	config, err := h.configRepo.GetOrCreate()
	if err != nil {
		return internalError(c)
	}

	var courses []domain.Course
	if len(config.RequiredCourseIDs) > 0 {
		for _, id := range config.RequiredCourseIDs {
			course, err := h.courseRepo.FindByID(id)
			if err != nil {
				continue
			}
			courses = append(courses, *course)
		}
	} else {
		courses, _, err = h.courseRepo.List(1, 100, string(domain.CategoryClinical), "")
		if err != nil {
			return internalError(c)
		}
	}

	items := make([]dto.CourseListDTO, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		item := dto.CourseListDTO{
			ID:          course.ID,
			Title:       course.Title,
			Description: course.Description,
			Category:    string(course.Category),
			CreatedAt:   course.CreatedAt,
		}
		item.IsEnrolled, _ = h.courseRepo.IsEnrolled(*userID, course.ID)
		items = append(items, item)
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

// Pre/post tests

func (h *ClinicalHandler) PretestQuestions(c *fiber.Ctx) error {
	return h.questions(c, domain.AssessmentPretest)
}

func (h *ClinicalHandler) PosttestQuestions(c *fiber.Ctx) error {
	return h.questions(c, domain.AssessmentPosttest)
}

func (h *ClinicalHandler) questions(c *fiber.Ctx, assessmentType domain.AssessmentType) error {
	questions, err := h.onboarding.Questions(assessmentType)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(questions, ""))
}

func (h *ClinicalHandler) TakePretest(c *fiber.Ctx) error {
	return h.takeAssessment(c, domain.AssessmentPretest)
}

func (h *ClinicalHandler) TakePosttest(c *fiber.Ctx) error {
	return h.takeAssessment(c, domain.AssessmentPosttest)
}

func (h *ClinicalHandler) takeAssessment(c *fiber.Ctx, assessmentType domain.AssessmentType) error {
	var req dto.SubmitAssessmentRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	attempt, err := h.onboarding.TakeAssessment(*userID, assessmentType, req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(dto.AssessmentResultDTO{
		ID:             attempt.ID,
		AssessmentType: string(attempt.AssessmentType),
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		CorrectAnswers: attempt.CorrectAnswers,
		PassingScore:   attempt.PassingScore,
		Passed:         attempt.Passed,
		AttemptNumber:  attempt.AttemptNumber,
		TakenAt:        attempt.TakenAt,
	}, ""))
}
