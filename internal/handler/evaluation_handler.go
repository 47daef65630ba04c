package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
	"gorm.io/gorm"
)

// EvaluationHandler covers the ongoing and final evaluation surface: weekly
// assessments, final exams, 360 evaluations, certificates, program feedback,
// and the alumni directory.
type EvaluationHandler struct {
	assessments    *service.AssessmentService
	assessmentRepo *repository.AssessmentRepository
	incidentRepo   *repository.IncidentRepository
	profileRepo    *repository.ProfileRepository
	userRepo       *repository.UserRepository
	baseURL        string
}

func NewEvaluationHandler(
	assessments *service.AssessmentService,
	assessmentRepo *repository.AssessmentRepository,
	incidentRepo *repository.IncidentRepository,
	profileRepo *repository.ProfileRepository,
	userRepo *repository.UserRepository,
	baseURL string,
) *EvaluationHandler {
	return &EvaluationHandler{
		assessments:    assessments,
		assessmentRepo: assessmentRepo,
		incidentRepo:   incidentRepo,
		profileRepo:    profileRepo,
		userRepo:       userRepo,
		baseURL:        baseURL,
	}
}

// Weekly assessments

func (h *EvaluationHandler) SubmitWeekly(c *fiber.Ctx) error {
	var req dto.SubmitWeeklyAssessmentRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	assessment, err := h.assessments.SubmitWeekly(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(assessment, "Asesmen mingguan tersimpan"))
}

func (h *EvaluationHandler) MyWeekly(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.FindByUserID(*userID)
	if err != nil {
		return notFound(c, "Profil mahasiswa belum terdaftar")
	}
	items, err := h.assessmentRepo.ListWeekly(profile.ID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

// Final exams

func (h *EvaluationHandler) SubmitExam(c *fiber.Ctx) error {
	var req dto.SubmitFinalExamRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	exam, err := h.assessments.SubmitFinalExam(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(exam, "Ujian berhasil dikumpulkan"))
}

func (h *EvaluationHandler) MyExams(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.FindByUserID(*userID)
	if err != nil {
		return notFound(c, "Profil mahasiswa belum terdaftar")
	}
	exams, err := h.assessmentRepo.ListExams(profile.ID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(exams, ""))
}

func (h *EvaluationHandler) GradeExam(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req dto.GradeFinalExamRequest
	if !parseBody(c, &req) {
		return nil
	}

	examinerID := middleware.GetUserID(c)
	exam, err := h.assessments.GradeExam(id, *examinerID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(exam, "Nilai ujian tersimpan"))
}

// 360 evaluations

func (h *EvaluationHandler) SubmitEvaluation360(c *fiber.Ctx) error {
	var req dto.SubmitEvaluation360Request
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	evaluator, err := h.userRepo.FindByID(*userID)
	if err != nil {
		return internalError(c)
	}

	eval, err := h.assessments.SubmitEvaluation360(evaluator, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(eval, "Evaluasi tersimpan"))
}

func (h *EvaluationHandler) StudentEvaluations(c *fiber.Ctx) error {
	studentID, ok := parseUUIDParam(c, "studentId")
	if !ok {
		return nil
	}
	evals, err := h.assessmentRepo.ListEvaluations(studentID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(fiber.Map{
		"evaluations":      evals,
		"weighted_average": service.Evaluation360Average(evals),
	}, ""))
}

// Certificates

func toCertificateDTO(cert *domain.ClinicalCertificate) dto.CertificateDTO {
	return dto.CertificateDTO{
		ID:                   cert.ID,
		CertificateNumber:    cert.CertificateNumber,
		FinalScore:           cert.FinalScore,
		PretestScore:         cert.PretestScore,
		PosttestScore:        cert.PosttestScore,
		CBTScore:             cert.CBTScore,
		OSCEScore:            cert.OSCEScore,
		CaseStudyScore:       cert.CaseStudyScore,
		Evaluation360Average: cert.Evaluation360Average,
		IssuedAt:             cert.IssuedAt,
		VerificationURL:      cert.VerificationURL,
	}
}

func (h *EvaluationHandler) MyCertificate(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.FindByUserID(*userID)
	if err != nil {
		return notFound(c, "Profil mahasiswa belum terdaftar")
	}
	cert, err := h.assessmentRepo.FindCertificateByStudent(profile.ID)
	if err != nil {
		return notFound(c, "Sertifikat belum diterbitkan")
	}
	return c.JSON(dto.SuccessResponse(toCertificateDTO(cert), ""))
}

func (h *EvaluationHandler) IssueCertificate(c *fiber.Ctx) error {
	studentID, ok := parseUUIDParam(c, "studentId")
	if !ok {
		return nil
	}
	issuerID := middleware.GetUserID(c)
	cert, err := h.assessments.IssueCertificate(studentID, *issuerID, h.baseURL)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(toCertificateDTO(cert), "Sertifikat diterbitkan"))
}

// VerifyCertificate is a public endpoint keyed by certificate number.
func (h *EvaluationHandler) VerifyCertificate(c *fiber.Ctx) error {
	number := c.Params("number")
	cert, err := h.assessmentRepo.FindCertificateByNumber(number)
	if err != nil {
		return notFound(c, "Sertifikat tidak ditemukan")
	}

	profile, err := h.profileRepo.FindByID(cert.StudentID)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(dto.SuccessResponse(fiber.Map{
		"valid":       true,
		"certificate": toCertificateDTO(cert),
		"student": fiber.Map{
			"student_id":  profile.StudentID,
			"institution": profile.Institution,
			"program":     profile.Program,
		},
	}, ""))
}

// Program feedback

func (h *EvaluationHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.FindByUserID(*userID)
	if err != nil {
		return notFound(c, "Profil mahasiswa belum terdaftar")
	}

	feedback := &domain.StudentFeedback{
		StudentID:               profile.ID,
		FeedbackType:            req.FeedbackType,
		TeachingQualityRating:   req.TeachingQualityRating,
		FacilitiesRating:        req.FacilitiesRating,
		SupervisorSupportRating: req.SupervisorSupportRating,
		SafetyClimateRating:     req.SafetyClimateRating,
		OverallRating:           req.OverallRating,
		Comments:                req.Comments,
		Suggestions:             req.Suggestions,
		IsAnonymous:             req.IsAnonymous,
	}
	if err := h.incidentRepo.CreateFeedback(feedback); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
				"CONFLICT", "Masukan untuk kategori ini sudah dikirim",
			))
		}
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(nil, "Terima kasih atas masukan Anda"))
}

// scrubAnonymousFeedback blanks the student id on anonymous submissions.
// The real id stays server-side only.
func scrubAnonymousFeedback(items []domain.StudentFeedback) {
	for i := range items {
		if items[i].IsAnonymous {
			items[i].StudentID = uuid.Nil
		}
	}
}

func (h *EvaluationHandler) ListFeedback(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	items, total, err := h.incidentRepo.ListFeedback(page, perPage)
	if err != nil {
		return internalError(c)
	}
	scrubAnonymousFeedback(items)
	return c.JSON(dto.SuccessWithMeta(items, paginationMeta(page, perPage, total)))
}

// Alumni

func (h *EvaluationHandler) UpdateAlumniProfile(c *fiber.Ctx) error {
	var req dto.UpdateAlumniProfileRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	alumni, err := h.incidentRepo.FindAlumniByUserID(*userID)
	if err != nil {
		alumni = &domain.AlumniProfile{UserID: *userID}
		if profile, perr := h.profileRepo.FindByUserID(*userID); perr == nil {
			alumni.StudentProfileID = &profile.ID
		}
		if err := h.incidentRepo.CreateAlumni(alumni); err != nil {
			return internalError(c)
		}
	}

	if req.GraduationYear != nil {
		alumni.GraduationYear = req.GraduationYear
	}
	if req.CurrentPosition != nil {
		alumni.CurrentPosition = req.CurrentPosition
	}
	if req.CurrentHospital != nil {
		alumni.CurrentHospital = req.CurrentHospital
	}
	if req.Specialization != nil {
		alumni.Specialization = req.Specialization
	}
	if req.WillingToMentor != nil {
		alumni.WillingToMentor = *req.WillingToMentor
	}

	if err := h.incidentRepo.SaveAlumni(alumni); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(alumni, "Profil alumni tersimpan"))
}

// Mentors lists alumni who volunteered to mentor current students.
func (h *EvaluationHandler) Mentors(c *fiber.Ctx) error {
	mentors, err := h.incidentRepo.ListMentors()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(mentors, ""))
}
