package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
)

// SupervisorHandler is the clinical supervisor's working view: their
// students, the validation queue, and journals awaiting feedback.
type SupervisorHandler struct {
	profileRepo  *repository.ProfileRepository
	logbookRepo  *repository.LogbookRepository
	caseRepo     *repository.CaseRepository
	incidentRepo *repository.IncidentRepository
	logbook      *service.LogbookService
}

func NewSupervisorHandler(
	profileRepo *repository.ProfileRepository,
	logbookRepo *repository.LogbookRepository,
	caseRepo *repository.CaseRepository,
	incidentRepo *repository.IncidentRepository,
	logbook *service.LogbookService,
) *SupervisorHandler {
	return &SupervisorHandler{
		profileRepo:  profileRepo,
		logbookRepo:  logbookRepo,
		caseRepo:     caseRepo,
		incidentRepo: incidentRepo,
		logbook:      logbook,
	}
}

func (h *SupervisorHandler) Dashboard(c *fiber.Ctx) error {
	supervisorID := middleware.GetUserID(c)

	students, err := h.profileRepo.ListBySupervisor(*supervisorID)
	if err != nil {
		return internalError(c)
	}

	pending, err := h.logbookRepo.ListPendingValidation(*supervisorID)
	if err != nil {
		return internalError(c)
	}

	studentIDs := make([]uuid.UUID, 0, len(students))
	for i := range students {
		studentIDs = append(studentIDs, students[i].ID)
	}
	awaitingFeedback, err := h.caseRepo.CountJournalsAwaitingFeedback(studentIDs)
	if err != nil {
		return internalError(c)
	}
	openIncidents, err := h.incidentRepo.CountOpenByStudents(studentIDs)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(dto.SuccessResponse(fiber.Map{
		"students":                   students,
		"pending_validation":         len(pending),
		"journals_awaiting_feedback": awaitingFeedback,
		"open_incidents":             openIncidents,
	}, ""))
}

func (h *SupervisorHandler) MyStudents(c *fiber.Ctx) error {
	supervisorID := middleware.GetUserID(c)
	students, err := h.profileRepo.ListBySupervisor(*supervisorID)
	if err != nil {
		return internalError(c)
	}

	items := make([]dto.StudentProfileDTO, 0, len(students))
	for i := range students {
		items = append(items, toStudentProfileDTO(&students[i]))
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

// StudentDetail bundles a student's placement state for the supervisor:
// profile, competency progress, recent logbook entries, cases, and journals.
func (h *SupervisorHandler) StudentDetail(c *fiber.Ctx) error {
	profileID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	profile, err := h.profileRepo.FindByID(profileID)
	if err != nil {
		return notFound(c, "Profil mahasiswa tidak ditemukan")
	}

	entries, _, err := h.logbookRepo.ListEntries(profile.ID, 1, 20)
	if err != nil {
		return internalError(c)
	}
	cases, err := h.caseRepo.ListByStudent(profile.ID, "")
	if err != nil {
		return internalError(c)
	}
	journals, _, err := h.caseRepo.ListJournals(profile.ID, 1, 20)
	if err != nil {
		return internalError(c)
	}
	progress, err := h.logbook.Progress(profile.UserID)
	if err != nil {
		progress = nil
	}

	return c.JSON(dto.SuccessResponse(fiber.Map{
		"profile":  toStudentProfileDTO(profile),
		"logbook":  entries,
		"cases":    cases,
		"journals": journals,
		"progress": progress,
	}, ""))
}
