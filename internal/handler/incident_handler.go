package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
)

type IncidentHandler struct {
	incidentRepo *repository.IncidentRepository
	profileRepo  *repository.ProfileRepository
}

func NewIncidentHandler(incidentRepo *repository.IncidentRepository, profileRepo *repository.ProfileRepository) *IncidentHandler {
	return &IncidentHandler{incidentRepo: incidentRepo, profileRepo: profileRepo}
}

func (h *IncidentHandler) Report(c *fiber.Ctx) error {
	var req dto.ReportIncidentRequest
	if !parseBody(c, &req) {
		return nil
	}

	incidentDate, err := time.Parse("2006-01-02", req.IncidentDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Format tanggal insiden tidak valid (YYYY-MM-DD)",
		))
	}

	userID := middleware.GetUserID(c)
	incident := &domain.IncidentReport{
		ReporterID:           *userID,
		StudentID:            req.StudentID,
		IncidentType:         req.IncidentType,
		Severity:             req.Severity,
		IncidentDate:         incidentDate,
		Unit:                 req.Unit,
		Description:          req.Description,
		ImmediateActionTaken: req.ImmediateActionTaken,
		Status:               domain.IncidentReported,
		ReportedAt:           time.Now(),
	}
	// A student reporting about themselves gets linked automatically.
	if incident.StudentID == nil {
		if profile, perr := h.profileRepo.FindByUserID(*userID); perr == nil {
			incident.StudentID = &profile.ID
		}
	}

	if err := h.incidentRepo.Create(incident); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(incident, "Laporan insiden diterima"))
}

func (h *IncidentHandler) MyReports(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	reports, err := h.incidentRepo.ListByReporter(*userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(reports, ""))
}

// List is the staff review queue. Filter with ?status=.
func (h *IncidentHandler) List(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	reports, total, err := h.incidentRepo.List(page, perPage, c.Query("status"))
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessWithMeta(reports, paginationMeta(page, perPage, total)))
}

func (h *IncidentHandler) Get(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	incident, err := h.incidentRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Laporan insiden tidak ditemukan")
	}
	return c.JSON(dto.SuccessResponse(incident, ""))
}

// UpdateStatus moves an incident through its review lifecycle.
func (h *IncidentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	incident, err := h.incidentRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Laporan insiden tidak ditemukan")
	}

	var req dto.UpdateIncidentRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	incident.Status = domain.IncidentStatus(req.Status)
	if req.InvestigationNotes != nil {
		incident.InvestigationNotes = req.InvestigationNotes
		incident.Investigated = true
		incident.InvestigatorID = userID
	}
	if incident.Status == domain.IncidentResolved || incident.Status == domain.IncidentClosed {
		now := time.Now()
		incident.ResolvedAt = &now
	}

	if err := h.incidentRepo.Update(incident); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(incident, "Status insiden diperbarui"))
}
