package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
)

type CaseHandler struct {
	cases       *service.CaseService
	caseRepo    *repository.CaseRepository
	profileRepo *repository.ProfileRepository
}

func NewCaseHandler(
	cases *service.CaseService,
	caseRepo *repository.CaseRepository,
	profileRepo *repository.ProfileRepository,
) *CaseHandler {
	return &CaseHandler{cases: cases, caseRepo: caseRepo, profileRepo: profileRepo}
}

// MyCases returns the caller's patient cases, each with its rendered
// timeline. Filter with ?status=active|closed.
func (h *CaseHandler) MyCases(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	timelines, err := h.cases.ListCasesWithTimelines(*userID, c.Query("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(timelines, ""))
}

func (h *CaseHandler) CreateCase(c *fiber.Ctx) error {
	var req dto.CreateCaseRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	patientCase, err := h.cases.CreateCase(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(patientCase, "Kasus pasien dibuat"))
}

func (h *CaseHandler) GetCase(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	patientCase, err := h.caseRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Kasus tidak ditemukan")
	}

	// Students only see their own cases; staff can open any.
	if middleware.GetUserRole(c) == "user" {
		userID := middleware.GetUserID(c)
		profile, err := h.profileRepo.FindByUserID(*userID)
		if err != nil || profile.ID != patientCase.StudentID {
			return forbidden(c)
		}
	}

	timeline := h.cases.Timeline(patientCase, patientCase.DailyUpdates)
	return c.JSON(dto.SuccessResponse(fiber.Map{
		"case":     patientCase,
		"timeline": timeline,
	}, ""))
}

func (h *CaseHandler) AddDailyUpdate(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req dto.CreateDailyUpdateRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	update, err := h.cases.AddDailyUpdate(*userID, id, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(update, "Update harian tersimpan"))
}

func (h *CaseHandler) CloseCase(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req dto.CloseCaseRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	patientCase, err := h.cases.CloseCase(*userID, id, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(patientCase, "Kasus ditutup"))
}

// Journals

func (h *CaseHandler) AddJournal(c *fiber.Ctx) error {
	var req dto.CreateJournalRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	journal, err := h.cases.AddJournal(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(journal, "Jurnal harian tersimpan"))
}

func (h *CaseHandler) MyJournals(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.FindByUserID(*userID)
	if err != nil {
		return notFound(c, "Profil mahasiswa belum terdaftar")
	}

	page, perPage := pageParams(c)
	journals, total, err := h.caseRepo.ListJournals(profile.ID, page, perPage)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessWithMeta(journals, paginationMeta(page, perPage, total)))
}

func (h *CaseHandler) JournalFeedback(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req dto.JournalFeedbackRequest
	if !parseBody(c, &req) {
		return nil
	}

	supervisorID := middleware.GetUserID(c)
	journal, err := h.cases.GiveJournalFeedback(id, *supervisorID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(journal, "Umpan balik tersimpan"))
}
