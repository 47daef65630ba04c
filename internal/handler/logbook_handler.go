package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/service"
)

type LogbookHandler struct {
	logbook     *service.LogbookService
	logbookRepo *repository.LogbookRepository
	profileRepo *repository.ProfileRepository
}

func NewLogbookHandler(
	logbook *service.LogbookService,
	logbookRepo *repository.LogbookRepository,
	profileRepo *repository.ProfileRepository,
) *LogbookHandler {
	return &LogbookHandler{
		logbook:     logbook,
		logbookRepo: logbookRepo,
		profileRepo: profileRepo,
	}
}

func (h *LogbookHandler) MyEntries(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	profile, err := h.profileRepo.FindByUserID(*userID)
	if err != nil {
		return notFound(c, "Profil mahasiswa belum terdaftar")
	}

	page, perPage := pageParams(c)
	entries, total, err := h.logbookRepo.ListEntries(profile.ID, page, perPage)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessWithMeta(entries, paginationMeta(page, perPage, total)))
}

func (h *LogbookHandler) AddEntry(c *fiber.Ctx) error {
	var req dto.CreateLogbookEntryRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	entry, err := h.logbook.AddEntry(*userID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(entry, "Entri logbook tersimpan"))
}

func (h *LogbookHandler) GetEntry(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	entry, err := h.logbookRepo.FindEntryByID(id)
	if err != nil {
		return notFound(c, "Entri logbook tidak ditemukan")
	}
	return c.JSON(dto.SuccessResponse(entry, ""))
}

// ValidateEntry lets a supervisor sign off a logbook entry via PIN, QR, or
// a manual override. A validated entry is locked for good.
func (h *LogbookHandler) ValidateEntry(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req dto.ValidateEntryRequest
	if !parseBody(c, &req) {
		return nil
	}

	supervisorID := middleware.GetUserID(c)
	entry, err := h.logbook.ValidateEntry(id, *supervisorID, req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(entry, "Entri logbook berhasil divalidasi"))
}

func (h *LogbookHandler) PendingValidation(c *fiber.Ctx) error {
	supervisorID := middleware.GetUserID(c)
	entries, err := h.logbookRepo.ListPendingValidation(*supervisorID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(entries, ""))
}

func (h *LogbookHandler) SetPIN(c *fiber.Ctx) error {
	var req dto.SetValidationPINRequest
	if !parseBody(c, &req) {
		return nil
	}

	supervisorID := middleware.GetUserID(c)
	if err := h.logbook.SetPIN(*supervisorID, req.PIN); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "PIN validasi berhasil diatur"))
}

func (h *LogbookHandler) MyProgress(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	progress, err := h.logbook.Progress(*userID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(dto.SuccessResponse(progress, ""))
}
