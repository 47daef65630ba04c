package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/kgpaabangizzul/diklat/internal/storage"
)

type LibraryHandler struct {
	libraryRepo *repository.LibraryRepository
	storage     *storage.MinIOClient
}

func NewLibraryHandler(libraryRepo *repository.LibraryRepository, storage *storage.MinIOClient) *LibraryHandler {
	return &LibraryHandler{libraryRepo: libraryRepo, storage: storage}
}

func (h *LibraryHandler) toDTO(book *domain.LibraryBook) dto.LibraryBookDTO {
	d := dto.LibraryBookDTO{
		ID:          book.ID,
		Title:       book.Title,
		Description: book.Description,
		FileURL:     h.storage.GetPublicURL(book.FilePath),
		Status:      string(book.Status),
		CreatedAt:   book.CreatedAt,
	}
	if book.Uploader != nil {
		d.Uploader = &dto.UserBriefDTO{
			ID:       book.Uploader.ID,
			Username: book.Uploader.Username,
			Role:     string(book.Uploader.Role),
		}
	}
	return d
}

// List returns the approved catalog visible to everyone.
func (h *LibraryHandler) List(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	books, total, err := h.libraryRepo.ListApproved(page, perPage, c.Query("search"))
	if err != nil {
		return internalError(c)
	}

	items := make([]dto.LibraryBookDTO, 0, len(books))
	for i := range books {
		items = append(items, h.toDTO(&books[i]))
	}
	return c.JSON(dto.SuccessWithMeta(items, paginationMeta(page, perPage, total)))
}

func (h *LibraryHandler) Upload(c *fiber.Ctx) error {
	var req dto.UploadBookRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	book := &domain.LibraryBook{
		UploaderID:  *userID,
		Title:       req.Title,
		Description: req.Description,
		FilePath:    req.FilePath,
		Status:      domain.LibraryPending,
	}
	// Admin uploads skip the review queue
	if middleware.GetUserRole(c) == string(domain.RoleAdmin) {
		book.Status = domain.LibraryApproved
	}

	if err := h.libraryRepo.Create(book); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(h.toDTO(book), "Dokumen berhasil diunggah"))
}

func (h *LibraryHandler) MyUploads(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	books, err := h.libraryRepo.ListByUploader(*userID)
	if err != nil {
		return internalError(c)
	}
	items := make([]dto.LibraryBookDTO, 0, len(books))
	for i := range books {
		items = append(items, h.toDTO(&books[i]))
	}
	return c.JSON(dto.SuccessResponse(items, ""))
}

func (h *LibraryHandler) PendingQueue(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	books, total, err := h.libraryRepo.ListPending(page, perPage)
	if err != nil {
		return internalError(c)
	}
	items := make([]dto.LibraryBookDTO, 0, len(books))
	for i := range books {
		items = append(items, h.toDTO(&books[i]))
	}
	return c.JSON(dto.SuccessWithMeta(items, paginationMeta(page, perPage, total)))
}

func (h *LibraryHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, domain.LibraryApproved, "Dokumen disetujui")
}

func (h *LibraryHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, domain.LibraryRejected, "Dokumen ditolak")
}

func (h *LibraryHandler) review(c *fiber.Ctx, status domain.LibraryStatus, message string) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	book, err := h.libraryRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Dokumen tidak ditemukan")
	}
	if book.Status != domain.LibraryPending {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Dokumen sudah ditinjau",
		))
	}
	if err := h.libraryRepo.SetStatus(id, status); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, message))
}

// Download hands out a short-lived presigned URL for the stored file.
// Unreviewed uploads are only downloadable by their uploader or an admin.
func (h *LibraryHandler) Download(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	book, err := h.libraryRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Dokumen tidak ditemukan")
	}
	if book.Status != domain.LibraryApproved {
		userID := middleware.GetUserID(c)
		if middleware.GetUserRole(c) != string(domain.RoleAdmin) &&
			(userID == nil || *userID != book.UploaderID) {
			return forbidden(c)
		}
	}

	url, err := h.storage.GetPresignedGetURL(book.FilePath, 15*time.Minute)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(fiber.Map{"download_url": url}, ""))
}

func (h *LibraryHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	book, err := h.libraryRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Dokumen tidak ditemukan")
	}

	userID := middleware.GetUserID(c)
	if middleware.GetUserRole(c) != string(domain.RoleAdmin) && (userID == nil || *userID != book.UploaderID) {
		return forbidden(c)
	}

	if err := h.libraryRepo.Delete(id); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Dokumen berhasil dihapus"))
}
