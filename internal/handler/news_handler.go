package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
)

type NewsHandler struct {
	newsRepo *repository.NewsRepository
}

func NewNewsHandler(newsRepo *repository.NewsRepository) *NewsHandler {
	return &NewsHandler{newsRepo: newsRepo}
}

func toNewsDTO(news *domain.News) dto.NewsDTO {
	d := dto.NewsDTO{
		ID:        news.ID,
		Title:     news.Title,
		Content:   news.Content,
		ImagePath: news.ImagePath,
		CreatedAt: news.CreatedAt,
		UpdatedAt: news.UpdatedAt,
	}
	if news.Author != nil {
		d.Author = &dto.UserBriefDTO{
			ID:       news.Author.ID,
			Username: news.Author.Username,
			Role:     string(news.Author.Role),
		}
	}
	return d
}

func (h *NewsHandler) List(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	items, total, err := h.newsRepo.List(page, perPage, c.Query("search"))
	if err != nil {
		return internalError(c)
	}
	out := make([]dto.NewsDTO, 0, len(items))
	for i := range items {
		out = append(out, toNewsDTO(&items[i]))
	}
	return c.JSON(dto.SuccessWithMeta(out, paginationMeta(page, perPage, total)))
}

func (h *NewsHandler) Get(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	news, err := h.newsRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Berita tidak ditemukan")
	}
	return c.JSON(dto.SuccessResponse(toNewsDTO(news), ""))
}

func (h *NewsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateNewsRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	news := &domain.News{
		Title:     req.Title,
		Content:   req.Content,
		ImagePath: req.ImagePath,
		AuthorID:  *userID,
	}
	if err := h.newsRepo.Create(news); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(toNewsDTO(news), "Berita berhasil dibuat"))
}

func (h *NewsHandler) Update(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	news, err := h.newsRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Berita tidak ditemukan")
	}

	userID := middleware.GetUserID(c)
	if middleware.GetUserRole(c) != string(domain.RoleAdmin) && (userID == nil || *userID != news.AuthorID) {
		return forbidden(c)
	}

	var req dto.UpdateNewsRequest
	if !parseBody(c, &req) {
		return nil
	}
	if req.Title != nil {
		news.Title = *req.Title
	}
	if req.Content != nil {
		news.Content = *req.Content
	}
	if req.ImagePath != nil {
		news.ImagePath = req.ImagePath
	}

	if err := h.newsRepo.Update(news); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(toNewsDTO(news), "Berita berhasil diperbarui"))
}

func (h *NewsHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	news, err := h.newsRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Berita tidak ditemukan")
	}

	userID := middleware.GetUserID(c)
	if middleware.GetUserRole(c) != string(domain.RoleAdmin) && (userID == nil || *userID != news.AuthorID) {
		return forbidden(c)
	}

	if err := h.newsRepo.Delete(id); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Berita berhasil dihapus"))
}
