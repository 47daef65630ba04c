package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/dto"
)

var validate = validator.New()

// parseBody decodes and validates a JSON request body. On failure it writes
// the error response and returns false.
func parseBody(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Request body tidak valid",
		))
		return false
	}
	if err := validate.Struct(out); err != nil {
		details := validationDetails(err)
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Validasi gagal", details...,
		))
		return false
	}
	return true
}

func validationDetails(err error) []dto.ErrorDetail {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	details := make([]dto.ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ErrorDetail{
			Field:   fe.Field(),
			Message: "failed on rule: " + fe.Tag(),
		})
	}
	return details
}

func pageParams(c *fiber.Ctx) (page, perPage int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage = c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func paginationMeta(page, perPage int, total int64) *dto.Meta {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return &dto.Meta{
		CurrentPage: page,
		PerPage:     perPage,
		TotalPages:  totalPages,
		TotalCount:  total,
	}
}
