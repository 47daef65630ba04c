package handler

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

// ImportHandler bulk-creates student accounts from an Excel sheet. Expected
// columns: username, email, student_id, institution, program, cohort. The
// student id doubles as the initial password.
type ImportHandler struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
}

func NewImportHandler(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository) *ImportHandler {
	return &ImportHandler{userRepo: userRepo, profileRepo: profileRepo}
}

func (h *ImportHandler) ImportStudents(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "File Excel wajib diunggah",
		))
	}

	src, err := file.Open()
	if err != nil {
		return internalError(c)
	}
	defer src.Close()

	workbook, err := excelize.OpenReader(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "File bukan dokumen Excel yang valid",
		))
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Sheet kosong atau tidak memiliki baris data",
		))
	}

	columns := headerIndex(rows[0])
	for _, required := range []string{"username", "email", "student_id", "institution", "program"} {
		if _, ok := columns[required]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
				"VALIDATION_ERROR", fmt.Sprintf("Kolom '%s' tidak ditemukan di header", required),
			))
		}
	}

	result := dto.ImportStudentsResultDTO{}
	for i, row := range rows[1:] {
		rowNumber := i + 2

		username := cell(row, columns["username"])
		email := cell(row, columns["email"])
		studentID := cell(row, columns["student_id"])
		institution := cell(row, columns["institution"])
		program := cell(row, columns["program"])

		if username == "" || email == "" || studentID == "" || institution == "" || program == "" {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{
				Row: rowNumber, Message: "Kolom wajib ada yang kosong",
			})
			continue
		}

		if taken, err := h.userRepo.UsernameExists(username); err != nil || taken {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{
				Row: rowNumber, Message: "Username sudah digunakan",
			})
			continue
		}
		if taken, err := h.profileRepo.StudentIDExists(studentID); err != nil || taken {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{
				Row: rowNumber, Message: "NIM sudah terdaftar",
			})
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(studentID), bcrypt.DefaultCost)
		if err != nil {
			return internalError(c)
		}

		user := &domain.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleUser,
		}
		if err := h.userRepo.Create(user); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{
				Row: rowNumber, Message: "Gagal membuat akun (email mungkin sudah terdaftar)",
			})
			continue
		}

		profile := &domain.StudentProfile{
			UserID:      user.ID,
			StudentID:   studentID,
			Institution: institution,
			Program:     program,
		}
		if idx, ok := columns["cohort"]; ok {
			if cohort := cell(row, idx); cohort != "" {
				profile.Cohort = &cohort
			}
		}
		if err := h.profileRepo.Create(profile); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{
				Row: rowNumber, Message: "Akun dibuat tetapi profil mahasiswa gagal disimpan",
			})
			continue
		}

		result.Created++
	}

	return c.JSON(dto.SuccessResponse(result, fmt.Sprintf(
		"%d mahasiswa diimpor, %d dilewati", result.Created, result.Skipped,
	)))
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}
