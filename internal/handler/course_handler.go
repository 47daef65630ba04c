package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"github.com/kgpaabangizzul/diklat/internal/dto"
	"github.com/kgpaabangizzul/diklat/internal/middleware"
	"github.com/kgpaabangizzul/diklat/internal/repository"
	"gorm.io/gorm"
)

type CourseHandler struct {
	courseRepo *repository.CourseRepository
	userRepo   *repository.UserRepository
}

func NewCourseHandler(courseRepo *repository.CourseRepository, userRepo *repository.UserRepository) *CourseHandler {
	return &CourseHandler{courseRepo: courseRepo, userRepo: userRepo}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "ID tidak valid",
		))
		return uuid.Nil, false
	}
	return id, true
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("NOT_FOUND", message))
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse(
		"FORBIDDEN", "Anda tidak memiliki akses untuk aksi ini",
	))
}

// List returns a paginated course catalog, optionally filtered by category
// or title search.
func (h *CourseHandler) List(c *fiber.Ctx) error {
	page, perPage := pageParams(c)
	category := c.Query("category")
	search := c.Query("search")

	courses, total, err := h.courseRepo.List(page, perPage, category, search)
	if err != nil {
		return internalError(c)
	}

	userID := middleware.GetUserID(c)
	items := make([]dto.CourseListDTO, 0, len(courses))
	for i := range courses {
		course := &courses[i]
		item := dto.CourseListDTO{
			ID:           course.ID,
			Title:        course.Title,
			Description:  course.Description,
			ThumbnailURL: course.ThumbnailURL,
			Category:     string(course.Category),
			CreatedAt:    course.CreatedAt,
		}
		if course.Instructor != nil {
			item.Instructor = &dto.UserBriefDTO{
				ID:           course.Instructor.ID,
				Username:     course.Instructor.Username,
				Role:         string(course.Instructor.Role),
				Division:     course.Instructor.Division,
				ProfileImage: course.Instructor.ProfileImage,
			}
		}
		item.ModuleCount, _ = h.courseRepo.CountModules(course.ID)
		item.EnrolledCount, _ = h.courseRepo.CountEnrollments(course.ID)
		if userID != nil {
			item.IsEnrolled, _ = h.courseRepo.IsEnrolled(*userID, course.ID)
		}
		items = append(items, item)
	}

	return c.JSON(dto.SuccessWithMeta(items, paginationMeta(page, perPage, total)))
}

func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	course, err := h.courseRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Kursus tidak ditemukan")
	}
	return c.JSON(dto.SuccessResponse(course, ""))
}

func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	course := &domain.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: *userID,
		Category:     domain.CourseCategory(req.Category),
	}
	if err := h.courseRepo.Create(course); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(course, "Kursus berhasil dibuat"))
}

// canManageCourse allows the course instructor or an admin.
func (h *CourseHandler) canManageCourse(c *fiber.Ctx, course *domain.Course) bool {
	if middleware.GetUserRole(c) == string(domain.RoleAdmin) {
		return true
	}
	userID := middleware.GetUserID(c)
	return userID != nil && *userID == course.InstructorID
}

func (h *CourseHandler) Update(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	course, err := h.courseRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Kursus tidak ditemukan")
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}

	var req dto.UpdateCourseRequest
	if !parseBody(c, &req) {
		return nil
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = req.Description
	}
	if req.Category != nil {
		course.Category = domain.CourseCategory(*req.Category)
	}

	if err := h.courseRepo.Update(course); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(course, "Kursus berhasil diperbarui"))
}

func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	course, err := h.courseRepo.FindByID(id)
	if err != nil {
		return notFound(c, "Kursus tidak ditemukan")
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}
	if err := h.courseRepo.Delete(id); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Kursus berhasil dihapus"))
}

// Modules

func (h *CourseHandler) CreateModule(c *fiber.Ctx) error {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	course, err := h.courseRepo.FindByID(courseID)
	if err != nil {
		return notFound(c, "Kursus tidak ditemukan")
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}

	var req dto.CreateModuleRequest
	if !parseBody(c, &req) {
		return nil
	}

	module := &domain.CourseModule{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.OrderIndex != nil {
		module.OrderIndex = *req.OrderIndex
	} else {
		module.OrderIndex = len(course.Modules)
	}

	if err := h.courseRepo.CreateModule(module); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(module, "Pertemuan berhasil ditambahkan"))
}

func (h *CourseHandler) UpdateModule(c *fiber.Ctx) error {
	moduleID, ok := parseUUIDParam(c, "moduleId")
	if !ok {
		return nil
	}
	module, err := h.courseRepo.FindModuleByID(moduleID)
	if err != nil {
		return notFound(c, "Pertemuan tidak ditemukan")
	}
	course, err := h.courseRepo.FindByID(module.CourseID)
	if err != nil {
		return internalError(c)
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}

	var req dto.UpdateModuleRequest
	if !parseBody(c, &req) {
		return nil
	}
	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = req.Description
	}
	if req.OrderIndex != nil {
		module.OrderIndex = *req.OrderIndex
	}

	if err := h.courseRepo.UpdateModule(module); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(module, "Pertemuan berhasil diperbarui"))
}

func (h *CourseHandler) DeleteModule(c *fiber.Ctx) error {
	moduleID, ok := parseUUIDParam(c, "moduleId")
	if !ok {
		return nil
	}
	module, err := h.courseRepo.FindModuleByID(moduleID)
	if err != nil {
		return notFound(c, "Pertemuan tidak ditemukan")
	}
	course, err := h.courseRepo.FindByID(module.CourseID)
	if err != nil {
		return internalError(c)
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}
	if err := h.courseRepo.DeleteModule(moduleID); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Pertemuan berhasil dihapus"))
}

// Materials

func (h *CourseHandler) CreateMaterial(c *fiber.Ctx) error {
	moduleID, ok := parseUUIDParam(c, "moduleId")
	if !ok {
		return nil
	}
	module, err := h.courseRepo.FindModuleByID(moduleID)
	if err != nil {
		return notFound(c, "Pertemuan tidak ditemukan")
	}
	course, err := h.courseRepo.FindByID(module.CourseID)
	if err != nil {
		return internalError(c)
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}

	var req dto.CreateMaterialRequest
	if !parseBody(c, &req) {
		return nil
	}

	material := &domain.CourseMaterial{
		ModuleID:    moduleID,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.MaterialType(req.Type),
		FilePath:    req.FilePath,
	}
	if err := h.courseRepo.CreateMaterial(material); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(material, "Materi berhasil ditambahkan"))
}

func (h *CourseHandler) DeleteMaterial(c *fiber.Ctx) error {
	materialID, ok := parseUUIDParam(c, "materialId")
	if !ok {
		return nil
	}
	material, err := h.courseRepo.FindMaterialByID(materialID)
	if err != nil {
		return notFound(c, "Materi tidak ditemukan")
	}
	module, err := h.courseRepo.FindModuleByID(material.ModuleID)
	if err != nil {
		return internalError(c)
	}
	course, err := h.courseRepo.FindByID(module.CourseID)
	if err != nil {
		return internalError(c)
	}
	if !h.canManageCourse(c, course) {
		return forbidden(c)
	}
	if err := h.courseRepo.DeleteMaterial(materialID); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Materi berhasil dihapus"))
}

// Enrollment

func (h *CourseHandler) Enroll(c *fiber.Ctx) error {
	courseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	userID := middleware.GetUserID(c)

	if _, err := h.courseRepo.FindByID(courseID); err != nil {
		return notFound(c, "Kursus tidak ditemukan")
	}

	enrolled, err := h.courseRepo.IsEnrolled(*userID, courseID)
	if err != nil {
		return internalError(c)
	}
	if enrolled {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Anda sudah terdaftar di kursus ini",
		))
	}

	if err := h.courseRepo.Enroll(*userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
				"CONFLICT", "Anda sudah terdaftar di kursus ini",
			))
		}
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(nil, "Berhasil mendaftar kursus"))
}

func (h *CourseHandler) MyEnrollments(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	enrollments, err := h.courseRepo.ListEnrollments(*userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(enrollments, ""))
}

// Attendance

func (h *CourseHandler) LogAttendance(c *fiber.Ctx) error {
	var req dto.AttendanceRequest
	if !parseBody(c, &req) {
		return nil
	}
	userID := middleware.GetUserID(c)

	exists, err := h.courseRepo.HasAttendanceToday(*userID, req.CourseID, time.Now())
	if err != nil {
		return internalError(c)
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Absensi hari ini sudah tercatat",
		))
	}

	log := &domain.AttendanceLog{
		ID:        uuid.New(),
		UserID:    *userID,
		CourseID:  req.CourseID,
		Timestamp: time.Now(),
		Status:    req.Status,
	}
	if err := h.courseRepo.LogAttendance(log); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(log, "Absensi berhasil dicatat"))
}

func (h *CourseHandler) MyAttendance(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	logs, err := h.courseRepo.ListAttendance(*userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(logs, ""))
}

// Comments

func (h *CourseHandler) CreateComment(c *fiber.Ctx) error {
	materialID, ok := parseUUIDParam(c, "materialId")
	if !ok {
		return nil
	}
	if _, err := h.courseRepo.FindMaterialByID(materialID); err != nil {
		return notFound(c, "Materi tidak ditemukan")
	}

	var req dto.CreateCommentRequest
	if !parseBody(c, &req) {
		return nil
	}

	userID := middleware.GetUserID(c)
	comment := &domain.MaterialComment{
		MaterialID: materialID,
		UserID:     *userID,
		Content:    req.Content,
	}
	if err := h.courseRepo.CreateComment(comment); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(comment, "Komentar berhasil ditambahkan"))
}

func (h *CourseHandler) ListComments(c *fiber.Ctx) error {
	materialID, ok := parseUUIDParam(c, "materialId")
	if !ok {
		return nil
	}
	comments, err := h.courseRepo.ListComments(materialID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(comments, ""))
}

func (h *CourseHandler) DeleteComment(c *fiber.Ctx) error {
	commentID, ok := parseUUIDParam(c, "commentId")
	if !ok {
		return nil
	}
	comment, err := h.courseRepo.FindCommentByID(commentID)
	if err != nil {
		return notFound(c, "Komentar tidak ditemukan")
	}

	userID := middleware.GetUserID(c)
	if middleware.GetUserRole(c) != string(domain.RoleAdmin) && (userID == nil || *userID != comment.UserID) {
		return forbidden(c)
	}

	if err := h.courseRepo.DeleteComment(commentID); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(nil, "Komentar berhasil dihapus"))
}

// Submissions

func (h *CourseHandler) SubmitAssignment(c *fiber.Ctx) error {
	materialID, ok := parseUUIDParam(c, "materialId")
	if !ok {
		return nil
	}
	material, err := h.courseRepo.FindMaterialByID(materialID)
	if err != nil {
		return notFound(c, "Materi tidak ditemukan")
	}
	if material.Type != domain.MaterialAssignment {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Materi ini bukan tugas",
		))
	}

	var req dto.CreateSubmissionRequest
	if !parseBody(c, &req) {
		return nil
	}
	if req.TextContent == nil && req.FilePath == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse(
			"VALIDATION_ERROR", "Isi jawaban atau lampirkan file",
		))
	}

	userID := middleware.GetUserID(c)
	if _, err := h.courseRepo.FindSubmission(*userID, materialID); err == nil {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(
			"CONFLICT", "Anda sudah mengumpulkan tugas ini",
		))
	}

	submission := &domain.MaterialSubmission{
		ID:          uuid.New(),
		MaterialID:  materialID,
		UserID:      *userID,
		TextContent: req.TextContent,
		FilePath:    req.FilePath,
		SubmittedAt: time.Now(),
	}
	if err := h.courseRepo.CreateSubmission(submission); err != nil {
		return internalError(c)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(submission, "Tugas berhasil dikumpulkan"))
}

func (h *CourseHandler) ListSubmissions(c *fiber.Ctx) error {
	materialID, ok := parseUUIDParam(c, "materialId")
	if !ok {
		return nil
	}
	submissions, err := h.courseRepo.ListSubmissions(materialID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(submissions, ""))
}

func (h *CourseHandler) GradeSubmission(c *fiber.Ctx) error {
	submissionID, ok := parseUUIDParam(c, "submissionId")
	if !ok {
		return nil
	}
	submission, err := h.courseRepo.FindSubmissionByID(submissionID)
	if err != nil {
		return notFound(c, "Pengumpulan tidak ditemukan")
	}

	var req dto.GradeSubmissionRequest
	if !parseBody(c, &req) {
		return nil
	}

	now := time.Now()
	submission.Score = &req.Score
	submission.Feedback = req.Feedback
	submission.GradedAt = &now
	if err := h.courseRepo.UpdateSubmission(submission); err != nil {
		return internalError(c)
	}
	return c.JSON(dto.SuccessResponse(submission, "Nilai berhasil disimpan"))
}
