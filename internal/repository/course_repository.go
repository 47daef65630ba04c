package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Courses

func (r *CourseRepository) Create(course *domain.Course) error {
	return r.db.Create(course).Error
}

func (r *CourseRepository) FindByID(id uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	err := r.db.Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Modules.Materials").
		Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(page, perPage int, category, search string) ([]domain.Course, int64, error) {
	var courses []domain.Course
	var total int64

	query := r.db.Model(&domain.Course{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Instructor").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Update(course *domain.Course) error {
	return r.db.Save(course).Error
}

func (r *CourseRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&domain.Course{}, "id = ?", id).Error
}

// Modules

func (r *CourseRepository) CreateModule(module *domain.CourseModule) error {
	return r.db.Create(module).Error
}

func (r *CourseRepository) FindModuleByID(id uuid.UUID) (*domain.CourseModule, error) {
	var module domain.CourseModule
	err := r.db.Preload("Materials").Where("id = ?", id).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *CourseRepository) UpdateModule(module *domain.CourseModule) error {
	return r.db.Save(module).Error
}

func (r *CourseRepository) DeleteModule(id uuid.UUID) error {
	return r.db.Delete(&domain.CourseModule{}, "id = ?", id).Error
}

// Materials

func (r *CourseRepository) CreateMaterial(material *domain.CourseMaterial) error {
	return r.db.Create(material).Error
}

func (r *CourseRepository) FindMaterialByID(id uuid.UUID) (*domain.CourseMaterial, error) {
	var material domain.CourseMaterial
	err := r.db.Where("id = ?", id).First(&material).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *CourseRepository) DeleteMaterial(id uuid.UUID) error {
	return r.db.Delete(&domain.CourseMaterial{}, "id = ?", id).Error
}

// Enrollments

func (r *CourseRepository) Enroll(userID, courseID uuid.UUID) error {
	enrollment := domain.CourseEnrollment{
		UserID:   userID,
		CourseID: courseID,
	}
	return r.db.Create(&enrollment).Error
}

func (r *CourseRepository) IsEnrolled(userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&domain.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) ListEnrollments(userID uuid.UUID) ([]domain.CourseEnrollment, error) {
	var enrollments []domain.CourseEnrollment
	err := r.db.Preload("Course").Preload("Course.Instructor").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// CountEnrolledRequired returns how many of the given course ids the user is
// enrolled in.
func (r *CourseRepository) CountEnrolledRequired(userID uuid.UUID, courseIDs []uuid.UUID) (int64, error) {
	if len(courseIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&domain.CourseEnrollment{}).
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Count(&count).Error
	return count, err
}

func (r *CourseRepository) CountEnrollments(courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&domain.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// Attendance

func (r *CourseRepository) LogAttendance(log *domain.AttendanceLog) error {
	return r.db.Create(log).Error
}

// HasAttendanceToday prevents double check-ins for the same day and course.
func (r *CourseRepository) HasAttendanceToday(userID uuid.UUID, courseID *uuid.UUID, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	query := r.db.Model(&domain.AttendanceLog{}).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, start, end)
	if courseID != nil {
		query = query.Where("course_id = ?", *courseID)
	} else {
		query = query.Where("course_id IS NULL")
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) ListAttendance(userID uuid.UUID) ([]domain.AttendanceLog, error) {
	var logs []domain.AttendanceLog
	err := r.db.Where("user_id = ?", userID).Order("timestamp DESC").Find(&logs).Error
	return logs, err
}

// Comments

func (r *CourseRepository) CreateComment(comment *domain.MaterialComment) error {
	return r.db.Create(comment).Error
}

func (r *CourseRepository) ListComments(materialID uuid.UUID) ([]domain.MaterialComment, error) {
	var comments []domain.MaterialComment
	err := r.db.Preload("User").
		Where("material_id = ?", materialID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *CourseRepository) FindCommentByID(id uuid.UUID) (*domain.MaterialComment, error) {
	var comment domain.MaterialComment
	err := r.db.Where("id = ?", id).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CourseRepository) DeleteComment(id uuid.UUID) error {
	return r.db.Delete(&domain.MaterialComment{}, "id = ?", id).Error
}

// Submissions

func (r *CourseRepository) CreateSubmission(submission *domain.MaterialSubmission) error {
	return r.db.Create(submission).Error
}

func (r *CourseRepository) FindSubmission(userID, materialID uuid.UUID) (*domain.MaterialSubmission, error) {
	var submission domain.MaterialSubmission
	err := r.db.Where("user_id = ? AND material_id = ?", userID, materialID).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *CourseRepository) FindSubmissionByID(id uuid.UUID) (*domain.MaterialSubmission, error) {
	var submission domain.MaterialSubmission
	err := r.db.Preload("User").Where("id = ?", id).First(&submission).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *CourseRepository) ListSubmissions(materialID uuid.UUID) ([]domain.MaterialSubmission, error) {
	var submissions []domain.MaterialSubmission
	err := r.db.Preload("User").
		Where("material_id = ?", materialID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

func (r *CourseRepository) UpdateSubmission(submission *domain.MaterialSubmission) error {
	return r.db.Save(submission).Error
}

func (r *CourseRepository) CountModules(courseID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&domain.CourseModule{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}
