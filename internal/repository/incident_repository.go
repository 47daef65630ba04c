package repository

import (
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// Incident reports

func (r *IncidentRepository) Create(incident *domain.IncidentReport) error {
	return r.db.Create(incident).Error
}

func (r *IncidentRepository) FindByID(id uuid.UUID) (*domain.IncidentReport, error) {
	var incident domain.IncidentReport
	err := r.db.Where("id = ?", id).First(&incident).Error
	if err != nil {
		return nil, err
	}
	return &incident, nil
}

func (r *IncidentRepository) List(page, perPage int, status string) ([]domain.IncidentReport, int64, error) {
	var incidents []domain.IncidentReport
	var total int64

	query := r.db.Model(&domain.IncidentReport{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("reported_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&incidents).Error
	return incidents, total, err
}

func (r *IncidentRepository) ListByReporter(reporterID uuid.UUID) ([]domain.IncidentReport, error) {
	var incidents []domain.IncidentReport
	err := r.db.Where("reporter_id = ?", reporterID).Order("reported_at DESC").Find(&incidents).Error
	return incidents, err
}

func (r *IncidentRepository) Update(incident *domain.IncidentReport) error {
	return r.db.Save(incident).Error
}

func (r *IncidentRepository) CountOpen() (int64, error) {
	var count int64
	err := r.db.Model(&domain.IncidentReport{}).
		Where("status IN ?", []domain.IncidentStatus{domain.IncidentReported, domain.IncidentUnderReview}).
		Count(&count).Error
	return count, err
}

func (r *IncidentRepository) CountOpenByStudents(studentIDs []uuid.UUID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&domain.IncidentReport{}).
		Where("student_id IN ? AND status IN ?", studentIDs,
			[]domain.IncidentStatus{domain.IncidentReported, domain.IncidentUnderReview}).
		Count(&count).Error
	return count, err
}

// Student feedback

func (r *IncidentRepository) CreateFeedback(feedback *domain.StudentFeedback) error {
	return r.db.Create(feedback).Error
}

func (r *IncidentRepository) ListFeedback(page, perPage int) ([]domain.StudentFeedback, int64, error) {
	var items []domain.StudentFeedback
	var total int64

	if err := r.db.Model(&domain.StudentFeedback{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("submitted_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	return items, total, err
}

// Alumni profiles

func (r *IncidentRepository) FindAlumniByUserID(userID uuid.UUID) (*domain.AlumniProfile, error) {
	var profile domain.AlumniProfile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *IncidentRepository) SaveAlumni(profile *domain.AlumniProfile) error {
	return r.db.Save(profile).Error
}

func (r *IncidentRepository) CreateAlumni(profile *domain.AlumniProfile) error {
	return r.db.Create(profile).Error
}

func (r *IncidentRepository) ListMentors() ([]domain.AlumniProfile, error) {
	var profiles []domain.AlumniProfile
	err := r.db.Preload("User").
		Where("willing_to_mentor = true").
		Order("graduation_year DESC").
		Find(&profiles).Error
	return profiles, err
}
