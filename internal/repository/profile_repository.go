package repository

import (
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(profile *domain.StudentProfile) error {
	return r.db.Create(profile).Error
}

func (r *ProfileRepository) FindByID(id uuid.UUID) (*domain.StudentProfile, error) {
	var profile domain.StudentProfile
	err := r.db.Preload("User").Preload("Supervisor").Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByUserID(userID uuid.UUID) (*domain.StudentProfile, error) {
	var profile domain.StudentProfile
	err := r.db.Preload("Supervisor").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) StudentIDExists(studentID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.StudentProfile{}).Where("student_id = ?", studentID).Count(&count).Error
	return count > 0, err
}

func (r *ProfileRepository) Update(profile *domain.StudentProfile) error {
	return r.db.Save(profile).Error
}

func (r *ProfileRepository) List(page, perPage int) ([]domain.StudentProfile, int64, error) {
	var profiles []domain.StudentProfile
	var total int64

	if err := r.db.Model(&domain.StudentProfile{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("User").Preload("Supervisor").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&profiles).Error
	return profiles, total, err
}

// ListBySupervisor returns students assigned to a supervisor, for the
// supervisor dashboard.
func (r *ProfileRepository) ListBySupervisor(supervisorID uuid.UUID) ([]domain.StudentProfile, error) {
	var profiles []domain.StudentProfile
	err := r.db.Preload("User").
		Where("supervisor_id = ?", supervisorID).
		Order("created_at ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.StudentProfile{}).Count(&count).Error
	return count, err
}

func (r *ProfileRepository) CountOnboardingComplete() (int64, error) {
	var count int64
	err := r.db.Model(&domain.StudentProfile{}).Where("onboarding_complete = true").Count(&count).Error
	return count, err
}
