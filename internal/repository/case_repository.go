package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type CaseRepository struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Patient cases

func (r *CaseRepository) Create(c *domain.PatientCase) error {
	return r.db.Create(c).Error
}

func (r *CaseRepository) FindByID(id uuid.UUID) (*domain.PatientCase, error) {
	var c domain.PatientCase
	err := r.db.Preload("DailyUpdates", func(db *gorm.DB) *gorm.DB {
		return db.Order("entry_date ASC")
	}).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CaseRepository) ListByStudent(studentID uuid.UUID, status string) ([]domain.PatientCase, error) {
	var cases []domain.PatientCase
	query := r.db.Where("student_id = ?", studentID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("start_date DESC").Find(&cases).Error
	return cases, err
}

func (r *CaseRepository) Update(c *domain.PatientCase) error {
	return r.db.Save(c).Error
}

func (r *CaseRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&domain.PatientCase{}).Where("status = ?", domain.CaseActive).Count(&count).Error
	return count, err
}

// Daily updates

func (r *CaseRepository) CreateDailyUpdate(update *domain.PatientCaseDailyUpdate) error {
	return r.db.Create(update).Error
}

// HasDailyUpdate reports whether the case already has an update for the day.
func (r *CaseRepository) HasDailyUpdate(caseID uuid.UUID, entryDate time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&domain.PatientCaseDailyUpdate{}).
		Where("case_id = ? AND entry_date = ?", caseID, entryDate).
		Count(&count).Error
	return count > 0, err
}

func (r *CaseRepository) ListDailyUpdates(caseID uuid.UUID) ([]domain.PatientCaseDailyUpdate, error) {
	var updates []domain.PatientCaseDailyUpdate
	err := r.db.Where("case_id = ?", caseID).Order("entry_date ASC").Find(&updates).Error
	return updates, err
}

// Daily journals

func (r *CaseRepository) CreateJournal(journal *domain.DailyJournal) error {
	return r.db.Create(journal).Error
}

func (r *CaseRepository) FindJournalByID(id uuid.UUID) (*domain.DailyJournal, error) {
	var journal domain.DailyJournal
	err := r.db.Where("id = ?", id).First(&journal).Error
	if err != nil {
		return nil, err
	}
	return &journal, nil
}

func (r *CaseRepository) HasJournal(studentID uuid.UUID, entryDate time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&domain.DailyJournal{}).
		Where("student_id = ? AND entry_date = ?", studentID, entryDate).
		Count(&count).Error
	return count > 0, err
}

func (r *CaseRepository) ListJournals(studentID uuid.UUID, page, perPage int) ([]domain.DailyJournal, int64, error) {
	var journals []domain.DailyJournal
	var total int64

	query := r.db.Model(&domain.DailyJournal{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("entry_date DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&journals).Error
	return journals, total, err
}

// CountJournalsAwaitingFeedback counts journals from the given students that
// have no supervisor feedback yet.
func (r *CaseRepository) CountJournalsAwaitingFeedback(studentIDs []uuid.UUID) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&domain.DailyJournal{}).
		Where("student_id IN ? AND supervisor_feedback IS NULL", studentIDs).
		Count(&count).Error
	return count, err
}

func (r *CaseRepository) UpdateJournal(journal *domain.DailyJournal) error {
	return r.db.Save(journal).Error
}
