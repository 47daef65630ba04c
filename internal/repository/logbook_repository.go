package repository

import (
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type LogbookRepository struct {
	db *gorm.DB
}

func NewLogbookRepository(db *gorm.DB) *LogbookRepository {
	return &LogbookRepository{db: db}
}

// Entries

func (r *LogbookRepository) CreateEntry(entry *domain.LogbookEntry) error {
	return r.db.Create(entry).Error
}

func (r *LogbookRepository) FindEntryByID(id uuid.UUID) (*domain.LogbookEntry, error) {
	var entry domain.LogbookEntry
	err := r.db.Preload("Supervisor").Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LogbookRepository) ListEntries(studentID uuid.UUID, page, perPage int) ([]domain.LogbookEntry, int64, error) {
	var entries []domain.LogbookEntry
	var total int64

	query := r.db.Model(&domain.LogbookEntry{}).Where("student_id = ?", studentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Supervisor").
		Order("entry_date DESC, created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&entries).Error
	return entries, total, err
}

// ListPendingValidation returns unvalidated entries addressed to a
// supervisor.
func (r *LogbookRepository) ListPendingValidation(supervisorID uuid.UUID) ([]domain.LogbookEntry, error) {
	var entries []domain.LogbookEntry
	err := r.db.Where("supervisor_id = ? AND validated = false", supervisorID).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

func (r *LogbookRepository) UpdateEntry(entry *domain.LogbookEntry) error {
	return r.db.Save(entry).Error
}

func (r *LogbookRepository) DeleteEntry(id uuid.UUID) error {
	return r.db.Delete(&domain.LogbookEntry{}, "id = ?", id).Error
}

// Competency checklists

func (r *LogbookRepository) CreateChecklist(item *domain.CompetencyChecklist) error {
	return r.db.Create(item).Error
}

func (r *LogbookRepository) FindChecklistByID(id uuid.UUID) (*domain.CompetencyChecklist, error) {
	var item domain.CompetencyChecklist
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *LogbookRepository) ListChecklistByProgram(program string) ([]domain.CompetencyChecklist, error) {
	var items []domain.CompetencyChecklist
	err := r.db.Where("program = ?", program).Order("competency_name ASC").Find(&items).Error
	return items, err
}

// FindChecklistByProcedure matches a logbook procedure name to a checklist
// competency within the student's program.
func (r *LogbookRepository) FindChecklistByProcedure(program, procedureName string) (*domain.CompetencyChecklist, error) {
	var item domain.CompetencyChecklist
	err := r.db.Where("program = ? AND competency_name = ?", program, procedureName).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *LogbookRepository) DeleteChecklist(id uuid.UUID) error {
	return r.db.Delete(&domain.CompetencyChecklist{}, "id = ?", id).Error
}

// Competency progress

func (r *LogbookRepository) FindProgress(studentID, competencyID uuid.UUID) (*domain.CompetencyProgress, error) {
	var progress domain.CompetencyProgress
	err := r.db.Where("student_id = ? AND competency_id = ?", studentID, competencyID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *LogbookRepository) SaveProgress(progress *domain.CompetencyProgress) error {
	return r.db.Save(progress).Error
}

func (r *LogbookRepository) CreateProgress(progress *domain.CompetencyProgress) error {
	return r.db.Create(progress).Error
}

func (r *LogbookRepository) ListProgress(studentID uuid.UUID) ([]domain.CompetencyProgress, error) {
	var items []domain.CompetencyProgress
	err := r.db.Preload("Competency").
		Where("student_id = ?", studentID).
		Find(&items).Error
	return items, err
}

// Supervisor PINs

func (r *LogbookRepository) FindPIN(supervisorID uuid.UUID) (*domain.SupervisorValidationPIN, error) {
	var pin domain.SupervisorValidationPIN
	err := r.db.Where("supervisor_id = ?", supervisorID).First(&pin).Error
	if err != nil {
		return nil, err
	}
	return &pin, nil
}

func (r *LogbookRepository) SavePIN(pin *domain.SupervisorValidationPIN) error {
	return r.db.Save(pin).Error
}
