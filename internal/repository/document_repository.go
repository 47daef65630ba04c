package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Legal documents

// Upsert replaces any existing document of the same type for the student. A
// re-upload resets the review state to pending.
func (r *DocumentRepository) Upsert(doc *domain.LegalDocument) error {
	var existing domain.LegalDocument
	err := r.db.Where("student_id = ? AND document_type = ?", doc.StudentID, doc.DocumentType).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(doc).Error
		}
		return err
	}

	existing.FilePath = doc.FilePath
	existing.Status = domain.DocumentPending
	existing.VerifiedByID = nil
	existing.VerificationNotes = nil
	existing.VerifiedAt = nil
	existing.ExpirationDate = doc.ExpirationDate
	existing.UploadedAt = time.Now()
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	doc.ID = existing.ID
	return nil
}

func (r *DocumentRepository) FindByID(id uuid.UUID) (*domain.LegalDocument, error) {
	var doc domain.LegalDocument
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) ListByStudent(studentID uuid.UUID) ([]domain.LegalDocument, error) {
	var docs []domain.LegalDocument
	err := r.db.Where("student_id = ?", studentID).Order("uploaded_at DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) ListPending(page, perPage int) ([]domain.LegalDocument, int64, error) {
	var docs []domain.LegalDocument
	var total int64

	query := r.db.Model(&domain.LegalDocument{}).Where("status = ?", domain.DocumentPending)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Student").Preload("Student.User").
		Order("uploaded_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&docs).Error
	return docs, total, err
}

func (r *DocumentRepository) Update(doc *domain.LegalDocument) error {
	return r.db.Save(doc).Error
}

func (r *DocumentRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&domain.LegalDocument{}).Where("status = ?", domain.DocumentPending).Count(&count).Error
	return count, err
}

// Agreements

func (r *DocumentRepository) CreateAgreement(agreement *domain.DigitalAgreement) error {
	return r.db.Create(agreement).Error
}

func (r *DocumentRepository) SaveAgreement(agreement *domain.DigitalAgreement) error {
	return r.db.Save(agreement).Error
}

func (r *DocumentRepository) FindAgreement(studentID uuid.UUID, agreementType string) (*domain.DigitalAgreement, error) {
	var agreement domain.DigitalAgreement
	err := r.db.Where("student_id = ? AND agreement_type = ?", studentID, agreementType).
		First(&agreement).Error
	if err != nil {
		return nil, err
	}
	return &agreement, nil
}

func (r *DocumentRepository) ListAgreements(studentID uuid.UUID) ([]domain.DigitalAgreement, error) {
	var agreements []domain.DigitalAgreement
	err := r.db.Where("student_id = ?", studentID).Order("created_at ASC").Find(&agreements).Error
	return agreements, err
}

func (r *DocumentRepository) CountSignedAgreements(studentID uuid.UUID, types []string) (int64, error) {
	if len(types) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&domain.DigitalAgreement{}).
		Where("student_id = ? AND signed = true AND agreement_type IN ?", studentID, types).
		Count(&count).Error
	return count, err
}
