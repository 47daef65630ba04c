package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type LibraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

func (r *LibraryRepository) Create(book *domain.LibraryBook) error {
	return r.db.Create(book).Error
}

func (r *LibraryRepository) FindByID(id uuid.UUID) (*domain.LibraryBook, error) {
	var book domain.LibraryBook
	err := r.db.Preload("Uploader").Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListApproved is the public catalog view.
func (r *LibraryRepository) ListApproved(page, perPage int, search string) ([]domain.LibraryBook, int64, error) {
	return r.listByStatus(domain.LibraryApproved, page, perPage, search)
}

func (r *LibraryRepository) ListPending(page, perPage int) ([]domain.LibraryBook, int64, error) {
	return r.listByStatus(domain.LibraryPending, page, perPage, "")
}

func (r *LibraryRepository) listByStatus(status domain.LibraryStatus, page, perPage int, search string) ([]domain.LibraryBook, int64, error) {
	var books []domain.LibraryBook
	var total int64

	query := r.db.Model(&domain.LibraryBook{}).Where("status = ?", status)
	if search != "" {
		query = query.Where("title ILIKE ? OR description ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Uploader").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&books).Error
	return books, total, err
}

func (r *LibraryRepository) ListByUploader(uploaderID uuid.UUID) ([]domain.LibraryBook, error) {
	var books []domain.LibraryBook
	err := r.db.Where("uploader_id = ?", uploaderID).Order("created_at DESC").Find(&books).Error
	return books, err
}

func (r *LibraryRepository) SetStatus(id uuid.UUID, status domain.LibraryStatus) error {
	return r.db.Model(&domain.LibraryBook{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *LibraryRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&domain.LibraryBook{}, "id = ?", id).Error
}

func (r *LibraryRepository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&domain.LibraryBook{}).Where("status = ?", domain.LibraryPending).Count(&count).Error
	return count, err
}
