package repository

import (
	"github.com/google/uuid"
	"github.com/kgpaabangizzul/diklat/internal/domain"
	"gorm.io/gorm"
)

type NewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) Create(news *domain.News) error {
	return r.db.Create(news).Error
}

func (r *NewsRepository) FindByID(id uuid.UUID) (*domain.News, error) {
	var news domain.News
	err := r.db.Preload("Author").Where("id = ?", id).First(&news).Error
	if err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *NewsRepository) List(page, perPage int, search string) ([]domain.News, int64, error) {
	var items []domain.News
	var total int64

	query := r.db.Model(&domain.News{})
	if search != "" {
		query = query.Where("title ILIKE ?", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	return items, total, err
}

func (r *NewsRepository) Update(news *domain.News) error {
	return r.db.Save(news).Error
}

func (r *NewsRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&domain.News{}, "id = ?", id).Error
}
