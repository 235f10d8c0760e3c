package repository

import (
	"context"

	"sound-service/internal/models"

	"gorm.io/gorm"
)

type SoundRepository interface {
	Create(ctx context.Context, sound *models.Sound) error
	FindByID(ctx context.Context, id uint) (*models.Sound, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Sound, error)
	ListPage(ctx context.Context, search string, offset, limit int) ([]models.Sound, int64, error)
	IncrementPlayCount(ctx context.Context, id uint) error
	Update(ctx context.Context, sound *models.Sound) error
	Delete(ctx context.Context, id uint) error
}

type soundRepository struct {
	db *gorm.DB
}

func NewSoundRepository(db *gorm.DB) SoundRepository {
	return &soundRepository{db: db}
}

func (r *soundRepository) Create(ctx context.Context, sound *models.Sound) error {
	return r.db.WithContext(ctx).Create(sound).Error
}

func (r *soundRepository) FindByID(ctx context.Context, id uint) (*models.Sound, error) {
	var sound models.Sound
	if err := r.db.WithContext(ctx).Preload("Owner").First(&sound, id).Error; err != nil {
		return nil, err
	}
	return &sound, nil
}

func (r *soundRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Sound, error) {
	var sounds []models.Sound
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&sounds).Error
	return sounds, err
}

func (r *soundRepository) ListPage(ctx context.Context, search string, offset, limit int) ([]models.Sound, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Sound{})
	if search != "" {
		base = base.Where("title ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sounds []models.Sound
	err := base.
		Preload("Owner").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&sounds).Error
	return sounds, total, err
}

func (r *soundRepository) IncrementPlayCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Sound{}).
		Where("id = ?", id).
		UpdateColumn("play_count", gorm.Expr("play_count + 1")).Error
}

func (r *soundRepository) Update(ctx context.Context, sound *models.Sound) error {
	return r.db.WithContext(ctx).Save(sound).Error
}

func (r *soundRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Sound{}, id).Error
}
