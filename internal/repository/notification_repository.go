package repository

import (
	"context"

	"sound-service/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uint) (bool, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, unreadOnly bool) ([]models.Notification, error) {
	q := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
