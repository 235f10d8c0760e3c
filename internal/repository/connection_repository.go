package repository

import (
	"context"
	"errors"

	"sound-service/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicatePair is returned when an insert collides with the partial
// unique index guarding one-active-connection-per-pair. Concurrent sends
// for the same pair degrade to this error on the losing writer.
var ErrDuplicatePair = errors.New("active connection already exists for pair")

type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.Connection) error
	FindByID(ctx context.Context, id uint) (*models.Connection, error)
	FindByPair(ctx context.Context, a, b uint) (*models.Connection, error)
	CountByParticipant(ctx context.Context, userID uint) (int64, error)
	// UpdateStatusFrom flips status to `to` only if the current status is
	// one of `from`. Returns false when the guard did not match, which is
	// how concurrent accept/reject/cancel races resolve to one winner.
	UpdateStatusFrom(ctx context.Context, id uint, from []models.ConnectionStatus, to models.ConnectionStatus) (bool, error)
	// ForceBlock sets status to blocked and re-points the initiator at the
	// blocking user, regardless of the current status.
	ForceBlock(ctx context.Context, id, blockerID uint) error
	SentPending(ctx context.Context, userID uint) ([]models.Connection, error)
	ReceivedPending(ctx context.Context, userID uint) ([]models.Connection, error)
	AcceptedPage(ctx context.Context, userID uint, search string, offset, limit int) ([]models.Connection, int64, error)
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	err := r.db.WithContext(ctx).Create(conn).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePair
	}
	return err
}

func (r *connectionRepository) FindByID(ctx context.Context, id uint) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.WithContext(ctx).First(&conn, id).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindByPair(ctx context.Context, a, b uint) (*models.Connection, error) {
	low, high := models.NormalizePair(a, b)
	var conn models.Connection
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Order("updated_at DESC").
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) CountByParticipant(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Count(&count).Error
	return count, err
}

func (r *connectionRepository) UpdateStatusFrom(ctx context.Context, id uint, from []models.ConnectionStatus, to models.ConnectionStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *connectionRepository) ForceBlock(ctx context.Context, id, blockerID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.ConnectionBlocked,
			"initiator_id": blockerID,
		}).Error
}

func (r *connectionRepository) SentPending(ctx context.Context, userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.WithContext(ctx).
		Preload("UserLow").Preload("UserHigh").
		Where("initiator_id = ? AND status = ?", userID, models.ConnectionPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) ReceivedPending(ctx context.Context, userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.WithContext(ctx).
		Preload("UserLow").Preload("UserHigh").
		Where("(user_low_id = ? OR user_high_id = ?) AND initiator_id != ? AND status = ?",
			userID, userID, userID, models.ConnectionPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) AcceptedPage(ctx context.Context, userID uint, search string, offset, limit int) ([]models.Connection, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Connection{}).
		Joins("JOIN users ON users.id = CASE WHEN connections.user_low_id = ? THEN connections.user_high_id ELSE connections.user_low_id END", userID).
		Where("(connections.user_low_id = ? OR connections.user_high_id = ?) AND connections.status = ?",
			userID, userID, models.ConnectionAccepted)

	if search != "" {
		pattern := "%" + search + "%"
		base = base.Where("users.username ILIKE ? OR users.email ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conns []models.Connection
	err := base.
		Select("connections.*").
		Preload("UserLow").Preload("UserHigh").
		Order("connections.updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&conns).Error
	return conns, total, err
}
