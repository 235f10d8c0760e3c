package service

import (
	"context"
	"log"
	"time"

	"sound-service/internal/adapters/kafka"
	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/pkg/apperr"
)

// NotificationService persists in-app notifications and fans them out to
// the delivery topic. It implements ConnectionNotifier; publishing is
// best-effort and never fails the calling transition.
type NotificationService struct {
	repo      repository.NotificationRepository
	publisher kafka.Publisher
}

func NewNotificationService(repo repository.NotificationRepository, publisher kafka.Publisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

func (s *NotificationService) ConnectionRequested(ctx context.Context, actorID, recipientID uint) {
	s.record(ctx, models.NotificationConnectionRequest, actorID, recipientID)
}

func (s *NotificationService) ConnectionAccepted(ctx context.Context, actorID, recipientID uint) {
	s.record(ctx, models.NotificationConnectionAccepted, actorID, recipientID)
}

func (s *NotificationService) record(ctx context.Context, eventType string, actorID, recipientID uint) {
	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        eventType,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		// Notification is not critical, log and continue.
		log.Printf("failed to store notification: %v", err)
	}

	if s.publisher == nil {
		return
	}
	event := models.NotificationEvent{
		Type:        eventType,
		RecipientID: recipientID,
		ActorID:     actorID,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("failed to publish notification event: %v", err)
	}
}

func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]models.NotificationResponse, error) {
	notifications, err := s.repo.ListByRecipient(ctx, userID, unreadOnly)
	if err != nil {
		return nil, apperr.Internal("failed to list notifications", err)
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, n.ToResponse())
	}
	return responses, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return apperr.Internal("failed to mark notification read", err)
	}
	if !ok {
		return apperr.NotFound("notification not found")
	}
	return nil
}

var _ ConnectionNotifier = (*NotificationService)(nil)
