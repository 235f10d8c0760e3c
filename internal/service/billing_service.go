package service

import (
	"context"
	"errors"
	"log"
	"time"

	"sound-service/internal/models"
	"sound-service/internal/repository"
	"sound-service/pkg/apperr"

	"gorm.io/gorm"
)

// billingEventTTL bounds how long processed webhook event ids are
// remembered for deduplication. Processors retry well within this window.
const billingEventTTL = 72 * time.Hour

// EventDeduper remembers processed event ids. MarkProcessed returns false
// when the id was already seen.
type EventDeduper interface {
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

// BillingService syncs processor subscription events onto user records.
// Webhook deliveries are at-least-once, so every event id is deduplicated
// before it is applied.
type BillingService struct {
	userRepo repository.UserRepository
	deduper  EventDeduper
}

func NewBillingService(userRepo repository.UserRepository, deduper EventDeduper) *BillingService {
	return &BillingService{userRepo: userRepo, deduper: deduper}
}

// ProcessEvent applies one webhook event. Duplicate deliveries are
// acknowledged without effect.
func (s *BillingService) ProcessEvent(ctx context.Context, event *models.BillingEvent) error {
	status, premium, known := subscriptionStateFor(event.Type)
	if !known {
		return apperr.Invalid("unsupported event type")
	}

	first, err := s.deduper.MarkProcessed(ctx, event.ID, billingEventTTL)
	if err != nil {
		return apperr.Internal("failed to check event id", err)
	}
	if !first {
		log.Printf("billing event %s already processed, skipping", event.ID)
		return nil
	}

	user, err := s.userRepo.FindByBillingCustomerID(ctx, event.CustomerID)
	if err != nil {
		// Let the processor retry once the customer mapping exists.
		s.forget(ctx, event.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("unknown billing customer")
		}
		return apperr.Internal("failed to look up billing customer", err)
	}

	if err := s.userRepo.UpdateSubscription(ctx, user.ID, status, premium); err != nil {
		s.forget(ctx, event.ID)
		return apperr.Internal("failed to update subscription", err)
	}
	return nil
}

func (s *BillingService) forget(ctx context.Context, eventID string) {
	if err := s.deduper.Forget(ctx, eventID); err != nil {
		log.Printf("failed to release billing event %s: %v", eventID, err)
	}
}

func subscriptionStateFor(eventType string) (models.SubscriptionStatus, bool, bool) {
	switch eventType {
	case models.BillingSubscriptionActivated:
		return models.SubscriptionActive, true, true
	case models.BillingSubscriptionPastDue:
		return models.SubscriptionPastDue, true, true
	case models.BillingSubscriptionCanceled:
		return models.SubscriptionCanceled, false, true
	default:
		return "", false, false
	}
}
