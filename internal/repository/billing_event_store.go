package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const billingEventKeyPrefix = "billing:event:"

// BillingEventStore deduplicates processor webhook deliveries in Redis.
type BillingEventStore struct {
	client *redis.Client
}

func NewBillingEventStore(client *redis.Client) *BillingEventStore {
	return &BillingEventStore{client: client}
}

// MarkProcessed claims an event id. Returns false when another delivery
// already claimed it.
func (s *BillingEventStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, billingEventKeyPrefix+eventID, 1, ttl).Result()
}

// Forget releases a claimed event id so a retry can reprocess it.
func (s *BillingEventStore) Forget(ctx context.Context, eventID string) error {
	return s.client.Del(ctx, billingEventKeyPrefix+eventID).Err()
}
