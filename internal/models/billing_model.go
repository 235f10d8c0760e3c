package models

// Billing event types sent by the payment processor webhook.
const (
	BillingSubscriptionActivated = "subscription.activated"
	BillingSubscriptionPastDue   = "subscription.past_due"
	BillingSubscriptionCanceled  = "subscription.canceled"
)

/** -------------------- DTOs -------------------- */
// BillingEvent is the processor webhook payload. The processor itself is
// an external collaborator; only the fields the sync needs are decoded.
type BillingEvent struct {
	ID         string `json:"id" binding:"required"`
	Type       string `json:"type" binding:"required"`
	CustomerID string `json:"customerId" binding:"required"`
}
