package model

// Webhook event types handled by the billing module.
const (
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionActivated = "subscription.activated"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionCanceled  = "subscription.canceled"
	EventSubscriptionPastDue   = "subscription.past_due"
	EventTransactionCompleted  = "transaction.completed"
)

// WebhookEvent is the inbound billing event envelope.
type WebhookEvent struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Data      WebhookData `json:"data"`
}

// WebhookData carries the event-type-specific payload fields.
type WebhookData struct {
	SubscriptionID string  `json:"subscription_id"`
	CustomerID     string  `json:"customer_id"`
	Plan           string  `json:"plan"`
	Status         string  `json:"status"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
}
