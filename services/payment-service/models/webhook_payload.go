package models

// WebhookPayload is the body POSTed to the subscription service after
// settlement. The exact serialized bytes are what gets signed, so field
// order here is the canonical order on the wire.
type WebhookPayload struct {
	TransactionID  string  `json:"transactionId"`
	SubscriptionID string  `json:"subscriptionId"`
	Status         string  `json:"status"`
	Amount         float64 `json:"amount"`
	Timestamp      string  `json:"timestamp"`
}
