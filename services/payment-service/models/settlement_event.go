package models

import "time"

// SettlementEvent is the audit record published to Kafka after a settlement
// reaches a terminal status.
type SettlementEvent struct {
	Type           string    `json:"type"` // settlement_success | settlement_failed
	TransactionID  string    `json:"transaction_id"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	Timestamp      time.Time `json:"timestamp"`
}
