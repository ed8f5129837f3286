package models

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// Transaction is a single payment attempt. Status flips from pending to a
// terminal value exactly once; Attempts only ever grows.
type Transaction struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	SubscriptionID string            `gorm:"type:uuid;index;not null" json:"subscriptionId"`
	UserID         string            `gorm:"type:uuid;not null" json:"userId"`
	Amount         float64           `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency       string            `gorm:"type:varchar(10);not null" json:"currency"`
	Status         TransactionStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	Attempts       int               `gorm:"not null;default:0" json:"attempts"`
	WebhookURL     string            `gorm:"type:varchar(1024);not null" json:"webhookUrl"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}
