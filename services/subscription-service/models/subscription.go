package models

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionPendingPayment SubscriptionStatus = "pending_payment"
	SubscriptionActive         SubscriptionStatus = "active"
	SubscriptionCanceled       SubscriptionStatus = "canceled"
	SubscriptionExpired        SubscriptionStatus = "expired"
	SubscriptionFailed         SubscriptionStatus = "failed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type ChangeType string

const (
	ChangeUpgrade   ChangeType = "upgrade"
	ChangeDowngrade ChangeType = "downgrade"
	ChangeCancel    ChangeType = "cancel"
)

type ApplyAt string

const (
	ApplyImmediate         ApplyAt = "immediate"
	ApplyNextBillingPeriod ApplyAt = "next_billing_period"
)

// PendingChange is the single deferred mutation a subscription can carry.
// Writing a new one overwrites whatever was there.
type PendingChange struct {
	Type          ChangeType `json:"type"`
	NewPlanID     string     `json:"newPlanId,omitempty"`
	NewManHours   int        `json:"newManHours,omitempty"`
	ApplyAt       ApplyAt    `json:"applyAt,omitempty"`
	EffectiveDate *time.Time `json:"effectiveDate"`
}

// Subscription owns the user's enrollment and billing state. PlanManHours is
// a copy of the allocation taken at purchase time (and grown by upgrades) so
// the catalog row itself is never aliased or mutated.
type Subscription struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID          `gorm:"type:uuid;index;not null" json:"userId"`
	PlanID        uuid.UUID          `gorm:"type:uuid;not null" json:"planId"`
	Plan          Plan               `gorm:"foreignKey:PlanID" json:"plan"`
	PlanManHours  int                `gorm:"not null;default:0" json:"planManHours"`
	Status        SubscriptionStatus `gorm:"type:varchar(20);not null;default:pending_payment" json:"status"`
	StartDate     time.Time          `gorm:"not null" json:"startDate"`
	EndDate       *time.Time         `json:"endDate"`
	ManHoursUsed  int                `gorm:"not null;default:0" json:"manHoursUsed"`
	TotalCost     float64            `gorm:"type:decimal(10,2)" json:"totalCost"`
	PaymentStatus PaymentStatus      `gorm:"type:varchar(20);not null;default:pending" json:"paymentStatus"`
	PaymentID     *string            `gorm:"type:varchar(64)" json:"paymentId"`
	PendingChange *PendingChange     `gorm:"serializer:json" json:"pendingChange"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}
