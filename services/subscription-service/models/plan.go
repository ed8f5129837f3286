package models

import (
	"github.com/google/uuid"
)

type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
	BillingCustom  BillingCycle = "custom"
	BillingFree    BillingCycle = "free"
)

// Plan is a catalog row. The subscription keeps its own copy of the man-hour
// allocation, so plans are never mutated outside the catalog.
type Plan struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	ManHours        int          `gorm:"not null" json:"manHours"`
	PricePerManHour float64      `gorm:"type:decimal(10,2)" json:"pricePerManHour"`
	BillingCycle    BillingCycle `gorm:"type:varchar(20);not null;default:monthly" json:"billingCycle"`
	DiscountPercent float64      `gorm:"type:decimal(5,2);default:0" json:"discountPercent"`
	Features        []string     `gorm:"serializer:json" json:"features,omitempty"`
}
