package models

import "time"

// Subscription rows are append-only history; at most one per business is in a
// usable state, the rest are expired. A business with no row at all is treated
// as an implicit active free subscription; that resolution happens in one
// place, the entitlement service, never at call sites.
type Subscription struct {
	BaseModel
	BusinessID  string             `gorm:"index;not null" json:"business_id"`
	PlanID      string             `gorm:"not null" json:"plan_id"`
	Status      SubscriptionStatus `gorm:"default:'pending'" json:"status"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`

	// Set once the owner has been warned the subscription is about to run
	// out, so the worker never mails the same window twice.
	ExpiryNoticeSentAt *time.Time `json:"-"`

	// Relations
	Business Business `gorm:"foreignKey:BusinessID" json:"-"`
}

// IsUsable reports whether the subscription still grants its plan.
// A cancelled subscription remains usable until its end date.
func (s *Subscription) IsUsable(now time.Time) bool {
	switch s.Status {
	case SubscriptionStatusActive:
		return true
	case SubscriptionStatusCancelled:
		return now.Before(s.EndDate)
	default:
		return false
	}
}

type PaymentTransaction struct {
	BaseModel
	BusinessID     string        `gorm:"not null;index" json:"business_id"`
	SubscriptionID string        `gorm:"index" json:"subscription_id"`
	PlanID         string        `json:"plan_id"`
	Amount         float64       `json:"amount"`
	Currency       string        `json:"currency"`
	Status         PaymentStatus `gorm:"default:'pending'" json:"status"`
	InvoiceID      string        `gorm:"uniqueIndex" json:"invoice_id"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
}
