package dto

import "time"

type SubscribeRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type SubscriptionResponse struct {
	ID          string     `json:"id"`
	BusinessID  string     `json:"business_id"`
	PlanID      string     `json:"plan_id"`
	Status      string     `json:"status"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	PaymentURL  string     `json:"payment_url,omitempty"`
}

type PlanResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Price    float64           `json:"price"`
	Currency string            `json:"currency"`
	Limits   map[string]string `json:"limits"`
}

// PaymentCallbackRequest mirrors the provider's result notification.
type PaymentCallbackRequest struct {
	OutSum         string `form:"OutSum" validate:"required"`
	InvID          string `form:"InvId" validate:"required"`
	SignatureValue string `form:"SignatureValue" validate:"required"`
}

// UsageCheckResponse answers "may this business use this feature right now".
type UsageCheckResponse struct {
	Allowed        bool   `json:"allowed"`
	Feature        string `json:"feature"`
	Used           int    `json:"used"`
	Limit          string `json:"limit"`
	Remaining      string `json:"remaining"`
	CurrentPlan    string `json:"current_plan"`
	UpgradeMessage string `json:"upgrade_message,omitempty"`
}

type UsageSummaryResponse struct {
	Month    string         `json:"month"`
	Plan     string         `json:"plan"`
	Features map[string]int `json:"features"`
}
