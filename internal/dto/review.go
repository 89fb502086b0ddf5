package dto

import "time"

// SubmitReviewRequest is the public submission body reached from a QR scan.
// Either customer_id or the name/email pair identifies the customer.
type SubmitReviewRequest struct {
	BusinessID    string `json:"business_id" validate:"required,uuid4"`
	CustomerID    string `json:"customer_id" validate:"omitempty,uuid4"`
	CustomerName  string `json:"customer_name" validate:"omitempty,min=2,max=100"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	Rating        int    `json:"rating" validate:"required,min=1,max=5"`
	FeedbackText  string `json:"feedback_text" validate:"required,min=10,max=5000"`
}

type RejectReviewRequest struct {
	RejectionNote string `json:"rejection_note" validate:"required,min=3,max=1000"`
}

type ModerateReviewRequest struct {
	Action string `json:"action" validate:"required,is-moderation-action"`
	Note   string `json:"note" validate:"max=1000"`
}

type ListReviewsQuery struct {
	Status    string `form:"status" validate:"omitempty,oneof=pending ai_generated approved published rejected"`
	MinRating int    `form:"min_rating" validate:"omitempty,min=1,max=5"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,min=1,max=100"`
}

type ReviewResponse struct {
	ID              string     `json:"id"`
	BusinessID      string     `json:"business_id"`
	CustomerID      string     `json:"customer_id"`
	CustomerName    string     `json:"customer_name,omitempty"`
	Rating          int        `json:"rating"`
	FeedbackText    string     `json:"feedback_text"`
	GeneratedReview *string    `json:"generated_review,omitempty"`
	Status          string     `json:"status"`
	RejectionNote   string     `json:"rejection_note,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ReviewListResponse struct {
	Reviews  []ReviewResponse `json:"reviews"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

type GenerationResponse struct {
	ID           string    `json:"id"`
	ReviewID     string    `json:"review_id"`
	OriginalText string    `json:"original_text"`
	EnhancedText string    `json:"enhanced_text"`
	Confidence   float64   `json:"confidence"`
	Sentiment    string    `json:"sentiment"`
	Keywords     []string  `json:"keywords"`
	Status       string    `json:"status"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}
