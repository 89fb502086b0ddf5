package models

import (
	"time"

	"gorm.io/datatypes"
)

type Review struct {
	BaseModelWithDeleted
	BusinessID      string       `gorm:"not null;index" json:"business_id"`
	CustomerID      string       `gorm:"not null;index" json:"customer_id"`
	Rating          int          `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Feedback        string       `gorm:"not null" json:"feedback"`
	GeneratedReview *string      `json:"generated_review,omitempty"`
	Status          ReviewStatus `gorm:"default:'pending';index" json:"status"`
	RejectionNote   string       `json:"rejection_note,omitempty"`
	PublishedAt     *time.Time   `json:"published_at,omitempty"`

	ModeratedBy    *string    `json:"moderated_by,omitempty"`
	ModeratedAt    *time.Time `json:"moderated_at,omitempty"`
	ModerationNote string     `json:"moderation_note,omitempty"`

	// Relations
	Business Business `gorm:"foreignKey:BusinessID" json:"-"`
	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// AIGeneration holds the enhancement attached to a review. A rejected or
// regenerated generation is superseded by a new row; the latest non-superseded
// one is the review's current generation.
type AIGeneration struct {
	BaseModel
	ReviewID     string           `gorm:"not null;index" json:"review_id"`
	OriginalText string           `gorm:"not null" json:"original_text"`
	EnhancedText string           `gorm:"not null" json:"enhanced_text"`
	Confidence   float64          `json:"confidence"`
	Sentiment    string           `json:"sentiment"`
	Keywords     datatypes.JSON   `json:"keywords,omitempty"`
	Status       GenerationStatus `gorm:"default:'pending'" json:"status"`
	Provider     string           `json:"provider"` // "openai" or "fallback"
}
