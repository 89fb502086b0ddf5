package models

import (
	"time"

	"gorm.io/datatypes"
)

// UsageRecord is the per-month usage ledger backing quota enforcement.
// At most one row exists per (business, month, feature); the row is created
// lazily by an atomic insert-or-increment on first use in a month. Counts are
// never decremented; month rollover resets usage by virtue of a new key.
type UsageRecord struct {
	BaseModel
	BusinessID string         `gorm:"not null;uniqueIndex:idx_usage_key" json:"business_id"`
	Month      string         `gorm:"size:7;not null;uniqueIndex:idx_usage_key" json:"month"` // UTC "YYYY-MM"
	Feature    string         `gorm:"size:64;not null;uniqueIndex:idx_usage_key" json:"feature"`
	Count      int            `gorm:"not null;default:0" json:"count"`
	LastUsedAt time.Time      `json:"last_used_at"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}

// UsageMonth formats t as the ledger month key.
func UsageMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}
