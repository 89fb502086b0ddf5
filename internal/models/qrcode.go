package models

import (
	"time"

	"gorm.io/datatypes"
)

type QRCode struct {
	BaseModelWithDeleted
	BusinessID      string `gorm:"not null;index" json:"business_id"`
	Label           string `json:"label"`
	TargetURL       string `gorm:"not null" json:"target_url"`
	ForegroundColor string `gorm:"default:'#000000'" json:"foreground_color"`
	BackgroundColor string `gorm:"default:'#FFFFFF'" json:"background_color"`
	Size            int    `gorm:"default:256" json:"size"`
	ErrorCorrection string `gorm:"size:1;default:'M'" json:"error_correction"` // L, M, Q, H
	ImageData       []byte `json:"-"`
	ScansCount      int64  `gorm:"not null;default:0" json:"scans_count"`

	// Relations
	Business Business `gorm:"foreignKey:BusinessID" json:"-"`
}

// QRScan is an append-only scan event. Rows are never mutated or deleted;
// the denormalized QRCode.ScansCount is incremented in the same transaction
// that inserts the row.
type QRScan struct {
	BaseModel
	QRCodeID  string         `gorm:"not null;index" json:"qr_code_id"`
	IPAddress string         `json:"ip_address"`
	UserAgent string         `json:"user_agent"`
	Location  string         `json:"location,omitempty"`
	ScannedAt time.Time      `gorm:"index" json:"scanned_at"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}
