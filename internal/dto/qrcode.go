package dto

import "time"

type CreateQRCodeRequest struct {
	BusinessID      string `json:"business_id" validate:"required,uuid4"`
	Label           string `json:"label" validate:"max=100"`
	Size            int    `json:"size" validate:"omitempty,min=128,max=1024"`
	ForegroundColor string `json:"foreground_color" validate:"omitempty,hexcolor"`
	BackgroundColor string `json:"background_color" validate:"omitempty,hexcolor"`
	ErrorCorrection string `json:"error_correction" validate:"omitempty,is-error-correction"`
}

type UpdateQRCodeRequest struct {
	Label           *string `json:"label" validate:"omitempty,max=100"`
	Size            *int    `json:"size" validate:"omitempty,min=128,max=1024"`
	ForegroundColor *string `json:"foreground_color" validate:"omitempty,hexcolor"`
	BackgroundColor *string `json:"background_color" validate:"omitempty,hexcolor"`
	ErrorCorrection *string `json:"error_correction" validate:"omitempty,is-error-correction"`
}

type TrackScanRequest struct {
	Location string `json:"location" validate:"max=200"`
}

type QRCodeResponse struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"business_id"`
	Label           string    `json:"label,omitempty"`
	TargetURL       string    `json:"target_url"`
	Size            int       `json:"size"`
	ForegroundColor string    `json:"foreground_color"`
	BackgroundColor string    `json:"background_color"`
	ErrorCorrection string    `json:"error_correction"`
	ScansCount      int64     `json:"scans_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ScanResponse struct {
	ID        string    `json:"id"`
	QRCodeID  string    `json:"qr_code_id"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Location  string    `json:"location,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}
