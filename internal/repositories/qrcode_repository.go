package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

var ErrQRCodeNotFound = errors.New("qr code not found")

type QRCodeRepository interface {
	Create(db *gorm.DB, code *models.QRCode) error
	FindByID(db *gorm.DB, id string) (*models.QRCode, error)
	FindByBusiness(db *gorm.DB, businessID string) ([]models.QRCode, error)
	Update(db *gorm.DB, code *models.QRCode) error
	Delete(db *gorm.DB, id string) error

	// TrackScan appends the scan event and bumps the denormalized counter as
	// one logical unit. A scan row without the matching increment (or the
	// other way around) would be an inconsistency, so both writes share a
	// transaction and the increment is a single atomic statement.
	TrackScan(db *gorm.DB, scan *models.QRScan) error
	ListScans(db *gorm.DB, qrCodeID string, page, pageSize int) ([]models.QRScan, int64, error)
	CountScansSince(db *gorm.DB, businessID string, since time.Time) (int64, error)
}

type qrCodeRepository struct{}

func NewQRCodeRepository() QRCodeRepository {
	return &qrCodeRepository{}
}

func (r *qrCodeRepository) Create(db *gorm.DB, code *models.QRCode) error {
	return db.Create(code).Error
}

func (r *qrCodeRepository) FindByID(db *gorm.DB, id string) (*models.QRCode, error) {
	var code models.QRCode
	err := db.First(&code, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepository) FindByBusiness(db *gorm.DB, businessID string) ([]models.QRCode, error) {
	var codes []models.QRCode
	err := db.Where("business_id = ?", businessID).Order("created_at ASC").Find(&codes).Error
	return codes, err
}

func (r *qrCodeRepository) Update(db *gorm.DB, code *models.QRCode) error {
	result := db.Model(code).Updates(map[string]interface{}{
		"label":            code.Label,
		"foreground_color": code.ForegroundColor,
		"background_color": code.BackgroundColor,
		"size":             code.Size,
		"error_correction": code.ErrorCorrection,
		"image_data":       code.ImageData,
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}

func (r *qrCodeRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.QRCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}

func (r *qrCodeRepository) TrackScan(db *gorm.DB, scan *models.QRScan) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(scan).Error; err != nil {
			return err
		}

		result := tx.Model(&models.QRCode{}).
			Where("id = ?", scan.QRCodeID).
			UpdateColumn("scans_count", gorm.Expr("scans_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrQRCodeNotFound
		}
		return nil
	})
}

func (r *qrCodeRepository) ListScans(db *gorm.DB, qrCodeID string, page, pageSize int) ([]models.QRScan, int64, error) {
	query := db.Model(&models.QRScan{}).Where("qr_code_id = ?", qrCodeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var scans []models.QRScan
	err := query.Order("scanned_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&scans).Error
	return scans, total, err
}

func (r *qrCodeRepository) CountScansSince(db *gorm.DB, businessID string, since time.Time) (int64, error) {
	var count int64
	err := db.Model(&models.QRScan{}).
		Joins("JOIN qr_codes ON qr_codes.id = qr_scans.qr_code_id").
		Where("qr_codes.business_id = ? AND qr_scans.scanned_at >= ?", businessID, since).
		Count(&count).Error
	return count, err
}
