package repositories

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

type UsageRepository interface {
	// Increment performs the atomic insert-or-increment for one ledger key.
	// Concurrent callers must never lose an update, so the whole operation is
	// a single upsert statement, not read-modify-write.
	Increment(db *gorm.DB, businessID string, feature string, metadata datatypes.JSON) error

	// CurrentCount reads this month's count for the key; a missing row is 0.
	CurrentCount(db *gorm.DB, businessID string, feature string) (int, error)

	// CountForMonth reads the count for an explicit month key.
	CountForMonth(db *gorm.DB, businessID string, feature string, month string) (int, error)

	// MonthSummary returns feature -> count for the business's current month.
	MonthSummary(db *gorm.DB, businessID string) (map[string]int, error)
}

type usageRepository struct{}

func NewUsageRepository() UsageRepository {
	return &usageRepository{}
}

func (r *usageRepository) Increment(db *gorm.DB, businessID string, feature string, metadata datatypes.JSON) error {
	now := time.Now()
	record := models.UsageRecord{
		BusinessID: businessID,
		Month:      models.UsageMonth(now),
		Feature:    feature,
		Count:      1,
		LastUsedAt: now,
		Metadata:   metadata,
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "business_id"}, {Name: "month"}, {Name: "feature"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":        gorm.Expr("count + ?", 1),
			"last_used_at": now,
		}),
	}).Create(&record).Error
}

func (r *usageRepository) CurrentCount(db *gorm.DB, businessID string, feature string) (int, error) {
	return r.CountForMonth(db, businessID, feature, models.UsageMonth(time.Now()))
}

func (r *usageRepository) CountForMonth(db *gorm.DB, businessID string, feature string, month string) (int, error) {
	var record models.UsageRecord
	err := db.Where("business_id = ? AND month = ? AND feature = ?", businessID, month, feature).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Count, nil
}

func (r *usageRepository) MonthSummary(db *gorm.DB, businessID string) (map[string]int, error) {
	var records []models.UsageRecord
	err := db.Where("business_id = ? AND month = ?", businessID, models.UsageMonth(time.Now())).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	summary := make(map[string]int, len(records))
	for _, rec := range records {
		summary[rec.Feature] = rec.Count
	}
	return summary, nil
}
