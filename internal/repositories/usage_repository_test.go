package repositories

import (
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

func newUsageTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UsageRecord{}))
	return db
}

func TestIncrement_UpsertsSingleRow(t *testing.T) {
	db := newUsageTestDB(t)
	repo := NewUsageRepository()
	businessID := "biz-1"

	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Increment(db, businessID, "ai_enhancements", nil))
	}

	var rows int64
	require.NoError(t, db.Model(&models.UsageRecord{}).
		Where("business_id = ? AND feature = ?", businessID, "ai_enhancements").
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	count, err := repo.CurrentCount(db, businessID, "ai_enhancements")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestIncrement_ConcurrentCallsLoseNothing(t *testing.T) {
	db := newUsageTestDB(t)
	repo := NewUsageRepository()
	businessID := "biz-1"

	const callers = 20
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Increment(db, businessID, "ai_enhancements", nil)
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	require.Greater(t, succeeded, 0)

	// Every successful upsert lands on the same ledger row.
	var rows int64
	require.NoError(t, db.Model(&models.UsageRecord{}).
		Where("business_id = ? AND feature = ?", businessID, "ai_enhancements").
		Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	count, err := repo.CurrentCount(db, businessID, "ai_enhancements")
	require.NoError(t, err)
	assert.Equal(t, succeeded, count)
}

func TestCurrentCount_MissingRowIsZero(t *testing.T) {
	db := newUsageTestDB(t)
	repo := NewUsageRepository()

	count, err := repo.CurrentCount(db, "biz-1", "reviews")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestIncrement_KeysAreIndependent(t *testing.T) {
	db := newUsageTestDB(t)
	repo := NewUsageRepository()

	require.NoError(t, repo.Increment(db, "biz-1", "reviews", nil))
	require.NoError(t, repo.Increment(db, "biz-1", "ai_enhancements", nil))
	require.NoError(t, repo.Increment(db, "biz-2", "reviews", nil))

	count, err := repo.CurrentCount(db, "biz-1", "reviews")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CurrentCount(db, "biz-2", "ai_enhancements")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountForMonth_ReadsHistoricalLedger(t *testing.T) {
	db := newUsageTestDB(t)
	repo := NewUsageRepository()
	lastMonth := models.UsageMonth(time.Now().AddDate(0, -1, 0))

	record := models.UsageRecord{
		BusinessID: "biz-1",
		Month:      lastMonth,
		Feature:    "reviews",
		Count:      7,
		LastUsedAt: time.Now().AddDate(0, -1, 0),
	}
	require.NoError(t, db.Create(&record).Error)

	count, err := repo.CountForMonth(db, "biz-1", "reviews", lastMonth)
	require.NoError(t, err)
	assert.Equal(t, 7, count)

	// The historical row does not bleed into the current month.
	count, err = repo.CurrentCount(db, "biz-1", "reviews")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMonthSummary(t *testing.T) {
	db := newUsageTestDB(t)
	repo := NewUsageRepository()

	require.NoError(t, repo.Increment(db, "biz-1", "reviews", nil))
	require.NoError(t, repo.Increment(db, "biz-1", "reviews", nil))
	require.NoError(t, repo.Increment(db, "biz-1", "ai_enhancements", nil))

	summary, err := repo.MonthSummary(db, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"reviews": 2, "ai_enhancements": 1}, summary)
}
