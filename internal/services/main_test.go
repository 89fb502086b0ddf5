package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Prathmesh125/reviewsystem/internal/ai"
	"github.com/Prathmesh125/reviewsystem/internal/email"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Customer{},
		&models.Subscription{},
		&models.PaymentTransaction{},
		&models.UsageRecord{},
		&models.Review{},
		&models.AIGeneration{},
		&models.QRCode{},
		&models.QRScan{},
	)
	require.NoError(t, err)

	return db
}

func newTestEntitlements() EntitlementService {
	return NewEntitlementService(
		plans.NewCatalog(),
		repositories.NewSubscriptionRepository(),
		repositories.NewUsageRepository(),
	)
}

func createTestUser(t *testing.T, db *gorm.DB, emailAddr string) *models.User {
	t.Helper()

	user := &models.User{
		Email:        emailAddr,
		PasswordHash: "irrelevant",
		Name:         "Test Owner",
		Role:         models.UserRoleBusiness,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestBusiness(t *testing.T, db *gorm.DB, ownerID, slug string) *models.Business {
	t.Helper()

	business := &models.Business{
		OwnerID:      ownerID,
		Name:         "Test Business",
		BusinessType: "cafe",
		Slug:         slug,
	}
	require.NoError(t, db.Create(business).Error)
	return business
}

func activatePlan(t *testing.T, db *gorm.DB, businessID string, planID plans.PlanID) {
	t.Helper()

	now := time.Now()
	sub := &models.Subscription{
		BusinessID: businessID,
		PlanID:     string(planID),
		Status:     models.SubscriptionStatusActive,
		StartDate:  now,
		EndDate:    now.AddDate(0, 0, 30),
	}
	require.NoError(t, repositories.NewSubscriptionRepository().Replace(db, sub))
}

func timeDaysAgo(days int) time.Time {
	return time.Now().AddDate(0, 0, -days)
}

// stubEnhancer returns a canned result, or the error if set.
type stubEnhancer struct {
	result *ai.Result
	err    error
	calls  int
}

func (s *stubEnhancer) Enhance(ctx context.Context, req ai.Request) (*ai.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &ai.Result{
		EnhancedText: "I had a wonderful visit at " + req.BusinessName + ".",
		Confidence:   0.9,
		Sentiment:    "positive",
		Keywords:     []string{"service"},
		Provider:     "stub",
	}, nil
}

// recordingMailer captures notifications instead of sending them.
type recordingMailer struct {
	published []string
	rejected  []string
}

func (m *recordingMailer) SendSubscriptionExpiring(to, businessName, planName string, daysLeft int) error {
	return nil
}
func (m *recordingMailer) SendSubscriptionExpired(to, businessName string) error { return nil }
func (m *recordingMailer) SendReviewPublished(to, businessName, reviewText string) error {
	m.published = append(m.published, reviewText)
	return nil
}
func (m *recordingMailer) SendReviewRejected(to, businessName, reason string) error {
	m.rejected = append(m.rejected, reason)
	return nil
}

var _ email.Provider = (*recordingMailer)(nil)
