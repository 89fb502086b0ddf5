package workers

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/payment"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

// captureMailer records notification recipients instead of sending mail.
type captureMailer struct {
	expiring []string
	expired  []string
}

func (m *captureMailer) SendSubscriptionExpiring(to, businessName, planName string, daysLeft int) error {
	m.expiring = append(m.expiring, to)
	return nil
}

func (m *captureMailer) SendSubscriptionExpired(to, businessName string) error {
	m.expired = append(m.expired, to)
	return nil
}

func (m *captureMailer) SendReviewPublished(to, businessName, reviewText string) error { return nil }
func (m *captureMailer) SendReviewRejected(to, businessName, reason string) error      { return nil }

type workerTestEnv struct {
	db       *gorm.DB
	worker   *SubscriptionWorker
	mailer   *captureMailer
	owner    *models.User
	business *models.Business
}

func newWorkerTestEnv(t *testing.T) *workerTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Business{},
		&models.Subscription{},
		&models.PaymentTransaction{},
	))

	owner := &models.User{
		Email:        "owner@example.com",
		PasswordHash: "irrelevant",
		Name:         "Test Owner",
		Role:         models.UserRoleBusiness,
		Status:       models.UserStatusActive,
	}
	require.NoError(t, db.Create(owner).Error)

	business := &models.Business{
		OwnerID:      owner.ID,
		Name:         "Test Business",
		BusinessType: "cafe",
		Slug:         "test-business",
	}
	require.NoError(t, db.Create(business).Error)

	catalog := plans.NewCatalog()
	svc := services.NewSubscriptionService(
		catalog,
		repositories.NewSubscriptionRepository(),
		payment.NewClient("shop", "pass1", "pass2", ""),
		"USD",
	)
	mailer := &captureMailer{}
	worker := NewSubscriptionWorker(db, svc, repositories.NewUserRepository(), mailer, catalog, time.Hour)

	return &workerTestEnv{db: db, worker: worker, mailer: mailer, owner: owner, business: business}
}

func (e *workerTestEnv) createSubscription(t *testing.T, endsIn time.Duration) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		BusinessID: e.business.ID,
		PlanID:     string(plans.PlanPremium),
		Status:     models.SubscriptionStatusActive,
		StartDate:  time.Now().AddDate(0, -1, 0),
		EndDate:    time.Now().Add(endsIn),
	}
	require.NoError(t, e.db.Create(sub).Error)
	return sub
}

func TestSweep_MailsOwnerOnceWhenSubscriptionExpires(t *testing.T) {
	env := newWorkerTestEnv(t)
	sub := env.createSubscription(t, -24*time.Hour)

	env.worker.sweep(context.Background())

	require.Len(t, env.mailer.expired, 1)
	assert.Equal(t, env.owner.Email, env.mailer.expired[0])

	var stored models.Subscription
	require.NoError(t, env.db.First(&stored, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusExpired, stored.Status)

	// The row is already expired, so another pass mails nobody.
	env.worker.sweep(context.Background())
	assert.Len(t, env.mailer.expired, 1)
}

func TestSweep_ExpiryNoticeSentOnlyOnce(t *testing.T) {
	env := newWorkerTestEnv(t)
	sub := env.createSubscription(t, 48*time.Hour)

	env.worker.sweep(context.Background())
	env.worker.sweep(context.Background())

	require.Len(t, env.mailer.expiring, 1)
	assert.Equal(t, env.owner.Email, env.mailer.expiring[0])
	assert.Empty(t, env.mailer.expired)

	var stored models.Subscription
	require.NoError(t, env.db.First(&stored, "id = ?", sub.ID).Error)
	assert.NotNil(t, stored.ExpiryNoticeSentAt)
}

func TestSweep_NoNoticeOutsideWindow(t *testing.T) {
	env := newWorkerTestEnv(t)
	env.createSubscription(t, 10*24*time.Hour)

	env.worker.sweep(context.Background())

	assert.Empty(t, env.mailer.expiring)
	assert.Empty(t, env.mailer.expired)
}
