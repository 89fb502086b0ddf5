package services

import (
	"context"
	"crypto/md5"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/payment"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

const (
	testMerchantPassword1 = "pw-one"
	testMerchantPassword2 = "pw-two"
)

type subscriptionTestEnv struct {
	db       *gorm.DB
	svc      SubscriptionService
	business *models.Business
}

func newSubscriptionTestEnv(t *testing.T) *subscriptionTestEnv {
	t.Helper()

	db := newTestDB(t)
	svc := NewSubscriptionService(
		plans.NewCatalog(),
		repositories.NewSubscriptionRepository(),
		payment.NewClient("test-merchant", testMerchantPassword1, testMerchantPassword2, ""),
		"USD",
	)

	owner := createTestUser(t, db, "owner@example.com")
	business := createTestBusiness(t, db, owner.ID, "test-business")
	return &subscriptionTestEnv{db: db, svc: svc, business: business}
}

// callbackSignature reproduces the provider's result signature for tests.
func callbackSignature(outSum, invoiceID string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(outSum+":"+invoiceID+":"+testMerchantPassword2)))
}

func TestSubscribe_FreeActivatesImmediately(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	resp, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "free")
	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusActive), resp.Status)
	assert.Empty(t, resp.PaymentURL)
}

func TestSubscribe_UnknownPlan(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	_, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "enterprise")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestSubscribe_PremiumStaysPendingUntilPaid(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	resp, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "premium")
	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusPending), resp.Status)
	assert.Contains(t, resp.PaymentURL, "InvId=")
	assert.Contains(t, resp.PaymentURL, "SignatureValue=")

	history, err := env.svc.PaymentHistory(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.PaymentStatusPending, history[0].Status)
}

func TestPaymentCallback_ActivatesPendingSubscription(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	// An earlier free subscription becomes history once the upgrade starts.
	_, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "free")
	require.NoError(t, err)

	resp, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "premium")
	require.NoError(t, err)

	history, err := env.svc.PaymentHistory(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	invoiceID := history[0].InvoiceID

	err = env.svc.ProcessPaymentCallback(context.Background(), env.db, dto.PaymentCallbackRequest{
		OutSum:         "29.00",
		InvID:          invoiceID,
		SignatureValue: callbackSignature("29.00", invoiceID),
	})
	require.NoError(t, err)

	current, err := env.svc.GetCurrent(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, current.ID)
	assert.Equal(t, "premium", current.PlanID)
	assert.Equal(t, string(models.SubscriptionStatusActive), current.Status)

	// The superseded free row must stay expired.
	var expired int64
	require.NoError(t, env.db.Model(&models.Subscription{}).
		Where("business_id = ? AND status = ?", env.business.ID, models.SubscriptionStatusExpired).
		Count(&expired).Error)
	assert.Equal(t, int64(1), expired)

	// Providers retry; a second identical callback is a no-op.
	err = env.svc.ProcessPaymentCallback(context.Background(), env.db, dto.PaymentCallbackRequest{
		OutSum:         "29.00",
		InvID:          invoiceID,
		SignatureValue: callbackSignature("29.00", invoiceID),
	})
	require.NoError(t, err)
}

func TestPaymentCallback_BadSignature(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	_, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "premium")
	require.NoError(t, err)

	history, err := env.svc.PaymentHistory(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	invoiceID := history[0].InvoiceID

	err = env.svc.ProcessPaymentCallback(context.Background(), env.db, dto.PaymentCallbackRequest{
		OutSum:         "29.00",
		InvID:          invoiceID,
		SignatureValue: "deadbeef",
	})
	assert.ErrorIs(t, err, apperrors.ErrPaymentProviderError)

	current, err := env.svc.GetCurrent(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusPending), current.Status)
}

func TestPaymentCallback_WrongAmount(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	_, err := env.svc.Subscribe(context.Background(), env.db, env.business.ID, "premium")
	require.NoError(t, err)

	history, err := env.svc.PaymentHistory(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	invoiceID := history[0].InvoiceID

	err = env.svc.ProcessPaymentCallback(context.Background(), env.db, dto.PaymentCallbackRequest{
		OutSum:         "1.00",
		InvID:          invoiceID,
		SignatureValue: callbackSignature("1.00", invoiceID),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPaymentAmount)
}

func TestCancel_KeepsAccessUntilEndDate(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	activatePlan(t, env.db, env.business.ID, plans.PlanPremium)
	require.NoError(t, env.svc.Cancel(context.Background(), env.db, env.business.ID))

	current, err := env.svc.GetCurrent(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusCancelled), current.Status)
	require.NotNil(t, current.CancelledAt)

	// End date is in the future, so the cancelled subscription is still usable.
	entitlements := newTestEntitlements()
	plan, err := entitlements.ResolvePlan(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	assert.Equal(t, plans.PlanPremium, plan.ID)
}

func TestCancel_WithoutSubscription(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	err := env.svc.Cancel(context.Background(), env.db, env.business.ID)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)
}

func TestSweepExpired(t *testing.T) {
	env := newSubscriptionTestEnv(t)

	sub := &models.Subscription{
		BusinessID: env.business.ID,
		PlanID:     string(plans.PlanPremium),
		Status:     models.SubscriptionStatusActive,
		StartDate:  timeDaysAgo(40),
		EndDate:    timeDaysAgo(10),
	}
	require.NoError(t, env.db.Create(sub).Error)

	swept, err := env.svc.SweepExpired(context.Background(), env.db)
	require.NoError(t, err)
	require.Len(t, swept, 1)
	assert.Equal(t, sub.ID, swept[0].ID)
	assert.Equal(t, models.SubscriptionStatusExpired, swept[0].Status)

	// The swept rows carry their business so callers can notify the owner.
	assert.Equal(t, env.business.Name, swept[0].Business.Name)

	current, err := env.svc.GetCurrent(context.Background(), env.db, env.business.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusExpired), current.Status)
}
