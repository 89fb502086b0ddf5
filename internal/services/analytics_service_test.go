package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

func newAnalyticsService() AnalyticsService {
	return NewAnalyticsService(
		repositories.NewReviewRepository(),
		repositories.NewQRCodeRepository(),
		repositories.NewBusinessRepository(),
		newTestEntitlements(),
	)
}

func TestBusinessDashboard_GatedOnFreePlan(t *testing.T) {
	db := newTestDB(t)
	svc := newAnalyticsService()
	owner := createTestUser(t, db, "owner@example.com")
	business := createTestBusiness(t, db, owner.ID, "test-business")

	_, err := svc.BusinessDashboard(context.Background(), db, owner.ID, business.ID)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeEntitlementDenied, appErr.Code)
}

func TestBusinessDashboard_PremiumAggregates(t *testing.T) {
	db := newTestDB(t)
	svc := newAnalyticsService()
	owner := createTestUser(t, db, "owner@example.com")
	business := createTestBusiness(t, db, owner.ID, "test-business")
	activatePlan(t, db, business.ID, plans.PlanPremium)

	customer := &models.Customer{BusinessID: business.ID, Name: "Alice"}
	require.NoError(t, db.Create(customer).Error)

	reviews := []models.Review{
		{BusinessID: business.ID, CustomerID: customer.ID, Rating: 5, Feedback: "great place, loved the coffee", Status: models.ReviewStatusPublished},
		{BusinessID: business.ID, CustomerID: customer.ID, Rating: 3, Feedback: "decent spot but a little noisy", Status: models.ReviewStatusPending},
	}
	for i := range reviews {
		require.NoError(t, db.Create(&reviews[i]).Error)
	}

	resp, err := svc.BusinessDashboard(context.Background(), db, owner.ID, business.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalReviews)
	assert.Equal(t, int64(1), resp.PublishedReviews)
	assert.InDelta(t, 4.0, resp.AverageRating, 0.001)
	assert.Equal(t, int64(1), resp.ReviewsByStatus[string(models.ReviewStatusPending)])
	assert.Equal(t, "premium", resp.CurrentPlan)
}

func TestBusinessDashboard_OwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	svc := newAnalyticsService()
	owner := createTestUser(t, db, "owner@example.com")
	intruder := createTestUser(t, db, "intruder@example.com")
	business := createTestBusiness(t, db, owner.ID, "test-business")
	activatePlan(t, db, business.ID, plans.PlanPremium)

	_, err := svc.BusinessDashboard(context.Background(), db, intruder.ID, business.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotBusinessOwner)
}

func TestPlatformStats(t *testing.T) {
	db := newTestDB(t)
	svc := newAnalyticsService()
	owner := createTestUser(t, db, "owner@example.com")
	business := createTestBusiness(t, db, owner.ID, "test-business")
	activatePlan(t, db, business.ID, plans.PlanPremium)

	customer := &models.Customer{BusinessID: business.ID, Name: "Alice"}
	require.NoError(t, db.Create(customer).Error)
	review := models.Review{BusinessID: business.ID, CustomerID: customer.ID, Rating: 5, Feedback: "great place, loved the coffee", Status: models.ReviewStatusPublished}
	require.NoError(t, db.Create(&review).Error)

	resp, err := svc.PlatformStats(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalBusinesses)
	assert.Equal(t, int64(1), resp.TotalReviews)
	assert.Equal(t, int64(1), resp.PublishedReviews)
	assert.Equal(t, int64(1), resp.ActiveSubscriptions)
	assert.Equal(t, int64(1), resp.PremiumBusinesses)
}
