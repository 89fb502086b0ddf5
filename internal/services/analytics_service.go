package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

type AnalyticsService interface {
	// BusinessDashboard aggregates review and scan numbers for one business.
	// Gated by the analytics feature on the business's plan.
	BusinessDashboard(ctx context.Context, db *gorm.DB, ownerID, businessID string) (*dto.BusinessDashboardResponse, error)

	// PlatformStats is the admin-only cross-tenant view.
	PlatformStats(ctx context.Context, db *gorm.DB) (*dto.PlatformStatsResponse, error)
}

type analyticsService struct {
	reviewRepo   repositories.ReviewRepository
	qrRepo       repositories.QRCodeRepository
	businessRepo repositories.BusinessRepository
	entitlements EntitlementService
}

func NewAnalyticsService(
	reviewRepo repositories.ReviewRepository,
	qrRepo repositories.QRCodeRepository,
	businessRepo repositories.BusinessRepository,
	entitlements EntitlementService,
) AnalyticsService {
	return &analyticsService{
		reviewRepo:   reviewRepo,
		qrRepo:       qrRepo,
		businessRepo: businessRepo,
		entitlements: entitlements,
	}
}

func (s *analyticsService) BusinessDashboard(ctx context.Context, db *gorm.DB, ownerID, businessID string) (*dto.BusinessDashboardResponse, error) {
	business, err := s.businessRepo.FindByID(db, businessID)
	if err != nil {
		return nil, apperrors.ErrBusinessNotFound
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}

	if err := s.entitlements.Require(ctx, db, businessID, plans.FeatureAnalytics); err != nil {
		return nil, err
	}

	stats, err := s.reviewRepo.Stats(db, businessID, time.Time{})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	published, err := s.reviewRepo.CountPublished(db, businessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	scans, err := s.qrRepo.CountScansSince(db, businessID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	plan, err := s.entitlements.ResolvePlan(ctx, db, businessID)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}

	return &dto.BusinessDashboardResponse{
		BusinessID:       businessID,
		TotalReviews:     stats.Total,
		PublishedReviews: published,
		AverageRating:    stats.AverageRating,
		ReviewsByStatus:  byStatus,
		ScansLast30Days:  scans,
		CurrentPlan:      string(plan.ID),
	}, nil
}

func (s *analyticsService) PlatformStats(ctx context.Context, db *gorm.DB) (*dto.PlatformStatsResponse, error) {
	var out dto.PlatformStatsResponse

	if err := db.Model(&models.Business{}).Count(&out.TotalBusinesses).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := db.Model(&models.Review{}).Count(&out.TotalReviews).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := db.Model(&models.Review{}).
		Where("status = ?", models.ReviewStatusPublished).
		Count(&out.PublishedReviews).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := db.Model(&models.Subscription{}).
		Where("status = ?", models.SubscriptionStatusActive).
		Count(&out.ActiveSubscriptions).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := db.Model(&models.Subscription{}).
		Where("status = ? AND plan_id = ?", models.SubscriptionStatusActive, plans.PlanPremium).
		Count(&out.PremiumBusinesses).Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &out, nil
}
