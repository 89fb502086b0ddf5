package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

// EntitlementService answers "may this business use this feature right now"
// and records consumption. Every gated operation calls Require before doing
// work and IncrementUsage only after the work succeeded, so a failed
// operation never burns quota.
type EntitlementService interface {
	// ResolvePlan returns the plan currently governing the business. A missing
	// or unusable subscription resolves to the free plan; this is the only
	// place that fallback happens.
	ResolvePlan(ctx context.Context, db *gorm.DB, businessID string) (plans.Plan, error)

	// Check reports whether the feature is available without consuming quota.
	Check(ctx context.Context, db *gorm.DB, businessID string, feature plans.FeatureKey) (*dto.UsageCheckResponse, error)

	// Require is Check with a denial error: callers gate work on its nil return.
	Require(ctx context.Context, db *gorm.DB, businessID string, feature plans.FeatureKey) error

	// IncrementUsage records one consumption of the feature for the current month.
	IncrementUsage(ctx context.Context, db *gorm.DB, businessID string, feature plans.FeatureKey) error

	// UsageSummary returns the current month's counts per feature.
	UsageSummary(ctx context.Context, db *gorm.DB, businessID string) (*dto.UsageSummaryResponse, error)
}

type entitlementService struct {
	catalog          *plans.Catalog
	subscriptionRepo repositories.SubscriptionRepository
	usageRepo        repositories.UsageRepository
}

func NewEntitlementService(
	catalog *plans.Catalog,
	subscriptionRepo repositories.SubscriptionRepository,
	usageRepo repositories.UsageRepository,
) EntitlementService {
	return &entitlementService{
		catalog:          catalog,
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
	}
}

func (s *entitlementService) ResolvePlan(ctx context.Context, db *gorm.DB, businessID string) (plans.Plan, error) {
	sub, err := s.subscriptionRepo.FindByBusiness(db, businessID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return s.catalog.Get(string(plans.PlanFree)), nil
		}
		// Fail closed: an unreadable subscription must not grant paid features.
		return plans.Plan{}, apperrors.InternalError(fmt.Errorf("resolve subscription for %s: %w", businessID, err))
	}

	if !sub.IsUsable(time.Now()) {
		return s.catalog.Get(string(plans.PlanFree)), nil
	}
	return s.catalog.Get(sub.PlanID), nil
}

func (s *entitlementService) Check(ctx context.Context, db *gorm.DB, businessID string, feature plans.FeatureKey) (*dto.UsageCheckResponse, error) {
	plan, err := s.ResolvePlan(ctx, db, businessID)
	if err != nil {
		return nil, err
	}

	resp := &dto.UsageCheckResponse{
		Feature:     string(feature),
		CurrentPlan: string(plan.ID),
	}

	limit := plan.Limit(feature)
	switch limit.Kind {
	case plans.LimitUnlimited:
		resp.Allowed = true
		resp.Limit = "unlimited"
		resp.Remaining = "unlimited"

	case plans.LimitBoolean:
		resp.Allowed = limit.Enabled
		if limit.Enabled {
			resp.Limit = "enabled"
			resp.Remaining = "enabled"
		} else {
			resp.Limit = "disabled"
			resp.Remaining = "disabled"
			resp.UpgradeMessage = upgradeMessage(plan.ID, feature)
		}

	case plans.LimitCapped:
		used, err := s.usageRepo.CurrentCount(db, businessID, string(feature))
		if err != nil {
			// Fail closed: without a readable count we cannot prove headroom.
			return nil, apperrors.InternalError(fmt.Errorf("read usage for %s/%s: %w", businessID, feature, err))
		}
		resp.Used = used
		resp.Limit = strconv.Itoa(limit.Cap)
		remaining := limit.Cap - used
		if remaining < 0 {
			remaining = 0
		}
		resp.Remaining = strconv.Itoa(remaining)
		resp.Allowed = used < limit.Cap
		if !resp.Allowed {
			resp.UpgradeMessage = upgradeMessage(plan.ID, feature)
		}

	default:
		resp.Allowed = false
		resp.Limit = "0"
		resp.Remaining = "0"
		resp.UpgradeMessage = upgradeMessage(plan.ID, feature)
	}

	return resp, nil
}

func (s *entitlementService) Require(ctx context.Context, db *gorm.DB, businessID string, feature plans.FeatureKey) error {
	check, err := s.Check(ctx, db, businessID, feature)
	if err != nil {
		return err
	}
	if !check.Allowed {
		logger.CtxWarn(ctx, "entitlement denied",
			"business_id", businessID,
			"feature", feature,
			"plan", check.CurrentPlan,
			"used", check.Used,
			"limit", check.Limit,
		)
		return apperrors.EntitlementDenied(map[string]interface{}{
			"feature":         check.Feature,
			"used":            check.Used,
			"limit":           check.Limit,
			"current_plan":    check.CurrentPlan,
			"upgrade_message": check.UpgradeMessage,
		})
	}
	return nil
}

func (s *entitlementService) IncrementUsage(ctx context.Context, db *gorm.DB, businessID string, feature plans.FeatureKey) error {
	if err := s.usageRepo.Increment(db, businessID, string(feature), nil); err != nil {
		return apperrors.InternalError(fmt.Errorf("increment usage for %s/%s: %w", businessID, feature, err))
	}
	return nil
}

func (s *entitlementService) UsageSummary(ctx context.Context, db *gorm.DB, businessID string) (*dto.UsageSummaryResponse, error) {
	plan, err := s.ResolvePlan(ctx, db, businessID)
	if err != nil {
		return nil, err
	}

	counts, err := s.usageRepo.MonthSummary(db, businessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.UsageSummaryResponse{
		Month:    currentMonth(),
		Plan:     string(plan.ID),
		Features: counts,
	}, nil
}

func currentMonth() string {
	return time.Now().UTC().Format("2006-01")
}

func upgradeMessage(current plans.PlanID, feature plans.FeatureKey) string {
	if current == plans.PlanPremium {
		return ""
	}
	return fmt.Sprintf("Upgrade to Premium to unlock more %s.", feature)
}
