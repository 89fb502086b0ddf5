package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/email"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

const expiringNoticeDays = 3

// SubscriptionWorker sweeps run-out subscriptions and mails expiry notices.
// Usage counters need no reset job: the ledger is keyed by month, so a new
// month simply starts new rows.
type SubscriptionWorker struct {
	db                  *gorm.DB
	subscriptionService services.SubscriptionService
	userRepo            repositories.UserRepository
	mailer              email.Provider
	catalog             *plans.Catalog
	interval            time.Duration
}

func NewSubscriptionWorker(
	db *gorm.DB,
	subscriptionService services.SubscriptionService,
	userRepo repositories.UserRepository,
	mailer email.Provider,
	catalog *plans.Catalog,
	interval time.Duration,
) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:                  db,
		subscriptionService: subscriptionService,
		userRepo:            userRepo,
		mailer:              mailer,
		catalog:             catalog,
		interval:            interval,
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *SubscriptionWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// One pass at startup so a long-stopped instance catches up immediately.
	w.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *SubscriptionWorker) sweep(ctx context.Context) {
	swept, err := w.subscriptionService.SweepExpired(ctx, w.db)
	logger.WorkerLog("subscription", "sweep_expired", err)
	if err == nil {
		w.sendExpiredNotices(swept)
	}

	w.sendExpiryNotices(ctx)
}

// sendExpiredNotices tells each owner their plan just lapsed. The sweep flips
// the status exactly once, so each row produces exactly one mail.
func (w *SubscriptionWorker) sendExpiredNotices(swept []models.Subscription) {
	for _, sub := range swept {
		owner, err := w.userRepo.FindByID(w.db, sub.Business.OwnerID)
		if err != nil {
			continue
		}

		if err := w.mailer.SendSubscriptionExpired(owner.Email, sub.Business.Name); err != nil {
			logger.Error("failed to send expired notice",
				"business_id", sub.BusinessID, "error", err.Error())
		}
	}
}

func (w *SubscriptionWorker) sendExpiryNotices(ctx context.Context) {
	expiring, err := w.subscriptionService.FindExpiring(ctx, w.db, expiringNoticeDays)
	logger.WorkerLog("subscription", "expiry_notices", err)
	if err != nil {
		return
	}

	for _, sub := range expiring {
		owner, err := w.userRepo.FindByID(w.db, sub.Business.OwnerID)
		if err != nil {
			continue
		}

		daysLeft := int(time.Until(sub.EndDate).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}

		plan := w.catalog.Get(sub.PlanID)
		if err := w.mailer.SendSubscriptionExpiring(owner.Email, sub.Business.Name, plan.Name, daysLeft); err != nil {
			logger.Error("failed to send expiry notice",
				"business_id", sub.BusinessID, "error", err.Error())
			continue
		}

		if err := w.subscriptionService.MarkExpiryNoticeSent(ctx, w.db, sub.ID); err != nil {
			logger.Error("failed to mark expiry notice sent",
				"subscription_id", sub.ID, "error", err.Error())
		}
	}
}
