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
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/payment"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

const subscriptionTermDays = 30

type SubscriptionService interface {
	// Subscribe starts a plan change. Free plans activate immediately; paid
	// plans return a pending subscription plus a checkout URL.
	Subscribe(ctx context.Context, db *gorm.DB, businessID, planID string) (*dto.SubscriptionResponse, error)

	// ProcessPaymentCallback handles the provider's result notification and
	// activates the pending subscription it paid for.
	ProcessPaymentCallback(ctx context.Context, db *gorm.DB, req dto.PaymentCallbackRequest) error

	Cancel(ctx context.Context, db *gorm.DB, businessID string) error
	GetCurrent(ctx context.Context, db *gorm.DB, businessID string) (*dto.SubscriptionResponse, error)
	PaymentHistory(ctx context.Context, db *gorm.DB, businessID string) ([]models.PaymentTransaction, error)

	// SweepExpired marks every run-out subscription expired and returns the
	// swept rows so callers can notify the owners.
	SweepExpired(ctx context.Context, db *gorm.DB) ([]models.Subscription, error)
	FindExpiring(ctx context.Context, db *gorm.DB, days int) ([]models.Subscription, error)
	MarkExpiryNoticeSent(ctx context.Context, db *gorm.DB, subscriptionID string) error
}

type subscriptionService struct {
	catalog          *plans.Catalog
	subscriptionRepo repositories.SubscriptionRepository
	payments         *payment.Client
	currency         string
}

func NewSubscriptionService(
	catalog *plans.Catalog,
	subscriptionRepo repositories.SubscriptionRepository,
	payments *payment.Client,
	currency string,
) SubscriptionService {
	return &subscriptionService{
		catalog:          catalog,
		subscriptionRepo: subscriptionRepo,
		payments:         payments,
		currency:         currency,
	}
}

func (s *subscriptionService) Subscribe(ctx context.Context, db *gorm.DB, businessID, planID string) (*dto.SubscriptionResponse, error) {
	if !s.catalog.Known(planID) {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown plan %q", planID))
	}
	plan := s.catalog.Get(planID)

	now := time.Now()
	sub := &models.Subscription{
		BusinessID: businessID,
		PlanID:     string(plan.ID),
		StartDate:  now,
		EndDate:    now.AddDate(0, 0, subscriptionTermDays),
	}

	if plan.MonthlyPrice == 0 {
		sub.Status = models.SubscriptionStatusActive
		if err := s.subscriptionRepo.Replace(db, sub); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "free subscription activated", "business_id", businessID)
		return toSubscriptionResponse(sub, ""), nil
	}

	sub.Status = models.SubscriptionStatusPending
	if err := s.subscriptionRepo.Replace(db, sub); err != nil {
		return nil, apperrors.InternalError(err)
	}

	invoiceID := fmt.Sprintf("%d", now.UnixNano())
	tx := &models.PaymentTransaction{
		BusinessID:     businessID,
		SubscriptionID: sub.ID,
		PlanID:         string(plan.ID),
		Amount:         plan.MonthlyPrice,
		Currency:       s.currency,
		Status:         models.PaymentStatusPending,
		InvoiceID:      invoiceID,
	}
	if err := s.subscriptionRepo.CreatePayment(db, tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	url := s.payments.PaymentURL(invoiceID, plan.MonthlyPrice, fmt.Sprintf("%s plan, %d days", plan.Name, subscriptionTermDays))

	logger.CtxInfo(ctx, "paid subscription initiated",
		"business_id", businessID, "plan", plan.ID, "invoice_id", invoiceID)
	return toSubscriptionResponse(sub, url), nil
}

func (s *subscriptionService) ProcessPaymentCallback(ctx context.Context, db *gorm.DB, req dto.PaymentCallbackRequest) error {
	if !s.payments.VerifyCallback(req.OutSum, req.InvID, req.SignatureValue) {
		logger.CtxWarn(ctx, "payment callback signature mismatch", "invoice_id", req.InvID)
		return apperrors.ErrPaymentProviderError
	}

	tx, err := s.subscriptionRepo.FindPaymentByInvoiceID(db, req.InvID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if tx.Status == models.PaymentStatusPaid {
		// Providers retry callbacks; a paid invoice is already settled.
		return nil
	}

	amount, err := strconv.ParseFloat(req.OutSum, 64)
	if err != nil || amount != tx.Amount {
		return apperrors.ErrInvalidPaymentAmount
	}

	paidAt := time.Now()
	if err := s.subscriptionRepo.UpdatePaymentStatus(db, req.InvID, models.PaymentStatusPaid, &paidAt); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.subscriptionRepo.UpdateStatus(db, tx.SubscriptionID, models.SubscriptionStatusActive); err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "subscription activated by payment",
		"business_id", tx.BusinessID, "plan", tx.PlanID, "invoice_id", req.InvID)
	return nil
}

func (s *subscriptionService) Cancel(ctx context.Context, db *gorm.DB, businessID string) error {
	if err := s.subscriptionRepo.Cancel(db, businessID); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "subscription cancelled", "business_id", businessID)
	return nil
}

func (s *subscriptionService) GetCurrent(ctx context.Context, db *gorm.DB, businessID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByBusiness(db, businessID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return toSubscriptionResponse(sub, ""), nil
}

func (s *subscriptionService) PaymentHistory(ctx context.Context, db *gorm.DB, businessID string) ([]models.PaymentTransaction, error) {
	payments, err := s.subscriptionRepo.FindPaymentsByBusiness(db, businessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return payments, nil
}

func (s *subscriptionService) SweepExpired(ctx context.Context, db *gorm.DB) ([]models.Subscription, error) {
	swept, err := s.subscriptionRepo.SweepExpired(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(swept) > 0 {
		logger.CtxInfo(ctx, "expired subscriptions swept", "count", len(swept))
	}
	return swept, nil
}

func (s *subscriptionService) FindExpiring(ctx context.Context, db *gorm.DB, days int) ([]models.Subscription, error) {
	subs, err := s.subscriptionRepo.FindExpiring(db, days)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return subs, nil
}

func (s *subscriptionService) MarkExpiryNoticeSent(ctx context.Context, db *gorm.DB, subscriptionID string) error {
	if err := s.subscriptionRepo.MarkExpiryNoticeSent(db, subscriptionID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func toSubscriptionResponse(sub *models.Subscription, paymentURL string) *dto.SubscriptionResponse {
	return &dto.SubscriptionResponse{
		ID:          sub.ID,
		BusinessID:  sub.BusinessID,
		PlanID:      sub.PlanID,
		Status:      string(sub.Status),
		StartDate:   sub.StartDate,
		EndDate:     sub.EndDate,
		CancelledAt: sub.CancelledAt,
		PaymentURL:  paymentURL,
	}
}
