package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPaymentNotFound      = errors.New("payment transaction not found")
)

type SubscriptionRepository interface {
	Create(db *gorm.DB, subscription *models.Subscription) error
	FindByBusiness(db *gorm.DB, businessID string) (*models.Subscription, error)
	Update(db *gorm.DB, subscription *models.Subscription) error
	UpdateStatus(db *gorm.DB, subscriptionID string, status models.SubscriptionStatus) error
	Cancel(db *gorm.DB, businessID string) error

	// Replace supersedes the business's subscription in one transaction:
	// the existing row (if any) is marked expired and the new one inserted.
	// Subscriptions are never deleted, only superseded.
	Replace(db *gorm.DB, subscription *models.Subscription) error

	// FindExpiring returns active subscriptions running out within the given
	// window whose owner has not been warned yet.
	FindExpiring(db *gorm.DB, days int) ([]models.Subscription, error)
	MarkExpiryNoticeSent(db *gorm.DB, subscriptionID string) error
	// SweepExpired marks every past-end-date active or cancelled subscription
	// EXPIRED and returns the swept rows with their business preloaded.
	SweepExpired(db *gorm.DB) ([]models.Subscription, error)

	CreatePayment(db *gorm.DB, payment *models.PaymentTransaction) error
	FindPaymentByInvoiceID(db *gorm.DB, invoiceID string) (*models.PaymentTransaction, error)
	FindPaymentsByBusiness(db *gorm.DB, businessID string) ([]models.PaymentTransaction, error)
	UpdatePaymentStatus(db *gorm.DB, invoiceID string, status models.PaymentStatus, paidAt *time.Time) error
}

type subscriptionRepository struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) Create(db *gorm.DB, subscription *models.Subscription) error {
	return db.Create(subscription).Error
}

func (r *subscriptionRepository) FindByBusiness(db *gorm.DB, businessID string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) Update(db *gorm.DB, subscription *models.Subscription) error {
	result := db.Model(subscription).Updates(map[string]interface{}{
		"plan_id":      subscription.PlanID,
		"status":       subscription.Status,
		"start_date":   subscription.StartDate,
		"end_date":     subscription.EndDate,
		"cancelled_at": subscription.CancelledAt,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) UpdateStatus(db *gorm.DB, subscriptionID string, status models.SubscriptionStatus) error {
	result := db.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) Cancel(db *gorm.DB, businessID string) error {
	now := time.Now()
	result := db.Model(&models.Subscription{}).
		Where("business_id = ? AND status IN ?", businessID,
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusPending}).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepository) Replace(db *gorm.DB, subscription *models.Subscription) error {
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Subscription{}).
			Where("business_id = ?", subscription.BusinessID).
			Updates(map[string]interface{}{
				"status":     models.SubscriptionStatusExpired,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return err
		}
		return tx.Create(subscription).Error
	})
}

func (r *subscriptionRepository) FindExpiring(db *gorm.DB, days int) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	cutoff := time.Now().AddDate(0, 0, days)

	err := db.Preload("Business").
		Where("status = ? AND end_date <= ? AND end_date > ? AND expiry_notice_sent_at IS NULL",
			models.SubscriptionStatusActive, cutoff, time.Now()).
		Order("end_date ASC").
		Find(&subscriptions).Error
	return subscriptions, err
}

func (r *subscriptionRepository) MarkExpiryNoticeSent(db *gorm.DB, subscriptionID string) error {
	now := time.Now()
	return db.Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"expiry_notice_sent_at": now,
			"updated_at":            now,
		}).Error
}

func (r *subscriptionRepository) SweepExpired(db *gorm.DB) ([]models.Subscription, error) {
	var swept []models.Subscription

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Business").
			Where("status IN ? AND end_date < ?",
				[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusCancelled},
				time.Now()).
			Find(&swept).Error; err != nil {
			return err
		}
		if len(swept) == 0 {
			return nil
		}

		ids := make([]string, len(swept))
		for i := range swept {
			ids[i] = swept[i].ID
		}

		if err := tx.Model(&models.Subscription{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     models.SubscriptionStatusExpired,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		for i := range swept {
			swept[i].Status = models.SubscriptionStatusExpired
		}
		return nil
	})
	return swept, err
}

// Payment transactions

func (r *subscriptionRepository) CreatePayment(db *gorm.DB, payment *models.PaymentTransaction) error {
	return db.Create(payment).Error
}

func (r *subscriptionRepository) FindPaymentByInvoiceID(db *gorm.DB, invoiceID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := db.Where("invoice_id = ?", invoiceID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *subscriptionRepository) FindPaymentsByBusiness(db *gorm.DB, businessID string) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	err := db.Where("business_id = ?", businessID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *subscriptionRepository) UpdatePaymentStatus(db *gorm.DB, invoiceID string, status models.PaymentStatus, paidAt *time.Time) error {
	result := db.Model(&models.PaymentTransaction{}).
		Where("invoice_id = ?", invoiceID).
		Updates(map[string]interface{}{
			"status":     status,
			"paid_at":    paidAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
