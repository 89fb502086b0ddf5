package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrSlugTaken        = errors.New("business slug already in use")
)

type BusinessRepository interface {
	Create(db *gorm.DB, business *models.Business) error
	FindByID(db *gorm.DB, id string) (*models.Business, error)
	FindBySlug(db *gorm.DB, slug string) (*models.Business, error)
	FindByOwner(db *gorm.DB, ownerID string) ([]models.Business, error)
	Update(db *gorm.DB, business *models.Business) error
	Delete(db *gorm.DB, id string) error

	FindOrCreateCustomer(db *gorm.DB, customer *models.Customer) (*models.Customer, error)
	FindCustomerByID(db *gorm.DB, id string) (*models.Customer, error)
}

type businessRepository struct{}

func NewBusinessRepository() BusinessRepository {
	return &businessRepository{}
}

func (r *businessRepository) Create(db *gorm.DB, business *models.Business) error {
	var count int64
	if err := db.Model(&models.Business{}).Where("slug = ?", business.Slug).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return db.Create(business).Error
}

func (r *businessRepository) FindByID(db *gorm.DB, id string) (*models.Business, error) {
	var business models.Business
	err := db.First(&business, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindBySlug(db *gorm.DB, slug string) (*models.Business, error) {
	var business models.Business
	err := db.Where("slug = ?", slug).First(&business).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (r *businessRepository) FindByOwner(db *gorm.DB, ownerID string) ([]models.Business, error) {
	var businesses []models.Business
	err := db.Where("owner_id = ?", ownerID).Order("created_at ASC").Find(&businesses).Error
	return businesses, err
}

func (r *businessRepository) Update(db *gorm.DB, business *models.Business) error {
	result := db.Model(business).Updates(map[string]interface{}{
		"name":          business.Name,
		"business_type": business.BusinessType,
		"description":   business.Description,
		"address":       business.Address,
		"phone":         business.Phone,
		"website":       business.Website,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

func (r *businessRepository) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Business{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// FindOrCreateCustomer reuses a customer row when the same email already
// submitted a review for the business; anonymous submissions always create a
// fresh row.
func (r *businessRepository) FindOrCreateCustomer(db *gorm.DB, customer *models.Customer) (*models.Customer, error) {
	if customer.Email != "" {
		var existing models.Customer
		err := db.Where("business_id = ? AND email = ?", customer.BusinessID, customer.Email).
			First(&existing).Error
		if err == nil {
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := db.Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *businessRepository) FindCustomerByID(db *gorm.DB, id string) (*models.Customer, error) {
	var customer models.Customer
	err := db.First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return &customer, nil
}
