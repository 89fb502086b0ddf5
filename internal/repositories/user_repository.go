package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	Update(db *gorm.DB, user *models.User) error
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}
