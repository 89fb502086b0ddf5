package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

const minPasswordLength = 8

// HashPassword validates and hashes a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperrors.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
