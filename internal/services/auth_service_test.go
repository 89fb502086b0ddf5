package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prathmesh125/reviewsystem/internal/auth"
	"github.com/Prathmesh125/reviewsystem/internal/config"
	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

func newAuthService(t *testing.T) AuthService {
	t.Helper()

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 1
	config.AppConfig = cfg

	return NewAuthService(repositories.NewUserRepository())
}

func TestRegister_IssuesTokenForNewUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t)

	resp, err := svc.Register(context.Background(), db, dto.RegisterRequest{
		Email:    "new@example.com",
		Password: "long-enough-password",
		Name:     "New User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, string(models.UserRoleBusiness), resp.User.Role)

	claims, err := auth.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t)
	createTestUser(t, db, "taken@example.com")

	_, err := svc.Register(context.Background(), db, dto.RegisterRequest{
		Email:    "taken@example.com",
		Password: "long-enough-password",
		Name:     "Impostor",
	})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), db, dto.RegisterRequest{
		Email:    "login@example.com",
		Password: "long-enough-password",
		Name:     "Login User",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), db, dto.LoginRequest{
		Email:    "login@example.com",
		Password: "long-enough-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(context.Background(), db, dto.LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), db, dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_SuspendedUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t)

	user := createTestUser(t, db, "suspended@example.com")
	require.NoError(t, db.Model(user).Update("status", models.UserStatusSuspended).Error)

	_, err := svc.Login(context.Background(), db, dto.LoginRequest{
		Email:    "suspended@example.com",
		Password: "irrelevant",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserSuspended)
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(t)
	user := createTestUser(t, db, "profile@example.com")

	resp, err := svc.GetProfile(context.Background(), db, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, resp.Email)

	_, err = svc.GetProfile(context.Background(), db, "44444444-4444-4444-4444-444444444444")
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)
}
