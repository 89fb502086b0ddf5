package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/auth"
	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

type AuthService interface {
	Register(ctx context.Context, db *gorm.DB, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, db *gorm.DB, req dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(ctx context.Context, db *gorm.DB, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(db, req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         models.UserRoleBusiness,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return issueToken(user)
}

func (s *authService) Login(ctx context.Context, db *gorm.DB, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	logger.CtxInfo(ctx, "user logged in", "user_id", user.ID)
	return issueToken(user)
}

func (s *authService) GetProfile(ctx context.Context, db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func issueToken(user *models.User) (*dto.AuthResponse, error) {
	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  toUserResponse(user),
	}, nil
}

func toUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}
