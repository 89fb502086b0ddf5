package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

type BusinessService interface {
	Create(ctx context.Context, db *gorm.DB, ownerID string, req dto.CreateBusinessRequest) (*dto.BusinessResponse, error)
	GetByID(ctx context.Context, db *gorm.DB, id string) (*dto.BusinessResponse, error)
	GetBySlug(ctx context.Context, db *gorm.DB, slug string) (*dto.BusinessResponse, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]dto.BusinessResponse, error)
	Update(ctx context.Context, db *gorm.DB, ownerID, id string, req dto.UpdateBusinessRequest) (*dto.BusinessResponse, error)
	Delete(ctx context.Context, db *gorm.DB, ownerID, id string) error

	// RequireOwnership loads the business and verifies the caller owns it.
	RequireOwnership(ctx context.Context, db *gorm.DB, ownerID, businessID string) (*models.Business, error)
}

type businessService struct {
	businessRepo repositories.BusinessRepository
}

func NewBusinessService(businessRepo repositories.BusinessRepository) BusinessService {
	return &businessService{businessRepo: businessRepo}
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns "Joe's Pizza & Grill" into "joes-pizza-grill".
func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.ReplaceAll(s, "'", "")
	s = slugStripRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func (s *businessService) Create(ctx context.Context, db *gorm.DB, ownerID string, req dto.CreateBusinessRequest) (*dto.BusinessResponse, error) {
	base := slugify(req.Name)
	if base == "" {
		return nil, apperrors.NewBadRequestError("business name yields an empty slug")
	}

	business := &models.Business{
		OwnerID:      ownerID,
		Name:         req.Name,
		BusinessType: req.BusinessType,
		Description:  req.Description,
		Address:      req.Address,
		Phone:        req.Phone,
		Website:      req.Website,
	}

	// Retry with numeric suffixes when the slug is taken.
	for attempt := 0; attempt < 5; attempt++ {
		business.Slug = base
		if attempt > 0 {
			business.Slug = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		err := s.businessRepo.Create(db, business)
		if err == nil {
			logger.CtxInfo(ctx, "business created", "business_id", business.ID, "slug", business.Slug)
			resp := toBusinessResponse(business)
			return &resp, nil
		}
		if !errors.Is(err, repositories.ErrSlugTaken) {
			return nil, apperrors.InternalError(err)
		}
	}
	return nil, apperrors.ErrConflict(repositories.ErrSlugTaken, "business", "could not allocate a unique slug")
}

func (s *businessService) GetByID(ctx context.Context, db *gorm.DB, id string) (*dto.BusinessResponse, error) {
	business, err := s.businessRepo.FindByID(db, id)
	if err != nil {
		return nil, mapBusinessError(err)
	}
	resp := toBusinessResponse(business)
	return &resp, nil
}

func (s *businessService) GetBySlug(ctx context.Context, db *gorm.DB, slug string) (*dto.BusinessResponse, error) {
	business, err := s.businessRepo.FindBySlug(db, slug)
	if err != nil {
		return nil, mapBusinessError(err)
	}
	resp := toBusinessResponse(business)
	return &resp, nil
}

func (s *businessService) ListByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]dto.BusinessResponse, error) {
	businesses, err := s.businessRepo.FindByOwner(db, ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.BusinessResponse, 0, len(businesses))
	for i := range businesses {
		out = append(out, toBusinessResponse(&businesses[i]))
	}
	return out, nil
}

func (s *businessService) Update(ctx context.Context, db *gorm.DB, ownerID, id string, req dto.UpdateBusinessRequest) (*dto.BusinessResponse, error) {
	business, err := s.RequireOwnership(ctx, db, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.BusinessType != nil {
		business.BusinessType = *req.BusinessType
	}
	if req.Description != nil {
		business.Description = *req.Description
	}
	if req.Address != nil {
		business.Address = *req.Address
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Website != nil {
		business.Website = *req.Website
	}

	if err := s.businessRepo.Update(db, business); err != nil {
		return nil, mapBusinessError(err)
	}
	resp := toBusinessResponse(business)
	return &resp, nil
}

func (s *businessService) Delete(ctx context.Context, db *gorm.DB, ownerID, id string) error {
	if _, err := s.RequireOwnership(ctx, db, ownerID, id); err != nil {
		return err
	}
	if err := s.businessRepo.Delete(db, id); err != nil {
		return mapBusinessError(err)
	}
	logger.CtxInfo(ctx, "business deleted", "business_id", id)
	return nil
}

func (s *businessService) RequireOwnership(ctx context.Context, db *gorm.DB, ownerID, businessID string) (*models.Business, error) {
	business, err := s.businessRepo.FindByID(db, businessID)
	if err != nil {
		return nil, mapBusinessError(err)
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}
	return business, nil
}

func mapBusinessError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrBusinessNotFound):
		return apperrors.ErrBusinessNotFound
	case errors.Is(err, repositories.ErrSlugTaken):
		return apperrors.ErrConflict(err, "business", "slug already in use")
	default:
		return apperrors.InternalError(err)
	}
}

func toBusinessResponse(b *models.Business) dto.BusinessResponse {
	return dto.BusinessResponse{
		ID:           b.ID,
		OwnerID:      b.OwnerID,
		Name:         b.Name,
		Slug:         b.Slug,
		BusinessType: b.BusinessType,
		Description:  b.Description,
		Address:      b.Address,
		Phone:        b.Phone,
		Website:      b.Website,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}
