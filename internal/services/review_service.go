package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/ai"
	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/email"
	"github.com/Prathmesh125/reviewsystem/internal/logger"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

type ReviewService interface {
	// Submit accepts a public, unauthenticated review reached via QR scan.
	Submit(ctx context.Context, db *gorm.DB, req dto.SubmitReviewRequest) (*dto.ReviewResponse, error)

	GetByID(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error)
	List(ctx context.Context, db *gorm.DB, ownerID, businessID string, q dto.ListReviewsQuery) (*dto.ReviewListResponse, error)
	ListPublished(ctx context.Context, db *gorm.DB, businessSlug string, page, pageSize int) (*dto.ReviewListResponse, error)

	// Enhance runs AI enhancement on a pending review. Quota is consumed only
	// after a successful generation.
	Enhance(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.GenerationResponse, error)
	Approve(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error)
	Reject(ctx context.Context, db *gorm.DB, ownerID, reviewID, note string) (*dto.ReviewResponse, error)
	Regenerate(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.GenerationResponse, error)
	Publish(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error)
	ListGenerations(ctx context.Context, db *gorm.DB, ownerID, reviewID string) ([]dto.GenerationResponse, error)

	// Moderate applies an admin moderation action. Delete is a soft delete:
	// the row survives as a tombstone with the moderator stamp.
	Moderate(ctx context.Context, db *gorm.DB, adminID, reviewID string, req dto.ModerateReviewRequest) (*dto.ReviewResponse, error)
}

type reviewService struct {
	reviewRepo   repositories.ReviewRepository
	businessRepo repositories.BusinessRepository
	userRepo     repositories.UserRepository
	entitlements EntitlementService
	enhancer     ai.Enhancer
	mailer       email.Provider
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	businessRepo repositories.BusinessRepository,
	userRepo repositories.UserRepository,
	entitlements EntitlementService,
	enhancer ai.Enhancer,
	mailer email.Provider,
) ReviewService {
	return &reviewService{
		reviewRepo:   reviewRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
		entitlements: entitlements,
		enhancer:     enhancer,
		mailer:       mailer,
	}
}

func (s *reviewService) Submit(ctx context.Context, db *gorm.DB, req dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	business, err := s.businessRepo.FindByID(db, req.BusinessID)
	if err != nil {
		if errors.Is(err, repositories.ErrBusinessNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if err := s.entitlements.Require(ctx, db, business.ID, plans.FeatureReviews); err != nil {
		return nil, err
	}

	if err := ai.ValidateContent(req.FeedbackText); err != nil {
		return nil, apperrors.NewBadRequestError("feedback text is too short or not meaningful")
	}

	customer, err := s.resolveCustomer(db, business.ID, req)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		BusinessID: business.ID,
		CustomerID: customer.ID,
		Rating:     req.Rating,
		Feedback:   req.FeedbackText,
		Status:     models.ReviewStatusPending,
	}
	if err := s.reviewRepo.Create(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.entitlements.IncrementUsage(ctx, db, business.ID, plans.FeatureReviews); err != nil {
		logger.CtxWithError(ctx, "failed to record review usage", err, "business_id", business.ID)
	}

	logger.CtxInfo(ctx, "review submitted",
		"review_id", review.ID, "business_id", business.ID, "rating", review.Rating)
	review.Customer = *customer
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) resolveCustomer(db *gorm.DB, businessID string, req dto.SubmitReviewRequest) (*models.Customer, error) {
	if req.CustomerID != "" {
		customer, err := s.businessRepo.FindCustomerByID(db, req.CustomerID)
		if err != nil {
			return nil, apperrors.NewBadRequestError("unknown customer")
		}
		if customer.BusinessID != businessID {
			return nil, apperrors.NewBadRequestError("customer does not belong to this business")
		}
		return customer, nil
	}

	customer, err := s.businessRepo.FindOrCreateCustomer(db, &models.Customer{
		BusinessID: businessID,
		Name:       req.CustomerName,
		Email:      req.CustomerEmail,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return customer, nil
}

func (s *reviewService) GetByID(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error) {
	review, err := s.loadOwnedReview(db, ownerID, reviewID)
	if err != nil {
		return nil, err
	}
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) List(ctx context.Context, db *gorm.DB, ownerID, businessID string, q dto.ListReviewsQuery) (*dto.ReviewListResponse, error) {
	business, err := s.businessRepo.FindByID(db, businessID)
	if err != nil {
		if errors.Is(err, repositories.ErrBusinessNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}

	page, pageSize := normalizePage(q.Page, q.PageSize)
	filters := repositories.ReviewFilters{
		Status:    models.ReviewStatus(q.Status),
		MinRating: q.MinRating,
	}

	reviews, total, err := s.reviewRepo.FindByBusiness(db, businessID, filters, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toReviewListResponse(reviews, total, page, pageSize), nil
}

func (s *reviewService) ListPublished(ctx context.Context, db *gorm.DB, businessSlug string, page, pageSize int) (*dto.ReviewListResponse, error) {
	business, err := s.businessRepo.FindBySlug(db, businessSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrBusinessNotFound) {
			return nil, apperrors.ErrBusinessNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	page, pageSize = normalizePage(page, pageSize)
	filters := repositories.ReviewFilters{Status: models.ReviewStatusPublished}
	reviews, total, err := s.reviewRepo.FindByBusiness(db, business.ID, filters, page, pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toReviewListResponse(reviews, total, page, pageSize), nil
}

func (s *reviewService) Enhance(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.GenerationResponse, error) {
	review, err := s.loadOwnedReview(db, ownerID, reviewID)
	if err != nil {
		return nil, err
	}

	switch review.Status {
	case models.ReviewStatusPending:
	case models.ReviewStatusAIGenerated, models.ReviewStatusApproved, models.ReviewStatusPublished:
		return nil, apperrors.ErrReviewAlreadyEnhanced
	default:
		return nil, apperrors.ErrInvalidStatus("review", "only pending reviews can be enhanced")
	}

	return s.runEnhancement(ctx, db, review)
}

func (s *reviewService) Regenerate(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.GenerationResponse, error) {
	review, err := s.loadOwnedReview(db, ownerID, reviewID)
	if err != nil {
		return nil, err
	}

	if review.Status != models.ReviewStatusAIGenerated {
		return nil, apperrors.ErrInvalidStatus("review", "only an enhanced, unapproved review can be regenerated")
	}

	current, err := s.reviewRepo.FindCurrentGeneration(db, reviewID)
	if err != nil && !errors.Is(err, repositories.ErrGenerationNotFound) {
		return nil, apperrors.InternalError(err)
	}
	if current != nil {
		if err := s.reviewRepo.UpdateGenerationStatus(db, current.ID, models.GenerationStatusRegenerated); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	// Regeneration consumes quota like a fresh enhancement.
	return s.runEnhancement(ctx, db, review)
}

// runEnhancement performs the entitlement check, the AI call, and the
// bookkeeping shared by Enhance and Regenerate. Usage is incremented only
// after the generation row is committed.
func (s *reviewService) runEnhancement(ctx context.Context, db *gorm.DB, review *models.Review) (*dto.GenerationResponse, error) {
	if err := s.entitlements.Require(ctx, db, review.BusinessID, plans.FeatureAIEnhancements); err != nil {
		return nil, err
	}

	business, err := s.businessRepo.FindByID(db, review.BusinessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result, err := s.enhancer.Enhance(ctx, ai.Request{
		Text:         review.Feedback,
		Rating:       review.Rating,
		BusinessName: business.Name,
		BusinessType: business.BusinessType,
	})
	if err != nil {
		if errors.Is(err, ai.ErrInvalidContent) {
			return nil, apperrors.NewBadRequestError("feedback text is too short or not meaningful")
		}
		return nil, apperrors.InternalError(err)
	}

	keywords, err := json.Marshal(result.Keywords)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	generation := &models.AIGeneration{
		ReviewID:     review.ID,
		OriginalText: review.Feedback,
		EnhancedText: result.EnhancedText,
		Confidence:   result.Confidence,
		Sentiment:    result.Sentiment,
		Keywords:     datatypes.JSON(keywords),
		Status:       models.GenerationStatusPending,
		Provider:     result.Provider,
	}
	// Generation row and review status move together or not at all.
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.reviewRepo.CreateGeneration(tx, generation); err != nil {
			return err
		}
		review.GeneratedReview = &result.EnhancedText
		review.Status = models.ReviewStatusAIGenerated
		review.RejectionNote = ""
		return s.reviewRepo.Update(tx, review)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.entitlements.IncrementUsage(ctx, db, review.BusinessID, plans.FeatureAIEnhancements); err != nil {
		logger.CtxWithError(ctx, "failed to record enhancement usage", err, "business_id", review.BusinessID)
	}

	logger.CtxInfo(ctx, "review enhanced",
		"review_id", review.ID, "provider", result.Provider, "confidence", result.Confidence)
	return toGenerationResponse(generation), nil
}

func (s *reviewService) Approve(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error) {
	review, err := s.loadOwnedReview(db, ownerID, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != models.ReviewStatusAIGenerated {
		return nil, apperrors.ErrInvalidStatus("review", "only an enhanced review can be approved")
	}

	if current, err := s.reviewRepo.FindCurrentGeneration(db, reviewID); err == nil {
		if err := s.reviewRepo.UpdateGenerationStatus(db, current.ID, models.GenerationStatusApproved); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	review.Status = models.ReviewStatusApproved
	if err := s.reviewRepo.Update(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "review approved", "review_id", reviewID)
	resp := toReviewResponse(review)
	return &resp, nil
}

// Reject returns an enhanced review to the pending state. The original
// feedback is untouched; only the generated text is discarded.
func (s *reviewService) Reject(ctx context.Context, db *gorm.DB, ownerID, reviewID, note string) (*dto.ReviewResponse, error) {
	review, err := s.loadOwnedReview(db, ownerID, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != models.ReviewStatusAIGenerated {
		return nil, apperrors.ErrInvalidStatus("review", "only an enhanced review can be rejected")
	}

	if current, err := s.reviewRepo.FindCurrentGeneration(db, reviewID); err == nil {
		if err := s.reviewRepo.UpdateGenerationStatus(db, current.ID, models.GenerationStatusRejected); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	review.Status = models.ReviewStatusPending
	review.GeneratedReview = nil
	review.RejectionNote = note
	if err := s.reviewRepo.Update(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "generation rejected", "review_id", reviewID)
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) Publish(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error) {
	review, err := s.loadOwnedReview(db, ownerID, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != models.ReviewStatusApproved {
		return nil, apperrors.ErrInvalidStatus("review", "only an approved review can be published")
	}

	now := time.Now()
	review.Status = models.ReviewStatusPublished
	review.PublishedAt = &now
	if err := s.reviewRepo.Update(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyPublished(ctx, db, review)

	logger.CtxInfo(ctx, "review published", "review_id", reviewID)
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) notifyPublished(ctx context.Context, db *gorm.DB, review *models.Review) {
	business, err := s.businessRepo.FindByID(db, review.BusinessID)
	if err != nil {
		return
	}
	owner, err := s.userRepo.FindByID(db, business.OwnerID)
	if err != nil {
		return
	}

	text := review.Feedback
	if review.GeneratedReview != nil {
		text = *review.GeneratedReview
	}
	if err := s.mailer.SendReviewPublished(owner.Email, business.Name, text); err != nil {
		logger.CtxWithError(ctx, "failed to send publish notification", err, "review_id", review.ID)
	}
}

func (s *reviewService) ListGenerations(ctx context.Context, db *gorm.DB, ownerID, reviewID string) ([]dto.GenerationResponse, error) {
	if _, err := s.loadOwnedReview(db, ownerID, reviewID); err != nil {
		return nil, err
	}

	generations, err := s.reviewRepo.FindGenerationsByReview(db, reviewID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]dto.GenerationResponse, 0, len(generations))
	for i := range generations {
		out = append(out, *toGenerationResponse(&generations[i]))
	}
	return out, nil
}

func (s *reviewService) Moderate(ctx context.Context, db *gorm.DB, adminID, reviewID string, req dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	review.ModeratedBy = &adminID
	review.ModeratedAt = &now
	review.ModerationNote = req.Note

	switch models.ModerationAction(req.Action) {
	case models.ModerationActionApprove:
		review.Status = models.ReviewStatusPublished
		if review.PublishedAt == nil {
			review.PublishedAt = &now
		}

	case models.ModerationActionReject:
		review.Status = models.ReviewStatusRejected
		s.notifyRejected(ctx, db, review, req.Note)

	case models.ModerationActionFlag:
		// Flagging pulls a published review back for owner attention without
		// destroying anything.
		review.Status = models.ReviewStatusPending
		review.PublishedAt = nil

	case models.ModerationActionDelete:
		if err := s.reviewRepo.Update(db, review); err != nil {
			return nil, apperrors.InternalError(err)
		}
		if err := s.reviewRepo.SoftDelete(db, reviewID); err != nil {
			return nil, apperrors.InternalError(err)
		}
		logger.CtxInfo(ctx, "review deleted by moderator", "review_id", reviewID, "moderator", adminID)
		resp := toReviewResponse(review)
		return &resp, nil

	default:
		return nil, apperrors.NewBadRequestError("unknown moderation action")
	}

	if err := s.reviewRepo.Update(db, review); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "review moderated",
		"review_id", reviewID, "action", req.Action, "moderator", adminID)
	resp := toReviewResponse(review)
	return &resp, nil
}

func (s *reviewService) notifyRejected(ctx context.Context, db *gorm.DB, review *models.Review, reason string) {
	business, err := s.businessRepo.FindByID(db, review.BusinessID)
	if err != nil {
		return
	}
	owner, err := s.userRepo.FindByID(db, business.OwnerID)
	if err != nil {
		return
	}
	if err := s.mailer.SendReviewRejected(owner.Email, business.Name, reason); err != nil {
		logger.CtxWithError(ctx, "failed to send rejection notification", err, "review_id", review.ID)
	}
}

func (s *reviewService) loadOwnedReview(db *gorm.DB, ownerID, reviewID string) (*models.Review, error) {
	review, err := s.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	business, err := s.businessRepo.FindByID(db, review.BusinessID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if business.OwnerID != ownerID {
		return nil, apperrors.ErrNotBusinessOwner
	}
	return review, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func toReviewResponse(r *models.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:              r.ID,
		BusinessID:      r.BusinessID,
		CustomerID:      r.CustomerID,
		CustomerName:    r.Customer.Name,
		Rating:          r.Rating,
		FeedbackText:    r.Feedback,
		GeneratedReview: r.GeneratedReview,
		Status:          string(r.Status),
		RejectionNote:   r.RejectionNote,
		PublishedAt:     r.PublishedAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toReviewListResponse(reviews []models.Review, total int64, page, pageSize int) *dto.ReviewListResponse {
	out := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}
	return &dto.ReviewListResponse{
		Reviews:  out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

func toGenerationResponse(g *models.AIGeneration) *dto.GenerationResponse {
	var keywords []string
	if len(g.Keywords) > 0 {
		_ = json.Unmarshal(g.Keywords, &keywords)
	}
	return &dto.GenerationResponse{
		ID:           g.ID,
		ReviewID:     g.ReviewID,
		OriginalText: g.OriginalText,
		EnhancedText: g.EnhancedText,
		Confidence:   g.Confidence,
		Sentiment:    g.Sentiment,
		Keywords:     keywords,
		Status:       string(g.Status),
		Provider:     g.Provider,
		CreatedAt:    g.CreatedAt,
	}
}
