package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/repositories"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
)

type reviewTestEnv struct {
	db       *gorm.DB
	svc      ReviewService
	enhancer *stubEnhancer
	mailer   *recordingMailer
	owner    *models.User
	business *models.Business
}

func newReviewTestEnv(t *testing.T) *reviewTestEnv {
	t.Helper()

	db := newTestDB(t)
	enhancer := &stubEnhancer{}
	mailer := &recordingMailer{}
	svc := NewReviewService(
		repositories.NewReviewRepository(),
		repositories.NewBusinessRepository(),
		repositories.NewUserRepository(),
		newTestEntitlements(),
		enhancer,
		mailer,
	)

	owner := createTestUser(t, db, "owner@example.com")
	business := createTestBusiness(t, db, owner.ID, "test-business")
	return &reviewTestEnv{db: db, svc: svc, enhancer: enhancer, mailer: mailer, owner: owner, business: business}
}

func (e *reviewTestEnv) submit(t *testing.T) *dto.ReviewResponse {
	t.Helper()

	resp, err := e.svc.Submit(context.Background(), e.db, dto.SubmitReviewRequest{
		BusinessID:   e.business.ID,
		CustomerName: "Alice",
		Rating:       5,
		FeedbackText: "great coffee and friendly staff, will come again",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitReview_CreatesPendingAndRecordsUsage(t *testing.T) {
	env := newReviewTestEnv(t)

	resp := env.submit(t)
	assert.Equal(t, string(models.ReviewStatusPending), resp.Status)
	assert.Equal(t, "Alice", resp.CustomerName)

	count, err := repositories.NewUsageRepository().CurrentCount(env.db, env.business.ID, string(plans.FeatureReviews))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitReview_RejectsNoiseContent(t *testing.T) {
	env := newReviewTestEnv(t)

	_, err := env.svc.Submit(context.Background(), env.db, dto.SubmitReviewRequest{
		BusinessID:   env.business.ID,
		Rating:       5,
		FeedbackText: "xkcd qwrtp zzzzzzzzzzzz",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestSubmitReview_UnknownBusiness(t *testing.T) {
	env := newReviewTestEnv(t)

	_, err := env.svc.Submit(context.Background(), env.db, dto.SubmitReviewRequest{
		BusinessID:   "11111111-1111-1111-1111-111111111111",
		Rating:       4,
		FeedbackText: "great coffee and friendly staff, will come again",
	})
	assert.ErrorIs(t, err, apperrors.ErrBusinessNotFound)
}

func TestSubmitReview_CustomerFromAnotherBusiness(t *testing.T) {
	env := newReviewTestEnv(t)

	other := createTestBusiness(t, env.db, env.owner.ID, "other-business")
	stranger := &models.Customer{BusinessID: other.ID, Name: "Bob"}
	require.NoError(t, env.db.Create(stranger).Error)

	_, err := env.svc.Submit(context.Background(), env.db, dto.SubmitReviewRequest{
		BusinessID:   env.business.ID,
		CustomerID:   stranger.ID,
		Rating:       3,
		FeedbackText: "great coffee and friendly staff, will come again",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestSubmitReview_FreePlanCap(t *testing.T) {
	env := newReviewTestEnv(t)

	// Free plan takes 50 reviews a month; fill the ledger up front.
	usageRepo := repositories.NewUsageRepository()
	for i := 0; i < 50; i++ {
		require.NoError(t, usageRepo.Increment(env.db, env.business.ID, string(plans.FeatureReviews), nil))
	}

	_, err := env.svc.Submit(context.Background(), env.db, dto.SubmitReviewRequest{
		BusinessID:   env.business.ID,
		Rating:       5,
		FeedbackText: "great coffee and friendly staff, will come again",
	})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeEntitlementDenied, appErr.Code)
}

func TestEnhanceReview_Flow(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	gen, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.enhancer.calls)
	assert.Equal(t, string(models.GenerationStatusPending), gen.Status)
	assert.NotEmpty(t, gen.EnhancedText)

	updated, err := env.svc.GetByID(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusAIGenerated), updated.Status)
	require.NotNil(t, updated.GeneratedReview)
	assert.Equal(t, gen.EnhancedText, *updated.GeneratedReview)

	count, err := repositories.NewUsageRepository().CurrentCount(env.db, env.business.ID, string(plans.FeatureAIEnhancements))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnhanceReview_AlreadyEnhanced(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)

	_, err = env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	assert.ErrorIs(t, err, apperrors.ErrReviewAlreadyEnhanced)
}

func TestEnhanceReview_NoOrphanedGenerationOnUpdateFailure(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	// Fail the review row update after the generation insert. The insert
	// must roll back with it.
	err := env.db.Callback().Update().Before("gorm:update").Register("fail_review_update", func(tx *gorm.DB) {
		if tx.Statement.Table == "reviews" {
			tx.AddError(errors.New("simulated update failure"))
		}
	})
	require.NoError(t, err)
	defer env.db.Callback().Update().Remove("fail_review_update")

	_, err = env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.Error(t, err)

	var generations int64
	require.NoError(t, env.db.Model(&models.AIGeneration{}).Count(&generations).Error)
	assert.Equal(t, int64(0), generations)

	current, err := env.svc.GetByID(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusPending), current.Status)
	assert.Nil(t, current.GeneratedReview)

	count, err := repositories.NewUsageRepository().CurrentCount(env.db, env.business.ID, string(plans.FeatureAIEnhancements))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestEnhanceReview_QuotaExhausted(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	// Free plan allows 5 enhancements a month; burn them all up front.
	usageRepo := repositories.NewUsageRepository()
	for i := 0; i < 5; i++ {
		require.NoError(t, usageRepo.Increment(env.db, env.business.ID, string(plans.FeatureAIEnhancements), nil))
	}

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeEntitlementDenied, appErr.Code)
	assert.Equal(t, 0, env.enhancer.calls)
}

func TestEnhanceReview_NotOwner(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	intruder := createTestUser(t, env.db, "intruder@example.com")
	_, err := env.svc.Enhance(context.Background(), env.db, intruder.ID, review.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotBusinessOwner)
}

func TestRejectGeneration_ReturnsToPending(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)

	rejected, err := env.svc.Reject(context.Background(), env.db, env.owner.ID, review.ID, "too flowery")
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusPending), rejected.Status)
	assert.Nil(t, rejected.GeneratedReview)
	assert.Equal(t, "too flowery", rejected.RejectionNote)

	// Original feedback survives the rejection.
	assert.Equal(t, "great coffee and friendly staff, will come again", rejected.FeedbackText)

	gens, err := env.svc.ListGenerations(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, string(models.GenerationStatusRejected), gens[0].Status)

	// A rejected review can be enhanced again.
	_, err = env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
}

func TestRegenerate_SupersedesAndConsumesQuota(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)

	second, err := env.svc.Regenerate(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.GenerationStatusPending), second.Status)

	gens, err := env.svc.ListGenerations(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	require.Len(t, gens, 2)

	statuses := map[string]int{}
	for _, g := range gens {
		statuses[g.Status]++
	}
	assert.Equal(t, 1, statuses[string(models.GenerationStatusRegenerated)])
	assert.Equal(t, 1, statuses[string(models.GenerationStatusPending)])

	count, err := repositories.NewUsageRepository().CurrentCount(env.db, env.business.ID, string(plans.FeatureAIEnhancements))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestApproveAndPublish(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)

	approved, err := env.svc.Approve(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusApproved), approved.Status)

	published, err := env.svc.Publish(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusPublished), published.Status)
	require.NotNil(t, published.PublishedAt)

	require.Len(t, env.mailer.published, 1)

	// Published reviews show up on the public listing.
	list, err := env.svc.ListPublished(context.Background(), env.db, env.business.Slug, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestPublish_RequiresApproval(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)

	_, err := env.svc.Publish(context.Background(), env.db, env.owner.ID, review.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidStatus, appErr.Code)
}

func TestModerate_RejectNotifiesOwner(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)
	admin := createTestUser(t, env.db, "admin@example.com")

	resp, err := env.svc.Moderate(context.Background(), env.db, admin.ID, review.ID, dto.ModerateReviewRequest{
		Action: string(models.ModerationActionReject),
		Note:   "violates guidelines",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusRejected), resp.Status)
	require.Len(t, env.mailer.rejected, 1)
	assert.Equal(t, "violates guidelines", env.mailer.rejected[0])
}

func TestModerate_FlagUnpublishes(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)
	admin := createTestUser(t, env.db, "admin@example.com")

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	_, err = env.svc.Approve(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)
	_, err = env.svc.Publish(context.Background(), env.db, env.owner.ID, review.ID)
	require.NoError(t, err)

	resp, err := env.svc.Moderate(context.Background(), env.db, admin.ID, review.ID, dto.ModerateReviewRequest{
		Action: string(models.ModerationActionFlag),
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.ReviewStatusPending), resp.Status)
	assert.Nil(t, resp.PublishedAt)
}

func TestModerate_DeleteLeavesTombstone(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)
	admin := createTestUser(t, env.db, "admin@example.com")

	_, err := env.svc.Moderate(context.Background(), env.db, admin.ID, review.ID, dto.ModerateReviewRequest{
		Action: string(models.ModerationActionDelete),
		Note:   "spam",
	})
	require.NoError(t, err)

	repo := repositories.NewReviewRepository()
	_, err = repo.FindByID(env.db, review.ID)
	assert.ErrorIs(t, err, repositories.ErrReviewNotFound)

	deleted, err := repo.FindByIDIncludingDeleted(env.db, review.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.ModeratedBy)
	assert.Equal(t, admin.ID, *deleted.ModeratedBy)
	assert.Equal(t, "spam", deleted.ModerationNote)
}

func TestEnhance_FailingProviderSurfacesError(t *testing.T) {
	env := newReviewTestEnv(t)
	review := env.submit(t)
	env.enhancer.err = errors.New("provider down")

	_, err := env.svc.Enhance(context.Background(), env.db, env.owner.ID, review.ID)
	require.Error(t, err)

	// Failed enhancement must not consume quota.
	count, cerr := repositories.NewUsageRepository().CurrentCount(env.db, env.business.ID, string(plans.FeatureAIEnhancements))
	require.NoError(t, cerr)
	assert.Equal(t, 0, count)
}
