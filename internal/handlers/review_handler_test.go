package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/services"
	"github.com/Prathmesh125/reviewsystem/internal/validator"
	"github.com/Prathmesh125/reviewsystem/pkg/apperrors"
	"github.com/Prathmesh125/reviewsystem/pkg/contextkeys"
)

// stubReviewService lets handler tests script the service layer.
type stubReviewService struct {
	generation *dto.GenerationResponse
	review     *dto.ReviewResponse
	err        error
}

func (s *stubReviewService) Submit(ctx context.Context, db *gorm.DB, req dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	return s.review, s.err
}

func (s *stubReviewService) GetByID(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error) {
	return s.review, s.err
}

func (s *stubReviewService) List(ctx context.Context, db *gorm.DB, ownerID, businessID string, q dto.ListReviewsQuery) (*dto.ReviewListResponse, error) {
	return nil, s.err
}

func (s *stubReviewService) ListPublished(ctx context.Context, db *gorm.DB, businessSlug string, page, pageSize int) (*dto.ReviewListResponse, error) {
	return nil, s.err
}

func (s *stubReviewService) Enhance(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.GenerationResponse, error) {
	return s.generation, s.err
}

func (s *stubReviewService) Approve(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error) {
	return s.review, s.err
}

func (s *stubReviewService) Reject(ctx context.Context, db *gorm.DB, ownerID, reviewID, note string) (*dto.ReviewResponse, error) {
	return s.review, s.err
}

func (s *stubReviewService) Regenerate(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.GenerationResponse, error) {
	return s.generation, s.err
}

func (s *stubReviewService) Publish(ctx context.Context, db *gorm.DB, ownerID, reviewID string) (*dto.ReviewResponse, error) {
	return s.review, s.err
}

func (s *stubReviewService) ListGenerations(ctx context.Context, db *gorm.DB, ownerID, reviewID string) ([]dto.GenerationResponse, error) {
	return nil, s.err
}

func (s *stubReviewService) Moderate(ctx context.Context, db *gorm.DB, adminID, reviewID string, req dto.ModerateReviewRequest) (*dto.ReviewResponse, error) {
	return s.review, s.err
}

var _ services.ReviewService = (*stubReviewService)(nil)

// newReviewTestRouter mounts the review routes behind test middleware that
// injects a caller identity and a throwaway DB, standing in for the auth and
// DB middleware of the production chain.
func newReviewTestRouter(t *testing.T, svc services.ReviewService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", "owner-1")
		c.Set(string(contextkeys.DBContextKey), db)
		c.Next()
	})

	h := NewReviewHandler(NewBaseHandler(validator.New()), svc)
	router.POST("/reviews/:id/enhance", h.Enhance)
	router.POST("/reviews/:id/regenerate", h.Regenerate)
	return router
}

func TestEnhanceEndpoint_CreatedOnSuccess(t *testing.T) {
	svc := &stubReviewService{generation: &dto.GenerationResponse{ID: "gen-1", Status: "pending"}}
	router := newReviewTestRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reviews/rev-1/enhance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "gen-1")
}

func TestRegenerateEndpoint_CreatedOnSuccess(t *testing.T) {
	svc := &stubReviewService{generation: &dto.GenerationResponse{ID: "gen-2", Status: "pending"}}
	router := newReviewTestRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reviews/rev-1/regenerate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnhanceEndpoint_AlreadyEnhanced(t *testing.T) {
	svc := &stubReviewService{err: apperrors.ErrReviewAlreadyEnhanced}
	router := newReviewTestRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reviews/rev-1/enhance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnhanceEndpoint_EntitlementDenied(t *testing.T) {
	svc := &stubReviewService{err: apperrors.EntitlementDenied(map[string]interface{}{
		"feature": "ai_enhancements",
		"used":    5,
		"limit":   "5",
	})}
	router := newReviewTestRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reviews/rev-1/enhance", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "used")
}
