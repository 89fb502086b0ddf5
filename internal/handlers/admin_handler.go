package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/models"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

// AdminHandler exposes platform moderation and maintenance operations.
type AdminHandler struct {
	*BaseHandler
	reviewService       services.ReviewService
	subscriptionService services.SubscriptionService
	analyticsService    services.AnalyticsService
}

func NewAdminHandler(
	base *BaseHandler,
	reviewService services.ReviewService,
	subscriptionService services.SubscriptionService,
	analyticsService services.AnalyticsService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:         base,
		reviewService:       reviewService,
		subscriptionService: subscriptionService,
		analyticsService:    analyticsService,
	}
}

func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.POST("/reviews/:id/moderate", h.ModerateReview)
		admin.GET("/stats", h.PlatformStats)
		admin.POST("/subscriptions/process-expired", h.ProcessExpired)
	}
}

func (h *AdminHandler) ModerateReview(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ModerateReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.reviewService.Moderate(c.Request.Context(), h.GetDB(c), adminID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) PlatformStats(c *gin.Context) {
	resp, err := h.analyticsService.PlatformStats(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AdminHandler) ProcessExpired(c *gin.Context) {
	swept, err := h.subscriptionService.SweepExpired(c.Request.Context(), h.GetDB(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": len(swept)})
}
