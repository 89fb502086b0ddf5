package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

type AnalyticsHandler struct {
	*BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(base *BaseHandler, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      base,
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	businesses := r.Group("/businesses")
	businesses.Use(middleware.AuthMiddleware())
	{
		businesses.GET("/:id/dashboard", h.Dashboard)
	}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.analyticsService.BusinessDashboard(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
