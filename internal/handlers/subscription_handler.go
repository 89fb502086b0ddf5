package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/plans"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

type SubscriptionHandler struct {
	*BaseHandler
	catalog             *plans.Catalog
	subscriptionService services.SubscriptionService
	entitlementService  services.EntitlementService
	businessService     services.BusinessService
}

func NewSubscriptionHandler(
	base *BaseHandler,
	catalog *plans.Catalog,
	subscriptionService services.SubscriptionService,
	entitlementService services.EntitlementService,
	businessService services.BusinessService,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		catalog:             catalog,
		subscriptionService: subscriptionService,
		entitlementService:  entitlementService,
		businessService:     businessService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public plan information
	plansGroup := r.Group("/plans")
	{
		plansGroup.GET("", h.GetPlans)
	}

	subscriptions := r.Group("/businesses/:id/subscription")
	subscriptions.Use(middleware.AuthMiddleware())
	{
		subscriptions.GET("", h.GetCurrent)
		subscriptions.POST("", h.Subscribe)
		subscriptions.DELETE("", h.Cancel)
		subscriptions.GET("/usage", h.UsageSummary)
		subscriptions.GET("/usage/:feature", h.CheckUsage)
		subscriptions.GET("/payments", h.PaymentHistory)
	}

	// External payment provider callback. No auth: the signature is the auth.
	r.POST("/payments/callback", h.PaymentCallback)
}

func (h *SubscriptionHandler) GetPlans(c *gin.Context) {
	all := h.catalog.All()

	out := make([]dto.PlanResponse, 0, len(all))
	for _, p := range all {
		limits := make(map[string]string, len(p.Features))
		for key, limit := range p.Features {
			limits[string(key)] = displayString(limit)
		}
		out = append(out, dto.PlanResponse{
			ID:       string(p.ID),
			Name:     p.Name,
			Price:    p.MonthlyPrice,
			Currency: "USD",
			Limits:   limits,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": out,
		"total": len(out),
	})
}

func (h *SubscriptionHandler) GetCurrent(c *gin.Context) {
	_, businessID, ok := h.authorizeBusiness(c)
	if !ok {
		return
	}

	resp, err := h.subscriptionService.GetCurrent(c.Request.Context(), h.GetDB(c), businessID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	_, businessID, ok := h.authorizeBusiness(c)
	if !ok {
		return
	}

	var req dto.SubscribeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.subscriptionService.Subscribe(c.Request.Context(), h.GetDB(c), businessID, req.PlanID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	_, businessID, ok := h.authorizeBusiness(c)
	if !ok {
		return
	}

	if err := h.subscriptionService.Cancel(c.Request.Context(), h.GetDB(c), businessID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subscription cancelled"})
}

func (h *SubscriptionHandler) UsageSummary(c *gin.Context) {
	_, businessID, ok := h.authorizeBusiness(c)
	if !ok {
		return
	}

	resp, err := h.entitlementService.UsageSummary(c.Request.Context(), h.GetDB(c), businessID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) CheckUsage(c *gin.Context) {
	_, businessID, ok := h.authorizeBusiness(c)
	if !ok {
		return
	}

	feature := plans.FeatureKey(c.Param("feature"))
	resp, err := h.entitlementService.Check(c.Request.Context(), h.GetDB(c), businessID, feature)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) PaymentHistory(c *gin.Context) {
	_, businessID, ok := h.authorizeBusiness(c)
	if !ok {
		return
	}

	payments, err := h.subscriptionService.PaymentHistory(c.Request.Context(), h.GetDB(c), businessID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    len(payments),
	})
}

func (h *SubscriptionHandler) PaymentCallback(c *gin.Context) {
	var req dto.PaymentCallbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	if err := h.subscriptionService.ProcessPaymentCallback(c.Request.Context(), h.GetDB(c), req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// The provider expects a plain-text acknowledgement.
	c.String(http.StatusOK, "OK"+req.InvID)
}

// authorizeBusiness resolves the :id path parameter and verifies ownership.
func (h *SubscriptionHandler) authorizeBusiness(c *gin.Context) (userID, businessID string, ok bool) {
	userID, ok = h.GetAndAuthorizeUserID(c)
	if !ok {
		return "", "", false
	}

	businessID = c.Param("id")
	if _, err := h.businessService.RequireOwnership(c.Request.Context(), h.GetDB(c), userID, businessID); err != nil {
		h.HandleServiceError(c, err)
		return "", "", false
	}
	return userID, businessID, true
}

func displayString(l plans.Limit) string {
	switch v := l.Display().(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
