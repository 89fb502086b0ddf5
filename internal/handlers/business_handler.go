package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

type BusinessHandler struct {
	*BaseHandler
	businessService services.BusinessService
	reviewService   services.ReviewService
}

func NewBusinessHandler(base *BaseHandler, businessService services.BusinessService, reviewService services.ReviewService) *BusinessHandler {
	return &BusinessHandler{
		BaseHandler:     base,
		businessService: businessService,
		reviewService:   reviewService,
	}
}

func (h *BusinessHandler) RegisterRoutes(r *gin.RouterGroup) {
	businesses := r.Group("/businesses")
	businesses.Use(middleware.AuthMiddleware())
	{
		businesses.POST("", h.Create)
		businesses.GET("", h.ListMine)
		businesses.GET("/:id", h.Get)
		businesses.PUT("/:id", h.Update)
		businesses.DELETE("/:id", h.Delete)
	}

	// Public review page data, reached from a QR scan.
	public := r.Group("/public/businesses")
	{
		public.GET("/:slug", h.GetPublic)
		public.GET("/:slug/reviews", h.ListPublishedReviews)
	}
}

func (h *BusinessHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateBusinessRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.businessService.Create(c.Request.Context(), h.GetDB(c), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *BusinessHandler) ListMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	businesses, err := h.businessService.ListByOwner(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"businesses": businesses,
		"total":      len(businesses),
	})
}

func (h *BusinessHandler) Get(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	resp, err := h.businessService.GetByID(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BusinessHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateBusinessRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.businessService.Update(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BusinessHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.businessService.Delete(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Business deleted"})
}

func (h *BusinessHandler) GetPublic(c *gin.Context) {
	resp, err := h.businessService.GetBySlug(c.Request.Context(), h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BusinessHandler) ListPublishedReviews(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.reviewService.ListPublished(c.Request.Context(), h.GetDB(c), c.Param("slug"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
