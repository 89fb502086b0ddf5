package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Public submission endpoint, reached from the QR review page.
	r.POST("/reviews/public", h.Submit)

	reviews := r.Group("/reviews")
	reviews.Use(middleware.AuthMiddleware())
	{
		reviews.GET("/:id", h.Get)
		reviews.POST("/:id/enhance", h.Enhance)
		reviews.POST("/:id/approve", h.Approve)
		reviews.POST("/:id/reject", h.Reject)
		reviews.POST("/:id/regenerate", h.Regenerate)
		reviews.POST("/:id/publish", h.Publish)
		reviews.GET("/:id/generations", h.ListGenerations)
	}

	businesses := r.Group("/businesses")
	businesses.Use(middleware.AuthMiddleware())
	{
		businesses.GET("/:id/reviews", h.List)
	}
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.reviewService.Submit(c.Request.Context(), h.GetDB(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.GetByID(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var q dto.ListReviewsQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	resp, err := h.reviewService.List(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Enhance(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.Enhance(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ReviewHandler) Approve(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.Approve(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Reject(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RejectReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.reviewService.Reject(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req.RejectionNote)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) Regenerate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.Regenerate(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *ReviewHandler) Publish(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.reviewService.Publish(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ReviewHandler) ListGenerations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	generations, err := h.reviewService.ListGenerations(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generations": generations,
		"total":       len(generations),
	})
}
