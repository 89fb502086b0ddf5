package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/dto"
	"github.com/Prathmesh125/reviewsystem/internal/middleware"
	"github.com/Prathmesh125/reviewsystem/internal/services"
)

type QRCodeHandler struct {
	*BaseHandler
	qrCodeService services.QRCodeService
}

func NewQRCodeHandler(base *BaseHandler, qrCodeService services.QRCodeService) *QRCodeHandler {
	return &QRCodeHandler{
		BaseHandler:   base,
		qrCodeService: qrCodeService,
	}
}

func (h *QRCodeHandler) RegisterRoutes(r *gin.RouterGroup) {
	codes := r.Group("/qr-codes")
	codes.Use(middleware.AuthMiddleware())
	{
		codes.POST("", h.Create)
		codes.GET("/:id", h.Get)
		codes.PUT("/:id", h.Update)
		codes.DELETE("/:id", h.Delete)
		codes.GET("/:id/scans", h.ListScans)
	}

	businesses := r.Group("/businesses")
	businesses.Use(middleware.AuthMiddleware())
	{
		businesses.GET("/:id/qr-codes", h.ListByBusiness)
	}

	// Public: the image is printed and shared, and scans arrive anonymously.
	r.GET("/qr-codes/:id/image", h.Image)
	r.POST("/qr-codes/:id/track-scan", h.TrackScan)
}

func (h *QRCodeHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateQRCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.qrCodeService.Create(c.Request.Context(), h.GetDB(c), userID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *QRCodeHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.qrCodeService.GetByID(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *QRCodeHandler) Image(c *gin.Context) {
	image, err := h.qrCodeService.GetImage(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", image)
}

func (h *QRCodeHandler) ListByBusiness(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	codes, err := h.qrCodeService.ListByBusiness(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr_codes": codes,
		"total":    len(codes),
	})
}

func (h *QRCodeHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateQRCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.qrCodeService.Update(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *QRCodeHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.qrCodeService.Delete(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "QR code deleted"})
}

func (h *QRCodeHandler) TrackScan(c *gin.Context) {
	var req dto.TrackScanRequest
	// The body is optional; a bare POST still counts as a scan.
	_ = c.ShouldBind(&req)

	err := h.qrCodeService.TrackScan(
		c.Request.Context(),
		h.GetDB(c),
		c.Param("id"),
		c.ClientIP(),
		c.Request.UserAgent(),
		req.Location,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Scan recorded"})
}

func (h *QRCodeHandler) ListScans(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	scans, total, err := h.qrCodeService.ListScans(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scans":     scans,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
