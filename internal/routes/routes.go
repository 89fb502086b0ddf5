package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Prathmesh125/reviewsystem/internal/handlers"
)

// RegisterRoutes mounts every HTTP route under /api/v1.
func RegisterRoutes(ginRouter *gin.Engine, appHandlers *handlers.AppHandlers) {
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.BusinessHandler.RegisterRoutes(api)
		appHandlers.SubscriptionHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
		appHandlers.QRCodeHandler.RegisterRoutes(api)
		appHandlers.AnalyticsHandler.RegisterRoutes(api)
		appHandlers.AdminHandler.RegisterRoutes(api)
	}
}
