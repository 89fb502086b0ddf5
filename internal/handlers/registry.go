package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	BusinessHandler     *BusinessHandler
	SubscriptionHandler *SubscriptionHandler
	ReviewHandler       *ReviewHandler
	QRCodeHandler       *QRCodeHandler
	AnalyticsHandler    *AnalyticsHandler
	AdminHandler        *AdminHandler
}
