package services

import (
	"github.com/Prathmesh125/reviewsystem/internal/email"
)

// ServiceContainer holds every service the handlers depend on.
type ServiceContainer struct {
	AuthService         AuthService
	BusinessService     BusinessService
	EntitlementService  EntitlementService
	SubscriptionService SubscriptionService
	ReviewService       ReviewService
	QRCodeService       QRCodeService
	AnalyticsService    AnalyticsService
	EmailProvider       email.Provider
}
