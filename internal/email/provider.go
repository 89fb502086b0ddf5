package email

// Provider sends transactional notifications. Implementations must be safe
// for concurrent use; the expiry worker and moderation flow share one.
type Provider interface {
	SendSubscriptionExpiring(to, businessName, planName string, daysLeft int) error
	SendSubscriptionExpired(to, businessName string) error
	SendReviewPublished(to, businessName, reviewText string) error
	SendReviewRejected(to, businessName, reason string) error
}

// NoopProvider is used when SMTP is not configured (local development, tests).
type NoopProvider struct{}

func (NoopProvider) SendSubscriptionExpiring(string, string, string, int) error { return nil }
func (NoopProvider) SendSubscriptionExpired(string, string) error               { return nil }
func (NoopProvider) SendReviewPublished(string, string, string) error           { return nil }
func (NoopProvider) SendReviewRejected(string, string, string) error            { return nil }
