package dto

type BusinessDashboardResponse struct {
	BusinessID       string           `json:"business_id"`
	TotalReviews     int64            `json:"total_reviews"`
	PublishedReviews int64            `json:"published_reviews"`
	AverageRating    float64          `json:"average_rating"`
	ReviewsByStatus  map[string]int64 `json:"reviews_by_status"`
	ScansLast30Days  int64            `json:"scans_last_30_days"`
	CurrentPlan      string           `json:"current_plan"`
}

type PlatformStatsResponse struct {
	TotalBusinesses     int64 `json:"total_businesses"`
	TotalReviews        int64 `json:"total_reviews"`
	PublishedReviews    int64 `json:"published_reviews"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	PremiumBusinesses   int64 `json:"premium_businesses"`
}
