package plans

import "strings"

type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanPremium PlanID = "premium"
)

// FeatureKey identifies a gated capability. Every key checked anywhere in the
// system must appear in every plan's feature map; Plan.Limit falls back to a
// zero cap (deny) for anything missing.
type FeatureKey string

const (
	FeatureAIEnhancements FeatureKey = "ai_enhancements"
	FeatureReviews        FeatureKey = "reviews"
	FeatureQRCodes        FeatureKey = "qr_codes"
	FeatureAnalytics      FeatureKey = "analytics_dashboard"
	FeatureCustomBranding FeatureKey = "custom_branding"
	FeatureAPIAccess      FeatureKey = "api_access"
)

type LimitKind string

const (
	LimitUnlimited LimitKind = "unlimited"
	LimitBoolean   LimitKind = "boolean"
	LimitCapped    LimitKind = "capped"
)

// Limit is one of: unlimited, a boolean gate, or a monthly cap.
type Limit struct {
	Kind    LimitKind `json:"kind"`
	Enabled bool      `json:"enabled,omitempty"`
	Cap     int       `json:"cap,omitempty"`
}

func Unlimited() Limit        { return Limit{Kind: LimitUnlimited} }
func Gate(enabled bool) Limit { return Limit{Kind: LimitBoolean, Enabled: enabled} }
func MonthlyCap(n int) Limit  { return Limit{Kind: LimitCapped, Cap: n} }

// Display renders the limit for API responses: "unlimited", "enabled",
// "disabled", or the numeric cap.
func (l Limit) Display() interface{} {
	switch l.Kind {
	case LimitUnlimited:
		return "unlimited"
	case LimitBoolean:
		if l.Enabled {
			return "enabled"
		}
		return "disabled"
	default:
		return l.Cap
	}
}

type Plan struct {
	ID           PlanID               `json:"id"`
	Name         string               `json:"name"`
	MonthlyPrice float64              `json:"monthly_price"`
	Features     map[FeatureKey]Limit `json:"features"`
}

// Limit resolves a feature's limit, denying unknown keys.
func (p Plan) Limit(key FeatureKey) Limit {
	if l, ok := p.Features[key]; ok {
		return l
	}
	return MonthlyCap(0)
}

// Catalog is the immutable plan table, constructed once at startup and passed
// by injection to every consumer. No global mutable state.
type Catalog struct {
	plans map[PlanID]Plan
	order []PlanID
}

// NewCatalog builds the default Free/Premium catalog.
func NewCatalog() *Catalog {
	free := Plan{
		ID:           PlanFree,
		Name:         "Free",
		MonthlyPrice: 0,
		Features: map[FeatureKey]Limit{
			FeatureAIEnhancements: MonthlyCap(5),
			FeatureReviews:        MonthlyCap(50),
			FeatureQRCodes:        MonthlyCap(1),
			FeatureAnalytics:      Gate(false),
			FeatureCustomBranding: Gate(false),
			FeatureAPIAccess:      Gate(false),
		},
	}
	premium := Plan{
		ID:           PlanPremium,
		Name:         "Premium",
		MonthlyPrice: 29,
		Features: map[FeatureKey]Limit{
			FeatureAIEnhancements: Unlimited(),
			FeatureReviews:        Unlimited(),
			FeatureQRCodes:        MonthlyCap(10),
			FeatureAnalytics:      Gate(true),
			FeatureCustomBranding: Gate(true),
			FeatureAPIAccess:      Gate(true),
		},
	}

	return &Catalog{
		plans: map[PlanID]Plan{
			PlanFree:    free,
			PlanPremium: premium,
		},
		order: []PlanID{PlanFree, PlanPremium},
	}
}

// Get resolves a plan id case-insensitively; anything unrecognized maps to the
// free plan.
func (c *Catalog) Get(id string) Plan {
	pid := PlanID(strings.ToLower(strings.TrimSpace(id)))
	if p, ok := c.plans[pid]; ok {
		return p
	}
	return c.plans[PlanFree]
}

// Known reports whether id names a real plan.
func (c *Catalog) Known(id string) bool {
	_, ok := c.plans[PlanID(strings.ToLower(strings.TrimSpace(id)))]
	return ok
}

// All returns plans in display order, cheapest first.
func (c *Catalog) All() []Plan {
	out := make([]Plan, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.plans[id])
	}
	return out
}
