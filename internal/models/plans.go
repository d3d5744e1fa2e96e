package models

import (
	"strings"
	"time"
)

// PremiumPlan identifies a purchasable subscription product.
type PremiumPlan string

const (
	PlanMonthly       PremiumPlan = "monthly"
	PlanYearly        PremiumPlan = "yearly"
	PlanVerifiedBadge PremiumPlan = "verified_badge"
)

func ValidPlan(p PremiumPlan) bool {
	switch p {
	case PlanMonthly, PlanYearly, PlanVerifiedBadge:
		return true
	}
	return false
}

// PlanDescription builds the human-readable payment description a plan
// purchase is recorded with. PlanFromDescription must be able to recover
// the plan from it.
func PlanDescription(p PremiumPlan) string {
	switch p {
	case PlanMonthly:
		return "TravelBuddy Premium - monthly subscription"
	case PlanYearly:
		return "TravelBuddy Premium - yearly subscription"
	case PlanVerifiedBadge:
		return "TravelBuddy verified_badge upgrade"
	default:
		return "TravelBuddy purchase"
	}
}

// PlanFromDescription recovers the purchased plan from a payment
// description. Returns false when no known plan tag is present.
func PlanFromDescription(desc string) (PremiumPlan, bool) {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, string(PlanVerifiedBadge)):
		return PlanVerifiedBadge, true
	case strings.Contains(d, string(PlanYearly)):
		return PlanYearly, true
	case strings.Contains(d, string(PlanMonthly)):
		return PlanMonthly, true
	}
	return "", false
}

// ApplyPlanEffect mutates the user's entitlement fields for a confirmed
// plan purchase. Subscription time stacks: extension starts from the
// current expiry when it is still in the future, otherwise from now.
func ApplyPlanEffect(u *User, plan PremiumPlan, now time.Time) {
	switch plan {
	case PlanMonthly, PlanYearly:
		base := now
		if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now) {
			base = *u.PremiumExpiresAt
		}
		months := 1
		if plan == PlanYearly {
			months = 12
		}
		expires := base.AddDate(0, months, 0)
		u.IsPremium = true
		u.PremiumExpiresAt = &expires
	case PlanVerifiedBadge:
		u.IsVerifiedBadge = true
	}
}
