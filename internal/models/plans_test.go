package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanFromDescription(t *testing.T) {
	t.Parallel()

	for _, plan := range []PremiumPlan{PlanMonthly, PlanYearly, PlanVerifiedBadge} {
		recovered, ok := PlanFromDescription(PlanDescription(plan))
		require.True(t, ok, "plan %s not recovered", plan)
		assert.Equal(t, plan, recovered)
	}

	_, ok := PlanFromDescription("Donation")
	assert.False(t, ok)

	// Case does not matter.
	recovered, ok := PlanFromDescription("TRAVELBUDDY PREMIUM - YEARLY SUBSCRIPTION")
	require.True(t, ok)
	assert.Equal(t, PlanYearly, recovered)
}

func TestApplyPlanEffect(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("monthly grants one month from now", func(t *testing.T) {
		u := &User{}
		ApplyPlanEffect(u, PlanMonthly, now)

		assert.True(t, u.IsPremium)
		require.NotNil(t, u.PremiumExpiresAt)
		assert.Equal(t, now.AddDate(0, 1, 0), *u.PremiumExpiresAt)
		assert.False(t, u.IsVerifiedBadge)
	})

	t.Run("yearly grants twelve months", func(t *testing.T) {
		u := &User{}
		ApplyPlanEffect(u, PlanYearly, now)

		require.NotNil(t, u.PremiumExpiresAt)
		assert.Equal(t, now.AddDate(0, 12, 0), *u.PremiumExpiresAt)
	})

	t.Run("renewal stacks on a future expiry", func(t *testing.T) {
		expiry := now.AddDate(0, 0, 10)
		u := &User{IsPremium: true, PremiumExpiresAt: &expiry}
		ApplyPlanEffect(u, PlanMonthly, now)

		require.NotNil(t, u.PremiumExpiresAt)
		assert.Equal(t, expiry.AddDate(0, 1, 0), *u.PremiumExpiresAt)
	})

	t.Run("lapsed expiry restarts from now", func(t *testing.T) {
		expiry := now.AddDate(0, -2, 0)
		u := &User{IsPremium: true, PremiumExpiresAt: &expiry}
		ApplyPlanEffect(u, PlanMonthly, now)

		require.NotNil(t, u.PremiumExpiresAt)
		assert.Equal(t, now.AddDate(0, 1, 0), *u.PremiumExpiresAt)
	})

	t.Run("verified badge does not touch premium", func(t *testing.T) {
		u := &User{}
		ApplyPlanEffect(u, PlanVerifiedBadge, now)

		assert.True(t, u.IsVerifiedBadge)
		assert.False(t, u.IsPremium)
		assert.Nil(t, u.PremiumExpiresAt)
	})
}

func TestPremiumActive(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	assert.False(t, (&User{}).PremiumActive(now))
	assert.False(t, (&User{IsPremium: true}).PremiumActive(now))
	assert.False(t, (&User{IsPremium: true, PremiumExpiresAt: &past}).PremiumActive(now))
	assert.True(t, (&User{IsPremium: true, PremiumExpiresAt: &future}).PremiumActive(now))
}

func TestPaymentStatusTransitions(t *testing.T) {
	t.Parallel()

	terminal := []PaymentStatus{PaymentStatusPaid, PaymentStatusFailed, PaymentStatusUnpaid}

	for _, next := range terminal {
		assert.True(t, PaymentStatusPending.CanTransitionTo(next), "PENDING -> %s", next)
	}
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPending))

	for _, from := range terminal {
		assert.True(t, from.IsTerminal())
		for _, next := range []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusUnpaid} {
			assert.False(t, from.CanTransitionTo(next), "%s -> %s", from, next)
		}
	}
	assert.False(t, PaymentStatusPending.IsTerminal())
}
