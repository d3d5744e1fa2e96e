package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPaymentsConfig() *PaymentsConfig {
	return &PaymentsConfig{
		Gateway:            "sslcommerz",
		StoreID:            "store",
		StorePassword:      "pass",
		PaymentAPI:         "https://sandbox.sslcommerz.com/gwprocess/v4/api.php",
		ValidationAPI:      "https://sandbox.sslcommerz.com/validator/api/validationserverAPI.php",
		Currency:           "BDT",
		SuccessURL:         "http://localhost:4000/api/v1/payments/success",
		FailURL:            "http://localhost:4000/api/v1/payments/fail",
		CancelURL:          "http://localhost:4000/api/v1/payments/cancel",
		IPNURL:             "http://localhost:4000/api/v1/payments/validate-payment",
		FrontendSuccessURL: "http://localhost:3000/payment/success",
		FrontendFailURL:    "http://localhost:3000/payment/fail",
		FrontendCancelURL:  "http://localhost:3000/payment/cancel",
		Plans:              map[string]int64{"monthly": 50000},
	}
}

func TestPaymentsConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("complete config passes", func(t *testing.T) {
		assert.NoError(t, validPaymentsConfig().Validate())
	})

	t.Run("missing store password is reported by key", func(t *testing.T) {
		cfg := validPaymentsConfig()
		cfg.StorePassword = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payments.store_password")
	})

	t.Run("missing frontend url is reported", func(t *testing.T) {
		cfg := validPaymentsConfig()
		cfg.FrontendCancelURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("empty plan table is rejected", func(t *testing.T) {
		cfg := validPaymentsConfig()
		cfg.Plans = nil
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payments.plans")
	})

	t.Run("non-positive plan price is rejected", func(t *testing.T) {
		cfg := validPaymentsConfig()
		cfg.Plans["free"] = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestPlanPrice(t *testing.T) {
	t.Parallel()

	cfg := validPaymentsConfig()

	price, ok := cfg.PlanPrice("monthly")
	assert.True(t, ok)
	assert.Equal(t, int64(50000), price)

	_, ok = cfg.PlanPrice("lifetime")
	assert.False(t, ok)
}
