package services

import (
	"math"
	"strings"

	"travelbuddy_backend/pkg/apperrors"
)

// coupons maps a coupon code to its discount percentage.
var coupons = map[string]float64{
	"TRAVEL10": 10,
}

// ApplyCoupon returns the discount for a coupon code, rounded to the
// nearest minor unit. An empty code means no coupon; an unknown code is
// rejected.
func ApplyCoupon(code string, amount int64) (int64, error) {
	if code == "" {
		return 0, nil
	}
	percent, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return 0, apperrors.ErrInvalidCoupon
	}
	return int64(math.Round(float64(amount) * percent / 100)), nil
}
