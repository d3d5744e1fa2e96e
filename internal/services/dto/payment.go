package dto

import (
	"time"

	"travelbuddy_backend/internal/models"
)

type InitiateSubscriptionRequest struct {
	Plan       string `json:"plan" binding:"required,oneof=monthly yearly verified_badge"`
	CouponCode string `json:"couponCode,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type InitiateSubscriptionResponse struct {
	PaymentURL    string `json:"paymentUrl"`
	TransactionID string `json:"transactionId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type PaymentResponse struct {
	ID            string           `json:"id"`
	TransactionID string           `json:"transactionId"`
	Amount        int64            `json:"amount"`
	Currency      string           `json:"currency"`
	Gateway       string           `json:"gateway"`
	Status        string           `json:"status"`
	Description   string           `json:"description"`
	CouponCode    string           `json:"couponCode,omitempty"`
	Discount      int64            `json:"discount,omitempty"`
	PaidAt        *time.Time       `json:"paidAt,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	User          *models.SafeUser `json:"user,omitempty"`
}

type PaymentListResponse struct {
	Payments   []*PaymentResponse `json:"payments"`
	TotalCount int64              `json:"totalCount"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
}

type PaymentSearchCriteria struct {
	Status    string `form:"status" binding:"omitempty,oneof=PENDING PAID FAILED UNPAID"`
	UserID    string `form:"userId" binding:"omitempty,uuid"`
	DateFrom  string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo    string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	Search    string `form:"search"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=created_at amount status"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// CallbackResult carries what the redirect handlers forward to the
// frontend after a gateway callback lands.
type CallbackResult struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Message       string `json:"message"`
	RedirectURL   string `json:"-"`
}
