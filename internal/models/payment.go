package models

import (
	"time"

	"gorm.io/datatypes"
)

type Payment struct {
	BaseModel
	UserID        string         `gorm:"not null;index" json:"userId"`
	Amount        int64          `gorm:"not null" json:"amount"` // minor currency units
	Currency      string         `gorm:"type:varchar(10);default:'BDT'" json:"currency"`
	Gateway       string         `gorm:"type:varchar(30);default:'sslcommerz'" json:"gateway"`
	TransactionID string         `gorm:"uniqueIndex;not null" json:"transactionId"`
	SessionKey    string         `gorm:"index" json:"sessionKey,omitempty"`
	GatewayTxnID  string         `json:"gatewayTxnId,omitempty"`
	Description   string         `json:"description"`
	CouponCode    string         `json:"couponCode,omitempty"`
	Discount      int64          `json:"discount"`
	Status        PaymentStatus  `gorm:"type:varchar(20);default:'PENDING';index" json:"status"`
	GatewayData   datatypes.JSON `gorm:"type:jsonb" json:"gatewayData,omitempty"`
	PaidAt        *time.Time     `json:"paidAt"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
