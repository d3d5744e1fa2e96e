package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	FullName     string   `gorm:"not null" json:"fullName"`
	Role         UserRole `gorm:"type:varchar(20);default:'USER'" json:"role"`

	Bio             string         `json:"bio"`
	ProfileImage    string         `json:"profileImage"`
	Phone           string         `json:"phone"`
	CurrentLocation string         `json:"currentLocation"`
	TravelInterests datatypes.JSON `gorm:"type:jsonb" json:"travelInterests"`
	VisitedCountries datatypes.JSON `gorm:"type:jsonb" json:"visitedCountries"`

	// Entitlement state, mutated only by the payment flow.
	IsPremium        bool       `gorm:"default:false" json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt"`
	IsVerifiedBadge  bool       `gorm:"default:false" json:"isVerifiedBadge"`

	// Relations
	TravelPlans []TravelPlan `gorm:"foreignKey:HostID" json:"-"`
	Payments    []Payment    `gorm:"foreignKey:UserID" json:"-"`
}

// PremiumActive reports whether the premium entitlement is currently in effect.
// Expiry is evaluated on read; there is no background downgrade job.
func (u *User) PremiumActive(now time.Time) bool {
	return u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}

// SafeUser is the subset of user fields exposed alongside payments and reviews.
type SafeUser struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	FullName        string `json:"fullName"`
	ProfileImage    string `json:"profileImage"`
	IsVerifiedBadge bool   `json:"isVerifiedBadge"`
}

func (u *User) Safe() *SafeUser {
	return &SafeUser{
		ID:              u.ID,
		Email:           u.Email,
		FullName:        u.FullName,
		ProfileImage:    u.ProfileImage,
		IsVerifiedBadge: u.IsVerifiedBadge,
	}
}
