package dto

import (
	"time"

	"travelbuddy_backend/internal/models"
)

type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	Role             string     `json:"role"`
	Bio              string     `json:"bio,omitempty"`
	ProfileImage     string     `json:"profileImage,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	CurrentLocation  string     `json:"currentLocation,omitempty"`
	TravelInterests  []string   `json:"travelInterests,omitempty"`
	VisitedCountries []string   `json:"visitedCountries,omitempty"`
	IsPremium        bool       `json:"isPremium"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
	IsVerifiedBadge  bool       `json:"isVerifiedBadge"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type UpdateProfileRequest struct {
	FullName         *string  `json:"fullName,omitempty" binding:"omitempty,min=2"`
	Bio              *string  `json:"bio,omitempty"`
	ProfileImage     *string  `json:"profileImage,omitempty" binding:"omitempty,url"`
	Phone            *string  `json:"phone,omitempty"`
	CurrentLocation  *string  `json:"currentLocation,omitempty"`
	TravelInterests  []string `json:"travelInterests,omitempty"`
	VisitedCountries []string `json:"visitedCountries,omitempty"`
}

type UserListResponse struct {
	Users      []*UserResponse `json:"users"`
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
}

type UpdateRoleRequest struct {
	Role models.UserRole `json:"role" binding:"required,oneof=USER ADMIN"`
}

type UserSearchCriteria struct {
	Role      string `form:"role" binding:"omitempty,oneof=USER ADMIN"`
	IsPremium *bool  `form:"isPremium"`
	Search    string `form:"search"`
	Page      int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize  int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}
