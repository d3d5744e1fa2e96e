package dto

import (
	"time"

	"travelbuddy_backend/internal/models"
)

// CreatePlanReviewRequest reviews the host of a finished trip.
type CreatePlanReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

// CreateReviewRequest reviews a user directly, outside any trip.
type CreateReviewRequest struct {
	TargetID string `json:"targetId" binding:"required,uuid"`
	Rating   int    `json:"rating" binding:"required,min=1,max=5"`
	Comment  string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" binding:"omitempty,max=2000"`
}

type ReviewResponse struct {
	ID           string           `json:"id"`
	AuthorID     string           `json:"authorId"`
	TargetID     string           `json:"targetId"`
	TravelPlanID *string          `json:"travelPlanId,omitempty"`
	Rating       int              `json:"rating"`
	Comment      string           `json:"comment,omitempty"`
	Author       *models.SafeUser `json:"author,omitempty"`
	Target       *models.SafeUser `json:"target,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type ReviewListResponse struct {
	Reviews       []*ReviewResponse `json:"reviews"`
	TotalCount    int64             `json:"totalCount"`
	AverageRating float64           `json:"averageRating"`
}
