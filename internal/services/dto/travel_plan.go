package dto

import (
	"time"

	"travelbuddy_backend/internal/models"
)

type CreateTravelPlanRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Destination string `json:"destination" binding:"required,min=2"`
	StartDate   string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" binding:"required,datetime=2006-01-02"`
	BudgetMin   *int64 `json:"budgetMin,omitempty" binding:"omitempty,min=0"`
	BudgetMax   *int64 `json:"budgetMax,omitempty" binding:"omitempty,min=0"`
	TravelType  string `json:"travelType" binding:"required,oneof=SOLO FAMILY FRIENDS COUPLE GROUP"`
	Description string `json:"description,omitempty"`
	Visibility  string `json:"visibility,omitempty" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

type UpdateTravelPlanRequest struct {
	Title       *string `json:"title,omitempty" binding:"omitempty,min=3,max=120"`
	Destination *string `json:"destination,omitempty" binding:"omitempty,min=2"`
	StartDate   *string `json:"startDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate,omitempty" binding:"omitempty,datetime=2006-01-02"`
	BudgetMin   *int64  `json:"budgetMin,omitempty" binding:"omitempty,min=0"`
	BudgetMax   *int64  `json:"budgetMax,omitempty" binding:"omitempty,min=0"`
	TravelType  *string `json:"travelType,omitempty" binding:"omitempty,oneof=SOLO FAMILY FRIENDS COUPLE GROUP"`
	Description *string `json:"description,omitempty"`
	Visibility  *string `json:"visibility,omitempty" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

type TravelPlanResponse struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Destination  string                 `json:"destination"`
	StartDate    time.Time              `json:"startDate"`
	EndDate      time.Time              `json:"endDate"`
	BudgetMin    *int64                 `json:"budgetMin,omitempty"`
	BudgetMax    *int64                 `json:"budgetMax,omitempty"`
	TravelType   string                 `json:"travelType"`
	Description  string                 `json:"description,omitempty"`
	Visibility   string                 `json:"visibility"`
	HostID       string                 `json:"hostId"`
	Host         *models.SafeUser       `json:"host,omitempty"`
	Participants []*ParticipantResponse `json:"participants,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
}

type TravelPlanListResponse struct {
	Plans      []*TravelPlanResponse `json:"plans"`
	TotalCount int64                 `json:"totalCount"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
}

type PlanSearchCriteria struct {
	Destination string `form:"destination"`
	TravelType  string `form:"travelType" binding:"omitempty,oneof=SOLO FAMILY FRIENDS COUPLE GROUP"`
	DateFrom    string `form:"dateFrom" binding:"omitempty,datetime=2006-01-02"`
	DateTo      string `form:"dateTo" binding:"omitempty,datetime=2006-01-02"`
	BudgetMin   *int64 `form:"budgetMin" binding:"omitempty,min=0"`
	BudgetMax   *int64 `form:"budgetMax" binding:"omitempty,min=0"`
	Search      string `form:"search"`
	Page        int    `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize    int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

type ParticipantResponse struct {
	ID           string           `json:"id"`
	TravelPlanID string           `json:"travelPlanId"`
	UserID       string           `json:"userId"`
	Status       string           `json:"status"`
	RequestedAt  time.Time        `json:"requestedAt"`
	RespondedAt  *time.Time       `json:"respondedAt,omitempty"`
	User         *models.SafeUser `json:"user,omitempty"`
}

type JoinedPlanResponse struct {
	Participant *ParticipantResponse `json:"participant"`
	Plan        *TravelPlanResponse  `json:"plan"`
}
