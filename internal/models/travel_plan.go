package models

import "time"

type TravelPlan struct {
	BaseModel
	Title       string         `gorm:"not null" json:"title"`
	Destination string         `gorm:"not null;index" json:"destination"`
	StartDate   time.Time      `gorm:"not null;index" json:"startDate"`
	EndDate     time.Time      `gorm:"not null" json:"endDate"`
	BudgetMin   *int64         `json:"budgetMin"`
	BudgetMax   *int64         `json:"budgetMax"`
	TravelType  TravelType     `gorm:"type:varchar(20);not null" json:"travelType"`
	Description string         `json:"description"`
	Visibility  PlanVisibility `gorm:"type:varchar(20);default:'PUBLIC'" json:"visibility"`
	HostID      string         `gorm:"not null;index" json:"hostId"`

	// Relations
	Host         *User                   `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Participants []TravelPlanParticipant `gorm:"foreignKey:TravelPlanID" json:"participants,omitempty"`
}

// Finished reports whether the trip has already ended.
func (p *TravelPlan) Finished(now time.Time) bool {
	return p.EndDate.Before(now)
}

type TravelPlanParticipant struct {
	BaseModel
	TravelPlanID string            `gorm:"not null;uniqueIndex:idx_plan_participant" json:"travelPlanId"`
	UserID       string            `gorm:"not null;uniqueIndex:idx_plan_participant" json:"userId"`
	Status       ParticipantStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	RequestedAt  time.Time         `gorm:"default:now()" json:"requestedAt"`
	RespondedAt  *time.Time        `json:"respondedAt"`

	// Relations
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TravelPlan *TravelPlan `gorm:"foreignKey:TravelPlanID" json:"travelPlan,omitempty"`
}
