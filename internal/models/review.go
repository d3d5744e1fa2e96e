package models

type Review struct {
	BaseModel
	AuthorID     string  `gorm:"not null;index" json:"authorId"`
	TargetID     string  `gorm:"not null;index" json:"targetId"`
	TravelPlanID *string `gorm:"index" json:"travelPlanId"`
	Rating       int     `gorm:"not null" json:"rating"`
	Comment      string  `json:"comment"`

	// Relations
	Author     *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Target     *User       `gorm:"foreignKey:TargetID" json:"target,omitempty"`
	TravelPlan *TravelPlan `gorm:"foreignKey:TravelPlanID" json:"travelPlan,omitempty"`
}
