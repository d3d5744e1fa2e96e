package services

import (
	"travelbuddy_backend/internal/email"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService       AuthService
	UserService       UserService
	TravelPlanService TravelPlanService
	ReviewService     ReviewService
	PaymentService    PaymentService
	DashboardService  DashboardService
	EmailProvider     email.Provider
}
