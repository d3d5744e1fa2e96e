package handlers

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	TravelPlan *TravelPlanHandler
	Review     *ReviewHandler
	Payment    *PaymentHandler
	Dashboard  *DashboardHandler
}
