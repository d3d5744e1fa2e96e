package dto

type DashboardResponse struct {
	HostedPlans     []*TravelPlanResponse            `json:"hostedPlans"`
	JoinedPlans     []*JoinedPlanResponse            `json:"joinedPlans"`
	UpcomingPlans   []*TravelPlanResponse            `json:"upcomingPlans"`
	ReviewableTrips []*ReviewableTripResponse        `json:"reviewableTrips"`
	MatchesByPlan   map[string][]*TravelPlanResponse `json:"matchesByPlan"`
}

// ReviewableTripResponse is a finished trip the user took part in whose
// host they have not reviewed yet.
type ReviewableTripResponse struct {
	Plan   *TravelPlanResponse `json:"plan"`
	HostID string              `json:"hostId"`
}
