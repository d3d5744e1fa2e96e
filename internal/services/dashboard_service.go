package services

import (
	"time"

	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/pkg/apperrors"
)

type DashboardService interface {
	GetDashboard(userID string) (*dto.DashboardResponse, error)
}

type DashboardServiceImpl struct {
	planRepo   repositories.TravelPlanRepository
	reviewRepo repositories.ReviewRepository
}

func NewDashboardService(
	planRepo repositories.TravelPlanRepository,
	reviewRepo repositories.ReviewRepository,
) DashboardService {
	return &DashboardServiceImpl{
		planRepo:   planRepo,
		reviewRepo: reviewRepo,
	}
}

// GetDashboard aggregates everything the home screen shows in one call.
func (s *DashboardServiceImpl) GetDashboard(userID string) (*dto.DashboardResponse, error) {
	now := time.Now()

	hosted, err := s.planRepo.FindByHost(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	joined, err := s.planRepo.FindPlansJoinedBy(userID, []models.ParticipantStatus{models.ParticipantStatusAccepted})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.DashboardResponse{
		HostedPlans:     make([]*dto.TravelPlanResponse, 0, len(hosted)),
		JoinedPlans:     make([]*dto.JoinedPlanResponse, 0, len(joined)),
		UpcomingPlans:   []*dto.TravelPlanResponse{},
		ReviewableTrips: []*dto.ReviewableTripResponse{},
		MatchesByPlan:   map[string][]*dto.TravelPlanResponse{},
	}

	for i := range hosted {
		plan := &hosted[i]
		planResp := buildPlanResponse(plan)
		resp.HostedPlans = append(resp.HostedPlans, planResp)
		if plan.StartDate.After(now) {
			resp.UpcomingPlans = append(resp.UpcomingPlans, planResp)
		}
		s.collectMatches(resp, plan, userID)
	}

	for i := range joined {
		p := &joined[i]
		if p.TravelPlan == nil {
			continue
		}
		planResp := buildPlanResponse(p.TravelPlan)
		resp.JoinedPlans = append(resp.JoinedPlans, &dto.JoinedPlanResponse{
			Participant: buildParticipantResponse(p),
			Plan:        planResp,
		})
		if p.TravelPlan.StartDate.After(now) {
			resp.UpcomingPlans = append(resp.UpcomingPlans, planResp)
		}

		if !p.TravelPlan.Finished(now) {
			continue
		}
		// Finished trip the user took part in; reviewable unless the
		// host already got their review.
		_, err := s.reviewRepo.FindByPlanAndAuthor(p.TravelPlanID, userID, p.TravelPlan.HostID)
		if err == nil {
			continue
		}
		if !apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.InternalError(err)
		}
		resp.ReviewableTrips = append(resp.ReviewableTrips, &dto.ReviewableTripResponse{
			Plan:   planResp,
			HostID: p.TravelPlan.HostID,
		})
	}

	return resp, nil
}

func (s *DashboardServiceImpl) collectMatches(resp *dto.DashboardResponse, plan *models.TravelPlan, userID string) {
	matches, err := s.planRepo.FindMatches(repositories.MatchCriteria{
		Destination: plan.Destination,
		DateFrom:    &plan.StartDate,
		DateTo:      &plan.EndDate,
		ExcludeHost: userID,
		Limit:       20,
	})
	if err != nil {
		return
	}
	list := make([]*dto.TravelPlanResponse, 0, len(matches))
	for i := range matches {
		list = append(list, buildPlanResponse(&matches[i]))
	}
	resp.MatchesByPlan[plan.ID] = list
}
