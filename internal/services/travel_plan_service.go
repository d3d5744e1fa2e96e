package services

import (
	"time"

	"travelbuddy_backend/internal/email"
	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/pkg/apperrors"
)

type TravelPlanService interface {
	CreatePlan(hostID string, req *dto.CreateTravelPlanRequest) (*dto.TravelPlanResponse, error)
	GetPlan(planID string) (*dto.TravelPlanResponse, error)
	ListPlans(criteria dto.PlanSearchCriteria) (*dto.TravelPlanListResponse, error)
	MatchPlans(userID string, criteria dto.PlanSearchCriteria) ([]*dto.TravelPlanResponse, error)
	UpdatePlan(actorID string, isAdmin bool, planID string, req *dto.UpdateTravelPlanRequest) (*dto.TravelPlanResponse, error)
	DeletePlan(actorID string, isAdmin bool, planID string) error

	// Participants
	JoinPlan(userID, planID string) (*dto.ParticipantResponse, error)
	GetParticipants(actorID string, isAdmin bool, planID string) ([]*dto.ParticipantResponse, error)
	RespondToJoinRequest(hostID, planID, userID string, status models.ParticipantStatus) (*dto.ParticipantResponse, error)
}

type TravelPlanServiceImpl struct {
	planRepo      repositories.TravelPlanRepository
	userRepo      repositories.UserRepository
	emailProvider email.Provider
}

func NewTravelPlanService(
	planRepo repositories.TravelPlanRepository,
	userRepo repositories.UserRepository,
	emailProvider email.Provider,
) TravelPlanService {
	return &TravelPlanServiceImpl{
		planRepo:      planRepo,
		userRepo:      userRepo,
		emailProvider: emailProvider,
	}
}

// ---------------- Plan Operations ----------------

func (s *TravelPlanServiceImpl) CreatePlan(hostID string, req *dto.CreateTravelPlanRequest) (*dto.TravelPlanResponse, error) {
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := validateBudget(req.BudgetMin, req.BudgetMax); err != nil {
		return nil, err
	}

	visibility := models.VisibilityPublic
	if req.Visibility != "" {
		visibility = models.PlanVisibility(req.Visibility)
	}

	plan := &models.TravelPlan{
		Title:       req.Title,
		Destination: req.Destination,
		StartDate:   startDate,
		EndDate:     endDate,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		TravelType:  models.TravelType(req.TravelType),
		Description: req.Description,
		Visibility:  visibility,
		HostID:      hostID,
	}

	if err := s.planRepo.Create(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("travel plan created", "plan_id", plan.ID, "host_id", hostID, "destination", plan.Destination)
	return buildPlanResponse(plan), nil
}

func (s *TravelPlanServiceImpl) GetPlan(planID string) (*dto.TravelPlanResponse, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("travel plan not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return buildPlanResponse(plan), nil
}

func (s *TravelPlanServiceImpl) ListPlans(criteria dto.PlanSearchCriteria) (*dto.TravelPlanListResponse, error) {
	page, pageSize := normalizePage(criteria.Page, criteria.PageSize)

	filter := repositories.PlanFilter{
		Destination: criteria.Destination,
		TravelType:  models.TravelType(criteria.TravelType),
		BudgetMin:   criteria.BudgetMin,
		BudgetMax:   criteria.BudgetMax,
		Search:      criteria.Search,
		Visibility:  models.VisibilityPublic,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}
	if criteria.DateFrom != "" {
		t, _ := time.Parse("2006-01-02", criteria.DateFrom)
		filter.DateFrom = &t
	}
	if criteria.DateTo != "" {
		t, _ := time.Parse("2006-01-02", criteria.DateTo)
		filter.DateTo = &t
	}

	plans, total, err := s.planRepo.FindWithFilter(filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.TravelPlanListResponse{
		Plans:      make([]*dto.TravelPlanResponse, 0, len(plans)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for i := range plans {
		resp.Plans = append(resp.Plans, buildPlanResponse(&plans[i]))
	}
	return resp, nil
}

func (s *TravelPlanServiceImpl) MatchPlans(userID string, criteria dto.PlanSearchCriteria) ([]*dto.TravelPlanResponse, error) {
	match := repositories.MatchCriteria{
		Destination: criteria.Destination,
		TravelType:  models.TravelType(criteria.TravelType),
		BudgetMin:   criteria.BudgetMin,
		BudgetMax:   criteria.BudgetMax,
		ExcludeHost: userID,
		Limit:       20,
	}
	if criteria.DateFrom != "" {
		t, _ := time.Parse("2006-01-02", criteria.DateFrom)
		match.DateFrom = &t
	}
	if criteria.DateTo != "" {
		t, _ := time.Parse("2006-01-02", criteria.DateTo)
		match.DateTo = &t
	}

	plans, err := s.planRepo.FindMatches(match)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]*dto.TravelPlanResponse, 0, len(plans))
	for i := range plans {
		result = append(result, buildPlanResponse(&plans[i]))
	}
	return result, nil
}

func (s *TravelPlanServiceImpl) UpdatePlan(actorID string, isAdmin bool, planID string, req *dto.UpdateTravelPlanRequest) (*dto.TravelPlanResponse, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("travel plan not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if plan.HostID != actorID && !isAdmin {
		return nil, apperrors.NewForbiddenError("only the host can modify this plan")
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.Destination != nil {
		plan.Destination = *req.Destination
	}
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, apperrors.NewBadRequestError("invalid startDate")
		}
		plan.StartDate = t
	}
	if req.EndDate != nil {
		t, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, apperrors.NewBadRequestError("invalid endDate")
		}
		plan.EndDate = t
	}
	if plan.EndDate.Before(plan.StartDate) {
		return nil, apperrors.NewBadRequestError("endDate must not be before startDate")
	}
	if req.BudgetMin != nil {
		plan.BudgetMin = req.BudgetMin
	}
	if req.BudgetMax != nil {
		plan.BudgetMax = req.BudgetMax
	}
	if err := validateBudget(plan.BudgetMin, plan.BudgetMax); err != nil {
		return nil, err
	}
	if req.TravelType != nil {
		plan.TravelType = models.TravelType(*req.TravelType)
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Visibility != nil {
		plan.Visibility = models.PlanVisibility(*req.Visibility)
	}

	if err := s.planRepo.Update(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildPlanResponse(plan), nil
}

func (s *TravelPlanServiceImpl) DeletePlan(actorID string, isAdmin bool, planID string) error {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return apperrors.NewNotFoundError("travel plan not found")
		}
		return apperrors.InternalError(err)
	}
	if plan.HostID != actorID && !isAdmin {
		return apperrors.NewForbiddenError("only the host can delete this plan")
	}

	if err := s.planRepo.Delete(planID); err != nil {
		return apperrors.InternalError(err)
	}
	logger.Info("travel plan deleted", "plan_id", planID, "actor_id", actorID)
	return nil
}

// ---------------- Participant Operations ----------------

func (s *TravelPlanServiceImpl) JoinPlan(userID, planID string) (*dto.ParticipantResponse, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("travel plan not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if plan.HostID == userID {
		return nil, apperrors.ErrCannotJoinOwnPlan
	}

	participant := &models.TravelPlanParticipant{
		TravelPlanID: planID,
		UserID:       userID,
		Status:       models.ParticipantStatusPending,
		RequestedAt:  time.Now(),
	}
	if err := s.planRepo.CreateParticipant(participant); err != nil {
		if apperrors.Is(err, repositories.ErrAlreadyJoined) {
			return nil, apperrors.ErrPlanAlreadyJoined
		}
		return nil, apperrors.InternalError(err)
	}

	s.notifyHost(plan, userID)
	logger.Info("join request created", "plan_id", planID, "user_id", userID)
	return buildParticipantResponse(participant), nil
}

func (s *TravelPlanServiceImpl) GetParticipants(actorID string, isAdmin bool, planID string) ([]*dto.ParticipantResponse, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("travel plan not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if plan.HostID != actorID && !isAdmin {
		return nil, apperrors.NewForbiddenError("only the host can list participants")
	}

	participants, err := s.planRepo.FindParticipants(planID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]*dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		result = append(result, buildParticipantResponse(&participants[i]))
	}
	return result, nil
}

func (s *TravelPlanServiceImpl) RespondToJoinRequest(hostID, planID, userID string, status models.ParticipantStatus) (*dto.ParticipantResponse, error) {
	if status != models.ParticipantStatusAccepted && status != models.ParticipantStatusRejected {
		return nil, apperrors.ErrInvalidStatus("travel_plan", "status must be ACCEPTED or REJECTED")
	}

	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.NewNotFoundError("travel plan not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if plan.HostID != hostID {
		return nil, apperrors.NewForbiddenError("only the host can respond to join requests")
	}

	participant, err := s.planRepo.FindParticipant(planID, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, apperrors.NewNotFoundError("join request not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if participant.Status != models.ParticipantStatusPending {
		return nil, apperrors.ErrInvalidStatus("travel_plan", "join request was already responded to")
	}

	now := time.Now()
	if err := s.planRepo.UpdateParticipantStatus(participant.ID, status, now); err != nil {
		return nil, apperrors.InternalError(err)
	}
	participant.Status = status
	participant.RespondedAt = &now

	s.notifyParticipant(plan, userID, status)
	logger.Info("join request responded", "plan_id", planID, "user_id", userID, "status", status)
	return buildParticipantResponse(participant), nil
}

// ---------------- Notifications ----------------

func (s *TravelPlanServiceImpl) notifyHost(plan *models.TravelPlan, requesterID string) {
	if s.emailProvider == nil {
		return
	}
	host, err := s.userRepo.FindByID(plan.HostID)
	if err != nil {
		return
	}
	requester, err := s.userRepo.FindByID(requesterID)
	if err != nil {
		return
	}
	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{host.Email},
			"New join request for "+plan.Title,
			email.TemplateJoinRequest,
			email.TemplateData{
				"HostName":      host.FullName,
				"RequesterName": requester.FullName,
				"Destination":   plan.Destination,
			},
		)
		if err != nil {
			logger.Warn("join request email failed", "plan_id", plan.ID, "error", err)
		}
	}()
}

func (s *TravelPlanServiceImpl) notifyParticipant(plan *models.TravelPlan, userID string, status models.ParticipantStatus) {
	if s.emailProvider == nil {
		return
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return
	}
	go func() {
		err := s.emailProvider.SendTemplate(
			[]string{user.Email},
			"Update on your trip request",
			email.TemplateJoinResponse,
			email.TemplateData{
				"Name":        user.FullName,
				"Title":       plan.Title,
				"Destination": plan.Destination,
				"Status":      string(status),
			},
		)
		if err != nil {
			logger.Warn("join response email failed", "plan_id", plan.ID, "error", err)
		}
	}()
}

// ---------------- Builders ----------------

func buildPlanResponse(plan *models.TravelPlan) *dto.TravelPlanResponse {
	resp := &dto.TravelPlanResponse{
		ID:          plan.ID,
		Title:       plan.Title,
		Destination: plan.Destination,
		StartDate:   plan.StartDate,
		EndDate:     plan.EndDate,
		BudgetMin:   plan.BudgetMin,
		BudgetMax:   plan.BudgetMax,
		TravelType:  string(plan.TravelType),
		Description: plan.Description,
		Visibility:  string(plan.Visibility),
		HostID:      plan.HostID,
		CreatedAt:   plan.CreatedAt,
	}
	if plan.Host != nil {
		resp.Host = plan.Host.Safe()
	}
	for i := range plan.Participants {
		resp.Participants = append(resp.Participants, buildParticipantResponse(&plan.Participants[i]))
	}
	return resp
}

func buildParticipantResponse(p *models.TravelPlanParticipant) *dto.ParticipantResponse {
	resp := &dto.ParticipantResponse{
		ID:           p.ID,
		TravelPlanID: p.TravelPlanID,
		UserID:       p.UserID,
		Status:       string(p.Status),
		RequestedAt:  p.RequestedAt,
		RespondedAt:  p.RespondedAt,
	}
	if p.User != nil {
		resp.User = p.User.Safe()
	}
	return resp
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewBadRequestError("invalid startDate")
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewBadRequestError("invalid endDate")
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, apperrors.NewBadRequestError("endDate must not be before startDate")
	}
	return startDate, endDate, nil
}

func validateBudget(min, max *int64) error {
	if min != nil && max != nil && *max < *min {
		return apperrors.NewBadRequestError("budgetMax must not be less than budgetMin")
	}
	return nil
}
