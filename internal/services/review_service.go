package services

import (
	"time"

	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/pkg/apperrors"
)

type ReviewService interface {
	CreatePlanReview(authorID, planID string, req *dto.CreatePlanReviewRequest) (*dto.ReviewResponse, error)
	CreateUserReview(authorID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	GetUserReviews(targetID string) (*dto.ReviewListResponse, error)
	UpdateReview(authorID, reviewID string, req *dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	DeleteReview(actorID string, isAdmin bool, reviewID string) error

	// Admin operations
	ListReviews(page, pageSize int) (*dto.ReviewListResponse, error)
}

type ReviewServiceImpl struct {
	reviewRepo repositories.ReviewRepository
	planRepo   repositories.TravelPlanRepository
	userRepo   repositories.UserRepository
}

func NewReviewService(
	reviewRepo repositories.ReviewRepository,
	planRepo repositories.TravelPlanRepository,
	userRepo repositories.UserRepository,
) ReviewService {
	return &ReviewServiceImpl{
		reviewRepo: reviewRepo,
		planRepo:   planRepo,
		userRepo:   userRepo,
	}
}

// CreatePlanReview lets an accepted participant rate the host of a trip
// that has already ended. The target is always the host, so a self-review
// cannot happen here: the host cannot be a participant of their own plan.
func (s *ReviewServiceImpl) CreatePlanReview(authorID, planID string, req *dto.CreatePlanReviewRequest) (*dto.ReviewResponse, error) {
	plan, err := s.planRepo.FindByID(planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrUnknownPlan
		}
		return nil, apperrors.InternalError(err)
	}
	if !plan.Finished(time.Now()) {
		return nil, apperrors.ErrTripNotFinished
	}

	accepted, err := s.planRepo.HasAcceptedParticipant(planID, authorID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !accepted {
		return nil, apperrors.ErrNotAcceptedParticipant
	}

	review := &models.Review{
		AuthorID:     authorID,
		TargetID:     plan.HostID,
		TravelPlanID: &planID,
		Rating:       req.Rating,
		Comment:      req.Comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if apperrors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, apperrors.ErrAlreadyReviewed
		}
		return nil, apperrors.InternalError(err)
	}

	logger.Info("plan review created", "review_id", review.ID, "plan_id", planID, "author_id", authorID)
	return buildReviewResponse(review), nil
}

func (s *ReviewServiceImpl) CreateUserReview(authorID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	if authorID == req.TargetID {
		return nil, apperrors.ErrSelfReviewNotAllowed
	}

	if _, err := s.userRepo.FindByID(req.TargetID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("target user not found")
		}
		return nil, apperrors.InternalError(err)
	}

	review := &models.Review{
		AuthorID: authorID,
		TargetID: req.TargetID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildReviewResponse(review), nil
}

func (s *ReviewServiceImpl) GetUserReviews(targetID string) (*dto.ReviewListResponse, error) {
	reviews, err := s.reviewRepo.FindByTarget(targetID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	avg, total, err := s.reviewRepo.AverageRating(targetID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.ReviewListResponse{
		Reviews:       make([]*dto.ReviewResponse, 0, len(reviews)),
		TotalCount:    total,
		AverageRating: avg,
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, buildReviewResponse(&reviews[i]))
	}
	return resp, nil
}

func (s *ReviewServiceImpl) UpdateReview(authorID, reviewID string, req *dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return nil, apperrors.NewNotFoundError("review not found")
		}
		return nil, apperrors.InternalError(err)
	}
	if review.AuthorID != authorID {
		return nil, apperrors.NewForbiddenError("only the author can modify this review")
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}
	if err := s.reviewRepo.Update(review); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildReviewResponse(review), nil
}

func (s *ReviewServiceImpl) DeleteReview(actorID string, isAdmin bool, reviewID string) error {
	review, err := s.reviewRepo.FindByID(reviewID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReviewNotFound) {
			return apperrors.NewNotFoundError("review not found")
		}
		return apperrors.InternalError(err)
	}
	if review.AuthorID != actorID && !isAdmin {
		return apperrors.NewForbiddenError("only the author can delete this review")
	}

	if err := s.reviewRepo.Delete(reviewID); err != nil {
		return apperrors.InternalError(err)
	}
	logger.Info("review deleted", "review_id", reviewID, "actor_id", actorID)
	return nil
}

func (s *ReviewServiceImpl) ListReviews(page, pageSize int) (*dto.ReviewListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	reviews, total, err := s.reviewRepo.FindAll(pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.ReviewListResponse{
		Reviews:    make([]*dto.ReviewResponse, 0, len(reviews)),
		TotalCount: total,
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, buildReviewResponse(&reviews[i]))
	}
	return resp, nil
}

func buildReviewResponse(review *models.Review) *dto.ReviewResponse {
	resp := &dto.ReviewResponse{
		ID:           review.ID,
		AuthorID:     review.AuthorID,
		TargetID:     review.TargetID,
		TravelPlanID: review.TravelPlanID,
		Rating:       review.Rating,
		Comment:      review.Comment,
		CreatedAt:    review.CreatedAt,
	}
	if review.Author != nil {
		resp.Author = review.Author.Safe()
	}
	if review.Target != nil {
		resp.Target = review.Target.Safe()
	}
	return resp
}
