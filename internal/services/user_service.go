package services

import (
	"encoding/json"

	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/pkg/apperrors"
)

type UserService interface {
	GetUser(userID string) (*dto.UserResponse, error)
	UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)

	// Admin operations
	ListUsers(criteria dto.UserSearchCriteria) (*dto.UserListResponse, error)
	UpdateRole(adminID, userID string, role models.UserRole) error
	DeleteUser(adminID, userID string) error
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) GetUser(userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return buildUserResponse(user), nil
}

func (s *UserServiceImpl) UpdateProfile(userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.CurrentLocation != nil {
		user.CurrentLocation = *req.CurrentLocation
	}
	if req.TravelInterests != nil {
		raw, err := json.Marshal(req.TravelInterests)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.TravelInterests = raw
	}
	if req.VisitedCountries != nil {
		raw, err := json.Marshal(req.VisitedCountries)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		user.VisitedCountries = raw
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildUserResponse(user), nil
}

// ---------------- Admin Operations ----------------

func (s *UserServiceImpl) ListUsers(criteria dto.UserSearchCriteria) (*dto.UserListResponse, error) {
	page, pageSize := normalizePage(criteria.Page, criteria.PageSize)

	users, total, err := s.userRepo.FindWithFilter(repositories.UserFilter{
		Role:      models.UserRole(criteria.Role),
		IsPremium: criteria.IsPremium,
		Search:    criteria.Search,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.UserListResponse{
		Users:      make([]*dto.UserResponse, 0, len(users)),
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}
	for i := range users {
		resp.Users = append(resp.Users, buildUserResponse(&users[i]))
	}
	return resp, nil
}

func (s *UserServiceImpl) UpdateRole(adminID, userID string, role models.UserRole) error {
	if !models.ValidRole(role) {
		return apperrors.ErrInvalidUserRole
	}
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}
	if err := s.userRepo.UpdateRole(userID, role); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user not found")
		}
		return apperrors.InternalError(err)
	}
	logger.Info("user role updated", "admin_id", adminID, "user_id", userID, "role", role)
	return nil
}

func (s *UserServiceImpl) DeleteUser(adminID, userID string) error {
	if adminID == userID {
		return apperrors.ErrCannotModifySelf
	}
	if err := s.userRepo.Delete(userID); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user not found")
		}
		return apperrors.InternalError(err)
	}
	logger.Info("user deleted", "admin_id", adminID, "user_id", userID)
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
