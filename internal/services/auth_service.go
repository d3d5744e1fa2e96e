package services

import (
	"encoding/json"
	"time"

	"travelbuddy_backend/internal/auth"
	"travelbuddy_backend/internal/logger"
	"travelbuddy_backend/internal/models"
	"travelbuddy_backend/internal/repositories"
	"travelbuddy_backend/internal/services/dto"
	"travelbuddy_backend/pkg/apperrors"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
	ChangePassword(userID string, req *dto.ChangePasswordRequest) error
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	tokenTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, tokens *auth.TokenManager, tokenTTLMinutes int) AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		tokenTTL: time.Duration(tokenTTLMinutes) * time.Minute,
	}
}

func (s *AuthServiceImpl) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         models.UserRoleUser,
	}

	if err := s.userRepo.Create(user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return s.issueToken(user)
}

func (s *AuthServiceImpl) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *AuthServiceImpl) ChangePassword(userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.NewNotFoundError("user not found")
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}
	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("password changed", "user_id", userID)
	return nil
}

func (s *AuthServiceImpl) issueToken(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(s.tokenTTL),
		User:        buildUserResponse(user),
	}, nil
}

// buildUserResponse maps a user row to its API shape. Entitlement flags
// are computed on read so an expired subscription never reports premium.
func buildUserResponse(user *models.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Role:             string(user.Role),
		Bio:              user.Bio,
		ProfileImage:     user.ProfileImage,
		Phone:            user.Phone,
		CurrentLocation:  user.CurrentLocation,
		IsPremium:        user.PremiumActive(time.Now()),
		PremiumExpiresAt: user.PremiumExpiresAt,
		IsVerifiedBadge:  user.IsVerifiedBadge,
		CreatedAt:        user.CreatedAt,
	}
	if len(user.TravelInterests) > 0 {
		_ = json.Unmarshal(user.TravelInterests, &resp.TravelInterests)
	}
	if len(user.VisitedCountries) > 0 {
		_ = json.Unmarshal(user.VisitedCountries, &resp.VisitedCountries)
	}
	return resp
}
