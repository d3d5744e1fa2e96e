package repositories

import (
	"errors"
	"strings"
	"time"

	"travelbuddy_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound        = errors.New("travel plan not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAlreadyJoined       = errors.New("join request already exists for this plan")
)

type TravelPlanRepository interface {
	// Plan operations
	Create(plan *models.TravelPlan) error
	FindByID(id string) (*models.TravelPlan, error)
	FindByHost(hostID string) ([]models.TravelPlan, error)
	Update(plan *models.TravelPlan) error
	Delete(id string) error
	FindWithFilter(criteria PlanFilter) ([]models.TravelPlan, int64, error)
	FindMatches(criteria MatchCriteria) ([]models.TravelPlan, error)

	// Participant operations
	CreateParticipant(p *models.TravelPlanParticipant) error
	FindParticipant(planID, userID string) (*models.TravelPlanParticipant, error)
	FindParticipantByID(id string) (*models.TravelPlanParticipant, error)
	FindParticipants(planID string) ([]models.TravelPlanParticipant, error)
	UpdateParticipantStatus(id string, status models.ParticipantStatus, respondedAt time.Time) error
	FindPlansJoinedBy(userID string, statuses []models.ParticipantStatus) ([]models.TravelPlanParticipant, error)
	HasAcceptedParticipant(planID, userID string) (bool, error)
}

type PlanFilter struct {
	Destination string
	TravelType  models.TravelType
	DateFrom    *time.Time
	DateTo      *time.Time
	BudgetMin   *int64
	BudgetMax   *int64
	Search      string
	HostID      string
	Visibility  models.PlanVisibility
	Limit       int
	Offset      int
}

type MatchCriteria struct {
	Destination string
	DateFrom    *time.Time
	DateTo      *time.Time
	TravelType  models.TravelType
	BudgetMin   *int64
	BudgetMax   *int64
	ExcludeHost string
	Limit       int
}

type TravelPlanRepositoryImpl struct {
	db *gorm.DB
}

func NewTravelPlanRepository(db *gorm.DB) TravelPlanRepository {
	return &TravelPlanRepositoryImpl{db: db}
}

// ---------------- Plan Operations ----------------

func (r *TravelPlanRepositoryImpl) Create(plan *models.TravelPlan) error {
	return r.db.Create(plan).Error
}

func (r *TravelPlanRepositoryImpl) FindByID(id string) (*models.TravelPlan, error) {
	var plan models.TravelPlan
	err := r.db.Preload("Host").Preload("Participants").Preload("Participants.User").
		First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *TravelPlanRepositoryImpl) FindByHost(hostID string) ([]models.TravelPlan, error) {
	var plans []models.TravelPlan
	err := r.db.Preload("Participants").Preload("Participants.User").
		Where("host_id = ?", hostID).
		Order("start_date ASC").
		Find(&plans).Error
	return plans, err
}

func (r *TravelPlanRepositoryImpl) Update(plan *models.TravelPlan) error {
	return r.db.Save(plan).Error
}

func (r *TravelPlanRepositoryImpl) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.TravelPlanParticipant{}, "travel_plan_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.TravelPlan{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPlanNotFound
		}
		return nil
	})
}

func (r *TravelPlanRepositoryImpl) FindWithFilter(criteria PlanFilter) ([]models.TravelPlan, int64, error) {
	query := r.db.Model(&models.TravelPlan{})

	if criteria.Destination != "" {
		query = query.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(criteria.Destination)+"%")
	}
	if criteria.TravelType != "" {
		query = query.Where("travel_type = ?", criteria.TravelType)
	}
	if criteria.DateFrom != nil {
		query = query.Where("start_date >= ?", *criteria.DateFrom)
	}
	if criteria.DateTo != nil {
		query = query.Where("start_date <= ?", *criteria.DateTo)
	}
	if criteria.BudgetMin != nil {
		query = query.Where("budget_max IS NULL OR budget_max >= ?", *criteria.BudgetMin)
	}
	if criteria.BudgetMax != nil {
		query = query.Where("budget_min IS NULL OR budget_min <= ?", *criteria.BudgetMax)
	}
	if criteria.Search != "" {
		term := "%" + strings.ToLower(criteria.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(destination) LIKE ? OR LOWER(description) LIKE ?",
			term, term, term)
	}
	if criteria.HostID != "" {
		query = query.Where("host_id = ?", criteria.HostID)
	}
	if criteria.Visibility != "" {
		query = query.Where("visibility = ?", criteria.Visibility)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var plans []models.TravelPlan
	err := query.Preload("Host").
		Order("start_date ASC").
		Limit(criteria.Limit).Offset(criteria.Offset).
		Find(&plans).Error
	return plans, total, err
}

func (r *TravelPlanRepositoryImpl) FindMatches(criteria MatchCriteria) ([]models.TravelPlan, error) {
	query := r.db.Model(&models.TravelPlan{}).
		Where("visibility = ?", models.VisibilityPublic)

	if criteria.Destination != "" {
		query = query.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(criteria.Destination)+"%")
	}
	if criteria.DateFrom != nil {
		query = query.Where("end_date >= ?", *criteria.DateFrom)
	}
	if criteria.DateTo != nil {
		query = query.Where("start_date <= ?", *criteria.DateTo)
	}
	if criteria.TravelType != "" {
		query = query.Where("travel_type = ?", criteria.TravelType)
	}
	if criteria.BudgetMin != nil {
		query = query.Where("budget_max IS NULL OR budget_max >= ?", *criteria.BudgetMin)
	}
	if criteria.BudgetMax != nil {
		query = query.Where("budget_min IS NULL OR budget_min <= ?", *criteria.BudgetMax)
	}
	if criteria.ExcludeHost != "" {
		query = query.Where("host_id <> ?", criteria.ExcludeHost)
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = 20
	}

	var plans []models.TravelPlan
	err := query.Preload("Host").
		Order("start_date ASC").
		Limit(limit).
		Find(&plans).Error
	return plans, err
}

// ---------------- Participant Operations ----------------

func (r *TravelPlanRepositoryImpl) CreateParticipant(p *models.TravelPlanParticipant) error {
	var count int64
	if err := r.db.Model(&models.TravelPlanParticipant{}).
		Where("travel_plan_id = ? AND user_id = ?", p.TravelPlanID, p.UserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyJoined
	}
	return r.db.Create(p).Error
}

func (r *TravelPlanRepositoryImpl) FindParticipant(planID, userID string) (*models.TravelPlanParticipant, error) {
	var p models.TravelPlanParticipant
	err := r.db.Where("travel_plan_id = ? AND user_id = ?", planID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *TravelPlanRepositoryImpl) FindParticipantByID(id string) (*models.TravelPlanParticipant, error) {
	var p models.TravelPlanParticipant
	err := r.db.Preload("User").Preload("TravelPlan").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *TravelPlanRepositoryImpl) FindParticipants(planID string) ([]models.TravelPlanParticipant, error) {
	var participants []models.TravelPlanParticipant
	err := r.db.Preload("User").
		Where("travel_plan_id = ?", planID).
		Order("requested_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *TravelPlanRepositoryImpl) UpdateParticipantStatus(id string, status models.ParticipantStatus, respondedAt time.Time) error {
	result := r.db.Model(&models.TravelPlanParticipant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *TravelPlanRepositoryImpl) FindPlansJoinedBy(userID string, statuses []models.ParticipantStatus) ([]models.TravelPlanParticipant, error) {
	query := r.db.Preload("TravelPlan").Preload("TravelPlan.Host").
		Where("user_id = ?", userID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var participants []models.TravelPlanParticipant
	err := query.Order("requested_at DESC").Find(&participants).Error
	return participants, err
}

func (r *TravelPlanRepositoryImpl) HasAcceptedParticipant(planID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.TravelPlanParticipant{}).
		Where("travel_plan_id = ? AND user_id = ? AND status = ?", planID, userID, models.ParticipantStatusAccepted).
		Count(&count).Error
	return count > 0, err
}
