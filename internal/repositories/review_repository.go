package repositories

import (
	"errors"

	"travelbuddy_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("review already exists for this trip")
)

type ReviewRepository interface {
	// Review operations
	Create(review *models.Review) error
	FindByID(id string) (*models.Review, error)
	FindByTarget(targetID string) ([]models.Review, error)
	FindByAuthor(authorID string) ([]models.Review, error)
	FindByPlan(planID string) ([]models.Review, error)
	FindByPlanAndAuthor(planID, authorID, targetID string) (*models.Review, error)
	Update(review *models.Review) error
	Delete(id string) error

	// Rating operations
	AverageRating(targetID string) (float64, int64, error)

	// Admin operations
	FindAll(limit, offset int) ([]models.Review, int64, error)
}

type ReviewRepositoryImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &ReviewRepositoryImpl{db: db}
}

func (r *ReviewRepositoryImpl) Create(review *models.Review) error {
	if review.TravelPlanID != nil {
		var existing models.Review
		err := r.db.Where("travel_plan_id = ? AND author_id = ? AND target_id = ?",
			*review.TravelPlanID, review.AuthorID, review.TargetID).
			First(&existing).Error
		if err == nil {
			return ErrReviewAlreadyExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return r.db.Create(review).Error
}

func (r *ReviewRepositoryImpl) FindByID(id string) (*models.Review, error) {
	var review models.Review
	err := r.db.Preload("Author").Preload("Target").Preload("TravelPlan").
		First(&review, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) FindByTarget(targetID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Preload("Author").Preload("TravelPlan").
		Where("target_id = ?", targetID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) FindByAuthor(authorID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Preload("Target").Preload("TravelPlan").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) FindByPlan(planID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.Preload("Author").Preload("Target").
		Where("travel_plan_id = ?", planID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepositoryImpl) FindByPlanAndAuthor(planID, authorID, targetID string) (*models.Review, error) {
	var review models.Review
	err := r.db.Where("travel_plan_id = ? AND author_id = ? AND target_id = ?",
		planID, authorID, targetID).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) Update(review *models.Review) error {
	return r.db.Save(review).Error
}

func (r *ReviewRepositoryImpl) Delete(id string) error {
	result := r.db.Delete(&models.Review{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepositoryImpl) AverageRating(targetID string) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("target_id = ?", targetID).
		Scan(&result).Error
	return result.Avg, result.Count, err
}

func (r *ReviewRepositoryImpl) FindAll(limit, offset int) ([]models.Review, int64, error) {
	var total int64
	if err := r.db.Model(&models.Review{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []models.Review
	err := r.db.Preload("Author").Preload("Target").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&reviews).Error
	return reviews, total, err
}
