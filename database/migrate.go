package database

import (
	"travelbuddy_backend/internal/models"

	"gorm.io/gorm"
)

// Migrate brings the schema up to date. uuid_generate_v4 needs the
// uuid-ossp extension, so that goes first.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&models.User{},
		&models.TravelPlan{},
		&models.TravelPlanParticipant{},
		&models.Review{},
		&models.Payment{},
	)
}
