package database

import (
	"fmt"

	"github.com/yeremiapane/reservation-app/models"
	"github.com/yeremiapane/reservation-app/utils"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Admin{},
		&models.Customer{},
		&models.Restaurant{},
		&models.Table{},
		&models.Reservation{},
		&models.ReservationHistory{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}
	utils.InfoLogger.WithField("dialect", db.Dialector.Name()).Info("AutoMigrate completed")
	return nil
}
