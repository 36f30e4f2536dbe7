package database

import (
	"fmt"

	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates every table and installs the constraints AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := EnsureConstraints(db); err != nil {
		return fmt.Errorf("ensure constraints: %w", err)
	}
	return nil
}
