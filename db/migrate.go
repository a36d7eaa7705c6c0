package db

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/safein/safein-server/models"
)

// Migrate runs AutoMigrate for every model. Init must have been called.
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialised")
	}

	err := DB.AutoMigrate(
		&models.Company{},
		&models.Employee{},
		&models.Visitor{},
		&models.Appointment{},
	)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Msg("migrations applied successfully")
	return nil
}
