package db

import (
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.IngestedDiamond{},
		&types.StoneMargin{},
		&types.DiamondPricing{},
		&types.IngestionProcess{},
	); err != nil {
		return err
	}

	// Single-flight gate: at most one active process per process_type.
	// Enforced in the schema so check-and-create is a single atomic INSERT.
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_ingestion_process
		ON ingestion_process (process_type)
		WHERE status IN ('running', 'price_calculation');
	`).Error
}
