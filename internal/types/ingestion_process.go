package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProcessTypeDiamondIngestion = "diamond-ingestion"

	ProcessStatusRunning          = "running"
	ProcessStatusPriceCalculation = "price_calculation"
	ProcessStatusCompleted        = "completed"
	ProcessStatusFailed           = "failed"
)

// IngestionProcess is the run-level ledger polled by clients. At most one
// row per process_type may be in an active status (running or
// price_calculation); that invariant is enforced by a partial unique index,
// not by application-side checks.
type IngestionProcess struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProcessType    string         `gorm:"column:process_type;not null;index" json:"process_type"`
	ProcessSubType string         `gorm:"column:process_sub_type" json:"process_sub_type"` // vendor name
	Origin         string         `gorm:"column:origin;not null" json:"origin"`
	StoreID        string         `gorm:"column:store_id" json:"store_id"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	StartedAt      time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	CompletedAt    *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	TotalItems     int            `gorm:"column:total_items;not null;default:0" json:"total_items"`
	ProcessedItems int            `gorm:"column:processed_items;not null;default:0" json:"processed_items"`
	Logs           datatypes.JSON `gorm:"type:jsonb;column:logs" json:"logs"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (IngestionProcess) TableName() string { return "ingestion_process" }

// Active reports whether the process still holds the single-flight gate.
func (p IngestionProcess) Active() bool {
	return p.Status == ProcessStatusRunning || p.Status == ProcessStatusPriceCalculation
}

// ProgressPercentage is computed at read time and never stored.
func (p IngestionProcess) ProgressPercentage() float64 {
	if p.TotalItems <= 0 {
		return 0
	}
	return float64(p.ProcessedItems) / float64(p.TotalItems) * 100
}

// ProcessLogEntry is one structured error recorded on a run.
type ProcessLogEntry struct {
	Page  int    `json:"page,omitempty"`
	Error string `json:"error"`
}
