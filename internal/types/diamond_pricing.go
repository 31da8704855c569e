package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiamondPricing is derived state: the selling price computed for one
// stone under the store's current margin rules. It is overwritten whenever
// the stone is re-ingested or the rule set for its type is replaced.
type DiamondPricing struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DiamondID    uuid.UUID       `gorm:"type:uuid;column:diamond_id;not null;uniqueIndex:uniq_pricing_diamond_store,priority:1" json:"diamond_id"`
	StoreID      string          `gorm:"column:store_id;not null;uniqueIndex:uniq_pricing_diamond_store,priority:2" json:"store_id"`
	BasePrice    decimal.Decimal `gorm:"column:base_price;type:decimal(15,2);not null" json:"base_price"`
	SellingPrice decimal.Decimal `gorm:"column:selling_price;type:decimal(15,2);not null" json:"selling_price"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
}

func (DiamondPricing) TableName() string { return "diamond_pricing" }
