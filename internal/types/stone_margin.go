package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	MarginUnitCarat = "carat"
	MarginUnitPrice = "price"
)

// StoneMargin is one tiered markup rule. The half-open range
// [RangeStart, RangeEnd) is compared against carat or price depending on
// Unit. Overlapping ranges are allowed; resolution is first-match-wins in
// Position order.
type StoneMargin struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID    string    `gorm:"column:store_id;not null;index:idx_margin_store_type,priority:1" json:"store_id"`
	StoneType  string    `gorm:"column:stone_type;not null;index:idx_margin_store_type,priority:2" json:"stone_type"` // natural|lab|gemstone
	Unit       string    `gorm:"column:unit;not null" json:"unit"`                                                    // carat|price
	RangeStart float64   `gorm:"column:range_start;not null" json:"range_start"`
	RangeEnd   float64   `gorm:"column:range_end;not null" json:"range_end"`
	Margin     float64   `gorm:"column:margin;not null" json:"margin"` // percent
	Position   int       `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (StoneMargin) TableName() string { return "stone_margin" }

// Contains reports whether the unit-appropriate value falls inside the
// rule's half-open range.
func (m StoneMargin) Contains(value float64) bool {
	return value >= m.RangeStart && value < m.RangeEnd
}
