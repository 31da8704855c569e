package types

import (
	"time"

	"github.com/google/uuid"
)

// Canonical stone types and coercion enums shared by every ingestion source.
const (
	StoneTypeNatural  = "natural"
	StoneTypeLab      = "lab"
	StoneTypeGemstone = "gemstone"
)

// IngestedDiamond is the vendor-agnostic inventory record. One row per
// physical stone, keyed by (source_name, store_id, certificate_no).
type IngestedDiamond struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceName      string    `gorm:"column:source_name;not null;uniqueIndex:uniq_source_store_cert,priority:1" json:"source_name"`
	SourceDiamondID string    `gorm:"column:source_diamond_id" json:"source_diamond_id"`
	SourceStockID   string    `gorm:"column:source_stock_id" json:"source_stock_id"`
	StoreID         string    `gorm:"column:store_id;not null;index;uniqueIndex:uniq_source_store_cert,priority:2" json:"store_id"`
	CertificateNo   string    `gorm:"column:certificate_no;not null;uniqueIndex:uniq_source_store_cert,priority:3" json:"certificate_no"`

	Lab          string  `gorm:"column:lab" json:"lab"`
	Type         string  `gorm:"column:type;not null;index" json:"type"` // natural|lab|gemstone
	Carat        float64 `gorm:"column:carat;not null" json:"carat"`
	Color        string  `gorm:"column:color;not null" json:"color"`   // D..J
	Clarity      string  `gorm:"column:clarity;not null" json:"clarity"` // FL..I3
	Cut          string  `gorm:"column:cut" json:"cut"`
	Shape        string  `gorm:"column:shape" json:"shape"`
	Polish       string  `gorm:"column:polish" json:"polish"`
	Symmetry     string  `gorm:"column:symmetry" json:"symmetry"`
	Fluorescence string  `gorm:"column:fluorescence" json:"fluorescence"`
	TablePct     float64 `gorm:"column:table_pct" json:"table_pct"`
	DepthPct     float64 `gorm:"column:depth_pct" json:"depth_pct"`
	Girdle       string  `gorm:"column:girdle" json:"girdle"`
	Measurements string  `gorm:"column:measurements" json:"measurements"`
	Treatment    string  `gorm:"column:treatment" json:"treatment"`
	Culet        string  `gorm:"column:culet" json:"culet"`
	BGM          string  `gorm:"column:bgm" json:"bgm"`

	Price       float64 `gorm:"column:price;not null" json:"price"` // vendor base price
	Vendor      string  `gorm:"column:vendor" json:"vendor"`
	IsAvailable bool    `gorm:"column:is_available;not null;default:true" json:"is_available"`
	Origin      string  `gorm:"column:origin" json:"origin"`
	Location    string  `gorm:"column:location" json:"location"`
	Description string  `gorm:"column:description" json:"description"`
	ImageSource string  `gorm:"column:image_source" json:"image_source"`
	VideoSource string  `gorm:"column:video_source" json:"video_source"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (IngestedDiamond) TableName() string { return "ingested_diamond" }
