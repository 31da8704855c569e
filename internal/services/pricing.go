package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/types"
)

// MarginForStone resolves the markup percent for one stone against a
// position-ordered rule slice: the first rule whose half-open range
// contains the unit-appropriate value wins; no match means 0.
func MarginForStone(rules []*types.StoneMargin, stoneType string, price, carat float64) float64 {
	for _, rule := range rules {
		if rule.StoneType != stoneType {
			continue
		}
		value := carat
		if rule.Unit == types.MarginUnitPrice {
			value = price
		}
		if rule.Contains(value) {
			return rule.Margin
		}
	}
	return 0
}

// SellingPrice applies a markup percent to a base price with decimal
// rounding to 2 places. The result is shown as currency, so float drift is
// not acceptable here.
func SellingPrice(basePrice, marginPct float64) decimal.Decimal {
	base := decimal.NewFromFloat(basePrice)
	margin := decimal.NewFromFloat(marginPct)
	return base.Add(base.Mul(margin).Div(decimal.NewFromInt(100))).Round(2)
}

// PricingService writes the derived selling-price rows for ingested
// stones. It is shared by the ingestion finalize step and margin-rule
// replacement.
type PricingService interface {
	PriceDiamonds(ctx context.Context, tx *gorm.DB, diamonds []*types.IngestedDiamond, storeID string) (int, error)
	ReapplyForType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) (int, error)
}

type pricingService struct {
	db       *gorm.DB
	log      *logger.Logger
	margins  repos.StoneMarginRepo
	pricing  repos.DiamondPricingRepo
	diamonds repos.IngestedDiamondRepo
}

func NewPricingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	margins repos.StoneMarginRepo,
	pricing repos.DiamondPricingRepo,
	diamonds repos.IngestedDiamondRepo,
) PricingService {
	return &pricingService{
		db:       db,
		log:      baseLog.With("service", "PricingService"),
		margins:  margins,
		pricing:  pricing,
		diamonds: diamonds,
	}
}

func (s *pricingService) PriceDiamonds(ctx context.Context, tx *gorm.DB, diamonds []*types.IngestedDiamond, storeID string) (int, error) {
	if len(diamonds) == 0 {
		return 0, nil
	}
	rules, err := s.margins.ListByStore(ctx, tx, storeID)
	if err != nil {
		return 0, err
	}
	rows := make([]*types.DiamondPricing, 0, len(diamonds))
	for _, d := range diamonds {
		margin := MarginForStone(rules, d.Type, d.Price, d.Carat)
		rows = append(rows, &types.DiamondPricing{
			DiamondID:    d.ID,
			StoreID:      storeID,
			BasePrice:    decimal.NewFromFloat(d.Price).Round(2),
			SellingPrice: SellingPrice(d.Price, margin),
		})
	}
	if err := s.pricing.BulkUpsert(ctx, tx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *pricingService) ReapplyForType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) (int, error) {
	diamonds, err := s.diamonds.ListByStoreAndType(ctx, tx, storeID, stoneType)
	if err != nil {
		return 0, err
	}
	return s.PriceDiamonds(ctx, tx, diamonds, storeID)
}
