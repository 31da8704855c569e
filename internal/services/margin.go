package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/types"
)

var validStoneTypes = map[string]struct{}{
	types.StoneTypeNatural:  {},
	types.StoneTypeLab:      {},
	types.StoneTypeGemstone: {},
}

// MarginRange is one incoming markup tier for a rule replacement.
type MarginRange struct {
	Unit   string  `json:"unit"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Margin float64 `json:"margin"`
}

// MarginGroup is the grouped read shape: all markups of one
// (stone_type, unit) pair in stored order.
type MarginGroup struct {
	StoneType string   `json:"stone_type"`
	Unit      string   `json:"unit"`
	Markups   []Markup `json:"markups"`
}

type Markup struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Markup float64 `json:"markup"`
}

// MarginService replaces margin rule sets and keeps derived selling
// prices in sync with them.
type MarginService interface {
	// ReplaceRules atomically swaps the full rule set for a
	// (store_id, stone_type) and recomputes selling prices for every
	// stored stone of that type. Returns the number of repriced stones.
	ReplaceRules(ctx context.Context, storeID, stoneType string, ranges []MarginRange) (int, error)
	ListRules(ctx context.Context, storeID string) ([]MarginGroup, error)
}

type marginService struct {
	db      *gorm.DB
	log     *logger.Logger
	margins repos.StoneMarginRepo
	pricing PricingService
}

func NewMarginService(db *gorm.DB, baseLog *logger.Logger, margins repos.StoneMarginRepo, pricing PricingService) MarginService {
	return &marginService{
		db:      db,
		log:     baseLog.With("service", "MarginService"),
		margins: margins,
		pricing: pricing,
	}
}

func (s *marginService) ReplaceRules(ctx context.Context, storeID, stoneType string, ranges []MarginRange) (int, error) {
	if storeID == "" {
		return 0, ErrStoreIDRequired
	}
	if _, ok := validStoneTypes[stoneType]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStoneType, stoneType)
	}
	for _, r := range ranges {
		if r.Unit != types.MarginUnitCarat && r.Unit != types.MarginUnitPrice {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMarginUnit, r.Unit)
		}
		if r.Start >= r.End {
			return 0, fmt.Errorf("%w: [%v, %v)", ErrInvalidMarginRange, r.Start, r.End)
		}
	}

	rules := make([]*types.StoneMargin, 0, len(ranges))
	for i, r := range ranges {
		rules = append(rules, &types.StoneMargin{
			StoreID:    storeID,
			StoneType:  stoneType,
			Unit:       r.Unit,
			RangeStart: r.Start,
			RangeEnd:   r.End,
			Margin:     r.Margin,
			Position:   i,
		})
	}

	repriced := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.margins.DeleteByStoreAndType(ctx, tx, storeID, stoneType); err != nil {
			return fmt.Errorf("delete old margin rules: %w", err)
		}
		if err := s.margins.Create(ctx, tx, rules); err != nil {
			return fmt.Errorf("insert margin rules: %w", err)
		}
		n, err := s.pricing.ReapplyForType(ctx, tx, storeID, stoneType)
		if err != nil {
			return fmt.Errorf("reprice %s stones: %w", stoneType, err)
		}
		repriced = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("Replaced margin rules",
		"store_id", storeID, "stone_type", stoneType,
		"rules", len(rules), "repriced", repriced)
	return repriced, nil
}

func (s *marginService) ListRules(ctx context.Context, storeID string) ([]MarginGroup, error) {
	if storeID == "" {
		return nil, ErrStoreIDRequired
	}
	rules, err := s.margins.ListByStore(ctx, nil, storeID)
	if err != nil {
		return nil, err
	}
	var groups []MarginGroup
	for _, rule := range rules {
		idx := -1
		for i := range groups {
			if groups[i].StoneType == rule.StoneType && groups[i].Unit == rule.Unit {
				idx = i
				break
			}
		}
		if idx == -1 {
			groups = append(groups, MarginGroup{StoneType: rule.StoneType, Unit: rule.Unit})
			idx = len(groups) - 1
		}
		groups[idx].Markups = append(groups[idx].Markups, Markup{
			Start:  rule.RangeStart,
			End:    rule.RangeEnd,
			Markup: rule.Margin,
		})
	}
	return groups, nil
}
