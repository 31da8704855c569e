package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/repos/testutil"
	"github.com/purecarat/diamond-backend/internal/types"
)

func newMarginStack(t *testing.T) (MarginService, repos.IngestedDiamondRepo, repos.DiamondPricingRepo) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	marginRepo := repos.NewStoneMarginRepo(gdb, log)
	pricingRepo := repos.NewDiamondPricingRepo(gdb, log)
	diamondRepo := repos.NewIngestedDiamondRepo(gdb, log)
	pricer := NewPricingService(gdb, log, marginRepo, pricingRepo, diamondRepo)
	return NewMarginService(gdb, log, marginRepo, pricer), diamondRepo, pricingRepo
}

func TestReplaceRulesValidation(t *testing.T) {
	svc, _, _ := newMarginStack(t)
	ctx := context.Background()
	storeID := uuid.NewString()

	cases := []struct {
		name      string
		storeID   string
		stoneType string
		ranges    []MarginRange
		wantErr   error
	}{
		{
			name: "missing_store", stoneType: types.StoneTypeLab,
			wantErr: ErrStoreIDRequired,
		},
		{
			name: "bad_stone_type", storeID: storeID, stoneType: "moissanite",
			wantErr: ErrInvalidStoneType,
		},
		{
			name: "bad_unit", storeID: storeID, stoneType: types.StoneTypeLab,
			ranges:  []MarginRange{{Unit: "grams", Start: 0, End: 1, Margin: 10}},
			wantErr: ErrInvalidMarginUnit,
		},
		{
			name: "inverted_range", storeID: storeID, stoneType: types.StoneTypeLab,
			ranges:  []MarginRange{{Unit: types.MarginUnitCarat, Start: 2, End: 1, Margin: 10}},
			wantErr: ErrInvalidMarginRange,
		},
		{
			name: "empty_range", storeID: storeID, stoneType: types.StoneTypeLab,
			ranges:  []MarginRange{{Unit: types.MarginUnitCarat, Start: 1, End: 1, Margin: 10}},
			wantErr: ErrInvalidMarginRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReplaceRules(ctx, tc.storeID, tc.stoneType, tc.ranges)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("ReplaceRules = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReplaceRulesRepricesInventory(t *testing.T) {
	svc, diamondRepo, pricingRepo := newMarginStack(t)
	ctx := context.Background()
	storeID := uuid.NewString()

	d := &types.IngestedDiamond{
		SourceName: "VDB", StoreID: storeID, CertificateNo: "M-1",
		Type: types.StoneTypeLab, Carat: 0.5, Color: "F", Clarity: "VS1", Price: 1000,
	}
	if _, err := diamondRepo.BulkUpsert(ctx, nil, []*types.IngestedDiamond{d}); err != nil {
		t.Fatalf("seed diamond: %v", err)
	}

	n, err := svc.ReplaceRules(ctx, storeID, types.StoneTypeLab, []MarginRange{
		{Unit: types.MarginUnitCarat, Start: 0, End: 1, Margin: 10},
	})
	if err != nil {
		t.Fatalf("ReplaceRules: %v", err)
	}
	if n != 1 {
		t.Fatalf("repriced %d stones, want 1", n)
	}

	row, err := pricingRepo.GetByDiamondID(ctx, nil, d.ID, storeID)
	if err != nil || row == nil {
		t.Fatalf("pricing row missing: %v", err)
	}
	if row.SellingPrice.String() != "1100" {
		t.Fatalf("selling price = %s, want 1100", row.SellingPrice)
	}

	// Replacing the set swaps the tiers wholesale and reprices again.
	if _, err := svc.ReplaceRules(ctx, storeID, types.StoneTypeLab, []MarginRange{
		{Unit: types.MarginUnitCarat, Start: 0, End: 1, Margin: 50},
	}); err != nil {
		t.Fatalf("second ReplaceRules: %v", err)
	}
	row, err = pricingRepo.GetByDiamondID(ctx, nil, d.ID, storeID)
	if err != nil || row == nil {
		t.Fatalf("pricing row missing after replace: %v", err)
	}
	if row.SellingPrice.String() != "1500" {
		t.Fatalf("selling price = %s, want 1500", row.SellingPrice)
	}

	groups, err := svc.ListRules(ctx, storeID)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Markups) != 1 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].StoneType != types.StoneTypeLab || groups[0].Markups[0].Markup != 50 {
		t.Fatalf("old tiers survived the replace: %+v", groups[0])
	}
}

func TestReplaceRulesMixedUnitsKeepStoredOrder(t *testing.T) {
	svc, diamondRepo, pricingRepo := newMarginStack(t)
	ctx := context.Background()
	storeID := uuid.NewString()

	d := &types.IngestedDiamond{
		SourceName: "VDB", StoreID: storeID, CertificateNo: "M-2",
		Type: types.StoneTypeLab, Carat: 1.0, Color: "F", Clarity: "VS1", Price: 1000,
	}
	if _, err := diamondRepo.BulkUpsert(ctx, nil, []*types.IngestedDiamond{d}); err != nil {
		t.Fatalf("seed diamond: %v", err)
	}

	// Both rules contain the stone. The price rule is stored first, so the
	// 50% markup must win over the later carat rule.
	if _, err := svc.ReplaceRules(ctx, storeID, types.StoneTypeLab, []MarginRange{
		{Unit: types.MarginUnitPrice, Start: 0, End: 5000, Margin: 50},
		{Unit: types.MarginUnitCarat, Start: 0, End: 10, Margin: 5},
	}); err != nil {
		t.Fatalf("ReplaceRules: %v", err)
	}
	row, err := pricingRepo.GetByDiamondID(ctx, nil, d.ID, storeID)
	if err != nil || row == nil {
		t.Fatalf("pricing row missing: %v", err)
	}
	if row.SellingPrice.String() != "1500" {
		t.Fatalf("selling price = %s, want 1500 (first stored rule is the 50%% price rule)", row.SellingPrice)
	}

	// Swapping the stored order flips the winner.
	if _, err := svc.ReplaceRules(ctx, storeID, types.StoneTypeLab, []MarginRange{
		{Unit: types.MarginUnitCarat, Start: 0, End: 10, Margin: 5},
		{Unit: types.MarginUnitPrice, Start: 0, End: 5000, Margin: 50},
	}); err != nil {
		t.Fatalf("second ReplaceRules: %v", err)
	}
	row, err = pricingRepo.GetByDiamondID(ctx, nil, d.ID, storeID)
	if err != nil || row == nil {
		t.Fatalf("pricing row missing after swap: %v", err)
	}
	if row.SellingPrice.String() != "1050" {
		t.Fatalf("selling price = %s, want 1050 (carat rule now stored first)", row.SellingPrice)
	}
}

func TestListRulesGroupsByTypeAndUnit(t *testing.T) {
	svc, _, _ := newMarginStack(t)
	ctx := context.Background()
	storeID := uuid.NewString()

	if _, err := svc.ReplaceRules(ctx, storeID, types.StoneTypeLab, []MarginRange{
		{Unit: types.MarginUnitCarat, Start: 0, End: 1, Margin: 10},
		{Unit: types.MarginUnitCarat, Start: 1, End: 5, Margin: 20},
		{Unit: types.MarginUnitPrice, Start: 0, End: 10000, Margin: 5},
	}); err != nil {
		t.Fatalf("ReplaceRules: %v", err)
	}

	groups, err := svc.ListRules(ctx, storeID)
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (carat + price)", len(groups))
	}
	for _, g := range groups {
		if g.Unit == types.MarginUnitCarat {
			if len(g.Markups) != 2 || g.Markups[0].Markup != 10 || g.Markups[1].Markup != 20 {
				t.Fatalf("carat tiers out of order: %+v", g.Markups)
			}
		}
	}

	if _, err := svc.ListRules(ctx, ""); !errors.Is(err, ErrStoreIDRequired) {
		t.Fatal("ListRules without store id should fail")
	}
}
