package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/repos/testutil"
	"github.com/purecarat/diamond-backend/internal/types"
)

func caratRule(stoneType string, start, end, margin float64) *types.StoneMargin {
	return &types.StoneMargin{
		StoneType:  stoneType,
		Unit:       types.MarginUnitCarat,
		RangeStart: start,
		RangeEnd:   end,
		Margin:     margin,
	}
}

func priceRule(stoneType string, start, end, margin float64) *types.StoneMargin {
	return &types.StoneMargin{
		StoneType:  stoneType,
		Unit:       types.MarginUnitPrice,
		RangeStart: start,
		RangeEnd:   end,
		Margin:     margin,
	}
}

func TestMarginForStone(t *testing.T) {
	rules := []*types.StoneMargin{
		caratRule(types.StoneTypeLab, 0, 1, 10),
		caratRule(types.StoneTypeLab, 0, 5, 20), // overlaps the first; never wins below 1ct
		priceRule(types.StoneTypeNatural, 0, 2000, 30),
	}

	cases := []struct {
		name      string
		stoneType string
		price     float64
		carat     float64
		want      float64
	}{
		{name: "first_match_wins", stoneType: types.StoneTypeLab, price: 1000, carat: 0.5, want: 10},
		{name: "second_tier", stoneType: types.StoneTypeLab, price: 1000, carat: 2.3, want: 20},
		{name: "range_start_inclusive", stoneType: types.StoneTypeLab, price: 1000, carat: 0, want: 10},
		{name: "range_end_exclusive", stoneType: types.StoneTypeLab, price: 1000, carat: 1, want: 20},
		{name: "price_unit", stoneType: types.StoneTypeNatural, price: 1999.99, carat: 3, want: 30},
		{name: "price_unit_end_exclusive", stoneType: types.StoneTypeNatural, price: 2000, carat: 3, want: 0},
		{name: "no_rule_for_type", stoneType: types.StoneTypeGemstone, price: 100, carat: 1, want: 0},
		{name: "outside_all_ranges", stoneType: types.StoneTypeLab, price: 1000, carat: 9, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MarginForStone(rules, tc.stoneType, tc.price, tc.carat)
			if got != tc.want {
				t.Fatalf("MarginForStone = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMarginForStoneMixedUnitsStoredOrder(t *testing.T) {
	// Both rules contain the stone; the earlier stored rule wins even
	// though its unit differs from the later one's.
	rules := []*types.StoneMargin{
		priceRule(types.StoneTypeLab, 0, 5000, 50),
		caratRule(types.StoneTypeLab, 0, 10, 5),
	}
	if got := MarginForStone(rules, types.StoneTypeLab, 1000, 1.0); got != 50 {
		t.Fatalf("MarginForStone = %v, want 50 (first stored rule)", got)
	}

	reversed := []*types.StoneMargin{rules[1], rules[0]}
	if got := MarginForStone(reversed, types.StoneTypeLab, 1000, 1.0); got != 5 {
		t.Fatalf("MarginForStone = %v, want 5 (first stored rule)", got)
	}
}

func TestSellingPrice(t *testing.T) {
	cases := []struct {
		name   string
		base   float64
		margin float64
		want   string
	}{
		{name: "ten_percent", base: 1000, margin: 10, want: "1100"},
		{name: "zero_margin", base: 423.456, margin: 0, want: "423.46"},
		{name: "rounds_half_up", base: 999.99, margin: 7.5, want: "1074.99"},
		{name: "small_base", base: 0.01, margin: 50, want: "0.02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SellingPrice(tc.base, tc.margin)
			if got.String() != tc.want {
				t.Fatalf("SellingPrice(%v, %v) = %s, want %s", tc.base, tc.margin, got, tc.want)
			}
		})
	}
}

func TestSellingPriceDeterministic(t *testing.T) {
	a := SellingPrice(1234.56, 12.5)
	b := SellingPrice(1234.56, 12.5)
	if !a.Equal(b) {
		t.Fatalf("repeated computation diverged: %s vs %s", a, b)
	}
}

func TestPricingServicePriceDiamonds(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	marginRepo := repos.NewStoneMarginRepo(gdb, log)
	pricingRepo := repos.NewDiamondPricingRepo(gdb, log)
	diamondRepo := repos.NewIngestedDiamondRepo(gdb, log)
	svc := NewPricingService(gdb, log, marginRepo, pricingRepo, diamondRepo)

	storeID := uuid.NewString()
	rules := []*types.StoneMargin{
		{StoreID: storeID, StoneType: types.StoneTypeLab, Unit: types.MarginUnitCarat, RangeStart: 0, RangeEnd: 1, Margin: 10, Position: 0},
	}
	if err := marginRepo.Create(ctx, tx, rules); err != nil {
		t.Fatalf("seed margins: %v", err)
	}

	priced := &types.IngestedDiamond{
		SourceName: "VDB", StoreID: storeID, CertificateNo: "C-1",
		Type: types.StoneTypeLab, Carat: 0.5, Color: "F", Clarity: "VS1", Price: 1000,
	}
	unmatched := &types.IngestedDiamond{
		SourceName: "VDB", StoreID: storeID, CertificateNo: "C-2",
		Type: types.StoneTypeLab, Carat: 2.0, Color: "G", Clarity: "VS2", Price: 500,
	}
	if _, err := diamondRepo.BulkUpsert(ctx, tx, []*types.IngestedDiamond{priced, unmatched}); err != nil {
		t.Fatalf("seed diamonds: %v", err)
	}

	n, err := svc.PriceDiamonds(ctx, tx, []*types.IngestedDiamond{priced, unmatched}, storeID)
	if err != nil {
		t.Fatalf("PriceDiamonds: %v", err)
	}
	if n != 2 {
		t.Fatalf("priced %d rows, want 2", n)
	}

	row, err := pricingRepo.GetByDiamondID(ctx, tx, priced.ID, storeID)
	if err != nil || row == nil {
		t.Fatalf("pricing row missing: %v", err)
	}
	if row.SellingPrice.String() != "1100" {
		t.Fatalf("selling price = %s, want 1100", row.SellingPrice)
	}

	row, err = pricingRepo.GetByDiamondID(ctx, tx, unmatched.ID, storeID)
	if err != nil || row == nil {
		t.Fatalf("pricing row missing: %v", err)
	}
	if !row.SellingPrice.Equal(row.BasePrice) {
		t.Fatalf("no-match stone should sell at base: %s vs %s", row.SellingPrice, row.BasePrice)
	}
}

func TestPricingServiceIdempotentReapply(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	marginRepo := repos.NewStoneMarginRepo(gdb, log)
	pricingRepo := repos.NewDiamondPricingRepo(gdb, log)
	diamondRepo := repos.NewIngestedDiamondRepo(gdb, log)
	svc := NewPricingService(gdb, log, marginRepo, pricingRepo, diamondRepo)

	storeID := uuid.NewString()
	if err := marginRepo.Create(ctx, tx, []*types.StoneMargin{
		{StoreID: storeID, StoneType: types.StoneTypeNatural, Unit: types.MarginUnitPrice, RangeStart: 0, RangeEnd: 5000, Margin: 25},
	}); err != nil {
		t.Fatalf("seed margins: %v", err)
	}
	d := &types.IngestedDiamond{
		SourceName: "Aarush", StoreID: storeID, CertificateNo: "C-3",
		Type: types.StoneTypeNatural, Carat: 1.1, Color: "D", Clarity: "IF", Price: 3333.33,
	}
	if _, err := diamondRepo.BulkUpsert(ctx, tx, []*types.IngestedDiamond{d}); err != nil {
		t.Fatalf("seed diamond: %v", err)
	}

	if _, err := svc.ReapplyForType(ctx, tx, storeID, types.StoneTypeNatural); err != nil {
		t.Fatalf("first reapply: %v", err)
	}
	first, err := pricingRepo.GetByDiamondID(ctx, tx, d.ID, storeID)
	if err != nil || first == nil {
		t.Fatalf("pricing row missing: %v", err)
	}

	if _, err := svc.ReapplyForType(ctx, tx, storeID, types.StoneTypeNatural); err != nil {
		t.Fatalf("second reapply: %v", err)
	}
	second, err := pricingRepo.GetByDiamondID(ctx, tx, d.ID, storeID)
	if err != nil || second == nil {
		t.Fatalf("pricing row missing after reapply: %v", err)
	}
	if !first.SellingPrice.Equal(second.SellingPrice) {
		t.Fatalf("reapply changed price: %s vs %s", first.SellingPrice, second.SellingPrice)
	}
}
