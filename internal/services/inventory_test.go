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

func TestInventorySearchJoinsSellingPrice(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	storeID := uuid.NewString()

	diamondRepo := repos.NewIngestedDiamondRepo(gdb, log)
	pricingRepo := repos.NewDiamondPricingRepo(gdb, log)
	marginRepo := repos.NewStoneMarginRepo(gdb, log)
	pricer := NewPricingService(gdb, log, marginRepo, pricingRepo, diamondRepo)
	svc := NewInventoryService(gdb, log, diamondRepo, pricingRepo)

	priced := &types.IngestedDiamond{
		SourceName: "VDB", StoreID: storeID, CertificateNo: "I-1",
		Type: types.StoneTypeLab, Carat: 0.5, Color: "F", Clarity: "VS1", Price: 1000,
	}
	unpriced := &types.IngestedDiamond{
		SourceName: "VDB", StoreID: storeID, CertificateNo: "I-2",
		Type: types.StoneTypeLab, Carat: 1.5, Color: "G", Clarity: "VS2", Price: 2000,
	}
	if _, err := diamondRepo.BulkUpsert(ctx, nil, []*types.IngestedDiamond{priced, unpriced}); err != nil {
		t.Fatalf("seed diamonds: %v", err)
	}
	if err := marginRepo.Create(ctx, nil, []*types.StoneMargin{
		{StoreID: storeID, StoneType: types.StoneTypeLab, Unit: types.MarginUnitCarat, RangeStart: 0, RangeEnd: 1, Margin: 10},
	}); err != nil {
		t.Fatalf("seed margins: %v", err)
	}
	// Only the first stone gets a derived price row.
	if _, err := pricer.PriceDiamonds(ctx, nil, []*types.IngestedDiamond{priced}, storeID); err != nil {
		t.Fatalf("price: %v", err)
	}

	result, err := svc.Search(ctx, repos.DiamondFilter{StoreID: storeID, Sort: "carat_asc", Limit: 10})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(result.Diamonds) != 2 {
		t.Fatalf("got %d listings, want 2", len(result.Diamonds))
	}
	if result.Diamonds[0].SellingPrice.String() != "1100" {
		t.Fatalf("priced listing = %s, want 1100", result.Diamonds[0].SellingPrice)
	}
	// Stones the pipeline has not priced yet fall back to the base price.
	if result.Diamonds[1].SellingPrice.String() != "2000" {
		t.Fatalf("unpriced listing = %s, want base 2000", result.Diamonds[1].SellingPrice)
	}
	if result.Pagination.TotalItems != 2 || result.Pagination.TotalPages != 1 || result.Pagination.CurrentPage != 1 {
		t.Fatalf("pagination = %+v", result.Pagination)
	}

	if _, err := svc.Search(ctx, repos.DiamondFilter{}); !errors.Is(err, ErrStoreIDRequired) {
		t.Fatalf("missing store = %v", err)
	}
}
