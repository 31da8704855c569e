package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/types"
)

// DiamondListing is one inventory row joined with its derived selling
// price for read-side responses.
type DiamondListing struct {
	*types.IngestedDiamond
	SellingPrice decimal.Decimal `json:"selling_price"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

type DiamondPageResult struct {
	Diamonds   []DiamondListing `json:"diamonds"`
	Pagination Pagination       `json:"pagination"`
}

// InventoryService is the read side of the ingested inventory.
type InventoryService interface {
	Search(ctx context.Context, filter repos.DiamondFilter) (*DiamondPageResult, error)
}

type inventoryService struct {
	db       *gorm.DB
	log      *logger.Logger
	diamonds repos.IngestedDiamondRepo
	pricing  repos.DiamondPricingRepo
}

func NewInventoryService(db *gorm.DB, baseLog *logger.Logger, diamonds repos.IngestedDiamondRepo, pricing repos.DiamondPricingRepo) InventoryService {
	return &inventoryService{
		db:       db,
		log:      baseLog.With("service", "InventoryService"),
		diamonds: diamonds,
		pricing:  pricing,
	}
}

func (s *inventoryService) Search(ctx context.Context, filter repos.DiamondFilter) (*DiamondPageResult, error) {
	if filter.StoreID == "" {
		return nil, ErrStoreIDRequired
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	rows, total, err := s.diamonds.Search(ctx, nil, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, d := range rows {
		ids = append(ids, d.ID)
	}
	prices, err := s.pricing.ListByDiamondIDs(ctx, nil, ids, filter.StoreID)
	if err != nil {
		return nil, err
	}
	priceByDiamond := make(map[uuid.UUID]decimal.Decimal, len(prices))
	for _, p := range prices {
		priceByDiamond[p.DiamondID] = p.SellingPrice
	}

	listings := make([]DiamondListing, 0, len(rows))
	for _, d := range rows {
		selling, ok := priceByDiamond[d.ID]
		if !ok {
			// Not yet priced; fall back to the vendor base price.
			selling = decimal.NewFromFloat(d.Price).Round(2)
		}
		listings = append(listings, DiamondListing{IngestedDiamond: d, SellingPrice: selling})
	}

	return &DiamondPageResult{
		Diamonds: listings,
		Pagination: Pagination{
			CurrentPage:  filter.Page,
			TotalPages:   int(math.Ceil(float64(total) / float64(filter.Limit))),
			TotalItems:   total,
			ItemsPerPage: filter.Limit,
		},
	}, nil
}
