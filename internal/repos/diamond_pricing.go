package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/types"
)

type DiamondPricingRepo interface {
	BulkUpsert(ctx context.Context, tx *gorm.DB, rows []*types.DiamondPricing) error
	DeleteByDiamondIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	GetByDiamondID(ctx context.Context, tx *gorm.DB, diamondID uuid.UUID, storeID string) (*types.DiamondPricing, error)
	ListByDiamondIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, storeID string) ([]*types.DiamondPricing, error)
}

type diamondPricingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiamondPricingRepo(db *gorm.DB, baseLog *logger.Logger) DiamondPricingRepo {
	return &diamondPricingRepo{
		db:  db,
		log: baseLog.With("repo", "DiamondPricingRepo"),
	}
}

func (r *diamondPricingRepo) BulkUpsert(ctx context.Context, tx *gorm.DB, rows []*types.DiamondPricing) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now
		row.UpdatedAt = now
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "diamond_id"},
				{Name: "store_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"base_price", "selling_price", "updated_at"}),
		}).
		Create(&rows).Error
}

func (r *diamondPricingRepo) DeleteByDiamondIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(ctx).
		Where("diamond_id IN ?", ids).
		Delete(&types.DiamondPricing{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *diamondPricingRepo) GetByDiamondID(ctx context.Context, tx *gorm.DB, diamondID uuid.UUID, storeID string) (*types.DiamondPricing, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.DiamondPricing
	err := transaction.WithContext(ctx).
		Where("diamond_id = ? AND store_id = ?", diamondID, storeID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *diamondPricingRepo) ListByDiamondIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID, storeID string) ([]*types.DiamondPricing, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DiamondPricing
	if len(ids) == 0 {
		return out, nil
	}
	err := transaction.WithContext(ctx).
		Where("diamond_id IN ? AND store_id = ?", ids, storeID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
