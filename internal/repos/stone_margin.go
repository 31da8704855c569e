package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/types"
)

type StoneMarginRepo interface {
	ListByStore(ctx context.Context, tx *gorm.DB, storeID string) ([]*types.StoneMargin, error)
	ListByStoreAndType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) ([]*types.StoneMargin, error)
	DeleteByStoreAndType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, rules []*types.StoneMargin) error
}

type stoneMarginRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoneMarginRepo(db *gorm.DB, baseLog *logger.Logger) StoneMarginRepo {
	return &stoneMarginRepo{
		db:  db,
		log: baseLog.With("repo", "StoneMarginRepo"),
	}
}

func (r *stoneMarginRepo) ListByStore(ctx context.Context, tx *gorm.DB, storeID string) ([]*types.StoneMargin, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StoneMargin
	// Position order must hold across units within a stone type: resolution
	// is first-match-wins over the whole stored set, units mixed.
	err := transaction.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("stone_type ASC").Order("position ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stoneMarginRepo) ListByStoreAndType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) ([]*types.StoneMargin, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.StoneMargin
	err := transaction.WithContext(ctx).
		Where("store_id = ? AND stone_type = ?", storeID, stoneType).
		Order("position ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stoneMarginRepo) DeleteByStoreAndType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("store_id = ? AND stone_type = ?", storeID, stoneType).
		Delete(&types.StoneMargin{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *stoneMarginRepo) Create(ctx context.Context, tx *gorm.DB, rules []*types.StoneMargin) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rules) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, rule := range rules {
		if rule.ID == uuid.Nil {
			rule.ID = uuid.New()
		}
		rule.CreatedAt = now
		rule.UpdatedAt = now
	}
	return transaction.WithContext(ctx).Create(&rules).Error
}
