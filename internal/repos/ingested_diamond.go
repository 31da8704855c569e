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

// diamondMutableColumns are the fields overwritten when a vendor re-lists a
// stone we already hold. Identity columns and created_at are never touched.
var diamondMutableColumns = []string{
	"source_diamond_id", "source_stock_id", "lab", "type", "carat", "color",
	"clarity", "cut", "shape", "polish", "symmetry", "fluorescence",
	"table_pct", "depth_pct", "girdle", "measurements", "treatment", "culet",
	"bgm", "price", "vendor", "is_available", "origin", "location",
	"description", "image_source", "video_source", "updated_at",
}

type IngestedDiamondRepo interface {
	BulkUpsert(ctx context.Context, tx *gorm.DB, diamonds []*types.IngestedDiamond) (int, error)
	ListUpdatedSince(ctx context.Context, tx *gorm.DB, sourceName, storeID string, since time.Time) ([]*types.IngestedDiamond, error)
	ListStaleIDs(ctx context.Context, tx *gorm.DB, sourceName, storeID string, before time.Time) ([]uuid.UUID, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	ListByStoreAndType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) ([]*types.IngestedDiamond, error)
	Search(ctx context.Context, tx *gorm.DB, filter DiamondFilter) ([]*types.IngestedDiamond, int64, error)
}

// DiamondFilter is the read-side query surface for stored inventory.
type DiamondFilter struct {
	StoreID      string
	StoneType    string
	CaratMin     *float64
	CaratMax     *float64
	PriceMin     *float64
	PriceMax     *float64
	Colors       []string
	Clarities    []string
	Cuts         []string
	Shapes       []string
	Fluorescence []string
	Labs         []string
	Sort         string // price_asc|price_desc|carat_asc|carat_desc
	Page         int
	Limit        int
}

type ingestedDiamondRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestedDiamondRepo(db *gorm.DB, baseLog *logger.Logger) IngestedDiamondRepo {
	return &ingestedDiamondRepo{
		db:  db,
		log: baseLog.With("repo", "IngestedDiamondRepo"),
	}
}

func (r *ingestedDiamondRepo) BulkUpsert(ctx context.Context, tx *gorm.DB, diamonds []*types.IngestedDiamond) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(diamonds) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	for _, d := range diamonds {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		d.CreatedAt = now
		d.UpdatedAt = now
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "source_name"},
				{Name: "store_id"},
				{Name: "certificate_no"},
			},
			DoUpdates: clause.AssignmentColumns(diamondMutableColumns),
		}).
		Create(&diamonds).Error
	if err != nil {
		return 0, err
	}
	return len(diamonds), nil
}

func (r *ingestedDiamondRepo) ListUpdatedSince(ctx context.Context, tx *gorm.DB, sourceName, storeID string, since time.Time) ([]*types.IngestedDiamond, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.IngestedDiamond
	err := transaction.WithContext(ctx).
		Where("source_name = ? AND store_id = ? AND updated_at >= ?", sourceName, storeID, since).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingestedDiamondRepo) ListStaleIDs(ctx context.Context, tx *gorm.DB, sourceName, storeID string, before time.Time) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	err := transaction.WithContext(ctx).
		Model(&types.IngestedDiamond{}).
		Where("source_name = ? AND store_id = ? AND updated_at < ?", sourceName, storeID, before).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ingestedDiamondRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.IngestedDiamond{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *ingestedDiamondRepo) ListByStoreAndType(ctx context.Context, tx *gorm.DB, storeID, stoneType string) ([]*types.IngestedDiamond, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.IngestedDiamond
	err := transaction.WithContext(ctx).
		Where("store_id = ? AND type = ?", storeID, stoneType).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingestedDiamondRepo) Search(ctx context.Context, tx *gorm.DB, filter DiamondFilter) ([]*types.IngestedDiamond, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).
		Model(&types.IngestedDiamond{}).
		Where("store_id = ?", filter.StoreID)

	if filter.StoneType != "" {
		q = q.Where("type = ?", filter.StoneType)
	}
	if filter.CaratMin != nil {
		q = q.Where("carat >= ?", *filter.CaratMin)
	}
	if filter.CaratMax != nil {
		q = q.Where("carat <= ?", *filter.CaratMax)
	}
	if filter.PriceMin != nil {
		q = q.Where("price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		q = q.Where("price <= ?", *filter.PriceMax)
	}
	if len(filter.Colors) > 0 {
		q = q.Where("color IN ?", filter.Colors)
	}
	if len(filter.Clarities) > 0 {
		q = q.Where("clarity IN ?", filter.Clarities)
	}
	if len(filter.Cuts) > 0 {
		q = q.Where("cut IN ?", filter.Cuts)
	}
	if len(filter.Shapes) > 0 {
		q = q.Where("shape IN ?", filter.Shapes)
	}
	if len(filter.Fluorescence) > 0 {
		q = q.Where("fluorescence IN ?", filter.Fluorescence)
	}
	if len(filter.Labs) > 0 {
		q = q.Where("lab IN ?", filter.Labs)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Sort {
	case "price_asc":
		q = q.Order("price ASC")
	case "price_desc":
		q = q.Order("price DESC")
	case "carat_asc":
		q = q.Order("carat ASC")
	case "carat_desc":
		q = q.Order("carat DESC")
	default:
		q = q.Order("color ASC").Order("clarity ASC")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var out []*types.IngestedDiamond
	err := q.Offset((page - 1) * limit).Limit(limit).Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
