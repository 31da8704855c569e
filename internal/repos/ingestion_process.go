package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/types"
)

type IngestionProcessRepo interface {
	// CreateActive inserts a new process in running status. The partial
	// unique index on active processes makes this the single-flight gate:
	// a second active process surfaces as gorm.ErrDuplicatedKey.
	CreateActive(ctx context.Context, tx *gorm.DB, proc *types.IngestionProcess) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.IngestionProcess, error)
	GetActive(ctx context.Context, tx *gorm.DB, processType string) (*types.IngestionProcess, error)
	List(ctx context.Context, tx *gorm.DB, processType string) ([]*types.IngestionProcess, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	BumpProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, processedItems, totalItems int) error
}

type ingestionProcessRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestionProcessRepo(db *gorm.DB, baseLog *logger.Logger) IngestionProcessRepo {
	return &ingestionProcessRepo{
		db:  db,
		log: baseLog.With("repo", "IngestionProcessRepo"),
	}
}

func (r *ingestionProcessRepo) CreateActive(ctx context.Context, tx *gorm.DB, proc *types.IngestionProcess) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	if proc.ID == uuid.Nil {
		proc.ID = uuid.New()
	}
	proc.Status = types.ProcessStatusRunning
	proc.StartedAt = now
	proc.TotalItems = 0
	proc.ProcessedItems = 0
	proc.CreatedAt = now
	proc.UpdatedAt = now
	return transaction.WithContext(ctx).Create(proc).Error
}

func (r *ingestionProcessRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.IngestionProcess, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var proc types.IngestionProcess
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&proc).Error
	if err != nil {
		return nil, err
	}
	if proc.ID == uuid.Nil {
		return nil, nil
	}
	return &proc, nil
}

func (r *ingestionProcessRepo) GetActive(ctx context.Context, tx *gorm.DB, processType string) (*types.IngestionProcess, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var proc types.IngestionProcess
	err := transaction.WithContext(ctx).
		Where("process_type = ? AND status IN ?", processType,
			[]string{types.ProcessStatusRunning, types.ProcessStatusPriceCalculation}).
		Limit(1).
		Find(&proc).Error
	if err != nil {
		return nil, err
	}
	if proc.ID == uuid.Nil {
		return nil, nil
	}
	return &proc, nil
}

func (r *ingestionProcessRepo) List(ctx context.Context, tx *gorm.DB, processType string) ([]*types.IngestionProcess, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.IngestionProcess
	q := transaction.WithContext(ctx).Order("started_at DESC")
	if processType != "" {
		q = q.Where("process_type = ?", processType)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingestionProcessRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return transaction.WithContext(ctx).
		Model(&types.IngestionProcess{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// BumpProgress applies monotonic counter updates: a late page can never
// move either counter backwards. CASE WHEN instead of GREATEST keeps the
// expression portable between Postgres and the sqlite test database.
func (r *ingestionProcessRepo) BumpProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, processedItems, totalItems int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.IngestionProcess{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_items": gorm.Expr("CASE WHEN processed_items > ? THEN processed_items ELSE ? END", processedItems, processedItems),
			"total_items":     gorm.Expr("CASE WHEN total_items > ? THEN total_items ELSE ? END", totalItems, totalItems),
			"updated_at":      time.Now().UTC(),
		}).Error
}
