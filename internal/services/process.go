package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/types"
)

// startAttempts bounds the retry loop around the gate insert. Losing the
// race more than this in a row means something else is hammering the gate.
const startAttempts = 3

// ProcessService owns the run-level ledger polled by clients.
type ProcessService interface {
	// Start creates a new running process or, when another ingestion is
	// active, returns a ProcessConflictError carrying the live process id.
	Start(ctx context.Context, subType, origin, storeID string) (*types.IngestionProcess, error)
	Get(ctx context.Context, id uuid.UUID) (*types.IngestionProcess, error)
	GetActive(ctx context.Context) (*types.IngestionProcess, error)
	List(ctx context.Context) ([]*types.IngestionProcess, error)
	BumpProgress(ctx context.Context, id uuid.UUID, processedItems, totalItems int) error
	MarkPriceCalculation(ctx context.Context, id uuid.UUID) error
	MarkCompleted(ctx context.Context, id uuid.UUID, logs []types.ProcessLogEntry) error
	MarkFailed(ctx context.Context, id uuid.UUID, logs []types.ProcessLogEntry) error
}

type processService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.IngestionProcessRepo
}

func NewProcessService(db *gorm.DB, baseLog *logger.Logger, repo repos.IngestionProcessRepo) ProcessService {
	return &processService{
		db:   db,
		log:  baseLog.With("service", "ProcessService"),
		repo: repo,
	}
}

func (s *processService) Start(ctx context.Context, subType, origin, storeID string) (*types.IngestionProcess, error) {
	for attempt := 0; attempt < startAttempts; attempt++ {
		proc := &types.IngestionProcess{
			ProcessType:    types.ProcessTypeDiamondIngestion,
			ProcessSubType: subType,
			Origin:         origin,
			StoreID:        storeID,
		}
		err := s.repo.CreateActive(ctx, nil, proc)
		if err == nil {
			return proc, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create ingestion process: %w", err)
		}
		active, activeErr := s.repo.GetActive(ctx, nil, types.ProcessTypeDiamondIngestion)
		if activeErr != nil {
			return nil, fmt.Errorf("lookup active process: %w", activeErr)
		}
		if active != nil {
			return nil, &ProcessConflictError{ProcessID: active.ID}
		}
		// The gate holder finished between our insert and the lookup, so
		// there is no live process id to report. Take another shot at the
		// gate instead.
	}
	return nil, fmt.Errorf("create ingestion process: %w", gorm.ErrDuplicatedKey)
}

func (s *processService) Get(ctx context.Context, id uuid.UUID) (*types.IngestionProcess, error) {
	return s.repo.GetByID(ctx, nil, id)
}

func (s *processService) GetActive(ctx context.Context) (*types.IngestionProcess, error) {
	return s.repo.GetActive(ctx, nil, types.ProcessTypeDiamondIngestion)
}

func (s *processService) List(ctx context.Context) ([]*types.IngestionProcess, error) {
	return s.repo.List(ctx, nil, types.ProcessTypeDiamondIngestion)
}

func (s *processService) BumpProgress(ctx context.Context, id uuid.UUID, processedItems, totalItems int) error {
	return s.repo.BumpProgress(ctx, nil, id, processedItems, totalItems)
}

func (s *processService) MarkPriceCalculation(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"status": types.ProcessStatusPriceCalculation,
	})
}

func (s *processService) MarkCompleted(ctx context.Context, id uuid.UUID, logs []types.ProcessLogEntry) error {
	return s.repo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"status":       types.ProcessStatusCompleted,
		"completed_at": time.Now().UTC(),
		"logs":         marshalLogs(logs),
	})
}

func (s *processService) MarkFailed(ctx context.Context, id uuid.UUID, logs []types.ProcessLogEntry) error {
	return s.repo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"status":       types.ProcessStatusFailed,
		"completed_at": time.Now().UTC(),
		"logs":         marshalLogs(logs),
	})
}

func marshalLogs(logs []types.ProcessLogEntry) datatypes.JSON {
	if len(logs) == 0 {
		return datatypes.JSON([]byte(`[]`))
	}
	b, err := json.Marshal(logs)
	if err != nil {
		return datatypes.JSON([]byte(`[]`))
	}
	return datatypes.JSON(b)
}
