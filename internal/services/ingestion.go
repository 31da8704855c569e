package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/repos"
	"github.com/purecarat/diamond-backend/internal/types"
	"github.com/purecarat/diamond-backend/internal/vendors"
)

// maxConsecutivePageFailures bounds a dead vendor feed. A single bad page
// is logged and skipped; this many in a row fails the run.
const maxConsecutivePageFailures = 3

// IngestionService runs vendor feed ingestions: synchronous start,
// asynchronous completion, progress visible through the process ledger.
type IngestionService interface {
	// Run starts one vendor ingestion in the background and returns its
	// ledger row immediately. A ProcessConflictError is returned while
	// any other ingestion is active.
	Run(ctx context.Context, vendorName, storeID, origin string) (*types.IngestionProcess, error)

	// RunAll ingests every registered vendor back to back in one
	// background task. Each vendor gets its own ledger row; the global
	// single-flight gate stays authoritative throughout.
	RunAll(ctx context.Context, storeID, origin string) error

	Vendors() []string
}

type ingestionService struct {
	db        *gorm.DB
	log       *logger.Logger
	adapters  *vendors.Registry
	diamonds  repos.IngestedDiamondRepo
	pricing   repos.DiamondPricingRepo
	processes ProcessService
	pricer    PricingService
}

func NewIngestionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	adapters *vendors.Registry,
	diamonds repos.IngestedDiamondRepo,
	pricing repos.DiamondPricingRepo,
	processes ProcessService,
	pricer PricingService,
) IngestionService {
	return &ingestionService{
		db:        db,
		log:       baseLog.With("service", "IngestionService"),
		adapters:  adapters,
		diamonds:  diamonds,
		pricing:   pricing,
		processes: processes,
		pricer:    pricer,
	}
}

func (s *ingestionService) Vendors() []string {
	return s.adapters.Sources()
}

func (s *ingestionService) Run(ctx context.Context, vendorName, storeID, origin string) (*types.IngestionProcess, error) {
	adapter, ok := s.adapters.Get(vendorName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVendor, vendorName)
	}
	if storeID == "" {
		return nil, ErrStoreIDRequired
	}

	proc, err := s.processes.Start(ctx, adapter.Source(), origin, storeID)
	if err != nil {
		return nil, err
	}

	go s.runToCompletion(adapter, proc)
	return proc, nil
}

func (s *ingestionService) RunAll(ctx context.Context, storeID, origin string) error {
	if storeID == "" {
		return ErrStoreIDRequired
	}
	// Fast feedback for callers; the ledger insert below each Run stays
	// the authoritative gate.
	active, err := s.processes.GetActive(ctx)
	if err != nil {
		return err
	}
	if active != nil {
		return &ProcessConflictError{ProcessID: active.ID}
	}

	sources := s.adapters.Sources()
	go func() {
		g := new(errgroup.Group)
		g.SetLimit(1)
		for _, source := range sources {
			vendorName := source
			g.Go(func() error {
				adapter, ok := s.adapters.Get(vendorName)
				if !ok {
					return nil
				}
				proc, err := s.processes.Start(context.Background(), adapter.Source(), origin, storeID)
				if err != nil {
					s.log.Warn("Skipping vendor in ingest-all", "vendor", vendorName, "error", err)
					return nil
				}
				s.runToCompletion(adapter, proc)
				return nil
			})
		}
		_ = g.Wait()
	}()
	return nil
}

// runToCompletion is the body of one background ingestion run. It owns the
// process row from running through completed or failed.
func (s *ingestionService) runToCompletion(adapter vendors.Adapter, proc *types.IngestionProcess) {
	ctx := context.Background()
	log := s.log.With("vendor", adapter.Source(), "process_id", proc.ID.String(), "store_id", proc.StoreID)

	var pageLogs []types.ProcessLogEntry
	processed := 0
	totalReported := 0
	consecutiveFailures := 0

	for page := 1; ; page++ {
		pg, err := adapter.FetchPage(ctx, page)
		if err != nil {
			log.Warn("Vendor page fetch failed", "page", page, "error", err)
			pageLogs = append(pageLogs, types.ProcessLogEntry{Page: page, Error: err.Error()})
			consecutiveFailures++
			if consecutiveFailures >= maxConsecutivePageFailures {
				s.fail(ctx, log, proc, pageLogs, fmt.Errorf("%d consecutive page failures", consecutiveFailures))
				return
			}
			continue
		}
		consecutiveFailures = 0

		if len(pg.Items) == 0 {
			break
		}

		mapped := make([]*types.IngestedDiamond, 0, len(pg.Items))
		for _, item := range pg.Items {
			if d := adapter.MapItem(item, proc.StoreID); d != nil {
				mapped = append(mapped, d)
			}
		}
		log.Debug("Vendor page mapped", "page", page, "raw", len(pg.Items), "mapped", len(mapped))

		if len(mapped) > 0 {
			if _, err := s.diamonds.BulkUpsert(ctx, nil, mapped); err != nil {
				s.fail(ctx, log, proc, pageLogs, fmt.Errorf("upsert page %d: %w", page, err))
				return
			}
			processed += len(mapped)
		}

		if pg.TotalFound > totalReported {
			totalReported = pg.TotalFound
		}
		total := totalReported
		if total < processed {
			total = processed
		}
		if err := s.processes.BumpProgress(ctx, proc.ID, processed, total); err != nil {
			log.Warn("Progress update failed", "page", page, "error", err)
		}

		if !pg.HasMore {
			break
		}
	}

	if err := s.finalize(ctx, adapter.Source(), proc, processed); err != nil {
		s.fail(ctx, log, proc, pageLogs, err)
		return
	}

	if err := s.processes.MarkCompleted(ctx, proc.ID, pageLogs); err != nil {
		log.Error("Failed to mark process completed", "error", err)
		return
	}
	log.Info("Ingestion completed", "processed", processed, "page_errors", len(pageLogs))
}

// finalize prunes stones the vendor no longer lists and recomputes selling
// prices for everything this run touched. Errors here are fatal to the
// run; inventory already committed stays committed.
func (s *ingestionService) finalize(ctx context.Context, sourceName string, proc *types.IngestionProcess, processed int) error {
	if err := s.processes.MarkPriceCalculation(ctx, proc.ID); err != nil {
		return fmt.Errorf("mark price_calculation: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staleIDs, err := s.diamonds.ListStaleIDs(ctx, tx, sourceName, proc.StoreID, proc.StartedAt)
		if err != nil {
			return fmt.Errorf("list stale inventory: %w", err)
		}
		if len(staleIDs) > 0 {
			if _, err := s.pricing.DeleteByDiamondIDs(ctx, tx, staleIDs); err != nil {
				return fmt.Errorf("delete stale pricing: %w", err)
			}
			if _, err := s.diamonds.DeleteByIDs(ctx, tx, staleIDs); err != nil {
				return fmt.Errorf("delete stale inventory: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	fresh, err := s.diamonds.ListUpdatedSince(ctx, nil, sourceName, proc.StoreID, proc.StartedAt)
	if err != nil {
		return fmt.Errorf("list touched inventory: %w", err)
	}
	if _, err := s.pricer.PriceDiamonds(ctx, nil, fresh, proc.StoreID); err != nil {
		return fmt.Errorf("compute selling prices: %w", err)
	}
	return nil
}

func (s *ingestionService) fail(ctx context.Context, log *logger.Logger, proc *types.IngestionProcess, pageLogs []types.ProcessLogEntry, cause error) {
	log.Error("Ingestion failed", "error", cause)
	entries := append(pageLogs, types.ProcessLogEntry{Error: cause.Error()})
	if err := s.processes.MarkFailed(ctx, proc.ID, entries); err != nil {
		log.Error("Failed to mark process failed", "error", err)
	}
}
