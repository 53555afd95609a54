package service

import (
	"context"
	"errors"
	"time"

	"erp-catalog-be/internal/config"
	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/tiny"
)

const (
	// deltaDefaultLookback seeds the watermark on first run.
	deltaDefaultLookback = 24 * time.Hour

	// deltaMaxLookback clamps a stale watermark. The upstream change
	// feeds silently return nothing for windows older than 30 days, so
	// a watermark past this age would wedge the sync forever.
	deltaMaxLookback = 29 * 24 * time.Hour
)

// IDeltaSyncService pulls the upstream change feeds since the last
// watermark: registration changes first, stock changes second. The
// watermark only advances after a run where every page was processed,
// and it advances to the newest change timestamp actually seen, never
// to the local clock.
type IDeltaSyncService interface {
	Run(ctx context.Context) (*dto.DeltaSyncResult, error)
}

type deltaSyncService struct {
	api        tiny.API
	uowFactory unitofwork.RepositoryFactory
	reconciler IReconcileService
	log        logger.ILogger
	cfg        config.SyncConfig

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewDeltaSyncService(
	api tiny.API,
	uowFactory unitofwork.RepositoryFactory,
	reconciler IReconcileService,
	log logger.ILogger,
	cfg config.SyncConfig,
) IDeltaSyncService {
	return &deltaSyncService{
		api:        api,
		uowFactory: uowFactory,
		reconciler: reconciler,
		log:        log,
		cfg:        cfg,
		sleep:      ctxSleep,
		now:        time.Now,
	}
}

func (s *deltaSyncService) Run(ctx context.Context) (*dto.DeltaSyncResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	states := uow.SyncStateRepository()

	since, err := s.resolveWatermark(ctx, states.GetLastSync)
	if err != nil {
		return nil, err
	}

	result := &dto.DeltaSyncResult{Watermark: since}

	// Phase 1: registration changes. Best effort; a failure here never
	// blocks the stock phase or the watermark.
	s.syncChangedProducts(ctx, since, result)

	// Phase 2: stock changes, paginated. maxSeen tracks the newest
	// change timestamp across all pages.
	maxSeen := since
	page := 1
	for {
		changes, err := s.api.ListStockChanges(ctx, since, page)
		if errors.Is(err, tiny.ErrThrottled) {
			s.log.Warn("delta-sync", "upstream throttled, watermark kept", map[string]interface{}{
				"watermark": since,
				"page":      page,
			})
			result.Throttled = true
			if err := s.sleep(ctx, s.cfg.RateLimitSleep); err != nil {
				return result, err
			}
			return result, nil
		}
		if err != nil {
			s.log.Error("delta-sync", "stock change page failed, watermark kept", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			return result, err
		}

		for i := range changes.Items {
			item := &changes.Items[i]
			s.applyStockChange(ctx, item, result)
			// Timestamps share one fixed textual format, so the max is
			// tracked the same way the feed emits it.
			if item.ChangedAt > maxSeen {
				maxSeen = item.ChangedAt
			}
		}
		result.StockChanges += len(changes.Items)

		if changes.TotalPages <= page {
			break
		}
		page++
		if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
			return result, err
		}
	}

	if err := states.SetLastSync(ctx, entity.CursorStockLastSync, maxSeen); err != nil {
		return result, err
	}
	result.NewWatermark = maxSeen

	s.log.Info("delta-sync", "run finished", map[string]interface{}{
		"watermark":     since,
		"new_watermark": maxSeen,
		"products":      result.ChangedProducts,
		"stock_changes": result.StockChanges,
	})
	return result, nil
}

// resolveWatermark loads the persisted watermark, seeding and clamping
// as needed.
func (s *deltaSyncService) resolveWatermark(ctx context.Context, load func(context.Context, string) (*string, error)) (string, error) {
	stored, err := load(ctx, entity.CursorStockLastSync)
	if err != nil {
		return "", err
	}
	if stored == nil || *stored == "" {
		return tiny.FormatTime(s.now().Add(-deltaDefaultLookback)), nil
	}

	parsed, err := tiny.ParseTime(*stored)
	if err != nil {
		s.log.Warn("delta-sync", "unparseable watermark, reseeding", map[string]interface{}{
			"stored": *stored,
		})
		return tiny.FormatTime(s.now().Add(-deltaDefaultLookback)), nil
	}

	oldest := s.now().Add(-deltaMaxLookback)
	if parsed.Before(oldest) {
		s.log.Warn("delta-sync", "watermark older than feed retention, clamping", map[string]interface{}{
			"stored": *stored,
		})
		return tiny.FormatTime(oldest), nil
	}
	return *stored, nil
}

func (s *deltaSyncService) syncChangedProducts(ctx context.Context, since string, result *dto.DeltaSyncResult) {
	changed, err := s.api.ListChangedProducts(ctx, since, 0)
	if err != nil {
		s.log.Warn("delta-sync", "changed products feed failed, continuing with stock", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	for _, c := range changed {
		detail, err := s.api.GetProduct(ctx, c.Id.Int64())
		if err != nil {
			s.log.Warn("delta-sync", "product detail fetch failed, skipping", map[string]interface{}{
				"product_id": c.Id.Int64(),
				"error":      err.Error(),
			})
			continue
		}
		if err := s.reconciler.UpsertProduct(ctx, detail); err != nil {
			s.log.Error("delta-sync", "product upsert failed, skipping", map[string]interface{}{
				"product_id": c.Id.Int64(),
				"error":      err.Error(),
			})
			continue
		}
		result.ChangedProducts++
	}
}

// applyStockChange reconciles one changed-stock entry. Unknown products
// are registered first from their detail record; the per-deposit
// snapshot is preferred and the feed's own balance is the degraded
// path.
func (s *deltaSyncService) applyStockChange(ctx context.Context, item *tiny.StockChange, result *dto.DeltaSyncResult) {
	id := item.Id.Int64()

	known, err := s.reconciler.HasProduct(ctx, id)
	if err != nil {
		s.log.Error("delta-sync", "local lookup failed, skipping item", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return
	}
	if !known {
		detail, err := s.api.GetProduct(ctx, id)
		if err != nil {
			s.log.Warn("delta-sync", "unknown product and detail fetch failed, skipping", map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			})
			return
		}
		if err := s.reconciler.UpsertProduct(ctx, detail); err != nil {
			s.log.Error("delta-sync", "product registration failed, skipping", map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			})
			return
		}
	}

	snapshot, err := s.api.GetProductStock(ctx, id)
	if err != nil {
		s.log.Warn("delta-sync", "snapshot failed, applying feed balance", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		if err := s.reconciler.ApplyDefaultBalance(ctx, id, item.Balance.Float64()); err != nil {
			s.log.Error("delta-sync", "stock write failed", map[string]interface{}{
				"product_id": id,
				"error":      err.Error(),
			})
		}
		return
	}

	if err := s.reconciler.ApplySnapshot(ctx, id, snapshot); err != nil {
		s.log.Error("delta-sync", "snapshot write failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return
	}
	result.SnapshotsTaken++
}
