package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"erp-catalog-be/internal/config"
	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/tiny"
)

// IFullImportService walks the catalog search pages in bounded runs.
// Each run processes at most MaxPagesPerRun pages and persists the
// next page cursor after every page, so a crashed run resumes exactly
// where it stopped.
type IFullImportService interface {
	Run(ctx context.Context) (*dto.ImportRunResult, error)
}

type fullImportService struct {
	api        tiny.API
	uowFactory unitofwork.RepositoryFactory
	reconciler IReconcileService
	log        logger.ILogger
	cfg        config.SyncConfig

	// sleep is swappable in tests; production uses ctxSleep.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewFullImportService(
	api tiny.API,
	uowFactory unitofwork.RepositoryFactory,
	reconciler IReconcileService,
	log logger.ILogger,
	cfg config.SyncConfig,
) IFullImportService {
	return &fullImportService{
		api:        api,
		uowFactory: uowFactory,
		reconciler: reconciler,
		log:        log,
		cfg:        cfg,
		sleep:      ctxSleep,
	}
}

func (s *fullImportService) Run(ctx context.Context) (*dto.ImportRunResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	states := uow.SyncStateRepository()

	page, err := states.GetNumber(ctx, entity.CursorImportNextPage, 1)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportRunResult{StartPage: page, NextPage: page}

	for i := 0; i < s.cfg.MaxPagesPerRun; i++ {
		search, err := s.api.SearchProducts(ctx, "", page)
		if errors.Is(err, tiny.ErrThrottled) {
			// The cursor stays on the blocked page so the next run
			// retries it. Sleeping here drains the block before the
			// caller reschedules.
			s.log.Warn("import", "upstream throttled, keeping cursor", map[string]interface{}{
				"page": page,
			})
			result.Throttled = true
			if err := states.SetState(ctx, entity.CursorImportNextPage, strconv.Itoa(page)); err != nil {
				return result, err
			}
			if err := s.sleep(ctx, s.cfg.RateLimitSleep); err != nil {
				return result, err
			}
			return result, nil
		}
		if err != nil {
			// A broken page must not wedge the walk forever: the cursor
			// moves past it and the run stops, so the next invocation
			// resumes on the page after the offending one.
			s.log.Error("import", "page fetch failed, advancing cursor and stopping", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			page++
			if err := states.SetState(ctx, entity.CursorImportNextPage, strconv.Itoa(page)); err != nil {
				return result, err
			}
			result.NextPage = page
			return result, nil
		}

		for idx := range search.Products {
			s.importProduct(ctx, &search.Products[idx], result)
		}
		result.PagesProcessed++

		// An empty page is the same cycle-complete signal as reaching
		// the reported last page.
		if len(search.Products) == 0 || (search.TotalPages > 0 && page >= search.TotalPages) {
			page = 1
			result.WrappedAround = true
		} else {
			page++
		}
		if err := states.SetState(ctx, entity.CursorImportNextPage, strconv.Itoa(page)); err != nil {
			return result, err
		}
		result.NextPage = page

		// A wraparound means the whole catalog was covered; the run
		// ends here and the next one starts a fresh pass.
		if result.WrappedAround {
			break
		}

		if i < s.cfg.MaxPagesPerRun-1 {
			if err := s.sleep(ctx, s.pageDelay()); err != nil {
				return result, err
			}
		}
	}

	s.log.Info("import", "run finished", map[string]interface{}{
		"start_page": result.StartPage,
		"pages":      result.PagesProcessed,
		"upserted":   result.ProductsUpserted,
		"next_page":  result.NextPage,
	})
	return result, nil
}

// importProduct fetches the full detail for one listed product and
// reconciles registration plus probed stock. When the detail fetch
// fails the listing row alone is upserted and the last known quantity
// is kept.
func (s *fullImportService) importProduct(ctx context.Context, listed *tiny.Product, result *dto.ImportRunResult) {
	product := listed
	detail, err := s.api.GetProduct(ctx, listed.Id.Int64())
	if err != nil {
		s.log.Warn("import", "detail fetch failed, using listing row", map[string]interface{}{
			"product_id": listed.Id.Int64(),
			"error":      err.Error(),
		})
	} else {
		product = detail
	}

	if err := s.reconciler.UpsertProduct(ctx, product); err != nil {
		s.log.Error("import", "product upsert failed", map[string]interface{}{
			"product_id": product.Id.Int64(),
			"error":      err.Error(),
		})
		return
	}
	result.ProductsUpserted++

	// Quantity comes from duck-typed fields on the detail payload. A
	// missing field means the quantity is unknown, not zero, so nothing
	// is written.
	if detail == nil {
		return
	}
	balance, ok := detail.TotalStock(s.cfg.StockFieldPriority)
	if !ok {
		return
	}
	if err := s.reconciler.ApplyDefaultBalance(ctx, detail.Id.Int64(), balance); err != nil {
		s.log.Error("import", "stock write failed", map[string]interface{}{
			"product_id": detail.Id.Int64(),
			"error":      err.Error(),
		})
		return
	}
	result.StockApplied++
}

func (s *fullImportService) pageDelay() time.Duration {
	delay := s.cfg.PageDelay
	if s.cfg.Jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(s.cfg.Jitter)))
	}
	return delay
}

// ctxSleep sleeps for d or until the context is cancelled.
func ctxSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
