package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"erp-catalog-be/internal/config"
	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/tiny"
)

// IFallbackSyncService refreshes stock by paging the catalog search
// and re-fetching each listed product's detail, where the quantity
// fields actually live. It exists for accounts whose change feeds are
// unreliable: slower than the delta strategy but independent of feed
// retention. It walks its own page cursor, separate from the full
// import's.
type IFallbackSyncService interface {
	Run(ctx context.Context) (*dto.FallbackSyncResult, error)
}

type fallbackSyncService struct {
	api        tiny.API
	uowFactory unitofwork.RepositoryFactory
	reconciler IReconcileService
	log        logger.ILogger
	cfg        config.SyncConfig

	sleep func(ctx context.Context, d time.Duration) error
}

func NewFallbackSyncService(
	api tiny.API,
	uowFactory unitofwork.RepositoryFactory,
	reconciler IReconcileService,
	log logger.ILogger,
	cfg config.SyncConfig,
) IFallbackSyncService {
	return &fallbackSyncService{
		api:        api,
		uowFactory: uowFactory,
		reconciler: reconciler,
		log:        log,
		cfg:        cfg,
		sleep:      ctxSleep,
	}
}

func (s *fallbackSyncService) Run(ctx context.Context) (*dto.FallbackSyncResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	states := uow.SyncStateRepository()

	page, err := states.GetNumber(ctx, entity.CursorFallbackNextPage, 1)
	if err != nil {
		return nil, err
	}

	result := &dto.FallbackSyncResult{StartPage: page, NextPage: page}

	for i := 0; i < s.cfg.MaxPagesPerRun; i++ {
		search, err := s.api.SearchProducts(ctx, "", page)
		if errors.Is(err, tiny.ErrThrottled) {
			s.log.Warn("fallback-sync", "upstream throttled, keeping cursor", map[string]interface{}{
				"page": page,
			})
			result.Throttled = true
			if err := states.SetState(ctx, entity.CursorFallbackNextPage, strconv.Itoa(page)); err != nil {
				return result, err
			}
			if err := s.sleep(ctx, s.cfg.RateLimitSleep); err != nil {
				return result, err
			}
			return result, nil
		}
		if err != nil {
			// Cursor moves past the broken page and the run stops; the
			// next invocation resumes after it.
			s.log.Error("fallback-sync", "page fetch failed, advancing cursor and stopping", map[string]interface{}{
				"page":  page,
				"error": err.Error(),
			})
			page++
			if err := states.SetState(ctx, entity.CursorFallbackNextPage, strconv.Itoa(page)); err != nil {
				return result, err
			}
			result.NextPage = page
			return result, nil
		}

		for idx := range search.Products {
			s.applyListedStock(ctx, &search.Products[idx], result)
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
		if err := states.SetState(ctx, entity.CursorFallbackNextPage, strconv.Itoa(page)); err != nil {
			return result, err
		}
		result.NextPage = page

		if result.WrappedAround {
			break
		}

		if i < s.cfg.MaxPagesPerRun-1 {
			if err := s.sleep(ctx, s.cfg.PageDelay); err != nil {
				return result, err
			}
		}
	}

	s.log.Info("fallback-sync", "run finished", map[string]interface{}{
		"start_page":    result.StartPage,
		"pages":         result.PagesProcessed,
		"stock_applied": result.StockApplied,
		"next_page":     result.NextPage,
	})
	return result, nil
}

// applyListedStock re-fetches the detail of one listed product and
// writes the probed balance under the default deposit. Listing rows
// omit the quantity fields, so the detail is the only place to read
// them; when the detail fetch fails the listing row alone is upserted
// and the last known balance is kept.
func (s *fallbackSyncService) applyListedStock(ctx context.Context, listed *tiny.Product, result *dto.FallbackSyncResult) {
	product := listed
	detail, err := s.api.GetProduct(ctx, listed.Id.Int64())
	if err != nil {
		s.log.Warn("fallback-sync", "detail fetch failed, using listing row", map[string]interface{}{
			"product_id": listed.Id.Int64(),
			"error":      err.Error(),
		})
	} else {
		product = detail
	}

	if err := s.reconciler.UpsertProduct(ctx, product); err != nil {
		s.log.Error("fallback-sync", "product upsert failed", map[string]interface{}{
			"product_id": product.Id.Int64(),
			"error":      err.Error(),
		})
		return
	}

	if detail == nil {
		return
	}
	balance, ok := detail.TotalStock(s.cfg.StockFieldPriority)
	if !ok {
		return
	}
	if err := s.reconciler.ApplyDefaultBalance(ctx, detail.Id.Int64(), balance); err != nil {
		s.log.Error("fallback-sync", "stock write failed", map[string]interface{}{
			"product_id": detail.Id.Int64(),
			"error":      err.Error(),
		})
		return
	}
	result.StockApplied++
}
