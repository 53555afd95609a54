package service

import (
	"context"
	"time"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/embedding"
)

// IVectorizeService embeds products whose registration changed since
// they were last vectorized. RunOnce processes one bounded batch; the
// scheduler drives it on an interval.
type IVectorizeService interface {
	RunOnce(ctx context.Context) (*dto.VectorizeResult, error)
}

type vectorizeService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.EmbeddingProvider
	log        logger.ILogger

	batchSize int
	itemDelay time.Duration

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewVectorizeService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.EmbeddingProvider,
	log logger.ILogger,
	batchSize int,
	itemDelay time.Duration,
) IVectorizeService {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &vectorizeService{
		uowFactory: uowFactory,
		provider:   provider,
		log:        log,
		batchSize:  batchSize,
		itemDelay:  itemDelay,
		sleep:      ctxSleep,
		now:        time.Now,
	}
}

func (s *vectorizeService) RunOnce(ctx context.Context) (*dto.VectorizeResult, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	products := uow.ProductRepository()

	pending, err := products.FindPendingVectorization(ctx, s.batchSize)
	if err != nil {
		return nil, err
	}

	result := &dto.VectorizeResult{Scanned: len(pending)}
	if len(pending) == 0 {
		return result, nil
	}

	for i, p := range pending {
		// One bad row must not starve the rest of the batch.
		res, err := s.provider.Generate(p.EmbeddingText(), embedding.TaskRetrievalDocument)
		if err != nil {
			s.log.Warn("vectorize", "embedding failed, skipping product", map[string]interface{}{
				"product_id": p.Id,
				"error":      err.Error(),
			})
			result.Skipped++
		} else if err := products.UpdateEmbedding(ctx, p.Id, res.Embedding.Values, s.now()); err != nil {
			s.log.Error("vectorize", "embedding write failed", map[string]interface{}{
				"product_id": p.Id,
				"error":      err.Error(),
			})
			result.Skipped++
		} else {
			result.Embedded++
		}

		if i < len(pending)-1 {
			if err := s.sleep(ctx, s.itemDelay); err != nil {
				return result, err
			}
		}
	}

	s.log.Info("vectorize", "batch finished", map[string]interface{}{
		"scanned":  result.Scanned,
		"embedded": result.Embedded,
		"skipped":  result.Skipped,
	})
	return result, nil
}
