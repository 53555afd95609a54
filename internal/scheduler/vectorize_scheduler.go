package scheduler

import (
	"context"
	"sync"
	"time"

	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/service"
)

// VectorizeScheduler runs the vectorization batch on a fixed interval.
// Ticks never overlap: a batch still running when the next tick fires
// simply absorbs it.
type VectorizeScheduler struct {
	svc      service.IVectorizeService
	log      logger.ILogger
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewVectorizeScheduler(svc service.IVectorizeService, log logger.ILogger, interval time.Duration) *VectorizeScheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &VectorizeScheduler{
		svc:      svc,
		log:      log,
		interval: interval,
	}
}

func (s *VectorizeScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx)
	s.log.Info("scheduler", "vectorize scheduler started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

func (s *VectorizeScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *VectorizeScheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one batch synchronously.
func (s *VectorizeScheduler) Tick(ctx context.Context) {
	if _, err := s.svc.RunOnce(ctx); err != nil {
		s.log.Error("scheduler", "vectorize batch failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
