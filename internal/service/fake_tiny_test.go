package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"erp-catalog-be/internal/config"
	"erp-catalog-be/pkg/tiny"

	"github.com/stretchr/testify/require"
)

// fakeTinyAPI substitutes the upstream client in job tests. Unset
// functions return empty results.
type fakeTinyAPI struct {
	searchFn       func(ctx context.Context, term string, page int) (*tiny.SearchPage, error)
	getProductFn   func(ctx context.Context, id int64) (*tiny.Product, error)
	getStockFn     func(ctx context.Context, id int64) (*tiny.StockDetail, error)
	changedFn      func(ctx context.Context, since string, page int) ([]tiny.ChangedProduct, error)
	stockChangesFn func(ctx context.Context, since string, page int) (*tiny.StockChangePage, error)

	searchCalls       []int
	getProductCalls   []int64
	getStockCalls     []int64
	stockChangesSince []string
}

var _ tiny.API = (*fakeTinyAPI)(nil)

func (f *fakeTinyAPI) SearchProducts(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
	f.searchCalls = append(f.searchCalls, page)
	if f.searchFn == nil {
		return &tiny.SearchPage{Page: page, TotalPages: page}, nil
	}
	return f.searchFn(ctx, term, page)
}

func (f *fakeTinyAPI) GetProduct(ctx context.Context, id int64) (*tiny.Product, error) {
	f.getProductCalls = append(f.getProductCalls, id)
	if f.getProductFn == nil {
		p := makeProduct(nil, `{"id":`+jsonInt(id)+`,"nome":"Product","situacao":"A"}`)
		return &p, nil
	}
	return f.getProductFn(ctx, id)
}

func (f *fakeTinyAPI) GetProductStock(ctx context.Context, id int64) (*tiny.StockDetail, error) {
	f.getStockCalls = append(f.getStockCalls, id)
	if f.getStockFn == nil {
		return &tiny.StockDetail{}, nil
	}
	return f.getStockFn(ctx, id)
}

func (f *fakeTinyAPI) ListChangedProducts(ctx context.Context, since string, page int) ([]tiny.ChangedProduct, error) {
	if f.changedFn == nil {
		return nil, nil
	}
	return f.changedFn(ctx, since, page)
}

func (f *fakeTinyAPI) ListStockChanges(ctx context.Context, since string, page int) (*tiny.StockChangePage, error) {
	f.stockChangesSince = append(f.stockChangesSince, since)
	if f.stockChangesFn == nil {
		return &tiny.StockChangePage{Page: page, TotalPages: page}, nil
	}
	return f.stockChangesFn(ctx, since, page)
}

// makeProduct builds a tiny.Product the same way the wire does, so the
// raw field map used by stock probing is populated.
func makeProduct(t *testing.T, raw string) tiny.Product {
	if t != nil {
		t.Helper()
	}
	var p tiny.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		if t != nil {
			require.NoError(t, err)
		}
		panic(err)
	}
	return p
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func testSyncConfig() config.SyncConfig {
	return config.SyncConfig{
		Strategy:           "delta",
		MaxPagesPerRun:     4,
		PageDelay:          800 * time.Millisecond,
		RateLimitSleep:     60 * time.Second,
		Jitter:             400 * time.Millisecond,
		StockFieldPriority: []string{"estoque_atual", "saldo", "estoque", "saldoEstoque", "estoqueAtual"},
	}
}

// noSleep makes bounded runs instantaneous in tests.
func noSleep(ctx context.Context, d time.Duration) error { return nil }
