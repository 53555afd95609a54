package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/memory"
	"erp-catalog-be/pkg/tiny"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImportFixture(api tiny.API) (*fullImportService, *memory.RepositoryFactory) {
	factory := memory.NewRepositoryFactory()
	reconciler := NewReconcileService(factory, logger.NopLogger{})
	svc := NewFullImportService(api, factory, reconciler, logger.NopLogger{}, testSyncConfig()).(*fullImportService)
	svc.sleep = noSleep
	return svc, factory
}

// threePageCatalog serves a catalog with three pages of one product
// each; detail fetches answer with a probe-able stock quantity.
func threePageCatalog() *fakeTinyAPI {
	return &fakeTinyAPI{
		searchFn: func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
			id := int64(100 + page)
			return &tiny.SearchPage{
				Page:       page,
				TotalPages: 3,
				Products: []tiny.Product{
					makeProduct(nil, fmt.Sprintf(`{"id":%d,"codigo":"SKU-%d","nome":"Product %d","situacao":"A"}`, id, id, id)),
				},
			}, nil
		},
		getProductFn: func(ctx context.Context, id int64) (*tiny.Product, error) {
			p := makeProduct(nil, fmt.Sprintf(`{"id":%d,"codigo":"SKU-%d","nome":"Product %d","preco":"10,50","situacao":"A","estoque_atual":"7,5"}`, id, id, id))
			return &p, nil
		},
	}
}

func getCursor(t *testing.T, factory *memory.RepositoryFactory, key string) int {
	t.Helper()
	uow := factory.NewUnitOfWork(context.Background())
	n, err := uow.SyncStateRepository().GetNumber(context.Background(), key, 1)
	require.NoError(t, err)
	return n
}

func TestFullImportWalksPagesAndWrapsAround(t *testing.T) {
	api := threePageCatalog()
	svc, factory := newImportFixture(api)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.StartPage)
	assert.Equal(t, 3, res.PagesProcessed)
	assert.Equal(t, 3, res.ProductsUpserted)
	assert.Equal(t, 3, res.StockApplied)
	assert.True(t, res.WrappedAround)
	assert.False(t, res.Throttled)

	// Wraparound resets the cursor for the next full pass.
	assert.Equal(t, 1, res.NextPage)
	assert.Equal(t, 1, getCursor(t, factory, entity.CursorImportNextPage))
	assert.Equal(t, []int{1, 2, 3}, api.searchCalls)

	uow := factory.NewUnitOfWork(context.Background())
	p, err := uow.ProductRepository().FindById(context.Background(), 102)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "SKU-102", p.Code)
	assert.Equal(t, 10.5, p.Price)
	assert.Equal(t, 7.5, p.Quantity)
	assert.True(t, p.NeedsVectorization)
}

func TestFullImportResumesFromPersistedCursor(t *testing.T) {
	api := threePageCatalog()
	svc, factory := newImportFixture(api)

	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SyncStateRepository().SetState(context.Background(), entity.CursorImportNextPage, "2"))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.StartPage)
	assert.Equal(t, []int{2, 3}, api.searchCalls)
	assert.True(t, res.WrappedAround)
}

func TestFullImportThrottleKeepsCursor(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
			return nil, fmt.Errorf("produtos.pesquisa.php: %w", tiny.ErrThrottled)
		},
	}
	svc, factory := newImportFixture(api)

	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SyncStateRepository().SetState(context.Background(), entity.CursorImportNextPage, "4"))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Throttled)
	assert.Equal(t, 0, res.PagesProcessed)
	assert.Equal(t, 4, getCursor(t, factory, entity.CursorImportNextPage))
	assert.Equal(t, []int{4}, api.searchCalls, "the run stops at the first throttle")
}

func TestFullImportStopsRunAfterBrokenPage(t *testing.T) {
	api := threePageCatalog()
	inner := api.searchFn
	api.searchFn = func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
		if page == 1 {
			return nil, &tiny.APIError{Endpoint: "produtos.pesquisa.php", Messages: []string{"Erro interno"}}
		}
		return inner(ctx, term, page)
	}
	svc, factory := newImportFixture(api)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The run ends at the broken page with the cursor advanced past it.
	assert.Equal(t, 0, res.PagesProcessed)
	assert.Equal(t, []int{1}, api.searchCalls)
	assert.Equal(t, 2, res.NextPage)
	assert.Equal(t, 2, getCursor(t, factory, entity.CursorImportNextPage))

	// The next invocation resumes after it and finishes the pass.
	res2, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, api.searchCalls)
	assert.Equal(t, 2, res2.PagesProcessed)
	assert.True(t, res2.WrappedAround)
	assert.Equal(t, 1, getCursor(t, factory, entity.CursorImportNextPage))
}

func TestFullImportEmptyPageResetsCursor(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
			return &tiny.SearchPage{Page: page, TotalPages: 10}, nil
		},
	}
	svc, factory := newImportFixture(api)

	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SyncStateRepository().SetState(context.Background(), entity.CursorImportNextPage, "5"))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	// An empty page completes the cycle regardless of the reported
	// page count.
	assert.Equal(t, []int{5}, api.searchCalls)
	assert.True(t, res.WrappedAround)
	assert.Equal(t, 1, res.NextPage)
	assert.Equal(t, 1, getCursor(t, factory, entity.CursorImportNextPage))
}

func TestFullImportDetailFailureKeepsLastKnownQuantity(t *testing.T) {
	api := threePageCatalog()
	svc, factory := newImportFixture(api)

	// Seed a previous quantity for the product on page 1.
	reconciler := NewReconcileService(factory, logger.NopLogger{})
	seed := makeProduct(t, `{"id":101,"codigo":"SKU-101","nome":"Product 101","situacao":"A"}`)
	require.NoError(t, reconciler.UpsertProduct(context.Background(), &seed))
	require.NoError(t, reconciler.ApplyDefaultBalance(context.Background(), 101, 42))

	api.getProductFn = func(ctx context.Context, id int64) (*tiny.Product, error) {
		return nil, errors.New("detail endpoint down")
	}

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	// Registration still lands from the listing row; quantity is not
	// zeroed by the failed detail fetch.
	assert.Equal(t, 3, res.ProductsUpserted)
	assert.Equal(t, 0, res.StockApplied)

	uow := factory.NewUnitOfWork(context.Background())
	p, err := uow.ProductRepository().FindById(context.Background(), 101)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 42.0, p.Quantity)
}

func TestFullImportIsIdempotent(t *testing.T) {
	api := threePageCatalog()
	svc, factory := newImportFixture(api)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	uow := factory.NewUnitOfWork(context.Background())
	p, err := uow.ProductRepository().FindById(context.Background(), 103)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "SKU-103", p.Code)
	assert.Equal(t, 7.5, p.Quantity)
}
