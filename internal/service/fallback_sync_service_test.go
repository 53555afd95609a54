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

func newFallbackFixture(api tiny.API) (*fallbackSyncService, *memory.RepositoryFactory) {
	factory := memory.NewRepositoryFactory()
	reconciler := NewReconcileService(factory, logger.NopLogger{})
	svc := NewFallbackSyncService(api, factory, reconciler, logger.NopLogger{}, testSyncConfig()).(*fallbackSyncService)
	svc.sleep = noSleep
	return svc, factory
}

// stocklessListing serves listing rows without any quantity field, the
// realistic search-page shape.
func stocklessListing(totalPages int) func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
	return func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
		id := int64(200 + page)
		return &tiny.SearchPage{
			Page:       page,
			TotalPages: totalPages,
			Products: []tiny.Product{
				makeProduct(nil, fmt.Sprintf(`{"id":%d,"codigo":"SKU-%d","nome":"Product %d","situacao":"A"}`, id, id, id)),
			},
		}, nil
	}
}

func TestFallbackSyncRefetchesDetailForStock(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: stocklessListing(2),
		getProductFn: func(ctx context.Context, id int64) (*tiny.Product, error) {
			p := makeProduct(nil, fmt.Sprintf(`{"id":%d,"codigo":"SKU-%d","nome":"Product %d","situacao":"A","saldo":"9,25"}`, id, id, id))
			return &p, nil
		},
	}
	svc, factory := newFallbackFixture(api)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	// Every listed item gets its detail re-fetched; the quantity lives
	// there, not on the listing row.
	assert.Equal(t, []int64{201, 202}, api.getProductCalls)
	assert.Equal(t, 2, res.PagesProcessed)
	assert.Equal(t, 2, res.StockApplied)
	assert.True(t, res.WrappedAround)

	uow := factory.NewUnitOfWork(context.Background())
	p, err := uow.ProductRepository().FindById(context.Background(), 201)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 9.25, p.Quantity)
	assert.Equal(t, entity.DefaultDepositCode, p.DepositCode)
}

func TestFallbackSyncDetailFailureKeepsLastKnownQuantity(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: stocklessListing(1),
		getProductFn: func(ctx context.Context, id int64) (*tiny.Product, error) {
			return nil, errors.New("detail endpoint down")
		},
	}
	svc, factory := newFallbackFixture(api)

	// Seed a previous quantity for the product on page 1.
	reconciler := NewReconcileService(factory, logger.NopLogger{})
	seed := makeProduct(t, `{"id":201,"codigo":"SKU-201","nome":"Product 201","situacao":"A"}`)
	require.NoError(t, reconciler.UpsertProduct(context.Background(), &seed))
	require.NoError(t, reconciler.ApplyDefaultBalance(context.Background(), 201, 42))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.StockApplied)

	uow := factory.NewUnitOfWork(context.Background())
	p, err := uow.ProductRepository().FindById(context.Background(), 201)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 42.0, p.Quantity)
}

func TestFallbackSyncDetailWithoutQuantityWritesNothing(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: stocklessListing(1),
		getProductFn: func(ctx context.Context, id int64) (*tiny.Product, error) {
			p := makeProduct(nil, fmt.Sprintf(`{"id":%d,"codigo":"SKU-%d","nome":"Product %d","situacao":"A"}`, id, id, id))
			return &p, nil
		},
	}
	svc, factory := newFallbackFixture(api)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.StockApplied)

	// Registered, but the quantity stays unknown.
	uow := factory.NewUnitOfWork(context.Background())
	p, err := uow.ProductRepository().FindById(context.Background(), 201)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 0.0, p.Quantity)
	assert.Empty(t, p.DepositCode)
}

func TestFallbackSyncUsesOwnCursor(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: stocklessListing(10),
	}
	svc, factory := newFallbackFixture(api)

	uow := factory.NewUnitOfWork(context.Background())
	states := uow.SyncStateRepository()
	require.NoError(t, states.SetState(context.Background(), entity.CursorImportNextPage, "9"))
	require.NoError(t, states.SetState(context.Background(), entity.CursorFallbackNextPage, "3"))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.StartPage)
	assert.Equal(t, []int{3, 4, 5, 6}, api.searchCalls)
	assert.Equal(t, 7, res.NextPage)

	// The import cursor is untouched.
	importCursor, err := states.GetNumber(context.Background(), entity.CursorImportNextPage, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, importCursor)
}

func TestFallbackSyncEmptyPageResetsCursor(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
			return &tiny.SearchPage{Page: page, TotalPages: 10}, nil
		},
	}
	svc, factory := newFallbackFixture(api)

	uow := factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.SyncStateRepository().SetState(context.Background(), entity.CursorFallbackNextPage, "5"))

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	// An empty page completes the cycle regardless of the reported
	// page count.
	assert.Equal(t, []int{5}, api.searchCalls)
	assert.True(t, res.WrappedAround)
	assert.Equal(t, 1, res.NextPage)

	cursor, err := uow.SyncStateRepository().GetNumber(context.Background(), entity.CursorFallbackNextPage, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cursor)
}

func TestFallbackSyncStopsRunAfterBrokenPage(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
			return nil, &tiny.APIError{Endpoint: "produtos.pesquisa.php", Messages: []string{"Erro interno"}}
		},
	}
	svc, factory := newFallbackFixture(api)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The broken page is skipped and the run ends immediately.
	assert.Equal(t, []int{1}, api.searchCalls)
	assert.Equal(t, 0, res.PagesProcessed)
	assert.Equal(t, 2, res.NextPage)

	uow := factory.NewUnitOfWork(context.Background())
	cursor, err := uow.SyncStateRepository().GetNumber(context.Background(), entity.CursorFallbackNextPage, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, cursor)
}

func TestFallbackSyncThrottleKeepsCursor(t *testing.T) {
	api := &fakeTinyAPI{
		searchFn: func(ctx context.Context, term string, page int) (*tiny.SearchPage, error) {
			return nil, fmt.Errorf("produtos.pesquisa.php: %w", tiny.ErrThrottled)
		},
	}
	svc, factory := newFallbackFixture(api)

	res, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Throttled)

	uow := factory.NewUnitOfWork(context.Background())
	cursor, err := uow.SyncStateRepository().GetNumber(context.Background(), entity.CursorFallbackNextPage, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cursor)
}
