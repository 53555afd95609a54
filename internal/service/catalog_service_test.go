package service

import (
	"context"
	"testing"
	"time"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSearchRanksByVectorProximity(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	reconciler := NewReconcileService(factory, logger.NopLogger{})
	uow := factory.NewUnitOfWork(context.Background())

	cable := makeProduct(t, `{"id":1,"codigo":"CAB-1","nome":"Cabo HDMI","situacao":"A"}`)
	mouse := makeProduct(t, `{"id":2,"codigo":"MOU-1","nome":"Mouse sem fio","situacao":"A"}`)
	require.NoError(t, reconciler.UpsertProduct(context.Background(), &cable))
	require.NoError(t, reconciler.UpsertProduct(context.Background(), &mouse))

	now := time.Now()
	require.NoError(t, uow.ProductRepository().UpdateEmbedding(context.Background(), 1, []float32{1, 0}, now))
	require.NoError(t, uow.ProductRepository().UpdateEmbedding(context.Background(), 2, []float32{0, 1}, now))

	// The query embeds close to the mouse vector.
	provider := &fakeEmbeddingProvider{vector: []float32{0.1, 0.99}}
	svc := NewCatalogService(factory, provider)

	res, err := svc.Search(context.Background(), &dto.SearchCatalogRequest{Query: "wireless mouse", Limit: 2})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, int64(2), res[0].Id)
	assert.Equal(t, int64(1), res[1].Id)
}

func TestCatalogGetProductIncludesStockBreakdown(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	reconciler := NewReconcileService(factory, logger.NopLogger{})

	p := makeProduct(t, `{"id":5,"codigo":"SKU-5","nome":"Widget","situacao":"A"}`)
	require.NoError(t, reconciler.UpsertProduct(context.Background(), &p))
	require.NoError(t, reconciler.ApplyDefaultBalance(context.Background(), 5, 8))

	svc := NewCatalogService(factory, &fakeEmbeddingProvider{})

	res, err := svc.GetProduct(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "SKU-5", res.Code)
	assert.Equal(t, 8.0, res.Quantity)
	require.Len(t, res.Stocks, 1)
	assert.Equal(t, 8.0, res.Stocks[0].Quantity)
}

func TestCatalogGetProductUnknownIdReturnsNil(t *testing.T) {
	factory := memory.NewRepositoryFactory()
	svc := NewCatalogService(factory, &fakeEmbeddingProvider{})

	res, err := svc.GetProduct(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, res)
}
