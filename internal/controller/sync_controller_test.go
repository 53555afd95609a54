package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImportService struct{ runs int }

func (s *stubImportService) Run(ctx context.Context) (*dto.ImportRunResult, error) {
	s.runs++
	return &dto.ImportRunResult{StartPage: 1, PagesProcessed: 4, NextPage: 5}, nil
}

type stubDeltaService struct{ runs int }

func (s *stubDeltaService) Run(ctx context.Context) (*dto.DeltaSyncResult, error) {
	s.runs++
	return &dto.DeltaSyncResult{NewWatermark: "15/01/2024 10:00:00"}, nil
}

type stubFallbackService struct{ runs int }

func (s *stubFallbackService) Run(ctx context.Context) (*dto.FallbackSyncResult, error) {
	s.runs++
	return &dto.FallbackSyncResult{PagesProcessed: 4}, nil
}

type stubVectorizeService struct{ runs int }

func (s *stubVectorizeService) RunOnce(ctx context.Context) (*dto.VectorizeResult, error) {
	s.runs++
	return &dto.VectorizeResult{Scanned: 3, Embedded: 3}, nil
}

func newSyncTestApp(strategy string) (*fiber.App, *stubImportService, *stubDeltaService, *stubFallbackService) {
	imp := &stubImportService{}
	delta := &stubDeltaService{}
	fallback := &stubFallbackService{}
	vectorize := &stubVectorizeService{}

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewSyncController(imp, delta, fallback, vectorize, strategy).RegisterRoutes(api)
	return app, imp, delta, fallback
}

func TestRunImportEndpoint(t *testing.T) {
	app, imp, _, _ := newSyncTestApp("delta")

	req := httptest.NewRequest(http.MethodPost, "/api/sync/v1/import/run", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, imp.runs)

	var body serverutils.BaseResponse[dto.ImportRunResult]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, 4, body.Data.PagesProcessed)
	assert.Equal(t, 5, body.Data.NextPage)
}

func TestRunStockSyncUsesConfiguredStrategy(t *testing.T) {
	app, _, delta, fallback := newSyncTestApp("fallback")

	req := httptest.NewRequest(http.MethodPost, "/api/sync/v1/stock/run", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, fallback.runs)
	assert.Equal(t, 0, delta.runs)
}

func TestRunStockSyncStrategyOverride(t *testing.T) {
	app, _, delta, fallback := newSyncTestApp("fallback")

	req := httptest.NewRequest(http.MethodPost, "/api/sync/v1/stock/run?strategy=delta", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, delta.runs)
	assert.Equal(t, 0, fallback.runs)
}

func TestRunStockSyncRejectsUnknownStrategy(t *testing.T) {
	app, _, _, _ := newSyncTestApp("delta")

	req := httptest.NewRequest(http.MethodPost, "/api/sync/v1/stock/run?strategy=bogus", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body serverutils.BaseResponse[any]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
}
