package controller

import (
	"erp-catalog-be/internal/pkg/serverutils"
	"erp-catalog-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISyncController interface {
	RegisterRoutes(r fiber.Router)
	RunImport(ctx *fiber.Ctx) error
	RunStockSync(ctx *fiber.Ctx) error
	RunVectorize(ctx *fiber.Ctx) error
}

type syncController struct {
	importService    service.IFullImportService
	deltaService     service.IDeltaSyncService
	fallbackService  service.IFallbackSyncService
	vectorizeService service.IVectorizeService
	strategy         string
}

func NewSyncController(
	importService service.IFullImportService,
	deltaService service.IDeltaSyncService,
	fallbackService service.IFallbackSyncService,
	vectorizeService service.IVectorizeService,
	strategy string,
) ISyncController {
	return &syncController{
		importService:    importService,
		deltaService:     deltaService,
		fallbackService:  fallbackService,
		vectorizeService: vectorizeService,
		strategy:         strategy,
	}
}

func (c *syncController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sync/v1")
	h.Post("/import/run", c.RunImport)
	h.Post("/stock/run", c.RunStockSync)
	h.Post("/vectorize/run", c.RunVectorize)
}

func (c *syncController) RunImport(ctx *fiber.Ctx) error {
	res, err := c.importService.Run(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Import run finished", res))
}

// RunStockSync executes one stock-sync run using the configured
// strategy. A strategy query parameter overrides it for one run.
func (c *syncController) RunStockSync(ctx *fiber.Ctx) error {
	strategy := ctx.Query("strategy", c.strategy)

	switch strategy {
	case "fallback":
		res, err := c.fallbackService.Run(ctx.Context())
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Fallback stock sync finished", res))
	case "delta", "":
		res, err := c.deltaService.Run(ctx.Context())
		if err != nil {
			return err
		}
		return ctx.JSON(serverutils.SuccessResponse("Delta stock sync finished", res))
	default:
		return ctx.Status(fiber.StatusBadRequest).
			JSON(serverutils.ErrorResponse(400, "Unknown strategy: "+strategy))
	}
}

func (c *syncController) RunVectorize(ctx *fiber.Ctx) error {
	res, err := c.vectorizeService.RunOnce(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Vectorize batch finished", res))
}
