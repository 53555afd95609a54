package service

import (
	"context"
	"encoding/json"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/pkg/logger"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/tiny"
)

// IReconcileService applies upstream records to local storage. Each
// method is one atomic reconciliation step: registration upserts never
// touch quantities, and quantity writes either land fully or not at
// all.
type IReconcileService interface {
	UpsertProduct(ctx context.Context, p *tiny.Product) error
	ApplySnapshot(ctx context.Context, productId int64, detail *tiny.StockDetail) error
	ApplyDefaultBalance(ctx context.Context, productId int64, balance float64) error
	HasProduct(ctx context.Context, productId int64) (bool, error)
}

type reconcileService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewReconcileService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IReconcileService {
	return &reconcileService{
		uowFactory: uowFactory,
		log:        log,
	}
}

// UpsertProduct writes the registration fields of one upstream record.
// Stock quantity and embedding are left untouched so a re-import never
// erases synced balances or forces a redundant snapshot.
func (s *reconcileService) UpsertProduct(ctx context.Context, p *tiny.Product) error {
	product := &entity.Product{
		Id:           p.Id.Int64(),
		Code:         p.Code,
		Name:         p.Name,
		Sku:          p.Code,
		Gtin:         p.Gtin,
		Unit:         p.Unit,
		Price:        p.Price.Float64(),
		PromoPrice:   p.PromoPrice.Float64(),
		CostPrice:    p.CostPrice.Float64(),
		AvgCostPrice: p.AvgCostPrice.Float64(),
		Location:     p.Location,
		Status:       p.Status,
	}

	if p.CreatedAt != "" {
		if t, err := tiny.ParseTime(p.CreatedAt); err == nil {
			product.SourceCreatedAt = &t
		}
	}

	if raw := p.Raw(); raw != nil {
		if payload, err := json.Marshal(raw); err == nil {
			product.RawPayload = payload
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ProductRepository().Upsert(ctx, product)
}

// ApplySnapshot writes the per-deposit breakdown of one stock snapshot
// and then the aggregate, inside one transaction.
func (s *reconcileService) ApplySnapshot(ctx context.Context, productId int64, detail *tiny.StockDetail) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	deposits := detail.Deposits
	representative := entity.DefaultDepositCode

	if len(deposits) == 0 {
		if err := uow.ProductStockRepository().Upsert(ctx, &entity.ProductStock{
			ProductId:   productId,
			DepositCode: entity.DefaultDepositCode,
			Quantity:    detail.Balance.Float64(),
		}); err != nil {
			return err
		}
	}

	for i, d := range deposits {
		code := d.Code()
		if i == 0 {
			representative = code
		}
		if err := uow.ProductStockRepository().Upsert(ctx, &entity.ProductStock{
			ProductId:   productId,
			DepositCode: code,
			DepositName: d.Name,
			Quantity:    d.Balance.Float64(),
		}); err != nil {
			return err
		}
	}

	total := detail.TotalBalance()
	if err := uow.ProductRepository().UpdateAggregateStock(ctx, productId, total, representative); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.log.Debug("reconcile", "stock snapshot applied", map[string]interface{}{
		"product_id": productId,
		"deposits":   len(deposits),
		"total":      total,
	})
	return nil
}

// ApplyDefaultBalance records a single aggregate balance under the
// default deposit. Used when the upstream response carries no
// per-deposit breakdown.
func (s *reconcileService) ApplyDefaultBalance(ctx context.Context, productId int64, balance float64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ProductStockRepository().Upsert(ctx, &entity.ProductStock{
		ProductId:   productId,
		DepositCode: entity.DefaultDepositCode,
		Quantity:    balance,
	}); err != nil {
		return err
	}

	if err := uow.ProductRepository().UpdateAggregateStock(ctx, productId, balance, entity.DefaultDepositCode); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *reconcileService) HasProduct(ctx context.Context, productId int64) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	product, err := uow.ProductRepository().FindById(ctx, productId)
	if err != nil {
		return false, err
	}
	return product != nil, nil
}
