package service

import (
	"context"

	"erp-catalog-be/internal/dto"
	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/repository/unitofwork"
	"erp-catalog-be/pkg/embedding"
)

const defaultSearchLimit = 10

// ICatalogService is the read side of the synced catalog.
type ICatalogService interface {
	GetProduct(ctx context.Context, id int64) (*dto.ProductDetailResponse, error)
	Search(ctx context.Context, req *dto.SearchCatalogRequest) ([]dto.ProductResponse, error)
}

type catalogService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   embedding.EmbeddingProvider
}

func NewCatalogService(uowFactory unitofwork.RepositoryFactory, provider embedding.EmbeddingProvider) ICatalogService {
	return &catalogService{
		uowFactory: uowFactory,
		provider:   provider,
	}
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*dto.ProductDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	product, err := uow.ProductRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	stocks, err := uow.ProductStockRepository().FindByProductId(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &dto.ProductDetailResponse{
		ProductResponse: toProductResponse(product),
		Stocks:          make([]dto.ProductStockResponse, 0, len(stocks)),
	}
	for _, st := range stocks {
		res.Stocks = append(res.Stocks, dto.ProductStockResponse{
			DepositCode: st.DepositCode,
			DepositName: st.DepositName,
			Quantity:    st.Quantity,
			UpdatedAt:   st.UpdatedAt,
		})
	}
	return res, nil
}

// Search embeds the query text and ranks products by vector proximity.
func (s *catalogService) Search(ctx context.Context, req *dto.SearchCatalogRequest) ([]dto.ProductResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	queryEmbedding, err := s.provider.Generate(req.Query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	products, err := uow.ProductRepository().SearchByEmbedding(ctx, queryEmbedding.Embedding.Values, limit)
	if err != nil {
		return nil, err
	}

	res := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(p))
	}
	return res, nil
}

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		Id:          p.Id,
		Code:        p.Code,
		Name:        p.Name,
		Gtin:        p.Gtin,
		Unit:        p.Unit,
		Price:       p.Price,
		PromoPrice:  p.PromoPrice,
		Status:      p.Status,
		Quantity:    p.Quantity,
		DepositCode: p.DepositCode,
		UpdatedAt:   p.UpdatedAt,
	}
}
