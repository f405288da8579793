package services

import (
	"context"

	"bazaar/internal/domain"
	"bazaar/internal/validate"
)

const PageSize = 12

type CatalogService struct {
	Products ProductBackend
	Sellers  SellerBackend
}

func NewCatalogService(products ProductBackend, sellers SellerBackend) *CatalogService {
	return &CatalogService{Products: products, Sellers: sellers}
}

func (s *CatalogService) Home(ctx context.Context, page int) (domain.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	return s.Products.List(ctx, page, PageSize)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id, ok := validate.ID(id)
	if !ok {
		return domain.Product{}, ErrInvalidID
	}
	return s.Products.Get(ctx, id)
}

func (s *CatalogService) Search(ctx context.Context, q string) ([]domain.Product, error) {
	q, ok := validate.Q(q)
	if !ok {
		return nil, ErrInvalidQuery
	}
	return s.Products.Search(ctx, q)
}

func (s *CatalogService) Shops(ctx context.Context) ([]domain.SellerProfile, error) {
	return s.Sellers.List(ctx)
}

func (s *CatalogService) Shop(ctx context.Context, id string) (domain.SellerProfile, error) {
	id, ok := validate.ID(id)
	if !ok {
		return domain.SellerProfile{}, ErrInvalidID
	}
	return s.Sellers.Get(ctx, id)
}
