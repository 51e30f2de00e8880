package service

import (
	"context"
	"errors"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogService serves the read-only product reference catalog.
type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductListFilter) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type catalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) CatalogService {
	return &catalogService{products: products}
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductListFilter) ([]model.Product, int64, error) {
	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internalf("Failed to list products", "فشل جلب المنتجات", err)
	}
	return products, total, nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "Product not found", "المنتج غير موجود")
		}
		return nil, apperr.Internalf("Failed to load product", "فشل تحميل المنتج", err)
	}
	return product, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.products.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internalf("Failed to list categories", "فشل جلب الفئات", err)
	}
	return categories, nil
}
