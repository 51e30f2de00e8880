package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductListFilter narrows catalog listings.
type ProductListFilter struct {
	CategoryID *uuid.UUID
	Search     string
	Page       int
	Limit      int
}

// ProductRepository is the read-only catalog data access contract.
type ProductRepository interface {
	List(ctx context.Context, filter ProductListFilter) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) List(ctx context.Context, filter ProductListFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Product{}).Where("is_active = ?", true)
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR name_ar LIKE ? OR sku LIKE ?", term, term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Category").Order("name asc").Offset(offset).Limit(filter.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Preload("Category").First(&product, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := GetDB(ctx, r.db).Where("is_active = ?", true).Order("display_order asc, name asc").Find(&categories).Error
	return categories, err
}
