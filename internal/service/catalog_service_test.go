package service

import (
	"context"
	"testing"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, env *testEnv) (model.Category, model.Product) {
	t.Helper()
	category := model.Category{Name: "Construction", NameAr: "البناء", DisplayOrder: 1, IsActive: true}
	require.NoError(t, env.db.Create(&category).Error)

	product := model.Product{
		CategoryID:     &category.ID,
		SKU:            "CEM-50KG",
		Name:           "Cement bag 50kg",
		NameAr:         "كيس أسمنت 50 كجم",
		Unit:           "bag",
		UnitAr:         "كيس",
		EstimatedPrice: decimal.RequireFromString("18.50"),
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(&product).Error)

	inactive := model.Product{SKU: "OLD-SKU", Name: "Discontinued", Unit: "piece", IsActive: false}
	require.NoError(t, env.db.Create(&inactive).Error)
	return category, product
}

func TestCatalogListHidesInactive(t *testing.T) {
	env := newTestEnv(t)
	_, product := seedCatalog(t, env)
	ctx := context.Background()

	products, total, err := env.catalog.ListProducts(ctx, repository.ProductListFilter{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, product.SKU, products[0].SKU)

	_, err = env.catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
}

func TestCatalogSearchAndCategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	category, _ := seedCatalog(t, env)
	ctx := context.Background()

	byName, total, err := env.catalog.ListProducts(ctx, repository.ProductListFilter{
		Search: "cement", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, byName, 1)

	byCategory, total, err := env.catalog.ListProducts(ctx, repository.ProductListFilter{
		CategoryID: &category.ID, Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, byCategory, 1)

	none, total, err := env.catalog.ListProducts(ctx, repository.ProductListFilter{
		Search: "does-not-exist", Page: 1, Limit: 20,
	})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
	require.Empty(t, none)
}

func TestCategoriesOrderedForDisplay(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.db.Create(&model.Category{Name: "Plumbing", DisplayOrder: 2, IsActive: true}).Error)
	require.NoError(t, env.db.Create(&model.Category{Name: "Electrical", DisplayOrder: 1, IsActive: true}).Error)
	require.NoError(t, env.db.Create(&model.Category{Name: "Hidden", DisplayOrder: 0, IsActive: false}).Error)

	categories, err := env.catalog.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "Electrical", categories[0].Name)
	require.Equal(t, "Plumbing", categories[1].Name)
}

func TestGetProductNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, product := seedCatalog(t, env)

	// Deactivate and it disappears.
	require.NoError(t, env.db.Model(&model.Product{}).Where("id = ?", product.ID).
		Update("is_active", false).Error)
	_, err := env.catalog.GetProduct(context.Background(), product.ID)
	require.True(t, apperr.IsKind(err, apperr.NotFound))
}
