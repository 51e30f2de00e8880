package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler exposes the read-only reference catalog.
type ProductHandler struct {
	catalog service.CatalogService
}

func NewProductHandler(catalog service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	authed := middleware.RequireRole(model.RoleBuyer, model.RoleVendor, model.RoleAdmin)

	products := router.Group("/products", authed)
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)
	}
	router.GET("/categories", authed, h.ListCategories)
}

// List godoc
// @Summary List active catalog products
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param category_id query string false "Filter by category"
// @Param search query string false "Match against name, Arabic name, or SKU"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.ProductListFilter{
		Search: c.Query("search"),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Fail("Invalid category identifier", "معرف الفئة غير صالح"))
			return
		}
		filter.CategoryID = &id
	}

	products, total, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(products, params.Page, params.Limit, total)))
}

// Get godoc
// @Summary Fetch one catalog product
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(product))
}

// ListCategories godoc
// @Summary List product categories in display order
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(categories))
}
