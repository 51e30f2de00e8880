package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrderHandler exposes bid-to-order conversion and the fulfilment lifecycle.
type OrderHandler struct {
	orders service.OrderService
}

func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleBuyer, model.RoleVendor, model.RoleAdmin)

	orders := router.Group("/orders")
	{
		orders.POST("", admin, h.ConvertBid)
		orders.GET("", anyRole, h.List)
		orders.GET("/:id", anyRole, h.Get)
		orders.PUT("/:id/status", admin, h.UpdateStatus)
		orders.PUT("/:id/qa", admin, h.UpdateQA)
	}
}

// ConvertBid godoc
// @Summary Convert an accepted bid into an order with markup
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ConvertBidRequest true "Conversion"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /orders [post]
func (h *OrderHandler) ConvertBid(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.ConvertBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	order, err := h.orders.ConvertBid(c.Request.Context(), adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"Order created, awaiting buyer payment", "تم إنشاء الطلبية وهي بانتظار دفع المشتري", order))
}

// List godoc
// @Summary List orders visible to the caller
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	rows, total, err := h.orders.List(c.Request.Context(), userID, middleware.UserRole(c),
		c.Query("status"), params.Page, params.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(rows, params.Page, params.Limit, total)))
}

// Get godoc
// @Summary Fetch one order with its snapshot items
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(c.Request.Context(), id, userID, middleware.UserRole(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(order))
}

// UpdateStatus godoc
// @Summary Update an order's fulfilment status
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param payload body service.UpdateOrderStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage(
		"Order status updated", "تم تحديث حالة الطلبية", order))
}

// UpdateQA godoc
// @Summary Record the warehouse QA result for an order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param payload body service.UpdateQARequest true "QA result"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /orders/{id}/qa [put]
func (h *OrderHandler) UpdateQA(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateQARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	order, err := h.orders.UpdateQA(c.Request.Context(), id, adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage(
		"QA result recorded", "تم تسجيل نتيجة فحص الجودة", order))
}
