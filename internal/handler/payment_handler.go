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
)

// PaymentHandler exposes the escrow payment flow.
type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := middleware.RequireRole(model.RoleAdmin)
	anyRole := middleware.RequireRole(model.RoleBuyer, model.RoleVendor, model.RoleAdmin)

	router.POST("/orders/:id/confirm-payment", middleware.RequireRole(model.RoleBuyer), h.Confirm)

	payments := router.Group("/payments")
	{
		payments.GET("/escrow/summary", admin, h.EscrowSummary)
		payments.GET("", anyRole, h.List)
		payments.GET("/:id", anyRole, h.Get)
		payments.PUT("/:id/verify", admin, h.Verify)
		payments.POST("/:id/release", admin, h.Release)
	}
}

// Confirm godoc
// @Summary Record the buyer's bank transfer for an order
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param payload body service.ConfirmPaymentRequest true "Payment confirmation"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /orders/{id}/confirm-payment [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orderID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	payment, err := h.payments.Confirm(c.Request.Context(), userID, orderID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"Payment recorded, awaiting verification", "تم تسجيل الدفعة وهي بانتظار التحقق", payment))
}

// Verify godoc
// @Summary Approve or reject a pending buyer payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Param payload body service.VerifyPaymentRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /payments/{id}/verify [put]
func (h *PaymentHandler) Verify(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	payment, err := h.payments.Verify(c.Request.Context(), id, adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage(
		"Payment verification recorded", "تم تسجيل نتيجة التحقق من الدفعة", payment))
}

// Release godoc
// @Summary Release the vendor payout from escrow after QA passes
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Buyer payment ID"
// @Param payload body service.ReleasePaymentRequest true "Release"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /payments/{id}/release [post]
func (h *PaymentHandler) Release(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ReleasePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	payment, err := h.payments.Release(c.Request.Context(), id, adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"Vendor payment released", "تم صرف دفعة المورد", payment))
}

// List godoc
// @Summary List payments visible to the caller
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param payment_type query string false "Filter by payment type"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)
	filter := repository.PaymentListFilter{
		Status:      c.Query("status"),
		PaymentType: c.Query("payment_type"),
		Page:        params.Page,
		Limit:       params.Limit,
	}

	rows, total, err := h.payments.List(c.Request.Context(), userID, middleware.UserRole(c), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(rows, params.Page, params.Limit, total)))
}

// Get godoc
// @Summary Fetch one payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	payment, err := h.payments.Get(c.Request.Context(), id, userID, middleware.UserRole(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(payment))
}

// EscrowSummary godoc
// @Summary Summarize money held in and released from escrow
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /payments/escrow/summary [get]
func (h *PaymentHandler) EscrowSummary(c *gin.Context) {
	summary, err := h.payments.Escrow(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(summary))
}
