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

// RFQHandler exposes the buyer RFQ lifecycle and admin RFQ oversight.
type RFQHandler struct {
	rfqs service.RFQService
	bids service.BidService
}

func NewRFQHandler(rfqs service.RFQService, bids service.BidService) *RFQHandler {
	return &RFQHandler{rfqs: rfqs, bids: bids}
}

func (h *RFQHandler) RegisterRoutes(router *gin.RouterGroup) {
	rfqs := router.Group("/rfqs")
	{
		rfqs.POST("", middleware.RequireRole(model.RoleBuyer), h.Create)
		rfqs.GET("", middleware.RequireRole(model.RoleBuyer, model.RoleAdmin), h.List)
		rfqs.GET("/:id", middleware.RequireRole(model.RoleBuyer, model.RoleAdmin), h.Get)
		rfqs.POST("/:id/submit", middleware.RequireRole(model.RoleBuyer), h.Submit)
		rfqs.GET("/:id/bids", middleware.RequireRole(model.RoleAdmin), h.ListBids)
	}
}

// Create godoc
// @Summary Create a draft RFQ with its line items
// @Tags rfqs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateRFQRequest true "RFQ"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /rfqs [post]
func (h *RFQHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.CreateRFQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	rfq, err := h.rfqs.Create(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"RFQ created as draft", "تم إنشاء طلب عرض الأسعار كمسودة", rfq))
}

// List godoc
// @Summary List RFQs (buyers see their own, admins see all)
// @Tags rfqs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /rfqs [get]
func (h *RFQHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)
	filter := repository.RFQListFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	var (
		rows  []repository.RFQSummary
		total int64
		err   error
	)
	if middleware.UserRole(c) == model.RoleAdmin {
		rows, total, err = h.rfqs.ListAll(c.Request.Context(), filter)
	} else {
		rows, total, err = h.rfqs.ListMine(c.Request.Context(), userID, filter)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(rows, params.Page, params.Limit, total)))
}

// Get godoc
// @Summary Fetch one RFQ with its items
// @Tags rfqs
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rfqs/{id} [get]
func (h *RFQHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	rfq, err := h.rfqs.Get(c.Request.Context(), id, userID, middleware.UserRole(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(rfq))
}

// Submit godoc
// @Summary Submit a draft RFQ, opening it for vendor bids
// @Tags rfqs
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rfqs/{id}/submit [post]
func (h *RFQHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	rfq, err := h.rfqs.Submit(c.Request.Context(), id, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage(
		"RFQ submitted and open for bids", "تم تقديم طلب عرض الأسعار وهو متاح للعروض", rfq))
}

// ListBids godoc
// @Summary List all bids on an RFQ, cheapest first
// @Tags rfqs
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /rfqs/{id}/bids [get]
func (h *RFQHandler) ListBids(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.bids.ListForRFQ(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(rows))
}
