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

// BidHandler exposes the vendor bidding flow.
type BidHandler struct {
	bids service.BidService
}

func NewBidHandler(bids service.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

func (h *BidHandler) RegisterRoutes(router *gin.RouterGroup) {
	vendor := middleware.RequireRole(model.RoleVendor)
	admin := middleware.RequireRole(model.RoleAdmin)

	bids := router.Group("/bids")
	{
		bids.GET("/available-rfqs", vendor, h.ListAvailableRFQs)
		bids.GET("/rfqs/:id", vendor, h.GetRFQForBidding)
		bids.POST("", vendor, h.Submit)
		bids.GET("", vendor, h.ListMine)
		bids.GET("/:id", middleware.RequireRole(model.RoleVendor, model.RoleAdmin), h.Get)
		bids.PUT("/:id/status", admin, h.Review)
	}
}

// ListAvailableRFQs godoc
// @Summary List open RFQs the vendor has not yet bid on
// @Tags bids
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bids/available-rfqs [get]
func (h *BidHandler) ListAvailableRFQs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	rows, total, err := h.bids.ListAvailableRFQs(c.Request.Context(), userID, params.Page, params.Limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(rows, params.Page, params.Limit, total)))
}

// GetRFQForBidding godoc
// @Summary Fetch an open RFQ with items for preparing a bid
// @Tags bids
// @Produce json
// @Security BearerAuth
// @Param id path string true "RFQ ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bids/rfqs/{id} [get]
func (h *BidHandler) GetRFQForBidding(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	rfq, err := h.bids.GetRFQForBidding(c.Request.Context(), userID, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(rfq))
}

// Submit godoc
// @Summary Submit a bid pricing every item of an open RFQ
// @Tags bids
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SubmitBidRequest true "Bid"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bids [post]
func (h *BidHandler) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req service.SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	bid, err := h.bids.Submit(c.Request.Context(), userID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"Bid submitted", "تم تقديم العرض", bid))
}

// ListMine godoc
// @Summary List the vendor's own bids
// @Tags bids
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bids [get]
func (h *BidHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)
	filter := repository.BidListFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	rows, total, err := h.bids.ListMine(c.Request.Context(), userID, filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(rows, params.Page, params.Limit, total)))
}

// Get godoc
// @Summary Fetch one bid with its priced items
// @Tags bids
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bid ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bids/{id} [get]
func (h *BidHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	bid, err := h.bids.Get(c.Request.Context(), id, userID, middleware.UserRole(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(bid))
}

// Review godoc
// @Summary Accept or reject a pending bid
// @Tags bids
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Bid ID"
// @Param payload body service.ReviewBidRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bids/{id}/status [put]
func (h *BidHandler) Review(c *gin.Context) {
	adminID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.ReviewBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	bid, err := h.bids.Review(c.Request.Context(), id, adminID, req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage(
		"Bid review recorded", "تم تسجيل مراجعة العرض", bid))
}
