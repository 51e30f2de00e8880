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

// AdminHandler exposes account approval and the dashboard aggregates.
type AdminHandler struct {
	auth  service.AuthService
	admin service.AdminService
}

func NewAdminHandler(auth service.AuthService, admin service.AdminService) *AdminHandler {
	return &AdminHandler{auth: auth, admin: admin}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/users", h.ListUsers)
		admin.PUT("/users/:id/status", h.SetUserStatus)
		admin.GET("/stats", h.Stats)
	}
}

// ListUsers godoc
// @Summary List accounts with optional role/status filters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.UserListFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	users, total, err := h.auth.ListUsers(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(listPayload(users, params.Page, params.Limit, total)))
}

// SetUserStatus godoc
// @Summary Approve, suspend, or reject an account
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param payload body service.UpdateUserStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	user, err := h.auth.SetUserStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OKMessage(
		"User status updated", "تم تحديث حالة المستخدم", user))
}

// Stats godoc
// @Summary Dashboard counts by status plus escrow and markup totals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(stats))
}
