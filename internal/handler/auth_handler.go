package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes registration, login, and the current-account view.
type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register/buyer", h.RegisterBuyer)
		auth.POST("/register/vendor", h.RegisterVendor)
		auth.POST("/login", h.Login)
		auth.GET("/me",
			middleware.RequireRole(model.RoleBuyer, model.RoleVendor, model.RoleAdmin),
			h.Me)
	}
}

// RegisterBuyer godoc
// @Summary Register a buyer account with its company profile
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body service.RegisterBuyerRequest true "Buyer registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register/buyer [post]
func (h *AuthHandler) RegisterBuyer(c *gin.Context) {
	var req service.RegisterBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	res, err := h.auth.RegisterBuyer(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"Registration received. Your account awaits admin approval.",
		"تم استلام التسجيل. حسابك في انتظار موافقة المسؤول.",
		res))
}

// RegisterVendor godoc
// @Summary Register a vendor account with its company profile
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body service.RegisterVendorRequest true "Vendor registration"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register/vendor [post]
func (h *AuthHandler) RegisterVendor(c *gin.Context) {
	var req service.RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	res, err := h.auth.RegisterVendor(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.OKMessage(
		"Registration received. Your account awaits admin approval.",
		"تم استلام التسجيل. حسابك في انتظار موافقة المسؤول.",
		res))
}

// Login godoc
// @Summary Exchange credentials for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBinding(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(res))
}

// Me godoc
// @Summary Return the authenticated account and its profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(res))
}
