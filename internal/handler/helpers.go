package handler

import (
	"net/http"

	"backend/internal/apperr"
	"backend/internal/middleware"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// abortWithError maps a classified error to its HTTP status and bilingual
// envelope. Internal causes are never echoed to the client.
func abortWithError(c *gin.Context, err error) {
	ae := apperr.From(err)
	c.JSON(ae.Kind.HTTPStatus(), response.Fail(ae.Message, ae.Arabic))
}

// abortBinding answers a gin binding failure with the validator's message.
func abortBinding(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Fail(err.Error(), "بيانات الطلب غير صالحة"))
}

// uuidParam parses a :param path segment, answering 400 on junk input.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid identifier", "المعرف غير صالح"))
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Fail("Invalid token subject", "هوية رمز الدخول غير صالحة"))
		return uuid.Nil, false
	}
	return id, true
}

// listPayload is the standard list response body.
func listPayload(items interface{}, page, limit int, total int64) gin.H {
	return gin.H{
		"items":      items,
		"pagination": response.NewPagination(page, limit, total),
	}
}
