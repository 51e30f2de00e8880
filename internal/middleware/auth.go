package middleware

import (
	"net/http"
	"os"
	"strings"

	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by the auth middleware.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxUserRole  = "userRole"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// RequireRole validates the bearer token and checks the user's role against
// the allow-list. Missing/invalid token → 401, role not allowed → 403.
// On success the claims identity is placed on the gin context.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Fail("Authorization required", "التفويض مطلوب"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Fail("Invalid authorization format. Expected 'Bearer <token>'", "صيغة التفويض غير صحيحة"))
			return
		}

		claims, err := ParseToken(parts[1], GetJWTSecret())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.Fail("Invalid or expired token", "رمز الدخول غير صالح أو منتهي الصلاحية"))
			return
		}

		userRole, _ := claims["role"].(string)
		roleAllowed := false
		for _, role := range allowedRoles {
			if userRole == role {
				roleAllowed = true
				break
			}
		}
		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.Fail("Access denied: insufficient permissions", "تم رفض الوصول: صلاحيات غير كافية"))
			return
		}

		c.Set(CtxUserID, claims["sub"])
		c.Set(CtxUserEmail, claims["email"])
		c.Set(CtxUserRole, userRole)

		c.Next()
	}
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(tokenString string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = jwt.ErrTokenMalformed
		}
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// UserID returns the authenticated user id from the gin context.
func UserID(c *gin.Context) string {
	id, _ := c.Get(CtxUserID)
	s, _ := id.(string)
	return s
}

// UserRole returns the authenticated role from the gin context.
func UserRole(c *gin.Context) string {
	role, _ := c.Get(CtxUserRole)
	s, _ := role.(string)
	return s
}
