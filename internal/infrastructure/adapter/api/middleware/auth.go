package middleware

import (
	"net/http"
	"strings"

	domainerr "github.com/amirhossein-jamali/payment-processor/internal/domain/error"
	coreport "github.com/amirhossein-jamali/payment-processor/internal/domain/port/core"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/payment-processor/internal/infrastructure/adapter/auth"
	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by Auth
const (
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Auth requires a valid bearer token and stores the caller identity on the request
func Auth(tokens TokenValidator, logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(c, "Authentication required")
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			logger.Debug("Bearer token rejected", map[string]any{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
				"error":      err.Error(),
			})
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(RoleKey, claims.Role)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), auth.Identity{
			UserID: claims.Subject,
			Role:   claims.Role,
		}))
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", `Bearer realm="payments"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(domainerr.ErrForbidden),
		Kind:    "unauthorized",
		Message: message,
	})
}
