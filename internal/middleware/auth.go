package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fieldline/internal/domain"
	"fieldline/internal/utils"
)

const (
	CtxUserID   = "user_id"
	CtxTenantID = "tenant_id"
	CtxUsername = "username"
	CtxRole     = "role"
)

// JWTAuth validates the bearer token and stores the caller identity in
// the gin context. All tenant scoping downstream hangs off CtxTenantID.
func JWTAuth(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		claims, err := issuer.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxTenantID, claims.TenantID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    domain.CodeUnauthorized,
			"message": msg,
		},
	})
}

// TenantID returns the tenant id set by JWTAuth.
func TenantID(c *gin.Context) int64 {
	return c.GetInt64(CtxTenantID)
}

// UserID returns the user id set by JWTAuth.
func UserID(c *gin.Context) int64 {
	return c.GetInt64(CtxUserID)
}
