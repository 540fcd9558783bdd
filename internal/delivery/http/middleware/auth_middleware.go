package middleware

import (
	"net/http"
	"strings"

	"go-hr-tracker/internal/delivery/http/response"
	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/auth"
	"go-hr-tracker/pkg/security"

	"github.com/gin-gonic/gin"
)

// AdminAuth accepts bearer tokens issued by /admin/login or by the external
// identity provider behind JWKS_URL. Only the admin role passes.
func AdminAuth(verifier *auth.TokenVerifier, audit *security.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			audit.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString(RequestIDKey), c.FullPath(), "missing_token")
			response.Error(c, http.StatusUnauthorized, "Authentication credentials were not provided.", nil)
			c.Abort()
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(tokenString))
		if err != nil {
			audit.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString(RequestIDKey), c.FullPath(), "invalid_token")
			response.Error(c, http.StatusUnauthorized, "Invalid or expired token.", nil)
			c.Abort()
			return
		}

		if claims.Role != domain.RoleAdmin {
			audit.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetString(RequestIDKey), c.FullPath(), "insufficient_role")
			response.Error(c, http.StatusForbidden, "Admin privileges required.", nil)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyAdminUser), claims.Subject)
		c.Set(string(domain.KeyAdminRole), claims.Role)

		c.Next()
	}
}
