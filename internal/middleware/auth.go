// internal/middleware/auth.go
package middleware

import (
	"strings"

	"github.com/javajoker/vendor-console/internal/i18n"
	"github.com/javajoker/vendor-console/internal/services"
	"github.com/javajoker/vendor-console/internal/utils"

	"github.com/gin-gonic/gin"
)

// VendorRequired authenticates the vendor and forwards the same token to the
// Product API on every upstream call made for this request.
func VendorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidToken))
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := utils.ValidateJWT(token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthTokenExpired))
			c.Abort()
			return
		}
		if claims.Role != "" && claims.Role != utils.RoleVendor {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}

		c.Set("vendor_id", claims.VendorID)
		c.Set("vendor_name", claims.Name)
		c.Request = c.Request.WithContext(services.WithBearerToken(c.Request.Context(), token))
		c.Next()
	}
}
