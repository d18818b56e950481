package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const tenantHeader = "X-Tenant-ID"

// TenantMiddleware requires every API request to name its tenant. All
// queries downstream are scoped by this value, so a missing header is
// rejected outright.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(tenantHeader))
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Missing X-Tenant-ID header"})
			return
		}
		c.Set("tenantID", tenantID)
		c.Next()
	}
}

// GetTenantID returns the tenant set by TenantMiddleware.
func GetTenantID(c *gin.Context) string {
	return c.GetString("tenantID")
}
