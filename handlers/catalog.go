package handlers

import (
	"net/http"

	"chatbooking/middleware"
	"chatbooking/utils"

	"github.com/gin-gonic/gin"
)

// ListServicesHandler returns the tenant's service catalog.
// GET /api/catalog/services
func (hb *HandlerBundle) ListServicesHandler(c *gin.Context) {
	services, err := hb.CatalogRepo.ListServices(c.Request.Context(), middleware.GetTenantID(c))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListProvidersHandler returns the tenant's providers, optionally filtered
// by the service they offer.
// GET /api/catalog/providers?serviceId=
func (hb *HandlerBundle) ListProvidersHandler(c *gin.Context) {
	providers, err := hb.CatalogRepo.ListProviders(c.Request.Context(), middleware.GetTenantID(c), c.Query("serviceId"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}
