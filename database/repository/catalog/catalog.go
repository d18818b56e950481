package catalogRepo

import (
	"context"

	"chatbooking/models"
)

// CatalogRepository is the read-only view of a tenant's services and
// providers. Catalog mutation belongs to an external admin surface.
type CatalogRepository interface {
	// GetService returns the service or nil when absent for this tenant.
	GetService(ctx context.Context, tenantID, serviceID string) (*models.Service, error)
	// GetProvider returns the provider or nil when absent for this tenant.
	GetProvider(ctx context.Context, tenantID, providerID string) (*models.Provider, error)
	// ListServices returns all services of the tenant.
	ListServices(ctx context.Context, tenantID string) ([]models.Service, error)
	// ListProviders returns the tenant's providers, optionally restricted
	// to those offering serviceID.
	ListProviders(ctx context.Context, tenantID, serviceID string) ([]models.Provider, error)
}
