package models

// Service represents a bookable service in a tenant's catalog.
// The catalog is managed by an external admin surface; this core reads it only.
type Service struct {
	ID              string   `bson:"id" json:"id"`
	TenantID        string   `bson:"tenantId" json:"tenantId"`
	Name            string   `bson:"name" json:"name"`
	Description     string   `bson:"description,omitempty" json:"description,omitempty"`
	Category        string   `bson:"category,omitempty" json:"category,omitempty"`
	DurationMinutes int      `bson:"durationMinutes" json:"durationMinutes"`
	Price           *float64 `bson:"price,omitempty" json:"price,omitempty"`
	Active          bool     `bson:"active" json:"active"`
}

// IsAvailable reports whether the service can currently be booked.
func (s *Service) IsAvailable() bool {
	return s.Active && s.DurationMinutes > 0
}

// Provider represents a professional who delivers one or more services.
type Provider struct {
	ID         string   `bson:"id" json:"id"`
	TenantID   string   `bson:"tenantId" json:"tenantId"`
	Name       string   `bson:"name" json:"name"`
	Bio        string   `bson:"bio,omitempty" json:"bio,omitempty"`
	ServiceIDs []string `bson:"serviceIds" json:"serviceIds"`
	Timezone   string   `bson:"timezone" json:"timezone"` // IANA name, e.g. "America/Mexico_City"
	Active     bool     `bson:"active" json:"active"`
}

// CanProvideService reports whether the provider is active and offers the service.
func (p *Provider) CanProvideService(serviceID string) bool {
	if !p.Active {
		return false
	}
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
