package models

import "time"

// ProviderStatus represents whether a provider can take jobs
type ProviderStatus string

const (
	ProviderStatusActive   ProviderStatus = "active"
	ProviderStatusInactive ProviderStatus = "inactive"
)

// Provider is a service provider that can be assigned to requests
type Provider struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	ServiceType string         `json:"service_type"`
	Phone       string         `json:"phone"`
	Email       string         `json:"email"`
	Status      ProviderStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IsActive reports whether the provider accepts assignments
func (p *Provider) IsActive() bool {
	return p.Status == ProviderStatusActive
}
