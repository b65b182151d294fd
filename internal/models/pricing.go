package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingKey identifies a catalog entry
type PricingKey struct {
	Category    string
	ServiceType string
}

// PricingEntry is one row of the pricing catalog
type PricingEntry struct {
	ID                     int64           `json:"id"`
	Category               string          `json:"category"`
	ServiceType            string          `json:"service_type"`
	ItemDescription        string          `json:"item_description,omitempty"`
	ProviderBasePrice      decimal.Decimal `json:"provider_base_price"`
	CustomerDisplayPrice   decimal.Decimal `json:"customer_display_price"`
	ColorSurchargeProvider decimal.Decimal `json:"color_surcharge_provider"`
	ColorSurchargeCustomer decimal.Decimal `json:"color_surcharge_customer"`
	IsWhiteApplicable      bool            `json:"is_white_applicable"`
	CommissionPercentage   decimal.Decimal `json:"commission_percentage"`
	Active                 bool            `json:"active"`
	CreatedAt              time.Time       `json:"created_at"`
}

// Key returns the catalog key of the entry
func (p PricingEntry) Key() PricingKey {
	return PricingKey{Category: p.Category, ServiceType: p.ServiceType}
}

// UnitPrices returns the per-unit customer and provider prices.
// The color surcharge only applies when the entry allows it.
func (p PricingEntry) UnitPrices(isWhite bool) (customer, provider decimal.Decimal) {
	customer = p.CustomerDisplayPrice
	provider = p.ProviderBasePrice
	if isWhite && p.IsWhiteApplicable {
		customer = customer.Add(p.ColorSurchargeCustomer)
		provider = provider.Add(p.ColorSurchargeProvider)
	}
	return customer, provider
}

// PublicPricingResponse is the customer-facing view of a catalog entry
type PublicPricingResponse struct {
	Category               string          `json:"category"`
	ServiceType            string          `json:"service_type"`
	ItemDescription        string          `json:"item_description,omitempty"`
	CustomerDisplayPrice   decimal.Decimal `json:"customer_display_price"`
	ColorSurchargeCustomer decimal.Decimal `json:"color_surcharge_customer"`
	IsWhiteApplicable      bool            `json:"is_white_applicable"`
}

// ToPublic hides provider-side prices
func (p PricingEntry) ToPublic() PublicPricingResponse {
	return PublicPricingResponse{
		Category:               p.Category,
		ServiceType:            p.ServiceType,
		ItemDescription:        p.ItemDescription,
		CustomerDisplayPrice:   p.CustomerDisplayPrice,
		ColorSurchargeCustomer: p.ColorSurchargeCustomer,
		IsWhiteApplicable:      p.IsWhiteApplicable,
	}
}
