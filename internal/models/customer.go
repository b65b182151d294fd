package models

import (
	"strings"
	"time"
)

// Customer represents a customer keyed by email
type Customer struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	SavedAddresses []string  `json:"saved_addresses"`
	TotalBookings  int       `json:"total_bookings"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpsertCustomerRequest carries the contact details captured with a booking
type UpsertCustomerRequest struct {
	Email   string
	Name    string
	Phone   string
	Address string
}

// NormalizeEmail returns the lookup form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasAddress reports whether addr is already saved, ignoring case and surrounding space
func (c *Customer) HasAddress(addr string) bool {
	needle := strings.ToLower(strings.TrimSpace(addr))
	for _, a := range c.SavedAddresses {
		if strings.ToLower(strings.TrimSpace(a)) == needle {
			return true
		}
	}
	return false
}
