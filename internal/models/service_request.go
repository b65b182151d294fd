package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wire formats for the booking schedule
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// defaultServiceLabel is used when a request carries no items to name it by
const defaultServiceLabel = "Cleaning Service"

// RequestStatus represents the lifecycle state of a service request
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusConfirmed  RequestStatus = "confirmed"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusConfirmed, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// Priority represents how urgently a request should be dispatched
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is a known priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// LineItemInput is a cart line as submitted by the customer
type LineItemInput struct {
	Category    string `json:"category"`
	ServiceType string `json:"type"`
	Quantity    int    `json:"quantity"`
	IsWhite     bool   `json:"is_white"`
}

// PricedLineItem is a cart line with its pricing frozen at creation time
type PricedLineItem struct {
	ID                int64           `json:"id,omitempty"`
	Category          string          `json:"category"`
	ServiceType       string          `json:"type"`
	Quantity          int             `json:"quantity"`
	IsWhite           bool            `json:"is_white"`
	UnitCustomerPrice decimal.Decimal `json:"unit_customer_price"`
	UnitProviderPrice decimal.Decimal `json:"unit_provider_price"`
	LineCustomerTotal decimal.Decimal `json:"customer_price"`
	LineProviderTotal decimal.Decimal `json:"provider_price"`
	LineCommission    decimal.Decimal `json:"commission"`
}

// Quote is the priced result of a cart
type Quote struct {
	LineItems             []PricedLineItem `json:"line_items"`
	CalloutFee            decimal.Decimal  `json:"callout_fee"`
	TotalCustomerPaid     decimal.Decimal  `json:"total_customer_paid"`
	TotalProviderPayout   decimal.Decimal  `json:"total_provider_payout"`
	TotalCommissionEarned decimal.Decimal  `json:"total_commission_earned"`
}

// ServiceRequest is a customer booking and its dispatch state
type ServiceRequest struct {
	ID         int64
	CustomerID int64

	// contact snapshot taken at creation
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	CustomerAddress    string
	UnitNumber         string
	ComplexName        string
	AccessInstructions string

	PreferredDate   time.Time
	PreferredTime   string
	AdditionalNotes string

	Items                 []PricedLineItem
	TotalCustomerPaid     decimal.Decimal
	TotalProviderPayout   decimal.Decimal
	TotalCommissionEarned decimal.Decimal

	Status   RequestStatus
	Priority Priority

	// provider snapshot taken at assignment
	AssignedProviderID *int64
	ProviderName       string
	ProviderPhone      string
	ProviderEmail      string

	PaymentMethod           string
	CustomerPaymentReceived bool
	ProviderPaymentMade     bool
	CommissionCollected     bool
	AdminNotes              string
	BookingFingerprint      string

	CreatedAt      time.Time
	UpdatedAt      time.Time
	ConfirmedAt    *time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	ReminderSentAt *time.Time
}

// PrimaryCategory names the request by its first item
func (r *ServiceRequest) PrimaryCategory() string {
	if len(r.Items) == 0 || r.Items[0].Category == "" {
		return defaultServiceLabel
	}
	return r.Items[0].Category
}

// PrimaryServiceType returns the service type of the first item
func (r *ServiceRequest) PrimaryServiceType() string {
	if len(r.Items) == 0 {
		return ""
	}
	return r.Items[0].ServiceType
}

// HasProvider reports whether a provider snapshot is present
func (r *ServiceRequest) HasProvider() bool {
	return r.AssignedProviderID != nil
}

// Clone returns a deep copy so callers can compare before and after a mutation
func (r *ServiceRequest) Clone() *ServiceRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Items = append([]PricedLineItem(nil), r.Items...)
	c.AssignedProviderID = cloneInt64(r.AssignedProviderID)
	c.ConfirmedAt = cloneTime(r.ConfirmedAt)
	c.StartedAt = cloneTime(r.StartedAt)
	c.CompletedAt = cloneTime(r.CompletedAt)
	c.CancelledAt = cloneTime(r.CancelledAt)
	c.ReminderSentAt = cloneTime(r.ReminderSentAt)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneInt64(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}

// ServiceRequestResponse represents the API response for a service request
type ServiceRequestResponse struct {
	ID                      int64            `json:"id"`
	CustomerID              int64            `json:"customer_id"`
	CustomerName            string           `json:"customer_name"`
	CustomerEmail           string           `json:"customer_email"`
	CustomerPhone           string           `json:"customer_phone"`
	CustomerAddress         string           `json:"customer_address"`
	UnitNumber              string           `json:"unit_number,omitempty"`
	ComplexName             string           `json:"complex_name,omitempty"`
	AccessInstructions      string           `json:"access_instructions,omitempty"`
	PreferredDate           string           `json:"preferred_date"`
	PreferredTime           string           `json:"preferred_time"`
	AdditionalNotes         string           `json:"additional_notes,omitempty"`
	SelectedItems           []PricedLineItem `json:"selected_items"`
	TotalCustomerPaid       decimal.Decimal  `json:"total_customer_paid"`
	TotalProviderPayout     decimal.Decimal  `json:"total_provider_payout"`
	TotalCommissionEarned   decimal.Decimal  `json:"total_commission_earned"`
	Status                  RequestStatus    `json:"status"`
	Priority                Priority         `json:"priority"`
	AssignedProviderID      *int64           `json:"assigned_provider_id,omitempty"`
	ProviderName            string           `json:"provider_name,omitempty"`
	ProviderPhone           string           `json:"provider_phone,omitempty"`
	ProviderEmail           string           `json:"provider_email,omitempty"`
	PaymentMethod           string           `json:"payment_method,omitempty"`
	CustomerPaymentReceived bool             `json:"customer_payment_received"`
	ProviderPaymentMade     bool             `json:"provider_payment_made"`
	CommissionCollected     bool             `json:"commission_collected"`
	AdminNotes              string           `json:"admin_notes,omitempty"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
	ConfirmedAt             *time.Time       `json:"confirmed_at,omitempty"`
	StartedAt               *time.Time       `json:"started_at,omitempty"`
	CompletedAt             *time.Time       `json:"completed_at,omitempty"`
	CancelledAt             *time.Time       `json:"cancelled_at,omitempty"`
	ReminderSentAt          *time.Time       `json:"reminder_sent_at,omitempty"`
}

// ToResponse converts a ServiceRequest to ServiceRequestResponse
// Returns empty ServiceRequestResponse if receiver is nil
func (r *ServiceRequest) ToResponse() ServiceRequestResponse {
	if r == nil {
		return ServiceRequestResponse{}
	}
	items := r.Items
	if items == nil {
		items = make([]PricedLineItem, 0)
	}
	return ServiceRequestResponse{
		ID:                      r.ID,
		CustomerID:              r.CustomerID,
		CustomerName:            r.CustomerName,
		CustomerEmail:           r.CustomerEmail,
		CustomerPhone:           r.CustomerPhone,
		CustomerAddress:         r.CustomerAddress,
		UnitNumber:              r.UnitNumber,
		ComplexName:             r.ComplexName,
		AccessInstructions:      r.AccessInstructions,
		PreferredDate:           r.PreferredDate.Format(DateLayout),
		PreferredTime:           r.PreferredTime,
		AdditionalNotes:         r.AdditionalNotes,
		SelectedItems:           items,
		TotalCustomerPaid:       r.TotalCustomerPaid,
		TotalProviderPayout:     r.TotalProviderPayout,
		TotalCommissionEarned:   r.TotalCommissionEarned,
		Status:                  r.Status,
		Priority:                r.Priority,
		AssignedProviderID:      r.AssignedProviderID,
		ProviderName:            r.ProviderName,
		ProviderPhone:           r.ProviderPhone,
		ProviderEmail:           r.ProviderEmail,
		PaymentMethod:           r.PaymentMethod,
		CustomerPaymentReceived: r.CustomerPaymentReceived,
		ProviderPaymentMade:     r.ProviderPaymentMade,
		CommissionCollected:     r.CommissionCollected,
		AdminNotes:              r.AdminNotes,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		ConfirmedAt:             r.ConfirmedAt,
		StartedAt:               r.StartedAt,
		CompletedAt:             r.CompletedAt,
		CancelledAt:             r.CancelledAt,
		ReminderSentAt:          r.ReminderSentAt,
	}
}

// CreateServiceRequestRequest is the customer booking payload
type CreateServiceRequestRequest struct {
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email"`
	CustomerPhone      string          `json:"customer_phone"`
	CustomerAddress    string          `json:"customer_address"`
	UnitNumber         string          `json:"unit_number,omitempty"`
	ComplexName        string          `json:"complex_name,omitempty"`
	AccessInstructions string          `json:"access_instructions,omitempty"`
	PreferredDate      string          `json:"preferred_date"`
	PreferredTime      string          `json:"preferred_time"`
	AdditionalNotes    string          `json:"additional_notes,omitempty"`
	Items              []LineItemInput `json:"items"`
}

// QuoteRequest prices a cart without booking it
type QuoteRequest struct {
	Items []LineItemInput `json:"items"`
}

// UpdateServiceRequestRequest is the admin patch payload.
// Nil fields are left untouched.
type UpdateServiceRequestRequest struct {
	Status                  *RequestStatus `json:"status,omitempty"`
	Priority                *Priority      `json:"priority,omitempty"`
	AssignedProviderID      *int64         `json:"assigned_provider_id,omitempty"`
	ProviderName            *string        `json:"provider_name,omitempty"`
	ProviderPhone           *string        `json:"provider_phone,omitempty"`
	ProviderEmail           *string        `json:"provider_email,omitempty"`
	PaymentMethod           *string        `json:"payment_method,omitempty"`
	CustomerPaymentReceived *bool          `json:"customer_payment_received,omitempty"`
	ProviderPaymentMade     *bool          `json:"provider_payment_made,omitempty"`
	CommissionCollected     *bool          `json:"commission_collected,omitempty"`
	AdminNotes              *string        `json:"admin_notes,omitempty"`
}

// AssignProviderRequest assigns a provider to a request
type AssignProviderRequest struct {
	ProviderID     int64            `json:"provider_id"`
	PriorityLevel  *Priority        `json:"priority_level,omitempty"`
	EstimatedPrice *decimal.Decimal `json:"estimated_price,omitempty"`
}

// ServiceRequestFilter narrows the admin request list
type ServiceRequestFilter struct {
	Status   RequestStatus
	Category string
	Search   string
	From     *time.Time
	To       *time.Time
}
