package service

import (
	"context"
	"time"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/repository"
)

// PricingStore persists the pricing catalog
type PricingStore interface {
	ListActive(ctx context.Context) ([]models.PricingEntry, error)
	InsertIfAbsent(ctx context.Context, entries []models.PricingEntry) (int, error)
}

// ServiceRequestStore persists service requests
type ServiceRequestStore interface {
	CreateWithCustomer(ctx context.Context, sr *models.ServiceRequest, customer models.UpsertCustomerRequest, performedBy string) (*models.ServiceRequest, error)
	GetByID(ctx context.Context, id int64) (*models.ServiceRequest, error)
	List(ctx context.Context, filter models.ServiceRequestFilter, params models.PaginationParams) ([]*models.ServiceRequest, int, error)
	Mutate(ctx context.Context, id int64, fn repository.MutateFunc) (*models.ServiceRequest, error)
}

// ReminderStore finds and marks reminder candidates
type ReminderStore interface {
	FindReminderCandidates(ctx context.Context, day time.Time, statuses []models.RequestStatus) ([]*models.ServiceRequest, error)
	MarkReminderSent(ctx context.Context, id int64, at time.Time, performedBy string) (bool, error)
}

// ReportStore aggregates requests for the admin dashboard
type ReportStore interface {
	CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error)
	CompletedTotals(ctx context.Context, from, to *time.Time) (models.CompletedTotals, error)
	CategoryBreakdown(ctx context.Context, from, to *time.Time) (map[string]models.CategorySummary, error)
}

// HistoryStore reads the request audit trail
type HistoryStore interface {
	ListByRequest(ctx context.Context, requestID int64, params models.PaginationParams) ([]models.HistoryEntry, int, error)
}

// ProviderStore reads providers
type ProviderStore interface {
	GetByID(ctx context.Context, id int64) (*models.Provider, error)
}

// CustomerStore reads customers
type CustomerStore interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

