package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zlovtnik/homeswift/internal/models"
)

// ProviderRepository reads service providers
type ProviderRepository struct {
	db *sql.DB
}

// NewProviderRepository creates a new ProviderRepository
func NewProviderRepository(db *sql.DB) (*ProviderRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("NewProviderRepository: db is nil")
	}
	return &ProviderRepository{db: db}, nil
}

// GetByID retrieves a provider by ID
func (r *ProviderRepository) GetByID(ctx context.Context, id int64) (*models.Provider, error) {
	query := `
		SELECT id, name, service_type, phone, email, status, created_at
		FROM providers
		WHERE id = :1`

	var p models.Provider
	var serviceType, phone, email sql.NullString
	var status string
	var createdAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &serviceType, &phone, &email, &status, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	p.ServiceType = StringFromNull(serviceType)
	p.Phone = StringFromNull(phone)
	p.Email = StringFromNull(email)
	p.Status = models.ProviderStatus(status)
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return &p, nil
}
