package service

import (
	"context"
	"strings"

	"github.com/zlovtnik/homeswift/internal/models"
)

// CustomerService handles customer registry reads
type CustomerService struct {
	store CustomerStore
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(store CustomerStore) *CustomerService {
	return &CustomerService{store: store}
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrCustomerNotFound)
	}
	return c, nil
}

// GetByEmail retrieves a customer by email, ignoring case and surrounding space
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrCustomerNotFound
	}
	c, err := s.store.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		return nil, translate(err, ErrCustomerNotFound)
	}
	return c, nil
}
