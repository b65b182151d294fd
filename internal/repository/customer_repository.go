package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zlovtnik/homeswift/internal/models"
)

// upsertAttempts bounds retries when two bookings race to create the same customer
const upsertAttempts = 3

// CustomerRepository handles customer data access
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *sql.DB) (*CustomerRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("NewCustomerRepository: db is nil")
	}
	return &CustomerRepository{db: db}, nil
}

const customerColumns = `id, email, name, phone, saved_addresses, total_bookings, created_at, updated_at`

// scanCustomer scans a row into a Customer struct
func scanCustomer(scanner interface{ Scan(...any) error }) (*models.Customer, error) {
	var c models.Customer
	var phone, addresses sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := scanner.Scan(&c.ID, &c.Email, &c.Name, &phone, &addresses, &c.TotalBookings, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Phone = StringFromNull(phone)
	c.SavedAddresses = decodeAddresses(addresses)
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}

func decodeAddresses(ns sql.NullString) []string {
	addresses := make([]string, 0)
	if !ns.Valid || ns.String == "" {
		return addresses
	}
	if err := json.Unmarshal([]byte(ns.String), &addresses); err != nil {
		return make([]string, 0)
	}
	return addresses
}

// GetByID retrieves a customer by ID
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = :1`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// GetByEmail retrieves a customer by normalized email
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = :1`

	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, models.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}
	return c, nil
}

// upsert creates the customer with one booking or increments the booking count of the
// existing row, then records the address. It must run inside the caller's transaction.
func (r *CustomerRepository) upsert(ctx context.Context, q querier, req models.UpsertCustomerRequest) (*models.Customer, error) {
	email := models.NormalizeEmail(req.Email)

	merge := `
		MERGE INTO customers c
		USING (SELECT :1 AS email FROM dual) src
		ON (c.email = src.email)
		WHEN MATCHED THEN UPDATE SET
			c.total_bookings = c.total_bookings + 1,
			c.updated_at = SYSTIMESTAMP
		WHEN NOT MATCHED THEN INSERT (email, name, phone, saved_addresses, total_bookings)
			VALUES (src.email, :2, :3, '[]', 1)`

	isRace := func(err error) bool { return IsUniqueViolation(err, constraintCustomerEmail) }
	err := retryOnConflict(upsertAttempts, isRace, func() error {
		_, err := q.ExecContext(ctx, merge, email, req.Name, NullableString(req.Phone))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = :1 FOR UPDATE`
	c, err := scanCustomer(q.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted customer: %w", err)
	}

	if req.Address == "" || c.HasAddress(req.Address) {
		return c, nil
	}
	c.SavedAddresses = append(c.SavedAddresses, req.Address)
	encoded, err := json.Marshal(c.SavedAddresses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode saved addresses: %w", err)
	}
	if _, err := q.ExecContext(ctx, `UPDATE customers SET saved_addresses = :1 WHERE id = :2`, string(encoded), c.ID); err != nil {
		return nil, fmt.Errorf("failed to save customer address: %w", err)
	}
	return c, nil
}
