package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zlovtnik/homeswift/internal/models"
)

// PricingRepository handles pricing catalog data access
type PricingRepository struct {
	db *sql.DB
}

// NewPricingRepository creates a new PricingRepository
func NewPricingRepository(db *sql.DB) (*PricingRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("NewPricingRepository: db is nil")
	}
	return &PricingRepository{db: db}, nil
}

const pricingColumns = `id, category, service_type, item_description,
			provider_base_price, customer_display_price,
			color_surcharge_provider, color_surcharge_customer,
			is_white_applicable, commission_percentage, active, created_at`

func scanPricing(scanner interface{ Scan(...any) error }) (*models.PricingEntry, error) {
	var p models.PricingEntry
	var description sql.NullString
	var base, display, surchargeProvider, surchargeCustomer, commission sql.NullString
	var whiteApplicable, active int
	var createdAt sql.NullTime

	err := scanner.Scan(
		&p.ID, &p.Category, &p.ServiceType, &description,
		&base, &display,
		&surchargeProvider, &surchargeCustomer,
		&whiteApplicable, &commission, &active, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	p.ItemDescription = StringFromNull(description)
	p.ProviderBasePrice = DecimalFromNull(base)
	p.CustomerDisplayPrice = DecimalFromNull(display)
	p.ColorSurchargeProvider = DecimalFromNull(surchargeProvider)
	p.ColorSurchargeCustomer = DecimalFromNull(surchargeCustomer)
	p.CommissionPercentage = DecimalFromNull(commission)
	p.IsWhiteApplicable = IntToBool(whiteApplicable)
	p.Active = IntToBool(active)
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return &p, nil
}

// ListActive returns every active catalog row ordered by category and service type
func (r *PricingRepository) ListActive(ctx context.Context) ([]models.PricingEntry, error) {
	query := `
		SELECT ` + pricingColumns + `
		FROM pricing
		WHERE active = 1
		ORDER BY category, service_type`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing: %w", err)
	}
	defer rows.Close()

	var entries []models.PricingEntry
	for rows.Next() {
		p, err := scanPricing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing: %w", err)
		}
		entries = append(entries, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pricing rows: %w", err)
	}
	return entries, nil
}

// InsertIfAbsent inserts the entries whose (category, service_type) is not stored yet.
// Existing rows are never overwritten. Returns the number of rows inserted.
func (r *PricingRepository) InsertIfAbsent(ctx context.Context, entries []models.PricingEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf(errFmtBeginTx, err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		MERGE INTO pricing p
		USING (SELECT :1 AS category, :2 AS service_type FROM dual) src
		ON (p.category = src.category AND p.service_type = src.service_type)
		WHEN NOT MATCHED THEN INSERT (
			category, service_type, item_description,
			provider_base_price, customer_display_price,
			color_surcharge_provider, color_surcharge_customer,
			is_white_applicable, commission_percentage, active
		) VALUES (
			src.category, src.service_type, :3, :4, :5, :6, :7, :8, :9, :10
		)`

	inserted := 0
	for _, e := range entries {
		res, err := tx.ExecContext(ctx, query,
			e.Category, e.ServiceType, NullableString(e.ItemDescription),
			e.ProviderBasePrice, e.CustomerDisplayPrice,
			e.ColorSurchargeProvider, e.ColorSurchargeCustomer,
			BoolToInt(e.IsWhiteApplicable), e.CommissionPercentage, BoolToInt(e.Active),
		)
		if err != nil {
			// another seeder got there first
			if IsUniqueViolation(err, constraintPricingKey) {
				continue
			}
			return 0, fmt.Errorf("failed to seed pricing %s/%s: %w", e.Category, e.ServiceType, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf(errFmtRowsAffected, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf(errFmtCommitTx, err)
	}
	return inserted, nil
}
