package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zlovtnik/homeswift/internal/models"
)

// HistoryRepository handles service request history data access
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// insertHistory appends a history entry using q, which may be a transaction
func insertHistory(ctx context.Context, q querier, req models.CreateHistoryRequest) (int64, error) {
	query := `
		INSERT INTO service_request_history (
			request_id, action, field_changed, old_value, new_value, performed_by, ip_address
		) VALUES (
			:1, :2, :3, :4, :5, :6, :7
		) RETURNING id INTO :8`

	var id int64
	_, err := q.ExecContext(ctx, query,
		req.RequestID, string(req.Action), NullableString(req.FieldChanged),
		NullableString(req.OldValue), NullableString(req.NewValue),
		req.PerformedBy, NullableString(req.IPAddress),
		sql.Out{Dest: &id},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create history entry: %w", err)
	}
	return id, nil
}

// Create appends a history entry outside any transaction
func (r *HistoryRepository) Create(ctx context.Context, req models.CreateHistoryRequest) (int64, error) {
	return insertHistory(ctx, r.db, req)
}

// ListByRequest retrieves history for a service request, newest first
func (r *HistoryRepository) ListByRequest(ctx context.Context, requestID int64, params models.PaginationParams) ([]models.HistoryEntry, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM service_request_history WHERE request_id = :1`, requestID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count history: %w", err)
	}

	query := `
		SELECT id, request_id, action, field_changed,
			old_value, new_value, performed_by, performed_at, ip_address
		FROM service_request_history
		WHERE request_id = :1
		ORDER BY performed_at DESC, id DESC
		OFFSET :2 ROWS FETCH NEXT :3 ROWS ONLY`

	rows, err := r.db.QueryContext(ctx, query, requestID, params.Offset(), params.Limit())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var history []models.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		var action string
		var fieldChanged, oldValue, newValue, ipAddress sql.NullString

		err := rows.Scan(
			&h.ID, &h.RequestID, &action, &fieldChanged,
			&oldValue, &newValue, &h.PerformedBy, &h.PerformedAt, &ipAddress,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan history: %w", err)
		}

		h.Action = models.HistoryAction(action)
		h.FieldChanged = fieldChanged.String
		h.OldValue = oldValue.String
		h.NewValue = newValue.String
		h.IPAddress = ipAddress.String

		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate history rows: %w", err)
	}

	return history, total, nil
}
