package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zlovtnik/homeswift/internal/models"
)

// oracleDateFormat matches models.DateLayout
const oracleDateFormat = "YYYY-MM-DD"

// MutateFunc changes a locked request in place and returns the history to append.
// Returning an error rolls the transaction back.
type MutateFunc func(sr *models.ServiceRequest) ([]models.CreateHistoryRequest, error)

// ServiceRequestRepository handles service request data access
type ServiceRequestRepository struct {
	db        *sql.DB
	customers *CustomerRepository
}

// NewServiceRequestRepository creates a new ServiceRequestRepository
func NewServiceRequestRepository(db *sql.DB, customers *CustomerRepository) (*ServiceRequestRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("NewServiceRequestRepository: db is nil")
	}
	if customers == nil {
		return nil, fmt.Errorf("NewServiceRequestRepository: customer repository is nil")
	}
	return &ServiceRequestRepository{db: db, customers: customers}, nil
}

const serviceRequestColumns = `sr.id, sr.customer_id, sr.customer_name, sr.customer_email, sr.customer_phone,
			sr.customer_address, sr.unit_number, sr.complex_name, sr.access_instructions,
			TO_CHAR(sr.preferred_date, 'YYYY-MM-DD'), sr.preferred_time, sr.additional_notes,
			sr.total_customer_paid, sr.total_provider_payout, sr.total_commission_earned,
			sr.status, sr.priority, sr.assigned_provider_id, sr.provider_name, sr.provider_phone, sr.provider_email,
			sr.payment_method, sr.customer_payment_received, sr.provider_payment_made, sr.commission_collected,
			sr.admin_notes, sr.booking_fingerprint, sr.created_at, sr.updated_at,
			sr.confirmed_at, sr.started_at, sr.completed_at, sr.cancelled_at, sr.reminder_sent_at`

// serviceRequestScanDest holds scan destinations for service request queries.
type serviceRequestScanDest struct {
	sr                                                           models.ServiceRequest
	status, priority, preferredDate                              string
	unitNumber, complexName, accessInstructions, additionalNotes sql.NullString
	customerPaid, providerPayout, commission                     sql.NullString
	providerID                                                   sql.NullInt64
	providerName, providerPhone, providerEmail, paymentMethod    sql.NullString
	paymentReceived, providerPaid, commissionCollected           int
	adminNotes, fingerprint                                      sql.NullString
	createdAt, updatedAt                                         sql.NullTime
	confirmedAt, startedAt, completedAt, cancelledAt, reminderAt sql.NullTime
}

// scanArgs returns the slice of pointers for sql.Rows.Scan.
func (d *serviceRequestScanDest) scanArgs() []any {
	return []any{
		&d.sr.ID, &d.sr.CustomerID, &d.sr.CustomerName, &d.sr.CustomerEmail, &d.sr.CustomerPhone,
		&d.sr.CustomerAddress, &d.unitNumber, &d.complexName, &d.accessInstructions,
		&d.preferredDate, &d.sr.PreferredTime, &d.additionalNotes,
		&d.customerPaid, &d.providerPayout, &d.commission,
		&d.status, &d.priority, &d.providerID, &d.providerName, &d.providerPhone, &d.providerEmail,
		&d.paymentMethod, &d.paymentReceived, &d.providerPaid, &d.commissionCollected,
		&d.adminNotes, &d.fingerprint, &d.createdAt, &d.updatedAt,
		&d.confirmedAt, &d.startedAt, &d.completedAt, &d.cancelledAt, &d.reminderAt,
	}
}

// toServiceRequest converts scanned nullable fields to a ServiceRequest.
func (d *serviceRequestScanDest) toServiceRequest() (*models.ServiceRequest, error) {
	date, err := time.Parse(models.DateLayout, d.preferredDate)
	if err != nil {
		return nil, fmt.Errorf("invalid preferred_date %q on request %d: %w", d.preferredDate, d.sr.ID, err)
	}
	sr := d.sr
	sr.PreferredDate = date
	sr.UnitNumber = StringFromNull(d.unitNumber)
	sr.ComplexName = StringFromNull(d.complexName)
	sr.AccessInstructions = StringFromNull(d.accessInstructions)
	sr.AdditionalNotes = StringFromNull(d.additionalNotes)
	sr.TotalCustomerPaid = DecimalFromNull(d.customerPaid)
	sr.TotalProviderPayout = DecimalFromNull(d.providerPayout)
	sr.TotalCommissionEarned = DecimalFromNull(d.commission)
	sr.Status = models.RequestStatus(d.status)
	sr.Priority = models.Priority(d.priority)
	sr.AssignedProviderID = Int64PtrFromNull(d.providerID)
	sr.ProviderName = StringFromNull(d.providerName)
	sr.ProviderPhone = StringFromNull(d.providerPhone)
	sr.ProviderEmail = StringFromNull(d.providerEmail)
	sr.PaymentMethod = StringFromNull(d.paymentMethod)
	sr.CustomerPaymentReceived = IntToBool(d.paymentReceived)
	sr.ProviderPaymentMade = IntToBool(d.providerPaid)
	sr.CommissionCollected = IntToBool(d.commissionCollected)
	sr.AdminNotes = StringFromNull(d.adminNotes)
	sr.BookingFingerprint = StringFromNull(d.fingerprint)
	sr.CreatedAt = TimeValueFromNull(d.createdAt)
	sr.UpdatedAt = TimeValueFromNull(d.updatedAt)
	sr.ConfirmedAt = TimeFromNull(d.confirmedAt)
	sr.StartedAt = TimeFromNull(d.startedAt)
	sr.CompletedAt = TimeFromNull(d.completedAt)
	sr.CancelledAt = TimeFromNull(d.cancelledAt)
	sr.ReminderSentAt = TimeFromNull(d.reminderAt)
	return &sr, nil
}

func scanServiceRequests(rows *sql.Rows) ([]*models.ServiceRequest, error) {
	var out []*models.ServiceRequest
	for rows.Next() {
		var dest serviceRequestScanDest
		if err := rows.Scan(dest.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan service request: %w", err)
		}
		sr, err := dest.toServiceRequest()
		if err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate service requests: %w", err)
	}
	return out, nil
}

// CreateWithCustomer upserts the customer and inserts the request, its items and a
// CREATE history row in one transaction
func (r *ServiceRequestRepository) CreateWithCustomer(ctx context.Context, sr *models.ServiceRequest, customer models.UpsertCustomerRequest, performedBy string) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf(errFmtBeginTx, err)
	}
	defer func() { _ = tx.Rollback() }()

	if sr.BookingFingerprint != "" {
		var active int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM service_requests WHERE booking_fingerprint = :1 AND status <> 'cancelled'`,
			sr.BookingFingerprint,
		).Scan(&active)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate booking: %w", err)
		}
		if active > 0 {
			return nil, ErrDuplicateBooking
		}
	}

	c, err := r.customers.upsert(ctx, tx, customer)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO service_requests (
			customer_id, customer_name, customer_email, customer_phone, customer_address,
			unit_number, complex_name, access_instructions,
			preferred_date, preferred_time, additional_notes,
			total_customer_paid, total_provider_payout, total_commission_earned,
			status, priority, booking_fingerprint
		) VALUES (
			:1, :2, :3, :4, :5, :6, :7, :8, TO_DATE(:9, '` + oracleDateFormat + `'), :10, :11,
			:12, :13, :14, :15, :16, :17
		) RETURNING id INTO :18`

	var id int64
	_, err = tx.ExecContext(ctx, query,
		c.ID, sr.CustomerName, sr.CustomerEmail, sr.CustomerPhone, sr.CustomerAddress,
		NullableString(sr.UnitNumber), NullableString(sr.ComplexName), NullableString(sr.AccessInstructions),
		sr.PreferredDate.Format(models.DateLayout), sr.PreferredTime, NullableString(sr.AdditionalNotes),
		sr.TotalCustomerPaid, sr.TotalProviderPayout, sr.TotalCommissionEarned,
		string(sr.Status), string(sr.Priority), NullableString(sr.BookingFingerprint),
		sql.Out{Dest: &id},
	)
	if err != nil {
		if IsUniqueViolation(err, indexActiveBookingFingerprint) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("failed to create service request: %w", err)
	}

	for _, item := range sr.Items {
		if err := insertItem(ctx, tx, id, item); err != nil {
			return nil, err
		}
	}

	_, err = insertHistory(ctx, tx, models.CreateHistoryRequest{
		RequestID:   id,
		Action:      models.HistoryActionCreate,
		NewValue:    string(sr.Status),
		PerformedBy: performedBy,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf(errFmtCommitTx, err)
	}

	return r.GetByID(ctx, id)
}

func insertItem(ctx context.Context, q querier, requestID int64, item models.PricedLineItem) error {
	query := `
		INSERT INTO service_request_items (
			request_id, category, service_type, quantity, is_white,
			unit_customer_price, unit_provider_price,
			line_customer_total, line_provider_total, line_commission
		) VALUES (
			:1, :2, :3, :4, :5, :6, :7, :8, :9, :10
		)`

	_, err := q.ExecContext(ctx, query,
		requestID, item.Category, item.ServiceType, item.Quantity, BoolToInt(item.IsWhite),
		item.UnitCustomerPrice, item.UnitProviderPrice,
		item.LineCustomerTotal, item.LineProviderTotal, item.LineCommission,
	)
	if err != nil {
		return fmt.Errorf("failed to create service request item: %w", err)
	}
	return nil
}

const itemColumns = `id, request_id, category, service_type, quantity, is_white,
			unit_customer_price, unit_provider_price,
			line_customer_total, line_provider_total, line_commission`

// itemsFor loads the items of the given requests keyed by request id
func itemsFor(ctx context.Context, q querier, requestIDs []int64) (map[int64][]models.PricedLineItem, error) {
	out := make(map[int64][]models.PricedLineItem, len(requestIDs))
	for _, chunk := range ChunkSlice(requestIDs, MaxInClauseSize) {
		in := NewInClauseBuilder(1)
		for _, id := range chunk {
			in.Add(id)
		}
		query := `SELECT ` + itemColumns + `
			FROM service_request_items
			WHERE request_id IN (` + in.Placeholders() + `)
			ORDER BY request_id, id`

		rows, err := q.QueryContext(ctx, query, in.Args()...)
		if err != nil {
			return nil, fmt.Errorf("failed to get service request items: %w", err)
		}
		if err := scanItems(rows, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func scanItems(rows *sql.Rows, into map[int64][]models.PricedLineItem) error {
	defer rows.Close()
	for rows.Next() {
		var item models.PricedLineItem
		var requestID int64
		var isWhite int
		var unitCustomer, unitProvider, lineCustomer, lineProvider, commission sql.NullString

		err := rows.Scan(
			&item.ID, &requestID, &item.Category, &item.ServiceType, &item.Quantity, &isWhite,
			&unitCustomer, &unitProvider, &lineCustomer, &lineProvider, &commission,
		)
		if err != nil {
			return fmt.Errorf("failed to scan service request item: %w", err)
		}
		item.IsWhite = IntToBool(isWhite)
		item.UnitCustomerPrice = DecimalFromNull(unitCustomer)
		item.UnitProviderPrice = DecimalFromNull(unitProvider)
		item.LineCustomerTotal = DecimalFromNull(lineCustomer)
		item.LineProviderTotal = DecimalFromNull(lineProvider)
		item.LineCommission = DecimalFromNull(commission)
		into[requestID] = append(into[requestID], item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating service request items: %w", err)
	}
	return nil
}

func attachItems(ctx context.Context, q querier, requests []*models.ServiceRequest) error {
	if len(requests) == 0 {
		return nil
	}
	ids := make([]int64, len(requests))
	for i, sr := range requests {
		ids[i] = sr.ID
	}
	items, err := itemsFor(ctx, q, ids)
	if err != nil {
		return err
	}
	for _, sr := range requests {
		sr.Items = items[sr.ID]
	}
	return nil
}

// GetByID retrieves a service request with its items
func (r *ServiceRequestRepository) GetByID(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	return getByID(ctx, r.db, id, false)
}

func getByID(ctx context.Context, q querier, id int64, forUpdate bool) (*models.ServiceRequest, error) {
	query := `SELECT ` + serviceRequestColumns + ` FROM service_requests sr WHERE sr.id = :1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var dest serviceRequestScanDest
	err := q.QueryRowContext(ctx, query, id).Scan(dest.scanArgs()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service request: %w", err)
	}
	sr, err := dest.toServiceRequest()
	if err != nil {
		return nil, err
	}
	if err := attachItems(ctx, q, []*models.ServiceRequest{sr}); err != nil {
		return nil, err
	}
	return sr, nil
}

// buildFilter turns a list filter into WHERE conditions starting at bind index 1
func buildFilter(f models.ServiceRequestFilter) *QueryBuilder {
	qb := NewQueryBuilder(1)
	if f.Status != "" {
		qb.AddCondition("sr.status = :%d", string(f.Status))
	}
	if f.Category != "" {
		qb.AddCondition(`EXISTS (SELECT 1 FROM service_request_items i
			WHERE i.request_id = sr.id AND i.category = :%d)`, f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToUpper(s) + "%"
		qb.AddAnyOf([]string{
			"UPPER(sr.customer_name) LIKE :%d",
			"UPPER(sr.customer_email) LIKE :%d",
			"TO_CHAR(sr.id) = :%d",
		}, like, like, s)
	}
	if f.From != nil {
		qb.AddCondition("sr.preferred_date >= TO_DATE(:%d, '"+oracleDateFormat+"')", f.From.Format(models.DateLayout))
	}
	if f.To != nil {
		qb.AddCondition("sr.preferred_date <= TO_DATE(:%d, '"+oracleDateFormat+"')", f.To.Format(models.DateLayout))
	}
	return qb
}

// List retrieves service requests matching the filter, newest first
func (r *ServiceRequestRepository) List(ctx context.Context, filter models.ServiceRequestFilter, params models.PaginationParams) ([]*models.ServiceRequest, int, error) {
	qb := buildFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM service_requests sr WHERE 1 = 1` + qb.WhereClause()
	if err := r.db.QueryRowContext(ctx, countQuery, qb.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count service requests: %w", err)
	}

	idx := qb.NextIndex()
	query := `SELECT ` + serviceRequestColumns + `
		FROM service_requests sr
		WHERE 1 = 1` + qb.WhereClause() +
		fmt.Sprintf(" ORDER BY sr.created_at DESC, sr.id DESC OFFSET :%d ROWS FETCH NEXT :%d ROWS ONLY", idx, idx+1)
	args := append(qb.Args(), params.Offset(), params.Limit())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list service requests: %w", err)
	}
	defer rows.Close()

	requests, err := scanServiceRequests(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := attachItems(ctx, r.db, requests); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Mutate locks the request row, applies fn and persists the result with its history
// in one transaction. The row lock serializes concurrent transitions.
func (r *ServiceRequestRepository) Mutate(ctx context.Context, id int64, fn MutateFunc) (*models.ServiceRequest, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf(errFmtBeginTx, err)
	}
	defer func() { _ = tx.Rollback() }()

	sr, err := getByID(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}

	history, err := fn(sr)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE service_requests SET
			status = :1, priority = :2,
			assigned_provider_id = :3, provider_name = :4, provider_phone = :5, provider_email = :6,
			payment_method = :7, customer_payment_received = :8, provider_payment_made = :9,
			commission_collected = :10, admin_notes = :11, updated_at = :12,
			confirmed_at = :13, started_at = :14, completed_at = :15, cancelled_at = :16
		WHERE id = :17`

	_, err = tx.ExecContext(ctx, query,
		string(sr.Status), string(sr.Priority),
		NullableInt64(sr.AssignedProviderID), NullableString(sr.ProviderName),
		NullableString(sr.ProviderPhone), NullableString(sr.ProviderEmail),
		NullableString(sr.PaymentMethod), BoolToInt(sr.CustomerPaymentReceived), BoolToInt(sr.ProviderPaymentMade),
		BoolToInt(sr.CommissionCollected), NullableString(sr.AdminNotes), sr.UpdatedAt,
		NullableTime(sr.ConfirmedAt), NullableTime(sr.StartedAt), NullableTime(sr.CompletedAt), NullableTime(sr.CancelledAt),
		sr.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update service request: %w", err)
	}

	for _, h := range history {
		h.RequestID = sr.ID
		if _, err := insertHistory(ctx, tx, h); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf(errFmtCommitTx, err)
	}
	return sr, nil
}

// FindReminderCandidates returns requests scheduled on day in one of statuses that
// have not been reminded yet
func (r *ServiceRequestRepository) FindReminderCandidates(ctx context.Context, day time.Time, statuses []models.RequestStatus) ([]*models.ServiceRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	in := NewInClauseBuilder(2)
	for _, s := range statuses {
		in.Add(string(s))
	}
	query := `SELECT ` + serviceRequestColumns + `
		FROM service_requests sr
		WHERE sr.preferred_date = TO_DATE(:1, '` + oracleDateFormat + `')
			AND sr.status IN (` + in.Placeholders() + `)
			AND sr.reminder_sent_at IS NULL
		ORDER BY sr.id`
	args := append([]any{day.Format(models.DateLayout)}, in.Args()...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder candidates: %w", err)
	}
	defer rows.Close()

	requests, err := scanServiceRequests(rows)
	if err != nil {
		return nil, err
	}
	if err := attachItems(ctx, r.db, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// MarkReminderSent records the reminder unless another sweep already did.
// Returns false when the row was already marked.
func (r *ServiceRequestRepository) MarkReminderSent(ctx context.Context, id int64, at time.Time, performedBy string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf(errFmtBeginTx, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE service_requests SET reminder_sent_at = :1 WHERE id = :2 AND reminder_sent_at IS NULL`,
		at, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf(errFmtRowsAffected, err)
	}
	if n == 0 {
		return false, nil
	}

	_, err = insertHistory(ctx, tx, models.CreateHistoryRequest{
		RequestID:    id,
		Action:       models.HistoryActionReminder,
		FieldChanged: "reminder_sent_at",
		NewValue:     at.UTC().Format(time.RFC3339),
		PerformedBy:  performedBy,
	})
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf(errFmtCommitTx, err)
	}
	return true, nil
}

// CountByStatus counts all requests per status
func (r *ServiceRequestRepository) CountByStatus(ctx context.Context) (map[models.RequestStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM service_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RequestStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[models.RequestStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return counts, nil
}

// createdRange adds optional created_at bounds; to is exclusive
func createdRange(qb *QueryBuilder, column string, from, to *time.Time) {
	if from != nil {
		qb.AddCondition(column+" >= :%d", *from)
	}
	if to != nil {
		qb.AddCondition(column+" < :%d", *to)
	}
}

// CompletedTotals sums money over completed requests created in [from, to)
func (r *ServiceRequestRepository) CompletedTotals(ctx context.Context, from, to *time.Time) (models.CompletedTotals, error) {
	qb := NewQueryBuilder(1)
	createdRange(qb, "created_at", from, to)

	query := `
		SELECT COUNT(*),
			SUM(total_customer_paid), SUM(total_provider_payout), SUM(total_commission_earned)
		FROM service_requests
		WHERE status = 'completed'` + qb.WhereClause()

	var totals models.CompletedTotals
	var paid, payout, commission sql.NullString
	err := r.db.QueryRowContext(ctx, query, qb.Args()...).Scan(&totals.Jobs, &paid, &payout, &commission)
	if err != nil {
		return models.CompletedTotals{}, fmt.Errorf("failed to sum completed requests: %w", err)
	}
	totals.CustomerPayments = DecimalFromNull(paid)
	totals.ProviderPayouts = DecimalFromNull(payout)
	totals.Commission = DecimalFromNull(commission)
	return totals, nil
}

// CategoryBreakdown counts completed line items per category in [from, to) and sums their commission
func (r *ServiceRequestRepository) CategoryBreakdown(ctx context.Context, from, to *time.Time) (map[string]models.CategorySummary, error) {
	qb := NewQueryBuilder(1)
	createdRange(qb, "sr.created_at", from, to)

	query := `
		SELECT i.category, COUNT(*), SUM(i.line_commission)
		FROM service_request_items i
		JOIN service_requests sr ON sr.id = i.request_id
		WHERE sr.status = 'completed'` + qb.WhereClause() + `
		GROUP BY i.category`

	rows, err := r.db.QueryContext(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build category breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[string]models.CategorySummary)
	for rows.Next() {
		var category string
		var s models.CategorySummary
		var commission sql.NullString
		if err := rows.Scan(&category, &s.Count, &commission); err != nil {
			return nil, fmt.Errorf("failed to scan category breakdown: %w", err)
		}
		s.Commission = DecimalFromNull(commission)
		breakdown[category] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category breakdown: %w", err)
	}
	return breakdown, nil
}
