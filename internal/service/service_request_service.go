package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/zlovtnik/homeswift/internal/metrics"
	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/notify"
	"github.com/zlovtnik/homeswift/internal/quote"
	"github.com/zlovtnik/homeswift/pkg/fp"
)

// ServiceRequestDeps are the collaborators of ServiceRequestService
type ServiceRequestDeps struct {
	Requests   ServiceRequestStore
	History    HistoryStore
	Providers  ProviderStore
	Pricing    *PricingService
	Calculator *quote.Calculator
	Composer   *notify.Composer
	Dispatcher *notify.Dispatcher
	Logger     *slog.Logger
}

// ServiceRequestService drives the service request lifecycle
type ServiceRequestService struct {
	requests   ServiceRequestStore
	history    HistoryStore
	providers  ProviderStore
	pricing    *PricingService
	calc       *quote.Calculator
	composer   *notify.Composer
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewServiceRequestService creates a new ServiceRequestService
func NewServiceRequestService(d ServiceRequestDeps) *ServiceRequestService {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceRequestService{
		requests:   d.Requests,
		history:    d.History,
		providers:  d.Providers,
		pricing:    d.Pricing,
		calc:       d.Calculator,
		composer:   d.Composer,
		dispatcher: d.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Quote prices a cart without persisting anything
func (s *ServiceRequestService) Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	if req == nil {
		req = &models.QuoteRequest{}
	}
	table, err := s.pricing.Table(ctx)
	if err != nil {
		return nil, err
	}
	q, err := fp.Unwrap(s.calc.PriceItems(req.Items, table))
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Create validates and prices a booking, persists it with the customer upsert in one
// transaction and notifies the customer and the admin after commit
func (s *ServiceRequestService) Create(ctx context.Context, req *models.CreateServiceRequestRequest, performedBy string) (*models.ServiceRequest, error) {
	table, err := s.pricing.Table(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := fp.Unwrap(s.calc.Price(req, table))
	if err != nil {
		return nil, err
	}

	sr := &models.ServiceRequest{
		CustomerName:          booking.CustomerName,
		CustomerEmail:         models.NormalizeEmail(booking.CustomerEmail),
		CustomerPhone:         booking.CustomerPhone,
		CustomerAddress:       booking.CustomerAddress,
		UnitNumber:            booking.UnitNumber,
		ComplexName:           booking.ComplexName,
		AccessInstructions:    booking.AccessInstructions,
		PreferredDate:         booking.PreferredDate,
		PreferredTime:         booking.PreferredTime,
		AdditionalNotes:       booking.AdditionalNotes,
		Items:                 booking.Quote.LineItems,
		TotalCustomerPaid:     booking.Quote.TotalCustomerPaid,
		TotalProviderPayout:   booking.Quote.TotalProviderPayout,
		TotalCommissionEarned: booking.Quote.TotalCommissionEarned,
		Status:                models.RequestStatusPending,
		Priority:              models.PriorityMedium,
		BookingFingerprint:    BookingFingerprint(booking.CustomerEmail, booking.PreferredDate, booking.PreferredTime, booking.Quote.LineItems),
	}

	customer := models.UpsertCustomerRequest{
		Email:   models.NormalizeEmail(booking.CustomerEmail),
		Name:    booking.CustomerName,
		Phone:   booking.CustomerPhone,
		Address: booking.CustomerAddress,
	}

	created, err := s.requests.CreateWithCustomer(ctx, sr, customer, performedBy)
	if err != nil {
		err = translate(err, ErrRequestNotFound)
		return nil, NewRequestError("create", err, err.Error())
	}

	metrics.RequestsCreated.Inc()
	s.logger.InfoContext(ctx, "service request created",
		"request_id", created.ID,
		"customer_id", created.CustomerID,
		"total", created.TotalCustomerPaid.String(),
	)
	s.notify(ctx, created, notify.KindBookingReceived, notify.KindAdminNewBooking)
	return created, nil
}

// Get retrieves a service request by ID
func (s *ServiceRequestService) Get(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	sr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrRequestNotFound)
	}
	return sr, nil
}

// List retrieves service requests with filters and pagination
func (s *ServiceRequestService) List(ctx context.Context, filter models.ServiceRequestFilter, params models.PaginationParams) ([]*models.ServiceRequest, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	return s.requests.List(ctx, filter, params)
}

// History retrieves the audit trail of a request
func (s *ServiceRequestService) History(ctx context.Context, id int64, params models.PaginationParams) ([]models.HistoryEntry, int, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.history.ListByRequest(ctx, id, params)
}

// Update applies an admin patch under a row lock. A status change stamps its lifecycle
// timestamp once and queues its notifications, which are sent after commit.
func (s *ServiceRequestService) Update(ctx context.Context, id int64, req *models.UpdateServiceRequestRequest, performedBy, ip string) (*models.ServiceRequest, error) {
	if req == nil {
		req = &models.UpdateServiceRequestRequest{}
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, *req.Priority)
	}
	if err := checkPatchWidths(req); err != nil {
		return nil, err
	}

	var provider *models.Provider
	if req.AssignedProviderID != nil {
		p, err := s.activeProvider(ctx, "update", *req.AssignedProviderID)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	now := s.now()
	var kinds []notify.Kind
	var from models.RequestStatus

	updated, err := s.requests.Mutate(ctx, id, func(sr *models.ServiceRequest) ([]models.CreateHistoryRequest, error) {
		kinds = nil
		from = sr.Status
		audit := newAudit(performedBy, ip)

		changed := provider != nil && (sr.AssignedProviderID == nil || *sr.AssignedProviderID != provider.ID)
		applyPatch(sr, req, provider, audit)

		if req.Status != nil {
			k, err := applyStatus(sr, *req.Status, now)
			if err != nil {
				return nil, err
			}
			kinds = k
			audit.status(from, sr.Status)
		}
		// a provider swapped in after confirmation is told on its own
		if changed && sr.ConfirmedAt != nil && !sr.Status.IsTerminal() && !containsKind(kinds, notify.KindProviderAssignment) {
			kinds = append(kinds, notify.KindProviderAssignment)
		}

		sr.UpdatedAt = now
		return audit.entries, nil
	})
	if err != nil {
		return nil, translate(err, ErrRequestNotFound)
	}

	s.recordTransition(ctx, updated, from)
	s.notify(ctx, updated, kinds...)
	return updated, nil
}

// Assign snapshots an active provider onto the request. A pending request is confirmed;
// an open request keeps its status and only the new provider is told.
func (s *ServiceRequestService) Assign(ctx context.Context, id int64, req *models.AssignProviderRequest, performedBy, ip string) (*models.ServiceRequest, error) {
	if req == nil {
		return nil, ErrProviderNotFound
	}
	if req.PriorityLevel != nil && !req.PriorityLevel.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, *req.PriorityLevel)
	}

	provider, err := s.activeProvider(ctx, "assign", req.ProviderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var kinds []notify.Kind
	var from models.RequestStatus

	updated, err := s.requests.Mutate(ctx, id, func(sr *models.ServiceRequest) ([]models.CreateHistoryRequest, error) {
		kinds = nil
		from = sr.Status
		if sr.Status.IsTerminal() {
			return nil, fmt.Errorf("%w: cannot assign a %s request", ErrInvalidStatusTransition, sr.Status)
		}
		audit := newAudit(performedBy, ip)

		changed := sr.AssignedProviderID == nil || *sr.AssignedProviderID != provider.ID
		audit.add(models.HistoryActionAssign, "assigned_provider_id", int64PtrString(sr.AssignedProviderID), strconv.FormatInt(provider.ID, 10))

		pid := provider.ID
		sr.AssignedProviderID = &pid
		sr.ProviderName = provider.Name
		sr.ProviderPhone = provider.Phone
		sr.ProviderEmail = provider.Email
		if req.PriorityLevel != nil {
			audit.change("priority", string(sr.Priority), string(*req.PriorityLevel))
			sr.Priority = *req.PriorityLevel
		}
		if req.EstimatedPrice != nil {
			audit.add(models.HistoryActionUpdate, "estimated_price", "", req.EstimatedPrice.StringFixed(2))
		}

		if sr.Status == models.RequestStatusPending {
			k, err := applyStatus(sr, models.RequestStatusConfirmed, now)
			if err != nil {
				return nil, err
			}
			kinds = k
			audit.status(from, sr.Status)
		}
		if changed && !containsKind(kinds, notify.KindProviderAssignment) {
			kinds = append(kinds, notify.KindProviderAssignment)
		}

		sr.UpdatedAt = now
		return audit.entries, nil
	})
	if err != nil {
		return nil, translate(err, ErrRequestNotFound)
	}

	s.logger.InfoContext(ctx, "provider assigned",
		"request_id", updated.ID,
		"provider_id", provider.ID,
		"status", updated.Status,
	)
	s.recordTransition(ctx, updated, from)
	s.notify(ctx, updated, kinds...)
	return updated, nil
}

// activeProvider loads a provider that may take jobs
func (s *ServiceRequestService) activeProvider(ctx context.Context, op string, id int64) (*models.Provider, error) {
	provider, err := s.providers.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, ErrProviderNotFound)
	}
	if !provider.IsActive() {
		return nil, NewRequestError(op, ErrProviderInactive,
			fmt.Sprintf("provider %d is %s", provider.ID, provider.Status))
	}
	return provider, nil
}

func (s *ServiceRequestService) recordTransition(ctx context.Context, sr *models.ServiceRequest, from models.RequestStatus) {
	if from == sr.Status {
		return
	}
	metrics.StatusTransitions.WithLabelValues(string(from), string(sr.Status)).Inc()
	s.logger.InfoContext(ctx, "service request status changed",
		"request_id", sr.ID,
		"from", from,
		"to", sr.Status,
	)
}

// notify renders the given messages and hands them to the dispatcher
func (s *ServiceRequestService) notify(ctx context.Context, sr *models.ServiceRequest, kinds ...notify.Kind) {
	if len(kinds) == 0 || s.composer == nil || s.dispatcher == nil {
		return
	}
	msgs := make([]notify.Message, 0, len(kinds))
	for _, k := range kinds {
		m, err := s.composer.Compose(k, sr)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to compose notification",
				"kind", k,
				"request_id", sr.ID,
				"error", err,
			)
			continue
		}
		msgs = append(msgs, m)
	}
	s.dispatcher.Dispatch(ctx, msgs...)
}

// BookingFingerprint identifies a booking by who, when and what, ignoring item order
func BookingFingerprint(email string, date time.Time, preferredTime string, items []models.PricedLineItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s|%s|%d|%t", it.Category, it.ServiceType, it.Quantity, it.IsWhite))
	}
	sort.Strings(lines)

	parts := []string{
		models.NormalizeEmail(email),
		date.Format(models.DateLayout),
		preferredTime,
		strings.Join(lines, ";"),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func containsKind(kinds []notify.Kind, k notify.Kind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}
