package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/homeswift/internal/catalog"
	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/notify"
	"github.com/zlovtnik/homeswift/internal/quote"
	"github.com/zlovtnik/homeswift/internal/repository"
)

const (
	adminEmail    = "ops@homeswift.test"
	providerEmail = "sipho@providers.test"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memPricing is an in-memory PricingStore
type memPricing struct {
	mu      sync.Mutex
	entries []models.PricingEntry
}

func (m *memPricing) ListActive(_ context.Context) ([]models.PricingEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.PricingEntry(nil), m.entries...), nil
}

func (m *memPricing) InsertIfAbsent(_ context.Context, entries []models.PricingEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range entries {
		found := false
		for _, x := range m.entries {
			if x.Category == e.Category && x.ServiceType == e.ServiceType {
				found = true
				break
			}
		}
		if !found {
			m.entries = append(m.entries, e)
			n++
		}
	}
	return n, nil
}

// memStore is an in-memory request, history, customer and provider store.
// Mutate works on a copy so a failing fn leaves the stored row untouched.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	requests  map[int64]*models.ServiceRequest
	history   []models.HistoryEntry
	customers map[string]*models.Customer
	providers map[int64]*models.Provider
	markErr   error
}

func newMemStore() *memStore {
	return &memStore{
		requests:  make(map[int64]*models.ServiceRequest),
		customers: make(map[string]*models.Customer),
		providers: make(map[int64]*models.Provider),
	}
}

func (m *memStore) appendHistory(id int64, h models.CreateHistoryRequest) {
	m.history = append(m.history, models.HistoryEntry{
		ID:           int64(len(m.history) + 1),
		RequestID:    id,
		Action:       h.Action,
		FieldChanged: h.FieldChanged,
		OldValue:     h.OldValue,
		NewValue:     h.NewValue,
		PerformedBy:  h.PerformedBy,
		IPAddress:    h.IPAddress,
		PerformedAt:  fixedNow,
	})
}

func (m *memStore) CreateWithCustomer(_ context.Context, sr *models.ServiceRequest, c models.UpsertCustomerRequest, performedBy string) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.requests {
		if existing.Status != models.RequestStatusCancelled && existing.BookingFingerprint == sr.BookingFingerprint {
			return nil, repository.ErrDuplicateBooking
		}
	}

	email := models.NormalizeEmail(c.Email)
	cust, ok := m.customers[email]
	if !ok {
		cust = &models.Customer{ID: int64(len(m.customers) + 1), Email: email, Name: c.Name, Phone: c.Phone}
		m.customers[email] = cust
	}
	cust.TotalBookings++
	if c.Address != "" && !cust.HasAddress(c.Address) {
		cust.SavedAddresses = append(cust.SavedAddresses, c.Address)
	}

	m.nextID++
	stored := sr.Clone()
	stored.ID = m.nextID
	stored.CustomerID = cust.ID
	stored.CreatedAt = fixedNow
	stored.UpdatedAt = fixedNow
	m.requests[stored.ID] = stored
	m.appendHistory(stored.ID, models.CreateHistoryRequest{Action: models.HistoryActionCreate, PerformedBy: performedBy})
	return stored.Clone(), nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sr.Clone(), nil
}

func (m *memStore) List(_ context.Context, f models.ServiceRequestFilter, params models.PaginationParams) ([]*models.ServiceRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ServiceRequest
	for _, sr := range m.requests {
		if f.Status != "" && sr.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToUpper(sr.CustomerName), strings.ToUpper(f.Search)) {
			continue
		}
		out = append(out, sr.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, len(out), nil
}

func (m *memStore) Mutate(_ context.Context, id int64, fn repository.MutateFunc) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sr, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	work := sr.Clone()
	entries, err := fn(work)
	if err != nil {
		return nil, err
	}
	m.requests[id] = work
	for _, h := range entries {
		m.appendHistory(id, h)
	}
	return work.Clone(), nil
}

func (m *memStore) FindReminderCandidates(_ context.Context, day time.Time, statuses []models.RequestStatus) ([]*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.ServiceRequest
	for _, sr := range m.requests {
		if sr.ReminderSentAt != nil || sr.PreferredDate.Format(models.DateLayout) != day.Format(models.DateLayout) {
			continue
		}
		for _, s := range statuses {
			if sr.Status == s {
				out = append(out, sr.Clone())
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) MarkReminderSent(_ context.Context, id int64, at time.Time, performedBy string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return false, m.markErr
	}
	sr, ok := m.requests[id]
	if !ok || sr.ReminderSentAt != nil {
		return false, nil
	}
	sr.ReminderSentAt = &at
	m.appendHistory(id, models.CreateHistoryRequest{Action: models.HistoryActionReminder, PerformedBy: performedBy})
	return true, nil
}

func (m *memStore) ListByRequest(_ context.Context, requestID int64, _ models.PaginationParams) ([]models.HistoryEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.HistoryEntry
	for _, h := range m.history {
		if h.RequestID == requestID {
			out = append(out, h)
		}
	}
	return out, len(out), nil
}

func (m *memStore) historyFor(id int64, action models.HistoryAction) []models.HistoryEntry {
	entries, _, _ := m.ListByRequest(context.Background(), id, models.DefaultPagination())
	var out []models.HistoryEntry
	for _, h := range entries {
		if h.Action == action {
			out = append(out, h)
		}
	}
	return out
}

func (m *memStore) providerByID(id int64) (*models.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// providerStore adapts memStore to ProviderStore, whose GetByID clashes with the request store's
type providerStore struct{ m *memStore }

func (p providerStore) GetByID(_ context.Context, id int64) (*models.Provider, error) {
	return p.m.providerByID(id)
}

// customerStore adapts memStore to CustomerStore
type customerStore struct{ m *memStore }

func (c customerStore) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	for _, cust := range c.m.customers {
		if cust.ID == id {
			cp := *cust
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c customerStore) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	c.m.mu.Lock()
	defer c.m.mu.Unlock()
	cust, ok := c.m.customers[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *cust
	return &cp, nil
}

// fixture wires the services over the in-memory stores
type fixture struct {
	store      *memStore
	pricing    *memPricing
	sender     *notify.RecordingSender
	dispatcher *notify.Dispatcher
	calc       *quote.Calculator
	requests   *ServiceRequestService
	reminders  *ReminderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	seed, err := catalog.SeedEntries()
	require.NoError(t, err)

	store := newMemStore()
	store.providers[4] = &models.Provider{ID: 4, Name: "Sipho", Phone: "0831112222", Email: providerEmail, Status: models.ProviderStatusActive}
	store.providers[5] = &models.Provider{ID: 5, Name: "Lerato", Phone: "0834445555", Email: "lerato@providers.test", Status: models.ProviderStatusActive}
	store.providers[9] = &models.Provider{ID: 9, Name: "Idle", Email: "idle@providers.test", Status: models.ProviderStatusInactive}

	pricingStore := &memPricing{entries: seed}
	logger := quietLogger()

	composer, err := notify.NewComposer(notify.Branding{Brand: "HomeSwift", AdminEmail: adminEmail, AdminPhone: "0210000000"})
	require.NoError(t, err)

	sender := &notify.RecordingSender{}
	dispatcher := notify.NewDispatcher(sender, logger, time.Second)
	calc := quote.NewCalculator(decimal.NewFromInt(100), time.UTC).WithClock(func() time.Time { return fixedNow })

	requests := NewServiceRequestService(ServiceRequestDeps{
		Requests:   store,
		History:    store,
		Providers:  providerStore{store},
		Pricing:    NewPricingService(pricingStore, logger),
		Calculator: calc,
		Composer:   composer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	requests.now = func() time.Time { return fixedNow }

	reminders := NewReminderService(store, calc, composer, dispatcher, logger)
	reminders.now = func() time.Time { return fixedNow }

	return &fixture{
		store:      store,
		pricing:    pricingStore,
		sender:     sender,
		dispatcher: dispatcher,
		calc:       calc,
		requests:   requests,
		reminders:  reminders,
	}
}

// sent drains pending dispatches and returns the recipients in send order
func (f *fixture) sent(t *testing.T) []string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.dispatcher.Wait(ctx))

	var to []string
	for _, m := range f.sender.Messages() {
		to = append(to, m.To)
	}
	sort.Strings(to)
	f.sender.Reset()
	return to
}

func bookingRequest() *models.CreateServiceRequestRequest {
	return &models.CreateServiceRequestRequest{
		CustomerName:    "Thandi Nkosi",
		CustomerEmail:   "Thandi@Example.com",
		CustomerPhone:   "+27 82-123-4567",
		CustomerAddress: "12 Long Street, Cape Town",
		PreferredDate:   "2026-03-11",
		PreferredTime:   "09:30",
		Items: []models.LineItemInput{
			{Category: "Carpet Deep Cleaning", ServiceType: "Medium", Quantity: 1},
		},
	}
}

func statusPtr(s models.RequestStatus) *models.UpdateServiceRequestRequest {
	return &models.UpdateServiceRequestRequest{Status: &s}
}

func ptr[T any](v T) *T {
	return &v
}
