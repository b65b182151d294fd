package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/quote"
	"github.com/zlovtnik/homeswift/internal/service"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubRequests answers from function fields; nil fields fail the test through a panic
type stubRequests struct {
	create func(*models.CreateServiceRequestRequest, string) (*models.ServiceRequest, error)
	get    func(int64) (*models.ServiceRequest, error)
	list   func(models.ServiceRequestFilter, models.PaginationParams) ([]*models.ServiceRequest, int, error)
	update func(int64, *models.UpdateServiceRequestRequest, string, string) (*models.ServiceRequest, error)
	assign func(int64, *models.AssignProviderRequest, string, string) (*models.ServiceRequest, error)
}

func (s *stubRequests) Create(_ context.Context, req *models.CreateServiceRequestRequest, by string) (*models.ServiceRequest, error) {
	return s.create(req, by)
}

func (s *stubRequests) Quote(_ context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	if len(req.Items) == 0 {
		return nil, &quote.FieldError{Field: "items", Err: quote.ErrMissingField}
	}
	return &models.Quote{TotalCustomerPaid: decimal.RequireFromString("485")}, nil
}

func (s *stubRequests) Get(_ context.Context, id int64) (*models.ServiceRequest, error) {
	return s.get(id)
}

func (s *stubRequests) List(_ context.Context, f models.ServiceRequestFilter, p models.PaginationParams) ([]*models.ServiceRequest, int, error) {
	return s.list(f, p)
}

func (s *stubRequests) History(_ context.Context, id int64, _ models.PaginationParams) ([]models.HistoryEntry, int, error) {
	if id != 1 {
		return nil, 0, service.ErrRequestNotFound
	}
	return []models.HistoryEntry{{ID: 1, RequestID: 1, Action: models.HistoryActionCreate}}, 1, nil
}

func (s *stubRequests) Update(_ context.Context, id int64, req *models.UpdateServiceRequestRequest, by, ip string) (*models.ServiceRequest, error) {
	return s.update(id, req, by, ip)
}

func (s *stubRequests) Assign(_ context.Context, id int64, req *models.AssignProviderRequest, by, ip string) (*models.ServiceRequest, error) {
	return s.assign(id, req, by, ip)
}

func sampleRequest(id int64) *models.ServiceRequest {
	return &models.ServiceRequest{
		ID:                id,
		CustomerName:      "Thandi Nkosi",
		CustomerEmail:     "thandi@example.com",
		PreferredDate:     time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		PreferredTime:     "09:30",
		TotalCustomerPaid: decimal.RequireFromString("485"),
		Status:            models.RequestStatusPending,
		Priority:          models.PriorityMedium,
	}
}

// serve routes one request through a mux so path values resolve
func serve(pattern string, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.RemoteAddr = "10.1.2.3:5555"
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestCreate_Success(t *testing.T) {
	var gotBy string
	h := NewServiceRequestHandler(&stubRequests{
		create: func(req *models.CreateServiceRequestRequest, by string) (*models.ServiceRequest, error) {
			gotBy = by
			assert.Equal(t, "Medium", req.Items[0].ServiceType)
			return sampleRequest(7), nil
		},
	}, quietLogger())

	body := `{"customer_name":"Thandi","items":[{"category":"Carpet Deep Cleaning","type":"Medium","quantity":1}]}`
	rec := serve("POST /service-requests", h.Create, http.MethodPost, "/service-requests", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)
	var sr models.ServiceRequestResponse
	require.NoError(t, json.Unmarshal(env.Data, &sr))
	assert.Equal(t, int64(7), sr.ID)
	assert.Equal(t, "2026-03-11", sr.PreferredDate)
	assert.Equal(t, publicActor, gotBy)
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{&quote.FieldError{Field: "preferred_date", Err: quote.ErrPastDate}, http.StatusBadRequest, ErrCodePastDate},
		{&quote.FieldError{Field: "customer_phone", Err: quote.ErrInvalidPhone}, http.StatusBadRequest, ErrCodeInvalidPhone},
		{&quote.FieldError{Field: "customer_address", Err: quote.ErrFieldTooLong}, http.StatusBadRequest, ErrCodeFieldTooLong},
		{fmt.Errorf("carpet/huge: %w", quote.ErrPricingNotFound), http.StatusNotFound, ErrCodePricingNotFound},
		{service.NewRequestError("create", service.ErrDuplicateBooking, "duplicate booking"), http.StatusConflict, ErrCodeDuplicateBooking},
		{errors.New("ORA-03113: end-of-file on communication channel"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			h := NewServiceRequestHandler(&stubRequests{
				create: func(*models.CreateServiceRequestRequest, string) (*models.ServiceRequest, error) {
					return nil, tt.err
				},
			}, quietLogger())

			rec := serve("POST /service-requests", h.Create, http.MethodPost, "/service-requests", `{}`)
			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, MsgInternalServerError, env.Error.Message)
			}
		})
	}
}

func TestCreate_FieldDetails(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{
		create: func(*models.CreateServiceRequestRequest, string) (*models.ServiceRequest, error) {
			return nil, &quote.FieldError{Field: "customer_email", Err: quote.ErrInvalidEmail}
		},
	}, quietLogger())

	rec := serve("POST /service-requests", h.Create, http.MethodPost, "/service-requests", `{}`)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "customer_email", env.Error.Details["field"])
}

func TestCreate_InvalidJSON(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{}, quietLogger())

	for _, body := range []string{"", "{not json"} {
		rec := serve("POST /service-requests", h.Create, http.MethodPost, "/service-requests", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, ErrCodeInvalidJSON, decode(t, rec).Error.Code)
	}
}

func TestQuote(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{}, quietLogger())

	rec := serve("POST /quotes", h.Quote, http.MethodPost, "/quotes", `{"items":[{"category":"Carpet Deep Cleaning","type":"Medium","quantity":1}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_customer_paid":"485"`)

	rec = serve("POST /quotes", h.Quote, http.MethodPost, "/quotes", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeMissingField, decode(t, rec).Error.Code)
}

func TestList_ParsesFilter(t *testing.T) {
	var got models.ServiceRequestFilter
	var page models.PaginationParams
	h := NewServiceRequestHandler(&stubRequests{
		list: func(f models.ServiceRequestFilter, p models.PaginationParams) ([]*models.ServiceRequest, int, error) {
			got, page = f, p
			return []*models.ServiceRequest{sampleRequest(1), sampleRequest(2)}, 12, nil
		},
	}, quietLogger())

	rec := serve("GET /service-requests", h.List, http.MethodGet,
		"/service-requests?status=confirmed&category=Carpet+Deep+Cleaning&search=thandi&from=2026-03-01&to=2026-03-31&page=2&page_size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, models.RequestStatusConfirmed, got.Status)
	assert.Equal(t, "Carpet Deep Cleaning", got.Category)
	assert.Equal(t, "thandi", got.Search)
	require.NotNil(t, got.From)
	require.NotNil(t, got.To)
	assert.Equal(t, "2026-03-31", got.To.Format(models.DateLayout))
	assert.Equal(t, models.PaginationParams{Page: 2, PageSize: 5}, page)

	var result models.PaginatedResponse[models.ServiceRequestResponse]
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Len(t, result.Data, 2)
	assert.Equal(t, 3, result.TotalPages)
}

func TestList_BadDate(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{}, quietLogger())
	rec := serve("GET /service-requests", h.List, http.MethodGet, "/service-requests?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeInvalidDateRange, decode(t, rec).Error.Code)
}

func TestGet(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{
		get: func(id int64) (*models.ServiceRequest, error) {
			if id == 1 {
				return sampleRequest(1), nil
			}
			return nil, service.ErrRequestNotFound
		},
	}, quietLogger())

	rec := serve("GET /service-requests/{id}", h.Get, http.MethodGet, "/service-requests/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve("GET /service-requests/{id}", h.Get, http.MethodGet, "/service-requests/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeRequestNotFound, decode(t, rec).Error.Code)

	rec = serve("GET /service-requests/{id}", h.Get, http.MethodGet, "/service-requests/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeInvalidID, decode(t, rec).Error.Code)
}

func TestHistory(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{}, quietLogger())

	rec := serve("GET /service-requests/{id}/history", h.History, http.MethodGet, "/service-requests/1/history", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"action":"CREATE"`)

	rec = serve("GET /service-requests/{id}/history", h.History, http.MethodGet, "/service-requests/9/history", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdate(t *testing.T) {
	var gotIP string
	h := NewServiceRequestHandler(&stubRequests{
		update: func(id int64, req *models.UpdateServiceRequestRequest, _ string, ip string) (*models.ServiceRequest, error) {
			gotIP = ip
			require.NotNil(t, req.Status)
			if *req.Status == models.RequestStatusPending {
				return nil, fmt.Errorf("%w: completed -> pending", service.ErrInvalidStatusTransition)
			}
			sr := sampleRequest(id)
			sr.Status = *req.Status
			return sr, nil
		},
	}, quietLogger())

	rec := serve("PATCH /service-requests/{id}", h.Update, http.MethodPatch, "/service-requests/3", `{"status":"in_progress"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"in_progress"`)
	assert.Equal(t, "10.1.2.3", gotIP)

	rec = serve("PATCH /service-requests/{id}", h.Update, http.MethodPatch, "/service-requests/3", `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ErrCodeInvalidTransition, decode(t, rec).Error.Code)
}

func TestUpdate_ProviderAndWidthErrors(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{
		update: func(_ int64, req *models.UpdateServiceRequestRequest, _ string, _ string) (*models.ServiceRequest, error) {
			if req.AssignedProviderID != nil {
				return nil, service.ErrProviderNotFound
			}
			return nil, &quote.FieldError{Field: "admin_notes", Err: quote.ErrFieldTooLong}
		},
	}, quietLogger())

	rec := serve("PATCH /service-requests/{id}", h.Update, http.MethodPatch, "/service-requests/3", `{"assigned_provider_id":424242}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeProviderNotFound, decode(t, rec).Error.Code)

	rec = serve("PATCH /service-requests/{id}", h.Update, http.MethodPatch, "/service-requests/3", `{"admin_notes":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeFieldTooLong, env.Error.Code)
	assert.Equal(t, "admin_notes", env.Error.Details["field"])
}

func TestAssign(t *testing.T) {
	h := NewServiceRequestHandler(&stubRequests{
		assign: func(id int64, req *models.AssignProviderRequest, _, _ string) (*models.ServiceRequest, error) {
			switch req.ProviderID {
			case 9:
				return nil, service.NewRequestError("assign", service.ErrProviderInactive, "provider 9 is inactive")
			case 77:
				return nil, service.ErrProviderNotFound
			}
			sr := sampleRequest(id)
			sr.Status = models.RequestStatusConfirmed
			return sr, nil
		},
	}, quietLogger())

	tests := []struct {
		body   string
		status int
	}{
		{`{"provider_id":4,"estimated_price":"500.00"}`, http.StatusOK},
		{`{"provider_id":9}`, http.StatusConflict},
		{`{"provider_id":77}`, http.StatusNotFound},
		{`{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := serve("POST /service-requests/{id}/assign", h.Assign, http.MethodPost, "/service-requests/3/assign", tt.body)
		assert.Equal(t, tt.status, rec.Code, tt.body)
	}
}

type stubPricing struct{}

func (stubPricing) Categories(context.Context) ([]string, error) {
	return []string{"Carpet Deep Cleaning", "Couch Deep Cleaning"}, nil
}

func (stubPricing) ByCategory(_ context.Context, c string) ([]models.PricingEntry, error) {
	if c != "Carpet Deep Cleaning" {
		return nil, nil
	}
	return []models.PricingEntry{{Category: c, ServiceType: "Medium"}}, nil
}

func (stubPricing) All(context.Context) ([]models.PricingEntry, error) {
	return nil, errors.New("db down")
}

func TestPricingHandler(t *testing.T) {
	h := NewPricingHandler(stubPricing{}, quietLogger())

	rec := serve("GET /pricing/categories", h.Categories, http.MethodGet, "/pricing/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Couch Deep Cleaning")

	rec = serve("GET /pricing", h.ByCategory, http.MethodGet, "/pricing?category=Carpet+Deep+Cleaning", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service_type":"Medium"`)

	rec = serve("GET /pricing", h.ByCategory, http.MethodGet, "/pricing?category=Windows", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = serve("GET /pricing", h.ByCategory, http.MethodGet, "/pricing", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve("GET /pricing/all", h.All, http.MethodGet, "/pricing/all", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type stubAdmin struct{ seeded int }

func (stubAdmin) Sweep(context.Context) (models.ReminderSweepResult, error) {
	return models.ReminderSweepResult{Candidates: 3, Sent: 2, Failed: 1}, nil
}

func (s stubAdmin) Seed(context.Context) (int, error) { return s.seeded, nil }

func (stubAdmin) Stats(context.Context) (*models.AdminStats, error) {
	return &models.AdminStats{TotalBookings: 5, AvgCommission: decimal.RequireFromString("135")}, nil
}

func (stubAdmin) FinancialReport(_ context.Context, from, _ string) (*models.FinancialReport, error) {
	if from == "bad" {
		return nil, fmt.Errorf("%w: %q", service.ErrInvalidDateRange, from)
	}
	return &models.FinancialReport{From: from, NumberOfJobs: 2}, nil
}

func TestAdminHandler(t *testing.T) {
	h := NewAdminHandler(stubAdmin{}, stubAdmin{seeded: 57}, stubAdmin{}, quietLogger())

	rec := serve("POST /admin/send-reminders", h.SendReminders, http.MethodPost, "/admin/send-reminders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sent":2`)

	rec = serve("POST /admin/seed-pricing", h.SeedPricing, http.MethodPost, "/admin/seed-pricing", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":57`)

	rec = serve("GET /admin/stats", h.Stats, http.MethodGet, "/admin/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"avg_commission":"135"`)

	rec = serve("GET /admin/financial-report", h.FinancialReport, http.MethodGet, "/admin/financial-report?from=2026-03-01", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category_breakdown":{}`)

	rec = serve("GET /admin/financial-report", h.FinancialReport, http.MethodGet, "/admin/financial-report?from=bad", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeInvalidDateRange, decode(t, rec).Error.Code)
}

func TestAdminHandler_AlreadySeeded(t *testing.T) {
	h := NewAdminHandler(stubAdmin{}, stubAdmin{}, stubAdmin{}, quietLogger())
	rec := serve("POST /admin/seed-pricing", h.SeedPricing, http.MethodPost, "/admin/seed-pricing", "")
	assert.Contains(t, rec.Body.String(), "already seeded")
}

type stubCustomers struct{}

func (stubCustomers) GetByID(_ context.Context, id int64) (*models.Customer, error) {
	if id != 1 {
		return nil, service.ErrCustomerNotFound
	}
	return &models.Customer{ID: 1, Email: "thandi@example.com", TotalBookings: 2}, nil
}

func (stubCustomers) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	if email != "thandi@example.com" {
		return nil, service.ErrCustomerNotFound
	}
	return &models.Customer{ID: 1, Email: email}, nil
}

func TestCustomerHandler(t *testing.T) {
	h := NewCustomerHandler(stubCustomers{}, quietLogger())

	rec := serve("GET /customers/{id}", h.Get, http.MethodGet, "/customers/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_bookings":2`)

	rec = serve("GET /customers/{id}", h.Get, http.MethodGet, "/customers/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrCodeNotFound, decode(t, rec).Error.Code)

	rec = serve("GET /customers", h.Lookup, http.MethodGet, "/customers?email=thandi@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve("GET /customers", h.Lookup, http.MethodGet, "/customers", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(stubPinger{})
	rec := serve("GET /health", h.Health, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve("GET /ready", h.Ready, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHealthHandler(stubPinger{err: errors.New("ORA-12541")})
	rec = serve("GET /ready", h.Ready, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
