package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/service"
)

// ServiceRequests is the lifecycle surface the handler drives
type ServiceRequests interface {
	Create(ctx context.Context, req *models.CreateServiceRequestRequest, performedBy string) (*models.ServiceRequest, error)
	Quote(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error)
	Get(ctx context.Context, id int64) (*models.ServiceRequest, error)
	List(ctx context.Context, filter models.ServiceRequestFilter, params models.PaginationParams) ([]*models.ServiceRequest, int, error)
	History(ctx context.Context, id int64, params models.PaginationParams) ([]models.HistoryEntry, int, error)
	Update(ctx context.Context, id int64, req *models.UpdateServiceRequestRequest, performedBy, ip string) (*models.ServiceRequest, error)
	Assign(ctx context.Context, id int64, req *models.AssignProviderRequest, performedBy, ip string) (*models.ServiceRequest, error)
}

// ServiceRequestHandler handles service request HTTP requests
type ServiceRequestHandler struct {
	svc    ServiceRequests
	logger *slog.Logger
}

// NewServiceRequestHandler creates a new ServiceRequestHandler
// Panics if svc is nil to fail fast on misconfiguration
func NewServiceRequestHandler(svc ServiceRequests, logger *slog.Logger) *ServiceRequestHandler {
	if svc == nil {
		panic("NewServiceRequestHandler: svc must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceRequestHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/service-requests
func (h *ServiceRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateServiceRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, MsgInvalidRequestBody)
		return
	}

	sr, err := h.svc.Create(r.Context(), &req, actor(r))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "create service request", err)
		return
	}

	writeJSON(w, http.StatusCreated, models.SuccessResponse(sr.ToResponse()))
}

// Quote handles POST /api/v1/quotes
func (h *ServiceRequestHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, MsgInvalidRequestBody)
		return
	}

	q, err := h.svc.Quote(r.Context(), &req)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "quote", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse(q))
}

// List handles GET /api/v1/service-requests
func (h *ServiceRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseRequestFilter(r)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "list service requests", err)
		return
	}
	params := parsePagination(r)

	requests, total, err := h.svc.List(r.Context(), filter, params)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "list service requests", err)
		return
	}

	responses := make([]models.ServiceRequestResponse, len(requests))
	for i, sr := range requests {
		responses[i] = sr.ToResponse()
	}

	result := models.NewPaginatedResponse(responses, params.Page, params.PageSize, total)
	writeJSON(w, http.StatusOK, models.SuccessResponse(result))
}

// Get handles GET /api/v1/service-requests/{id}
func (h *ServiceRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidRequestID)
		return
	}

	sr, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "get service request", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse(sr.ToResponse()))
}

// History handles GET /api/v1/service-requests/{id}/history
func (h *ServiceRequestHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidRequestID)
		return
	}
	params := parsePagination(r)

	entries, total, err := h.svc.History(r.Context(), id, params)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "service request history", err)
		return
	}

	result := models.NewPaginatedResponse(entries, params.Page, params.PageSize, total)
	writeJSON(w, http.StatusOK, models.SuccessResponse(result))
}

// Update handles PATCH /api/v1/service-requests/{id}
func (h *ServiceRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidRequestID)
		return
	}

	var req models.UpdateServiceRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, MsgInvalidRequestBody)
		return
	}

	sr, err := h.svc.Update(r.Context(), id, &req, actor(r), clientIP(r))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "update service request", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse(sr.ToResponse()))
}

// Assign handles POST /api/v1/service-requests/{id}/assign
func (h *ServiceRequestHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidRequestID)
		return
	}

	var req models.AssignProviderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, MsgInvalidRequestBody)
		return
	}
	if req.ProviderID <= 0 {
		writeError(w, http.StatusBadRequest, ErrCodeMissingField, "provider_id is required")
		return
	}

	sr, err := h.svc.Assign(r.Context(), id, &req, actor(r), clientIP(r))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "assign provider", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse(sr.ToResponse()))
}

// parseRequestFilter reads status, category, search and the preferred date bounds
func parseRequestFilter(r *http.Request) (models.ServiceRequestFilter, error) {
	q := r.URL.Query()
	filter := models.ServiceRequestFilter{
		Status:   models.RequestStatus(strings.TrimSpace(q.Get("status"))),
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
	}

	for _, bound := range []struct {
		key string
		dst **time.Time
	}{
		{"from", &filter.From},
		{"to", &filter.To},
	} {
		v := strings.TrimSpace(q.Get(bound.key))
		if v == "" {
			continue
		}
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			return filter, fmt.Errorf("%w: %s=%q", service.ErrInvalidDateRange, bound.key, v)
		}
		*bound.dst = &t
	}
	return filter, nil
}
