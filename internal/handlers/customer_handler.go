package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zlovtnik/homeswift/internal/models"
)

// CustomerRegistry reads customers
type CustomerRegistry interface {
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

// CustomerHandler handles customer HTTP requests
type CustomerHandler struct {
	svc    CustomerRegistry
	logger *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler
// Panics if svc is nil to fail fast on misconfiguration
func NewCustomerHandler(svc CustomerRegistry, logger *slog.Logger) *CustomerHandler {
	if svc == nil {
		panic("NewCustomerHandler: svc must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomerHandler{svc: svc, logger: logger}
}

// Lookup handles GET /api/v1/customers?email=
func (h *CustomerHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		writeError(w, http.StatusBadRequest, ErrCodeMissingField, MsgEmailRequired)
		return
	}

	customer, err := h.svc.GetByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "lookup customer", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse(customer))
}

// Get handles GET /api/v1/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDFromPath(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, MsgInvalidCustomerID)
		return
	}

	customer, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "get customer", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse(customer))
}
