package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zlovtnik/homeswift/internal/models"
)

// PricingCatalog is the read side of the pricing catalog
type PricingCatalog interface {
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, category string) ([]models.PricingEntry, error)
	All(ctx context.Context) ([]models.PricingEntry, error)
}

// PricingHandler serves public catalog reads
type PricingHandler struct {
	svc    PricingCatalog
	logger *slog.Logger
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(svc PricingCatalog, logger *slog.Logger) *PricingHandler {
	if svc == nil {
		panic("NewPricingHandler: svc must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PricingHandler{svc: svc, logger: logger}
}

// Categories handles GET /api/v1/pricing/categories
func (h *PricingHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "pricing categories", err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(cats))
}

// ByCategory handles GET /api/v1/pricing?category=
func (h *PricingHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		writeError(w, http.StatusBadRequest, ErrCodeMissingField, "category query parameter is required")
		return
	}

	entries, err := h.svc.ByCategory(r.Context(), category)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "pricing by category", err)
		return
	}
	if entries == nil {
		entries = []models.PricingEntry{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(entries))
}

// All handles GET /api/v1/pricing/all
func (h *PricingHandler) All(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.All(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "pricing list", err)
		return
	}
	if entries == nil {
		entries = []models.PricingEntry{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(entries))
}
