package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zlovtnik/homeswift/internal/models"
)

// ReminderSweeper runs one reminder sweep
type ReminderSweeper interface {
	Sweep(ctx context.Context) (models.ReminderSweepResult, error)
}

// CatalogSeeder inserts missing catalog rows
type CatalogSeeder interface {
	Seed(ctx context.Context) (int, error)
}

// Reports builds dashboard figures
type Reports interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	FinancialReport(ctx context.Context, from, to string) (*models.FinancialReport, error)
}

// AdminHandler serves admin actions and reports
type AdminHandler struct {
	reminders ReminderSweeper
	seeder    CatalogSeeder
	reports   Reports
	logger    *slog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(reminders ReminderSweeper, seeder CatalogSeeder, reports Reports, logger *slog.Logger) *AdminHandler {
	if reminders == nil || seeder == nil || reports == nil {
		panic("NewAdminHandler: reminders, seeder and reports must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{reminders: reminders, seeder: seeder, reports: reports, logger: logger}
}

// SendReminders handles POST /api/v1/admin/send-reminders
func (h *AdminHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	res, err := h.reminders.Sweep(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "send reminders", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(res))
}

// SeedPricing handles POST /api/v1/admin/seed-pricing
func (h *AdminHandler) SeedPricing(w http.ResponseWriter, r *http.Request) {
	n, err := h.seeder.Seed(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "seed pricing", err)
		return
	}
	msg := "pricing catalog already seeded"
	if n > 0 {
		msg = fmt.Sprintf("seeded %d pricing entries", n)
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(models.MessageResponse{Message: msg, Count: n}))
}

// Stats handles GET /api/v1/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Stats(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "admin stats", err)
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(stats))
}

// FinancialReport handles GET /api/v1/admin/financial-report?from=&to=
func (h *AdminHandler) FinancialReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	report, err := h.reports.FinancialReport(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, "financial report", err)
		return
	}
	if report.CategoryBreakdown == nil {
		report.CategoryBreakdown = map[string]models.CategorySummary{}
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(report))
}
