package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zlovtnik/homeswift/internal/models"
)

// ReportService builds the admin dashboard figures
type ReportService struct {
	store    ReportStore
	location *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

// NewReportService creates a new ReportService. Month boundaries use loc.
func NewReportService(store ReportStore, loc *time.Location, logger *slog.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{store: store, location: loc, logger: logger, now: time.Now}
}

// Stats returns status counts and commission figures for completed requests
func (s *ReportService) Stats(ctx context.Context) (*models.AdminStats, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)

	month, err := s.store.CompletedTotals(ctx, &monthStart, nil)
	if err != nil {
		return nil, err
	}
	all, err := s.store.CompletedTotals(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	stats := &models.AdminStats{
		Pending:             counts[models.RequestStatusPending],
		Confirmed:           counts[models.RequestStatusConfirmed],
		InProgress:          counts[models.RequestStatusInProgress],
		Completed:           counts[models.RequestStatusCompleted],
		Cancelled:           counts[models.RequestStatusCancelled],
		ThisMonthRevenue:    month.CustomerPayments,
		ThisMonthCommission: month.Commission,
		ThisMonthJobs:       month.Jobs,
		TotalCommission:     all.Commission,
		AvgCommission:       average(month.Commission, month.Jobs),
	}
	for _, n := range counts {
		stats.TotalBookings += n
	}
	return stats, nil
}

// FinancialReport summarises completed requests created between from and to, both
// inclusive dates in YYYY-MM-DD. Either bound may be empty.
func (s *ReportService) FinancialReport(ctx context.Context, from, to string) (*models.FinancialReport, error) {
	fromT, err := s.parseDay(from)
	if err != nil {
		return nil, err
	}
	toT, err := s.parseDay(to)
	if err != nil {
		return nil, err
	}
	if fromT != nil && toT != nil && toT.Before(*fromT) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange, from, to)
	}

	var until *time.Time
	if toT != nil {
		next := toT.AddDate(0, 0, 1)
		until = &next
	}

	totals, err := s.store.CompletedTotals(ctx, fromT, until)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.store.CategoryBreakdown(ctx, fromT, until)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "financial report built", "from", from, "to", to, "jobs", totals.Jobs)

	return &models.FinancialReport{
		From:                  strings.TrimSpace(from),
		To:                    strings.TrimSpace(to),
		TotalCustomerPayments: totals.CustomerPayments,
		TotalProviderPayouts:  totals.ProviderPayouts,
		TotalCommission:       totals.Commission,
		AvgCommission:         average(totals.Commission, totals.Jobs),
		NumberOfJobs:          totals.Jobs,
		CategoryBreakdown:     breakdown,
	}, nil
}

func (s *ReportService) parseDay(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, v, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDateRange, v)
	}
	return &t, nil
}

// average divides total by n rounded to cents; zero jobs average to zero
func average(total decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(n)), 2)
}
