package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/homeswift/internal/models"
)

// stubReports records the ranges it was asked for
type stubReports struct {
	counts    map[models.RequestStatus]int
	totals    func(from, to *time.Time) models.CompletedTotals
	breakdown map[string]models.CategorySummary
	ranges    [][2]*time.Time
}

func (s *stubReports) CountByStatus(context.Context) (map[models.RequestStatus]int, error) {
	return s.counts, nil
}

func (s *stubReports) CompletedTotals(_ context.Context, from, to *time.Time) (models.CompletedTotals, error) {
	s.ranges = append(s.ranges, [2]*time.Time{from, to})
	return s.totals(from, to), nil
}

func (s *stubReports) CategoryBreakdown(context.Context, *time.Time, *time.Time) (map[string]models.CategorySummary, error) {
	return s.breakdown, nil
}

func TestStats(t *testing.T) {
	store := &stubReports{
		counts: map[models.RequestStatus]int{
			models.RequestStatusPending:   3,
			models.RequestStatusCompleted: 4,
			models.RequestStatusCancelled: 1,
		},
		totals: func(from, _ *time.Time) models.CompletedTotals {
			if from != nil {
				return models.CompletedTotals{Jobs: 3, CustomerPayments: decimal.RequireFromString("1455"), Commission: decimal.RequireFromString("405")}
			}
			return models.CompletedTotals{Jobs: 4, Commission: decimal.RequireFromString("540")}
		},
	}
	svc := NewReportService(store, time.UTC, quietLogger())
	svc.now = func() time.Time { return fixedNow }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.TotalBookings)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 4, stats.Completed)
	assert.Equal(t, 3, stats.ThisMonthJobs)
	assert.Equal(t, "1455", stats.ThisMonthRevenue.String())
	assert.Equal(t, "540", stats.TotalCommission.String())
	assert.Equal(t, "135", stats.AvgCommission.String())

	require.NotNil(t, store.ranges[0][0])
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *store.ranges[0][0])
}

func TestFinancialReport(t *testing.T) {
	store := &stubReports{
		totals: func(_, _ *time.Time) models.CompletedTotals {
			return models.CompletedTotals{Jobs: 3, Commission: decimal.RequireFromString("100")}
		},
		breakdown: map[string]models.CategorySummary{
			"Carpet Deep Cleaning": {Count: 2, Commission: decimal.RequireFromString("70")},
		},
	}
	svc := NewReportService(store, time.UTC, quietLogger())

	report, err := svc.FinancialReport(context.Background(), "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, 3, report.NumberOfJobs)
	assert.Equal(t, "33.33", report.AvgCommission.String())
	assert.Len(t, report.CategoryBreakdown, 1)

	// to is inclusive, so the store sees the next midnight
	require.NotNil(t, store.ranges[0][1])
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *store.ranges[0][1])
}

func TestFinancialReport_InvalidRange(t *testing.T) {
	svc := NewReportService(&stubReports{}, time.UTC, quietLogger())

	_, err := svc.FinancialReport(context.Background(), "03/01/2026", "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.FinancialReport(context.Background(), "2026-03-10", "2026-03-01")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestFinancialReport_NoJobs(t *testing.T) {
	store := &stubReports{totals: func(_, _ *time.Time) models.CompletedTotals { return models.CompletedTotals{} }}
	svc := NewReportService(store, time.UTC, quietLogger())

	report, err := svc.FinancialReport(context.Background(), "", "")
	require.NoError(t, err)
	assert.True(t, report.AvgCommission.IsZero())
	assert.Equal(t, [2]*time.Time{nil, nil}, store.ranges[0])
}
