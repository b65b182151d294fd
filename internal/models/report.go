package models

import "github.com/shopspring/decimal"

// AdminStats is the admin dashboard summary
type AdminStats struct {
	TotalBookings       int             `json:"total_bookings"`
	Pending             int             `json:"pending"`
	Confirmed           int             `json:"confirmed"`
	InProgress          int             `json:"in_progress"`
	Completed           int             `json:"completed"`
	Cancelled           int             `json:"cancelled"`
	ThisMonthRevenue    decimal.Decimal `json:"this_month_revenue"`
	ThisMonthCommission decimal.Decimal `json:"this_month_commission"`
	ThisMonthJobs       int             `json:"this_month_jobs"`
	TotalCommission     decimal.Decimal `json:"total_commission"`
	AvgCommission       decimal.Decimal `json:"avg_commission"`
}

// CompletedTotals aggregates money over a set of completed requests
type CompletedTotals struct {
	Jobs             int
	CustomerPayments decimal.Decimal
	ProviderPayouts  decimal.Decimal
	Commission       decimal.Decimal
}

// CategorySummary aggregates completed jobs for one category
type CategorySummary struct {
	Count      int             `json:"count"`
	Commission decimal.Decimal `json:"commission"`
}

// FinancialReport summarises completed requests in a date range
type FinancialReport struct {
	From                  string                     `json:"from,omitempty"`
	To                    string                     `json:"to,omitempty"`
	TotalCustomerPayments decimal.Decimal            `json:"total_customer_payments"`
	TotalProviderPayouts  decimal.Decimal            `json:"total_provider_payouts"`
	TotalCommission       decimal.Decimal            `json:"total_commission"`
	AvgCommission         decimal.Decimal            `json:"avg_commission"`
	NumberOfJobs          int                        `json:"number_of_jobs"`
	CategoryBreakdown     map[string]CategorySummary `json:"category_breakdown"`
}

// ReminderSweepResult reports the outcome of one reminder sweep
type ReminderSweepResult struct {
	Candidates int `json:"candidates"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}
