// Package quote validates booking submissions and prices carts against the catalog.
//
// Validation runs in a fixed order and the first failure wins: required fields and
// field widths, phone, preferred date, item quantities, then catalog lookups. Pricing is exact
// decimal arithmetic; the callout fee is added to the customer total and the
// platform commission, never to the provider payout.
package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/pkg/fp"
)

// Quantity bounds per line item
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Catalog resolves catalog entries by key
type Catalog interface {
	Lookup(category, serviceType string) fp.Option[models.PricingEntry]
}

// Calculator prices carts. It holds no mutable state.
type Calculator struct {
	calloutFee decimal.Decimal
	location   *time.Location
	now        func() time.Time
}

// NewCalculator creates a Calculator. Dates are judged in location.
func NewCalculator(calloutFee decimal.Decimal, location *time.Location) *Calculator {
	if location == nil {
		location = time.UTC
	}
	return &Calculator{calloutFee: calloutFee, location: location, now: time.Now}
}

// WithClock returns a copy of the calculator that reads the current time from now
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	cp := *c
	cp.now = now
	return &cp
}

// CalloutFee returns the fixed platform charge
func (c *Calculator) CalloutFee() decimal.Decimal {
	return c.calloutFee
}

// Booking is a creation request that passed validation, with normalized contact fields
type Booking struct {
	CustomerName       string
	CustomerEmail      string
	CustomerPhone      string
	CustomerAddress    string
	UnitNumber         string
	ComplexName        string
	AccessInstructions string
	PreferredDate      time.Time
	PreferredTime      string
	AdditionalNotes    string
	Items              []models.LineItemInput
	Quote              models.Quote

	rawDate string
}

// Price validates a booking submission and prices its cart
func (c *Calculator) Price(req *models.CreateServiceRequestRequest, catalog Catalog) fp.Result[Booking] {
	if req == nil {
		return fp.Failure[Booking](fieldError("body", ErrMissingField))
	}
	b := Booking{
		CustomerName:       strings.TrimSpace(req.CustomerName),
		CustomerEmail:      strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:      req.CustomerPhone,
		CustomerAddress:    strings.TrimSpace(req.CustomerAddress),
		UnitNumber:         strings.TrimSpace(req.UnitNumber),
		ComplexName:        strings.TrimSpace(req.ComplexName),
		AccessInstructions: strings.TrimSpace(req.AccessInstructions),
		PreferredTime:      strings.TrimSpace(req.PreferredTime),
		AdditionalNotes:    strings.TrimSpace(req.AdditionalNotes),
		Items:              req.Items,
		rawDate:            strings.TrimSpace(req.PreferredDate),
	}

	validated := fp.Pipe(b, checkRequired, fp.Check(withinLimits), checkPhone, c.checkDate)
	return fp.Then(validated, func(b Booking) fp.Result[Booking] {
		return fp.Map(func(q models.Quote) Booking {
			b.Quote = q
			return b
		})(c.PriceItems(b.Items, catalog))
	})
}

// PriceItems validates quantities and prices a cart
func (c *Calculator) PriceItems(items []models.LineItemInput, catalog Catalog) fp.Result[models.Quote] {
	if err := fp.NotEmpty[models.LineItemInput]("items")(items); err != nil {
		return fp.Failure[models.Quote](fieldError("items", ErrMissingField))
	}
	quantity := fp.Range("quantity", MinQuantity, MaxQuantity)
	for i, it := range items {
		if err := quantity(it.Quantity); err != nil {
			return fp.Failure[models.Quote](fieldError(fmt.Sprintf("items[%d].quantity", i), ErrInvalidQuantity))
		}
	}

	lines := fp.Traverse(priceLine(catalog))(items)
	return fp.Map(c.total)(lines)
}

func priceLine(catalog Catalog) func(models.LineItemInput) fp.Result[models.PricedLineItem] {
	return func(it models.LineItemInput) fp.Result[models.PricedLineItem] {
		notFound := fieldError("items", fmt.Errorf("%w: %s / %s", ErrPricingNotFound, it.Category, it.ServiceType))
		entry := fp.FromOption[models.PricingEntry](notFound)(catalog.Lookup(it.Category, it.ServiceType))

		return fp.Map(func(e models.PricingEntry) models.PricedLineItem {
			unitCustomer, unitProvider := e.UnitPrices(it.IsWhite)
			qty := decimal.NewFromInt(int64(it.Quantity))
			lineCustomer := unitCustomer.Mul(qty)
			lineProvider := unitProvider.Mul(qty)
			return models.PricedLineItem{
				Category:          e.Category,
				ServiceType:       e.ServiceType,
				Quantity:          it.Quantity,
				IsWhite:           it.IsWhite && e.IsWhiteApplicable,
				UnitCustomerPrice: unitCustomer,
				UnitProviderPrice: unitProvider,
				LineCustomerTotal: lineCustomer,
				LineProviderTotal: lineProvider,
				LineCommission:    lineCustomer.Sub(lineProvider),
			}
		})(entry)
	}
}

func (c *Calculator) total(lines []models.PricedLineItem) models.Quote {
	q := models.Quote{
		LineItems:             lines,
		CalloutFee:            c.calloutFee,
		TotalCustomerPaid:     decimal.Zero,
		TotalProviderPayout:   decimal.Zero,
		TotalCommissionEarned: decimal.Zero,
	}
	for _, l := range lines {
		q.TotalCustomerPaid = q.TotalCustomerPaid.Add(l.LineCustomerTotal)
		q.TotalProviderPayout = q.TotalProviderPayout.Add(l.LineProviderTotal)
		q.TotalCommissionEarned = q.TotalCommissionEarned.Add(l.LineCommission)
	}
	q.TotalCustomerPaid = q.TotalCustomerPaid.Add(c.calloutFee)
	q.TotalCommissionEarned = q.TotalCommissionEarned.Add(c.calloutFee)
	return q
}

func checkRequired(b Booking) fp.Result[Booking] {
	required := []struct {
		field string
		value string
	}{
		{"customer_name", b.CustomerName},
		{"customer_email", b.CustomerEmail},
		{"customer_phone", b.CustomerPhone},
		{"customer_address", b.CustomerAddress},
		{"preferred_date", b.rawDate},
		{"preferred_time", b.PreferredTime},
	}
	for _, r := range required {
		if err := fp.Required(r.field)(r.value); err != nil {
			return fp.Failure[Booking](fieldError(r.field, ErrMissingField))
		}
	}
	if len(b.Items) == 0 {
		return fp.Failure[Booking](fieldError("items", ErrMissingField))
	}
	if err := fp.Email("customer_email")(b.CustomerEmail); err != nil {
		return fp.Failure[Booking](fieldError("customer_email", ErrInvalidEmail))
	}
	t, err := time.Parse(models.TimeLayout, b.PreferredTime)
	if err != nil {
		return fp.Failure[Booking](fieldError("preferred_time", ErrInvalidTime))
	}
	b.PreferredTime = t.Format(models.TimeLayout)
	return fp.Success(b)
}

func checkPhone(b Booking) fp.Result[Booking] {
	phone := NormalizePhone(b.CustomerPhone)
	if !ValidPhone(phone) {
		return fp.Failure[Booking](fieldError("customer_phone", ErrInvalidPhone))
	}
	b.CustomerPhone = phone
	return fp.Success(b)
}

func (c *Calculator) checkDate(b Booking) fp.Result[Booking] {
	d, err := time.ParseInLocation(models.DateLayout, b.rawDate, c.location)
	if err != nil {
		return fp.Failure[Booking](fieldError("preferred_date", ErrInvalidDate))
	}
	if d.Before(c.Today()) {
		return fp.Failure[Booking](fieldError("preferred_date", ErrPastDate))
	}
	b.PreferredDate = d
	return fp.Success(b)
}

// Today returns midnight of the current day in the business location
func (c *Calculator) Today() time.Time {
	return StartOfDay(c.now(), c.location)
}

// StartOfDay truncates t to midnight in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
