package quote

import "github.com/zlovtnik/homeswift/pkg/fp"

// Widths of the free-text columns, in bytes
const (
	MaxCustomerName       = 200
	MaxCustomerEmail      = 255
	MaxCustomerAddress    = 500
	MaxUnitNumber         = 50
	MaxComplexName        = 200
	MaxAccessInstructions = 1000
	MaxAdditionalNotes    = 2000
	MaxAdminNotes         = 4000
	MaxProviderName       = 200
	MaxProviderPhone      = 20
	MaxProviderEmail      = 255
	MaxPaymentMethod      = 50
)

// MaxLength rejects values longer than max bytes with ErrFieldTooLong
func MaxLength(field string, max int) fp.Validator[string] {
	return func(s string) error {
		if len(s) > max {
			return fieldError(field, ErrFieldTooLong)
		}
		return nil
	}
}

func bookingField(field string, max int, get func(Booking) string) fp.Validator[Booking] {
	check := MaxLength(field, max)
	return func(b Booking) error {
		return check(get(b))
	}
}

// withinLimits checks every free-text booking field against its column width
func withinLimits(b Booking) error {
	return fp.FirstError(b,
		bookingField("customer_name", MaxCustomerName, func(b Booking) string { return b.CustomerName }),
		bookingField("customer_email", MaxCustomerEmail, func(b Booking) string { return b.CustomerEmail }),
		bookingField("customer_address", MaxCustomerAddress, func(b Booking) string { return b.CustomerAddress }),
		bookingField("unit_number", MaxUnitNumber, func(b Booking) string { return b.UnitNumber }),
		bookingField("complex_name", MaxComplexName, func(b Booking) string { return b.ComplexName }),
		bookingField("access_instructions", MaxAccessInstructions, func(b Booking) string { return b.AccessInstructions }),
		bookingField("additional_notes", MaxAdditionalNotes, func(b Booking) string { return b.AdditionalNotes }),
	)
}
