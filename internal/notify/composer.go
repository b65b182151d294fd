package notify

import (
	"embed"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zlovtnik/homeswift/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Kind names a lifecycle message
type Kind string

const (
	KindBookingReceived    Kind = "booking_received"
	KindAdminNewBooking    Kind = "admin_new_booking"
	KindProviderAssignment Kind = "provider_assignment"
	KindCustomerConfirmed  Kind = "customer_confirmed"
	KindInProgress         Kind = "in_progress"
	KindCompleted          Kind = "completed"
	KindAdminCompleted     Kind = "admin_completed"
	KindReminder           Kind = "reminder"
	KindCancelled          Kind = "cancelled"
)

// Message is a rendered notification ready for a Sender
type Message struct {
	Kind      Kind
	RequestID int64
	To        string
	Subject   string
	Body      string
}

// Branding carries the business details rendered into every message
type Branding struct {
	Brand      string
	AdminEmail string
	AdminPhone string
}

// Composer renders lifecycle messages from a service request
type Composer struct {
	branding  Branding
	templates *template.Template
}

// NewComposer parses the embedded message templates
func NewComposer(b Branding) (*Composer, error) {
	tmpl, err := template.New("messages").ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse notification templates: %w", err)
	}
	return &Composer{branding: b, templates: tmpl}, nil
}

// view is the data every template renders from
type view struct {
	Brand         string
	AdminPhone    string
	RequestID     int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	Street        string
	MapsLink      string
	Unit          string
	Complex       string
	Access        string
	Service       string
	ServiceType   string
	Items         []string
	Date          string
	Time          string
	Notes         string
	Priority      string
	ProviderName  string
	ProviderPhone string
	PaymentMethod string
	Total         string
	Payout        string
	Commission    string
}

func (c *Composer) viewOf(sr *models.ServiceRequest) view {
	items := make([]string, 0, len(sr.Items))
	for _, it := range sr.Items {
		white := ""
		if it.IsWhite {
			white = " (White)"
		}
		items = append(items, fmt.Sprintf("%s%s × %d", it.ServiceType, white, it.Quantity))
	}
	priority := string(sr.Priority)
	if priority == "" {
		priority = string(models.PriorityMedium)
	}
	return view{
		Brand:         c.branding.Brand,
		AdminPhone:    c.branding.AdminPhone,
		RequestID:     sr.ID,
		CustomerName:  sr.CustomerName,
		CustomerEmail: sr.CustomerEmail,
		CustomerPhone: sr.CustomerPhone,
		Address:       sr.CustomerAddress,
		Street:        firstAddressLine(sr.CustomerAddress),
		MapsLink:      MapsLink(sr.CustomerAddress),
		Unit:          sr.UnitNumber,
		Complex:       sr.ComplexName,
		Access:        sr.AccessInstructions,
		Service:       sr.PrimaryCategory(),
		ServiceType:   sr.PrimaryServiceType(),
		Items:         items,
		Date:          sr.PreferredDate.Format(models.DateLayout),
		Time:          clockTime(sr.PreferredTime),
		Notes:         sr.AdditionalNotes,
		Priority:      strings.ToUpper(priority[:1]) + priority[1:],
		ProviderName:  sr.ProviderName,
		ProviderPhone: sr.ProviderPhone,
		PaymentMethod: sr.PaymentMethod,
		Total:         FormatCurrency(sr.TotalCustomerPaid),
		Payout:        FormatCurrency(sr.TotalProviderPayout),
		Commission:    FormatCurrency(sr.TotalCommissionEarned),
	}
}

// Compose renders the message of the given kind for sr. The recipient is chosen by kind.
func (c *Composer) Compose(kind Kind, sr *models.ServiceRequest) (Message, error) {
	v := c.viewOf(sr)

	var subject, body strings.Builder
	if err := c.templates.ExecuteTemplate(&subject, string(kind)+".subject", v); err != nil {
		return Message{}, fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := c.templates.ExecuteTemplate(&body, string(kind)+".body", v); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", kind, err)
	}

	return Message{
		Kind:      kind,
		RequestID: sr.ID,
		To:        c.recipient(kind, sr),
		Subject:   strings.TrimSpace(subject.String()),
		Body:      strings.TrimSpace(body.String()),
	}, nil
}

func (c *Composer) recipient(kind Kind, sr *models.ServiceRequest) string {
	switch kind {
	case KindAdminNewBooking, KindAdminCompleted:
		return c.branding.AdminEmail
	case KindProviderAssignment:
		return sr.ProviderEmail
	default:
		return sr.CustomerEmail
	}
}

// FormatCurrency renders an amount in rand with space-separated thousands, e.g. R1 234.50
func FormatCurrency(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return sign + "R" + b.String() + "." + frac
}

// MapsLink builds a Google Maps search link for an address
func MapsLink(address string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}

func firstAddressLine(address string) string {
	first, _, _ := strings.Cut(address, ",")
	if first = strings.TrimSpace(first); first == "" {
		return "Location"
	}
	return first
}

// clockTime renders "15:04" as "03:04 PM"; unparseable input is returned as is
func clockTime(hhmm string) string {
	t, err := time.Parse(models.TimeLayout, hhmm)
	if err != nil {
		return hhmm
	}
	return t.Format("03:04 PM")
}
