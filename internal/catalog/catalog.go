// Package catalog holds the in-memory pricing table used to price carts
// and the embedded seed set the catalog is initialised from.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/pkg/fp"
)

// defaultCommissionPercentage is informational; commission is always display minus base
var defaultCommissionPercentage = decimal.NewFromInt(10)

//go:embed seed.yaml
var seedYAML []byte

// Table is an immutable snapshot of the pricing catalog
type Table struct {
	entries map[models.PricingKey]models.PricingEntry
	order   []models.PricingKey
}

// NewTable builds a snapshot. Later duplicates of a key are ignored.
func NewTable(entries []models.PricingEntry) *Table {
	t := &Table{entries: make(map[models.PricingKey]models.PricingEntry, len(entries))}
	for _, e := range entries {
		k := e.Key()
		if _, exists := t.entries[k]; exists {
			continue
		}
		t.entries[k] = e
		t.order = append(t.order, k)
	}
	return t
}

// Lookup returns the entry for (category, serviceType), if any
func (t *Table) Lookup(category, serviceType string) fp.Option[models.PricingEntry] {
	if t == nil {
		return fp.None[models.PricingEntry]()
	}
	return fp.Lookup(t.entries, models.PricingKey{Category: category, ServiceType: serviceType})
}

// Contains reports whether the key is present
func (t *Table) Contains(k models.PricingKey) bool {
	_, ok := t.entries[k]
	return ok
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns all entries in insertion order
func (t *Table) Entries() []models.PricingEntry {
	out := make([]models.PricingEntry, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.entries[k])
	}
	return out
}

// Categories returns the distinct categories, sorted
func (t *Table) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, k := range t.order {
		if _, ok := seen[k.Category]; ok {
			continue
		}
		seen[k.Category] = struct{}{}
		out = append(out, k.Category)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the entries of one category in insertion order
func (t *Table) ByCategory(category string) []models.PricingEntry {
	var out []models.PricingEntry
	for _, k := range t.order {
		if k.Category == category {
			out = append(out, t.entries[k])
		}
	}
	return out
}

// Missing returns the seed entries whose key is not yet in the table.
// Seeding only ever inserts these, so existing rows are never overwritten.
func (t *Table) Missing(seed []models.PricingEntry) []models.PricingEntry {
	var out []models.PricingEntry
	for _, e := range seed {
		if t != nil && t.Contains(e.Key()) {
			continue
		}
		out = append(out, e)
	}
	return out
}

type seedFile struct {
	Entries []seedEntry `yaml:"entries"`
}

type seedEntry struct {
	Category               string `yaml:"category"`
	Type                   string `yaml:"type"`
	Description            string `yaml:"description"`
	ProviderBasePrice      string `yaml:"provider_base_price"`
	CustomerDisplayPrice   string `yaml:"customer_display_price"`
	ColorSurchargeProvider string `yaml:"color_surcharge_provider"`
	ColorSurchargeCustomer string `yaml:"color_surcharge_customer"`
	WhiteApplicable        bool   `yaml:"white_applicable"`
}

// SeedEntries parses the embedded seed set
func SeedEntries() ([]models.PricingEntry, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed parses a YAML seed document
func ParseSeed(data []byte) ([]models.PricingEntry, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse pricing seed: %w", err)
	}

	entries := make([]models.PricingEntry, 0, len(f.Entries))
	for i, s := range f.Entries {
		e, err := s.toEntry()
		if err != nil {
			return nil, fmt.Errorf("pricing seed entry %d (%s/%s): %w", i, s.Category, s.Type, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s seedEntry) toEntry() (models.PricingEntry, error) {
	if s.Category == "" || s.Type == "" {
		return models.PricingEntry{}, fmt.Errorf("category and type are required")
	}
	prices := make([]decimal.Decimal, 4)
	for i, raw := range []string{s.ProviderBasePrice, s.CustomerDisplayPrice, s.ColorSurchargeProvider, s.ColorSurchargeCustomer} {
		if raw == "" {
			raw = "0"
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return models.PricingEntry{}, fmt.Errorf("invalid price %q: %w", raw, err)
		}
		if d.IsNegative() {
			return models.PricingEntry{}, fmt.Errorf("negative price %q", raw)
		}
		prices[i] = d
	}

	e := models.PricingEntry{
		Category:               s.Category,
		ServiceType:            s.Type,
		ItemDescription:        s.Description,
		ProviderBasePrice:      prices[0],
		CustomerDisplayPrice:   prices[1],
		ColorSurchargeProvider: prices[2],
		ColorSurchargeCustomer: prices[3],
		IsWhiteApplicable:      s.WhiteApplicable,
		CommissionPercentage:   defaultCommissionPercentage,
		Active:                 true,
	}
	// commission must never be negative, with or without the surcharge
	for _, white := range []bool{false, true} {
		cust, prov := e.UnitPrices(white)
		if cust.LessThan(prov) {
			return models.PricingEntry{}, fmt.Errorf("customer price below provider price")
		}
	}
	return e, nil
}
