package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zlovtnik/homeswift/internal/catalog"
	"github.com/zlovtnik/homeswift/internal/models"
)

// PricingService serves catalog snapshots and seeds the catalog
type PricingService struct {
	store  PricingStore
	seed   func() ([]models.PricingEntry, error)
	logger *slog.Logger
}

// NewPricingService creates a new PricingService seeded from the embedded catalog
func NewPricingService(store PricingStore, logger *slog.Logger) *PricingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PricingService{store: store, seed: catalog.SeedEntries, logger: logger}
}

// Table loads an immutable snapshot of the active catalog
func (s *PricingService) Table(ctx context.Context) (*catalog.Table, error) {
	entries, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewTable(entries), nil
}

// Seed inserts seed rows whose key is not in the catalog yet and returns how many were added.
// Existing rows keep their stored prices.
func (s *PricingService) Seed(ctx context.Context) (int, error) {
	seed, err := s.seed()
	if err != nil {
		return 0, fmt.Errorf("failed to load seed catalog: %w", err)
	}
	current, err := s.Table(ctx)
	if err != nil {
		return 0, err
	}

	missing := current.Missing(seed)
	if len(missing) == 0 {
		s.logger.InfoContext(ctx, "pricing catalog already seeded", "rows", current.Len())
		return 0, nil
	}

	inserted, err := s.store.InsertIfAbsent(ctx, missing)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "pricing catalog seeded", "inserted", inserted, "candidates", len(missing))
	return inserted, nil
}

// Categories lists the distinct catalog categories
func (s *PricingService) Categories(ctx context.Context) ([]string, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Categories(), nil
}

// ByCategory lists the entries of one category
func (s *PricingService) ByCategory(ctx context.Context, category string) ([]models.PricingEntry, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.ByCategory(category), nil
}

// All lists every active entry
func (s *PricingService) All(ctx context.Context) ([]models.PricingEntry, error) {
	t, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return t.Entries(), nil
}
