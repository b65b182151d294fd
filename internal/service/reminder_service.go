package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zlovtnik/homeswift/internal/metrics"
	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/notify"
	"github.com/zlovtnik/homeswift/internal/quote"
)

// reminderActor is recorded as performed_by on reminder history rows
const reminderActor = "reminder-sweep"

var reminderStatuses = []models.RequestStatus{
	models.RequestStatusPending,
	models.RequestStatusConfirmed,
}

// ReminderService sends day-before reminders
type ReminderService struct {
	// mu serializes sweeps from the ticker and the admin endpoint
	mu         sync.Mutex
	store      ReminderStore
	calc       *quote.Calculator
	composer   *notify.Composer
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewReminderService creates a new ReminderService
func NewReminderService(store ReminderStore, calc *quote.Calculator, composer *notify.Composer, dispatcher *notify.Dispatcher, logger *slog.Logger) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{
		store:      store,
		calc:       calc,
		composer:   composer,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Sweep reminds every open request scheduled for tomorrow that has not been reminded.
// A request is only marked after its reminder was sent, so failures are retried next sweep.
// Concurrent calls run one after another; the later one sees the rows the earlier one marked.
func (s *ReminderService) Sweep(ctx context.Context) (models.ReminderSweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tomorrow := s.calc.Today().AddDate(0, 0, 1)

	candidates, err := s.store.FindReminderCandidates(ctx, tomorrow, reminderStatuses)
	if err != nil {
		return models.ReminderSweepResult{}, err
	}

	result := models.ReminderSweepResult{Candidates: len(candidates)}
	for _, sr := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		msg, err := s.composer.Compose(notify.KindReminder, sr)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to compose reminder", "request_id", sr.ID, "error", err)
			result.Failed++
			continue
		}
		if !s.dispatcher.SendNow(ctx, msg) {
			result.Failed++
			continue
		}

		marked, err := s.store.MarkReminderSent(ctx, sr.ID, s.now(), reminderActor)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to mark reminder sent", "request_id", sr.ID, "error", err)
			result.Failed++
			continue
		}
		if !marked {
			s.logger.InfoContext(ctx, "reminder already marked by another sweep", "request_id", sr.ID)
			continue
		}
		result.Sent++
		metrics.ReminderSweepSent.Inc()
	}

	s.logger.InfoContext(ctx, "reminder sweep finished",
		"day", tomorrow.Format(models.DateLayout),
		"candidates", result.Candidates,
		"sent", result.Sent,
		"failed", result.Failed,
	)
	return result, nil
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval disables it.
func (s *ReminderService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		s.logger.Info("reminder sweep disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.ErrorContext(ctx, "reminder sweep failed", "error", err)
			}
		}
	}
}
