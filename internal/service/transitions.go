package service

import (
	"fmt"
	"time"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/notify"
)

// isValidStatusTransition checks if a status transition is valid.
// Open requests may move to any status; terminal ones only accept a repeat of their own.
func isValidStatusTransition(from, to models.RequestStatus) bool {
	if !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	return !from.IsTerminal()
}

// applyStatus moves sr to status `to`, stamping the lifecycle timestamp the first time
// the status is reached. It returns the messages owed for this move; a status whose
// timestamp is already set owes nothing.
func applyStatus(sr *models.ServiceRequest, to models.RequestStatus, now time.Time) ([]notify.Kind, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !isValidStatusTransition(sr.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, sr.Status, to)
	}

	sr.Status = to
	var kinds []notify.Kind

	switch to {
	case models.RequestStatusConfirmed:
		if sr.ConfirmedAt == nil {
			sr.ConfirmedAt = stamp(now)
			if sr.HasProvider() {
				kinds = append(kinds, notify.KindProviderAssignment, notify.KindCustomerConfirmed)
			}
		}
	case models.RequestStatusInProgress:
		if sr.StartedAt == nil {
			sr.StartedAt = stamp(now)
			kinds = append(kinds, notify.KindInProgress)
		}
	case models.RequestStatusCompleted:
		if sr.CompletedAt == nil {
			sr.CompletedAt = stamp(now)
			kinds = append(kinds, notify.KindCompleted, notify.KindAdminCompleted)
		}
	case models.RequestStatusCancelled:
		if sr.CancelledAt == nil {
			sr.CancelledAt = stamp(now)
			kinds = append(kinds, notify.KindCancelled)
		}
	}
	return kinds, nil
}

func stamp(t time.Time) *time.Time {
	return &t
}
