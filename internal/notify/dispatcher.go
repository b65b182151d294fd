package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zlovtnik/homeswift/internal/metrics"
)

// DefaultSendTimeout bounds one delivery attempt
const DefaultSendTimeout = 10 * time.Second

// Dispatcher delivers rendered messages through a Sender.
// Dispatch is fire-and-forget; Wait drains in-flight deliveries at shutdown.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(sender Sender, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Dispatcher{sender: sender, logger: logger, timeout: timeout}
}

// Dispatch delivers msgs in order on a background goroutine.
// The request context's values are kept but its cancellation is not.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for _, m := range msgs {
			d.SendNow(detached, m)
		}
	}()
}

// SendNow delivers one message synchronously and reports whether it was sent
func (d *Dispatcher) SendNow(ctx context.Context, m Message) bool {
	if m.To == "" {
		d.logger.WarnContext(ctx, "notification skipped: no recipient",
			"kind", m.Kind,
			"request_id", m.RequestID,
		)
		return false
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ok := d.sender.Send(sendCtx, m.To, m.Subject, m.Body)
	metrics.Notifications.WithLabelValues(string(m.Kind), metrics.NotificationResult(ok)).Inc()
	if !ok {
		d.logger.WarnContext(ctx, "notification failed",
			"kind", m.Kind,
			"request_id", m.RequestID,
			"to", m.To,
		)
		return false
	}
	d.logger.DebugContext(ctx, "notification sent",
		"kind", m.Kind,
		"request_id", m.RequestID,
	)
	return true
}

// Wait blocks until in-flight deliveries finish or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
