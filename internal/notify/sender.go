// Package notify renders lifecycle messages and hands them to a delivery transport.
//
// Delivery is best effort. A Sender reports success as a bool and never returns
// an error to the lifecycle; failures are logged and counted.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Sender delivers one message. Retry and transport details belong to the implementation.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) bool
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send logs the message and always succeeds
func (s *LogSender) Send(ctx context.Context, to, subject, body string) bool {
	s.logger.InfoContext(ctx, "email",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)),
	)
	return true
}

// Sent is a message captured by RecordingSender
type Sent struct {
	To      string
	Subject string
	Body    string
}

// RecordingSender keeps every message in memory. Fail decides per recipient
// whether a send fails; nil means every send succeeds.
type RecordingSender struct {
	mu   sync.Mutex
	sent []Sent
	Fail func(to string) bool
}

// Send records the message
func (s *RecordingSender) Send(_ context.Context, to, subject, body string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil && s.Fail(to) {
		return false
	}
	s.sent = append(s.sent, Sent{To: to, Subject: subject, Body: body})
	return true
}

// Messages returns a copy of the recorded messages
func (s *RecordingSender) Messages() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Sent, len(s.sent))
	copy(out, s.sent)
	return out
}

// Reset forgets recorded messages
func (s *RecordingSender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
