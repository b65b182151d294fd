package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// redialBackoff is the minimum gap between reconnect attempts after a failed dial
const redialBackoff = 5 * time.Second

// errSenderClosed is returned by publish after Close
var errSenderClosed = errors.New("amqp sender closed")

// EmailMessage is the JSON payload consumed by the mail worker
type EmailMessage struct {
	MessageID string    `json:"message_id"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// channel is the part of *amqp.Channel the sender publishes through
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// session is one broker connection with its publishing channel. closed fires
// when the broker drops the channel or the connection under it.
type session struct {
	conn   io.Closer
	ch     channel
	closed <-chan *amqp.Error
}

func (s *session) alive() bool {
	select {
	case <-s.closed:
		return false
	default:
		return true
	}
}

func (s *session) close() {
	_ = s.ch.Close()
	_ = s.conn.Close()
}

type dialFunc func(cfg AMQPConfig) (*session, error)

// AMQPSender publishes emails to a RabbitMQ topic exchange and reconnects
// when the broker drops the connection
type AMQPSender struct {
	mu       sync.Mutex
	cfg      AMQPConfig
	dial     dialFunc
	sess     *session
	nextDial time.Time
	shutdown bool
	logger   *slog.Logger
	now      func() time.Time
	backoff  time.Duration
}

// AMQPConfig configures an AMQPSender
type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
	From       string
}

// NewAMQPSender dials the broker and declares the exchange
func NewAMQPSender(cfg AMQPConfig, logger *slog.Logger) (*AMQPSender, error) {
	return newAMQPSender(cfg, logger, dialSession)
}

func newAMQPSender(cfg AMQPConfig, logger *slog.Logger, dial dialFunc) (*AMQPSender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sess, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &AMQPSender{
		cfg:     cfg,
		dial:    dial,
		sess:    sess,
		logger:  logger,
		now:     time.Now,
		backoff: redialBackoff,
	}, nil
}

func dialSession(cfg AMQPConfig) (*session, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	// channels are closed with their connection, so one listener covers both
	closed := ch.NotifyClose(make(chan *amqp.Error, 1))
	return &session{conn: conn, ch: ch, closed: closed}, nil
}

// Send publishes one persistent message. It returns false if the publish fails.
func (s *AMQPSender) Send(ctx context.Context, to, subject, body string) bool {
	msg := EmailMessage{
		MessageID: uuid.NewString(),
		From:      s.cfg.From,
		To:        to,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode email", "error", err)
		return false
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.MessageID,
		Timestamp:    msg.CreatedAt,
		Body:         b,
	}
	if err := s.publish(ctx, pub); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish email",
			"error", err,
			"to", to,
			"message_id", msg.MessageID,
		)
		return false
	}
	return true
}

// publish sends on the live session. A channel that closed under the publish is
// replaced and the publish tried once more.
func (s *AMQPSender) publish(ctx context.Context, pub amqp.Publishing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		sess, err := s.current(ctx)
		if err != nil {
			return err
		}
		err = sess.ch.PublishWithContext(ctx, s.cfg.Exchange, s.cfg.RoutingKey, false, false, pub)
		if err == nil {
			return nil
		}
		if !errors.Is(err, amqp.ErrClosed) || attempt > 0 {
			return err
		}
		s.drop()
	}
}

// current returns the live session, redialing if the broker closed it. Callers hold s.mu.
func (s *AMQPSender) current(ctx context.Context) (*session, error) {
	if s.shutdown {
		return nil, errSenderClosed
	}
	if s.sess != nil && s.sess.alive() {
		return s.sess, nil
	}
	if s.sess != nil {
		s.logger.WarnContext(ctx, "rabbitmq channel closed, reconnecting")
		s.drop()
	}
	if now := s.now(); now.Before(s.nextDial) {
		return nil, fmt.Errorf("rabbitmq unavailable, next reconnect in %s", s.nextDial.Sub(now).Round(time.Millisecond))
	}

	sess, err := s.dial(s.cfg)
	if err != nil {
		s.nextDial = s.now().Add(s.backoff)
		return nil, err
	}
	s.logger.InfoContext(ctx, "rabbitmq reconnected", "exchange", s.cfg.Exchange)
	s.sess = sess
	return sess, nil
}

func (s *AMQPSender) drop() {
	if s.sess == nil {
		return
	}
	s.sess.close()
	s.sess = nil
}

// Close closes the channel and connection. Later sends fail without redialing.
func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = true
	if s.sess == nil {
		return nil
	}
	_ = s.sess.ch.Close()
	err := s.sess.conn.Close()
	s.sess = nil
	return err
}
