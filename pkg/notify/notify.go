// Package notify delivers order notifications without blocking the request that triggered them.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	KindCustomerConfirmation = "order_confirmation_customer"
	KindMerchantConfirmation = "order_confirmation_merchant"
	KindStatusUpdate         = "order_status_update"
)

type Message struct {
	Kind           string `json:"kind"`
	To             string `json:"-"`
	Subject        string `json:"subject"`
	Body           string `json:"-"`
	TenantID       uint   `json:"tenantId"`
	OrderID        uint   `json:"orderId"`
	OrderNumber    string `json:"orderNumber"`
	Status         string `json:"status,omitempty"`
	PreviousStatus string `json:"previousStatus,omitempty"`
}

// Sink is one delivery channel (mail, mqtt, websocket).
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Notifier is what services depend on.
type Notifier interface {
	Dispatch(msg Message)
}

// Dispatcher fans a message out to every sink on its own goroutine after a short delay.
// Failures are logged only.
type Dispatcher struct {
	sinks   []Sink
	delay   time.Duration
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(logger *zap.Logger, delay time.Duration, sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, delay: delay, timeout: 10 * time.Second, logger: logger}
}

func (d *Dispatcher) Dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification panic", zap.String("kind", msg.Kind), zap.Any("panic", r))
			}
		}()

		if d.delay > 0 {
			time.Sleep(d.delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		for _, s := range d.sinks {
			if err := s.Send(ctx, msg); err != nil {
				d.logger.Warn("notification failed",
					zap.String("sink", s.Name()),
					zap.String("kind", msg.Kind),
					zap.Uint("order_id", msg.OrderID),
					zap.Error(err),
				)
			}
		}
	}()
}

// Wait blocks until every dispatched message has been handled.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// MailSink logs the rendered email; a real provider plugs in behind Mailer.
type Mailer interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

type LogMailer struct{ Logger *zap.Logger }

func (m LogMailer) SendMail(_ context.Context, to, subject, body string) error {
	m.Logger.Info("email", zap.String("to", to), zap.String("subject", subject), zap.Int("body_len", len(body)))
	return nil
}

type MailSink struct{ Mailer Mailer }

func (MailSink) Name() string { return "mail" }

func (s MailSink) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("no recipient for %s", msg.Kind)
	}
	return s.Mailer.SendMail(ctx, msg.To, msg.Subject, msg.Body)
}
