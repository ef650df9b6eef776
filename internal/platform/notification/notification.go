// Package notification delivers patient-facing messages over WhatsApp, SMS,
// and email, with {{key}} template rendering and retry for failed sends.
package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Channel is the delivery channel for a message.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
	ChannelEmail    Channel = "email"
)

// Status tracks a message through its delivery lifecycle.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Message is a single outbound notification.
type Message struct {
	ID         string            `json:"id"`
	Channel    Channel           `json:"channel"`
	Recipient  string            `json:"recipient"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body"`
	TemplateID string            `json:"template_id,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
	Status     Status            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	SentAt     *time.Time        `json:"sent_at,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// Sender delivers a rendered message over one channel. WhatsApp and SMS
// senders ignore the subject.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Template is a reusable message with {{key}} placeholders.
type Template struct {
	ID      string
	Subject string
	Body    string
	Channel Channel
}

// builtinTemplates covers the clinic's standard patient messages.
var builtinTemplates = []Template{
	{
		ID:      "invoice-issued",
		Subject: "Invoice {{invoice_number}} from {{clinic_name}}",
		Body:    "Dear {{patient_name}}, your invoice {{invoice_number}} for {{total}} has been issued. Please settle it at the reception or reply for payment options.",
		Channel: ChannelWhatsApp,
	},
	{
		ID:      "payment-received",
		Subject: "Payment received for {{invoice_number}}",
		Body:    "Dear {{patient_name}}, we have received your payment of {{total}} via {{payment_method}} against invoice {{invoice_number}}. Thank you!",
		Channel: ChannelWhatsApp,
	},
	{
		ID:      "appointment-reminder",
		Subject: "Appointment reminder",
		Body:    "Dear {{patient_name}}, this is a reminder of your appointment with {{doctor_name}} on {{date}} at {{time}}. Reply CANCEL to reschedule.",
		Channel: ChannelSMS,
	},
}

// TemplateEngine holds registered templates and renders them.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]Template)}
	for _, t := range builtinTemplates {
		e.templates[t.ID] = t
	}
	return e
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = t
}

// Render performs {{key}} substitution. Placeholders missing from data are
// left untouched so a broken caller is visible in the message, not silent.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (Template, string, string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return Template{}, "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject, body := t.Subject, t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return t, subject, body, nil
}

// Dispatcher routes messages to the sender for their channel and keeps an
// in-memory record for retry and inspection.
type Dispatcher struct {
	senders   map[Channel]Sender
	templates *TemplateEngine
	logger    zerolog.Logger

	mu       sync.RWMutex
	messages map[string]*Message
}

func NewDispatcher(senders map[Channel]Sender, templates *TemplateEngine, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		senders:   senders,
		templates: templates,
		logger:    logger,
		messages:  make(map[string]*Message),
	}
}

func (d *Dispatcher) deliver(ctx context.Context, m *Message) error {
	s, ok := d.senders[m.Channel]
	if !ok {
		return fmt.Errorf("no sender configured for channel %q", m.Channel)
	}
	return s.Send(ctx, m.Recipient, m.Subject, m.Body)
}

// Send dispatches the message and records the outcome.
func (d *Dispatcher) Send(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()
	m.Status = StatusPending

	err := d.deliver(ctx, m)
	if err != nil {
		m.Status = StatusFailed
		m.Error = err.Error()
	} else {
		m.Status = StatusSent
		now := time.Now().UTC()
		m.SentAt = &now
	}

	d.mu.Lock()
	d.messages[m.ID] = m
	d.mu.Unlock()

	return err
}

// SendTemplate renders and dispatches a templated message.
func (d *Dispatcher) SendTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Message, error) {
	t, subject, body, err := d.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	m := &Message{
		Channel:    t.Channel,
		Recipient:  recipient,
		Subject:    subject,
		Body:       body,
		TemplateID: templateID,
		Data:       data,
	}
	if err := d.Send(ctx, m); err != nil {
		return m, err
	}
	return m, nil
}

// SendTemplateAsync dispatches in a goroutine. Failures are logged, never
// surfaced to the caller; billing must not block on a messaging outage.
func (d *Dispatcher) SendTemplateAsync(templateID string, data map[string]string, recipient string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if _, err := d.SendTemplate(ctx, templateID, data, recipient); err != nil {
			d.logger.Error().Err(err).
				Str("template", templateID).
				Str("recipient", recipient).
				Msg("notification send failed")
		}
	}()
}

// Get retrieves a recorded message by id.
func (d *Dispatcher) Get(id string) (*Message, error) {
	d.mu.RLock()
	m, ok := d.messages[id]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("message %q not found", id)
	}
	return m, nil
}

// Retry re-sends a failed message.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	d.mu.RLock()
	m, ok := d.messages[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message %q not found", id)
	}
	if m.Status != StatusFailed {
		return fmt.Errorf("message %q is %s, only failed messages can be retried", id, m.Status)
	}

	err := d.deliver(ctx, m)

	d.mu.Lock()
	if err != nil {
		m.Status = StatusFailed
		m.Error = err.Error()
	} else {
		m.Status = StatusSent
		now := time.Now().UTC()
		m.SentAt = &now
		m.Error = ""
	}
	d.mu.Unlock()

	return err
}

// Stats returns message counts by status.
func (d *Dispatcher) Stats() map[Status]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[Status]int)
	for _, m := range d.messages {
		out[m.Status]++
	}
	return out
}
