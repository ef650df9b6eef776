package notification

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestDispatcher(wa, sms *MockSender) *Dispatcher {
	return NewDispatcher(map[Channel]Sender{
		ChannelWhatsApp: wa,
		ChannelSMS:      sms,
	}, NewTemplateEngine(), zerolog.Nop())
}

func TestRender_Substitutes(t *testing.T) {
	e := NewTemplateEngine()
	_, subject, body, err := e.Render("invoice-issued", map[string]string{
		"invoice_number": "INV123456001",
		"clinic_name":    "Arogya Clinic",
		"patient_name":   "Ravi Kumar",
		"total":          "INR 658.00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(subject, "INV123456001") {
		t.Errorf("subject missing invoice number: %q", subject)
	}
	if !strings.Contains(body, "Ravi Kumar") || !strings.Contains(body, "INR 658.00") {
		t.Errorf("body missing substitutions: %q", body)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := NewTemplateEngine()
	if _, _, _, err := e.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRender_LeavesMissingPlaceholders(t *testing.T) {
	e := NewTemplateEngine()
	_, _, body, err := e.Render("appointment-reminder", map[string]string{
		"patient_name": "Ravi Kumar",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, "{{doctor_name}}") {
		t.Errorf("expected unfilled placeholder to remain: %q", body)
	}
}

func TestSendTemplate_RoutesByChannel(t *testing.T) {
	wa := &MockSender{}
	sms := &MockSender{}
	d := newTestDispatcher(wa, sms)

	m, err := d.SendTemplate(context.Background(), "appointment-reminder", map[string]string{
		"patient_name": "Ravi",
		"doctor_name":  "Dr. Mehta",
		"date":         "2026-09-01",
		"time":         "10:30",
	}, "+919876543210")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Status != StatusSent {
		t.Errorf("expected sent, got %s", m.Status)
	}
	if len(sms.Calls()) != 1 {
		t.Fatalf("expected 1 SMS call, got %d", len(sms.Calls()))
	}
	if len(wa.Calls()) != 0 {
		t.Errorf("expected no WhatsApp calls, got %d", len(wa.Calls()))
	}
}

func TestSend_FailureRecorded(t *testing.T) {
	wa := &MockSender{ShouldFail: true, FailError: "gateway down"}
	d := newTestDispatcher(wa, &MockSender{})

	m, err := d.SendTemplate(context.Background(), "invoice-issued",
		map[string]string{"patient_name": "Ravi"}, "+919876543210")
	if err == nil {
		t.Fatal("expected send error")
	}
	if m.Status != StatusFailed {
		t.Errorf("expected failed, got %s", m.Status)
	}
	if m.Error == "" {
		t.Error("expected error text to be recorded")
	}
}

func TestRetry_OnlyFailed(t *testing.T) {
	wa := &MockSender{ShouldFail: true, FailError: "gateway down"}
	d := newTestDispatcher(wa, &MockSender{})

	m, _ := d.SendTemplate(context.Background(), "invoice-issued",
		map[string]string{"patient_name": "Ravi"}, "+919876543210")

	wa.ShouldFail = false
	if err := d.Retry(context.Background(), m.ID); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	got, err := d.Get(m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusSent {
		t.Errorf("expected sent after retry, got %s", got.Status)
	}

	// A sent message cannot be retried again.
	if err := d.Retry(context.Background(), m.ID); err == nil {
		t.Error("expected error retrying a sent message")
	}
}

func TestStats(t *testing.T) {
	wa := &MockSender{}
	d := newTestDispatcher(wa, &MockSender{})

	_, _ = d.SendTemplate(context.Background(), "invoice-issued",
		map[string]string{"patient_name": "A"}, "r1")
	_, _ = d.SendTemplate(context.Background(), "payment-received",
		map[string]string{"patient_name": "B"}, "r2")

	stats := d.Stats()
	if stats[StatusSent] != 2 {
		t.Errorf("expected 2 sent, got %d", stats[StatusSent])
	}
}
