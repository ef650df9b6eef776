package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// LogSender writes messages to the log instead of delivering them. Used in
// development and as the default until a gateway is configured.
type LogSender struct {
	Channel Channel
	Logger  zerolog.Logger
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.Logger.Info().
		Str("channel", string(s.Channel)).
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("notification (log sender)")
	return nil
}

// SentCall records one delivery attempt made against a MockSender.
type SentCall struct {
	To      string
	Subject string
	Body    string
}

// MockSender is a test double that records calls and optionally fails.
type MockSender struct {
	mu         sync.Mutex
	calls      []SentCall
	ShouldFail bool
	FailError  string
}

func (m *MockSender) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SentCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of the recorded calls.
func (m *MockSender) Calls() []SentCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentCall, len(m.calls))
	copy(out, m.calls)
	return out
}
