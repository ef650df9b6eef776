package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
)

type mockRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, clinicerr.NotFound("appointment")
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return clinicerr.NotFound("appointment")
	}
	if a.Status != from {
		return clinicerr.Conflictf("appointment is no longer %s", from)
	}
	a.Status = to
	return nil
}

func (m *mockRepo) HasOverlap(_ context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	probe := &Appointment{DoctorID: doctorID, ScheduledAt: start, DurationMinutes: int(end.Sub(start) / time.Minute)}
	for _, a := range m.appointments {
		if a.Status == StatusBooked && a.Overlaps(probe) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, day time.Time, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appointments {
		if a.DoctorID == doctorID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Appointment
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func newTestService() *Service {
	svc := NewService(newMockRepo(), zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validBooking() BookInput {
	return BookInput{
		PatientID:   uuid.New(),
		DoctorID:    uuid.New(),
		ScheduledAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBook_HappyPath(t *testing.T) {
	svc := newTestService()
	a, err := svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AppointmentID[:3] != "APT" {
		t.Errorf("expected APT prefix, got %q", a.AppointmentID)
	}
	if a.Status != StatusBooked {
		t.Errorf("expected booked, got %s", a.Status)
	}
	if a.DurationMinutes != DefaultDurationMinutes {
		t.Errorf("expected default duration, got %d", a.DurationMinutes)
	}
}

func TestBook_Validation(t *testing.T) {
	svc := newTestService()

	in := validBooking()
	in.PatientID = uuid.Nil
	if _, err := svc.Book(context.Background(), in); !clinicerr.IsKind(err, clinicerr.KindValidation) {
		t.Errorf("expected validation error without patient, got %v", err)
	}

	in = validBooking()
	in.ScheduledAt = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	if _, err := svc.Book(context.Background(), in); !clinicerr.IsKind(err, clinicerr.KindValidation) {
		t.Errorf("expected validation error for past slot, got %v", err)
	}

	in = validBooking()
	in.DurationMinutes = 300
	if _, err := svc.Book(context.Background(), in); !clinicerr.IsKind(err, clinicerr.KindValidation) {
		t.Errorf("expected validation error for absurd duration, got %v", err)
	}
}

func TestBook_DoubleBookingConflict(t *testing.T) {
	svc := newTestService()
	first := validBooking()
	if _, err := svc.Book(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same doctor, overlapping slot.
	second := validBooking()
	second.DoctorID = first.DoctorID
	second.ScheduledAt = first.ScheduledAt.Add(5 * time.Minute)
	if _, err := svc.Book(context.Background(), second); !clinicerr.IsKind(err, clinicerr.KindConflict) {
		t.Fatalf("expected conflict for overlapping slot, got %v", err)
	}

	// Same slot, different doctor is fine.
	third := validBooking()
	third.ScheduledAt = first.ScheduledAt
	if _, err := svc.Book(context.Background(), third); err != nil {
		t.Errorf("different doctor should book freely: %v", err)
	}

	// Same doctor, back-to-back slot does not overlap.
	fourth := validBooking()
	fourth.DoctorID = first.DoctorID
	fourth.ScheduledAt = first.ScheduledAt.Add(DefaultDurationMinutes * time.Minute)
	if _, err := svc.Book(context.Background(), fourth); err != nil {
		t.Errorf("adjacent slot should book freely: %v", err)
	}
}

func TestCancel_FreesSlot(t *testing.T) {
	svc := newTestService()
	in := validBooking()
	a, _ := svc.Book(context.Background(), in)

	if _, err := svc.Cancel(context.Background(), a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The slot is bookable again.
	rebook := validBooking()
	rebook.DoctorID = in.DoctorID
	rebook.ScheduledAt = in.ScheduledAt
	if _, err := svc.Book(context.Background(), rebook); err != nil {
		t.Errorf("cancelled slot should be bookable: %v", err)
	}
}

func TestCancel_OnlyBooked(t *testing.T) {
	svc := newTestService()
	a, _ := svc.Book(context.Background(), validBooking())
	_, _ = svc.Complete(context.Background(), a.ID)

	if _, err := svc.Cancel(context.Background(), a.ID); !clinicerr.IsKind(err, clinicerr.KindConflict) {
		t.Errorf("expected conflict cancelling a completed appointment, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	doctor := uuid.New()
	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	a := &Appointment{DoctorID: doctor, ScheduledAt: base, DurationMinutes: 15}

	cases := []struct {
		name  string
		other *Appointment
		want  bool
	}{
		{"same slot", &Appointment{DoctorID: doctor, ScheduledAt: base, DurationMinutes: 15}, true},
		{"overlapping tail", &Appointment{DoctorID: doctor, ScheduledAt: base.Add(10 * time.Minute), DurationMinutes: 15}, true},
		{"adjacent after", &Appointment{DoctorID: doctor, ScheduledAt: base.Add(15 * time.Minute), DurationMinutes: 15}, false},
		{"adjacent before", &Appointment{DoctorID: doctor, ScheduledAt: base.Add(-15 * time.Minute), DurationMinutes: 15}, false},
		{"other doctor", &Appointment{DoctorID: uuid.New(), ScheduledAt: base, DurationMinutes: 15}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Overlaps(tc.other); got != tc.want {
				t.Errorf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}
