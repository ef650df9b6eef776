package consultation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
)

type mockRepo struct {
	mu            sync.Mutex
	consultations map[uuid.UUID]*Consultation
}

func newMockRepo() *mockRepo {
	return &mockRepo{consultations: make(map[uuid.UUID]*Consultation)}
}

func (m *mockRepo) Create(_ context.Context, c *Consultation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	cp := *c
	m.consultations[c.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Consultation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consultations[id]
	if !ok {
		return nil, clinicerr.NotFound("consultation")
	}
	cp := *c
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, c *Consultation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.consultations[c.ID]
	if !ok {
		return clinicerr.NotFound("consultation")
	}
	stored.Symptoms = c.Symptoms
	stored.Diagnosis = c.Diagnosis
	stored.Prescription = c.Prescription
	stored.Notes = c.Notes
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consultations[id]
	if !ok {
		return clinicerr.NotFound("consultation")
	}
	if c.Status != from {
		return clinicerr.Conflictf("consultation is no longer %s", from)
	}
	c.Status = to
	now := time.Now()
	switch to {
	case StatusInProgress:
		c.StartedAt = &now
	case StatusCompleted:
		c.CompletedAt = &now
	}
	return nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, status Status, limit, offset int) ([]*Consultation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Consultation
	for _, c := range m.consultations {
		if c.DoctorID == doctorID && (status == "" || c.Status == status) {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Consultation, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Consultation
	for _, c := range m.consultations {
		if c.PatientID == patientID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func adminCtx() context.Context {
	ctx := context.WithValue(context.Background(), auth.RoleKey, auth.RoleAdmin)
	return context.WithValue(ctx, auth.StaffIDKey, "admin-1")
}

func doctorCtx(doctorID uuid.UUID) context.Context {
	ctx := context.WithValue(context.Background(), auth.RoleKey, auth.RoleDoctor)
	return context.WithValue(ctx, auth.StaffIDKey, doctorID.String())
}

func strPtr(s string) *string { return &s }

func newScheduled(t *testing.T, svc *Service) *Consultation {
	t.Helper()
	c, err := svc.Create(adminCtx(), CreateInput{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Symptoms:  strPtr("fever"),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return c
}

func TestCreate_AssignsDisplayID(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)
	if c.ConsultationID[:3] != "CON" {
		t.Errorf("expected CON prefix, got %q", c.ConsultationID)
	}
	if c.Status != StatusScheduled {
		t.Errorf("expected scheduled, got %s", c.Status)
	}
}

func TestCreate_RequiresPatientAndDoctor(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	if _, err := svc.Create(adminCtx(), CreateInput{DoctorID: uuid.New()}); !clinicerr.IsKind(err, clinicerr.KindValidation) {
		t.Errorf("expected validation error without patient, got %v", err)
	}
	if _, err := svc.Create(adminCtx(), CreateInput{PatientID: uuid.New()}); !clinicerr.IsKind(err, clinicerr.KindValidation) {
		t.Errorf("expected validation error without doctor, got %v", err)
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)

	c, err := svc.Start(adminCtx(), c.ID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if c.Status != StatusInProgress || c.StartedAt == nil {
		t.Fatalf("expected in-progress with started_at, got %+v", c)
	}

	c, err = svc.Complete(adminCtx(), c.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if c.Status != StatusCompleted || c.CompletedAt == nil {
		t.Fatalf("expected completed with completed_at, got %+v", c)
	}
}

func TestLifecycle_NoSkippingSteps(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)

	if _, err := svc.Complete(adminCtx(), c.ID); !clinicerr.IsKind(err, clinicerr.KindConflict) {
		t.Errorf("expected conflict completing a scheduled visit, got %v", err)
	}
}

func TestLifecycle_CompletedIsTerminal(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)
	_, _ = svc.Start(adminCtx(), c.ID)
	_, _ = svc.Complete(adminCtx(), c.ID)

	if _, err := svc.Start(adminCtx(), c.ID); !clinicerr.IsKind(err, clinicerr.KindConflict) {
		t.Errorf("expected conflict restarting a completed visit, got %v", err)
	}
}

func TestUpdateNotes_OnlyInProgress(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)

	notes := NotesInput{Diagnosis: strPtr("viral fever")}
	if _, err := svc.UpdateNotes(adminCtx(), c.ID, notes); !clinicerr.IsKind(err, clinicerr.KindConflict) {
		t.Fatalf("expected conflict editing scheduled visit, got %v", err)
	}

	_, _ = svc.Start(adminCtx(), c.ID)
	updated, err := svc.UpdateNotes(adminCtx(), c.ID, notes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Diagnosis == nil || *updated.Diagnosis != "viral fever" {
		t.Errorf("diagnosis not recorded: %+v", updated)
	}

	_, _ = svc.Complete(adminCtx(), c.ID)
	if _, err := svc.UpdateNotes(adminCtx(), c.ID, notes); !clinicerr.IsKind(err, clinicerr.KindConflict) {
		t.Errorf("expected conflict editing completed visit, got %v", err)
	}
}

func TestDoctor_CannotTouchOthersConsultation(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)

	otherDoctor := doctorCtx(uuid.New())
	if _, err := svc.Start(otherDoctor, c.ID); !clinicerr.IsKind(err, clinicerr.KindPermission) {
		t.Errorf("expected permission error for unassigned doctor, got %v", err)
	}

	assigned := doctorCtx(c.DoctorID)
	if _, err := svc.Start(assigned, c.ID); err != nil {
		t.Errorf("assigned doctor should start the visit: %v", err)
	}
}

func TestConcurrentStart_OneWinner(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	c := newScheduled(t, svc)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Start(adminCtx(), c.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
		} else if !clinicerr.IsKind(err, clinicerr.KindConflict) {
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusScheduled, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusScheduled, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
