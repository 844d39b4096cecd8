package appointment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mockRepo is a map-backed Repository with per-doctor fault injection.
type mockRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*Appointment
	doctors      map[uuid.UUID]*DoctorProfile
	doctorOrder  []uuid.UUID
	blocks       map[uuid.UUID][]ScheduleBlock
	listErr      map[uuid.UUID]error
	listDelay    map[uuid.UUID]time.Duration
	getDelay     time.Duration
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appointments: make(map[uuid.UUID]*Appointment),
		doctors:      make(map[uuid.UUID]*DoctorProfile),
		blocks:       make(map[uuid.UUID][]ScheduleBlock),
		listErr:      make(map[uuid.UUID]error),
		listDelay:    make(map[uuid.UUID]time.Duration),
	}
}

func (m *mockRepo) addDoctor(d DoctorProfile) DoctorProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.Approved = true
	m.doctors[d.ID] = &d
	m.doctorOrder = append(m.doctorOrder, d.ID)
	return d
}

func (m *mockRepo) addAppointment(a Appointment) *Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.appointments[a.ID] = &a
	return &a
}

func (m *mockRepo) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	delay := m.getDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) CreateAppointment(_ context.Context, a *Appointment) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.appointments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockRepo) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	m.mu.Lock()
	delay := m.listDelay[doctorID]
	err := m.listErr[doctorID]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Appointment
	for _, a := range m.appointments {
		if a.DoctorID != nil && *a.DoctorID == doctorID && a.Status != StatusCancelled {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockRepo) AssignDoctor(_ context.Context, id uuid.UUID, doctor DoctorProfile, now time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok || (a.Status != StatusPending && a.Status != StatusConfirmed) {
		return nil, ErrAppointmentNotFound
	}
	a.DoctorID = &doctor.ID
	a.DoctorName = &doctor.Name
	a.Specialization = &doctor.Specialization
	a.Status = StatusConfirmed
	a.UpdatedAt = now
	cp := *a
	return &cp, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status, now time.Time) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = now
	if to == StatusCancelled {
		t := now
		a.CancellationDate = &t
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepo) GetApprovedDoctors(_ context.Context, filter DoctorFilter) ([]DoctorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []DoctorProfile
	for _, id := range m.doctorOrder {
		d := m.doctors[id]
		if !d.Approved {
			continue
		}
		if filter.City != "" && d.City != filter.City {
			continue
		}
		if filter.Locality != "" && d.Locality != filter.Locality {
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockRepo) ListScheduleBlocks(_ context.Context, doctorID uuid.UUID) ([]ScheduleBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ScheduleBlock(nil), m.blocks[doctorID]...), nil
}

// memLocker serializes critical sections per key with in-process mutexes.
type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMemLocker() *memLocker {
	return &memLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *memLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}

// captureDispatcher records notifications for assertions.
type captureDispatcher struct {
	mu     sync.Mutex
	events []string
}

func (d *captureDispatcher) Notify(eventType string, _ map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, eventType)
}

func (d *captureDispatcher) captured() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func newTestService(repo *mockRepo) (*Service, *captureDispatcher) {
	dispatcher := &captureDispatcher{}
	evaluator := NewEvaluator(repo, 200*time.Millisecond)
	svc := NewService(repo, newMemLocker(), evaluator, dispatcher, zerolog.Nop(), 24*time.Hour, time.Second)
	return svc, dispatcher
}
