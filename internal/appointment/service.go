package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carewell/telehealth-scheduling/internal/notify"
	redisclient "github.com/carewell/telehealth-scheduling/internal/redis"
	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

// Notification event types emitted by the service.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentAssigned  = "appointment.assigned"
	EventAppointmentConfirmed = "appointment.confirmed"
	EventAppointmentCompleted = "appointment.completed"
	EventAppointmentCancelled = "appointment.cancelled"
)

type Service struct {
	repo         Repository
	locker       redisclient.Locker
	evaluator    *Evaluator
	notifier     notify.Dispatcher
	logger       zerolog.Logger
	cancelWindow time.Duration
	storeTimeout time.Duration
	now          func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, evaluator *Evaluator, notifier notify.Dispatcher, logger zerolog.Logger, cancelWindow, storeTimeout time.Duration) *Service {
	return &Service{
		repo:         repo,
		locker:       locker,
		evaluator:    evaluator,
		notifier:     notifier,
		logger:       logger,
		cancelWindow: cancelWindow,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// storeCtx bounds a repository call that runs outside the evaluator's
// per-doctor budget and outside the lock's TTL-bounded critical section.
func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storeTimeout)
}

// CreateRequest is a patient booking request before canonicalization.
type CreateRequest struct {
	PatientID    uuid.UUID
	PatientName  string
	PatientEmail string
	Mode         ConsultationMode
	Date         string
	Time         string
	// DoctorID preselects a doctor. The appointment still starts pending;
	// confirmation happens through Resolve or an explicit confirm action.
	DoctorID *uuid.UUID
}

// CreateAppointment canonicalizes the request and stores a pending
// appointment.
func (s *Service) CreateAppointment(ctx context.Context, req CreateRequest) (*Appointment, error) {
	date, err := timefmt.NormalizeDate(req.Date)
	if err != nil {
		return nil, err
	}
	timeOfDay, err := timefmt.NormalizeTime(req.Time)
	if err != nil {
		return nil, err
	}
	if !ValidMode(req.Mode) {
		return nil, fmt.Errorf("%w: unknown consultation mode %q", ErrInvalidRequest, req.Mode)
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	a := &Appointment{
		ID:               uuid.New(),
		PatientID:        req.PatientID,
		PatientName:      req.PatientName,
		PatientEmail:     req.PatientEmail,
		ConsultationMode: req.Mode,
		Date:             date,
		Time:             timeOfDay,
		Status:           StatusPending,
	}

	if req.DoctorID != nil {
		doctor, err := s.repo.GetDoctorByID(ctx, *req.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("load doctor: %w", err)
		}
		a.DoctorID = &doctor.ID
		a.DoctorName = &doctor.Name
		a.Specialization = &doctor.Specialization
	}

	created, err := s.repo.CreateAppointment(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.notifier.Notify(EventAppointmentCreated, map[string]any{
		"appointment_id": created.ID.String(),
		"patient_email":  created.PatientEmail,
		"date":           created.Date,
		"time":           created.Time,
	})

	return created, nil
}

// GetAppointment returns the stored appointment together with its effective
// status (stored status adjusted for wall-clock time). Callers choose which
// of the two to present.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, Status, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return a, EffectiveStatus(a, s.now()), nil
}

// Availability evaluates the candidate doctor pool for an appointment's
// slot. Date, time and mode default to the appointment's own values; the
// filter narrows the candidate pool by city or locality.
func (s *Service) Availability(ctx context.Context, id uuid.UUID, date, timeOfDay string, mode ConsultationMode, filter DoctorFilter) ([]AvailabilitySnapshot, error) {
	loadCtx, cancelLoad := s.storeCtx(ctx)
	a, err := s.repo.GetAppointmentByID(loadCtx, id)
	cancelLoad()
	if err != nil {
		return nil, err
	}

	if date == "" {
		date = a.Date
	}
	if timeOfDay == "" {
		timeOfDay = a.Time
	}
	if mode == "" {
		mode = a.ConsultationMode
	}

	dirCtx, cancelDir := s.storeCtx(ctx)
	candidates, err := s.repo.GetApprovedDoctors(dirCtx, filter)
	cancelDir()
	if err != nil {
		return nil, fmt.Errorf("load doctor directory: %w", err)
	}

	return s.evaluator.Evaluate(ctx, date, timeOfDay, mode, candidates)
}

// Confirm moves a pending appointment to confirmed without changing its
// doctor assignment.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusConfirmed, EventAppointmentConfirmed)
}

// Complete explicitly marks a confirmed appointment completed, persisting
// what the effective-status derivation may already be presenting.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.transition(ctx, id, StatusCompleted, EventAppointmentCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, event string) (*Appointment, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, to) {
		return nil, &InvalidTransitionError{From: a.Status, To: to}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, a.Status, to, s.now())
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.notifier.Notify(event, map[string]any{
		"appointment_id": updated.ID.String(),
		"patient_email":  updated.PatientEmail,
	})

	return updated, nil
}

// Cancel moves an appointment to cancelled. Patients are bound by the
// cancellation window; doctors and admins are exempt.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actor Actor) (*Appointment, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	a, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, StatusCancelled) {
		return nil, &InvalidTransitionError{From: a.Status, To: StatusCancelled}
	}

	if actor == ActorPatient {
		remaining, ok, err := CancellationDeadline(a, s.now(), s.cancelWindow)
		if err != nil {
			return nil, fmt.Errorf("cancellation deadline: %w", err)
		}
		if !ok {
			return nil, &TooLateToCancelError{HoursRemaining: remaining.Hours()}
		}
	}

	updated, err := s.repo.UpdateStatus(ctx, id, a.Status, StatusCancelled, s.now())
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.notifier.Notify(EventAppointmentCancelled, map[string]any{
		"appointment_id": updated.ID.String(),
		"patient_email":  updated.PatientEmail,
		"actor":          string(actor),
	})

	return updated, nil
}

// lockedAssign runs the commit-time re-validation and the assignment write
// under the slot lock for the target doctor.
func (s *Service) lockedAssign(ctx context.Context, a *Appointment, doctor DoctorProfile) (*Appointment, error) {
	var assigned *Appointment

	key := redisclient.SlotLockKey(doctor.ID, a.Date, a.Time)
	err := s.locker.WithLock(ctx, key, func(lockCtx context.Context) error {
		// Never trust a snapshot computed earlier in the flow; re-check
		// inside the critical section.
		snap, err := s.evaluator.EvaluateDoctor(lockCtx, doctor, a.Date, a.Time, a.ConsultationMode)
		if err != nil {
			return fmt.Errorf("commit-time evaluation: %w", err)
		}
		if !snap.IsAvailable {
			return &ConflictError{
				DoctorID: doctor.ID,
				Date:     a.Date,
				Time:     a.Time,
				Reason:   snap.ConflictReason,
			}
		}

		updated, err := s.repo.AssignDoctor(lockCtx, a.ID, doctor, s.now())
		if err != nil {
			return fmt.Errorf("assign doctor: %w", err)
		}
		assigned = updated
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingAssigned
		}
		return nil, err
	}

	s.notifier.Notify(EventAppointmentAssigned, map[string]any{
		"appointment_id": assigned.ID.String(),
		"doctor_id":      doctor.ID.String(),
		"doctor_name":    doctor.Name,
		"patient_email":  assigned.PatientEmail,
		"date":           assigned.Date,
		"time":           assigned.Time,
	})

	return assigned, nil
}
