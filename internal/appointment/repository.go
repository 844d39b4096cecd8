package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository contains all store interactions needed by the scheduling
// service. Writes must be atomic single-row patches; status updates are
// compare-and-set so a concurrent transition cannot be overwritten blindly.
type Repository interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error)

	// ListActiveByDoctor returns the doctor's non-cancelled appointments,
	// the input to every availability check.
	ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)

	// AssignDoctor atomically writes the doctor triple and moves the
	// appointment to confirmed. Reassignment overwrites all three fields.
	AssignDoctor(ctx context.Context, id uuid.UUID, doctor DoctorProfile, now time.Time) (*Appointment, error)

	// UpdateStatus performs a guarded transition; it returns
	// ErrAppointmentNotFound when no row holds the expected from-status.
	// Transitions to cancelled stamp the cancellation date.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, now time.Time) (*Appointment, error)

	// Doctor directory.
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*DoctorProfile, error)
	GetApprovedDoctors(ctx context.Context, filter DoctorFilter) ([]DoctorProfile, error)
	ListScheduleBlocks(ctx context.Context, doctorID uuid.UUID) ([]ScheduleBlock, error)
}
