package appointment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrAlreadyAssigned     = errors.New("appointment already has this doctor assigned")
	ErrNoDoctorAvailable   = errors.New("no doctor available for the requested slot")
	ErrSlotBeingAssigned   = errors.New("slot is currently being assigned, please retry")
)

// ConflictError reports a slot that is unavailable at commit time. The
// caller is expected to re-query candidates and offer alternatives.
type ConflictError struct {
	DoctorID uuid.UUID
	Date     string
	Time     string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("doctor %s unavailable at %s %s: %s", e.DoctorID, e.Date, e.Time, e.Reason)
}

// InvalidTransitionError reports an attempt to move an appointment out of a
// state that does not permit it.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// TooLateToCancelError reports a patient cancellation attempt inside the
// 24-hour window before the slot.
type TooLateToCancelError struct {
	HoursRemaining float64
}

func (e *TooLateToCancelError) Error() string {
	return fmt.Sprintf("too late to cancel: %.1f hours remain before the appointment", e.HoursRemaining)
}
