package appointment

import (
	"time"

	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

// allowedTransitions is the appointment state machine. Completed and
// cancelled are terminal.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

// CanTransition reports whether from -> to is a legal explicit transition.
func CanTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

// EffectiveStatus derives the status an appointment presents once wall-clock
// time is accounted for: a pending or confirmed appointment whose slot has
// passed reads as completed. The stored status is untouched; persisting the
// change requires an explicit complete action. An unparseable slot falls
// back to the stored status.
func EffectiveStatus(a *Appointment, now time.Time) Status {
	if a.Status != StatusPending && a.Status != StatusConfirmed {
		return a.Status
	}
	slot, err := timefmt.Combine(a.Date, a.Time)
	if err != nil {
		return a.Status
	}
	if now.After(slot) {
		return StatusCompleted
	}
	return a.Status
}

// CancellationDeadline checks the patient cancellation rule: the slot must
// be at least window away. It returns the remaining duration and whether
// cancellation is still permitted; the boundary at exactly window is
// permitted.
func CancellationDeadline(a *Appointment, now time.Time, window time.Duration) (time.Duration, bool, error) {
	slot, err := timefmt.Combine(a.Date, a.Time)
	if err != nil {
		return 0, false, err
	}
	remaining := slot.Sub(now)
	return remaining, remaining >= window, nil
}
