// Package booking holds organization (group) bookings: one organization
// reserves one calendar day. Bookings are never hard-deleted; removal is a
// transition to cancelled.
package booking

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Active reports whether the booking still occupies its date.
func (s Status) Active() bool {
	return s != StatusCompleted && s != StatusCancelled
}

// ScheduledDateUnset is the sentinel some admin tooling writes instead of
// leaving the scheduled date empty. Treated the same as absent.
const ScheduledDateUnset = "N/A"

// Reasons stamped by the sweep when a booking's date passes without an
// explicit completion.
const (
	ReasonScheduledDateExceeded = "Scheduled date exceeded"
	ReasonPreferredDateExceeded = "Preferred date exceeded"
)

type OrganizationBooking struct {
	ID               uuid.UUID
	OrganizationName string
	ContactName      string
	ContactEmail     string
	// PreferredDate is the organization's requested day; ScheduledDate is an
	// admin-set override. Both tolerate DD/MM/YYYY and YYYY-MM-DD input.
	PreferredDate string
	ScheduledDate string
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Stamped only by the sweep, never by a user action.
	AutoCompletedAt     *time.Time
	AutoCompletedReason string
	AutoCompletedDate   string
}

// EffectiveDate is the date the booking occupies: the scheduled override
// when present, otherwise the preferred date. The second return names which
// field won, for the sweep's auto-completion reason.
func (b *OrganizationBooking) EffectiveDate() (string, string) {
	if b.ScheduledDate != "" && b.ScheduledDate != ScheduledDateUnset {
		return b.ScheduledDate, ReasonScheduledDateExceeded
	}
	return b.PreferredDate, ReasonPreferredDateExceeded
}
