package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrBookingNotFound = errors.New("organization booking not found")

// Repository contains the store interactions needed by the exclusivity
// guard.
type Repository interface {
	GetBookingByID(ctx context.Context, id uuid.UUID) (*OrganizationBooking, error)
	CreateBooking(ctx context.Context, b *OrganizationBooking) (*OrganizationBooking, error)

	// ListActive returns every booking not in a terminal status, the sweep's
	// working set.
	ListActive(ctx context.Context) ([]OrganizationBooking, error)

	// ListNonCancelled returns every booking except cancelled ones. Completed
	// bookings still occupy their date, so the exclusivity check scans these,
	// not just the active set.
	ListNonCancelled(ctx context.Context) ([]OrganizationBooking, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, now time.Time) (*OrganizationBooking, error)

	// MarkAutoCompleted transitions the booking to completed and stamps the
	// auto-completion fields in one write.
	MarkAutoCompleted(ctx context.Context, id uuid.UUID, reason, date string, now time.Time) (*OrganizationBooking, error)
}
