package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/carewell/telehealth-scheduling/internal/notify"
	redisclient "github.com/carewell/telehealth-scheduling/internal/redis"
	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingAutoCompleted = "booking.auto_completed"
)

var (
	ErrDateBeingBooked = errors.New("date is currently being booked, please retry")
	// ErrSweepInFlight is returned when a sweep tick overlaps a running
	// sweep; the new tick is skipped, never run concurrently.
	ErrSweepInFlight = errors.New("sweep already in flight")
)

// DateAlreadyBookedError reports a creation attempt for a date another
// non-cancelled booking already holds.
type DateAlreadyBookedError struct {
	Date string
}

func (e *DateAlreadyBookedError) Error() string {
	return fmt.Sprintf("date %s already has an organization booking", e.Date)
}

// Guard enforces organization-booking date exclusivity at write time and
// auto-completes bookings whose day has passed.
type Guard struct {
	repo         Repository
	locker       redisclient.Locker
	notifier     notify.Dispatcher
	logger       zerolog.Logger
	storeTimeout time.Duration
	now          func() time.Time

	sweepMu sync.Mutex
}

func NewGuard(repo Repository, locker redisclient.Locker, notifier notify.Dispatcher, logger zerolog.Logger, storeTimeout time.Duration) *Guard {
	return &Guard{
		repo:         repo,
		locker:       locker,
		notifier:     notifier,
		logger:       logger,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// storeCtx bounds a repository call that runs outside the lock's TTL-bounded
// critical section.
func (g *Guard) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.storeTimeout)
}

// CreateRequest is an organization booking form submission.
type CreateRequest struct {
	OrganizationName string
	ContactName      string
	ContactEmail     string
	PreferredDate    string
}

// Create canonicalizes the preferred date and inserts the booking under the
// booking-date lock, so two concurrent submissions for the same day cannot
// both pass the exclusivity check.
func (g *Guard) Create(ctx context.Context, req CreateRequest) (*OrganizationBooking, error) {
	date, err := timefmt.NormalizeDate(req.PreferredDate)
	if err != nil {
		return nil, err
	}

	var created *OrganizationBooking

	err = g.locker.WithLock(ctx, redisclient.BookingDateLockKey(date), func(lockCtx context.Context) error {
		taken, err := g.dateTaken(lockCtx, date)
		if err != nil {
			return fmt.Errorf("check date exclusivity: %w", err)
		}
		if taken {
			return &DateAlreadyBookedError{Date: date}
		}

		b := &OrganizationBooking{
			ID:               uuid.New(),
			OrganizationName: req.OrganizationName,
			ContactName:      req.ContactName,
			ContactEmail:     req.ContactEmail,
			PreferredDate:    date,
			Status:           StatusPending,
		}

		created, err = g.repo.CreateBooking(lockCtx, b)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDateBeingBooked
		}
		return nil, err
	}

	g.notifier.Notify(EventBookingCreated, map[string]any{
		"booking_id":     created.ID.String(),
		"organization":   created.OrganizationName,
		"preferred_date": created.PreferredDate,
	})

	return created, nil
}

// dateTaken reports whether any non-cancelled booking's effective date
// matches the canonical date. Completed bookings still hold their date, so
// only cancellation frees it. Stored dates may predate the normalizer, so
// each is re-normalized and unparseable ones are skipped.
func (g *Guard) dateTaken(ctx context.Context, date string) (bool, error) {
	existing, err := g.repo.ListNonCancelled(ctx)
	if err != nil {
		return false, err
	}

	for _, b := range existing {
		raw, _ := b.EffectiveDate()
		canonical, err := timefmt.NormalizeDate(raw)
		if err != nil {
			continue
		}
		if canonical == date {
			return true, nil
		}
	}
	return false, nil
}

// GetBooking returns a booking by id.
func (g *Guard) GetBooking(ctx context.Context, id uuid.UUID) (*OrganizationBooking, error) {
	ctx, cancel := g.storeCtx(ctx)
	defer cancel()
	return g.repo.GetBookingByID(ctx, id)
}

// Cancel releases the booking's date. Cancelled bookings are kept, never
// deleted.
func (g *Guard) Cancel(ctx context.Context, id uuid.UUID) (*OrganizationBooking, error) {
	ctx, cancel := g.storeCtx(ctx)
	defer cancel()

	b, err := g.repo.GetBookingByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.Active() {
		return nil, fmt.Errorf("booking %s is already %s", id, b.Status)
	}

	updated, err := g.repo.UpdateStatus(ctx, id, b.Status, StatusCancelled, g.now())
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	g.notifier.Notify(EventBookingCancelled, map[string]any{
		"booking_id":   updated.ID.String(),
		"organization": updated.OrganizationName,
	})

	return updated, nil
}

// Sweep auto-completes every active booking whose effective date lies
// strictly before today. One booking's failure is logged and skipped, never
// aborting the rest. A sweep overlapping a running sweep returns
// ErrSweepInFlight without doing any work.
func (g *Guard) Sweep(ctx context.Context) (int, error) {
	if !g.sweepMu.TryLock() {
		return 0, ErrSweepInFlight
	}
	defer g.sweepMu.Unlock()

	listCtx, cancelList := g.storeCtx(ctx)
	active, err := g.repo.ListActive(listCtx)
	cancelList()
	if err != nil {
		return 0, fmt.Errorf("list active bookings: %w", err)
	}

	now := g.now()
	completed := 0

	for _, b := range active {
		raw, reason := b.EffectiveDate()

		canonical, err := timefmt.NormalizeDate(raw)
		if err != nil {
			g.logger.Warn().
				Stringer("booking_id", b.ID).
				Str("date", raw).
				Msg("sweep: unparseable booking date, skipping")
			continue
		}

		past, err := timefmt.BeforeDay(canonical, now)
		if err != nil || !past {
			continue
		}

		markCtx, cancelMark := g.storeCtx(ctx)
		updated, err := g.repo.MarkAutoCompleted(markCtx, b.ID, reason, canonical, now)
		cancelMark()
		if err != nil {
			if errors.Is(err, ErrBookingNotFound) {
				// Raced with an explicit completion or cancellation.
				continue
			}
			g.logger.Error().Err(err).
				Stringer("booking_id", b.ID).
				Msg("sweep: auto-complete failed")
			continue
		}

		completed++
		g.notifier.Notify(EventBookingAutoCompleted, map[string]any{
			"booking_id":   updated.ID.String(),
			"organization": updated.OrganizationName,
			"reason":       reason,
			"date":         canonical,
		})
	}

	return completed, nil
}
