package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

// Conflict reasons surfaced to callers. These are display strings, part of
// the API contract.
const (
	ReasonAlreadyBooked       = "Already booked at this time"
	ReasonOutsideWorkingHours = "Outside working hours"
	ReasonDataUnavailable     = "Doctor data unavailable"
	ReasonEvaluationTimeout   = "Availability check timed out"
)

// ErrInvalidRequest wraps a date or time the normalizer rejected; the whole
// evaluation fails rather than guessing.
var ErrInvalidRequest = errors.New("invalid availability request")

// Evaluator computes per-doctor availability for one slot. It is a pure
// query: read-only, no caching, safe under unlimited concurrency. Its
// results are inherently racy and must never back a commit decision; the
// resolver re-evaluates under the slot lock.
type Evaluator struct {
	repo        Repository
	evalTimeout time.Duration
}

func NewEvaluator(repo Repository, evalTimeout time.Duration) *Evaluator {
	return &Evaluator{
		repo:        repo,
		evalTimeout: evalTimeout,
	}
}

// Evaluate canonicalizes the requested slot and reports one snapshot per
// candidate, in input order. A doctor whose records cannot be read or whose
// check times out is degraded to unavailable instead of failing the batch.
func (e *Evaluator) Evaluate(ctx context.Context, date, timeOfDay string, mode ConsultationMode, candidates []DoctorProfile) ([]AvailabilitySnapshot, error) {
	canonDate, err := timefmt.NormalizeDate(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	canonTime, err := timefmt.NormalizeTime(timeOfDay)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("%w: unknown consultation mode %q", ErrInvalidRequest, mode)
	}

	slotDay, err := timefmt.Combine(canonDate, canonTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	weekday := slotDay.Weekday()

	snapshots := make([]AvailabilitySnapshot, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, doctor := range candidates {
		g.Go(func() error {
			snapshots[i] = e.evaluateOne(gctx, doctor, canonDate, canonTime, weekday)
			return nil
		})
	}
	// Workers never return errors; degraded doctors carry their reason.
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// EvaluateDoctor checks a single doctor for the slot. Used by the resolver
// for the commit-time re-validation.
func (e *Evaluator) EvaluateDoctor(ctx context.Context, doctor DoctorProfile, date, timeOfDay string, mode ConsultationMode) (AvailabilitySnapshot, error) {
	out, err := e.Evaluate(ctx, date, timeOfDay, mode, []DoctorProfile{doctor})
	if err != nil {
		return AvailabilitySnapshot{}, err
	}
	return out[0], nil
}

func (e *Evaluator) evaluateOne(ctx context.Context, doctor DoctorProfile, date, timeOfDay string, weekday time.Weekday) AvailabilitySnapshot {
	snap := AvailabilitySnapshot{
		DoctorID: doctor.ID,
		Doctor:   doctor,
	}

	checkCtx, cancel := context.WithTimeout(ctx, e.evalTimeout)
	defer cancel()

	existing, err := e.repo.ListActiveByDoctor(checkCtx, doctor.ID)
	if err != nil {
		snap.ConflictReason = degradeReason(err)
		return snap
	}

	// Slot exclusivity is mode-blind: a doctor holding this date and time in
	// any consultation mode cannot take another patient.
	for _, a := range existing {
		if a.Date == date && a.Time == timeOfDay {
			snap.ConflictReason = ReasonAlreadyBooked
			return snap
		}
	}

	blocks, err := e.repo.ListScheduleBlocks(checkCtx, doctor.ID)
	if err != nil {
		snap.ConflictReason = degradeReason(err)
		return snap
	}
	for _, b := range blocks {
		if b.Covers(date, weekday, timeOfDay) {
			snap.ConflictReason = ReasonOutsideWorkingHours
			return snap
		}
	}

	snap.IsAvailable = true
	return snap
}

func degradeReason(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonEvaluationTimeout
	}
	return ReasonDataUnavailable
}
