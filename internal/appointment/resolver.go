package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Resolve assigns a specific doctor to an appointment. The availability
// check and the write happen together under the slot lock, so two
// concurrent resolutions for the same doctor and slot cannot both succeed.
func (s *Service) Resolve(ctx context.Context, appointmentID, doctorID uuid.UUID) (*Appointment, error) {
	loadCtx, cancelLoad := s.storeCtx(ctx)
	defer cancelLoad()

	a, err := s.repo.GetAppointmentByID(loadCtx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.Status.Terminal() {
		return nil, &InvalidTransitionError{From: a.Status, To: StatusConfirmed}
	}
	if a.DoctorID != nil && *a.DoctorID == doctorID {
		return nil, ErrAlreadyAssigned
	}

	doctor, err := s.repo.GetDoctorByID(loadCtx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	return s.lockedAssign(ctx, a, *doctor)
}

// ResolveBest picks the best available doctor for an appointment, ranked by
// the patient's locality. Candidates are tried in rank order; a candidate
// that turns out to be taken at commit time is skipped rather than failing
// the whole resolution.
func (s *Service) ResolveBest(ctx context.Context, appointmentID uuid.UUID, patientCity, patientLocality string) (*Appointment, error) {
	loadCtx, cancelLoad := s.storeCtx(ctx)
	a, err := s.repo.GetAppointmentByID(loadCtx, appointmentID)
	if err != nil {
		cancelLoad()
		return nil, err
	}
	if a.Status.Terminal() {
		cancelLoad()
		return nil, &InvalidTransitionError{From: a.Status, To: StatusConfirmed}
	}

	candidates, err := s.repo.GetApprovedDoctors(loadCtx, DoctorFilter{})
	cancelLoad()
	if err != nil {
		return nil, fmt.Errorf("load doctor directory: %w", err)
	}

	ranked := RankDoctors(candidates, patientCity, patientLocality)

	for _, doctor := range ranked {
		assigned, err := s.lockedAssign(ctx, a, doctor)
		if err == nil {
			return assigned, nil
		}

		var conflict *ConflictError
		if errors.As(err, &conflict) || errors.Is(err, ErrSlotBeingAssigned) {
			s.logger.Debug().
				Stringer("doctor_id", doctor.ID).
				Str("date", a.Date).
				Str("time", a.Time).
				Err(err).
				Msg("candidate unavailable, trying next")
			continue
		}
		return nil, err
	}

	return nil, ErrNoDoctorAvailable
}

// RankDoctors orders candidates for assignment: exact city-and-locality
// match first, exact city match second, everyone else after, preserving
// input order within each band. The ordering is deterministic for a given
// input.
func RankDoctors(candidates []DoctorProfile, patientCity, patientLocality string) []DoctorProfile {
	ranked := make([]DoctorProfile, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return localityRank(ranked[i], patientCity, patientLocality) < localityRank(ranked[j], patientCity, patientLocality)
	})

	return ranked
}

func localityRank(d DoctorProfile, city, locality string) int {
	switch {
	case d.City == city && d.Locality == locality:
		return 0
	case d.City == city:
		return 1
	default:
		return 2
	}
}
