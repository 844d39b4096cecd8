package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

func TestEvaluateConflictAcrossFormatsAndModes(t *testing.T) {
	repo := newMockRepo()
	doctor := repo.addDoctor(DoctorProfile{Name: "Dr. Rao", City: "Chennai", Locality: "Adyar"})

	// Existing clinic appointment at the canonical slot.
	repo.addAppointment(Appointment{
		PatientID:        uuid.New(),
		DoctorID:         &doctor.ID,
		ConsultationMode: ModeClinic,
		Date:             "2025-03-10",
		Time:             "14:00",
		Status:           StatusConfirmed,
	})

	evaluator := NewEvaluator(repo, time.Second)

	// Same slot requested in 12-hour form and a different mode must still
	// conflict: slot exclusivity is mode-blind.
	snaps, err := evaluator.Evaluate(context.Background(), "2025-03-10", "2:00 PM", ModeVirtual, []DoctorProfile{doctor})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.False(t, snaps[0].IsAvailable)
	assert.Equal(t, ReasonAlreadyBooked, snaps[0].ConflictReason)
}

func TestEvaluateIgnoresCancelledAppointments(t *testing.T) {
	repo := newMockRepo()
	doctor := repo.addDoctor(DoctorProfile{Name: "Dr. Rao"})
	repo.addAppointment(Appointment{
		DoctorID:         &doctor.ID,
		ConsultationMode: ModeClinic,
		Date:             "2025-03-10",
		Time:             "14:00",
		Status:           StatusCancelled,
	})

	evaluator := NewEvaluator(repo, time.Second)
	snaps, err := evaluator.Evaluate(context.Background(), "2025-03-10", "14:00", ModeClinic, []DoctorProfile{doctor})
	require.NoError(t, err)
	assert.True(t, snaps[0].IsAvailable)
	assert.Empty(t, snaps[0].ConflictReason)
}

func TestEvaluateScheduleBlock(t *testing.T) {
	repo := newMockRepo()
	doctor := repo.addDoctor(DoctorProfile{Name: "Dr. Iyer"})

	// 2025-03-10 is a Monday.
	monday := time.Monday
	repo.blocks[doctor.ID] = []ScheduleBlock{
		{DoctorID: doctor.ID, Weekday: &monday, StartTime: "13:00", EndTime: "14:00"},
	}

	evaluator := NewEvaluator(repo, time.Second)

	blocked, err := evaluator.Evaluate(context.Background(), "2025-03-10", "13:30", ModeClinic, []DoctorProfile{doctor})
	require.NoError(t, err)
	assert.False(t, blocked[0].IsAvailable)
	assert.Equal(t, ReasonOutsideWorkingHours, blocked[0].ConflictReason)

	// End of the block is exclusive.
	open, err := evaluator.Evaluate(context.Background(), "2025-03-10", "14:00", ModeClinic, []DoctorProfile{doctor})
	require.NoError(t, err)
	assert.True(t, open[0].IsAvailable)

	// Same time on a different weekday is unaffected.
	tuesday, err := evaluator.Evaluate(context.Background(), "2025-03-11", "13:30", ModeClinic, []DoctorProfile{doctor})
	require.NoError(t, err)
	assert.True(t, tuesday[0].IsAvailable)
}

func TestEvaluateAdHocBlock(t *testing.T) {
	repo := newMockRepo()
	doctor := repo.addDoctor(DoctorProfile{Name: "Dr. Iyer"})

	day := "2025-03-10"
	repo.blocks[doctor.ID] = []ScheduleBlock{
		{DoctorID: doctor.ID, Date: &day, StartTime: "00:00", EndTime: "23:59"},
	}

	evaluator := NewEvaluator(repo, time.Second)
	snaps, err := evaluator.Evaluate(context.Background(), day, "10:00", ModeHome, []DoctorProfile{doctor})
	require.NoError(t, err)
	assert.False(t, snaps[0].IsAvailable)
	assert.Equal(t, ReasonOutsideWorkingHours, snaps[0].ConflictReason)
}

func TestEvaluatePartialFailureIsolation(t *testing.T) {
	repo := newMockRepo()
	healthy := repo.addDoctor(DoctorProfile{Name: "Dr. Healthy"})
	broken := repo.addDoctor(DoctorProfile{Name: "Dr. Broken"})
	repo.listErr[broken.ID] = errors.New("record corrupted")

	evaluator := NewEvaluator(repo, time.Second)
	snaps, err := evaluator.Evaluate(context.Background(), "2025-03-10", "14:00", ModeVirtual, []DoctorProfile{healthy, broken})
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	assert.True(t, snaps[0].IsAvailable)
	assert.False(t, snaps[1].IsAvailable)
	assert.Equal(t, ReasonDataUnavailable, snaps[1].ConflictReason)
}

func TestEvaluateTimeoutDegradesDoctor(t *testing.T) {
	repo := newMockRepo()
	fast := repo.addDoctor(DoctorProfile{Name: "Dr. Fast"})
	slow := repo.addDoctor(DoctorProfile{Name: "Dr. Slow"})
	repo.listDelay[slow.ID] = 500 * time.Millisecond

	evaluator := NewEvaluator(repo, 50*time.Millisecond)
	snaps, err := evaluator.Evaluate(context.Background(), "2025-03-10", "14:00", ModeVirtual, []DoctorProfile{fast, slow})
	require.NoError(t, err)

	assert.True(t, snaps[0].IsAvailable)
	assert.False(t, snaps[1].IsAvailable)
	assert.Equal(t, ReasonEvaluationTimeout, snaps[1].ConflictReason)
}

func TestEvaluateInvalidRequest(t *testing.T) {
	repo := newMockRepo()
	evaluator := NewEvaluator(repo, time.Second)

	_, err := evaluator.Evaluate(context.Background(), "2025-13-01", "14:00", ModeVirtual, nil)
	require.ErrorIs(t, err, ErrInvalidRequest)
	var dateErr *timefmt.DateFormatError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, "2025-13-01", dateErr.Raw)

	_, err = evaluator.Evaluate(context.Background(), "2025-03-10", "25:61", ModeVirtual, nil)
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = evaluator.Evaluate(context.Background(), "2025-03-10", "14:00", "telepathy", nil)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEvaluateSnapshotOrderMatchesInput(t *testing.T) {
	repo := newMockRepo()
	var candidates []DoctorProfile
	for i := 0; i < 8; i++ {
		candidates = append(candidates, repo.addDoctor(DoctorProfile{Name: "Dr."}))
	}

	evaluator := NewEvaluator(repo, time.Second)
	snaps, err := evaluator.Evaluate(context.Background(), "2025-03-10", "09:00", ModeClinic, candidates)
	require.NoError(t, err)
	require.Len(t, snaps, len(candidates))
	for i := range candidates {
		assert.Equal(t, candidates[i].ID, snaps[i].DoctorID)
	}
}
