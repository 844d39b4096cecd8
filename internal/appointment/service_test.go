package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

func TestCreateAppointmentNormalizesInput(t *testing.T) {
	repo := newMockRepo()
	svc, dispatcher := newTestService(repo)

	created, err := svc.CreateAppointment(context.Background(), CreateRequest{
		PatientID:    uuid.New(),
		PatientName:  "Asha",
		PatientEmail: "asha@example.com",
		Mode:         ModeHome,
		Date:         "10/03/2025",
		Time:         "2:00 PM",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10", created.Date)
	assert.Equal(t, "14:00", created.Time)
	assert.Equal(t, StatusPending, created.Status)
	assert.Nil(t, created.DoctorID)
	assert.Contains(t, dispatcher.captured(), EventAppointmentCreated)
}

func TestCreateAppointmentWithPreselectedDoctor(t *testing.T) {
	repo := newMockRepo()
	doctor := repo.addDoctor(DoctorProfile{Name: "Dr. Chosen", Specialization: "ENT"})
	svc, _ := newTestService(repo)

	created, err := svc.CreateAppointment(context.Background(), CreateRequest{
		PatientID: uuid.New(),
		Mode:      ModeClinic,
		Date:      "2025-03-10",
		Time:      "09:00",
		DoctorID:  &doctor.ID,
	})
	require.NoError(t, err)

	// A manually preselected doctor is allowed on a pending appointment.
	assert.Equal(t, StatusPending, created.Status)
	require.NotNil(t, created.DoctorID)
	assert.Equal(t, doctor.ID, *created.DoctorID)
	assert.Equal(t, "Dr. Chosen", *created.DoctorName)
	assert.Equal(t, "ENT", *created.Specialization)
}

func TestCreateAppointmentRejectsBadInput(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo)

	_, err := svc.CreateAppointment(context.Background(), CreateRequest{
		Mode: ModeClinic,
		Date: "2025-13-01",
		Time: "09:00",
	})
	var dateErr *timefmt.DateFormatError
	require.ErrorAs(t, err, &dateErr)

	_, err = svc.CreateAppointment(context.Background(), CreateRequest{
		Mode: ModeClinic,
		Date: "2025-03-10",
		Time: "nineish",
	})
	var timeErr *timefmt.TimeFormatError
	require.ErrorAs(t, err, &timeErr)

	_, err = svc.CreateAppointment(context.Background(), CreateRequest{
		Mode: "carrier-pigeon",
		Date: "2025-03-10",
		Time: "09:00",
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCreateAppointmentUnknownDoctor(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(repo)

	missing := uuid.New()
	_, err := svc.CreateAppointment(context.Background(), CreateRequest{
		Mode:     ModeClinic,
		Date:     "2025-03-10",
		Time:     "09:00",
		DoctorID: &missing,
	})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

// Store reads carry their own deadline even when the caller's context has
// none, so a stalled store cannot hang a request indefinitely.
func TestGetAppointmentBoundedByStoreTimeout(t *testing.T) {
	repo := newMockRepo()
	appt := repo.addAppointment(Appointment{
		Date:   "2025-03-10",
		Time:   "14:00",
		Status: StatusPending,
	})
	repo.getDelay = 500 * time.Millisecond

	svc, _ := newTestService(repo)
	svc.storeTimeout = 50 * time.Millisecond

	start := time.Now()
	_, _, err := svc.GetAppointment(context.Background(), appt.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestAvailabilityDefaultsToAppointmentSlot(t *testing.T) {
	repo := newMockRepo()
	free := repo.addDoctor(DoctorProfile{Name: "Dr. Free"})
	busy := repo.addDoctor(DoctorProfile{Name: "Dr. Busy"})
	repo.addAppointment(Appointment{
		DoctorID:         &busy.ID,
		ConsultationMode: ModeClinic,
		Date:             "2025-03-10",
		Time:             "14:00",
		Status:           StatusConfirmed,
	})
	appt := repo.addAppointment(Appointment{
		ConsultationMode: ModeVirtual,
		Date:             "2025-03-10",
		Time:             "14:00",
		Status:           StatusPending,
	})

	svc, _ := newTestService(repo)

	snaps, err := svc.Availability(context.Background(), appt.ID, "", "", "", DoctorFilter{})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.True(t, snaps[0].IsAvailable)
	assert.Equal(t, free.ID, snaps[0].DoctorID)
	assert.False(t, snaps[1].IsAvailable)
	assert.Equal(t, ReasonAlreadyBooked, snaps[1].ConflictReason)
}
