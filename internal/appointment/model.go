package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type ConsultationMode string

const (
	ModeVirtual ConsultationMode = "virtual"
	ModeHome    ConsultationMode = "home"
	ModeClinic  ConsultationMode = "clinic"
)

func ValidMode(m ConsultationMode) bool {
	switch m {
	case ModeVirtual, ModeHome, ModeClinic:
		return true
	}
	return false
}

// Actor identifies who is acting on an appointment. The cancellation
// deadline binds patients only.
type Actor string

const (
	ActorPatient Actor = "patient"
	ActorDoctor  Actor = "doctor"
	ActorAdmin   Actor = "admin"
)

// Appointment is one patient slot request. Date and Time hold canonical
// strings (YYYY-MM-DD, HH:MM); the doctor triple is nil until assignment and
// is only ever rewritten as a unit.
type Appointment struct {
	ID               uuid.UUID
	PatientID        uuid.UUID
	PatientName      string
	PatientEmail     string
	DoctorID         *uuid.UUID
	DoctorName       *string
	Specialization   *string
	ConsultationMode ConsultationMode
	Date             string
	Time             string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
	CancellationDate *time.Time
}

// DoctorProfile is a directory entry for an approved practitioner.
type DoctorProfile struct {
	ID             uuid.UUID
	Name           string
	Specialization string
	City           string
	Locality       string
	Approved       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DoctorFilter narrows a directory query. Empty fields match everything.
type DoctorFilter struct {
	City     string
	Locality string
}

// ScheduleBlock marks a stretch of a doctor's calendar as unbookable, either
// weekly (Weekday set, Date nil) or ad hoc (Date set, canonical form).
type ScheduleBlock struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	Weekday   *time.Weekday
	Date      *string
	StartTime string
	EndTime   string
}

// Covers reports whether the block makes the given canonical slot unbookable.
// StartTime is inclusive, EndTime exclusive; canonical HH:MM strings compare
// correctly as text.
func (b ScheduleBlock) Covers(date string, weekday time.Weekday, timeOfDay string) bool {
	if b.Date != nil {
		if *b.Date != date {
			return false
		}
	} else if b.Weekday == nil || *b.Weekday != weekday {
		return false
	}
	return timeOfDay >= b.StartTime && timeOfDay < b.EndTime
}

// AvailabilitySnapshot is the per-doctor result of one availability
// evaluation. It is computed fresh each call and never cached; a stale
// snapshot is exactly what causes double booking.
type AvailabilitySnapshot struct {
	DoctorID       uuid.UUID
	Doctor         DoctorProfile
	IsAvailable    bool
	ConflictReason string
}
