package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/carewell/telehealth-scheduling/internal/appointment"
	"github.com/carewell/telehealth-scheduling/internal/booking"
)

type CreateAppointmentRequest struct {
	PatientID    string `json:"patient_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	Mode         string `json:"consultation_mode"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	DoctorID     string `json:"doctor_id,omitempty"`
}

type ResolveRequest struct {
	DoctorID string `json:"doctor_id,omitempty"`
	City     string `json:"city,omitempty"`
	Locality string `json:"locality,omitempty"`
}

type CancelRequest struct {
	Actor string `json:"actor"`
}

// AppointmentResponse carries both the stored status and the wall-clock
// derived effective status; callers choose which to present.
type AppointmentResponse struct {
	ID               uuid.UUID  `json:"id"`
	PatientID        uuid.UUID  `json:"patient_id"`
	PatientName      string     `json:"patient_name"`
	DoctorID         *uuid.UUID `json:"doctor_id,omitempty"`
	DoctorName       *string    `json:"doctor_name,omitempty"`
	Specialization   *string    `json:"specialization,omitempty"`
	ConsultationMode string     `json:"consultation_mode"`
	Date             string     `json:"date"`
	Time             string     `json:"time"`
	Status           string     `json:"status"`
	EffectiveStatus  string     `json:"effective_status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CancellationDate *time.Time `json:"cancellation_date,omitempty"`
}

func toAppointmentResponse(a *appointment.Appointment, effective appointment.Status) AppointmentResponse {
	return AppointmentResponse{
		ID:               a.ID,
		PatientID:        a.PatientID,
		PatientName:      a.PatientName,
		DoctorID:         a.DoctorID,
		DoctorName:       a.DoctorName,
		Specialization:   a.Specialization,
		ConsultationMode: string(a.ConsultationMode),
		Date:             a.Date,
		Time:             a.Time,
		Status:           string(a.Status),
		EffectiveStatus:  string(effective),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
		CancellationDate: a.CancellationDate,
	}
}

type AvailabilityEntry struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	DoctorName     string    `json:"doctor_name"`
	Specialization string    `json:"specialization"`
	City           string    `json:"city"`
	Locality       string    `json:"locality"`
	IsAvailable    bool      `json:"is_available"`
	ConflictReason string    `json:"conflict_reason,omitempty"`
}

func toAvailabilityEntries(snaps []appointment.AvailabilitySnapshot) []AvailabilityEntry {
	out := make([]AvailabilityEntry, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, AvailabilityEntry{
			DoctorID:       s.DoctorID,
			DoctorName:     s.Doctor.Name,
			Specialization: s.Doctor.Specialization,
			City:           s.Doctor.City,
			Locality:       s.Doctor.Locality,
			IsAvailable:    s.IsAvailable,
			ConflictReason: s.ConflictReason,
		})
	}
	return out
}

type CreateBookingRequest struct {
	OrganizationName string `json:"organization_name"`
	ContactName      string `json:"contact_name"`
	ContactEmail     string `json:"contact_email"`
	PreferredDate    string `json:"preferred_date"`
}

type BookingResponse struct {
	ID                  uuid.UUID  `json:"id"`
	OrganizationName    string     `json:"organization_name"`
	PreferredDate       string     `json:"preferred_date"`
	ScheduledDate       string     `json:"scheduled_date,omitempty"`
	Status              string     `json:"status"`
	AutoCompletedAt     *time.Time `json:"auto_completed_at,omitempty"`
	AutoCompletedReason string     `json:"auto_completed_reason,omitempty"`
	AutoCompletedDate   string     `json:"auto_completed_date,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func toBookingResponse(b *booking.OrganizationBooking) BookingResponse {
	return BookingResponse{
		ID:                  b.ID,
		OrganizationName:    b.OrganizationName,
		PreferredDate:       b.PreferredDate,
		ScheduledDate:       b.ScheduledDate,
		Status:              string(b.Status),
		AutoCompletedAt:     b.AutoCompletedAt,
		AutoCompletedReason: b.AutoCompletedReason,
		AutoCompletedDate:   b.AutoCompletedDate,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

type SweepResponse struct {
	Completed int `json:"completed"`
}
