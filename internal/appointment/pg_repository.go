package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const appointmentColumns = `
	id, patient_id, patient_name, patient_email,
	doctor_id, doctor_name, specialization,
	consultation_mode, date, time, status,
	created_at, updated_at, cancellation_date`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.PatientName,
		&a.PatientEmail,
		&a.DoctorID,
		&a.DoctorName,
		&a.Specialization,
		&a.ConsultationMode,
		&a.Date,
		&a.Time,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.CancellationDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanDoctor(row pgx.Row) (*DoctorProfile, error) {
	var d DoctorProfile

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialization,
		&d.City,
		&d.Locality,
		&d.Approved,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

// Interface methods

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, patient_id, patient_name, patient_email,
			doctor_id, doctor_name, specialization,
			consultation_mode, date, time, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, a.PatientID, a.PatientName, a.PatientEmail,
		a.DoctorID, a.DoctorName, a.Specialization,
		a.ConsultationMode, a.Date, a.Time, a.Status)

	return scanAppointment(row)
}

func (r *PgRepository) ListActiveByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		  AND status <> 'cancelled'
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) AssignDoctor(ctx context.Context, id uuid.UUID, doctor DoctorProfile, now time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET doctor_id = $2,
		    doctor_name = $3,
		    specialization = $4,
		    status = 'confirmed',
		    updated_at = $5
		WHERE id = $1
		  AND status IN ('pending', 'confirmed')
		RETURNING `+appointmentColumns+`
	`, id, doctor.ID, doctor.Name, doctor.Specialization, now)

	return scanAppointment(row)
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, now time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = $4,
		    cancellation_date = CASE WHEN $2 = 'cancelled' THEN $4 ELSE cancellation_date END
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from, now)

	return scanAppointment(row)
}

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*DoctorProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialization, city, locality, approved, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetApprovedDoctors(ctx context.Context, filter DoctorFilter) ([]DoctorProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialization, city, locality, approved, created_at, updated_at
		FROM doctors
		WHERE approved = true
		  AND ($1 = '' OR city = $1)
		  AND ($2 = '' OR locality = $2)
		ORDER BY created_at
	`, filter.City, filter.Locality)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DoctorProfile
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListScheduleBlocks(ctx context.Context, doctorID uuid.UUID) ([]ScheduleBlock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, weekday, date, start_time, end_time
		FROM doctor_schedule_blocks
		WHERE doctor_id = $1
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ScheduleBlock
	for rows.Next() {
		var b ScheduleBlock
		var weekday *int
		if err := rows.Scan(&b.ID, &b.DoctorID, &weekday, &b.Date, &b.StartTime, &b.EndTime); err != nil {
			return nil, err
		}
		if weekday != nil {
			wd := time.Weekday(*weekday)
			b.Weekday = &wd
		}
		result = append(result, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

var _ Repository = (*PgRepository)(nil)
