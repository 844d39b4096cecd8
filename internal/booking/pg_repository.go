package booking

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

const bookingColumns = `
	id, organization_name, contact_name, contact_email,
	preferred_date, scheduled_date, status,
	created_at, updated_at,
	auto_completed_at, auto_completed_reason, auto_completed_date`

func scanBooking(row pgx.Row) (*OrganizationBooking, error) {
	var b OrganizationBooking

	err := row.Scan(
		&b.ID,
		&b.OrganizationName,
		&b.ContactName,
		&b.ContactEmail,
		&b.PreferredDate,
		&b.ScheduledDate,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.AutoCompletedAt,
		&b.AutoCompletedReason,
		&b.AutoCompletedDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *PgRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*OrganizationBooking, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM organization_bookings
		WHERE id = $1
	`, id)
	return scanBooking(row)
}

func (r *PgRepository) CreateBooking(ctx context.Context, b *OrganizationBooking) (*OrganizationBooking, error) {
	id := b.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO organization_bookings (
			id, organization_name, contact_name, contact_email,
			preferred_date, scheduled_date, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING `+bookingColumns+`
	`, id, b.OrganizationName, b.ContactName, b.ContactEmail,
		b.PreferredDate, b.ScheduledDate, b.Status)

	return scanBooking(row)
}

func (r *PgRepository) ListActive(ctx context.Context) ([]OrganizationBooking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM organization_bookings
		WHERE status NOT IN ('completed', 'cancelled')
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OrganizationBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListNonCancelled(ctx context.Context) ([]OrganizationBooking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM organization_bookings
		WHERE status <> 'cancelled'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OrganizationBooking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, now time.Time) (*OrganizationBooking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE organization_bookings
		SET status = $2,
		    updated_at = $4
		WHERE id = $1
		  AND status = $3
		RETURNING `+bookingColumns+`
	`, id, to, from, now)

	return scanBooking(row)
}

func (r *PgRepository) MarkAutoCompleted(ctx context.Context, id uuid.UUID, reason, date string, now time.Time) (*OrganizationBooking, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE organization_bookings
		SET status = 'completed',
		    updated_at = $4,
		    auto_completed_at = $4,
		    auto_completed_reason = $2,
		    auto_completed_date = $3
		WHERE id = $1
		  AND status NOT IN ('completed', 'cancelled')
		RETURNING `+bookingColumns+`
	`, id, reason, date, now)

	return scanBooking(row)
}

var _ Repository = (*PgRepository)(nil)
