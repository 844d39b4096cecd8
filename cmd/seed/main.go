package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carewell/telehealth-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedDoctors(context.Background(), pool, 60); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedBookings(context.Background(), pool, 10); err != nil {
		log.Fatalf("seed bookings: %v", err)
	}

	log.Println("seed complete")
}

type locality struct {
	city     string
	locality string
}

var localities = []locality{
	{"Chennai", "Adyar"},
	{"Chennai", "T-Nagar"},
	{"Chennai", "Velachery"},
	{"Madurai", "Anna Nagar"},
	{"Madurai", "KK Nagar"},
	{"Coimbatore", "RS Puram"},
	{"Coimbatore", "Gandhipuram"},
}

var specializations = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d doctors", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specializations[gofakeit.Number(0, len(specializations)-1)]
		loc := localities[gofakeit.Number(0, len(localities)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialization, city, locality, approved, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, now(), now())
		`, id, name, spec, loc.city, loc.locality)
		if err != nil {
			return err
		}

		// A lunch block on weekdays keeps availability results interesting.
		for weekday := 1; weekday <= 5; weekday++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO doctor_schedule_blocks (id, doctor_id, weekday, date, start_time, end_time)
				VALUES ($1, $2, $3, NULL, '13:00', '14:00')
			`, uuid.New(), id, weekday)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedBookings(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d organization bookings", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	start := time.Now().AddDate(0, 0, 7)
	for i := 0; i < count; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		_, err := tx.Exec(ctx, `
			INSERT INTO organization_bookings (
				id, organization_name, contact_name, contact_email,
				preferred_date, scheduled_date, status, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, '', 'pending', now(), now())
		`, uuid.New(), gofakeit.Company(), gofakeit.Name(),
			fmt.Sprintf("%s@%s", gofakeit.Username(), gofakeit.DomainName()), date)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
