package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/config"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The pgx driver surfaces server errors as
// *pgconn.PgError.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func NewDB(cfg *config.Config) (*sql.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode)

	db, err := sql.Open("pgx", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		otp_code TEXT,
		otp_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plate_number TEXT NOT NULL UNIQUE,
		vehicle_type TEXT NOT NULL,
		size TEXT NOT NULL,
		other_attributes JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS parking_slots (
		id SERIAL PRIMARY KEY,
		slot_number TEXT NOT NULL UNIQUE,
		size TEXT NOT NULL,
		vehicle_type TEXT NOT NULL,
		location TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS slot_requests (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		vehicle_id INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		request_status TEXT NOT NULL DEFAULT 'pending',
		slot_id INTEGER REFERENCES parking_slots(id),
		slot_number TEXT,
		approved_at TIMESTAMPTZ,
		rejection_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS logs (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id) ON DELETE SET NULL,
		action TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Migrate creates the tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}

// Seed creates the initial admin account (from ADMIN_EMAIL/ADMIN_PASSWORD)
// and a sample parking slot when the slot table is empty.
func Seed(ctx context.Context, db *sql.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("skip seeding admin: ADMIN_EMAIL/ADMIN_PASSWORD not set")
	} else {
		var id int
		err := db.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
			if hashErr != nil {
				return fmt.Errorf("hashing admin password: %w", hashErr)
			}
			_, err = db.ExecContext(ctx,
				`INSERT INTO users (name, email, password, role, is_verified) VALUES ($1, $2, $3, $4, TRUE)`,
				"Admin User", cfg.AdminEmail, string(hash), domain.RoleAdmin)
			if err != nil {
				return fmt.Errorf("seeding admin user: %w", err)
			}
			log.Println("admin user created:", cfg.AdminEmail)
		} else if err != nil {
			return fmt.Errorf("checking admin user: %w", err)
		}
	}

	var slotCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parking_slots`).Scan(&slotCount); err != nil {
		return fmt.Errorf("counting parking slots: %w", err)
	}
	if slotCount == 0 {
		_, err := db.ExecContext(ctx,
			`INSERT INTO parking_slots (slot_number, size, vehicle_type, location, status) VALUES ($1, $2, $3, $4, $5)`,
			"A1", domain.SizeSmall, domain.VehicleCar, "West Wing", domain.SlotAvailable)
		if err != nil {
			return fmt.Errorf("seeding sample slot: %w", err)
		}
		log.Println("sample parking slot created")
	}
	return nil
}
