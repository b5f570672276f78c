package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) repository.UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, email, password, role, is_verified, otp_code, otp_expires_at, created_at`

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.IsVerified, &user.OtpCode, &user.OtpExpiresAt, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.In(time.UTC)
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `INSERT INTO users (name, email, password, role, is_verified, otp_code, otp_expires_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Email, user.Password, user.Role, user.IsVerified,
		user.OtpCode, user.OtpExpiresAt,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email '%s' is already registered", repository.ErrDuplicateEntry, user.Email)
		}
		return nil, fmt.Errorf("UserRepository.Create: %w", err)
	}
	user.CreatedAt = user.CreatedAt.In(time.UTC)
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("UserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("UserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) UpdateOTP(ctx context.Context, id int, code string, expiresAt time.Time) error {
	query := `UPDATE users SET otp_code = $1, otp_expires_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, code, expiresAt, id)
	if err != nil {
		return fmt.Errorf("UserRepository.UpdateOTP: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UserRepository.UpdateOTP (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) MarkVerified(ctx context.Context, id int) error {
	query := `UPDATE users SET is_verified = TRUE, otp_code = NULL, otp_expires_at = NULL WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("UserRepository.MarkVerified: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UserRepository.MarkVerified (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `UPDATE users SET name = $1, email = $2, password = $3 WHERE id = $4
	           RETURNING ` + userColumns
	updated, err := scanUser(r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.Password, user.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email '%s' is already registered", repository.ErrDuplicateEntry, user.Email)
		}
		return nil, fmt.Errorf("UserRepository.UpdateProfile: %w", err)
	}
	return updated, nil
}

func (r *pgUserRepository) Find(ctx context.Context, search string, page domain.Page) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	           WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
	           ORDER BY id ASC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, search, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("UserRepository.Find: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
			&user.IsVerified, &user.OtpCode, &user.OtpExpiresAt, &user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("UserRepository.Find (scanning row): %w", err)
		}
		user.CreatedAt = user.CreatedAt.In(time.UTC)
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("UserRepository.Find (rows error): %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) Count(ctx context.Context, search string) (int, error) {
	query := `SELECT COUNT(*) FROM users
	           WHERE name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'`
	var count int
	if err := r.db.QueryRowContext(ctx, query, search).Scan(&count); err != nil {
		return 0, fmt.Errorf("UserRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("UserRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UserRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
