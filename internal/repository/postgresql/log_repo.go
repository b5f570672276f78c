package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type pgLogRepository struct {
	db *sql.DB
}

func NewPgLogRepository(db *sql.DB) repository.LogRepository {
	return &pgLogRepository{db: db}
}

func (r *pgLogRepository) Create(ctx context.Context, entry *domain.LogEntry) error {
	query := `INSERT INTO logs (user_id, action) VALUES ($1, $2)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, entry.UserID, entry.Action).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("LogRepository.Create: %w", err)
	}
	entry.CreatedAt = entry.CreatedAt.In(time.UTC)
	return nil
}

func logFilterConditions(filter domain.LogFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Search != "" {
		cond := fmt.Sprintf("action ILIKE '%%' || $%d || '%%'", argID)
		args = append(args, filter.Search)
		argID++
		// A numeric search term also matches the acting user's id.
		if userID, err := strconv.Atoi(filter.Search); err == nil {
			cond = fmt.Sprintf("(%s OR user_id = $%d)", cond, argID)
			args = append(args, userID)
			argID++
		}
		conditions = append(conditions, cond)
	}
	return conditions, args
}

func (r *pgLogRepository) Find(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error) {
	conditions, args := logFilterConditions(filter)
	query := `SELECT id, user_id, action, created_at FROM logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("LogRepository.Find: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var entry domain.LogEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Action, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("LogRepository.Find (scanning row): %w", err)
		}
		entry.CreatedAt = entry.CreatedAt.In(time.UTC)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("LogRepository.Find (rows error): %w", err)
	}
	return entries, nil
}

func (r *pgLogRepository) Count(ctx context.Context, filter domain.LogFilter) (int, error) {
	conditions, args := logFilterConditions(filter)
	query := `SELECT COUNT(*) FROM logs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("LogRepository.Count: %w", err)
	}
	return count, nil
}
