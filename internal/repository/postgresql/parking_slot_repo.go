package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type pgParkingSlotRepository struct {
	db *sql.DB
}

func NewPgParkingSlotRepository(db *sql.DB) repository.ParkingSlotRepository {
	return &pgParkingSlotRepository{db: db}
}

// BulkCreate inserts the whole batch in one transaction so a duplicate slot
// number rejects the batch as a unit.
func (r *pgParkingSlotRepository) BulkCreate(ctx context.Context, slots []domain.ParkingSlot) ([]domain.ParkingSlot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.BulkCreate (begin tx): %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO parking_slots (slot_number, size, vehicle_type, location, status)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, created_at`
	for i := range slots {
		slot := &slots[i]
		if slot.Status == "" {
			slot.Status = domain.SlotAvailable
		}
		err := tx.QueryRowContext(ctx, query,
			slot.SlotNumber, slot.Size, slot.VehicleType, slot.Location, slot.Status,
		).Scan(&slot.ID, &slot.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: slot number '%s' already exists", repository.ErrDuplicateEntry, slot.SlotNumber)
			}
			return nil, fmt.Errorf("ParkingSlotRepository.BulkCreate: %w", err)
		}
		slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.BulkCreate (commit): %w", err)
	}
	return slots, nil
}

func (r *pgParkingSlotRepository) FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error) {
	slot := &domain.ParkingSlot{}
	query := `SELECT id, slot_number, size, vehicle_type, location, status, created_at
	           FROM parking_slots WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&slot.ID, &slot.SlotNumber, &slot.Size, &slot.VehicleType,
		&slot.Location, &slot.Status, &slot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSlotRepository.FindByID: %w", err)
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error) {
	query := `UPDATE parking_slots
	           SET slot_number = $1, size = $2, vehicle_type = $3, location = $4
	           WHERE id = $5
	           RETURNING status, created_at`
	err := r.db.QueryRowContext(ctx, query,
		slot.SlotNumber, slot.Size, slot.VehicleType, slot.Location, slot.ID,
	).Scan(&slot.Status, &slot.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: slot number '%s' already exists", repository.ErrDuplicateEntry, slot.SlotNumber)
		}
		return nil, fmt.Errorf("ParkingSlotRepository.Update: %w", err)
	}
	slot.CreatedAt = slot.CreatedAt.In(time.UTC)
	return slot, nil
}

func (r *pgParkingSlotRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM parking_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSlotRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func slotFilterConditions(filter domain.SlotFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(slot_number ILIKE '%%' || $%d || '%%' OR vehicle_type ILIKE '%%' || $%d || '%%')", argID, argID))
		args = append(args, filter.Search)
		argID++
	}
	if filter.AvailableOnly {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, domain.SlotAvailable)
		argID++
	}
	return conditions, args
}

func (r *pgParkingSlotRepository) Find(ctx context.Context, filter domain.SlotFilter) ([]domain.ParkingSlot, error) {
	baseQuery := `SELECT id, slot_number, size, vehicle_type, location, status, created_at
	               FROM parking_slots`

	conditions, args := slotFilterConditions(filter)
	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.Find: %w", err)
	}
	defer rows.Close()

	var slots []domain.ParkingSlot
	for rows.Next() {
		var slot domain.ParkingSlot
		if err := rows.Scan(
			&slot.ID, &slot.SlotNumber, &slot.Size, &slot.VehicleType,
			&slot.Location, &slot.Status, &slot.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ParkingSlotRepository.Find (scanning row): %w", err)
		}
		slot.CreatedAt = slot.CreatedAt.In(time.UTC)
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSlotRepository.Find (rows error): %w", err)
	}
	return slots, nil
}

func (r *pgParkingSlotRepository) Count(ctx context.Context, filter domain.SlotFilter) (int, error) {
	conditions, args := slotFilterConditions(filter)
	query := `SELECT COUNT(*) FROM parking_slots`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ParkingSlotRepository.Count: %w", err)
	}
	return count, nil
}
