package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

func marshalAttributes(attrs map[string]interface{}) ([]byte, error) {
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	return json.Marshal(attrs)
}

func (r *pgVehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	attrs, err := marshalAttributes(vehicle.OtherAttributes)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.Create (encoding attributes): %w", err)
	}

	query := `INSERT INTO vehicles (user_id, plate_number, vehicle_type, size, other_attributes)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id, created_at`
	err = r.db.QueryRowContext(ctx, query,
		vehicle.UserID, vehicle.PlateNumber, vehicle.VehicleType, vehicle.Size, attrs,
	).Scan(&vehicle.ID, &vehicle.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: vehicle with plate number '%s' already exists", repository.ErrDuplicateEntry, vehicle.PlateNumber)
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	var attrs []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&vehicle.ID, &vehicle.UserID, &vehicle.PlateNumber, &vehicle.VehicleType,
		&vehicle.Size, &attrs, &vehicle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &vehicle.OtherAttributes); err != nil {
			return nil, fmt.Errorf("decoding attributes: %w", err)
		}
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	query := `SELECT id, user_id, plate_number, vehicle_type, size, other_attributes, created_at
	           FROM vehicles WHERE id = $1`
	vehicle, err := r.findOne(ctx, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByID: %w", err)
	}
	return vehicle, nil
}

func (r *pgVehicleRepository) FindByIDAndUser(ctx context.Context, id, userID int) (*domain.Vehicle, error) {
	query := `SELECT id, user_id, plate_number, vehicle_type, size, other_attributes, created_at
	           FROM vehicles WHERE id = $1 AND user_id = $2`
	vehicle, err := r.findOne(ctx, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByIDAndUser: %w", err)
	}
	return vehicle, nil
}

func (r *pgVehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	attrs, err := marshalAttributes(vehicle.OtherAttributes)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.Update (encoding attributes): %w", err)
	}

	query := `UPDATE vehicles
	           SET plate_number = $1, vehicle_type = $2, size = $3, other_attributes = $4
	           WHERE id = $5
	           RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query,
		vehicle.PlateNumber, vehicle.VehicleType, vehicle.Size, attrs, vehicle.ID,
	).Scan(&vehicle.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: vehicle with plate number '%s' already exists", repository.ErrDuplicateEntry, vehicle.PlateNumber)
		}
		return nil, fmt.Errorf("VehicleRepository.Update: %w", err)
	}
	vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
	return vehicle, nil
}

func (r *pgVehicleRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("VehicleRepository.Delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("VehicleRepository.Delete (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func vehicleFilterConditions(filter domain.VehicleFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("v.user_id = $%d", argID))
		args = append(args, *filter.UserID)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(v.plate_number ILIKE '%%' || $%d || '%%' OR v.vehicle_type ILIKE '%%' || $%d || '%%')", argID, argID))
		args = append(args, filter.Search)
		argID++
	}
	return conditions, args
}

func (r *pgVehicleRepository) Find(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	// approval_status surfaces whether an approved slot request references
	// the vehicle; listings display it next to each row.
	baseQuery := `SELECT v.id, v.user_id, v.plate_number, v.vehicle_type, v.size, v.other_attributes, v.created_at,
	                     (SELECT sr.request_status FROM slot_requests sr
	                       WHERE sr.vehicle_id = v.id AND sr.request_status = 'approved' LIMIT 1) AS approval_status
	               FROM vehicles v`

	conditions, args := vehicleFilterConditions(filter)
	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY v.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.Find: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var vehicle domain.Vehicle
		var attrs []byte
		if err := rows.Scan(
			&vehicle.ID, &vehicle.UserID, &vehicle.PlateNumber, &vehicle.VehicleType,
			&vehicle.Size, &attrs, &vehicle.CreatedAt, &vehicle.ApprovalStatus,
		); err != nil {
			return nil, fmt.Errorf("VehicleRepository.Find (scanning row): %w", err)
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &vehicle.OtherAttributes); err != nil {
				return nil, fmt.Errorf("VehicleRepository.Find (decoding attributes): %w", err)
			}
		}
		vehicle.CreatedAt = vehicle.CreatedAt.In(time.UTC)
		vehicles = append(vehicles, vehicle)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleRepository.Find (rows error): %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) Count(ctx context.Context, filter domain.VehicleFilter) (int, error) {
	conditions, args := vehicleFilterConditions(filter)
	query := `SELECT COUNT(*) FROM vehicles v`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("VehicleRepository.Count: %w", err)
	}
	return count, nil
}
