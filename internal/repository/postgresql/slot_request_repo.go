package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/guregu/null.v4"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type pgSlotRequestRepository struct {
	db *sql.DB
}

func NewPgSlotRequestRepository(db *sql.DB) repository.SlotRequestRepository {
	return &pgSlotRequestRepository{db: db}
}

func (r *pgSlotRequestRepository) Create(ctx context.Context, req *domain.SlotRequest) (*domain.SlotRequest, error) {
	req.RequestStatus = domain.RequestPending
	query := `INSERT INTO slot_requests (user_id, vehicle_id, request_status)
	           VALUES ($1, $2, $3)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, req.UserID, req.VehicleID, req.RequestStatus).
		Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.Create: %w", err)
	}
	req.CreatedAt = req.CreatedAt.In(time.UTC)
	return req, nil
}

const requestSelect = `SELECT sr.id, sr.user_id, sr.vehicle_id, sr.request_status, sr.slot_id, sr.slot_number,
	                 sr.approved_at, sr.rejection_reason, sr.created_at,
	                 v.plate_number, v.vehicle_type, v.size, u.email
	           FROM slot_requests sr
	           JOIN vehicles v ON v.id = sr.vehicle_id
	           JOIN users u ON u.id = sr.user_id`

func scanRequest(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.SlotRequest, error) {
	req := &domain.SlotRequest{}
	err := scanner.Scan(
		&req.ID, &req.UserID, &req.VehicleID, &req.RequestStatus, &req.SlotID, &req.SlotNumber,
		&req.ApprovedAt, &req.RejectionReason, &req.CreatedAt,
		&req.PlateNumber, &req.VehicleType, &req.VehicleSize, &req.UserEmail,
	)
	if err != nil {
		return nil, err
	}
	req.CreatedAt = req.CreatedAt.In(time.UTC)
	if req.ApprovedAt.Valid {
		req.ApprovedAt.Time = req.ApprovedAt.Time.In(time.UTC)
	}
	return req, nil
}

func (r *pgSlotRequestRepository) FindByID(ctx context.Context, id int) (*domain.SlotRequest, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, requestSelect+` WHERE sr.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("SlotRequestRepository.FindByID: %w", err)
	}
	return req, nil
}

func (r *pgSlotRequestRepository) UpdateVehicle(ctx context.Context, id, userID, vehicleID int) (*domain.SlotRequest, error) {
	query := `UPDATE slot_requests SET vehicle_id = $1
	           WHERE id = $2 AND user_id = $3 AND request_status = $4`
	result, err := r.db.ExecContext(ctx, query, vehicleID, id, userID, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.UpdateVehicle: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.UpdateVehicle (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *pgSlotRequestRepository) DeletePending(ctx context.Context, id, userID int) error {
	query := `DELETE FROM slot_requests WHERE id = $1 AND user_id = $2 AND request_status = $3`
	result, err := r.db.ExecContext(ctx, query, id, userID, domain.RequestPending)
	if err != nil {
		return fmt.Errorf("SlotRequestRepository.DeletePending: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("SlotRequestRepository.DeletePending (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Approve performs the read-match-write-both sequence as one transaction.
// The request row is locked while still pending, the compatible available
// slots are locked before the pick, and both updates carry conditional
// guards so a concurrent approve or reject can never half-land.
func (r *pgSlotRequestRepository) Approve(ctx context.Context, id int, approvedAt time.Time) (*domain.SlotRequest, *domain.ParkingSlot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (begin tx): %w", err)
	}
	defer tx.Rollback()

	req := &domain.SlotRequest{}
	query := `SELECT sr.id, sr.user_id, sr.vehicle_id, sr.request_status, sr.created_at,
	                 v.plate_number, v.vehicle_type, v.size, u.email
	           FROM slot_requests sr
	           JOIN vehicles v ON v.id = sr.vehicle_id
	           JOIN users u ON u.id = sr.user_id
	           WHERE sr.id = $1 AND sr.request_status = $2
	           FOR UPDATE OF sr`
	err = tx.QueryRowContext(ctx, query, id, domain.RequestPending).Scan(
		&req.ID, &req.UserID, &req.VehicleID, &req.RequestStatus, &req.CreatedAt,
		&req.PlateNumber, &req.VehicleType, &req.VehicleSize, &req.UserEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (loading request): %w", err)
	}

	// Lock every candidate so two concurrent approvals serialize on the
	// same inventory instead of both picking one slot.
	slotQuery := `SELECT id, slot_number, size, vehicle_type, location, status, created_at
	               FROM parking_slots
	               WHERE status = $1 AND vehicle_type = $2 AND size = $3
	               ORDER BY id ASC
	               FOR UPDATE`
	rows, err := tx.QueryContext(ctx, slotQuery, domain.SlotAvailable, req.VehicleType, req.VehicleSize)
	if err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (loading slots): %w", err)
	}
	var candidates []domain.ParkingSlot
	for rows.Next() {
		var slot domain.ParkingSlot
		if err := rows.Scan(
			&slot.ID, &slot.SlotNumber, &slot.Size, &slot.VehicleType,
			&slot.Location, &slot.Status, &slot.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (scanning slot): %w", err)
		}
		candidates = append(candidates, slot)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (slot rows error): %w", err)
	}
	rows.Close()

	slot := domain.FirstCompatible(req.VehicleType, req.VehicleSize, candidates)
	if slot == nil {
		return nil, nil, repository.ErrNoCompatibleSlot
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE slot_requests SET request_status = $1, slot_id = $2, slot_number = $3, approved_at = $4
		  WHERE id = $5 AND request_status = $6`,
		domain.RequestApproved, slot.ID, slot.SlotNumber, approvedAt, id, domain.RequestPending)
	if err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (updating request): %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (checking request rows): %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil, repository.ErrNotFound
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE parking_slots SET status = $1 WHERE id = $2 AND status = $3`,
		domain.SlotOccupied, slot.ID, domain.SlotAvailable)
	if err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (updating slot): %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (checking slot rows): %w", err)
	}
	if rowsAffected == 0 {
		return nil, nil, repository.ErrNoCompatibleSlot
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("SlotRequestRepository.Approve (commit): %w", err)
	}

	req.RequestStatus = domain.RequestApproved
	req.SlotID = null.IntFrom(int64(slot.ID))
	req.SlotNumber = null.StringFrom(slot.SlotNumber)
	req.ApprovedAt = null.TimeFrom(approvedAt.In(time.UTC))
	req.CreatedAt = req.CreatedAt.In(time.UTC)
	slot.Status = domain.SlotOccupied
	return req, slot, nil
}

func (r *pgSlotRequestRepository) Reject(ctx context.Context, id int, reason string) (*domain.SlotRequest, error) {
	var reasonVal null.String
	if reason != "" {
		reasonVal = null.StringFrom(reason)
	}
	query := `UPDATE slot_requests SET request_status = $1, rejection_reason = $2
	           WHERE id = $3 AND request_status = $4`
	result, err := r.db.ExecContext(ctx, query, domain.RequestRejected, reasonVal, id, domain.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.Reject: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.Reject (checking rows affected): %w", err)
	}
	if rowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func requestFilterConditions(filter domain.RequestFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argID := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("sr.user_id = $%d", argID))
		args = append(args, *filter.UserID)
		argID++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(v.plate_number ILIKE '%%' || $%d || '%%' OR v.vehicle_type ILIKE '%%' || $%d || '%%' OR sr.slot_number ILIKE '%%' || $%d || '%%')",
			argID, argID, argID))
		args = append(args, filter.Search)
		argID++
	}
	return conditions, args
}

func (r *pgSlotRequestRepository) Find(ctx context.Context, filter domain.RequestFilter) ([]domain.SlotRequest, error) {
	conditions, args := requestFilterConditions(filter)
	query := requestSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY sr.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.Find: %w", err)
	}
	defer rows.Close()

	var requests []domain.SlotRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("SlotRequestRepository.Find (scanning row): %w", err)
		}
		requests = append(requests, *req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("SlotRequestRepository.Find (rows error): %w", err)
	}
	return requests, nil
}

func (r *pgSlotRequestRepository) Count(ctx context.Context, filter domain.RequestFilter) (int, error) {
	conditions, args := requestFilterConditions(filter)
	query := `SELECT COUNT(*)
	           FROM slot_requests sr
	           JOIN vehicles v ON v.id = sr.vehicle_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("SlotRequestRepository.Count: %w", err)
	}
	return count, nil
}
