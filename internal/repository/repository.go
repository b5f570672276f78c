package repository

import (
	"context"
	"errors"
	"time"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

// ErrNoCompatibleSlot is returned by the approval transaction when no
// available slot matches the request's vehicle; the request stays pending.
var ErrNoCompatibleSlot = errors.New("no compatible slot available")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	UpdateOTP(ctx context.Context, id int, code string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id int) error
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	Find(ctx context.Context, search string, page domain.Page) ([]domain.User, error)
	Count(ctx context.Context, search string) (int, error)
	Delete(ctx context.Context, id int) error
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int) (*domain.Vehicle, error)
	// FindByIDAndUser returns ErrNotFound when the vehicle does not exist or
	// belongs to a different owner; callers cannot tell the two apart.
	FindByIDAndUser(ctx context.Context, id, userID int) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error)
	Delete(ctx context.Context, id int) error
	Find(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error)
	Count(ctx context.Context, filter domain.VehicleFilter) (int, error)
}

type ParkingSlotRepository interface {
	BulkCreate(ctx context.Context, slots []domain.ParkingSlot) ([]domain.ParkingSlot, error)
	FindByID(ctx context.Context, id int) (*domain.ParkingSlot, error)
	Update(ctx context.Context, slot *domain.ParkingSlot) (*domain.ParkingSlot, error)
	Delete(ctx context.Context, id int) error
	Find(ctx context.Context, filter domain.SlotFilter) ([]domain.ParkingSlot, error)
	Count(ctx context.Context, filter domain.SlotFilter) (int, error)
}

type SlotRequestRepository interface {
	Create(ctx context.Context, req *domain.SlotRequest) (*domain.SlotRequest, error)
	FindByID(ctx context.Context, id int) (*domain.SlotRequest, error)
	// UpdateVehicle reassigns a pending request owned by userID to another
	// vehicle; ErrNotFound when the request is absent, foreign or processed.
	UpdateVehicle(ctx context.Context, id, userID, vehicleID int) (*domain.SlotRequest, error)
	// DeletePending removes a pending request owned by userID.
	DeletePending(ctx context.Context, id, userID int) error
	// Approve runs the whole allocation as one transaction: it guards on the
	// request still being pending, locks the compatible available slots,
	// picks one, and flips request and slot together. Either both mutations
	// land or neither does. ErrNotFound when the request is absent or
	// already processed; ErrNoCompatibleSlot when nothing matches.
	Approve(ctx context.Context, id int, approvedAt time.Time) (*domain.SlotRequest, *domain.ParkingSlot, error)
	// Reject flips a pending request to rejected, persisting the reason.
	// ErrNotFound when the request is absent or already processed.
	Reject(ctx context.Context, id int, reason string) (*domain.SlotRequest, error)
	Find(ctx context.Context, filter domain.RequestFilter) ([]domain.SlotRequest, error)
	Count(ctx context.Context, filter domain.RequestFilter) (int, error)
}

type LogRepository interface {
	Create(ctx context.Context, entry *domain.LogEntry) error
	Find(ctx context.Context, filter domain.LogFilter) ([]domain.LogEntry, error)
	Count(ctx context.Context, filter domain.LogFilter) (int, error)
}
