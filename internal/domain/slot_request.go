package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// SlotRequest is a user's ask to be assigned a parking slot for one of their
// vehicles. It starts pending and moves exactly once to approved or rejected;
// neither transition is reversible.
type SlotRequest struct {
	ID              int           `json:"id"`
	UserID          int           `json:"user_id"`
	VehicleID       int           `json:"vehicle_id"`
	RequestStatus   RequestStatus `json:"request_status"`
	SlotID          null.Int      `json:"slot_id"`
	SlotNumber      null.String   `json:"slot_number"`
	ApprovedAt      null.Time     `json:"approved_at"`
	RejectionReason null.String   `json:"rejection_reason"`
	CreatedAt       time.Time     `json:"created_at"`

	// Joined display fields, populated by listings and the approve path.
	PlateNumber string      `json:"plate_number,omitempty"`
	VehicleType VehicleType `json:"vehicle_type,omitempty"`
	VehicleSize VehicleSize `json:"vehicle_size,omitempty"`
	UserEmail   string      `json:"user_email,omitempty"`
}

type CreateRequestDTO struct {
	VehicleID int `json:"vehicleId" binding:"required"`
}

type UpdateRequestDTO struct {
	VehicleID int `json:"vehicleId" binding:"required"`
}

type RejectRequestDTO struct {
	Reason string `json:"reason"`
}

type RequestFilter struct {
	// UserID restricts results to one requester; nil means all (admin).
	UserID *int
	// Search matches vehicle plate, vehicle type or assigned slot number,
	// case-insensitively.
	Search string
	Page
}
