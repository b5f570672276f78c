package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleTruck      VehicleType = "truck"
	VehicleMotorcycle VehicleType = "motorcycle"
)

func ValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleCar, VehicleTruck, VehicleMotorcycle:
		return true
	}
	return false
}

type VehicleSize string

const (
	SizeSmall  VehicleSize = "small"
	SizeMedium VehicleSize = "medium"
	SizeLarge  VehicleSize = "large"
)

func ValidVehicleSize(s VehicleSize) bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

type Vehicle struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	PlateNumber string      `json:"plate_number"`
	VehicleType VehicleType `json:"vehicle_type"`
	Size        VehicleSize `json:"size"`
	// OtherAttributes is an open string-keyed blob; nothing in the core
	// depends on its shape.
	OtherAttributes map[string]interface{} `json:"other_attributes,omitempty"`
	// ApprovalStatus is "approved" when an approved slot request references
	// this vehicle; only populated by listings.
	ApprovalStatus null.String `json:"approval_status"`
	CreatedAt      time.Time   `json:"created_at"`
}

type VehicleDTO struct {
	PlateNumber     string                 `json:"plateNumber" binding:"required"`
	VehicleType     string                 `json:"vehicleType" binding:"required"`
	Size            string                 `json:"size" binding:"required"`
	OtherAttributes map[string]interface{} `json:"otherAttributes"`
}

type VehicleFilter struct {
	// UserID restricts results to one owner; nil means all owners (admin).
	UserID *int
	Search string
	Page
}
