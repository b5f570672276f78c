package domain

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotOccupied  SlotStatus = "occupied"
	// SlotPending is reserved for a future hold/expiry flow; no transition
	// in this codebase produces it.
	SlotPending SlotStatus = "pending"
)

type ParkingSlot struct {
	ID          int         `json:"id"`
	SlotNumber  string      `json:"slot_number"`
	Size        VehicleSize `json:"size"`
	VehicleType VehicleType `json:"vehicle_type"`
	Location    string      `json:"location"`
	Status      SlotStatus  `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

type SlotDTO struct {
	SlotNumber  string `json:"slotNumber" binding:"required"`
	Size        string `json:"size" binding:"required"`
	VehicleType string `json:"vehicleType" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

type BulkSlotsDTO struct {
	Slots []SlotDTO `json:"slots" binding:"required,min=1,dive"`
}

type SlotFilter struct {
	Search string
	// AvailableOnly hides occupied slots from non-admin listings.
	AvailableOnly bool
	Page
}
