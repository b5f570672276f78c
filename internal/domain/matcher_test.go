package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstCompatible_ExactMatch(t *testing.T) {
	slots := []ParkingSlot{
		{ID: 1, SlotNumber: "A1", VehicleType: VehicleCar, Size: SizeSmall, Status: SlotAvailable},
		{ID: 2, SlotNumber: "B1", VehicleType: VehicleTruck, Size: SizeLarge, Status: SlotAvailable},
	}

	got := FirstCompatible(VehicleTruck, SizeLarge, slots)
	assert.NotNil(t, got)
	assert.Equal(t, "B1", got.SlotNumber)
}

func TestFirstCompatible_NoPartialMatch(t *testing.T) {
	// Same type but different size must not match, and vice versa.
	slots := []ParkingSlot{
		{ID: 1, VehicleType: VehicleCar, Size: SizeLarge, Status: SlotAvailable},
		{ID: 2, VehicleType: VehicleTruck, Size: SizeSmall, Status: SlotAvailable},
	}

	assert.Nil(t, FirstCompatible(VehicleCar, SizeSmall, slots))
}

func TestFirstCompatible_SkipsUnavailable(t *testing.T) {
	slots := []ParkingSlot{
		{ID: 1, VehicleType: VehicleCar, Size: SizeSmall, Status: SlotOccupied},
		{ID: 2, VehicleType: VehicleCar, Size: SizeSmall, Status: SlotPending},
	}

	assert.Nil(t, FirstCompatible(VehicleCar, SizeSmall, slots))
}

func TestFirstCompatible_LowestIDWins(t *testing.T) {
	slots := []ParkingSlot{
		{ID: 7, SlotNumber: "C7", VehicleType: VehicleCar, Size: SizeSmall, Status: SlotAvailable},
		{ID: 3, SlotNumber: "C3", VehicleType: VehicleCar, Size: SizeSmall, Status: SlotAvailable},
		{ID: 5, SlotNumber: "C5", VehicleType: VehicleCar, Size: SizeSmall, Status: SlotAvailable},
	}

	got := FirstCompatible(VehicleCar, SizeSmall, slots)
	assert.NotNil(t, got)
	assert.Equal(t, 3, got.ID)
}

func TestFirstCompatible_EmptyInventory(t *testing.T) {
	assert.Nil(t, FirstCompatible(VehicleCar, SizeSmall, nil))
}
