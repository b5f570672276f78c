package domain

// FirstCompatible returns the available slot whose vehicle type and size both
// exactly equal the vehicle's, or nil when none qualifies. Ties between
// equally compatible slots break on lowest slot ID so the pick is stable for
// a given inventory. No scoring and no location preference.
func FirstCompatible(vehicleType VehicleType, size VehicleSize, slots []ParkingSlot) *ParkingSlot {
	var best *ParkingSlot
	for i := range slots {
		s := &slots[i]
		if s.Status != SlotAvailable {
			continue
		}
		if s.VehicleType != vehicleType || s.Size != size {
			continue
		}
		if best == nil || s.ID < best.ID {
			best = s
		}
	}
	return best
}
