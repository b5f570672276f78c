package service

import (
	"context"
	"fmt"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

type SlotService struct {
	slotRepo repository.ParkingSlotRepository
	logRepo  repository.LogRepository
}

func NewSlotService(slotRepo repository.ParkingSlotRepository, logRepo repository.LogRepository) *SlotService {
	return &SlotService{slotRepo: slotRepo, logRepo: logRepo}
}

func (s *SlotService) BulkCreate(ctx context.Context, actor domain.Actor, dto domain.BulkSlotsDTO) ([]domain.ParkingSlot, error) {
	slots := make([]domain.ParkingSlot, 0, len(dto.Slots))
	for _, in := range dto.Slots {
		if !domain.ValidVehicleType(domain.VehicleType(in.VehicleType)) {
			return nil, ErrInvalidVehicleType
		}
		if !domain.ValidVehicleSize(domain.VehicleSize(in.Size)) {
			return nil, ErrInvalidVehicleSize
		}
		slots = append(slots, domain.ParkingSlot{
			SlotNumber:  in.SlotNumber,
			Size:        domain.VehicleSize(in.Size),
			VehicleType: domain.VehicleType(in.VehicleType),
			Location:    in.Location,
			Status:      domain.SlotAvailable,
		})
	}

	created, err := s.slotRepo.BulkCreate(ctx, slots)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Bulk created %d slots", len(created)))
	return created, nil
}

func (s *SlotService) List(ctx context.Context, actor domain.Actor, search string, page domain.Page) ([]domain.ParkingSlot, domain.PageMeta, error) {
	filter := domain.SlotFilter{
		Search: search,
		// Users shopping for a slot only see open inventory.
		AvailableOnly: !actor.IsAdmin(),
		Page:          page.Normalize(),
	}

	slots, err := s.slotRepo.Find(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	total, err := s.slotRepo.Count(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	recordAction(ctx, s.logRepo, actor.ID, "Slots list viewed")
	return slots, domain.NewPageMeta(total, filter.Page), nil
}

func (s *SlotService) Update(ctx context.Context, actor domain.Actor, slotID int, dto domain.SlotDTO) (*domain.ParkingSlot, error) {
	if !domain.ValidVehicleType(domain.VehicleType(dto.VehicleType)) {
		return nil, ErrInvalidVehicleType
	}
	if !domain.ValidVehicleSize(domain.VehicleSize(dto.Size)) {
		return nil, ErrInvalidVehicleSize
	}

	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	slot.SlotNumber = dto.SlotNumber
	slot.Size = domain.VehicleSize(dto.Size)
	slot.VehicleType = domain.VehicleType(dto.VehicleType)
	slot.Location = dto.Location

	updated, err := s.slotRepo.Update(ctx, slot)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Slot %s updated", updated.SlotNumber))
	return updated, nil
}

func (s *SlotService) Delete(ctx context.Context, actor domain.Actor, slotID int) error {
	slot, err := s.slotRepo.FindByID(ctx, slotID)
	if err != nil {
		return err
	}
	if err := s.slotRepo.Delete(ctx, slot.ID); err != nil {
		return err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Slot %s deleted", slot.SlotNumber))
	return nil
}
