package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

var ErrInvalidVehicleType = errors.New("vehicle type must be one of: car, truck, motorcycle")
var ErrInvalidVehicleSize = errors.New("size must be one of: small, medium, large")

type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	logRepo     repository.LogRepository
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, logRepo repository.LogRepository) *VehicleService {
	return &VehicleService{vehicleRepo: vehicleRepo, logRepo: logRepo}
}

func validateVehicleDTO(dto domain.VehicleDTO) error {
	if !domain.ValidVehicleType(domain.VehicleType(dto.VehicleType)) {
		return ErrInvalidVehicleType
	}
	if !domain.ValidVehicleSize(domain.VehicleSize(dto.Size)) {
		return ErrInvalidVehicleSize
	}
	return nil
}

func (s *VehicleService) Create(ctx context.Context, actor domain.Actor, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	if err := validateVehicleDTO(dto); err != nil {
		return nil, err
	}

	vehicle := &domain.Vehicle{
		UserID:          actor.ID,
		PlateNumber:     dto.PlateNumber,
		VehicleType:     domain.VehicleType(dto.VehicleType),
		Size:            domain.VehicleSize(dto.Size),
		OtherAttributes: dto.OtherAttributes,
	}
	created, err := s.vehicleRepo.Create(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Vehicle %s created", created.PlateNumber))
	return created, nil
}

func (s *VehicleService) List(ctx context.Context, actor domain.Actor, search string, page domain.Page) ([]domain.Vehicle, domain.PageMeta, error) {
	filter := domain.VehicleFilter{Search: search, Page: page.Normalize()}
	if !actor.IsAdmin() {
		filter.UserID = &actor.ID
	}

	vehicles, err := s.vehicleRepo.Find(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	total, err := s.vehicleRepo.Count(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	recordAction(ctx, s.logRepo, actor.ID, "Vehicles list viewed")
	return vehicles, domain.NewPageMeta(total, filter.Page), nil
}

// loadOwned fetches a vehicle visible to the actor: admins see every
// vehicle, users only their own.
func (s *VehicleService) loadOwned(ctx context.Context, actor domain.Actor, vehicleID int) (*domain.Vehicle, error) {
	if actor.IsAdmin() {
		return s.vehicleRepo.FindByID(ctx, vehicleID)
	}
	return s.vehicleRepo.FindByIDAndUser(ctx, vehicleID, actor.ID)
}

func (s *VehicleService) Update(ctx context.Context, actor domain.Actor, vehicleID int, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	if err := validateVehicleDTO(dto); err != nil {
		return nil, err
	}

	vehicle, err := s.loadOwned(ctx, actor, vehicleID)
	if err != nil {
		return nil, err
	}
	vehicle.PlateNumber = dto.PlateNumber
	vehicle.VehicleType = domain.VehicleType(dto.VehicleType)
	vehicle.Size = domain.VehicleSize(dto.Size)
	if dto.OtherAttributes != nil {
		vehicle.OtherAttributes = dto.OtherAttributes
	}

	updated, err := s.vehicleRepo.Update(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Vehicle %s updated", updated.PlateNumber))
	return updated, nil
}

func (s *VehicleService) Delete(ctx context.Context, actor domain.Actor, vehicleID int) error {
	vehicle, err := s.loadOwned(ctx, actor, vehicleID)
	if err != nil {
		return err
	}
	if err := s.vehicleRepo.Delete(ctx, vehicle.ID); err != nil {
		return err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Vehicle %s deleted", vehicle.PlateNumber))
	return nil
}
