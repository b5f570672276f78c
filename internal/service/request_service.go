package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/notify"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

// ErrRequestProcessed marks a transition attempted on a request that is no
// longer pending, including the loser of an approve/reject race.
var ErrRequestProcessed = errors.New("request not found or already processed")

var ErrVehicleNotFound = errors.New("vehicle not found")

// RequestService orchestrates the slot-request lifecycle: a request is
// created pending and moves exactly once to approved or rejected. The
// allocation itself (matching and the paired request/slot writes) runs
// inside the repository's transaction; this layer adds ownership checks,
// notification dispatch and the audit trail.
type RequestService struct {
	requestRepo repository.SlotRequestRepository
	vehicleRepo repository.VehicleRepository
	logRepo     repository.LogRepository
	mailer      Mailer
	now         func() time.Time
}

func NewRequestService(requestRepo repository.SlotRequestRepository, vehicleRepo repository.VehicleRepository, logRepo repository.LogRepository, mailer Mailer) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		vehicleRepo: vehicleRepo,
		logRepo:     logRepo,
		mailer:      mailer,
		now:         time.Now,
	}
}

// Submit files a pending request for one of the caller's own vehicles.
func (s *RequestService) Submit(ctx context.Context, actor domain.Actor, dto domain.CreateRequestDTO) (*domain.SlotRequest, error) {
	vehicle, err := s.vehicleRepo.FindByIDAndUser(ctx, dto.VehicleID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	req := &domain.SlotRequest{UserID: actor.ID, VehicleID: vehicle.ID}
	created, err := s.requestRepo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, actor.ID,
		fmt.Sprintf("Slot request %d created for vehicle %s", created.ID, vehicle.PlateNumber))
	return created, nil
}

// List returns the actor's own requests, or every request for admins,
// filtered by a case-insensitive substring search over vehicle plate,
// vehicle type and assigned slot number.
func (s *RequestService) List(ctx context.Context, actor domain.Actor, search string, page domain.Page) ([]domain.SlotRequest, domain.PageMeta, error) {
	filter := domain.RequestFilter{Search: search, Page: page.Normalize()}
	if !actor.IsAdmin() {
		filter.UserID = &actor.ID
	}

	requests, err := s.requestRepo.Find(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	total, err := s.requestRepo.Count(ctx, filter)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	recordAction(ctx, s.logRepo, actor.ID, "Slot requests list viewed")
	return requests, domain.NewPageMeta(total, filter.Page), nil
}

// UpdateOwn reassigns a still-pending request to another of the owner's
// vehicles. Processed requests are immutable.
func (s *RequestService) UpdateOwn(ctx context.Context, actor domain.Actor, requestID int, dto domain.UpdateRequestDTO) (*domain.SlotRequest, error) {
	if _, err := s.vehicleRepo.FindByIDAndUser(ctx, dto.VehicleID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	updated, err := s.requestRepo.UpdateVehicle(ctx, requestID, actor.ID, dto.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRequestProcessed
		}
		return nil, err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Slot request %d updated", requestID))
	return updated, nil
}

// DeleteOwn removes a still-pending request belonging to the caller.
func (s *RequestService) DeleteOwn(ctx context.Context, actor domain.Actor, requestID int) error {
	if err := s.requestRepo.DeletePending(ctx, requestID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRequestProcessed
		}
		return err
	}
	recordAction(ctx, s.logRepo, actor.ID, fmt.Sprintf("Slot request %d deleted", requestID))
	return nil
}

// Approve allocates a compatible available slot to a pending request. The
// repository runs the match and the paired writes atomically; when no slot
// matches, the request stays pending and the call is safely retried later.
// The approval email is best effort and its outcome never unwinds the
// transition.
func (s *RequestService) Approve(ctx context.Context, actor domain.Actor, requestID int) (*domain.SlotRequest, *domain.ParkingSlot, notify.DeliveryStatus, error) {
	req, slot, err := s.requestRepo.Approve(ctx, requestID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, "", ErrRequestProcessed
		}
		return nil, nil, "", err
	}

	mailStatus := notify.StatusFailed
	if req.UserEmail != "" {
		mailStatus = s.mailer.SendApproval(req.UserEmail, slot.SlotNumber)
	}
	recordAction(ctx, s.logRepo, actor.ID,
		fmt.Sprintf("Slot request %d approved for slot %s", requestID, slot.SlotNumber))
	return req, slot, mailStatus, nil
}

// Reject declines a pending request. No slot is touched; the reason is
// persisted and forwarded in the rejection email.
func (s *RequestService) Reject(ctx context.Context, actor domain.Actor, requestID int, reason string) (*domain.SlotRequest, notify.DeliveryStatus, error) {
	req, err := s.requestRepo.Reject(ctx, requestID, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrRequestProcessed
		}
		return nil, "", err
	}

	mailStatus := notify.StatusSkipped
	if reason != "" && req.UserEmail != "" {
		mailStatus = s.mailer.SendRejection(req.UserEmail, reason)
	}

	action := fmt.Sprintf("Slot request %d rejected", requestID)
	if reason != "" {
		action = fmt.Sprintf("%s with reason: %s", action, reason)
	}
	recordAction(ctx, s.logRepo, actor.ID, action)
	return req, mailStatus, nil
}
