package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/notify"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

// memStore backs the fake repositories with the same guarded-transition
// semantics the live store enforces: approve and reject only land on a
// request that is still pending, and approve only claims a slot that is
// still available, all under one lock.
type memStore struct {
	mu       sync.Mutex
	requests map[int]*domain.SlotRequest
	slots    map[int]*domain.ParkingSlot
	vehicles map[int]*domain.Vehicle
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		requests: make(map[int]*domain.SlotRequest),
		slots:    make(map[int]*domain.ParkingSlot),
		vehicles: make(map[int]*domain.Vehicle),
		nextID:   1,
	}
}

func (m *memStore) addVehicle(userID int, plate string, vt domain.VehicleType, size domain.VehicleSize) *domain.Vehicle {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := &domain.Vehicle{ID: m.nextID, UserID: userID, PlateNumber: plate, VehicleType: vt, Size: size}
	m.vehicles[v.ID] = v
	m.nextID++
	return v
}

func (m *memStore) addSlot(number string, vt domain.VehicleType, size domain.VehicleSize, status domain.SlotStatus) *domain.ParkingSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &domain.ParkingSlot{ID: m.nextID, SlotNumber: number, VehicleType: vt, Size: size, Status: status}
	m.slots[s.ID] = s
	m.nextID++
	return s
}

func (m *memStore) slot(id int) domain.ParkingSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.slots[id]
}

func (m *memStore) request(id int) domain.SlotRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.requests[id]
}

type fakeRequestRepo struct {
	store *memStore
	// userEmail stamps the joined display field on returned requests.
	userEmail string
}

func (r *fakeRequestRepo) Create(_ context.Context, req *domain.SlotRequest) (*domain.SlotRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := *req
	stored.ID = r.store.nextID
	stored.RequestStatus = domain.RequestPending
	stored.CreatedAt = time.Now()
	stored.UserEmail = r.userEmail
	r.store.requests[stored.ID] = &stored
	r.store.nextID++
	out := stored
	return &out, nil
}

func (r *fakeRequestRepo) FindByID(_ context.Context, id int) (*domain.SlotRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *req
	return &out, nil
}

func (r *fakeRequestRepo) UpdateVehicle(_ context.Context, id, userID, vehicleID int) (*domain.SlotRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok || req.UserID != userID || req.RequestStatus != domain.RequestPending {
		return nil, repository.ErrNotFound
	}
	req.VehicleID = vehicleID
	out := *req
	return &out, nil
}

func (r *fakeRequestRepo) DeletePending(_ context.Context, id, userID int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok || req.UserID != userID || req.RequestStatus != domain.RequestPending {
		return repository.ErrNotFound
	}
	delete(r.store.requests, id)
	return nil
}

func (r *fakeRequestRepo) Approve(_ context.Context, id int, approvedAt time.Time) (*domain.SlotRequest, *domain.ParkingSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	req, ok := r.store.requests[id]
	if !ok || req.RequestStatus != domain.RequestPending {
		return nil, nil, repository.ErrNotFound
	}

	vehicle := r.store.vehicles[req.VehicleID]
	candidates := make([]domain.ParkingSlot, 0, len(r.store.slots))
	for _, s := range r.store.slots {
		candidates = append(candidates, *s)
	}
	pick := domain.FirstCompatible(vehicle.VehicleType, vehicle.Size, candidates)
	if pick == nil {
		return nil, nil, repository.ErrNoCompatibleSlot
	}

	slot := r.store.slots[pick.ID]
	slot.Status = domain.SlotOccupied
	req.RequestStatus = domain.RequestApproved
	req.SlotID = null.IntFrom(int64(slot.ID))
	req.SlotNumber = null.StringFrom(slot.SlotNumber)
	req.ApprovedAt = null.TimeFrom(approvedAt)
	req.UserEmail = r.userEmail

	outReq := *req
	outSlot := *slot
	return &outReq, &outSlot, nil
}

func (r *fakeRequestRepo) Reject(_ context.Context, id int, reason string) (*domain.SlotRequest, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	req, ok := r.store.requests[id]
	if !ok || req.RequestStatus != domain.RequestPending {
		return nil, repository.ErrNotFound
	}
	req.RequestStatus = domain.RequestRejected
	if reason != "" {
		req.RejectionReason = null.StringFrom(reason)
	}
	req.UserEmail = r.userEmail
	out := *req
	return &out, nil
}

// matching applies the user scope and the case-insensitive substring search
// over plate, vehicle type and assigned slot number, the same columns the
// live store's ILIKE conditions cover, sorted ascending by id.
func (r *fakeRequestRepo) matching(filter domain.RequestFilter) []domain.SlotRequest {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.SlotRequest
	for _, req := range r.store.requests {
		if filter.UserID != nil && req.UserID != *filter.UserID {
			continue
		}
		row := *req
		if v, ok := r.store.vehicles[row.VehicleID]; ok {
			row.PlateNumber = v.PlateNumber
			row.VehicleType = v.VehicleType
			row.VehicleSize = v.Size
		}
		if filter.Search != "" && !requestMatchesSearch(row, filter.Search) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func requestMatchesSearch(req domain.SlotRequest, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(req.PlateNumber), s) ||
		strings.Contains(strings.ToLower(string(req.VehicleType)), s) ||
		(req.SlotNumber.Valid && strings.Contains(strings.ToLower(req.SlotNumber.String), s))
}

func (r *fakeRequestRepo) Find(_ context.Context, filter domain.RequestFilter) ([]domain.SlotRequest, error) {
	matches := r.matching(filter)
	start := filter.Offset()
	if start > len(matches) {
		start = len(matches)
	}
	end := start + filter.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], nil
}

func (r *fakeRequestRepo) Count(_ context.Context, filter domain.RequestFilter) (int, error) {
	return len(r.matching(filter)), nil
}

type fakeVehicleRepo struct {
	store *memStore
}

func (r *fakeVehicleRepo) Create(_ context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	out := *r.store.addVehicle(v.UserID, v.PlateNumber, v.VehicleType, v.Size)
	return &out, nil
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id int) (*domain.Vehicle, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v, ok := r.store.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (r *fakeVehicleRepo) FindByIDAndUser(_ context.Context, id, userID int) (*domain.Vehicle, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	v, ok := r.store.vehicles[id]
	if !ok || v.UserID != userID {
		return nil, repository.ErrNotFound
	}
	out := *v
	return &out, nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	return v, nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id int) error { return nil }

func (r *fakeVehicleRepo) Find(_ context.Context, _ domain.VehicleFilter) ([]domain.Vehicle, error) {
	return nil, nil
}

func (r *fakeVehicleRepo) Count(_ context.Context, _ domain.VehicleFilter) (int, error) {
	return 0, nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []domain.LogEntry
}

func (r *fakeLogRepo) Create(_ context.Context, entry *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) Find(_ context.Context, _ domain.LogFilter) ([]domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *fakeLogRepo) Count(_ context.Context, _ domain.LogFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), nil
}

type sentMail struct {
	kind, to, detail string
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []sentMail
	status notify.DeliveryStatus
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{status: notify.StatusSent}
}

func (m *fakeMailer) record(kind, to, detail string) notify.DeliveryStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: kind, to: to, detail: detail})
	return m.status
}

func (m *fakeMailer) SendApproval(to, slotNumber string) notify.DeliveryStatus {
	return m.record("approval", to, slotNumber)
}

func (m *fakeMailer) SendRejection(to, reason string) notify.DeliveryStatus {
	return m.record("rejection", to, reason)
}

func (m *fakeMailer) SendOTP(to, code string) notify.DeliveryStatus {
	return m.record("otp", to, code)
}

func newRequestFixture(t *testing.T) (*RequestService, *memStore, *fakeMailer) {
	t.Helper()
	store := newMemStore()
	mailer := newFakeMailer()
	reqRepo := &fakeRequestRepo{store: store, userEmail: "driver@example.com"}
	svc := NewRequestService(reqRepo, &fakeVehicleRepo{store: store}, &fakeLogRepo{}, mailer)
	return svc, store, mailer
}

var (
	driver = domain.Actor{ID: 1, Role: domain.RoleUser}
	admin  = domain.Actor{ID: 99, Role: domain.RoleAdmin}
)

func TestSubmit_OwnVehicle(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)

	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.RequestStatus)
	assert.Equal(t, driver.ID, req.UserID)
	assert.False(t, req.SlotID.Valid)
}

func TestSubmit_ForeignVehicleRejected(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(2, "RAD999Z", domain.VehicleCar, domain.SizeSmall)

	_, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestApprove_AssignsCompatibleSlot(t *testing.T) {
	svc, store, mailer := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	slot := store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	approved, gotSlot, mailStatus, err := svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestApproved, approved.RequestStatus)
	assert.Equal(t, int64(slot.ID), approved.SlotID.Int64)
	assert.Equal(t, "A1", approved.SlotNumber.String)
	assert.True(t, approved.ApprovedAt.Valid)
	assert.Equal(t, domain.SlotOccupied, gotSlot.Status)
	assert.Equal(t, domain.SlotOccupied, store.slot(slot.ID).Status)

	assert.Equal(t, notify.StatusSent, mailStatus)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "approval", mailer.sent[0].kind)
	assert.Equal(t, "driver@example.com", mailer.sent[0].to)
	assert.Equal(t, "A1", mailer.sent[0].detail)
}

func TestApprove_NoCompatibleSlotKeepsRequestPending(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAB456B", domain.VehicleTruck, domain.SizeLarge)
	// Only a car slot exists, so the truck request cannot be placed.
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	_, _, _, err = svc.Approve(context.Background(), admin, req.ID)
	assert.ErrorIs(t, err, repository.ErrNoCompatibleSlot)
	assert.Equal(t, domain.RequestPending, store.request(req.ID).RequestStatus)

	// Once a matching slot appears the same request approves cleanly.
	store.addSlot("T1", domain.VehicleTruck, domain.SizeLarge, domain.SlotAvailable)
	approved, slot, _, err := svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, approved.RequestStatus)
	assert.Equal(t, "T1", slot.SlotNumber)
}

func TestApprove_PicksLowestIDAmongEqualMatches(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	first := store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	store.addSlot("A2", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	_, slot, _, err := svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, slot.ID)
}

func TestApprove_AlreadyProcessed(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	_, _, _, err = svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)

	_, _, _, err = svc.Approve(context.Background(), admin, req.ID)
	assert.ErrorIs(t, err, ErrRequestProcessed)
}

func TestApprove_MailFailureDoesNotUnwindApproval(t *testing.T) {
	svc, store, mailer := newRequestFixture(t)
	mailer.status = notify.StatusFailed
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	approved, _, mailStatus, err := svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, notify.StatusFailed, mailStatus)
	assert.Equal(t, domain.RequestApproved, approved.RequestStatus)
}

func TestReject_PersistsReasonAndTouchesNoSlot(t *testing.T) {
	svc, store, mailer := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	slot := store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	rejected, mailStatus, err := svc.Reject(context.Background(), admin, req.ID, "no space")
	require.NoError(t, err)

	assert.Equal(t, domain.RequestRejected, rejected.RequestStatus)
	assert.Equal(t, "no space", rejected.RejectionReason.String)
	assert.False(t, rejected.SlotID.Valid)
	assert.Equal(t, domain.SlotAvailable, store.slot(slot.ID).Status)

	assert.Equal(t, notify.StatusSent, mailStatus)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "rejection", mailer.sent[0].kind)
	assert.Equal(t, "no space", mailer.sent[0].detail)
}

func TestReject_EmptyReasonSendsNoMail(t *testing.T) {
	svc, store, mailer := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	rejected, mailStatus, err := svc.Reject(context.Background(), admin, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, rejected.RequestStatus)
	assert.False(t, rejected.RejectionReason.Valid)
	assert.Equal(t, notify.StatusSkipped, mailStatus)
	assert.Empty(t, mailer.sent)
}

func TestUpdateOwn_OnlyWhilePending(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v1 := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	v2 := store.addVehicle(driver.ID, "RAD456B", domain.VehicleMotorcycle, domain.SizeSmall)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v1.ID})
	require.NoError(t, err)

	updated, err := svc.UpdateOwn(context.Background(), driver, req.ID, domain.UpdateRequestDTO{VehicleID: v2.ID})
	require.NoError(t, err)
	assert.Equal(t, v2.ID, updated.VehicleID)

	// Flip it back and approve, then further edits must be refused.
	_, err = svc.UpdateOwn(context.Background(), driver, req.ID, domain.UpdateRequestDTO{VehicleID: v1.ID})
	require.NoError(t, err)
	_, _, _, err = svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)

	_, err = svc.UpdateOwn(context.Background(), driver, req.ID, domain.UpdateRequestDTO{VehicleID: v2.ID})
	assert.ErrorIs(t, err, ErrRequestProcessed)
}

func TestDeleteOwn_OnlyWhilePending(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	_, _, _, err = svc.Approve(context.Background(), admin, req.ID)
	require.NoError(t, err)

	err = svc.DeleteOwn(context.Background(), driver, req.ID)
	assert.ErrorIs(t, err, ErrRequestProcessed)
}

func TestList_UserScopedToOwnRequests(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	mine := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	other := store.addVehicle(2, "RAD999Z", domain.VehicleCar, domain.SizeSmall)
	_, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: mine.ID})
	require.NoError(t, err)
	otherActor := domain.Actor{ID: 2, Role: domain.RoleUser}
	_, err = svc.Submit(context.Background(), otherActor, domain.CreateRequestDTO{VehicleID: other.ID})
	require.NoError(t, err)

	requests, meta, err := svc.List(context.Background(), driver, "", domain.Page{})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, driver.ID, requests[0].UserID)
	assert.Equal(t, 1, meta.TotalItems)

	all, meta, err := svc.List(context.Background(), admin, "", domain.Page{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, meta.TotalItems)
}

func TestList_SearchFiltersAndPaginates(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	carV := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	truckV := store.addVehicle(driver.ID, "RBX777B", domain.VehicleTruck, domain.SizeLarge)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)

	carReq, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: carV.ID})
	require.NoError(t, err)
	truckReq, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: truckV.ID})
	require.NoError(t, err)
	_, _, _, err = svc.Approve(context.Background(), admin, carReq.ID)
	require.NoError(t, err)

	// Plate substring, case-insensitive.
	results, meta, err := svc.List(context.Background(), admin, "rad", domain.Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, carReq.ID, results[0].ID)
	assert.Equal(t, 1, meta.TotalItems)

	// Assigned slot number, only the approved request carries one.
	results, _, err = svc.List(context.Background(), admin, "a1", domain.Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, carReq.ID, results[0].ID)

	// Vehicle type.
	results, _, err = svc.List(context.Background(), admin, "TRUCK", domain.Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, truckReq.ID, results[0].ID)

	// No match.
	results, meta, err = svc.List(context.Background(), admin, "zzz", domain.Page{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, meta.TotalItems)

	// One-row page windows in ascending id order.
	first, meta, err := svc.List(context.Background(), admin, "", domain.Page{PageNum: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, carReq.ID, first[0].ID)
	assert.Equal(t, 2, meta.TotalItems)
	assert.Equal(t, 2, meta.TotalPages)

	second, _, err := svc.List(context.Background(), admin, "", domain.Page{PageNum: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, truckReq.ID, second[0].ID)
}

func TestApprove_ConcurrentOnSingleSlot(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v1 := store.addVehicle(1, "RAD111A", domain.VehicleCar, domain.SizeSmall)
	v2 := store.addVehicle(2, "RAD222B", domain.VehicleCar, domain.SizeSmall)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)

	r1, err := svc.Submit(context.Background(), domain.Actor{ID: 1, Role: domain.RoleUser}, domain.CreateRequestDTO{VehicleID: v1.ID})
	require.NoError(t, err)
	r2, err := svc.Submit(context.Background(), domain.Actor{ID: 2, Role: domain.RoleUser}, domain.CreateRequestDTO{VehicleID: v2.ID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int{r1.ID, r2.ID} {
		wg.Add(1)
		go func(i, id int) {
			defer wg.Done()
			_, _, _, errs[i] = svc.Approve(context.Background(), admin, id)
		}(i, id)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, repository.ErrNoCompatibleSlot)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
}

func TestApproveRejectRace_ExactlyOneWins(t *testing.T) {
	svc, store, _ := newRequestFixture(t)
	v := store.addVehicle(driver.ID, "RAD123A", domain.VehicleCar, domain.SizeSmall)
	store.addSlot("A1", domain.VehicleCar, domain.SizeSmall, domain.SlotAvailable)
	req, err := svc.Submit(context.Background(), driver, domain.CreateRequestDTO{VehicleID: v.ID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var approveErr, rejectErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, _, approveErr = svc.Approve(context.Background(), admin, req.ID)
	}()
	go func() {
		defer wg.Done()
		_, _, rejectErr = svc.Reject(context.Background(), admin, req.ID, "no space")
	}()
	wg.Wait()

	if approveErr == nil {
		assert.ErrorIs(t, rejectErr, ErrRequestProcessed)
		assert.Equal(t, domain.RequestApproved, store.request(req.ID).RequestStatus)
	} else {
		assert.ErrorIs(t, approveErr, ErrRequestProcessed)
		require.NoError(t, rejectErr)
		assert.Equal(t, domain.RequestRejected, store.request(req.ID).RequestStatus)
	}
}
