package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"
)

// fakeStore 内存假实现：CreateIfAvailable 整体持锁，模拟存储层的串行化写入。
type fakeStore struct {
	mu       sync.Mutex
	bookings map[string]*Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{bookings: make(map[string]*Booking)}
}

func (f *fakeStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) Save(ctx context.Context, b *Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter ListFilter) ([]Booking, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Booking
	for _, b := range f.bookings {
		if filter.VehicleID != "" && b.VehicleID != filter.VehicleID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) overlappingLocked(vehicleID string, start, end time.Time, excludeID string) []Booking {
	var out []Booking
	for _, b := range f.bookings {
		if b.VehicleID != vehicleID {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Status.Active() {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, start, end) {
			out = append(out, *b)
		}
	}
	return out
}

func (f *fakeStore) FindActiveOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlappingLocked(vehicleID, start, end, excludeID), nil
}

func (f *fakeStore) CreateIfAvailable(ctx context.Context, b *Booking) ([]Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conflicts := f.overlappingLocked(b.VehicleID, b.StartDate, b.EndDate, "")
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil, nil
}

// fakeVehicles 固定返回一辆可租车辆。
type fakeVehicles struct {
	vehicles map[string]*RentalVehicle
}

func (f *fakeVehicles) RentalVehicle(ctx context.Context, id string) (*RentalVehicle, error) {
	v, ok := f.vehicles[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	vehicles := &fakeVehicles{vehicles: map[string]*RentalVehicle{
		"v1": {ID: "v1", RentPricePerDay: 100, Rentable: true},
		"v2": {ID: "v2", RentPricePerDay: 50, Rentable: false},
	}}
	return NewService(store, vehicles), store
}

func TestCreateBookingRecomputesDaysAndPrice(t *testing.T) {
	svc, _ := newTestService()

	b, err := svc.Create(context.Background(), CreateInput{
		VehicleID:    "v1",
		CustomerName: "Ravi",
		StartDate:    date(2024, 1, 1),
		EndDate:      date(2024, 1, 5),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected new booking pending, got %s", b.Status)
	}
	if b.TotalDays != 5 {
		t.Fatalf("expected 5 days, got %d", b.TotalDays)
	}
	if b.TotalPrice != 500 {
		t.Fatalf("expected total price 500, got %v", b.TotalPrice)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	var ve *ValidationError
	_, err := svc.Create(ctx, CreateInput{CustomerName: "x", StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2)})
	if !errors.As(err, &ve) || ve.Field != "vehicle_id" {
		t.Fatalf("expected vehicle_id validation error, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "x",
		StartDate: date(2024, 1, 10), EndDate: date(2024, 1, 5),
	})
	if !errors.As(err, &ve) || ve.Field != "dates" {
		t.Fatalf("expected dates validation error for start>end, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{
		VehicleID: "v2", CustomerName: "x",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2),
	})
	if !errors.Is(err, ErrVehicleNotRentable) {
		t.Fatalf("expected ErrVehicleNotRentable, got %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{
		VehicleID: "missing", CustomerName: "x",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2),
	})
	if !errors.Is(err, ErrVehicleNotFound) {
		t.Fatalf("expected ErrVehicleNotFound, got %v", err)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "a",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5),
	}); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "b",
		StartDate: date(2024, 1, 3), EndDate: date(2024, 1, 8),
	})
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(ce.Conflicts) != 1 {
		t.Fatalf("expected 1 conflicting interval, got %d", len(ce.Conflicts))
	}
	if !ce.Conflicts[0].Start.Equal(date(2024, 1, 1)) || !ce.Conflicts[0].End.Equal(date(2024, 1, 5)) {
		t.Fatalf("conflict interval mismatch: %+v", ce.Conflicts[0])
	}
}

// 边界相接按冲突处理（可测试的策略属性）。
func TestCreateBookingTouchingRangesConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "a",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5),
	}); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	var ce *ConflictError
	_, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "b",
		StartDate: date(2024, 1, 5), EndDate: date(2024, 1, 10),
	})
	if !errors.As(err, &ce) {
		t.Fatalf("expected touching ranges to conflict, got %v", err)
	}

	// 隔一天则成功
	if _, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "c",
		StartDate: date(2024, 1, 6), EndDate: date(2024, 1, 10),
	}); err != nil {
		t.Fatalf("non-touching ranges must not conflict: %v", err)
	}
}

// 取消后的预订退出冲突检测：状态实时生效，不缓存。
func TestCancelledBookingFreesRange(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b1, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "a",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, b1.ID, StatusCancelled, time.Now()); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	if _, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "b",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5),
	}); err != nil {
		t.Fatalf("expected freed range after cancellation, got %v", err)
	}
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "a",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 2),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// pending -> completed 不允许
	var ve *ValidationError
	if _, err := svc.UpdateStatus(ctx, b.ID, StatusCompleted, time.Now()); !errors.As(err, &ve) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, b.ID, StatusConfirmed, time.Now()); err != nil {
		t.Fatalf("pending -> confirmed: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, b.ID, StatusCompleted, time.Now()); err != nil {
		t.Fatalf("confirmed -> completed: %v", err)
	}
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.UpdateStatus(context.Background(), "missing", StatusConfirmed, time.Now()); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

// 并发创建同一区间：恰好一个成功，其余收到冲突。
func TestConcurrentCreateOnlyOneWins(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	var successes, conflicts int64
	var mu sync.Mutex

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateInput{
				VehicleID: "v1", CustomerName: "racer",
				StartDate: date(2024, 2, 1), EndDate: date(2024, 2, 3),
			})
			mu.Lock()
			defer mu.Unlock()
			var ce *ConflictError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &ce):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly 1 successful booking, got %d", successes)
	}
	if conflicts != n-1 {
		t.Fatalf("expected %d conflicts, got %d", n-1, conflicts)
	}
	if len(store.bookings) != 1 {
		t.Fatalf("expected a single persisted booking, got %d", len(store.bookings))
	}
}

func TestCheckAvailabilityReadOnly(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{
		VehicleID: "v1", CustomerName: "a",
		StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	before := len(store.bookings)

	conflicts, err := svc.CheckAvailability(ctx, "v1", date(2024, 1, 4), date(2024, 1, 6), "")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(conflicts))
	}
	if len(store.bookings) != before {
		t.Fatalf("availability check must not mutate state")
	}

	free, err := svc.CheckAvailability(ctx, "v1", date(2024, 1, 6), date(2024, 1, 8), "")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(free))
	}
}
