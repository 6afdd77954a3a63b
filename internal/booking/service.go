package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound    = errors.New("booking not found")
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrVehicleNotRentable = errors.New("vehicle not available for rent")
)

// ValidationError 字段级校验错误。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Store 预订存储契约。*Repo 是生产实现；测试用内存假实现。
type Store interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	Save(ctx context.Context, b *Booking) error
	List(ctx context.Context, f ListFilter) ([]Booking, int64, error)
	FindActiveOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) ([]Booking, error)
	CreateIfAvailable(ctx context.Context, b *Booking) ([]Booking, error)
}

var _ Store = (*Repo)(nil)

// RentalVehicle 预订侧需要的最小车辆信息。
type RentalVehicle struct {
	ID              string
	RentPricePerDay float64
	Rentable        bool // 出租开关开启且未售出
}

// VehicleSource 车辆信息来源（由 listing 侧适配）。
type VehicleSource interface {
	RentalVehicle(ctx context.Context, id string) (*RentalVehicle, error)
}

// Service 封装预订领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	store    Store
	vehicles VehicleSource
}

func NewService(store Store, vehicles VehicleSource) *Service {
	return &Service{store: store, vehicles: vehicles}
}

// CreateInput 创建预订的入参。日期只取日历日部分。
type CreateInput struct {
	VehicleID     string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	StartDate     time.Time
	EndDate       time.Time
	Notes         string
}

// Create 创建预订：校验 -> 服务端重算天数/总价 -> 试探性冲突检查 ->
// 事务内带锁重查并插入。两个创建入口（公开/后台）都走这一条路径。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, error) {
	if s == nil || s.store == nil || s.vehicles == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	vehicleID := strings.TrimSpace(in.VehicleID)
	if vehicleID == "" {
		return nil, &ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, &ValidationError{Field: "customer_name", Reason: "required"}
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, &ValidationError{Field: "dates", Reason: "start_date and end_date required"}
	}

	start := NormalizeDate(in.StartDate)
	end := NormalizeDate(in.EndDate)
	if start.After(end) {
		return nil, &ValidationError{Field: "dates", Reason: "start_date must be <= end_date"}
	}

	v, err := s.vehicles.RentalVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVehicleNotFound
	}
	if !v.Rentable {
		return nil, ErrVehicleNotRentable
	}

	// 试探性检查：即时读的建议结论，真正的判定在 CreateIfAvailable 的锁内重查
	existing, err := s.store.FindActiveOverlapping(ctx, vehicleID, start, end, "")
	if err != nil {
		return nil, err
	}
	if conflicts := ConflictsAmong(existing, start, end, ""); len(conflicts) > 0 {
		return nil, &ConflictError{VehicleID: vehicleID, Conflicts: conflicts}
	}

	days := DaysBetween(start, end)
	b := &Booking{
		ID:            uuid.NewString(),
		VehicleID:     vehicleID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		StartDate:     start,
		EndDate:       end,
		TotalDays:     days,
		TotalPrice:    float64(days) * v.RentPricePerDay,
		Status:        StatusPending,
		Notes:         strings.TrimSpace(in.Notes),
	}

	raced, err := s.store.CreateIfAvailable(ctx, b)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(raced) > 0 {
		// 输掉了检查与插入之间的竞态：按冲突处理，不是故障
		return nil, &ConflictError{VehicleID: vehicleID, Conflicts: ConflictsAmong(raced, start, end, "")}
	}
	return b, nil
}

// CheckAvailability 只读可用性查询：返回与候选区间冲突的区间列表（可为空）。
func (s *Service) CheckAvailability(ctx context.Context, vehicleID string, start, end time.Time, excludeBookingID string) ([]Interval, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	vehicleID = strings.TrimSpace(vehicleID)
	if vehicleID == "" {
		return nil, &ValidationError{Field: "vehicle_id", Reason: "required"}
	}
	if start.IsZero() || end.IsZero() {
		return nil, &ValidationError{Field: "dates", Reason: "start_date and end_date required"}
	}
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	if start.After(end) {
		return nil, &ValidationError{Field: "dates", Reason: "start_date must be <= end_date"}
	}

	existing, err := s.store.FindActiveOverlapping(ctx, vehicleID, start, end, excludeBookingID)
	if err != nil {
		return nil, err
	}
	return ConflictsAmong(existing, start, end, excludeBookingID), nil
}

// Get 按 ID 取预订。
func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}
	b, err := s.store.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateStatus 根据状态机规则进行状态流转（后台操作）。
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status, now time.Time) (*Booking, error) {
	if !ValidStatus(to) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ApplyTransition(b, to, now); err != nil {
		return nil, &ValidationError{Field: "status", Reason: err.Error()}
	}
	if err := s.store.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List 后台预订列表。
func (s *Service) List(ctx context.Context, f ListFilter) ([]Booking, int64, error) {
	if s == nil || s.store == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.store.List(ctx, f)
}
