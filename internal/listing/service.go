package listing

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
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrInvalidStatus   = errors.New("invalid vehicle status")
)

// ValidationError 字段级校验错误。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Store 列表存储契约。*Repo 是生产实现；测试用内存假实现。
type Store interface {
	Create(ctx context.Context, v *Vehicle) error
	Save(ctx context.Context, v *Vehicle) error
	FindByID(ctx context.Context, id string) (*Vehicle, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) (*Result, error)
	IncrementCounter(ctx context.Context, id, field string) (int64, error)
	Brands(ctx context.Context) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
}

var _ Store = (*Repo)(nil)

// Service 封装车辆列表领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// BrowseSale 公开的在售车辆查询：强制默认可见性（不允许 include_all 旁路），
// 价格语义为售价。
func (s *Service) BrowseSale(ctx context.Context, q Query) (*Result, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	q.IncludeAll = false
	q.RentalRates = false
	return s.store.Search(ctx, q)
}

// BrowseRentals 公开的可租车辆查询：强制默认可见性 + 出租开关过滤，
// 价格语义为日租金。
func (s *Service) BrowseRentals(ctx context.Context, q Query) (*Result, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	q.IncludeAll = false
	q.AvailableForRent = true
	q.RentalRates = true
	return s.store.Search(ctx, q)
}

// AdminSearch 后台查询：允许 include_all 旁路。只能从鉴权后的入口调用。
func (s *Service) AdminSearch(ctx context.Context, q Query) (*Result, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.Search(ctx, q)
}

// GetPublic 公开详情：草稿按不存在处理。
func (s *Service) GetPublic(ctx context.Context, id string) (*Vehicle, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.PubliclyVisible() {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Vehicle, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &ValidationError{Field: "id", Reason: "required"}
	}
	v, err := s.store.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// RecordView 浏览计数 +1，返回最新值。
func (s *Service) RecordView(ctx context.Context, id string) (int64, error) {
	return s.bump(ctx, id, "views")
}

// RecordContact 联系计数 +1，返回最新值。
func (s *Service) RecordContact(ctx context.Context, id string) (int64, error) {
	return s.bump(ctx, id, "contacts")
}

func (s *Service) bump(ctx context.Context, id, field string) (int64, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, &ValidationError{Field: "id", Reason: "required"}
	}
	n, err := s.store.IncrementCounter(ctx, id, field)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrVehicleNotFound
	}
	return n, err
}

// Facets 过滤 UI 需要的 distinct 值清单。
type Facets struct {
	Brands []string `json:"brands"`
	Cities []string `json:"cities"`
}

func (s *Service) Facets(ctx context.Context) (*Facets, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	brands, err := s.store.Brands(ctx)
	if err != nil {
		return nil, err
	}
	cities, err := s.store.Cities(ctx)
	if err != nil {
		return nil, err
	}
	return &Facets{Brands: brands, Cities: cities}, nil
}

// CreateInput 后台创建车辆的入参。
type CreateInput struct {
	Category Category

	Brand        string
	Model        string
	Title        string
	Year         int
	Color        string
	Kilometers   int64
	FuelType     string
	Transmission string
	City         string

	PurchasePrice   float64
	SellingPrice    float64
	RentPricePerDay float64

	AvailableForRent bool
	Status           Status
	Featured         bool
	Images           []string
}

func (in *CreateInput) validate() error {
	if !ValidCategory(in.Category) {
		return &ValidationError{Field: "category", Reason: "must be bike or car"}
	}
	if strings.TrimSpace(in.Brand) == "" {
		return &ValidationError{Field: "brand", Reason: "required"}
	}
	if strings.TrimSpace(in.Model) == "" {
		return &ValidationError{Field: "model", Reason: "required"}
	}
	if in.SellingPrice < 0 || in.PurchasePrice < 0 || in.RentPricePerDay < 0 {
		return &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if in.Status == "" {
		in.Status = StatusDraft
	}
	if !ValidStatus(in.Status) {
		return &ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

// CreateVehicle 后台创建。默认进入 draft（除非显式给定状态）。
func (s *Service) CreateVehicle(ctx context.Context, in CreateInput) (*Vehicle, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	v := &Vehicle{
		ID:               uuid.NewString(),
		Category:         in.Category,
		Brand:            strings.TrimSpace(in.Brand),
		Model:            strings.TrimSpace(in.Model),
		Title:            strings.TrimSpace(in.Title),
		Year:             in.Year,
		Color:            strings.TrimSpace(in.Color),
		Kilometers:       in.Kilometers,
		FuelType:         strings.TrimSpace(in.FuelType),
		Transmission:     strings.TrimSpace(in.Transmission),
		City:             strings.TrimSpace(in.City),
		PurchasePrice:    in.PurchasePrice,
		SellingPrice:     in.SellingPrice,
		RentPricePerDay:  in.RentPricePerDay,
		AvailableForRent: in.AvailableForRent,
		Status:           in.Status,
		Featured:         in.Featured,
		Images:           in.Images,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// UpdateVehicle 后台整单更新（按字段集全量覆盖，单次 Save 保证 all-or-nothing）。
func (s *Service) UpdateVehicle(ctx context.Context, id string, in CreateInput) (*Vehicle, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	v.Category = in.Category
	v.Brand = strings.TrimSpace(in.Brand)
	v.Model = strings.TrimSpace(in.Model)
	v.Title = strings.TrimSpace(in.Title)
	v.Year = in.Year
	v.Color = strings.TrimSpace(in.Color)
	v.Kilometers = in.Kilometers
	v.FuelType = strings.TrimSpace(in.FuelType)
	v.Transmission = strings.TrimSpace(in.Transmission)
	v.City = strings.TrimSpace(in.City)
	v.PurchasePrice = in.PurchasePrice
	v.SellingPrice = in.SellingPrice
	v.RentPricePerDay = in.RentPricePerDay
	v.AvailableForRent = in.AvailableForRent
	v.Status = in.Status
	v.Featured = in.Featured
	v.Images = in.Images

	if err := s.store.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarkSold 标记售出并记录售出时间。
func (s *Service) MarkSold(ctx context.Context, id string, now time.Time) (*Vehicle, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusSold {
		return v, nil
	}
	v.Status = StatusSold
	t := now
	v.SoldAt = &t
	if err := s.store.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteVehicle 后台删除。
func (s *Service) DeleteVehicle(ctx context.Context, id string) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return &ValidationError{Field: "id", Reason: "required"}
	}
	err := s.store.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrVehicleNotFound
	}
	return err
}
