package soldvehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("sold vehicle record not found")

// ValidationError 入参校验失败，带字段级信息。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Store 展示记录存储抽象；*Repo 为生产实现。
type Store interface {
	Create(ctx context.Context, v *SoldVehicle) error
	Save(ctx context.Context, v *SoldVehicle) error
	FindByID(ctx context.Context, id string) (*SoldVehicle, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, featuredOnly bool, limit int) ([]SoldVehicle, error)
}

var _ Store = (*Repo)(nil)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput 后台录入成交展示记录的入参。
type CreateInput struct {
	Name         string
	VehicleType  string
	ImageURL     string
	Testimonial  string
	CustomerName string
	Featured     bool
	SoldAt       time.Time
}

func (in *CreateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if in.VehicleType != "bike" && in.VehicleType != "car" {
		return &ValidationError{Field: "vehicle_type", Reason: "must be bike or car"}
	}
	if strings.TrimSpace(in.ImageURL) == "" {
		return &ValidationError{Field: "image_url", Reason: "required"}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*SoldVehicle, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	soldAt := in.SoldAt
	if soldAt.IsZero() {
		soldAt = time.Now().UTC()
	}
	v := &SoldVehicle{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		VehicleType:  in.VehicleType,
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Testimonial:  in.Testimonial,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Featured:     in.Featured,
		SoldAt:       soldAt,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id string, in CreateInput) (*SoldVehicle, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	v.Name = strings.TrimSpace(in.Name)
	v.VehicleType = in.VehicleType
	v.ImageURL = strings.TrimSpace(in.ImageURL)
	v.Testimonial = in.Testimonial
	v.CustomerName = strings.TrimSpace(in.CustomerName)
	v.Featured = in.Featured
	if !in.SoldAt.IsZero() {
		v.SoldAt = in.SoldAt
	}
	if err := s.store.Save(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Get(ctx context.Context, id string) (*SoldVehicle, error) {
	v, err := s.store.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	return v, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}
	return err
}

func (s *Service) List(ctx context.Context, featuredOnly bool, limit int) ([]SoldVehicle, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	return s.store.List(ctx, featuredOnly, limit)
}
