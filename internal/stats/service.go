package stats

import (
	"context"
	"fmt"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/booking"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/listing"
)

// ListingSource 车辆侧的统计读接口；listing.Repo 为生产实现。
type ListingSource interface {
	CountByStatus(ctx context.Context) (map[listing.Status]int64, error)
	CountByCategory(ctx context.Context) (map[listing.Category]int64, error)
	SoldRevenue(ctx context.Context) (float64, error)
}

// BookingSource 预订侧的统计读接口；booking.Repo 为生产实现。
type BookingSource interface {
	CountByStatus(ctx context.Context) (map[booking.Status]int64, error)
	CompletedRevenue(ctx context.Context) (float64, error)
}

// Overview 后台仪表盘的汇总视图。每次调用实时扫描，不做缓存。
type Overview struct {
	Vehicles struct {
		Total      int64            `json:"total"`
		ByStatus   map[string]int64 `json:"by_status"`
		ByCategory map[string]int64 `json:"by_category"`
	} `json:"vehicles"`

	Bookings struct {
		Total    int64            `json:"total"`
		ByStatus map[string]int64 `json:"by_status"`
	} `json:"bookings"`

	Revenue struct {
		Sales   float64 `json:"sales"`   // 已售车辆的售价合计
		Rentals float64 `json:"rentals"` // 已完成预订的总价合计
		Total   float64 `json:"total"`
	} `json:"revenue"`
}

type Service struct {
	listings ListingSource
	bookings BookingSource
}

func NewService(listings ListingSource, bookings BookingSource) *Service {
	return &Service{listings: listings, bookings: bookings}
}

// Overview 聚合两侧存储的计数与营收。缺失的数值按零处理，
// 不会出现 null 传染到合计。
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	if s == nil || s.listings == nil || s.bookings == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	var o Overview

	vehicleStatus, err := s.listings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vehicles by status: %w", err)
	}
	o.Vehicles.ByStatus = make(map[string]int64, len(vehicleStatus))
	for st, n := range vehicleStatus {
		o.Vehicles.ByStatus[string(st)] = n
		o.Vehicles.Total += n
	}

	vehicleCategory, err := s.listings.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vehicles by category: %w", err)
	}
	o.Vehicles.ByCategory = make(map[string]int64, len(vehicleCategory))
	for cat, n := range vehicleCategory {
		o.Vehicles.ByCategory[string(cat)] = n
	}

	bookingStatus, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings by status: %w", err)
	}
	o.Bookings.ByStatus = make(map[string]int64, len(bookingStatus))
	for st, n := range bookingStatus {
		o.Bookings.ByStatus[string(st)] = n
		o.Bookings.Total += n
	}

	sales, err := s.listings.SoldRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum sold revenue: %w", err)
	}
	rentals, err := s.bookings.CompletedRevenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum completed booking revenue: %w", err)
	}
	o.Revenue.Sales = sales
	o.Revenue.Rentals = rentals
	o.Revenue.Total = sales + rentals

	return &o, nil
}
