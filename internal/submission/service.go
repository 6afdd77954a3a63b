package submission

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
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrNotPromotable 只有 approved 状态的申请才能转为车辆。
	ErrNotPromotable = errors.New("submission is not approved")
)

// ValidationError 入参校验失败，带字段级信息。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// allowTransition 申请状态机。rejected / purchased 为终态。
var allowTransition = map[Status][]Status{
	StatusPending:   {StatusContacted, StatusApproved, StatusRejected},
	StatusContacted: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusRejected, StatusPurchased},
	StatusRejected:  {},
	StatusPurchased: {},
}

func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range allowTransition[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Store 申请存储抽象；*Repo 为生产实现。
type Store interface {
	Create(ctx context.Context, s *Submission) error
	Save(ctx context.Context, s *Submission) error
	FindByID(ctx context.Context, id string) (*Submission, error)
	FindByReference(ctx context.Context, ref string) (*Submission, error)
	List(ctx context.Context, f ListFilter) ([]Submission, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

var _ Store = (*Repo)(nil)

// DraftVehicle 申请转车辆时交给车辆侧创建草稿的字段集合。
type DraftVehicle struct {
	Category     string
	Brand        string
	Model        string
	Year         int
	Kilometers   int64
	FuelType     string
	Transmission string
	City         string
	// PurchasePrice 取申请的期望价，后台入库前可再调整。
	PurchasePrice float64
	Images        []string
}

// VehicleCreator 车辆侧协作方：创建一条草稿车辆并返回其 ID。
type VehicleCreator interface {
	CreateDraft(ctx context.Context, d DraftVehicle) (string, error)
}

type Service struct {
	store    Store
	vehicles VehicleCreator
	now      func() time.Time
}

func NewService(store Store, vehicles VehicleCreator) *Service {
	return &Service{store: store, vehicles: vehicles, now: time.Now}
}

// CreateInput 客户提交卖车申请的入参。
type CreateInput struct {
	OwnerName  string
	OwnerPhone string
	OwnerEmail string

	Category      string
	Brand         string
	Model         string
	Year          int
	Kilometers    int64
	FuelType      string
	Transmission  string
	City          string
	ExpectedPrice float64
	Notes         string

	Images []string
}

func (in *CreateInput) validate() error {
	if strings.TrimSpace(in.OwnerName) == "" {
		return &ValidationError{Field: "owner_name", Reason: "required"}
	}
	if strings.TrimSpace(in.OwnerPhone) == "" {
		return &ValidationError{Field: "owner_phone", Reason: "required"}
	}
	if in.Category != "bike" && in.Category != "car" {
		return &ValidationError{Field: "category", Reason: "must be bike or car"}
	}
	if strings.TrimSpace(in.Brand) == "" {
		return &ValidationError{Field: "brand", Reason: "required"}
	}
	if strings.TrimSpace(in.Model) == "" {
		return &ValidationError{Field: "model", Reason: "required"}
	}
	if in.ExpectedPrice < 0 {
		return &ValidationError{Field: "expected_price", Reason: "must be >= 0"}
	}
	if len(in.Images) < minImages || len(in.Images) > maxImages {
		return &ValidationError{Field: "images", Reason: fmt.Sprintf("need %d-%d image urls", minImages, maxImages)}
	}
	for _, u := range in.Images {
		if strings.TrimSpace(u) == "" {
			return &ValidationError{Field: "images", Reason: "image url must not be empty"}
		}
	}
	return nil
}

// createRetries 单号撞唯一索引时的最大重试次数。
const createRetries = 3

// Create 受理卖车申请，进入 pending。
// 业务单号按创建时间生成；同一秒内并发提交可能撞唯一索引，
// 撞上时追加随机后缀重试。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Submission, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	base := NewReference(now)

	sub := &Submission{
		ID:            uuid.NewString(),
		Reference:     base,
		OwnerName:     strings.TrimSpace(in.OwnerName),
		OwnerPhone:    strings.TrimSpace(in.OwnerPhone),
		OwnerEmail:    strings.TrimSpace(in.OwnerEmail),
		Category:      in.Category,
		Brand:         strings.TrimSpace(in.Brand),
		Model:         strings.TrimSpace(in.Model),
		Year:          in.Year,
		Kilometers:    in.Kilometers,
		FuelType:      strings.TrimSpace(in.FuelType),
		Transmission:  strings.TrimSpace(in.Transmission),
		City:          strings.TrimSpace(in.City),
		ExpectedPrice: in.ExpectedPrice,
		Notes:         in.Notes,
		Images:        in.Images,
		Status:        StatusPending,
	}

	var err error
	for i := 0; i <= createRetries; i++ {
		if i > 0 {
			sub.Reference = RetryReference(base)
		}
		err = s.store.Create(ctx, sub)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("reference generation exhausted retries: %w", err)
}

func (s *Service) Get(ctx context.Context, id string) (*Submission, error) {
	sub, err := s.store.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	return sub, err
}

// GetByReference 客户按业务单号查询申请进度。
func (s *Service) GetByReference(ctx context.Context, ref string) (*Submission, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, &ValidationError{Field: "reference", Reason: "required"}
	}
	sub, err := s.store.FindByReference(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	return sub, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Submission, int64, error) {
	if f.Status != "" && !ValidStatus(f.Status) {
		return nil, 0, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	return s.store.List(ctx, f)
}

// UpdateStatus 后台推进申请状态；purchased 仅能通过 Promote 进入。
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status, adminNotes string) (*Submission, error) {
	if !ValidStatus(to) {
		return nil, &ValidationError{Field: "status", Reason: "unknown status"}
	}
	if to == StatusPurchased {
		return nil, &ValidationError{Field: "status", Reason: "use promote to mark purchased"}
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(sub.Status, to) {
		return nil, &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("cannot transition from %s to %s", sub.Status, to),
		}
	}
	sub.Status = to
	if adminNotes != "" {
		sub.AdminNotes = adminNotes
	}
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Promote 将 approved 的申请转为一条草稿车辆，并把申请标记为 purchased。
// 车辆创建成功但回写失败时返回错误，申请保持 approved，可安全重试
// （重试会再建一条草稿，由后台清理）。
func (s *Service) Promote(ctx context.Context, id string) (*Submission, error) {
	if s.vehicles == nil {
		return nil, fmt.Errorf("vehicle creator not configured")
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != StatusApproved {
		return nil, ErrNotPromotable
	}

	vehicleID, err := s.vehicles.CreateDraft(ctx, DraftVehicle{
		Category:      sub.Category,
		Brand:         sub.Brand,
		Model:         sub.Model,
		Year:          sub.Year,
		Kilometers:    sub.Kilometers,
		FuelType:      sub.FuelType,
		Transmission:  sub.Transmission,
		City:          sub.City,
		PurchasePrice: sub.ExpectedPrice,
		Images:        sub.Images,
	})
	if err != nil {
		return nil, fmt.Errorf("create draft vehicle: %w", err)
	}

	sub.Status = StatusPurchased
	sub.PromotedVehicleID = vehicleID
	if err := s.store.Save(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
