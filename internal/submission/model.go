package submission

import (
	"fmt"
	"math/rand"
	"time"
)

// Status 卖车申请的处理状态。
type Status string

const (
	StatusPending   Status = "pending"   // 待处理
	StatusContacted Status = "contacted" // 已联系
	StatusApproved  Status = "approved"  // 已通过，可转为车辆
	StatusRejected  Status = "rejected"  // 已拒绝
	StatusPurchased Status = "purchased" // 已收购（终态）
)

// ValidStatus 判断是否为合法状态值。
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusContacted, StatusApproved, StatusRejected, StatusPurchased:
		return true
	}
	return false
}

const (
	minImages = 1
	maxImages = 10
)

// Submission 是 submissions 表的 GORM 模型：客户发起的卖车申请。
// 在后台将 approved 的申请转为车辆之前，申请与车辆表互不关联。
type Submission struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// Reference 由创建时间派生的业务单号，对外展示用，唯一索引保证不重复。
	Reference string `gorm:"size:32;uniqueIndex;not null" json:"reference"`

	// 联系人信息
	OwnerName  string `gorm:"size:64;not null" json:"owner_name"`
	OwnerPhone string `gorm:"size:32;not null" json:"owner_phone"`
	OwnerEmail string `gorm:"size:128" json:"owner_email"`

	// 车辆描述
	Category      string  `gorm:"type:varchar(8);not null" json:"category"`
	Brand         string  `gorm:"size:64;not null" json:"brand"`
	Model         string  `gorm:"size:64;not null" json:"model"`
	Year          int     `gorm:"not null;default:0" json:"year"`
	Kilometers    int64   `gorm:"not null;default:0" json:"kilometers"`
	FuelType      string  `gorm:"size:32" json:"fuel_type"`
	Transmission  string  `gorm:"size:32" json:"transmission"`
	City          string  `gorm:"size:64" json:"city"`
	ExpectedPrice float64 `gorm:"not null;default:0" json:"expected_price"`
	Notes         string  `gorm:"type:text" json:"notes"`

	Images []string `gorm:"serializer:json;type:text" json:"images"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`
	// PromotedVehicleID 转为车辆后回填的车辆 ID。
	PromotedVehicleID string `gorm:"size:36" json:"promoted_vehicle_id,omitempty"`

	AdminNotes string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string { return "submissions" }

// NewReference 按创建时间生成业务单号，形如 SWM-20240131-154502。
func NewReference(t time.Time) string {
	return t.UTC().Format("SWM-20060102-150405")
}

// RetryReference 单号撞唯一索引时追加 4 位十六进制随机后缀重试。
func RetryReference(base string) string {
	return fmt.Sprintf("%s-%04x", base, rand.Intn(0x10000))
}
