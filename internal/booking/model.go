package booking

import "time"

// Status 预订状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "pending"   // 已创建，待确认
	StatusConfirmed Status = "confirmed" // 已确认
	StatusCompleted Status = "completed" // 已完成（终态）
	StatusCancelled Status = "cancelled" // 已取消（终态）
)

// Active 只有 pending / confirmed 参与冲突检测。
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// ValidStatus 判断是否为合法状态值。
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking 是 bookings 表的 GORM 模型。
// VehicleID 创建后不可变；日期区间为闭区间 [StartDate, EndDate]，
// 按日历日比较（统一归一化到 UTC 零点）。
type Booking struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	VehicleID string `gorm:"index;size:36;not null" json:"vehicle_id"`

	CustomerName  string `gorm:"size:64;not null" json:"customer_name"`
	CustomerPhone string `gorm:"size:32" json:"customer_phone"`
	CustomerEmail string `gorm:"size:128" json:"customer_email"`

	StartDate time.Time `gorm:"index;not null" json:"start_date"`
	EndDate   time.Time `gorm:"index;not null" json:"end_date"`

	// TotalDays/TotalPrice 一律服务端重算，客户端给值只作展示参考，不可信。
	TotalDays  int     `gorm:"not null;default:0" json:"total_days"`
	TotalPrice float64 `gorm:"not null;default:0" json:"total_price"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`
	Notes  string `gorm:"size:512" json:"notes,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// NormalizeDate 归一化到 UTC 零点，预订只关心日历日。
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween 闭区间天数：同一天算 1 天。
// 入参须已按 NormalizeDate 归一化，且 start <= end。
func DaysBetween(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}
