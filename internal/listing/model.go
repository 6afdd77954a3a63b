package listing

import "time"

// Category 车辆类别（持久化为字符串）。
type Category string

const (
	CategoryBike Category = "bike"
	CategoryCar  Category = "car"
)

// Status 车辆生命周期状态枚举（持久化为字符串）。
type Status string

const (
	StatusForSale Status = "for_sale" // 在售（公开可见）
	StatusSold    Status = "sold"     // 已售出
	StatusRented  Status = "rented"   // 租赁中
	StatusDraft   Status = "draft"    // 草稿（仅后台可见）
)

// ValidStatus 判断是否为合法状态值。
func ValidStatus(s Status) bool {
	switch s {
	case StatusForSale, StatusSold, StatusRented, StatusDraft:
		return true
	}
	return false
}

// ValidCategory 判断是否为合法类别值。
func ValidCategory(c Category) bool {
	return c == CategoryBike || c == CategoryCar
}

// Vehicle 是 vehicles 表的 GORM 模型。
// PurchasePrice 是内部成本字段，禁止出现在公开接口的序列化结果中（json:"-"，
// 仅后台接口通过专门的 DTO 输出）。
type Vehicle struct {
	ID       string   `gorm:"primaryKey;size:36" json:"id"`
	Category Category `gorm:"type:varchar(8);index;not null" json:"category"`

	Brand        string `gorm:"size:64;index" json:"brand"`
	Model        string `gorm:"size:64" json:"model"`
	Title        string `gorm:"size:128" json:"title"`
	Year         int    `gorm:"not null;default:0" json:"year"`
	Color        string `gorm:"size:32" json:"color"`
	Kilometers   int64  `gorm:"not null;default:0" json:"kilometers"`
	FuelType     string `gorm:"size:32" json:"fuel_type"`
	Transmission string `gorm:"size:32" json:"transmission"`
	City         string `gorm:"size:64;index" json:"city"`

	// 金额信息
	PurchasePrice   float64 `gorm:"not null;default:0" json:"-"` // 内部收购价
	SellingPrice    float64 `gorm:"not null;default:0" json:"selling_price"`
	RentPricePerDay float64 `gorm:"not null;default:0" json:"rent_price_per_day"`

	AvailableForRent bool   `gorm:"not null;default:false" json:"available_for_rent"`
	Status           Status `gorm:"type:varchar(16);index;not null" json:"status"`
	Featured         bool   `gorm:"not null;default:false" json:"featured"`

	Images []string `gorm:"serializer:json;type:text" json:"images"`

	// 计数器：只允许走存储层原子自增，禁止 read-modify-write
	Views    int64 `gorm:"not null;default:0" json:"views"`
	Contacts int64 `gorm:"not null;default:0" json:"contacts"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
}

// PubliclyVisible 默认可见性规则：草稿永不公开。
func (v Vehicle) PubliclyVisible() bool {
	return v.Status != StatusDraft
}

// RentableNow 是否可进入租赁可用性判断：已售车辆无条件排除，不看租赁开关。
func (v Vehicle) RentableNow() bool {
	return v.Status != StatusSold && v.AvailableForRent
}
