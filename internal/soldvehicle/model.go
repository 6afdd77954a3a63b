package soldvehicle

import "time"

// SoldVehicle 是 sold_vehicles 表的 GORM 模型：成交展示记录。
// 纯展示用途，和车辆/预订表不关联；必填项只有名称和图片。
type SoldVehicle struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	VehicleType  string    `gorm:"type:varchar(8);not null" json:"vehicle_type"`
	ImageURL     string    `gorm:"size:512;not null" json:"image_url"`
	Testimonial  string    `gorm:"type:text" json:"testimonial,omitempty"`
	CustomerName string    `gorm:"size:64" json:"customer_name,omitempty"`
	Featured     bool      `gorm:"not null;default:false;index" json:"featured"`
	SoldAt       time.Time `json:"sold_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SoldVehicle) TableName() string { return "sold_vehicles" }
