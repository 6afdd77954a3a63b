package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRowID 站点设置固定单行存储。
const settingsRowID = 1

// Settings 是 site_settings 表的 GORM 模型：全站展示配置。
// 写入会持久化（历史版本是进程内默认值、写入即丢弃的行为，这里按
// 持久化实现，重启后保留后台的修改）。
type Settings struct {
	ID int `gorm:"primaryKey" json:"-"`

	SiteName      string `gorm:"size:128;not null" json:"site_name"`
	ContactPhone  string `gorm:"size:32" json:"contact_phone"`
	ContactEmail  string `gorm:"size:128" json:"contact_email"`
	Address       string `gorm:"size:256" json:"address"`
	WhatsappLink  string `gorm:"size:256" json:"whatsapp_link"`
	InstagramLink string `gorm:"size:256" json:"instagram_link"`

	// HomepageFeaturedLimit 首页精选展示条数。
	HomepageFeaturedLimit int `gorm:"not null;default:8" json:"homepage_featured_limit"`
	// BookingEnabled 全站租车预订开关。
	BookingEnabled bool `gorm:"not null;default:true" json:"booking_enabled"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (Settings) TableName() string { return "site_settings" }

// Defaults 未初始化时返回的默认配置。
func Defaults() *Settings {
	return &Settings{
		ID:                    settingsRowID,
		SiteName:              "Swastik Motors Ujjain",
		HomepageFeaturedLimit: 8,
		BookingEnabled:        true,
	}
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Get 读取当前设置；单行不存在时返回默认值（不落库）。
func (r *Repo) Get(ctx context.Context) (*Settings, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var s Settings
	err := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save 整行 upsert 到固定主键，后台保存即生效。
func (r *Repo) Save(ctx context.Context, s *Settings) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	s.ID = settingsRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(s).Error
}
