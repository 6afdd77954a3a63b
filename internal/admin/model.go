package admin

import (
	"strings"
	"time"
)

// Admin 是 admins 表的 GORM 模型：后台账号。
type Admin struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string     `gorm:"size:128;not null" json:"-"`
	PasswordSalt string     `gorm:"size:64;not null" json:"-"`
	DisplayName  string     `gorm:"size:64" json:"display_name"`
	Email        string     `gorm:"size:128" json:"email"`
	Roles        string     `gorm:"size:256;not null" json:"roles"` // 逗号分隔，例如 "admin,staff"
	Disabled     bool       `gorm:"not null;default:false" json:"disabled"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Admin) TableName() string { return "admins" }

func (a Admin) RolesSlice() []string {
	if strings.TrimSpace(a.Roles) == "" {
		return nil
	}
	parts := strings.Split(a.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func RolesJoin(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return strings.Join(out, ",")
}
