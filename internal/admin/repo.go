package admin

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

func (r *Repo) Create(ctx context.Context, a *Admin) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(a).Error
}

func (r *Repo) Save(ctx context.Context, a *Admin) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(a).Error
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a Admin
	if err := db.Where("username = ?", username).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Admin, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var a Admin
	if err := db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) List(ctx context.Context, offset, limit int) ([]Admin, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var total int64
	if err := db.Model(&Admin{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var admins []Admin
	if err := db.Order("created_at desc, id desc").Offset(offset).Limit(limit).Find(&admins).Error; err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := db.Model(&Admin{}).Count(&total).Error
	return total, err
}
