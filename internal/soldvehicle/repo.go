package soldvehicle

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

func (r *Repo) Create(ctx context.Context, v *SoldVehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(v).Error
}

func (r *Repo) Save(ctx context.Context, v *SoldVehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(v).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*SoldVehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v SoldVehicle
	if err := db.Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	res := db.Where("id = ?", id).Delete(&SoldVehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List 按成交时间倒序返回展示记录；featuredOnly 只取精选。
func (r *Repo) List(ctx context.Context, featuredOnly bool, limit int) ([]SoldVehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := db.Model(&SoldVehicle{})
	if featuredOnly {
		q = q.Where("featured = ?", true)
	}
	q = q.Order("sold_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []SoldVehicle
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
