package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// counterColumns 允许原子自增的计数器列白名单。
var counterColumns = map[string]bool{
	"views":    true,
	"contacts": true,
}

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

func (r *Repo) Create(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Create(v).Error
}

func (r *Repo) Save(ctx context.Context, v *Vehicle) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(v).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Vehicle, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var v Vehicle
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
	res := db.Where("id = ?", id).Delete(&Vehicle{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Search 按类型化过滤条件执行列表查询。
// 过滤、排序、分页语义见 Query 注释；Count 在排序/分页之前执行。
func (r *Repo) Search(ctx context.Context, q Query) (*Result, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q.Normalize()

	tx := db.Model(&Vehicle{})

	// 默认可见性：非后台查询只看在售
	if !q.IncludeAll {
		tx = tx.Where("status = ?", StatusForSale)
	}
	// 租赁路径：开了出租开关，且无条件排除已售
	if q.AvailableForRent {
		tx = tx.Where("available_for_rent = ? AND status <> ?", true, StatusSold)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if s := strings.TrimSpace(q.Brand); s != "" {
		tx = tx.Where("LOWER(brand) LIKE ?", like(s))
	}
	if s := strings.TrimSpace(q.FuelType); s != "" {
		tx = tx.Where("LOWER(fuel_type) LIKE ?", like(s))
	}
	if s := strings.TrimSpace(q.Transmission); s != "" {
		tx = tx.Where("LOWER(transmission) LIKE ?", like(s))
	}
	if s := strings.TrimSpace(q.City); s != "" {
		tx = tx.Where("LOWER(city) LIKE ?", like(s))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		p := like(s)
		tx = tx.Where("LOWER(brand) LIKE ? OR LOWER(model) LIKE ? OR LOWER(title) LIKE ? OR LOWER(city) LIKE ?", p, p, p, p)
	}
	if q.MinPrice != nil {
		tx = tx.Where(q.PriceColumn()+" >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		tx = tx.Where(q.PriceColumn()+" <= ?", *q.MaxPrice)
	}
	if q.Featured != nil {
		tx = tx.Where("featured = ?", *q.Featured)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var vehicles []Vehicle
	if err := tx.Order(q.OrderClause()).Offset(q.Offset()).Limit(q.Limit).Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return NewResult(vehicles, total, q), nil
}

// IncrementCounter 存储层原子自增（UPDATE ... SET col = col + 1），返回自增后的值。
// field 仅允许白名单内的计数器列。
func (r *Repo) IncrementCounter(ctx context.Context, id, field string) (int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	if !counterColumns[field] {
		return 0, fmt.Errorf("counter field not allowed: %s", field)
	}

	res := db.Model(&Vehicle{}).Where("id = ?", id).
		UpdateColumn(field, gorm.Expr(field+" + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var value int64
	if err := db.Model(&Vehicle{}).Where("id = ?", id).Pluck(field, &value).Error; err != nil {
		return 0, err
	}
	return value, nil
}

// Brands distinct 品牌列表（过滤 UI 的 facet）。
func (r *Repo) Brands(ctx context.Context) ([]string, error) {
	return r.distinctValues(ctx, "brand")
}

// Cities distinct 城市列表（过滤 UI 的 facet）。
func (r *Repo) Cities(ctx context.Context) ([]string, error) {
	return r.distinctValues(ctx, "city")
}

func (r *Repo) distinctValues(ctx context.Context, column string) ([]string, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var values []string
	err := db.Model(&Vehicle{}).
		Where("status = ?", StatusForSale).
		Where(column + " <> ''").
		Distinct(column).
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

// CountByStatus 按状态聚合数量（统计用）。
func (r *Repo) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rows []struct {
		Status Status
		N      int64
	}
	if err := db.Model(&Vehicle{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// CountByCategory 按类别聚合数量（统计用）。
func (r *Repo) CountByCategory(ctx context.Context) (map[Category]int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rows []struct {
		Category Category
		N        int64
	}
	if err := db.Model(&Vehicle{}).Select("category, COUNT(*) AS n").Group("category").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[Category]int64, len(rows))
	for _, row := range rows {
		out[row.Category] = row.N
	}
	return out, nil
}

// SoldRevenue 已售车辆的售价合计。COALESCE 保证空集合计为 0 而不是 NULL。
func (r *Repo) SoldRevenue(ctx context.Context) (float64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var sum float64
	err := db.Model(&Vehicle{}).
		Where("status = ?", StatusSold).
		Select("COALESCE(SUM(selling_price), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}

// IsNotFound gorm 未命中判断的便捷封装。
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func like(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
