package booking

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var activeStatuses = []Status{StatusPending, StatusConfirmed}

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

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Booking
	if err := db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) Save(ctx context.Context, b *Booking) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(b).Error
}

// ListFilter 后台预订列表的过滤条件。
type ListFilter struct {
	VehicleID string
	Status    Status
	Offset    int
	Limit     int
}

// List 支持按 vehicle_id / status 过滤 + 分页。
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Booking, int64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := db.Model(&Booking{})
	if f.VehicleID != "" {
		q = q.Where("vehicle_id = ?", f.VehicleID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookings []Booking
	if err := q.Order("created_at DESC, id DESC").Offset(f.Offset).Limit(f.Limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindActiveOverlapping 找出同一车辆上与 [start,end] 重叠的活跃预订。
// 闭区间重叠条件在 SQL 里同样是一对不等式：start_date <= end AND end_date >= start。
func (r *Repo) FindActiveOverlapping(ctx context.Context, vehicleID string, start, end time.Time, excludeID string) ([]Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	q := db.Where("vehicle_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?",
		vehicleID, activeStatuses, end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var out []Booking
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateIfAvailable 在单个事务里关闭“先查后插”的竞态：
// 1) FOR UPDATE 锁定车辆行，串行化同一车辆上的并发创建；
// 2) 锁内重跑重叠查询；
// 3) 无冲突才插入。
// 返回锁内查到的冲突集合；len > 0 表示本次创建被拒绝（含输掉竞态的情况）。
func (r *Repo) CreateIfAvailable(ctx context.Context, b *Booking) ([]Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}

	var conflicts []Booking
	err := db.Transaction(func(tx *gorm.DB) error {
		var locked struct{ ID string }
		if err := tx.Raw("SELECT id FROM vehicles WHERE id = ? FOR UPDATE", b.VehicleID).Scan(&locked).Error; err != nil {
			return err
		}
		if locked.ID == "" {
			return gorm.ErrRecordNotFound
		}

		err := tx.Where("vehicle_id = ? AND status IN ? AND start_date <= ? AND end_date >= ?",
			b.VehicleID, activeStatuses, b.EndDate, b.StartDate).
			Find(&conflicts).Error
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			// 不写入；事务里没有任何变更需要回滚
			return nil
		}
		return tx.Create(b).Error
	})
	if err != nil {
		return nil, err
	}
	return conflicts, nil
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
	if err := db.Model(&Booking{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

// CompletedRevenue 已完成预订的总价合计。COALESCE 保证空集合计为 0。
func (r *Repo) CompletedRevenue(ctx context.Context) (float64, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var sum float64
	err := db.Model(&Booking{}).
		Where("status = ?", StatusCompleted).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
