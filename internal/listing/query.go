package listing

import "strings"

// Sort 列表排序方式。
type Sort string

const (
	SortLatest    Sort = "latest"     // 最新发布（默认）
	SortOldest    Sort = "oldest"     // 最早发布
	SortPriceLow  Sort = "price_low"  // 价格升序
	SortPriceHigh Sort = "price_high" // 价格降序
	SortPopular   Sort = "popular"    // 浏览量降序
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

// Query 列表查询的类型化过滤条件。
// 原则：动态过滤对象在这里收敛为固定字段集合，由 Repo 翻译为 SQL 谓词。
type Query struct {
	Category Category // bike / car / "all"（all 或空 = 不过滤）

	// 过滤字段：大小写不敏感的子串匹配
	Brand        string
	FuelType     string
	Transmission string
	City         string

	// search：在 brand / model / title / city 上做 OR 匹配
	Search string

	// 价格上下界（含端点）。RentalRates 决定价格语义：
	// false = 售价（selling_price），true = 日租金（rent_price_per_day）
	MinPrice    *float64
	MaxPrice    *float64
	RentalRates bool

	Featured *bool
	Sort     Sort

	// 1 起始页码与页大小
	Page  int
	Limit int

	// 只保留可租车辆（附带无条件排除已售）
	AvailableForRent bool

	// 后台旁路：跳过默认的 status=for_sale 可见性规则。
	// 该字段只能由鉴权后的后台入口设置，公开入口必须强制清零。
	IncludeAll bool
}

// Normalize 填充默认值并纠正非法入参。
func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	switch q.Sort {
	case SortLatest, SortOldest, SortPriceLow, SortPriceHigh, SortPopular:
	default:
		q.Sort = SortLatest
	}
	if strings.EqualFold(string(q.Category), "all") {
		q.Category = ""
	}
}

// Offset skip = (page-1) * limit
func (q Query) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PriceColumn 当前查询路径对应的价格列。
func (q Query) PriceColumn() string {
	if q.RentalRates {
		return "rent_price_per_day"
	}
	return "selling_price"
}

// OrderClause 排序到 SQL 的映射。每种排序都带 id 作为第二排序键，
// 保证全序，从而翻页在固定过滤条件下稳定、不重不漏。
func (q Query) OrderClause() string {
	col := q.PriceColumn()
	switch q.Sort {
	case SortOldest:
		return "created_at ASC, id ASC"
	case SortPriceLow:
		return col + " ASC, id ASC"
	case SortPriceHigh:
		return col + " DESC, id ASC"
	case SortPopular:
		return "views DESC, id ASC"
	default:
		return "created_at DESC, id DESC"
	}
}

// Result 分页查询结果。
type Result struct {
	Items      []Vehicle `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
	HasMore    bool      `json:"has_more"`
}

// TotalPages ceil(total / limit)
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// NewResult 组装分页元数据。
func NewResult(items []Vehicle, total int64, q Query) *Result {
	tp := TotalPages(total, q.Limit)
	return &Result{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		TotalPages: tp,
		HasMore:    q.Page < tp,
	}
}
