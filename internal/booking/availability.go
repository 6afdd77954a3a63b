package booking

import (
	"fmt"
	"time"
)

// Interval 冲突区间（返回给调用方展示）。
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps 闭区间重叠判断：[bs,be] 与 [s,e] 重叠当且仅当 bs <= e 且 be >= s。
// 这一对不等式覆盖了“新区间起点落入已有区间”“终点落入”“完全包含”三种情形，
// 不做分支展开。边界相接（be == s 或 bs == e）按重叠处理：同一日历日不允许
// 两个客户交接车辆。
func Overlaps(bs, be, s, e time.Time) bool {
	return !bs.After(e) && !be.Before(s)
}

// ConflictsAmong 在给定预订集合里找出与候选区间 [s,e] 冲突的活跃预订，
// 返回冲突区间列表。excludeID 用于更新场景下排除自身。
// 状态一律取传入时刻的实时值，调用方不得缓存历史结果。
func ConflictsAmong(bookings []Booking, s, e time.Time, excludeID string) []Interval {
	var out []Interval
	for _, b := range bookings {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if !b.Status.Active() {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, s, e) {
			out = append(out, Interval{Start: b.StartDate, End: b.EndDate})
		}
	}
	return out
}

// ConflictError 预订区间冲突。携带冲突区间供调用方展示。
type ConflictError struct {
	VehicleID string
	Conflicts []Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("vehicle %s already booked for %d overlapping interval(s)", e.VehicleID, len(e.Conflicts))
}
