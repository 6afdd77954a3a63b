package booking

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsGeneralCases(t *testing.T) {
	bs, be := date(2024, 1, 10), date(2024, 1, 20)

	cases := []struct {
		name string
		s, e time.Time
		want bool
	}{
		{"new starts inside existing", date(2024, 1, 15), date(2024, 1, 25), true},
		{"new ends inside existing", date(2024, 1, 5), date(2024, 1, 15), true},
		{"new fully contains existing", date(2024, 1, 1), date(2024, 1, 31), true},
		{"new fully inside existing", date(2024, 1, 12), date(2024, 1, 18), true},
		{"disjoint before", date(2024, 1, 1), date(2024, 1, 9), false},
		{"disjoint after", date(2024, 1, 21), date(2024, 1, 31), false},
	}
	for _, c := range cases {
		if got := Overlaps(bs, be, c.s, c.e); got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

// 边界相接按冲突处理：同一日历日不允许两个客户交接车辆。
func TestOverlapsTouchingBoundariesConflict(t *testing.T) {
	bs, be := date(2024, 1, 1), date(2024, 1, 5)

	if !Overlaps(bs, be, date(2024, 1, 5), date(2024, 1, 10)) {
		t.Fatalf("candidate starting on existing end date must conflict")
	}
	if !Overlaps(bs, be, date(2023, 12, 25), date(2024, 1, 1)) {
		t.Fatalf("candidate ending on existing start date must conflict")
	}
	// 隔一天则不冲突
	if Overlaps(bs, be, date(2024, 1, 6), date(2024, 1, 10)) {
		t.Fatalf("candidate starting the day after existing end must not conflict")
	}
}

func TestOverlapsZeroLengthRange(t *testing.T) {
	bs, be := date(2024, 1, 10), date(2024, 1, 10) // 单日预订

	if !Overlaps(bs, be, date(2024, 1, 10), date(2024, 1, 10)) {
		t.Fatalf("two single-day bookings on the same day must conflict")
	}
	if Overlaps(bs, be, date(2024, 1, 11), date(2024, 1, 11)) {
		t.Fatalf("single-day bookings on different days must not conflict")
	}
}

func TestConflictsAmongFiltersInactiveAndExcluded(t *testing.T) {
	bookings := []Booking{
		{ID: "b1", Status: StatusPending, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5)},
		{ID: "b2", Status: StatusCancelled, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5)},
		{ID: "b3", Status: StatusCompleted, StartDate: date(2024, 1, 1), EndDate: date(2024, 1, 5)},
		{ID: "b4", Status: StatusConfirmed, StartDate: date(2024, 1, 4), EndDate: date(2024, 1, 8)},
	}

	got := ConflictsAmong(bookings, date(2024, 1, 3), date(2024, 1, 6), "")
	if len(got) != 2 {
		t.Fatalf("expected 2 conflicts (pending + confirmed), got %d", len(got))
	}

	// 排除自身
	got = ConflictsAmong(bookings, date(2024, 1, 3), date(2024, 1, 6), "b1")
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict after excluding b1, got %d", len(got))
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		s, e time.Time
		want int
	}{
		{date(2024, 1, 1), date(2024, 1, 1), 1},
		{date(2024, 1, 1), date(2024, 1, 2), 2},
		{date(2024, 1, 1), date(2024, 1, 5), 5},
		{date(2024, 2, 28), date(2024, 3, 1), 3}, // 闰年跨月
	}
	for _, c := range cases {
		if got := DaysBetween(c.s, c.e); got != c.want {
			t.Fatalf("DaysBetween(%s, %s): expected %d, got %d",
				c.s.Format("2006-01-02"), c.e.Format("2006-01-02"), c.want, got)
		}
	}
}

func TestNormalizeDateStripsTimeOfDay(t *testing.T) {
	in := time.Date(2024, 6, 15, 18, 30, 45, 0, time.UTC)
	got := NormalizeDate(in)
	if got != date(2024, 6, 15) {
		t.Fatalf("expected 2024-06-15T00:00:00Z, got %s", got)
	}
}
