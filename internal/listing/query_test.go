package listing

import "testing"

func TestQueryNormalizeDefaults(t *testing.T) {
	q := Query{}
	q.Normalize()
	if q.Page != 1 {
		t.Fatalf("expected page 1, got %d", q.Page)
	}
	if q.Limit != defaultLimit {
		t.Fatalf("expected limit %d, got %d", defaultLimit, q.Limit)
	}
	if q.Sort != SortLatest {
		t.Fatalf("expected default sort latest, got %s", q.Sort)
	}
}

func TestQueryNormalizeClampsAndAll(t *testing.T) {
	q := Query{Page: -3, Limit: 100000, Sort: "bogus", Category: "All"}
	q.Normalize()
	if q.Page != 1 {
		t.Fatalf("expected page 1, got %d", q.Page)
	}
	if q.Limit != maxLimit {
		t.Fatalf("expected limit clamped to %d, got %d", maxLimit, q.Limit)
	}
	if q.Sort != SortLatest {
		t.Fatalf("expected unknown sort to fall back to latest, got %s", q.Sort)
	}
	if q.Category != "" {
		t.Fatalf("expected category 'all' to clear the filter, got %q", q.Category)
	}
}

func TestQueryOffset(t *testing.T) {
	q := Query{Page: 3, Limit: 10}
	if got := q.Offset(); got != 20 {
		t.Fatalf("expected offset 20, got %d", got)
	}
}

func TestPriceColumnPerPath(t *testing.T) {
	sale := Query{}
	if sale.PriceColumn() != "selling_price" {
		t.Fatalf("sale path must bound selling_price")
	}
	rental := Query{RentalRates: true}
	if rental.PriceColumn() != "rent_price_per_day" {
		t.Fatalf("rental path must bound rent_price_per_day")
	}
}

func TestOrderClauseCarriesSecondaryKey(t *testing.T) {
	cases := map[Sort]string{
		SortLatest:    "created_at DESC, id DESC",
		SortOldest:    "created_at ASC, id ASC",
		SortPriceLow:  "selling_price ASC, id ASC",
		SortPriceHigh: "selling_price DESC, id ASC",
		SortPopular:   "views DESC, id ASC",
	}
	for sort, want := range cases {
		q := Query{Sort: sort}
		if got := q.OrderClause(); got != want {
			t.Fatalf("sort %s: expected %q, got %q", sort, want, got)
		}
	}

	rental := Query{Sort: SortPriceLow, RentalRates: true}
	if got := rental.OrderClause(); got != "rent_price_per_day ASC, id ASC" {
		t.Fatalf("rental price sort: got %q", got)
	}
}

func TestTotalPagesAndHasMore(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 12, 3},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.limit); got != c.want {
			t.Fatalf("TotalPages(%d,%d): expected %d, got %d", c.total, c.limit, c.want, got)
		}
	}

	q := Query{Page: 2, Limit: 10}
	q.Normalize()
	res := NewResult(nil, 25, q)
	if res.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", res.TotalPages)
	}
	if !res.HasMore {
		t.Fatalf("page 2 of 3 must report has_more")
	}

	last := Query{Page: 3, Limit: 10}
	last.Normalize()
	res = NewResult(nil, 25, last)
	if res.HasMore {
		t.Fatalf("last page must not report has_more")
	}
}

// 翻页穷尽性：固定过滤条件下，全部页码的 offset/limit 窗口拼起来正好覆盖
// [0, total)，不重不漏。
func TestPaginationWindowsArePartition(t *testing.T) {
	const total = int64(47)
	const limit = 10

	seen := make(map[int]bool)
	pages := TotalPages(total, limit)
	for page := 1; page <= pages; page++ {
		q := Query{Page: page, Limit: limit}
		q.Normalize()
		start := q.Offset()
		end := start + q.Limit
		if int64(end) > total {
			end = int(total)
		}
		for i := start; i < end; i++ {
			if seen[i] {
				t.Fatalf("index %d covered twice", i)
			}
			seen[i] = true
		}
	}
	if int64(len(seen)) != total {
		t.Fatalf("expected %d items covered, got %d", total, len(seen))
	}
}
