package window

import (
	"errors"
	"testing"
	"time"
)

func candlePlanner(strict bool) Planner {
	return Planner{
		Step:         time.Minute,
		MaxPage:      1000,
		DefaultLimit: 500,
		Strict:       strict,
	}
}

func TestPlanRejectsInvertedRange(t *testing.T) {
	p := candlePlanner(false)

	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	start := end.Add(time.Hour)

	if _, err := p.Plan(Query{Start: start, End: end}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

func TestPlanDefaultsLimit(t *testing.T) {
	it, err := candlePlanner(false).Plan(Query{})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	page, ok := it.Next()
	if !ok {
		t.Fatal("expected a first page")
	}
	if page.Limit != 500 {
		t.Errorf("expected default limit 500, got %d", page.Limit)
	}
	if it.Note() != "" {
		t.Errorf("unexpected note for default limit: %q", it.Note())
	}
}

func TestPlanClampsLimitWithNote(t *testing.T) {
	it, err := candlePlanner(false).Plan(Query{Limit: 5000})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	if it.EffectiveLimit() != 1000 {
		t.Errorf("expected clamped limit 1000, got %d", it.EffectiveLimit())
	}
	if it.Note() == "" {
		t.Error("clamping was not surfaced in the note")
	}
}

func TestPlanStrictRejectsClamp(t *testing.T) {
	if _, err := candlePlanner(true).Plan(Query{Limit: 5000}); !errors.Is(err, ErrLimitOutOfRange) {
		t.Errorf("expected ErrLimitOutOfRange in strict mode, got %v", err)
	}
}

func TestThreeDayMinuteRangePagination(t *testing.T) {
	p := candlePlanner(false)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(72 * time.Hour) // 4320 one-minute buckets

	it, err := p.Plan(Query{Start: start, End: end})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	pages := 0
	expectedStart := start
	remaining := 4320

	for {
		page, ok := it.Next()
		if !ok {
			break
		}
		if !page.Start.Equal(expectedStart) {
			t.Fatalf("page %d starts at %s, expected %s (gap or overlap)", pages, page.Start, expectedStart)
		}

		returned := page.Limit
		if returned > remaining {
			returned = remaining
		}
		last := page.Start.Add(time.Duration(returned-1) * time.Minute)
		it.Advance(last, returned)

		pages++
		remaining -= returned
		expectedStart = last.Add(time.Minute)
	}

	if pages < 5 {
		t.Errorf("expected at least 5 sequential sub-requests for a 3-day 1m range, got %d", pages)
	}
	if remaining != 0 {
		t.Errorf("pagination left %d buckets unfetched", remaining)
	}
}

func TestRangeUsesMaxPageWhenNoLimit(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	it, err := candlePlanner(false).Plan(Query{Start: start, End: start.Add(48 * time.Hour)})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	page, _ := it.Next()
	if page.Limit != 1000 {
		t.Errorf("range pages should use the exchange maximum, got limit %d", page.Limit)
	}
}

func TestCallerLimitCapsRangePages(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	it, err := candlePlanner(false).Plan(Query{Start: start, End: start.Add(48 * time.Hour), Limit: 200})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	page, _ := it.Next()
	if page.Limit != 200 {
		t.Errorf("caller limit should cap page size, got %d", page.Limit)
	}
}

func TestShortPageEndsPagination(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	it, err := candlePlanner(false).Plan(Query{Start: start, End: start.Add(30 * 24 * time.Hour)})
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	page, _ := it.Next()
	// The exchange returned fewer rows than asked for: end of history.
	it.Advance(page.Start.Add(9*time.Minute), 10)

	if _, ok := it.Next(); ok {
		t.Error("pagination continued past a short page")
	}
}

func TestSplitSpanContiguity(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(200 * 24 * time.Hour)
	max := 90 * 24 * time.Hour

	pages := SplitSpan(start, end, max)
	if len(pages) != 3 {
		t.Fatalf("expected 3 sub-ranges for 200 days at 90-day max, got %d", len(pages))
	}

	if !pages[0].Start.Equal(start) {
		t.Errorf("first page starts at %s, expected %s", pages[0].Start, start)
	}
	if !pages[len(pages)-1].End.Equal(end) {
		t.Errorf("last page ends at %s, expected %s", pages[len(pages)-1].End, end)
	}
	for i := 1; i < len(pages); i++ {
		want := pages[i-1].End.Add(time.Millisecond)
		if !pages[i].Start.Equal(want) {
			t.Errorf("page %d starts at %s, expected %s", i, pages[i].Start, want)
		}
		if span := pages[i].End.Sub(pages[i].Start); span > max {
			t.Errorf("page %d spans %s, over the %s cap", i, span, max)
		}
	}
}

func TestSplitSpanUnbounded(t *testing.T) {
	pages := SplitSpan(time.Time{}, time.Time{}, 90*24*time.Hour)
	if len(pages) != 1 {
		t.Fatalf("expected a single unbounded page, got %d", len(pages))
	}
	if !pages[0].Start.IsZero() || !pages[0].End.IsZero() {
		t.Error("unbounded page should carry zero times")
	}
}
