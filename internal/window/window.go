// Package window turns a user-requested time range and limit into the
// sequence of exchange-legal request pages, and tracks pagination state
// while responses come back.
package window

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when startTime is after endTime. It is
// detected before any network call.
var ErrInvalidRange = errors.New("start time is after end time")

// ErrLimitOutOfRange is returned instead of clamping when strict mode is on.
var ErrLimitOutOfRange = errors.New("limit outside the exchange's accepted range")

// Planner holds the exchange paging rules for one endpoint family.
type Planner struct {
	// Step is the amount the next page's start advances past the last
	// returned record. For candlesticks it is the interval width; for
	// order and transfer history it is one millisecond.
	Step         time.Duration
	MaxPage      int
	DefaultLimit int
	Strict       bool
}

// Query is the canonical (startTime?, endTime?, limit?) request shape that
// every public overload resolves to. Zero times mean unset.
type Query struct {
	Start time.Time
	End   time.Time
	Limit int
}

// Page is one exchange-legal sub-request.
type Page struct {
	Start time.Time
	End   time.Time
	Limit int
}

// Iterator walks the pages of one planned query. A later page may only be
// produced after its predecessor's response has been fed to Advance, which
// preserves temporal ordering without any global locking.
type Iterator struct {
	planner Planner
	end     time.Time
	limit   int
	note    string

	next Page
	done bool
}

// Plan validates a query and returns its page iterator. Out-of-range
// limits are clamped to the exchange maximum and surfaced through Note,
// or rejected when the planner is strict.
func (p Planner) Plan(q Query) (*Iterator, error) {
	if !q.Start.IsZero() && !q.End.IsZero() && q.Start.After(q.End) {
		return nil, fmt.Errorf("%w: start %s, end %s", ErrInvalidRange,
			q.Start.Format(time.RFC3339), q.End.Format(time.RFC3339))
	}

	limit := q.Limit
	note := ""
	if limit < 0 || limit > p.MaxPage {
		if p.Strict {
			return nil, fmt.Errorf("%w: got %d, max %d", ErrLimitOutOfRange, limit, p.MaxPage)
		}
		note = fmt.Sprintf("limit %d clamped to exchange maximum %d", limit, p.MaxPage)
		limit = p.MaxPage
	}

	it := &Iterator{
		planner: p,
		end:     q.End,
		note:    note,
	}

	if q.Start.IsZero() {
		// Without an explicit start there is nothing to split: a single
		// page bounded by the (possibly clamped or defaulted) limit,
		// optionally anchored to an end time.
		if limit == 0 {
			limit = p.DefaultLimit
		}
		it.limit = limit
		it.next = Page{End: q.End, Limit: limit}
	} else {
		// Inside an explicit range the range wins: an absent limit means
		// full exchange-max pages, and a caller limit only caps how much
		// each page asks for.
		if limit == 0 {
			limit = p.MaxPage
		}
		it.limit = limit
		it.next = Page{Start: q.Start, End: q.End, Limit: limit}
	}
	return it, nil
}

// Next returns the upcoming page, or ok=false when pagination is complete.
// Calling Next again without Advance returns the same page.
func (it *Iterator) Next() (Page, bool) {
	if it.done {
		return Page{}, false
	}
	return it.next, true
}

// Advance consumes the response to the current page. A short page means
// the end of available history; otherwise the next page starts one step
// after the last returned record, leaving no gap and no overlap.
func (it *Iterator) Advance(lastRecord time.Time, returned int) {
	cur := it.next

	if returned < cur.Limit || returned == 0 || cur.Start.IsZero() {
		it.done = true
		return
	}

	step := it.planner.Step
	if step <= 0 {
		step = time.Millisecond
	}
	nextStart := lastRecord.Add(step)

	if !it.end.IsZero() && nextStart.After(it.end) {
		it.done = true
		return
	}

	it.next = Page{Start: nextStart, End: it.end, Limit: cur.Limit}
}

// SplitSpan cuts [start, end] into consecutive sub-ranges no wider than
// max, in ascending order with no overlap. Used for history endpoints that
// cap the date span of one request rather than the record count. A zero
// start or end yields a single unbounded page.
func SplitSpan(start, end time.Time, max time.Duration) []Page {
	if start.IsZero() || end.IsZero() || max <= 0 {
		return []Page{{Start: start, End: end}}
	}

	var pages []Page
	for cur := start; !cur.After(end); {
		pageEnd := cur.Add(max)
		if pageEnd.After(end) {
			pageEnd = end
		}
		pages = append(pages, Page{Start: cur, End: pageEnd})
		cur = pageEnd.Add(time.Millisecond)
	}
	return pages
}

// Note reports a human-readable clamping note, empty when the query was
// taken as given.
func (it *Iterator) Note() string {
	return it.note
}

// EffectiveLimit is the limit actually used after defaulting and clamping.
func (it *Iterator) EffectiveLimit() int {
	return it.limit
}
