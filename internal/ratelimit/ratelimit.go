// Package ratelimit tracks rolling weight budgets so outbound requests
// never exceed the exchange's published limits.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Mode selects what Acquire does when a budget is exhausted.
type Mode int

const (
	// ModeBlock waits until the rolling window frees enough weight.
	ModeBlock Mode = iota
	// ModeFail returns a BudgetError carrying the wait estimate.
	ModeFail
)

// Window is one configured rolling budget, e.g. 6000 request weight per
// minute or 50 orders per 10 seconds.
type Window struct {
	Name     string
	Interval time.Duration
	Limit    int
}

// BudgetError reports an exhausted budget and how long until the rolling
// window is expected to free enough weight.
type BudgetError struct {
	Window     string
	RetryAfter time.Duration
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("rate limit budget %q exhausted, retry after %s", e.Window, e.RetryAfter)
}

type entry struct {
	at     time.Time
	weight int
}

type bucket struct {
	cfg     Window
	entries []entry
	used    int
}

// Limiter serializes budget accounting but never holds its lock across a
// wait, so one blocked caller does not stall unrelated accounting.
type Limiter struct {
	mode Mode
	now  func() time.Time

	ch chan struct{} // size-1 semaphore guarding buckets

	buckets []*bucket
}

// New builds a limiter over the given windows. With no windows every
// acquisition is granted immediately.
func New(mode Mode, windows ...Window) *Limiter {
	l := &Limiter{
		mode: mode,
		now:  time.Now,
		ch:   make(chan struct{}, 1),
	}
	for _, w := range windows {
		if w.Limit > 0 && w.Interval > 0 {
			l.buckets = append(l.buckets, &bucket{cfg: w})
		}
	}
	return l
}

// Acquire charges weight against every window, waiting (ModeBlock) or
// failing with a BudgetError (ModeFail) when a budget is exhausted. A
// request is never silently dropped and never granted over budget.
func (l *Limiter) Acquire(ctx context.Context, weight int) error {
	if weight <= 0 {
		weight = 1
	}

	for {
		if err := l.lock(ctx); err != nil {
			return err
		}

		now := l.now()
		wait := time.Duration(0)
		blocked := ""
		for _, b := range l.buckets {
			b.prune(now)
			if weight > b.cfg.Limit {
				l.unlock()
				return &BudgetError{
					Window:     b.cfg.Name,
					RetryAfter: b.cfg.Interval,
				}
			}
			if b.used+weight > b.cfg.Limit {
				if w := b.waitFor(now, weight); w > wait {
					wait = w
					blocked = b.cfg.Name
				}
			}
		}

		if wait == 0 {
			for _, b := range l.buckets {
				b.add(now, weight)
			}
			l.unlock()
			return nil
		}

		l.unlock()

		if l.mode == ModeFail {
			return &BudgetError{Window: blocked, RetryAfter: wait}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Observe reconciles local accounting with the usage the exchange reports
// in its response headers. When the server has seen more weight than we
// accounted for (another process sharing the key, lost responses), a
// synthetic entry tops the bucket up.
func (l *Limiter) Observe(window string, used int) {
	if err := l.lock(context.Background()); err != nil {
		return
	}
	defer l.unlock()

	now := l.now()
	for _, b := range l.buckets {
		if b.cfg.Name != window {
			continue
		}
		b.prune(now)
		if used > b.used {
			b.add(now, used-b.used)
		}
	}
}

func (l *Limiter) lock(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Limiter) unlock() {
	<-l.ch
}

func (b *bucket) prune(now time.Time) {
	cutoff := now.Add(-b.cfg.Interval)
	i := 0
	for i < len(b.entries) && !b.entries[i].at.After(cutoff) {
		b.used -= b.entries[i].weight
		i++
	}
	b.entries = b.entries[i:]
}

func (b *bucket) add(now time.Time, weight int) {
	b.entries = append(b.entries, entry{at: now, weight: weight})
	b.used += weight
}

// waitFor returns how long until enough entries age out of the rolling
// window to admit weight.
func (b *bucket) waitFor(now time.Time, weight int) time.Duration {
	need := b.used + weight - b.cfg.Limit
	freed := 0
	for _, e := range b.entries {
		freed += e.weight
		if freed >= need {
			return e.at.Add(b.cfg.Interval).Sub(now)
		}
	}
	return b.cfg.Interval
}
