package binance

import (
	"time"

	"github.com/ozgur-d/binance-client/model"
)

// Exchange paging rules. Declared once here; every convenience entry point
// funnels into the same canonical query path using these values.
const (
	DefaultCandleLimit = 500
	MaxCandleLimit     = 1000

	DefaultOrderLimit = 500
	MaxOrderLimit     = 1000

	DefaultBookLimit = 100
	MaxBookLimit     = 5000

	// MaxTransferSpan is the widest date range one deposit/withdrawal
	// history request may cover.
	MaxTransferSpan = 90 * 24 * time.Hour
)

// CandleQuery is the canonical candlestick request:
// (pair, interval, startTime?, endTime?, limit?). Zero times mean unset;
// a zero Limit means DefaultCandleLimit. When both a time range and a
// limit are given, the range wins and Limit caps the page size inside it.
type CandleQuery struct {
	Symbol   string
	Interval model.Interval
	Start    time.Time
	End      time.Time
	Limit    int

	// KeepPartialOnCancel returns already-fetched pages inside a
	// PartialFetchError when the context is canceled mid-pagination.
	// Off by default: cancellation discards partial results.
	KeepPartialOnCancel bool
}

// CandleSeries is a merged, strictly ascending candlestick sequence. Note
// is non-empty when the requested limit was clamped.
type CandleSeries struct {
	Candles        []model.Candlestick
	Note           string
	EffectiveLimit int
}

// OrderQuery is the canonical order-history request. Zero times mean
// unset; a zero Limit means DefaultOrderLimit. Range beats limit, as with
// candles.
type OrderQuery struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Limit  int

	KeepPartialOnCancel bool
}

// TransferQuery is the canonical deposit/withdrawal history request.
// Status defaults to TransferAll, which is a filter, not a record state.
type TransferQuery struct {
	Asset  string
	Status model.TransferStatus
	Start  time.Time
	End    time.Time

	KeepPartialOnCancel bool
}
