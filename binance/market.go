package binance

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ozgur-d/binance-client/internal/normalize"
	"github.com/ozgur-d/binance-client/internal/window"
	"github.com/ozgur-d/binance-client/model"
)

// GetExchangeInfo returns exchange and symbol metadata. The first
// successful fetch is cached for the process lifetime; use
// RefreshExchangeInfo to re-fetch.
func (c *Client) GetExchangeInfo(ctx context.Context) (*model.ExchangeInfo, error) {
	if info, ok := c.symbols.Info(); ok {
		return info, nil
	}
	return c.RefreshExchangeInfo(ctx)
}

// RefreshExchangeInfo re-fetches symbol metadata and replaces the cache.
// This is the only way the cache is invalidated.
func (c *Client) RefreshExchangeInfo(ctx context.Context) (*model.ExchangeInfo, error) {
	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/exchangeInfo",
		weight: 10,
	})
	if err != nil {
		return nil, err
	}

	info, err := normalize.ExchangeInfo(body)
	if err != nil {
		return nil, normErr(err)
	}
	c.symbols.Set(info)
	return info, nil
}

// GetTradingPairs returns every pair name the exchange lists.
func (c *Client) GetTradingPairs(ctx context.Context) ([]string, error) {
	if _, err := c.GetExchangeInfo(ctx); err != nil {
		return nil, err
	}
	return c.symbols.Pairs(), nil
}

// GetTradingPairsByBase returns the pairs whose base asset matches.
func (c *Client) GetTradingPairsByBase(ctx context.Context, baseSymbol string) ([]string, error) {
	if baseSymbol == "" {
		return nil, &ValidationError{Field: "baseSymbol", Reason: "must not be empty"}
	}
	if _, err := c.GetExchangeInfo(ctx); err != nil {
		return nil, err
	}
	return c.symbols.PairsByBase(baseSymbol), nil
}

// GetTradingPairDetail returns one pair's metadata and precision rules.
func (c *Client) GetTradingPairDetail(ctx context.Context, pair string) (*model.Symbol, error) {
	if pair == "" {
		return nil, &ValidationError{Field: "pair", Reason: "must not be empty"}
	}
	if _, err := c.GetExchangeInfo(ctx); err != nil {
		return nil, err
	}
	sym, ok := c.symbols.Symbol(pair)
	if !ok {
		return nil, &ValidationError{Field: "pair", Reason: fmt.Sprintf("%s is not listed on the exchange", pair)}
	}
	return &sym, nil
}

// GetTradingPairDetails returns metadata for every listed pair.
func (c *Client) GetTradingPairDetails(ctx context.Context) ([]model.Symbol, error) {
	info, err := c.GetExchangeInfo(ctx)
	if err != nil {
		return nil, err
	}
	return info.Symbols, nil
}

// GetServerTime returns the exchange's authoritative clock.
func (c *Client) GetServerTime(ctx context.Context) (*model.ServerTime, error) {
	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/time",
		weight: 1,
	})
	if err != nil {
		return nil, err
	}

	server, err := normalize.ServerTime(body)
	if err != nil {
		return nil, normErr(err)
	}
	return &model.ServerTime{Server: server, Local: time.Now()}, nil
}

// GetOrderBook returns a depth snapshot. A zero limit means
// DefaultBookLimit.
func (c *Client) GetOrderBook(ctx context.Context, symbol string, limit int) (*model.OrderBook, error) {
	if err := c.checkSymbol(symbol); err != nil {
		return nil, err
	}
	switch {
	case limit == 0:
		limit = DefaultBookLimit
	case limit < 0 || limit > MaxBookLimit:
		if c.strict {
			return nil, &ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxBookLimit)}
		}
		limit = MaxBookLimit
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/depth",
		params: params,
		weight: bookWeight(limit),
	})
	if err != nil {
		return nil, err
	}

	book, err := normalize.OrderBook(body)
	if err != nil {
		return nil, normErr(err)
	}
	return book, nil
}

func bookWeight(limit int) int {
	switch {
	case limit <= 100:
		return 1
	case limit <= 500:
		return 5
	case limit <= 1000:
		return 10
	default:
		return 50
	}
}

// GetTicker returns the latest price for a pair.
func (c *Client) GetTicker(ctx context.Context, pair string) (*model.Ticker, error) {
	if err := c.checkSymbol(pair); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("symbol", pair)

	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/ticker/price",
		params: params,
		weight: 1,
	})
	if err != nil {
		return nil, err
	}

	ticker, err := normalize.Ticker(body)
	if err != nil {
		return nil, normErr(err)
	}
	return ticker, nil
}

// GetTickers returns the latest price for every pair.
func (c *Client) GetTickers(ctx context.Context) ([]model.Ticker, error) {
	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/ticker/price",
		weight: 2,
	})
	if err != nil {
		return nil, err
	}

	tickers, err := normalize.Tickers(body)
	if err != nil {
		return nil, normErr(err)
	}
	return tickers, nil
}

// Get24HourStats returns rolling 24h statistics. With an empty symbol the
// exchange returns every pair, at a much higher weight cost.
func (c *Client) Get24HourStats(ctx context.Context, symbol string) ([]model.Tick, error) {
	params := url.Values{}
	weight := 40
	if symbol != "" {
		params.Set("symbol", symbol)
		weight = 1
	}

	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/ticker/24hr",
		params: params,
		weight: weight,
	})
	if err != nil {
		return nil, err
	}

	if symbol != "" {
		tick, err := normalize.Tick(body)
		if err != nil {
			return nil, normErr(err)
		}
		return []model.Tick{*tick}, nil
	}

	ticks, err := normalize.Ticks(body)
	if err != nil {
		return nil, normErr(err)
	}
	return ticks, nil
}

// GetCryptos returns 24h statistics for every pair.
func (c *Client) GetCryptos(ctx context.Context) ([]model.Tick, error) {
	return c.Get24HourStats(ctx, "")
}

// GetCandles is the canonical candlestick operation. Ranges wider than one
// exchange page are split into sequential sub-windows and merged back into
// one strictly ascending sequence.
func (c *Client) GetCandles(ctx context.Context, q CandleQuery) (*CandleSeries, error) {
	if err := c.checkSymbol(q.Symbol); err != nil {
		return nil, err
	}
	if !q.Interval.Valid() {
		return nil, &ValidationError{Field: "interval", Reason: fmt.Sprintf("%q is not a recognized interval", string(q.Interval))}
	}

	planner := window.Planner{
		Step:         q.Interval.Duration(),
		MaxPage:      MaxCandleLimit,
		DefaultLimit: DefaultCandleLimit,
		Strict:       c.strict,
	}
	it, err := planner.Plan(window.Query{Start: q.Start, End: q.End, Limit: q.Limit})
	if err != nil {
		return nil, plannerErr(err)
	}

	series := &CandleSeries{
		Note:           it.Note(),
		EffectiveLimit: it.EffectiveLimit(),
	}
	pages := 0

	for {
		page, ok := it.Next()
		if !ok {
			break
		}

		body, err := c.do(ctx, call{
			method: "GET",
			path:   "/api/v3/klines",
			params: candleParams(q.Symbol, q.Interval, page),
			weight: 1,
		})
		if err != nil {
			return nil, partial(err, pages, series.Candles, q.KeepPartialOnCancel)
		}

		candles, err := normalize.Candles(body)
		if err != nil {
			return nil, partial(normErr(err), pages, series.Candles, q.KeepPartialOnCancel)
		}

		// Drop any overlap with the previous page so the merged sequence
		// stays strictly ascending with no duplicate open times.
		for _, cd := range candles {
			if n := len(series.Candles); n > 0 && !cd.OpenTime.After(series.Candles[n-1].OpenTime) {
				continue
			}
			series.Candles = append(series.Candles, cd)
		}
		pages++

		if len(candles) == 0 {
			break
		}
		it.Advance(candles[len(candles)-1].OpenTime, len(candles))
	}

	return series, nil
}

// GetCandlesLimit returns the most recent candles for a pair.
func (c *Client) GetCandlesLimit(ctx context.Context, pair string, interval model.Interval, limit int) (*CandleSeries, error) {
	return c.GetCandles(ctx, CandleQuery{Symbol: pair, Interval: interval, Limit: limit})
}

// GetCandlesBefore returns candles ending at the given time.
func (c *Client) GetCandlesBefore(ctx context.Context, pair string, interval model.Interval, end time.Time, limit int) (*CandleSeries, error) {
	return c.GetCandles(ctx, CandleQuery{Symbol: pair, Interval: interval, End: end, Limit: limit})
}

// GetCandlesBeforeMillis is GetCandlesBefore with an epoch-millis end.
func (c *Client) GetCandlesBeforeMillis(ctx context.Context, pair string, interval model.Interval, endMillis int64, limit int) (*CandleSeries, error) {
	return c.GetCandlesBefore(ctx, pair, interval, time.UnixMilli(endMillis), limit)
}

// GetCandlesRange returns every candle in [start, end].
func (c *Client) GetCandlesRange(ctx context.Context, pair string, interval model.Interval, start, end time.Time) (*CandleSeries, error) {
	return c.GetCandles(ctx, CandleQuery{Symbol: pair, Interval: interval, Start: start, End: end})
}

func candleParams(symbol string, interval model.Interval, page window.Page) url.Values {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", string(interval))
	params.Set("limit", strconv.Itoa(page.Limit))
	if !page.Start.IsZero() {
		params.Set("startTime", strconv.FormatInt(page.Start.UnixMilli(), 10))
	}
	if !page.End.IsZero() {
		params.Set("endTime", strconv.FormatInt(page.End.UnixMilli(), 10))
	}
	return params
}

// checkSymbol validates a pair locally: non-empty, and listed when
// metadata has already been loaded. It never triggers a metadata fetch.
func (c *Client) checkSymbol(symbol string) error {
	if symbol == "" {
		return &ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if c.symbols.Loaded() {
		if _, ok := c.symbols.Symbol(symbol); !ok {
			return &ValidationError{Field: "symbol", Reason: fmt.Sprintf("%s is not listed on the exchange", symbol)}
		}
	}
	return nil
}

func plannerErr(err error) error {
	switch {
	case errors.Is(err, window.ErrInvalidRange):
		return &ValidationError{Field: "timeRange", Reason: err.Error()}
	case errors.Is(err, window.ErrLimitOutOfRange):
		return &ValidationError{Field: "limit", Reason: err.Error()}
	}
	return err
}

// partial wraps a mid-pagination failure. Cancellation discards fetched
// pages unless the caller opted into partial results.
func partial(cause error, pages int, fetched any, keepOnCancel bool) error {
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		if !keepOnCancel {
			return cause
		}
	}
	if pages == 0 {
		return cause
	}
	return &PartialFetchError{Completed: pages, Partial: fetched, Cause: cause}
}
