// Package binance is a unified client facade for the Binance spot REST
// API: market data, account inspection, order lifecycle, and funds
// transfer behind one strongly-typed contract.
package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jpillora/backoff"

	"github.com/ozgur-d/binance-client/internal/cache"
	"github.com/ozgur-d/binance-client/internal/logger"
	"github.com/ozgur-d/binance-client/internal/metrics"
	"github.com/ozgur-d/binance-client/internal/normalize"
	"github.com/ozgur-d/binance-client/internal/ratelimit"
	"github.com/ozgur-d/binance-client/internal/signer"
)

const (
	DefaultBaseURL = "https://api.binance.com"

	apiKeyHeader     = "X-MBX-APIKEY"
	usedWeightHeader = "X-MBX-USED-WEIGHT-1M"
	retryAfterHeader = "Retry-After"
	weightWindowName = "weight-1m"
	orderWindowName  = "orders-10s"
)

// RateLimitMode selects what happens when the local weight budget is
// exhausted.
type RateLimitMode int

const (
	// BlockOnLimit waits for the rolling window to free enough weight.
	BlockOnLimit RateLimitMode = iota
	// FailOnLimit returns a RateLimitError carrying a retry-after hint.
	FailOnLimit
)

// Options configures a Client. The zero value plus credentials is a
// working production setup.
type Options struct {
	APIKey    string
	APISecret string

	// BaseURL defaults to the production endpoint.
	BaseURL string

	// Transport overrides the default HTTP transport; tests inject stubs
	// here. When set, BaseURL and HTTPClient are ignored.
	Transport Transport

	HTTPClient *http.Client

	// RecvWindow is how far behind the server clock a signed request may
	// be. Defaults to 60s.
	RecvWindow time.Duration

	RateLimitMode RateLimitMode

	// WeightPerMinute and OrdersPer10s configure the rolling budgets.
	// Zero values take the exchange's published defaults.
	WeightPerMinute int
	OrdersPer10s    int

	// StrictLimits rejects out-of-range limits instead of clamping them.
	StrictLimits bool

	// MaxRetries caps retries of transient transport failures. Defaults
	// to 3.
	MaxRetries int

	// MetricsBatch is how many requests to aggregate between latency log
	// lines.
	MetricsBatch int
}

// Client is the exchange facade. It is safe for concurrent use; the only
// shared mutable state is the rate-limit accounting and the symbol
// metadata cache, both internally synchronized and never locked across a
// network call.
type Client struct {
	transport  Transport
	signer     *signer.Signer
	weights    *ratelimit.Limiter
	orders     *ratelimit.Limiter
	symbols    *cache.SymbolCache
	metrics    *metrics.Tracker
	strict     bool
	maxRetries int
}

// New builds a client. Credentials may be empty for public market data;
// authenticated operations will then fail locally with an
// AuthenticationError.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	transport := opts.Transport
	if transport == nil {
		transport = NewHTTPTransport(baseURL, opts.HTTPClient)
	}

	weightLimit := opts.WeightPerMinute
	if weightLimit == 0 {
		weightLimit = 6000
	}
	orderLimit := opts.OrdersPer10s
	if orderLimit == 0 {
		orderLimit = 100
	}
	mode := ratelimit.ModeBlock
	if opts.RateLimitMode == FailOnLimit {
		mode = ratelimit.ModeFail
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	} else if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		transport: transport,
		signer:    signer.New(opts.APIKey, opts.APISecret, opts.RecvWindow),
		weights: ratelimit.New(mode, ratelimit.Window{
			Name:     weightWindowName,
			Interval: time.Minute,
			Limit:    weightLimit,
		}),
		orders: ratelimit.New(mode, ratelimit.Window{
			Name:     orderWindowName,
			Interval: 10 * time.Second,
			Limit:    orderLimit,
		}),
		symbols:    cache.New(),
		metrics:    metrics.NewTracker(opts.MetricsBatch),
		strict:     opts.StrictLimits,
		maxRetries: maxRetries,
	}
}

// ValidateExchangeConfigured is a pure local readiness check: it verifies
// the credential is present without making any network call. Callers use
// it as the gate before authenticated operations.
func (c *Client) ValidateExchangeConfigured() error {
	if err := c.signer.Ready(); err != nil {
		return &AuthenticationError{Reason: "api key or secret not configured"}
	}
	return nil
}

// SyncTime fetches the exchange clock and records the skew offset used
// when stamping signed requests.
func (c *Client) SyncTime(ctx context.Context) error {
	st, err := c.GetServerTime(ctx)
	if err != nil {
		return fmt.Errorf("sync time: %w", err)
	}
	c.signer.SetOffset(st.Offset())
	logger.Info("Time Synchronized",
		"server_time", st.Server.UnixMilli(),
		"local_time", st.Local.UnixMilli(),
		"offset_ms", st.Offset().Milliseconds(),
	)
	return nil
}

// call describes one endpoint invocation for the shared request path.
type call struct {
	method string
	path   string
	params url.Values
	sign   bool
	weight int
	order  bool // also charges the order-placement budget
}

// do runs the shared request pipeline: rate gate, sign, send, retry, and
// raw-body return. Signing happens per attempt so every retry carries a
// fresh timestamp.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	if cl.sign {
		if err := c.signer.Ready(); err != nil {
			return nil, &AuthenticationError{Reason: "api key or secret not configured"}
		}
	}
	if cl.weight <= 0 {
		cl.weight = 1
	}

	bo := &backoff.Backoff{
		Min:    250 * time.Millisecond,
		Max:    5 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 0; ; attempt++ {
		if err := c.acquire(ctx, cl); err != nil {
			return nil, err
		}

		query := cl.params
		if cl.sign {
			signed, err := c.signer.Sign(cl.params)
			if err != nil {
				return nil, &AuthenticationError{Reason: err.Error()}
			}
			query = signed
		}

		req := &Request{
			Method: cl.method,
			Path:   cl.path,
			Query:  query,
			Header: http.Header{},
		}
		if key := c.signer.APIKey(); key != "" {
			req.Header.Set(apiKeyHeader, key)
		}

		start := time.Now()
		resp, err := c.transport.Send(ctx, req)
		c.metrics.Track(cl.path, time.Since(start))

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt < c.maxRetries {
				logger.Warn("Transport failure, retrying", "path", cl.path, "attempt", attempt+1, "error", err)
				if werr := sleep(ctx, bo.Duration()); werr != nil {
					return nil, werr
				}
				continue
			}
			var terr *TransportError
			if errors.As(err, &terr) {
				return nil, err
			}
			return nil, &TransportError{Err: err}
		}

		c.observeWeight(resp.Header)

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp.Body, nil

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 418:
			retryAfter := retryAfterHint(resp.Header, bo)
			if attempt < c.maxRetries {
				logger.Warn("Rate limited by exchange, waiting", "path", cl.path, "retry_after", retryAfter)
				if werr := sleep(ctx, retryAfter); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, &RateLimitError{RetryAfter: retryAfter}

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Retrying a rejected signature cannot succeed and risks
			// timestamp replay, so auth failures surface immediately.
			return nil, &AuthenticationError{Reason: fmt.Sprintf("exchange rejected request with status %d", resp.StatusCode)}

		case resp.StatusCode >= 500:
			if attempt < c.maxRetries {
				logger.Warn("Server error, retrying", "path", cl.path, "status", resp.StatusCode, "attempt", attempt+1)
				if werr := sleep(ctx, bo.Duration()); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, &TransportError{Err: fmt.Errorf("server error status %d", resp.StatusCode)}

		default:
			return nil, apiError(resp)
		}
	}
}

// acquire charges the request against the shared budgets, translating
// limiter failures into the public taxonomy.
func (c *Client) acquire(ctx context.Context, cl call) error {
	if err := c.weights.Acquire(ctx, cl.weight); err != nil {
		return rateErr(err)
	}
	if cl.order {
		if err := c.orders.Acquire(ctx, 1); err != nil {
			return rateErr(err)
		}
	}
	return nil
}

func rateErr(err error) error {
	var berr *ratelimit.BudgetError
	if errors.As(err, &berr) {
		return &RateLimitError{RetryAfter: berr.RetryAfter}
	}
	return err
}

// observeWeight feeds the server-reported usage back into local
// accounting and logs when consumption runs hot, mirroring the exchange's
// own headers.
func (c *Client) observeWeight(header http.Header) {
	raw := header.Get(usedWeightHeader)
	if raw == "" {
		return
	}
	used, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	c.weights.Observe(weightWindowName, used)

	switch {
	case used > 5400:
		logger.Error("Critical API weight usage", "used_1m", used)
	case used > 3000:
		logger.Warn("High API weight usage", "used_1m", used)
	default:
		logger.Debug("API weight usage", "used_1m", used)
	}
}

func retryAfterHint(header http.Header, bo *backoff.Backoff) time.Duration {
	if raw := header.Get(retryAfterHeader); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return bo.Duration()
}

func apiError(resp *RawResponse) error {
	var payload struct {
		Code int64  `json:"code"`
		Msg  string `json:"msg"`
	}
	_ = json.Unmarshal(resp.Body, &payload)

	// Signature, key, and timestamp rejections are credential problems
	// regardless of the HTTP status they ride in on.
	switch payload.Code {
	case -1021, -1022, -2014, -2015:
		return &AuthenticationError{Reason: fmt.Sprintf("exchange error code %d", payload.Code)}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       payload.Code,
		Message:    payload.Msg,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// normErr converts a normalizer failure into the public taxonomy.
func normErr(err error) error {
	var ferr *normalize.FieldError
	if errors.As(err, &ferr) {
		return &MalformedResponseError{Field: ferr.Field, Err: ferr.Cause}
	}
	return &MalformedResponseError{Field: "body", Err: err}
}
