package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeInfo is the exchange metadata snapshot from /api/v3/exchangeInfo.
type ExchangeInfo struct {
	Timezone   string
	ServerTime time.Time
	Symbols    []Symbol
}

// Symbol describes one trading pair and its precision rules.
type Symbol struct {
	Symbol             string
	Status             string
	BaseAsset          string
	BaseAssetPrecision int
	QuoteAsset         string
	QuotePrecision     int
	OrderTypes         []string
	IcebergAllowed     bool

	// Flattened filter values. Zero means the exchange did not publish
	// the corresponding filter for this pair.
	TickSize    decimal.Decimal // PRICE_FILTER
	StepSize    decimal.Decimal // LOT_SIZE
	MinQty      decimal.Decimal // LOT_SIZE
	MinNotional decimal.Decimal // MIN_NOTIONAL / NOTIONAL
}

// ServerTime is the exchange's authoritative clock reading paired with the
// local clock at the moment it was observed, so callers can derive skew.
type ServerTime struct {
	Server time.Time
	Local  time.Time
}

// Offset returns server minus local time.
func (s ServerTime) Offset() time.Duration {
	return s.Server.Sub(s.Local)
}
