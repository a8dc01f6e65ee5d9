package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candlestick is one OHLCV bucket for a pair, identified by
// (symbol, interval, OpenTime).
type Candlestick struct {
	OpenTime    time.Time
	CloseTime   time.Time
	Open        decimal.Decimal
	High        decimal.Decimal
	Low         decimal.Decimal
	Close       decimal.Decimal
	Volume      decimal.Decimal
	QuoteVolume decimal.Decimal
	TradeCount  int64
}
