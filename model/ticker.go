package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticker is the latest traded price for a pair.
type Ticker struct {
	Symbol string
	Price  decimal.Decimal
}

// Tick is a 24-hour rolling window of price statistics for a pair.
type Tick struct {
	Symbol             string
	PriceChange        decimal.Decimal
	PriceChangePercent decimal.Decimal
	WeightedAvgPrice   decimal.Decimal
	PrevClosePrice     decimal.Decimal
	LastPrice          decimal.Decimal
	BidPrice           decimal.Decimal
	AskPrice           decimal.Decimal
	OpenPrice          decimal.Decimal
	HighPrice          decimal.Decimal
	LowPrice           decimal.Decimal
	Volume             decimal.Decimal
	QuoteVolume        decimal.Decimal
	OpenTime           time.Time
	CloseTime          time.Time
	TradeCount         int64
}
