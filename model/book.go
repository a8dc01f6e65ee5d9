package model

import "github.com/shopspring/decimal"

// BookLevel is one (price, quantity) rung of an order book ladder.
type BookLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook is a point-in-time depth snapshot for a pair. Bids are ordered
// by price descending, asks ascending.
type OrderBook struct {
	LastUpdateID int64
	Bids         []BookLevel
	Asks         []BookLevel
}
