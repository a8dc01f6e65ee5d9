package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state the exchange reports for an order.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"

	// OrderStatusUnknown is reported for statuses this client does not
	// recognize, so a new exchange state never aborts a batch.
	OrderStatusUnknown OrderStatus = "UNKNOWN"
)

// OrderSide is the direction of a trade.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderType is the exchange order type.
type OrderType string

const (
	OrderTypeLimit           OrderType = "LIMIT"
	OrderTypeMarket          OrderType = "MARKET"
	OrderTypeStopLoss        OrderType = "STOP_LOSS"
	OrderTypeStopLossLimit   OrderType = "STOP_LOSS_LIMIT"
	OrderTypeTakeProfit      OrderType = "TAKE_PROFIT"
	OrderTypeTakeProfitLimit OrderType = "TAKE_PROFIT_LIMIT"
)

// OrderResponse is the exchange's record of a submitted order.
type OrderResponse struct {
	Symbol             string
	OrderID            int64
	ClientOrderID      string
	Price              decimal.Decimal
	OrigQty            decimal.Decimal
	ExecutedQty        decimal.Decimal
	CumulativeQuoteQty decimal.Decimal
	Status             OrderStatus
	TimeInForce        string
	Type               OrderType
	Side               OrderSide
	StopPrice          decimal.Decimal
	IcebergQty         decimal.Decimal
	Time               time.Time
	UpdateTime         time.Time
	IsWorking          bool
	Fills              []Fill
}

// Fill is one execution that contributed to an order.
type Fill struct {
	Price           decimal.Decimal
	Qty             decimal.Decimal
	Commission      decimal.Decimal
	CommissionAsset string
}

// TradeParams is the caller's intent when placing an order.
type TradeParams struct {
	Symbol        string
	Side          OrderSide
	Type          OrderType
	TimeInForce   string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	StopPrice     decimal.Decimal
	IcebergQty    decimal.Decimal
	ClientOrderID string // generated when empty
}

// CancelTradeParams identifies an order to cancel. OrderID takes precedence
// over ClientOrderID when both are set.
type CancelTradeParams struct {
	Symbol        string
	OrderID       int64
	ClientOrderID string
}
