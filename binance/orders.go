package binance

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ozgur-d/binance-client/internal/normalize"
	"github.com/ozgur-d/binance-client/internal/window"
	"github.com/ozgur-d/binance-client/model"
)

// PostTrade places an order. Parameters are validated locally before
// signing; a client order id is generated when the caller supplies none.
func (c *Client) PostTrade(ctx context.Context, params model.TradeParams) (*model.OrderResponse, error) {
	if err := c.validateTrade(params); err != nil {
		return nil, err
	}

	if params.ClientOrderID == "" {
		params.ClientOrderID = uuid.NewString()
	}

	vals := url.Values{}
	vals.Set("symbol", params.Symbol)
	vals.Set("side", string(params.Side))
	vals.Set("type", string(params.Type))
	vals.Set("newClientOrderId", params.ClientOrderID)
	vals.Set("newOrderRespType", "FULL")
	if params.TimeInForce != "" {
		vals.Set("timeInForce", params.TimeInForce)
	}
	if !params.Quantity.IsZero() {
		vals.Set("quantity", params.Quantity.String())
	}
	if !params.Price.IsZero() {
		vals.Set("price", params.Price.String())
	}
	if !params.StopPrice.IsZero() {
		vals.Set("stopPrice", params.StopPrice.String())
	}
	if !params.IcebergQty.IsZero() {
		vals.Set("icebergQty", params.IcebergQty.String())
	}

	body, err := c.do(ctx, call{
		method: "POST",
		path:   "/api/v3/order",
		params: vals,
		sign:   true,
		weight: 1,
		order:  true,
	})
	if err != nil {
		return nil, err
	}

	order, err := normalize.Order(body)
	if err != nil {
		return nil, normErr(err)
	}
	return order, nil
}

func (c *Client) validateTrade(params model.TradeParams) error {
	if err := c.checkSymbol(params.Symbol); err != nil {
		return err
	}
	if params.Side != model.SideBuy && params.Side != model.SideSell {
		return &ValidationError{Field: "side", Reason: "must be BUY or SELL"}
	}
	if params.Type == "" {
		return &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	if params.Quantity.Sign() <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be greater than zero"}
	}
	if params.Type == model.OrderTypeLimit && params.Price.Sign() <= 0 {
		return &ValidationError{Field: "price", Reason: "limit orders require a positive price"}
	}
	return nil
}

// CancelTrade cancels an order by exchange id or client order id.
func (c *Client) CancelTrade(ctx context.Context, params model.CancelTradeParams) (*model.OrderResponse, error) {
	if err := c.checkSymbol(params.Symbol); err != nil {
		return nil, err
	}
	if params.OrderID == 0 && params.ClientOrderID == "" {
		return nil, &ValidationError{Field: "orderId", Reason: "either orderId or clientOrderId is required"}
	}

	vals := url.Values{}
	vals.Set("symbol", params.Symbol)
	if params.OrderID != 0 {
		vals.Set("orderId", strconv.FormatInt(params.OrderID, 10))
	} else {
		vals.Set("origClientOrderId", params.ClientOrderID)
	}

	body, err := c.do(ctx, call{
		method: "DELETE",
		path:   "/api/v3/order",
		params: vals,
		sign:   true,
		weight: 1,
		order:  true,
	})
	if err != nil {
		return nil, err
	}

	order, err := normalize.Order(body)
	if err != nil {
		return nil, normErr(err)
	}
	return order, nil
}

// GetOrder looks up one order. The response reflects whatever state the
// exchange reports at call time; nothing is cached.
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64) (*model.OrderResponse, error) {
	if err := c.checkSymbol(symbol); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, &ValidationError{Field: "orderId", Reason: "must be greater than zero"}
	}

	vals := url.Values{}
	vals.Set("symbol", symbol)
	vals.Set("orderId", strconv.FormatInt(orderID, 10))

	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/order",
		params: vals,
		sign:   true,
		weight: 2,
	})
	if err != nil {
		return nil, err
	}

	order, err := normalize.Order(body)
	if err != nil {
		return nil, normErr(err)
	}
	return order, nil
}

// GetOrders is the canonical order-history operation. Explicit ranges are
// split into sequential pages the same way candle ranges are.
func (c *Client) GetOrders(ctx context.Context, q OrderQuery) ([]model.OrderResponse, error) {
	if err := c.checkSymbol(q.Symbol); err != nil {
		return nil, err
	}

	planner := window.Planner{
		Step:         time.Millisecond,
		MaxPage:      MaxOrderLimit,
		DefaultLimit: DefaultOrderLimit,
		Strict:       c.strict,
	}
	it, err := planner.Plan(window.Query{Start: q.Start, End: q.End, Limit: q.Limit})
	if err != nil {
		return nil, plannerErr(err)
	}

	var merged []model.OrderResponse
	pages := 0

	for {
		page, ok := it.Next()
		if !ok {
			break
		}

		vals := url.Values{}
		vals.Set("symbol", q.Symbol)
		vals.Set("limit", strconv.Itoa(page.Limit))
		if !page.Start.IsZero() {
			vals.Set("startTime", strconv.FormatInt(page.Start.UnixMilli(), 10))
		}
		if !page.End.IsZero() {
			vals.Set("endTime", strconv.FormatInt(page.End.UnixMilli(), 10))
		}

		body, err := c.do(ctx, call{
			method: "GET",
			path:   "/api/v3/allOrders",
			params: vals,
			sign:   true,
			weight: 10,
		})
		if err != nil {
			return nil, partial(err, pages, merged, q.KeepPartialOnCancel)
		}

		orders, err := normalize.Orders(body)
		if err != nil {
			return nil, partial(normErr(err), pages, merged, q.KeepPartialOnCancel)
		}

		merged = append(merged, orders...)
		pages++

		if len(orders) == 0 {
			break
		}
		it.Advance(orders[len(orders)-1].Time, len(orders))
	}

	return merged, nil
}

// GetRecentOrders returns the default page of order history for a pair.
func (c *Client) GetRecentOrders(ctx context.Context, symbol string) ([]model.OrderResponse, error) {
	return c.GetOrders(ctx, OrderQuery{Symbol: symbol})
}

// GetOrdersLimit returns up to limit recent orders (default 500, max 1000).
func (c *Client) GetOrdersLimit(ctx context.Context, symbol string, limit int) ([]model.OrderResponse, error) {
	return c.GetOrders(ctx, OrderQuery{Symbol: symbol, Limit: limit})
}

// GetOrdersRange returns order history between two times.
func (c *Client) GetOrdersRange(ctx context.Context, symbol string, from, to time.Time) ([]model.OrderResponse, error) {
	return c.GetOrders(ctx, OrderQuery{Symbol: symbol, Start: from, End: to})
}

// GetOpenOrders returns the currently open orders for a pair.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]model.OrderResponse, error) {
	if err := c.checkSymbol(symbol); err != nil {
		return nil, err
	}

	vals := url.Values{}
	vals.Set("symbol", symbol)

	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/openOrders",
		params: vals,
		sign:   true,
		weight: 3,
	})
	if err != nil {
		return nil, err
	}

	orders, err := normalize.Orders(body)
	if err != nil {
		return nil, normErr(err)
	}
	return orders, nil
}
