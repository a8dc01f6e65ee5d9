// Package normalize maps raw exchange payloads into the unified entity
// model: numeric-as-string prices become decimals, integer status codes
// become named enums, epoch-millis become time.Time.
package normalize

import (
	"encoding/json"
	"fmt"
	"time"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/shopspring/decimal"

	"github.com/ozgur-d/binance-client/model"
)

// FieldError reports a malformed payload and names the offending field.
// It signals an exchange contract change and is never retried.
type FieldError struct {
	Field string
	Cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed response field %q: %v", e.Field, e.Cause)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}

func fieldErr(field string, cause error) *FieldError {
	return &FieldError{Field: field, Cause: cause}
}

func dec(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fieldErr(field, err)
	}
	return d, nil
}

func millis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// OrderStatus maps an exchange status string to the client vocabulary.
// Anything unrecognized maps to Unknown instead of failing, so a new
// exchange state never aborts a batch.
func OrderStatus(raw string) model.OrderStatus {
	switch raw {
	case "NEW":
		return model.OrderStatusNew
	case "PARTIALLY_FILLED":
		return model.OrderStatusPartiallyFilled
	case "FILLED":
		return model.OrderStatusFilled
	case "CANCELED", "PENDING_CANCEL":
		return model.OrderStatusCanceled
	case "REJECTED":
		return model.OrderStatusRejected
	case "EXPIRED", "EXPIRED_IN_MATCH":
		return model.OrderStatusExpired
	default:
		return model.OrderStatusUnknown
	}
}

// DepositStatus maps the exchange's integer deposit codes.
func DepositStatus(code int) model.TransferStatus {
	switch code {
	case 0:
		return model.TransferPending
	case 1, 6:
		return model.TransferSuccess
	default:
		return model.TransferUnknown
	}
}

// WithdrawalStatus maps the exchange's integer withdrawal codes.
func WithdrawalStatus(code int) model.TransferStatus {
	switch code {
	case 0, 2, 4:
		return model.TransferPending
	case 1:
		return model.TransferCanceled
	case 3, 5:
		return model.TransferFailed
	case 6:
		return model.TransferSuccess
	default:
		return model.TransferUnknown
	}
}

// Candles parses the kline endpoint's array-of-arrays shape.
func Candles(data []byte) ([]model.Candlestick, error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fieldErr("klines", err)
	}
	rows, err := js.Array()
	if err != nil {
		return nil, fieldErr("klines", err)
	}

	candles := make([]model.Candlestick, 0, len(rows))
	for i := range rows {
		row := js.GetIndex(i)
		if len(row.MustArray()) < 9 {
			return nil, fieldErr(fmt.Sprintf("klines[%d]", i), fmt.Errorf("expected at least 9 elements, got %d", len(row.MustArray())))
		}

		var c model.Candlestick
		c.OpenTime = millis(row.GetIndex(0).MustInt64())
		c.CloseTime = millis(row.GetIndex(6).MustInt64())
		c.TradeCount = row.GetIndex(8).MustInt64()

		fields := []struct {
			idx  int
			name string
			dst  *decimal.Decimal
		}{
			{1, "open", &c.Open},
			{2, "high", &c.High},
			{3, "low", &c.Low},
			{4, "close", &c.Close},
			{5, "volume", &c.Volume},
			{7, "quoteVolume", &c.QuoteVolume},
		}
		for _, f := range fields {
			if f.idx == 7 && len(row.MustArray()) <= 7 {
				continue
			}
			d, err := dec(fmt.Sprintf("klines[%d].%s", i, f.name), row.GetIndex(f.idx).MustString())
			if err != nil {
				return nil, err
			}
			*f.dst = d
		}

		if c.OpenTime.IsZero() {
			return nil, fieldErr(fmt.Sprintf("klines[%d].openTime", i), fmt.Errorf("missing or zero"))
		}
		candles = append(candles, c)
	}
	return candles, nil
}

type rawOrder struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	TimeInForce         string `json:"timeInForce"`
	Type                string `json:"type"`
	Side                string `json:"side"`
	StopPrice           string `json:"stopPrice"`
	IcebergQty          string `json:"icebergQty"`
	Time                int64  `json:"time"`
	TransactTime        int64  `json:"transactTime"`
	UpdateTime          int64  `json:"updateTime"`
	IsWorking           bool   `json:"isWorking"`
	Fills               []struct {
		Price           string `json:"price"`
		Qty             string `json:"qty"`
		Commission      string `json:"commission"`
		CommissionAsset string `json:"commissionAsset"`
	} `json:"fills"`
}

func (r *rawOrder) toModel() (model.OrderResponse, error) {
	if r.Symbol == "" {
		return model.OrderResponse{}, fieldErr("symbol", fmt.Errorf("missing"))
	}

	o := model.OrderResponse{
		Symbol:        r.Symbol,
		OrderID:       r.OrderID,
		ClientOrderID: r.ClientOrderID,
		Status:        OrderStatus(r.Status),
		TimeInForce:   r.TimeInForce,
		Type:          model.OrderType(r.Type),
		Side:          model.OrderSide(r.Side),
		Time:          millis(r.Time),
		UpdateTime:    millis(r.UpdateTime),
		IsWorking:     r.IsWorking,
	}
	if o.Time.IsZero() {
		o.Time = millis(r.TransactTime)
	}

	var err error
	if o.Price, err = dec("price", r.Price); err != nil {
		return o, err
	}
	if o.OrigQty, err = dec("origQty", r.OrigQty); err != nil {
		return o, err
	}
	if o.ExecutedQty, err = dec("executedQty", r.ExecutedQty); err != nil {
		return o, err
	}
	if o.CumulativeQuoteQty, err = dec("cummulativeQuoteQty", r.CummulativeQuoteQty); err != nil {
		return o, err
	}
	if o.StopPrice, err = dec("stopPrice", r.StopPrice); err != nil {
		return o, err
	}
	if o.IcebergQty, err = dec("icebergQty", r.IcebergQty); err != nil {
		return o, err
	}

	for _, f := range r.Fills {
		fill := model.Fill{CommissionAsset: f.CommissionAsset}
		if fill.Price, err = dec("fills.price", f.Price); err != nil {
			return o, err
		}
		if fill.Qty, err = dec("fills.qty", f.Qty); err != nil {
			return o, err
		}
		if fill.Commission, err = dec("fills.commission", f.Commission); err != nil {
			return o, err
		}
		o.Fills = append(o.Fills, fill)
	}
	return o, nil
}

// Order parses a single order payload.
func Order(data []byte) (*model.OrderResponse, error) {
	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fieldErr("order", err)
	}
	o, err := raw.toModel()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Orders parses an array of order payloads.
func Orders(data []byte) ([]model.OrderResponse, error) {
	var raws []rawOrder
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fieldErr("orders", err)
	}
	out := make([]model.OrderResponse, 0, len(raws))
	for i := range raws {
		o, err := raws[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

type rawAccount struct {
	MakerCommission  int64  `json:"makerCommission"`
	TakerCommission  int64  `json:"takerCommission"`
	BuyerCommission  int64  `json:"buyerCommission"`
	SellerCommission int64  `json:"sellerCommission"`
	CanTrade         bool   `json:"canTrade"`
	CanWithdraw      bool   `json:"canWithdraw"`
	CanDeposit       bool   `json:"canDeposit"`
	UpdateTime       int64  `json:"updateTime"`
	AccountType      string `json:"accountType"`
	Balances         []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// Account parses the account endpoint payload.
func Account(data []byte) (*model.Account, error) {
	var raw rawAccount
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fieldErr("account", err)
	}

	acct := &model.Account{
		MakerCommission:  raw.MakerCommission,
		TakerCommission:  raw.TakerCommission,
		BuyerCommission:  raw.BuyerCommission,
		SellerCommission: raw.SellerCommission,
		CanTrade:         raw.CanTrade,
		CanWithdraw:      raw.CanWithdraw,
		CanDeposit:       raw.CanDeposit,
		UpdateTime:       millis(raw.UpdateTime),
		AccountType:      raw.AccountType,
	}

	for _, b := range raw.Balances {
		if b.Asset == "" {
			return nil, fieldErr("balances.asset", fmt.Errorf("missing"))
		}
		bal := model.Balance{Asset: b.Asset}
		var err error
		if bal.Free, err = dec("balances.free", b.Free); err != nil {
			return nil, err
		}
		if bal.Locked, err = dec("balances.locked", b.Locked); err != nil {
			return nil, err
		}
		acct.Balances = append(acct.Balances, bal)
	}
	return acct, nil
}

type rawExchangeInfo struct {
	Timezone   string `json:"timezone"`
	ServerTime int64  `json:"serverTime"`
	Symbols    []struct {
		Symbol             string   `json:"symbol"`
		Status             string   `json:"status"`
		BaseAsset          string   `json:"baseAsset"`
		BaseAssetPrecision int      `json:"baseAssetPrecision"`
		QuoteAsset         string   `json:"quoteAsset"`
		QuotePrecision     int      `json:"quotePrecision"`
		OrderTypes         []string `json:"orderTypes"`
		IcebergAllowed     bool     `json:"icebergAllowed"`
		Filters            []struct {
			FilterType  string `json:"filterType"`
			TickSize    string `json:"tickSize"`
			StepSize    string `json:"stepSize"`
			MinQty      string `json:"minQty"`
			MinNotional string `json:"minNotional"`
		} `json:"filters"`
	} `json:"symbols"`
}

// ExchangeInfo parses exchange metadata, flattening the filter list into
// the per-symbol precision rules.
func ExchangeInfo(data []byte) (*model.ExchangeInfo, error) {
	var raw rawExchangeInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fieldErr("exchangeInfo", err)
	}

	info := &model.ExchangeInfo{
		Timezone:   raw.Timezone,
		ServerTime: millis(raw.ServerTime),
	}

	for _, s := range raw.Symbols {
		if s.Symbol == "" {
			return nil, fieldErr("symbols.symbol", fmt.Errorf("missing"))
		}
		sym := model.Symbol{
			Symbol:             s.Symbol,
			Status:             s.Status,
			BaseAsset:          s.BaseAsset,
			BaseAssetPrecision: s.BaseAssetPrecision,
			QuoteAsset:         s.QuoteAsset,
			QuotePrecision:     s.QuotePrecision,
			OrderTypes:         s.OrderTypes,
			IcebergAllowed:     s.IcebergAllowed,
		}
		var err error
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				if sym.TickSize, err = dec("filters.tickSize", f.TickSize); err != nil {
					return nil, err
				}
			case "LOT_SIZE":
				if sym.StepSize, err = dec("filters.stepSize", f.StepSize); err != nil {
					return nil, err
				}
				if sym.MinQty, err = dec("filters.minQty", f.MinQty); err != nil {
					return nil, err
				}
			case "MIN_NOTIONAL", "NOTIONAL":
				if sym.MinNotional, err = dec("filters.minNotional", f.MinNotional); err != nil {
					return nil, err
				}
			}
		}
		info.Symbols = append(info.Symbols, sym)
	}
	return info, nil
}

// OrderBook parses a depth snapshot. Level arrays arrive as
// ["price","qty"] string pairs.
func OrderBook(data []byte) (*model.OrderBook, error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fieldErr("depth", err)
	}

	book := &model.OrderBook{
		LastUpdateID: js.Get("lastUpdateId").MustInt64(),
	}

	parseSide := func(name string) ([]model.BookLevel, error) {
		rows := js.Get(name)
		n := len(rows.MustArray())
		levels := make([]model.BookLevel, 0, n)
		for i := 0; i < n; i++ {
			row := rows.GetIndex(i)
			price, err := dec(fmt.Sprintf("%s[%d].price", name, i), row.GetIndex(0).MustString())
			if err != nil {
				return nil, err
			}
			qty, err := dec(fmt.Sprintf("%s[%d].qty", name, i), row.GetIndex(1).MustString())
			if err != nil {
				return nil, err
			}
			levels = append(levels, model.BookLevel{Price: price, Quantity: qty})
		}
		return levels, nil
	}

	if book.Bids, err = parseSide("bids"); err != nil {
		return nil, err
	}
	if book.Asks, err = parseSide("asks"); err != nil {
		return nil, err
	}
	return book, nil
}

type rawTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (r rawTicker) toModel() (model.Ticker, error) {
	if r.Symbol == "" {
		return model.Ticker{}, fieldErr("symbol", fmt.Errorf("missing"))
	}
	price, err := dec("price", r.Price)
	if err != nil {
		return model.Ticker{}, err
	}
	return model.Ticker{Symbol: r.Symbol, Price: price}, nil
}

// Ticker parses a single latest-price payload.
func Ticker(data []byte) (*model.Ticker, error) {
	var raw rawTicker
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fieldErr("ticker", err)
	}
	t, err := raw.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Tickers parses the all-pairs latest-price payload.
func Tickers(data []byte) ([]model.Ticker, error) {
	var raws []rawTicker
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fieldErr("tickers", err)
	}
	out := make([]model.Ticker, 0, len(raws))
	for _, r := range raws {
		t, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

type rawTick struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	WeightedAvgPrice   string `json:"weightedAvgPrice"`
	PrevClosePrice     string `json:"prevClosePrice"`
	LastPrice          string `json:"lastPrice"`
	BidPrice           string `json:"bidPrice"`
	AskPrice           string `json:"askPrice"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	OpenTime           int64  `json:"openTime"`
	CloseTime          int64  `json:"closeTime"`
	Count              int64  `json:"count"`
}

func (r *rawTick) toModel() (model.Tick, error) {
	if r.Symbol == "" {
		return model.Tick{}, fieldErr("symbol", fmt.Errorf("missing"))
	}

	t := model.Tick{
		Symbol:     r.Symbol,
		OpenTime:   millis(r.OpenTime),
		CloseTime:  millis(r.CloseTime),
		TradeCount: r.Count,
	}

	var err error
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"priceChange", r.PriceChange, &t.PriceChange},
		{"priceChangePercent", r.PriceChangePercent, &t.PriceChangePercent},
		{"weightedAvgPrice", r.WeightedAvgPrice, &t.WeightedAvgPrice},
		{"prevClosePrice", r.PrevClosePrice, &t.PrevClosePrice},
		{"lastPrice", r.LastPrice, &t.LastPrice},
		{"bidPrice", r.BidPrice, &t.BidPrice},
		{"askPrice", r.AskPrice, &t.AskPrice},
		{"openPrice", r.OpenPrice, &t.OpenPrice},
		{"highPrice", r.HighPrice, &t.HighPrice},
		{"lowPrice", r.LowPrice, &t.LowPrice},
		{"volume", r.Volume, &t.Volume},
		{"quoteVolume", r.QuoteVolume, &t.QuoteVolume},
	}
	for _, f := range fields {
		if *f.dst, err = dec(f.name, f.raw); err != nil {
			return t, err
		}
	}
	return t, nil
}

// Tick parses a single 24h statistics payload.
func Tick(data []byte) (*model.Tick, error) {
	var raw rawTick
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fieldErr("ticker24h", err)
	}
	t, err := raw.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Ticks parses the all-pairs 24h statistics payload.
func Ticks(data []byte) ([]model.Tick, error) {
	var raws []rawTick
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fieldErr("ticker24h", err)
	}
	out := make([]model.Tick, 0, len(raws))
	for i := range raws {
		t, err := raws[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ServerTime parses the time endpoint payload.
func ServerTime(data []byte) (time.Time, error) {
	var raw struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return time.Time{}, fieldErr("serverTime", err)
	}
	if raw.ServerTime == 0 {
		return time.Time{}, fieldErr("serverTime", fmt.Errorf("missing"))
	}
	return millis(raw.ServerTime), nil
}

// Deposits parses the deposit history envelope. Records with unrecognized
// status codes are kept with an Unknown status rather than dropped.
func Deposits(data []byte) ([]model.Deposit, error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fieldErr("depositList", err)
	}

	rows := js.Get("depositList")
	n := len(rows.MustArray())
	out := make([]model.Deposit, 0, n)
	for i := 0; i < n; i++ {
		row := rows.GetIndex(i)
		d := model.Deposit{
			Asset:      row.Get("asset").MustString(),
			Address:    row.Get("address").MustString(),
			AddressTag: row.Get("addressTag").MustString(),
			TxID:       row.Get("txId").MustString(),
			Status:     DepositStatus(row.Get("status").MustInt()),
			InsertTime: millis(row.Get("insertTime").MustInt64()),
		}
		if d.Asset == "" {
			return nil, fieldErr(fmt.Sprintf("depositList[%d].asset", i), fmt.Errorf("missing"))
		}
		if d.Amount, err = decFromNumber(fmt.Sprintf("depositList[%d].amount", i), row.Get("amount")); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Withdrawals parses the withdrawal history envelope.
func Withdrawals(data []byte) ([]model.Withdrawal, error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fieldErr("withdrawList", err)
	}

	rows := js.Get("withdrawList")
	n := len(rows.MustArray())
	out := make([]model.Withdrawal, 0, n)
	for i := 0; i < n; i++ {
		row := rows.GetIndex(i)
		w := model.Withdrawal{
			ID:         row.Get("id").MustString(),
			Asset:      row.Get("asset").MustString(),
			Address:    row.Get("address").MustString(),
			AddressTag: row.Get("addressTag").MustString(),
			TxID:       row.Get("txId").MustString(),
			Status:     WithdrawalStatus(row.Get("status").MustInt()),
			ApplyTime:  millis(row.Get("applyTime").MustInt64()),
		}
		if w.Asset == "" {
			return nil, fieldErr(fmt.Sprintf("withdrawList[%d].asset", i), fmt.Errorf("missing"))
		}
		if w.Amount, err = decFromNumber(fmt.Sprintf("withdrawList[%d].amount", i), row.Get("amount")); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// decFromNumber handles amount fields the exchange has served both as JSON
// numbers and as strings across API revisions.
func decFromNumber(field string, js *simplejson.Json) (decimal.Decimal, error) {
	if s, err := js.String(); err == nil {
		return dec(field, s)
	}
	if f, err := js.Float64(); err == nil {
		return decimal.NewFromFloat(f), nil
	}
	return decimal.Zero, fieldErr(field, fmt.Errorf("neither string nor number"))
}

// WithdrawResponse parses the withdrawal submission acknowledgment.
func WithdrawResponse(data []byte) (*model.WithdrawResponse, error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fieldErr("withdraw", err)
	}
	return &model.WithdrawResponse{
		ID:      js.Get("id").MustString(),
		Success: js.Get("success").MustBool(),
		Message: js.Get("msg").MustString(),
	}, nil
}

// DepositAddress parses the deposit address payload.
func DepositAddress(data []byte) (*model.DepositAddress, error) {
	js, err := simplejson.NewJson(data)
	if err != nil {
		return nil, fieldErr("depositAddress", err)
	}
	addr := &model.DepositAddress{
		Asset:      js.Get("asset").MustString(),
		Address:    js.Get("address").MustString(),
		AddressTag: js.Get("addressTag").MustString(),
		Success:    js.Get("success").MustBool(),
	}
	if addr.Address == "" {
		return nil, fieldErr("address", fmt.Errorf("missing"))
	}
	return addr, nil
}
