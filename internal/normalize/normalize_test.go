package normalize

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ozgur-d/binance-client/model"
)

func TestCandlesLossless(t *testing.T) {
	payload := `[[1499040000000,"0.00000001","0.80000000","0.01575800","0.01577100","148976.11427815",1499644799999,"2434.19055334",308,"1756.87402397","28.46694368","0"]]`

	candles, err := Candles([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(candles) != 1 {
		t.Fatalf("expected 1 candle, got %d", len(candles))
	}

	c := candles[0]
	if got := c.Open.String(); got != "0.00000001" {
		t.Errorf("open lost precision: got %s", got)
	}
	if got := c.High.String(); got != "0.8" {
		t.Errorf("unexpected high: got %s", got)
	}
	if got := c.Volume.String(); got != "148976.11427815" {
		t.Errorf("volume lost precision: got %s", got)
	}
	if want := time.UnixMilli(1499040000000); !c.OpenTime.Equal(want) {
		t.Errorf("open time %s, expected %s", c.OpenTime, want)
	}
	if c.TradeCount != 308 {
		t.Errorf("expected 308 trades, got %d", c.TradeCount)
	}
}

func TestCandlesMalformedNamesField(t *testing.T) {
	payload := `[[1499040000000,"not-a-number","0.8","0.01","0.015","148976.1",1499644799999,"2434.1",308]]`

	_, err := Candles([]byte(payload))
	var ferr *FieldError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if !strings.Contains(ferr.Field, "open") {
		t.Errorf("error does not name the offending field: %q", ferr.Field)
	}
}

func TestCandlesTooFewElements(t *testing.T) {
	if _, err := Candles([]byte(`[[1499040000000,"0.1"]]`)); err == nil {
		t.Error("expected an error for a truncated kline row")
	}
}

func TestOrderStatusMapping(t *testing.T) {
	cases := map[string]model.OrderStatus{
		"NEW":              model.OrderStatusNew,
		"PARTIALLY_FILLED": model.OrderStatusPartiallyFilled,
		"FILLED":           model.OrderStatusFilled,
		"CANCELED":         model.OrderStatusCanceled,
		"REJECTED":         model.OrderStatusRejected,
		"EXPIRED":          model.OrderStatusExpired,
		"SOME_NEW_STATE":   model.OrderStatusUnknown,
		"":                 model.OrderStatusUnknown,
	}
	for raw, want := range cases {
		if got := OrderStatus(raw); got != want {
			t.Errorf("OrderStatus(%q) = %s, expected %s", raw, got, want)
		}
	}
}

func TestUnknownStatusDoesNotAbortBatch(t *testing.T) {
	payload := `[
		{"symbol":"BTCUSDT","orderId":1,"price":"100.5","origQty":"1","executedQty":"1","cummulativeQuoteQty":"100.5","status":"FILLED","type":"LIMIT","side":"BUY","time":1600000000000},
		{"symbol":"BTCUSDT","orderId":2,"price":"101.5","origQty":"1","executedQty":"0","cummulativeQuoteQty":"0","status":"BRAND_NEW_STATE","type":"LIMIT","side":"SELL","time":1600000001000}
	]`

	orders, err := Orders([]byte(payload))
	if err != nil {
		t.Fatalf("a batch with an unknown status should still parse: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].Status != model.OrderStatusFilled {
		t.Errorf("sibling record mis-parsed: %s", orders[0].Status)
	}
	if orders[1].Status != model.OrderStatusUnknown {
		t.Errorf("unknown status should map to Unknown, got %s", orders[1].Status)
	}
}

func TestOrderMissingSymbol(t *testing.T) {
	_, err := Order([]byte(`{"orderId":1,"status":"NEW"}`))
	var ferr *FieldError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected FieldError, got %v", err)
	}
	if ferr.Field != "symbol" {
		t.Errorf("expected the symbol field to be named, got %q", ferr.Field)
	}
}

func TestTransferStatusMapping(t *testing.T) {
	if got := DepositStatus(0); got != model.TransferPending {
		t.Errorf("deposit code 0 = %s, expected pending", got)
	}
	if got := DepositStatus(1); got != model.TransferSuccess {
		t.Errorf("deposit code 1 = %s, expected success", got)
	}
	// 6 is credited-but-cannot-withdraw: the funds have arrived.
	if got := DepositStatus(6); got != model.TransferSuccess {
		t.Errorf("deposit code 6 = %s, expected success", got)
	}
	if got := DepositStatus(42); got != model.TransferUnknown {
		t.Errorf("deposit code 42 = %s, expected unknown", got)
	}

	cases := map[int]model.TransferStatus{
		0: model.TransferPending,
		1: model.TransferCanceled,
		2: model.TransferPending,
		3: model.TransferFailed,
		4: model.TransferPending,
		5: model.TransferFailed,
		6: model.TransferSuccess,
		9: model.TransferUnknown,
	}
	for code, want := range cases {
		if got := WithdrawalStatus(code); got != want {
			t.Errorf("withdrawal code %d = %s, expected %s", code, got, want)
		}
	}
}

func TestDepositsKeepUnknownStatuses(t *testing.T) {
	payload := `{"depositList":[
		{"asset":"BTC","amount":0.5,"address":"addr1","txId":"tx1","status":1,"insertTime":1600000000000},
		{"asset":"ETH","amount":"2.25","address":"addr2","txId":"tx2","status":99,"insertTime":1600000001000}
	],"success":true}`

	deposits, err := Deposits([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(deposits) != 2 {
		t.Fatalf("expected 2 deposits, got %d", len(deposits))
	}
	if deposits[0].Status != model.TransferSuccess {
		t.Errorf("first deposit status %s, expected success", deposits[0].Status)
	}
	if deposits[1].Status != model.TransferUnknown {
		t.Errorf("unknown code should surface as Unknown, got %s", deposits[1].Status)
	}
	if got := deposits[1].Amount.String(); got != "2.25" {
		t.Errorf("string amount lost precision: %s", got)
	}
}

func TestOrderBookParsing(t *testing.T) {
	payload := `{"lastUpdateId":7,"bids":[["100.50","1.5"],["100.40","2"]],"asks":[["100.60","0.5"]]}`

	book, err := OrderBook([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if book.LastUpdateID != 7 {
		t.Errorf("lastUpdateId %d, expected 7", book.LastUpdateID)
	}
	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("unexpected ladder sizes: %d bids, %d asks", len(book.Bids), len(book.Asks))
	}
	if got := book.Bids[0].Price.String(); got != "100.5" {
		t.Errorf("bid price %s, expected 100.5", got)
	}
}

func TestExchangeInfoFilters(t *testing.T) {
	payload := `{"timezone":"UTC","serverTime":1600000000000,"symbols":[
		{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT","baseAssetPrecision":8,"quotePrecision":8,
		 "filters":[
			{"filterType":"PRICE_FILTER","tickSize":"0.01"},
			{"filterType":"LOT_SIZE","stepSize":"0.00001","minQty":"0.00001"},
			{"filterType":"MIN_NOTIONAL","minNotional":"10.00"}
		]}
	]}`

	info, err := ExchangeInfo([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(info.Symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(info.Symbols))
	}

	sym := info.Symbols[0]
	if got := sym.TickSize.String(); got != "0.01" {
		t.Errorf("tick size %s, expected 0.01", got)
	}
	if got := sym.StepSize.String(); got != "0.00001" {
		t.Errorf("step size %s, expected 0.00001", got)
	}
	if got := sym.MinNotional.String(); got != "10" {
		t.Errorf("min notional %s, expected 10", got)
	}
}

func TestServerTimeMissing(t *testing.T) {
	if _, err := ServerTime([]byte(`{}`)); err == nil {
		t.Error("expected an error for a missing serverTime field")
	}
}

func TestTickParsing(t *testing.T) {
	payload := `{"symbol":"BTCUSDT","priceChange":"-94.99999800","priceChangePercent":"-95.960","weightedAvgPrice":"0.29628482","prevClosePrice":"0.10002000","lastPrice":"4.00000200","bidPrice":"4.00000000","askPrice":"4.00000200","openPrice":"99.00000000","highPrice":"100.00000000","lowPrice":"0.10000000","volume":"8913.30000000","quoteVolume":"15.30000000","openTime":1499783499040,"closeTime":1499869899040,"count":76716}`

	tick, err := Tick([]byte(payload))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := tick.PriceChange.String(); got != "-94.999998" {
		t.Errorf("price change %s, expected -94.999998", got)
	}
	if tick.TradeCount != 76716 {
		t.Errorf("trade count %d, expected 76716", tick.TradeCount)
	}
}
