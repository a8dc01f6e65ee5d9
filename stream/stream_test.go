package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ozgur-d/binance-client/model"
)

func TestNewServiceDefaults(t *testing.T) {
	s := NewService(nil, "")
	if s.baseURL != DefaultBaseURL {
		t.Errorf("base url %q, expected the production stream endpoint", s.baseURL)
	}
	if cap(s.Updates) == 0 {
		t.Error("updates channel should be buffered")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	s := NewService(nil, "")
	s.stopCh = make(chan struct{})

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("first stop failed: %v", err)
	}
	select {
	case <-s.stopCh:
	default:
		t.Fatal("stop did not close the stop channel")
	}

	// A second call must not panic on the already-closed channel.
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("second stop failed: %v", err)
	}
}

func TestExecutionReportNormalization(t *testing.T) {
	raw := rawExecutionReport{
		Event:         "executionReport",
		EventTime:     1600000000000,
		Symbol:        "BTCUSDT",
		ClientOrderID: "abc",
		Side:          "BUY",
		Type:          "LIMIT",
		TimeInForce:   "GTC",
		Quantity:      "1.5",
		Price:         "42000.50",
		ExecutionType: "TRADE",
		Status:        "PARTIALLY_FILLED",
		OrderID:       7,
		CumExecQty:    "0.5",
		CumQuoteQty:   "21000.25",
		TxTime:        1600000000500,
		IsWorking:     true,
	}

	update, err := raw.toUpdate()
	if err != nil {
		t.Fatalf("normalization failed: %v", err)
	}

	if !update.EventTime.Equal(time.UnixMilli(1600000000000)) {
		t.Errorf("event time %s, expected the wire timestamp", update.EventTime)
	}
	if update.ExecutionType != "TRADE" {
		t.Errorf("execution type %q, expected TRADE", update.ExecutionType)
	}

	o := update.Order
	if o.OrderID != 7 || o.Symbol != "BTCUSDT" || o.ClientOrderID != "abc" {
		t.Errorf("order identity mis-mapped: %+v", o)
	}
	if o.Status != model.OrderStatusPartiallyFilled {
		t.Errorf("status %s, expected PARTIALLY_FILLED", o.Status)
	}
	if got := o.Price.String(); got != "42000.5" {
		t.Errorf("price %s, expected 42000.5", got)
	}
	if got := o.ExecutedQty.String(); got != "0.5" {
		t.Errorf("executed qty %s, expected 0.5", got)
	}
}

func TestExecutionReportUnknownStatus(t *testing.T) {
	raw := rawExecutionReport{Status: "BRAND_NEW_STATE"}
	update, err := raw.toUpdate()
	if err != nil {
		t.Fatalf("normalization failed: %v", err)
	}
	if update.Order.Status != model.OrderStatusUnknown {
		t.Errorf("status %s, expected Unknown", update.Order.Status)
	}
}

func TestExecutionReportMalformedPrice(t *testing.T) {
	raw := rawExecutionReport{Price: "not-a-number"}
	if _, err := raw.toUpdate(); err == nil {
		t.Error("expected an error for a malformed price")
	}
}

func TestReadLoopDeliversExecutionReports(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// A non-order event the loop must skip, then a real report.
		conn.WriteMessage(websocket.TextMessage, []byte(`{"e":"outboundAccountPosition"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"e":"executionReport","E":1600000000000,"s":"BTCUSDT","S":"BUY","o":"LIMIT","q":"1","p":"100","x":"TRADE","X":"FILLED","i":7,"z":"1","Z":"100","T":1600000000000}`))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	s := NewService(nil, "")
	s.conn = conn
	s.stopCh = make(chan struct{})

	done := make(chan struct{})
	go func() {
		s.readLoop()
		close(done)
	}()

	select {
	case update := <-s.Updates:
		if update.Order.OrderID != 7 {
			t.Errorf("order id %d, expected 7", update.Order.OrderID)
		}
		if update.Order.Status != model.OrderStatusFilled {
			t.Errorf("status %s, expected FILLED", update.Order.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no update delivered")
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("read loop did not exit after the connection closed")
	}
}
