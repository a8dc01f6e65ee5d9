// Package stream consumes the exchange's user-data websocket so order
// state changes arrive as typed events instead of being polled over REST.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/ozgur-d/binance-client/binance"
	"github.com/ozgur-d/binance-client/internal/logger"
	"github.com/ozgur-d/binance-client/internal/normalize"
	"github.com/ozgur-d/binance-client/model"
)

const DefaultBaseURL = "wss://stream.binance.com:9443/ws"

// rawExecutionReport is the wire shape of an executionReport event.
type rawExecutionReport struct {
	Event         string `json:"e"`
	EventTime     int64  `json:"E"`
	Symbol        string `json:"s"`
	ClientOrderID string `json:"c"`
	Side          string `json:"S"`
	Type          string `json:"o"`
	TimeInForce   string `json:"f"`
	Quantity      string `json:"q"`
	Price         string `json:"p"`
	ExecutionType string `json:"x"`
	Status        string `json:"X"`
	OrderID       int64  `json:"i"`
	CumExecQty    string `json:"z"`
	CumQuoteQty   string `json:"Z"`
	TxTime        int64  `json:"T"`
	IsWorking     bool   `json:"w"`
}

// OrderUpdate is one normalized order state change.
type OrderUpdate struct {
	EventTime     time.Time
	ExecutionType string
	Order         model.OrderResponse
}

// Service maintains the listen-key lifecycle and the websocket read loop.
type Service struct {
	client  *binance.Client
	baseURL string

	listenKey string
	conn      *websocket.Conn
	stopCh    chan struct{}
	stopOnce  sync.Once

	// Updates delivers normalized order events. The channel is buffered;
	// a stalled consumer eventually blocks the read loop.
	Updates chan OrderUpdate
}

func NewService(client *binance.Client, baseURL string) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Service{
		client:  client,
		baseURL: baseURL,
		Updates: make(chan OrderUpdate, 100),
	}
}

// Start acquires a listen key, connects, and blocks reading events until
// Stop is called or the connection drops. Callers own reconnection policy.
func (s *Service) Start(ctx context.Context) error {
	key, err := s.client.StartUserStream(ctx)
	if err != nil {
		return fmt.Errorf("start user stream: %w", err)
	}
	s.listenKey = key

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, fmt.Sprintf("%s/%s", s.baseURL, key), nil)
	if err != nil {
		return fmt.Errorf("dial user stream: %w", err)
	}
	s.conn = conn
	s.stopCh = make(chan struct{})
	logger.Info("User-data stream connected")

	go s.keepAliveLoop(ctx)
	s.readLoop()
	return nil
}

func (s *Service) keepAliveLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if err := s.client.KeepAliveUserStream(ctx, s.listenKey); err != nil {
				logger.Error("Listen key keep-alive failed", "error", err)
			} else {
				logger.Debug("Listen key keep-alive sent")
			}
		}
	}
}

func (s *Service) readLoop() {
	defer func() {
		if s.conn != nil {
			s.conn.Close()
		}
		logger.Warn("User-data stream closed")
	}()

	for {
		select {
		case <-s.stopCh:
			return
		default:
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				logger.Error("User-data stream read failed", "error", err)
				return
			}

			var raw rawExecutionReport
			if err := json.Unmarshal(message, &raw); err != nil {
				logger.Error("Unparseable stream message", "error", err)
				continue
			}
			if raw.Event != "executionReport" {
				continue
			}

			update, err := raw.toUpdate()
			if err != nil {
				logger.Error("Malformed execution report", "error", err)
				continue
			}
			s.Updates <- update
		}
	}
}

func (r *rawExecutionReport) toUpdate() (OrderUpdate, error) {
	parse := func(field, s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("field %s: %w", field, err)
		}
		return d, nil
	}

	order := model.OrderResponse{
		Symbol:        r.Symbol,
		OrderID:       r.OrderID,
		ClientOrderID: r.ClientOrderID,
		Status:        normalize.OrderStatus(r.Status),
		TimeInForce:   r.TimeInForce,
		Type:          model.OrderType(r.Type),
		Side:          model.OrderSide(r.Side),
		UpdateTime:    time.UnixMilli(r.TxTime),
		IsWorking:     r.IsWorking,
	}

	var err error
	if order.Price, err = parse("p", r.Price); err != nil {
		return OrderUpdate{}, err
	}
	if order.OrigQty, err = parse("q", r.Quantity); err != nil {
		return OrderUpdate{}, err
	}
	if order.ExecutedQty, err = parse("z", r.CumExecQty); err != nil {
		return OrderUpdate{}, err
	}
	if order.CumulativeQuoteQty, err = parse("Z", r.CumQuoteQty); err != nil {
		return OrderUpdate{}, err
	}

	return OrderUpdate{
		EventTime:     time.UnixMilli(r.EventTime),
		ExecutionType: r.ExecutionType,
		Order:         order,
	}, nil
}

// Stop closes the stream and releases the listen key. It is safe to call
// more than once.
func (s *Service) Stop(ctx context.Context) error {
	logger.Info("Stopping user-data stream")
	s.stopOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
		}
	})
	if s.listenKey != "" {
		_ = s.client.CloseUserStream(ctx, s.listenKey)
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
