package main

import (
	"context"
	"log"
	"time"

	"github.com/ozgur-d/binance-client/binance"
	"github.com/ozgur-d/binance-client/internal/config"
	"github.com/ozgur-d/binance-client/internal/logger"
	"github.com/ozgur-d/binance-client/model"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Init(logger.Options{FilePath: cfg.LogFile})
	logger.Info("Starting exchange client demo", "symbol", cfg.Symbol, "interval", cfg.Interval)

	mode := binance.BlockOnLimit
	if cfg.FailOnRateLimit {
		mode = binance.FailOnLimit
	}

	client := binance.New(binance.Options{
		APIKey:          cfg.APIKey,
		APISecret:       cfg.SecretKey,
		BaseURL:         cfg.BaseURL,
		RecvWindow:      time.Duration(cfg.RecvWindowMs) * time.Millisecond,
		RateLimitMode:   mode,
		WeightPerMinute: cfg.WeightPerMinute,
		OrdersPer10s:    cfg.OrdersPer10s,
		StrictLimits:    cfg.StrictLimits,
		MaxRetries:      cfg.MaxRetries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.SyncTime(ctx); err != nil {
		logger.Warn("Time sync failed, using local clock", "error", err)
	}

	ticker, err := client.GetTicker(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("Failed to fetch ticker: %v", err)
	}
	logger.Info("Latest price", "symbol", ticker.Symbol, "price", ticker.Price.String())

	series, err := client.GetCandles(ctx, binance.CandleQuery{
		Symbol:   cfg.Symbol,
		Interval: model.Interval(cfg.Interval),
		Start:    time.Now().Add(-24 * time.Hour),
		End:      time.Now(),
	})
	if err != nil {
		log.Fatalf("Failed to fetch candles: %v", err)
	}
	logger.Info("Fetched candles", "count", len(series.Candles), "note", series.Note)

	if err := client.ValidateExchangeConfigured(); err != nil {
		logger.Warn("No credentials configured, skipping account lookup")
		return
	}

	account, err := client.GetBalance(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch account: %v", err)
	}
	for _, b := range account.Balances {
		if b.Free.Sign() > 0 || b.Locked.Sign() > 0 {
			logger.Info("Balance", "asset", b.Asset, "free", b.Free.String(), "locked", b.Locked.String())
		}
	}
}
