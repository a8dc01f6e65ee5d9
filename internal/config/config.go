// Package config loads CLI settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	BaseURL   string

	// Client behavior
	RecvWindowMs    int
	WeightPerMinute int
	OrdersPer10s    int
	FailOnRateLimit bool
	StrictLimits    bool
	MaxRetries      int

	// Demo parameters
	Symbol   string
	Interval string

	// Logging
	LogFile string
}

// Load reads the environment, layering a .env file underneath when one is
// present. Only the API credentials are required.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:  os.Getenv("BINANCE_BASE_URL"),
		Symbol:   os.Getenv("SYMBOL"),
		Interval: os.Getenv("INTERVAL"),
		LogFile:  os.Getenv("LOG_FILE"),
	}

	cfg.APIKey = os.Getenv("BINANCE_API_KEY")
	cfg.SecretKey = os.Getenv("BINANCE_SECRET_KEY")

	if cfg.Symbol == "" {
		cfg.Symbol = "BTCUSDT"
	}
	if cfg.Interval == "" {
		cfg.Interval = "1m"
	}

	var err error
	if cfg.RecvWindowMs, err = parseInt(os.Getenv("RECV_WINDOW_MS"), "RECV_WINDOW_MS", 60000); err != nil {
		return nil, err
	}
	if cfg.WeightPerMinute, err = parseInt(os.Getenv("WEIGHT_PER_MINUTE"), "WEIGHT_PER_MINUTE", 6000); err != nil {
		return nil, err
	}
	if cfg.OrdersPer10s, err = parseInt(os.Getenv("ORDERS_PER_10S"), "ORDERS_PER_10S", 100); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = parseInt(os.Getenv("MAX_RETRIES"), "MAX_RETRIES", 3); err != nil {
		return nil, err
	}

	cfg.FailOnRateLimit = os.Getenv("FAIL_ON_RATE_LIMIT") == "true"
	cfg.StrictLimits = os.Getenv("STRICT_LIMITS") == "true"

	return cfg, nil
}

func parseInt(value, name string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", name, err)
	}
	return i, nil
}
