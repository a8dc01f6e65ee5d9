package cache

import (
	"testing"

	"github.com/ozgur-d/binance-client/model"
)

func snapshot() *model.ExchangeInfo {
	return &model.ExchangeInfo{
		Symbols: []model.Symbol{
			{Symbol: "BTCUSDT", BaseAsset: "BTC", QuoteAsset: "USDT"},
			{Symbol: "BTCEUR", BaseAsset: "BTC", QuoteAsset: "EUR"},
			{Symbol: "ETHUSDT", BaseAsset: "ETH", QuoteAsset: "USDT"},
		},
	}
}

func TestEmptyCache(t *testing.T) {
	c := New()
	if c.Loaded() {
		t.Error("fresh cache reports loaded")
	}
	if _, ok := c.Info(); ok {
		t.Error("fresh cache returned a snapshot")
	}
	if pairs := c.Pairs(); pairs != nil {
		t.Errorf("fresh cache returned pairs: %v", pairs)
	}
}

func TestLookups(t *testing.T) {
	c := New()
	c.Set(snapshot())

	if !c.Loaded() {
		t.Fatal("cache not loaded after Set")
	}
	if len(c.Pairs()) != 3 {
		t.Errorf("expected 3 pairs, got %d", len(c.Pairs()))
	}

	s, ok := c.Symbol("BTCUSDT")
	if !ok || s.QuoteAsset != "USDT" {
		t.Errorf("BTCUSDT lookup failed: %+v ok=%v", s, ok)
	}
	if _, ok := c.Symbol("DOGEUSDT"); ok {
		t.Error("unlisted pair found in cache")
	}

	btc := c.PairsByBase("BTC")
	if len(btc) != 2 {
		t.Errorf("expected 2 BTC pairs, got %v", btc)
	}
}

func TestSetReplacesSnapshot(t *testing.T) {
	c := New()
	c.Set(snapshot())
	c.Set(&model.ExchangeInfo{Symbols: []model.Symbol{{Symbol: "SOLUSDT", BaseAsset: "SOL"}}})

	if _, ok := c.Symbol("BTCUSDT"); ok {
		t.Error("stale pair survived a refresh")
	}
	if pairs := c.Pairs(); len(pairs) != 1 || pairs[0] != "SOLUSDT" {
		t.Errorf("expected only SOLUSDT, got %v", pairs)
	}
}
