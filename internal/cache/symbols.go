// Package cache holds the process-lifetime symbol metadata cache. It is
// populated explicitly and only invalidated by an explicit refresh, never
// by a background timer.
package cache

import (
	"sync"

	"github.com/ozgur-d/binance-client/model"
)

type SymbolCache struct {
	mu      sync.RWMutex
	info    *model.ExchangeInfo
	symbols map[string]model.Symbol
}

func New() *SymbolCache {
	return &SymbolCache{}
}

// Set replaces the cached metadata with a fresh snapshot.
func (c *SymbolCache) Set(info *model.ExchangeInfo) {
	symbols := make(map[string]model.Symbol, len(info.Symbols))
	for _, s := range info.Symbols {
		symbols[s.Symbol] = s
	}

	c.mu.Lock()
	c.info = info
	c.symbols = symbols
	c.mu.Unlock()
}

// Info returns the cached snapshot, or ok=false when metadata has never
// been loaded.
func (c *SymbolCache) Info() (*model.ExchangeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return nil, false
	}
	return c.info, true
}

// Symbol looks up one pair's metadata.
func (c *SymbolCache) Symbol(pair string) (model.Symbol, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.symbols[pair]
	return s, ok
}

// Loaded reports whether metadata has been fetched at least once.
func (c *SymbolCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info != nil
}

// Pairs returns every cached pair name.
func (c *SymbolCache) Pairs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return nil
	}
	pairs := make([]string, 0, len(c.info.Symbols))
	for _, s := range c.info.Symbols {
		pairs = append(pairs, s.Symbol)
	}
	return pairs
}

// PairsByBase returns the cached pairs whose base asset matches.
func (c *SymbolCache) PairsByBase(base string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.info == nil {
		return nil
	}
	var pairs []string
	for _, s := range c.info.Symbols {
		if s.BaseAsset == base {
			pairs = append(pairs, s.Symbol)
		}
	}
	return pairs
}
