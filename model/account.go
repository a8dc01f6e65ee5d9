package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one asset's free and locked quantities.
type Balance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Account is a point-in-time snapshot of the account. It does not reflect
// orders placed after UpdateTime; callers must not assume read-after-write
// consistency across calls.
type Account struct {
	MakerCommission  int64
	TakerCommission  int64
	BuyerCommission  int64
	SellerCommission int64
	CanTrade         bool
	CanWithdraw      bool
	CanDeposit       bool
	UpdateTime       time.Time
	AccountType      string
	Balances         []Balance
}

// Balance returns the snapshot entry for an asset, if present.
func (a *Account) Balance(asset string) (Balance, bool) {
	for _, b := range a.Balances {
		if b.Asset == asset {
			return b, true
		}
	}
	return Balance{}, false
}
