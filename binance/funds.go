package binance

import (
	"context"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ozgur-d/binance-client/internal/normalize"
	"github.com/ozgur-d/binance-client/internal/window"
	"github.com/ozgur-d/binance-client/model"
)

// GetBalance returns the account snapshot with per-asset free and locked
// quantities. The snapshot does not reflect orders placed after its
// UpdateTime.
func (c *Client) GetBalance(ctx context.Context) (*model.Account, error) {
	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/api/v3/account",
		sign:   true,
		weight: 10,
	})
	if err != nil {
		return nil, err
	}

	acct, err := normalize.Account(body)
	if err != nil {
		return nil, normErr(err)
	}
	return acct, nil
}

// Withdraw initiates a withdrawal. Amount and address are validated
// locally before signing.
func (c *Client) Withdraw(ctx context.Context, params model.WithdrawParams) (*model.WithdrawResponse, error) {
	if params.Asset == "" {
		return nil, &ValidationError{Field: "asset", Reason: "must not be empty"}
	}
	if params.Address == "" {
		return nil, &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if params.Amount.Sign() <= 0 {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	vals := url.Values{}
	vals.Set("asset", params.Asset)
	vals.Set("address", params.Address)
	vals.Set("amount", params.Amount.String())
	if params.AddressTag != "" {
		vals.Set("addressTag", params.AddressTag)
	}
	if params.Description != "" {
		vals.Set("name", params.Description)
	}

	body, err := c.do(ctx, call{
		method: "POST",
		path:   "/wapi/v3/withdraw.html",
		params: vals,
		sign:   true,
		weight: 1,
	})
	if err != nil {
		return nil, err
	}

	resp, err := normalize.WithdrawResponse(body)
	if err != nil {
		return nil, normErr(err)
	}
	return resp, nil
}

// WithdrawFunds is the positional convenience form of Withdraw.
func (c *Client) WithdrawFunds(ctx context.Context, asset, address string, amount decimal.Decimal) (*model.WithdrawResponse, error) {
	return c.Withdraw(ctx, model.WithdrawParams{Asset: asset, Address: address, Amount: amount})
}

// WithdrawFundsTagged is WithdrawFunds for assets that need a secondary
// address identifier (memo/tag).
func (c *Client) WithdrawFundsTagged(ctx context.Context, asset, address, addressTag string, amount decimal.Decimal) (*model.WithdrawResponse, error) {
	return c.Withdraw(ctx, model.WithdrawParams{Asset: asset, Address: address, AddressTag: addressTag, Amount: amount})
}

// GetDepositHistory returns deposits matching the query. An explicit time
// range wider than the exchange's span cap is split into sequential
// sub-ranges and merged; the status filter is applied to the normalized
// records so unknown exchange codes stay visible under TransferUnknown.
func (c *Client) GetDepositHistory(ctx context.Context, q TransferQuery) ([]model.Deposit, error) {
	if err := validateTransferQuery(q); err != nil {
		return nil, err
	}

	var merged []model.Deposit
	pages := 0

	for _, page := range window.SplitSpan(q.Start, q.End, MaxTransferSpan) {
		body, err := c.do(ctx, call{
			method: "GET",
			path:   "/wapi/v3/depositHistory.html",
			params: transferParams(q.Asset, page),
			sign:   true,
			weight: 1,
		})
		if err != nil {
			return nil, partial(err, pages, merged, q.KeepPartialOnCancel)
		}

		deposits, err := normalize.Deposits(body)
		if err != nil {
			return nil, partial(normErr(err), pages, merged, q.KeepPartialOnCancel)
		}

		for _, d := range deposits {
			if matchStatus(q.Status, d.Status) {
				merged = append(merged, d)
			}
		}
		pages++
	}

	return merged, nil
}

// GetWithdrawalHistory returns withdrawals matching the query, with the
// same range-splitting and status-filter semantics as deposits.
func (c *Client) GetWithdrawalHistory(ctx context.Context, q TransferQuery) ([]model.Withdrawal, error) {
	if err := validateTransferQuery(q); err != nil {
		return nil, err
	}

	var merged []model.Withdrawal
	pages := 0

	for _, page := range window.SplitSpan(q.Start, q.End, MaxTransferSpan) {
		body, err := c.do(ctx, call{
			method: "GET",
			path:   "/wapi/v3/withdrawHistory.html",
			params: transferParams(q.Asset, page),
			sign:   true,
			weight: 1,
		})
		if err != nil {
			return nil, partial(err, pages, merged, q.KeepPartialOnCancel)
		}

		withdrawals, err := normalize.Withdrawals(body)
		if err != nil {
			return nil, partial(normErr(err), pages, merged, q.KeepPartialOnCancel)
		}

		for _, w := range withdrawals {
			if matchStatus(q.Status, w.Status) {
				merged = append(merged, w)
			}
		}
		pages++
	}

	return merged, nil
}

// GetDepositAddress returns the funding address for an asset.
func (c *Client) GetDepositAddress(ctx context.Context, asset string) (*model.DepositAddress, error) {
	if asset == "" {
		return nil, &ValidationError{Field: "asset", Reason: "must not be empty"}
	}

	vals := url.Values{}
	vals.Set("asset", asset)

	body, err := c.do(ctx, call{
		method: "GET",
		path:   "/wapi/v3/depositAddress.html",
		params: vals,
		sign:   true,
		weight: 1,
	})
	if err != nil {
		return nil, err
	}

	addr, err := normalize.DepositAddress(body)
	if err != nil {
		return nil, normErr(err)
	}
	return addr, nil
}

func validateTransferQuery(q TransferQuery) error {
	if !q.Start.IsZero() && !q.End.IsZero() && q.Start.After(q.End) {
		return &ValidationError{Field: "timeRange", Reason: "start time is after end time"}
	}
	switch q.Status {
	case "", model.TransferAll, model.TransferPending, model.TransferSuccess,
		model.TransferFailed, model.TransferCanceled, model.TransferUnknown:
		return nil
	}
	return &ValidationError{Field: "status", Reason: "unrecognized status filter"}
}

func transferParams(asset string, page window.Page) url.Values {
	vals := url.Values{}
	if asset != "" {
		vals.Set("asset", asset)
	}
	if !page.Start.IsZero() {
		vals.Set("startTime", strconv.FormatInt(page.Start.UnixMilli(), 10))
	}
	if !page.End.IsZero() {
		vals.Set("endTime", strconv.FormatInt(page.End.UnixMilli(), 10))
	}
	return vals
}

// matchStatus applies a query filter. All (or unset) matches every record
// state; it is never a state itself.
func matchStatus(filter, status model.TransferStatus) bool {
	return filter == "" || filter == model.TransferAll || filter == status
}
