package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of a deposit or withdrawal.
type TransferStatus string

const (
	TransferPending  TransferStatus = "PENDING"
	TransferSuccess  TransferStatus = "SUCCESS"
	TransferFailed   TransferStatus = "FAILED"
	TransferCanceled TransferStatus = "CANCELED"

	// TransferUnknown covers status codes this client does not recognize.
	TransferUnknown TransferStatus = "UNKNOWN"

	// TransferAll is a query filter only, never a record state.
	TransferAll TransferStatus = "ALL"
)

// Deposit is one inbound asset transfer, keyed by the exchange TxID.
type Deposit struct {
	Asset      string
	Amount     decimal.Decimal
	Address    string
	AddressTag string
	TxID       string
	Status     TransferStatus
	InsertTime time.Time
}

// Withdrawal is one outbound asset transfer.
type Withdrawal struct {
	ID         string
	Asset      string
	Amount     decimal.Decimal
	Address    string
	AddressTag string
	TxID       string
	Status     TransferStatus
	ApplyTime  time.Time
}

// WithdrawParams is the caller's intent when initiating a withdrawal.
type WithdrawParams struct {
	Asset       string
	Address     string
	AddressTag  string
	Amount      decimal.Decimal
	Description string
}

// WithdrawResponse acknowledges a submitted withdrawal.
type WithdrawResponse struct {
	ID      string
	Success bool
	Message string
}

// DepositAddress is the funding address for an asset.
type DepositAddress struct {
	Asset      string
	Address    string
	AddressTag string
	Success    bool
}
