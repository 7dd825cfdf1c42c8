// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/util/bigmath"
)

var (
	ErrNotInitialized     = errors.New("token: not initialized")
	ErrAlreadyInitialized = errors.New("token: already initialized")

	ErrEmptyName         = errors.New("token: name must not be empty")
	ErrEmptySymbol       = errors.New("token: symbol must not be empty")
	ErrZeroInitialSupply = errors.New("token: initial supply must be nonzero")
	ErrMissingChainId    = errors.New("token: chain id must be set")

	ErrZeroLoanAmount = errors.New("token: loan amount must be nonzero")
	ErrReentrantCall  = errors.New("token: reentrant call into guarded operation")

	ErrUnexpectedValue   = errors.New("token: unsolicited value transfer rejected")
	ErrUnknownOperation  = errors.New("token: unrecognized operation rejected")
	ErrRepaymentOverflow = errors.New("token: loan repayment exceeds representable range")
)

// InvalidSenderError means the null account was named as a source of value
type InvalidSenderError struct {
	Sender common.Address
}

func (e *InvalidSenderError) Error() string {
	return fmt.Sprintf("invalid sender %v", e.Sender)
}

// InvalidApproverError means the null account was named as an allowance owner
type InvalidApproverError struct {
	Approver common.Address
}

func (e *InvalidApproverError) Error() string {
	return fmt.Sprintf("invalid approver %v", e.Approver)
}

// InvalidSpenderError means the null account was named as an allowance spender
type InvalidSpenderError struct {
	Spender common.Address
}

func (e *InvalidSpenderError) Error() string {
	return fmt.Sprintf("invalid spender %v", e.Spender)
}

// InvalidFeeReceiverError rejects a fee receiver that is null or the token itself
type InvalidFeeReceiverError struct {
	Receiver common.Address
}

func (e *InvalidFeeReceiverError) Error() string {
	return fmt.Sprintf("invalid fee receiver %v", e.Receiver)
}

// InvalidLoanFeeError rejects a loan fee rate above one whole unit
type InvalidLoanFeeError struct {
	FeePPM bigmath.PPM
}

func (e *InvalidLoanFeeError) Error() string {
	return fmt.Sprintf("loan fee rate %v ppm exceeds %v", uint64(e.FeePPM), uint64(bigmath.OneInPPM))
}

// CapTooLowError rejects a cap that leaves no loanable headroom at construction
type CapTooLowError struct {
	Cap           *uint256.Int
	InitialSupply *uint256.Int
}

func (e *CapTooLowError) Error() string {
	return fmt.Sprintf(
		"cap %v must exceed initial supply %v", e.Cap, e.InitialSupply,
	)
}

// AllowanceOverflowError means an allowance increase left the representable range
type AllowanceOverflowError struct {
	Current *uint256.Int
	Added   *uint256.Int
}

func (e *AllowanceOverflowError) Error() string {
	return fmt.Sprintf("allowance increase overflows: current %v, added %v", e.Current, e.Added)
}

// UnsupportedAssetError rejects a loan denominated in anything but this ledger's unit
type UnsupportedAssetError struct {
	Asset common.Address
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("unsupported loan asset %v", e.Asset)
}

// ExceededMaxLoanError means a loan request was larger than the supply headroom
type ExceededMaxLoanError struct {
	Requested *uint256.Int
	MaxLoan   *uint256.Int
}

func (e *ExceededMaxLoanError) Error() string {
	return fmt.Sprintf("loan of %v exceeds max loanable %v", e.Requested, e.MaxLoan)
}

// InvalidLoanReceiverError means the loan callback failed or returned the wrong
// acknowledgment value
type InvalidLoanReceiverError struct {
	Receiver common.Address
	Ack      common.Hash
	Cause    error
}

func (e *InvalidLoanReceiverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("loan receiver %v failed: %v", e.Receiver, e.Cause)
	}
	return fmt.Sprintf("loan receiver %v returned wrong acknowledgment %v", e.Receiver, e.Ack)
}

func (e *InvalidLoanReceiverError) Unwrap() error {
	return e.Cause
}
