// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// InvalidReceiverError means value was directed at the null account
type InvalidReceiverError struct {
	Receiver common.Address
}

func (e *InvalidReceiverError) Error() string {
	return fmt.Sprintf("invalid receiver %v", e.Receiver)
}

// InsufficientBalanceError carries the shortfall a debit ran into
type InsufficientBalanceError struct {
	Account common.Address
	Balance *uint256.Int
	Needed  *uint256.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf(
		"insufficient balance for %v: have %v, need %v", e.Account, e.Balance, e.Needed,
	)
}

// CapExceededError means a mint would have pushed the supply over the cap
type CapExceededError struct {
	Increase *uint256.Int
	Supply   *uint256.Int
	Cap      *uint256.Int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf(
		"minting %v exceeds cap: supply %v, cap %v", e.Increase, e.Supply, e.Cap,
	)
}
