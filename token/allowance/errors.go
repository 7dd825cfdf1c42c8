// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package allowance

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// InsufficientAllowanceError reports the combined allowance a spend fell short of
type InsufficientAllowanceError struct {
	Owner     common.Address
	Spender   common.Address
	Allowance *uint256.Int
	Needed    *uint256.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf(
		"insufficient allowance from %v to %v: have %v, need %v",
		e.Owner, e.Spender, e.Allowance, e.Needed,
	)
}
