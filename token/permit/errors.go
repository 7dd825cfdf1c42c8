// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package permit

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ExpiredSignatureError means the authorization's deadline has already passed
type ExpiredSignatureError struct {
	Deadline uint64
	Now      uint64
}

func (e *ExpiredSignatureError) Error() string {
	return fmt.Sprintf("signed authorization expired at %v, now %v", e.Deadline, e.Now)
}

// InvalidSignerError means the recovered identity is not the claimed owner
type InvalidSignerError struct {
	Signer common.Address
	Owner  common.Address
}

func (e *InvalidSignerError) Error() string {
	return fmt.Sprintf("authorization signed by %v, not owner %v", e.Signer, e.Owner)
}
