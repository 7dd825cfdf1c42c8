// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// Call is one view of an invocation: the identity an operation runs as, plus the
// scope shared by everything the invocation synchronously triggers. A Call is
// constructed at invocation entry and discarded at exit; callbacks receive a
// view onto the same scope, which is what makes ephemeral grants visible to
// nested operations without ever letting them outlive the invocation.
type Call struct {
	Caller    common.Address
	Timestamp uint64

	*scope
}

// scope is the state owned by one top-level call graph traversal: every ephemeral
// allowance granted inside it and the reentrancy flag
type scope struct {
	statedb   vm.StateDB
	ephemeral map[grantKey]*uint256.Int
	entered   bool
}

type grantKey struct {
	owner   common.Address
	spender common.Address
}

// WithCaller returns a view of the same invocation acting as another identity.
// Externally supplied code reached by a synchronous callback uses this to act
// as itself while sharing the invocation's ephemeral state and guard.
func (c *Call) WithCaller(caller common.Address) *Call {
	return &Call{
		Caller:    caller,
		Timestamp: c.Timestamp,
		scope:     c.scope,
	}
}

// Allowance returns the invocation-scoped grant for (owner, spender), zero if absent
func (c *Call) Allowance(owner, spender common.Address) *uint256.Int {
	value, ok := c.ephemeral[grantKey{owner, spender}]
	if !ok {
		return uint256.NewInt(0)
	}
	return value.Clone()
}

// SetAllowance installs an invocation-scoped grant for (owner, spender)
func (c *Call) SetAllowance(owner, spender common.Address, value *uint256.Int) {
	c.ephemeral[grantKey{owner, spender}] = value.Clone()
}

// transact runs an operation against a snapshot of both state tiers, rolling every
// one of its writes back if it fails. The ephemeral map reverts with the stateDB:
// an operation that consumed a grant and then failed leaves the grant untouched.
func (c *Call) transact(operation func() error) error {
	snapshot := c.statedb.Snapshot()
	ephemeral := c.snapshotEphemeral()
	if err := operation(); err != nil {
		c.statedb.RevertToSnapshot(snapshot)
		c.ephemeral = ephemeral
		return err
	}
	return nil
}

func (c *Call) snapshotEphemeral() map[grantKey]*uint256.Int {
	copied := make(map[grantKey]*uint256.Int, len(c.ephemeral))
	for key, value := range c.ephemeral {
		copied[key] = value.Clone()
	}
	return copied
}

// enterGuard trips if the invocation is already inside a guarded operation
func (c *Call) enterGuard() error {
	if c.entered {
		return ErrReentrantCall
	}
	c.entered = true
	return nil
}

func (c *Call) exitGuard() {
	c.entered = false
}
