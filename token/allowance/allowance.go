// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package allowance

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/token/storage"
	"github.com/offchainlabs/flashtoken/util/bigmath"
)

// Ephemeral is the invocation-scoped allowance tier. Implementations hold grants
// only for the lifetime of one top-level call, so a fresh invocation always starts
// with every ephemeral grant absent.
type Ephemeral interface {
	Allowance(owner, spender common.Address) *uint256.Int
	SetAllowance(owner, spender common.Address, value *uint256.Int)
}

// Allowances owns the persistent (owner, spender) authorization amounts and
// resolves spends against both tiers. The maximum representable word is the
// unlimited sentinel in either tier and is never drawn down by spending.
type Allowances struct {
	byOwner *storage.Storage
}

func OpenAllowances(sto *storage.Storage) *Allowances {
	return &Allowances{byOwner: sto}
}

func (a *Allowances) ownerSpace(owner common.Address) *storage.Storage {
	return a.byOwner.OpenSubStorage(owner.Bytes())
}

func (a *Allowances) Persistent(owner, spender common.Address) *uint256.Int {
	value := a.ownerSpace(owner).Get(storage.AddressToHash(spender))
	return new(uint256.Int).SetBytes32(value[:])
}

func (a *Allowances) SetPersistent(owner, spender common.Address, value *uint256.Int) {
	a.ownerSpace(owner).Set(storage.AddressToHash(spender), common.Hash(value.Bytes32()))
}

// Combined returns the externally observable allowance: the saturating sum of the
// persistent and ephemeral tiers. A pure read.
func (a *Allowances) Combined(eph Ephemeral, owner, spender common.Address) *uint256.Int {
	return bigmath.SaturatingUAdd256(a.Persistent(owner, spender), eph.Allowance(owner, spender))
}

// SpendResult reports what a successful resolution did to the persistent tier,
// so the caller can surface the change.
type SpendResult struct {
	PersistentChanged   bool
	PersistentRemaining *uint256.Int
}

// Spend authorizes a third-party debit of amount against (owner, spender),
// drawing the ephemeral tier down first and only then the persistent one.
// Ephemeral-first lets a caller grant a one-off, invocation-scoped authorization
// without touching durable state, while still falling back to a standing one.
// No tier is written unless the whole resolution succeeds.
func (a *Allowances) Spend(eph Ephemeral, owner, spender common.Address, amount *uint256.Int) (SpendResult, error) {
	ephemeral := eph.Allowance(owner, spender)
	if bigmath.IsMaxUint256(ephemeral) {
		// unlimited ephemeral authorization is never consumed
		return SpendResult{}, nil
	}
	if !ephemeral.Lt(amount) {
		eph.SetAllowance(owner, spender, bigmath.USub256(ephemeral, amount))
		return SpendResult{}, nil
	}

	residual := bigmath.USub256(amount, ephemeral)
	persistent := a.Persistent(owner, spender)
	if bigmath.IsMaxUint256(persistent) {
		eph.SetAllowance(owner, spender, uint256.NewInt(0))
		return SpendResult{}, nil
	}
	if persistent.Lt(residual) {
		return SpendResult{}, &InsufficientAllowanceError{
			Owner:     owner,
			Spender:   spender,
			Allowance: a.Combined(eph, owner, spender),
			Needed:    amount.Clone(),
		}
	}
	eph.SetAllowance(owner, spender, uint256.NewInt(0))
	remaining := bigmath.USub256(persistent, residual)
	a.SetPersistent(owner, spender, remaining)
	return SpendResult{PersistentChanged: true, PersistentRemaining: remaining}, nil
}
