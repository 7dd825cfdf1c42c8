// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package allowance

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/token/storage"
	"github.com/offchainlabs/flashtoken/util/bigmath"
	"github.com/offchainlabs/flashtoken/util/testhelpers"
)

// scratchEphemeral stands in for an invocation scope
type scratchEphemeral map[[2]common.Address]*uint256.Int

func (s scratchEphemeral) Allowance(owner, spender common.Address) *uint256.Int {
	value, ok := s[[2]common.Address{owner, spender}]
	if !ok {
		return uint256.NewInt(0)
	}
	return value.Clone()
}

func (s scratchEphemeral) SetAllowance(owner, spender common.Address, value *uint256.Int) {
	s[[2]common.Address{owner, spender}] = value.Clone()
}

func newTestAllowances(t *testing.T) (*Allowances, scratchEphemeral, common.Address, common.Address) {
	t.Helper()
	sto := storage.NewMemoryBacked(testhelpers.RandomAddress())
	return OpenAllowances(sto), make(scratchEphemeral), testhelpers.RandomAddress(), testhelpers.RandomAddress()
}

func TestPersistentRoundTrip(t *testing.T) {
	a, eph, owner, spender := newTestAllowances(t)

	value := testhelpers.RandomAmount(1 << 40)
	a.SetPersistent(owner, spender, value)
	if !a.Persistent(owner, spender).Eq(value) {
		Fail(t, "failed to round-trip an allowance")
	}
	if !a.Combined(eph, owner, spender).Eq(value) {
		Fail(t, "combined view differs with no ephemeral grant")
	}
	if !a.Persistent(spender, owner).IsZero() {
		Fail(t, "reversed pair shares a slot")
	}
}

func TestSpendDrawsEphemeralFirst(t *testing.T) {
	a, eph, owner, spender := newTestAllowances(t)
	a.SetPersistent(owner, spender, uint256.NewInt(100))
	eph.SetAllowance(owner, spender, uint256.NewInt(60))

	// covered entirely by the ephemeral tier: persistent untouched
	result, err := a.Spend(eph, owner, spender, uint256.NewInt(25))
	Require(t, err)
	if result.PersistentChanged {
		Fail(t, "persistent tier touched needlessly")
	}
	if !eph.Allowance(owner, spender).Eq(uint256.NewInt(35)) {
		Fail(t, "wrong ephemeral residue")
	}

	// spending E + k: ephemeral empties, persistent drops by k
	result, err = a.Spend(eph, owner, spender, uint256.NewInt(55))
	Require(t, err)
	if !result.PersistentChanged || !result.PersistentRemaining.Eq(uint256.NewInt(80)) {
		Fail(t, "wrong persistent residue", result.PersistentRemaining)
	}
	if !eph.Allowance(owner, spender).IsZero() {
		Fail(t, "ephemeral tier not emptied")
	}
	if !a.Persistent(owner, spender).Eq(uint256.NewInt(80)) {
		Fail(t, "wrong persistent value")
	}
}

func TestSpendShortfall(t *testing.T) {
	a, eph, owner, spender := newTestAllowances(t)
	a.SetPersistent(owner, spender, uint256.NewInt(10))
	eph.SetAllowance(owner, spender, uint256.NewInt(5))

	_, err := a.Spend(eph, owner, spender, uint256.NewInt(16))
	var insufficient *InsufficientAllowanceError
	if !errors.As(err, &insufficient) {
		Fail(t, "overspend succeeded")
	}
	if !insufficient.Allowance.Eq(uint256.NewInt(15)) || !insufficient.Needed.Eq(uint256.NewInt(16)) {
		Fail(t, "error carries wrong diagnostics", insufficient)
	}

	// the failed resolution must not have consumed either tier
	if !eph.Allowance(owner, spender).Eq(uint256.NewInt(5)) {
		Fail(t, "failed spend consumed the ephemeral tier")
	}
	if !a.Persistent(owner, spender).Eq(uint256.NewInt(10)) {
		Fail(t, "failed spend consumed the persistent tier")
	}
}

func TestUnlimitedSentinels(t *testing.T) {
	a, eph, owner, spender := newTestAllowances(t)

	// unlimited persistent survives any number of spends
	a.SetPersistent(owner, spender, bigmath.MaxUint256())
	for i := 0; i < 3; i++ {
		result, err := a.Spend(eph, owner, spender, testhelpers.RandomAmount(1<<50))
		Require(t, err)
		if result.PersistentChanged {
			Fail(t, "unlimited persistent allowance was drawn down")
		}
	}
	if !bigmath.IsMaxUint256(a.Persistent(owner, spender)) {
		Fail(t, "unlimited persistent allowance decremented")
	}

	// unlimited ephemeral is likewise never consumed, and shields both tiers
	a.SetPersistent(owner, spender, uint256.NewInt(7))
	eph.SetAllowance(owner, spender, bigmath.MaxUint256())
	_, err := a.Spend(eph, owner, spender, testhelpers.RandomAmount(1<<50))
	Require(t, err)
	if !bigmath.IsMaxUint256(eph.Allowance(owner, spender)) {
		Fail(t, "unlimited ephemeral allowance consumed")
	}
	if !a.Persistent(owner, spender).Eq(uint256.NewInt(7)) {
		Fail(t, "persistent tier touched behind an unlimited ephemeral")
	}
}

func TestCombinedSaturates(t *testing.T) {
	a, eph, owner, spender := newTestAllowances(t)
	a.SetPersistent(owner, spender, bigmath.MaxUint256())
	eph.SetAllowance(owner, spender, uint256.NewInt(1))

	if !bigmath.IsMaxUint256(a.Combined(eph, owner, spender)) {
		Fail(t, "combined view failed to saturate")
	}
}

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}
