// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/token/storage"
	"github.com/offchainlabs/flashtoken/util/bigmath"
	"github.com/offchainlabs/flashtoken/util/testhelpers"
)

const testTimestamp uint64 = 1_700_000_000

type testSetup struct {
	tok         *Token
	statedb     *state.StateDB
	deployer    common.Address
	feeReceiver common.Address
}

func newTestToken(t *testing.T) *testSetup {
	t.Helper()
	statedb, ok := storage.NewMemoryBackedStateDB().(*state.StateDB)
	if !ok {
		Fail(t, "memory backing is not a geth statedb")
	}
	deployer := testhelpers.RandomAddress()
	feeReceiver := testhelpers.RandomAddress()
	tok, err := Initialize(statedb, testhelpers.RandomAddress(), &Config{
		Name:          "Flash Token",
		Symbol:        "FLASH",
		InitialSupply: uint256.NewInt(1_000_000),
		InitialHolder: deployer,
		Cap:           uint256.NewInt(2_000_000),
		FeeReceiver:   feeReceiver,
		LoanFeePPM:    bigmath.PPM(1337),
		ChainId:       big.NewInt(412346),
	})
	Require(t, err)
	return &testSetup{
		tok:         tok,
		statedb:     statedb,
		deployer:    deployer,
		feeReceiver: feeReceiver,
	}
}

func (s *testSetup) call(caller common.Address) *Call {
	return s.tok.NewCall(caller, testTimestamp)
}

// checkSupply verifies that the supply covers every account the test has touched
func (s *testSetup) checkSupply(t *testing.T, accounts ...common.Address) {
	t.Helper()
	sum := uint256.NewInt(0)
	for _, account := range accounts {
		sum.Add(sum, s.tok.BalanceOf(account))
	}
	if !sum.Eq(s.tok.TotalSupply()) {
		Fail(t, "balances sum to", sum, "but supply is", s.tok.TotalSupply())
	}
}

// logsSince projects the stateDB's logs after the given count into comparable records
func (s *testSetup) logsSince(start int) []types.Log {
	logs := s.statedb.GetLogs(common.Hash{}, 0, common.Hash{})
	projected := []types.Log{}
	for _, entry := range logs[start:] {
		projected = append(projected, types.Log{
			Address: entry.Address,
			Topics:  entry.Topics,
			Data:    entry.Data,
		})
	}
	return projected
}

func (s *testSetup) logCount() int {
	return len(s.statedb.GetLogs(common.Hash{}, 0, common.Hash{}))
}

func valueEvent(tok *Token, topic common.Hash, first, second common.Address, value uint64) types.Log {
	data := uint256.NewInt(value).Bytes32()
	return types.Log{
		Address: tok.Address,
		Topics:  []common.Hash{topic, storage.AddressToHash(first), storage.AddressToHash(second)},
		Data:    data[:],
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
