// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/token/storage"
	"github.com/offchainlabs/flashtoken/util/bigmath"
)

// Ledger owns account balances and the total supply, and enforces the two accounting
// invariants: the sum of all balances always equals the total supply, and the total
// supply never exceeds the cap. The cap is written once at initialization and is
// immutable afterwards.
type Ledger struct {
	backingStorage *storage.Storage
	balances       *storage.Storage
	totalSupply    storage.StorageBackedUint256
	cap            storage.StorageBackedUint256
}

const (
	totalSupplyOffset uint64 = iota
	capOffset
)

var balancesSubspace = []byte{0}

func InitializeLedger(sto *storage.Storage, cap *uint256.Int) *Ledger {
	ledger := OpenLedger(sto)
	ledger.cap.Set(cap)
	return ledger
}

func OpenLedger(sto *storage.Storage) *Ledger {
	return &Ledger{
		backingStorage: sto,
		balances:       sto.OpenSubStorage(balancesSubspace),
		totalSupply:    sto.OpenStorageBackedUint256(totalSupplyOffset),
		cap:            sto.OpenStorageBackedUint256(capOffset),
	}
}

func (l *Ledger) BalanceOf(account common.Address) *uint256.Int {
	value := l.balances.Get(storage.AddressToHash(account))
	return new(uint256.Int).SetBytes32(value[:])
}

func (l *Ledger) setBalance(account common.Address, balance *uint256.Int) {
	l.balances.Set(storage.AddressToHash(account), common.Hash(balance.Bytes32()))
}

func (l *Ledger) TotalSupply() *uint256.Int {
	return l.totalSupply.Get()
}

func (l *Ledger) Cap() *uint256.Int {
	return l.cap.Get()
}

// MaxMintable returns the supply headroom still under the cap
func (l *Ledger) MaxMintable() *uint256.Int {
	return bigmath.USub256(l.cap.Get(), l.totalSupply.Get())
}

// Mint increases an account's balance and the total supply in one step.
// The cap check makes balance arithmetic overflow impossible afterwards.
func (l *Ledger) Mint(to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return &InvalidReceiverError{Receiver: to}
	}
	supply := l.totalSupply.Get()
	cap := l.cap.Get()
	newSupply, ok := bigmath.CheckedUAdd256(supply, amount)
	if !ok || newSupply.Gt(cap) {
		return &CapExceededError{Increase: amount.Clone(), Supply: supply, Cap: cap}
	}
	l.totalSupply.Set(newSupply)
	l.setBalance(to, new(uint256.Int).Add(l.BalanceOf(to), amount))
	return nil
}

// Burn decreases an account's balance and the total supply in one step
func (l *Ledger) Burn(from common.Address, amount *uint256.Int) error {
	balance := l.BalanceOf(from)
	if balance.Lt(amount) {
		return &InsufficientBalanceError{Account: from, Balance: balance, Needed: amount.Clone()}
	}
	l.setBalance(from, bigmath.USub256(balance, amount))
	l.totalSupply.Set(bigmath.USub256(l.totalSupply.Get(), amount))
	return nil
}

// Move transfers value between two accounts. A zero-amount move, or a self-move
// backed by sufficient balance, succeeds without changing any state.
func (l *Ledger) Move(from, to common.Address, amount *uint256.Int) error {
	fromBalance := l.BalanceOf(from)
	if fromBalance.Lt(amount) {
		return &InsufficientBalanceError{Account: from, Balance: fromBalance, Needed: amount.Clone()}
	}
	if from == to || amount.IsZero() {
		return nil
	}
	l.setBalance(from, bigmath.USub256(fromBalance, amount))
	l.setBalance(to, new(uint256.Int).Add(l.BalanceOf(to), amount))
	return nil
}
