// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

// Package token implements a capped, mintable/burnable fungible-value ledger with
// three protocol layers on top: a dual-tier (ephemeral + persistent) spending
// authorization model, an uncollateralized single-invocation loan protocol, and
// relayed spending authorizations signed off-chain by the token owner.
//
// All durable state lives in the storage of the token's own account inside an
// Ethereum-compatible stateDB. Each external entry point runs inside a stateDB
// snapshot and either fully applies or fully rolls back.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/token/allowance"
	"github.com/offchainlabs/flashtoken/token/ledger"
	"github.com/offchainlabs/flashtoken/token/permit"
	"github.com/offchainlabs/flashtoken/token/storage"
	"github.com/offchainlabs/flashtoken/util/bigmath"
)

// Decimals is the fixed display precision of the token
const Decimals = 18

// DomainVersion is the version string bound into the signing domain separator
const DomainVersion = "1"

const formatVersion uint64 = 1

const (
	formatVersionOffset uint64 = iota
	feeReceiverOffset
	loanFeePPMOffset
	domainSeparatorOffset
)

var (
	ledgerSubspace     = []byte{0}
	allowancesSubspace = []byte{1}
	noncesSubspace     = []byte{2}
	nameSubspace       = []byte{3}
	symbolSubspace     = []byte{4}
)

// Config carries the construction parameters fixed for the lifetime of the token
type Config struct {
	Name          string
	Symbol        string
	InitialSupply *uint256.Int
	InitialHolder common.Address
	Cap           *uint256.Int
	FeeReceiver   common.Address
	LoanFeePPM    bigmath.PPM
	ChainId       *big.Int
}

// Token is the protocol engine, opened over the backing storage of its own account.
// Durable state is written through to the stateDB; invocation-scoped state lives on
// the Call passed into each operation.
type Token struct {
	Address common.Address

	statedb         vm.StateDB
	backingStorage  *storage.Storage
	ledger          *ledger.Ledger
	allowances      *allowance.Allowances
	nonces          *permit.Nonces
	feeReceiver     storage.StorageBackedAddress
	loanFeePPM      storage.StorageBackedUint64
	domainSeparator storage.StorageBackedHash
	name            storage.StorageBackedBytes
	symbol          storage.StorageBackedBytes
}

func open(statedb vm.StateDB, tokenAddr common.Address) *Token {
	backingStorage := storage.NewGeth(statedb, tokenAddr)
	return &Token{
		Address:         tokenAddr,
		statedb:         statedb,
		backingStorage:  backingStorage,
		ledger:          ledger.OpenLedger(backingStorage.OpenSubStorage(ledgerSubspace)),
		allowances:      allowance.OpenAllowances(backingStorage.OpenSubStorage(allowancesSubspace)),
		nonces:          permit.OpenNonces(backingStorage.OpenSubStorage(noncesSubspace)),
		feeReceiver:     backingStorage.OpenStorageBackedAddress(feeReceiverOffset),
		loanFeePPM:      backingStorage.OpenStorageBackedUint64(loanFeePPMOffset),
		domainSeparator: backingStorage.OpenStorageBackedHash(domainSeparatorOffset),
		name:            backingStorage.OpenStorageBackedBytes(nameSubspace),
		symbol:          backingStorage.OpenStorageBackedBytes(symbolSubspace),
	}
}

func (c *Config) validate(tokenAddr common.Address) error {
	if c.Name == "" {
		return ErrEmptyName
	}
	if c.Symbol == "" {
		return ErrEmptySymbol
	}
	if c.InitialSupply == nil || c.InitialSupply.IsZero() {
		return ErrZeroInitialSupply
	}
	if c.Cap == nil || !c.Cap.Gt(c.InitialSupply) {
		capValue := uint256.NewInt(0)
		if c.Cap != nil {
			capValue = c.Cap.Clone()
		}
		return &CapTooLowError{Cap: capValue, InitialSupply: c.InitialSupply.Clone()}
	}
	if c.FeeReceiver == (common.Address{}) || c.FeeReceiver == tokenAddr {
		return &InvalidFeeReceiverError{Receiver: c.FeeReceiver}
	}
	if c.LoanFeePPM > bigmath.OneInPPM {
		return &InvalidLoanFeeError{FeePPM: c.LoanFeePPM}
	}
	if c.ChainId == nil {
		return ErrMissingChainId
	}
	return nil
}

// Initialize writes a token's construction parameters into fresh backing storage
// and mints the initial supply. It must run exactly once per token account.
func Initialize(statedb vm.StateDB, tokenAddr common.Address, config *Config) (*Token, error) {
	t := open(statedb, tokenAddr)
	if t.backingStorage.GetByUint64(formatVersionOffset) != (common.Hash{}) {
		return nil, ErrAlreadyInitialized
	}
	if err := config.validate(tokenAddr); err != nil {
		return nil, err
	}
	snapshot := statedb.Snapshot()
	t.name.Set([]byte(config.Name))
	t.symbol.Set([]byte(config.Symbol))
	t.feeReceiver.Set(config.FeeReceiver)
	t.loanFeePPM.Set(uint64(config.LoanFeePPM))
	t.domainSeparator.Set(
		permit.DomainSeparator(config.Name, DomainVersion, config.ChainId, tokenAddr),
	)
	t.ledger = ledger.InitializeLedger(t.backingStorage.OpenSubStorage(ledgerSubspace), config.Cap)
	if err := t.ledger.Mint(config.InitialHolder, config.InitialSupply); err != nil {
		statedb.RevertToSnapshot(snapshot)
		return nil, err
	}
	t.emitTransfer(common.Address{}, config.InitialHolder, config.InitialSupply)
	t.backingStorage.SetByUint64(formatVersionOffset, storage.UintToHash(formatVersion))
	log.Info(
		"initialized token ledger",
		"name", config.Name, "symbol", config.Symbol,
		"supply", config.InitialSupply, "cap", config.Cap,
	)
	return t, nil
}

// Open returns the engine for an already-initialized token account
func Open(statedb vm.StateDB, tokenAddr common.Address) (*Token, error) {
	t := open(statedb, tokenAddr)
	if t.backingStorage.GetByUint64(formatVersionOffset) == (common.Hash{}) {
		return nil, ErrNotInitialized
	}
	return t, nil
}

// NewCall opens a fresh invocation scope. Ephemeral allowances are necessarily
// absent and the reentrancy flag clear, no matter what earlier invocations did.
func (t *Token) NewCall(caller common.Address, timestamp uint64) *Call {
	return &Call{
		Caller:    caller,
		Timestamp: timestamp,
		scope: &scope{
			statedb:   t.statedb,
			ephemeral: make(map[grantKey]*uint256.Int),
		},
	}
}

// Transfer moves value from the caller to another account
func (t *Token) Transfer(c *Call, to common.Address, amount *uint256.Int) error {
	return c.transact(func() error {
		return t.move(c.Caller, to, amount)
	})
}

// TransferFrom moves value out of an owner's account on the strength of the
// caller's allowance. A caller moving its own funds never touches either tier.
func (t *Token) TransferFrom(c *Call, from, to common.Address, amount *uint256.Int) error {
	return c.transact(func() error {
		if c.Caller != from {
			if err := t.spendAllowance(c, from, c.Caller, amount); err != nil {
				return err
			}
		}
		return t.move(from, to, amount)
	})
}

func (t *Token) move(from, to common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) {
		return &InvalidSenderError{Sender: from}
	}
	if to == (common.Address{}) {
		return &ledger.InvalidReceiverError{Receiver: to}
	}
	if err := t.ledger.Move(from, to, amount); err != nil {
		return err
	}
	t.emitTransfer(from, to, amount)
	return nil
}

// spendAllowance resolves a third-party debit against both allowance tiers and
// surfaces any draw-down of the persistent tier as an Approval event.
func (t *Token) spendAllowance(c *Call, owner, spender common.Address, amount *uint256.Int) error {
	result, err := t.allowances.Spend(c, owner, spender, amount)
	if err != nil {
		return err
	}
	if result.PersistentChanged {
		t.emitApproval(owner, spender, result.PersistentRemaining)
	}
	return nil
}

// Approve installs a persistent allowance of exactly value, replacing any prior
// one. Setting an unchanged value still emits an Approval event.
func (t *Token) Approve(c *Call, spender common.Address, value *uint256.Int) error {
	return c.transact(func() error {
		return t.approve(c.Caller, spender, value)
	})
}

func (t *Token) approve(owner, spender common.Address, value *uint256.Int) error {
	if owner == (common.Address{}) {
		return &InvalidApproverError{Approver: owner}
	}
	if spender == (common.Address{}) {
		return &InvalidSpenderError{Spender: spender}
	}
	t.allowances.SetPersistent(owner, spender, value)
	t.emitApproval(owner, spender, value)
	return nil
}

// TemporaryApprove installs an allowance scoped to the current invocation only
func (t *Token) TemporaryApprove(c *Call, spender common.Address, value *uint256.Int) error {
	return c.transact(func() error {
		return t.temporaryApprove(c, c.Caller, spender, value)
	})
}

func (t *Token) temporaryApprove(c *Call, owner, spender common.Address, value *uint256.Int) error {
	if spender == (common.Address{}) {
		return &InvalidSpenderError{Spender: spender}
	}
	c.SetAllowance(owner, spender, value)
	t.emitTemporaryApproval(owner, spender, value)
	return nil
}

// CallReceiver is externally supplied code reachable from TemporaryApproveAndCall
type CallReceiver interface {
	Address() common.Address
	HandleCall(c *Call, caller common.Address, data []byte) error
}

// TemporaryApproveAndCall grants the target an invocation-scoped allowance and then
// hands it control synchronously. The reentrancy guard keeps the target from
// re-entering this operation or the loan protocol mid-flight.
func (t *Token) TemporaryApproveAndCall(c *Call, target CallReceiver, value *uint256.Int, data []byte) error {
	if err := c.enterGuard(); err != nil {
		return err
	}
	defer c.exitGuard()
	return c.transact(func() error {
		if err := t.temporaryApprove(c, c.Caller, target.Address(), value); err != nil {
			return err
		}
		return target.HandleCall(c, c.Caller, data)
	})
}

// IncreaseAllowance raises the caller's persistent allowance for spender,
// failing instead of wrapping if the sum leaves the representable range
func (t *Token) IncreaseAllowance(c *Call, spender common.Address, added *uint256.Int) error {
	return c.transact(func() error {
		current := t.allowances.Persistent(c.Caller, spender)
		sum, ok := bigmath.CheckedUAdd256(current, added)
		if !ok {
			return &AllowanceOverflowError{Current: current, Added: added.Clone()}
		}
		return t.approve(c.Caller, spender, sum)
	})
}

// DecreaseAllowance lowers the caller's persistent allowance for spender
func (t *Token) DecreaseAllowance(c *Call, spender common.Address, subtracted *uint256.Int) error {
	return c.transact(func() error {
		current := t.allowances.Persistent(c.Caller, spender)
		if current.Lt(subtracted) {
			return &allowance.InsufficientAllowanceError{
				Owner:     c.Caller,
				Spender:   spender,
				Allowance: current,
				Needed:    subtracted.Clone(),
			}
		}
		return t.approve(c.Caller, spender, bigmath.USub256(current, subtracted))
	})
}

// Burn destroys value from the caller's own balance
func (t *Token) Burn(c *Call, amount *uint256.Int) error {
	return c.transact(func() error {
		return t.burn(c.Caller, amount)
	})
}

// BurnFrom destroys value from an owner's balance on the strength of the
// caller's allowance
func (t *Token) BurnFrom(c *Call, from common.Address, amount *uint256.Int) error {
	return c.transact(func() error {
		if c.Caller != from {
			if err := t.spendAllowance(c, from, c.Caller, amount); err != nil {
				return err
			}
		}
		return t.burn(from, amount)
	})
}

func (t *Token) burn(from common.Address, amount *uint256.Int) error {
	if from == (common.Address{}) {
		return &InvalidSenderError{Sender: from}
	}
	if err := t.ledger.Burn(from, amount); err != nil {
		return err
	}
	t.emitTransfer(from, common.Address{}, amount)
	return nil
}

// Permit installs a persistent allowance authorized by the owner's off-chain
// signature rather than a live caller identity; any relayer may submit it.
//
// The owner's replay nonce is consumed while the struct hash is built, before the
// signature is checked, so a signature that fails verification still burns the
// nonce it was built over and can never be retried. An expired deadline is
// rejected ahead of hash construction and burns nothing.
func (t *Token) Permit(
	c *Call,
	owner, spender common.Address,
	value *uint256.Int,
	deadline uint64,
	signature []byte,
) error {
	if c.Timestamp > deadline {
		return &permit.ExpiredSignatureError{Deadline: deadline, Now: c.Timestamp}
	}
	nonce := t.nonces.Consume(owner)
	structHash := permit.StructHash(owner, spender, value, nonce, deadline)
	digest := permit.TypedDataHash(t.domainSeparator.Get(), structHash)
	signer, err := permit.RecoverSigner(digest, signature)
	if err != nil {
		return err
	}
	if signer != owner {
		return &permit.InvalidSignerError{Signer: signer, Owner: owner}
	}
	return c.transact(func() error {
		return t.approve(owner, spender, value)
	})
}

// Receive rejects bare value transfers carrying no operation
func (t *Token) Receive(c *Call, value *uint256.Int) error {
	return ErrUnexpectedValue
}

// Fallback rejects calls that match no recognized operation
func (t *Token) Fallback(c *Call, calldata []byte) error {
	return ErrUnknownOperation
}

func (t *Token) Name() string {
	return string(t.name.Get())
}

func (t *Token) Symbol() string {
	return string(t.symbol.Get())
}

func (t *Token) TotalSupply() *uint256.Int {
	return t.ledger.TotalSupply()
}

func (t *Token) Cap() *uint256.Int {
	return t.ledger.Cap()
}

func (t *Token) BalanceOf(account common.Address) *uint256.Int {
	return t.ledger.BalanceOf(account)
}

// Allowance returns the combined (persistent + ephemeral) allowance, saturating
// at the maximum representable value
func (t *Token) Allowance(c *Call, owner, spender common.Address) *uint256.Int {
	return t.allowances.Combined(c, owner, spender)
}

// TemporaryAllowance returns only the invocation-scoped tier
func (t *Token) TemporaryAllowance(c *Call, owner, spender common.Address) *uint256.Int {
	return c.Allowance(owner, spender)
}

func (t *Token) FeeReceiver() common.Address {
	return t.feeReceiver.Get()
}

func (t *Token) DomainSeparator() common.Hash {
	return t.domainSeparator.Get()
}

// Nonces returns the owner's next unconsumed replay counter value
func (t *Token) Nonces(owner common.Address) uint64 {
	return t.nonces.Current(owner)
}
