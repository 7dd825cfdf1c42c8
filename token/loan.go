// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/util/bigmath"
)

// LoanAck is the acknowledgment value a loan receiver must return to confirm it
// understood and accepted the loan terms.
var LoanAck = crypto.Keccak256Hash([]byte("ERC3156FlashBorrower.onFlashLoan"))

// LoanReceiver is externally supplied code that takes delivery of a loan. OnLoan
// runs synchronously while the loan principal sits in the receiver's balance; it
// must arrange (normally via an ephemeral approval) for the engine to pull back
// amount + fee, and return LoanAck.
type LoanReceiver interface {
	Address() common.Address
	OnLoan(
		c *Call,
		initiator common.Address,
		asset common.Address,
		amount *uint256.Int,
		fee *uint256.Int,
		data []byte,
	) (common.Hash, error)
}

// FlashLoan mints amount to the receiver, hands it control, and then pulls back
// amount + fee, burning the principal and forwarding the fee. The mint is only
// ever observable within this invocation: any failure at any step rolls the
// whole sequence back, so supply and balances return to their pre-call values.
func (t *Token) FlashLoan(
	c *Call,
	receiver LoanReceiver,
	asset common.Address,
	amount *uint256.Int,
	data []byte,
) error {
	if err := c.enterGuard(); err != nil {
		return err
	}
	defer c.exitGuard()
	return c.transact(func() error {
		if asset != t.Address {
			return &UnsupportedAssetError{Asset: asset}
		}
		if amount.IsZero() {
			return ErrZeroLoanAmount
		}
		maxLoan := t.ledger.MaxMintable()
		if amount.Gt(maxLoan) {
			return &ExceededMaxLoanError{Requested: amount.Clone(), MaxLoan: maxLoan}
		}
		fee := bigmath.MulPPMCeil(amount, bigmath.PPM(t.loanFeePPM.Get()))

		borrower := receiver.Address()
		if err := t.ledger.Mint(borrower, amount); err != nil {
			return err
		}
		t.emitTransfer(common.Address{}, borrower, amount)

		ack, err := receiver.OnLoan(c, c.Caller, t.Address, amount, fee, data)
		if err != nil {
			log.Debug("loan receiver failed", "receiver", borrower, "err", err)
			return &InvalidLoanReceiverError{Receiver: borrower, Cause: err}
		}
		if ack != LoanAck {
			return &InvalidLoanReceiverError{Receiver: borrower, Ack: ack}
		}

		repayment, ok := bigmath.CheckedUAdd256(amount, fee)
		if !ok {
			return ErrRepaymentOverflow
		}
		if err := t.spendAllowance(c, borrower, t.Address, repayment); err != nil {
			return err
		}
		if err := t.move(borrower, t.Address, repayment); err != nil {
			return err
		}
		if err := t.burn(t.Address, amount); err != nil {
			return err
		}
		feeReceiver := t.feeReceiver.Get()
		if err := t.move(t.Address, feeReceiver, fee); err != nil {
			return err
		}
		t.emitFeePaid(borrower, feeReceiver, fee)
		return nil
	})
}

// MaxFlashLoan returns the loanable headroom for the given asset: the distance
// from the current supply to the cap for the ledger's own unit, zero otherwise.
func (t *Token) MaxFlashLoan(asset common.Address) *uint256.Int {
	if asset != t.Address {
		return uint256.NewInt(0)
	}
	return t.ledger.MaxMintable()
}

// FlashFee returns the fee charged for a loan of the given amount
func (t *Token) FlashFee(asset common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if asset != t.Address {
		return nil, &UnsupportedAssetError{Asset: asset}
	}
	return bigmath.MulPPMCeil(amount, bigmath.PPM(t.loanFeePPM.Get())), nil
}
