// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package bigmath

import (
	"github.com/holiman/uint256"
)

// MaxUint256 returns a fresh copy of the largest representable word,
// which the ledger treats as the unlimited-allowance sentinel.
func MaxUint256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// IsMaxUint256 checks whether a value is the unlimited sentinel
func IsMaxUint256(value *uint256.Int) bool {
	return value.Eq(MaxUint256())
}

// SaturatingUAdd256 adds two words, clamping to the maximum on overflow
func SaturatingUAdd256(augend, addend *uint256.Int) *uint256.Int {
	sum, overflow := new(uint256.Int).AddOverflow(augend, addend)
	if overflow {
		return MaxUint256()
	}
	return sum
}

// CheckedUAdd256 adds two words, reporting overflow instead of wrapping
func CheckedUAdd256(augend, addend *uint256.Int) (*uint256.Int, bool) {
	sum, overflow := new(uint256.Int).AddOverflow(augend, addend)
	return sum, !overflow
}

// USub256 subtracts a word from another no greater than it
func USub256(minuend, subtrahend *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sub(minuend, subtrahend)
}
