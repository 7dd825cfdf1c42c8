// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package bigmath

import (
	"math/big"

	"github.com/holiman/uint256"
)

// PPM is a fraction expressed in parts per million
type PPM uint64

const OneInPPM PPM = 1_000_000

func PercentToPPM(percentage uint64) PPM {
	return PPM(percentage) * 10_000
}

// MulPPMCeil multiplies a word by a ppm fraction, rounding up.
// The product is computed at full width, so a rate at or below OneInPPM
// can never overflow the word it started from.
func MulPPMCeil(value *uint256.Int, rate PPM) *uint256.Int {
	product := new(big.Int).Mul(value.ToBig(), new(big.Int).SetUint64(uint64(rate)))
	product.Add(product, new(big.Int).SetUint64(uint64(OneInPPM)-1))
	product.Div(product, new(big.Int).SetUint64(uint64(OneInPPM)))
	result, _ := uint256.FromBig(product)
	return result
}
