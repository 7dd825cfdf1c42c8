// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package bigmath

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestSaturatingUAdd256(t *testing.T) {
	small := SaturatingUAdd256(uint256.NewInt(2), uint256.NewInt(3))
	if !small.Eq(uint256.NewInt(5)) {
		t.Fatal("wrong sum", small)
	}
	clamped := SaturatingUAdd256(MaxUint256(), uint256.NewInt(1))
	if !IsMaxUint256(clamped) {
		t.Fatal("overflow failed to clamp", clamped)
	}
}

func TestCheckedUAdd256(t *testing.T) {
	if _, ok := CheckedUAdd256(MaxUint256(), uint256.NewInt(1)); ok {
		t.Fatal("overflow went unreported")
	}
	sum, ok := CheckedUAdd256(uint256.NewInt(7), uint256.NewInt(8))
	if !ok || !sum.Eq(uint256.NewInt(15)) {
		t.Fatal("wrong sum", sum)
	}
}

func TestMulPPMCeil(t *testing.T) {
	for _, tc := range []struct {
		value uint64
		rate  PPM
		want  uint64
	}{
		{1_000_000, 1337, 1337},
		{1_000, 1337, 2},    // 1.337 rounds up
		{1, 1, 1},           // even a dust amount is charged
		{1_000_000, 0, 0},   // zero rate charges nothing
		{0, 1337, 0},        // nothing borrowed, nothing owed
		{3, 1_000_000, 3},   // a whole-unit rate returns the value
		{1_000_000, 10_000, 10_000},
	} {
		got := MulPPMCeil(uint256.NewInt(tc.value), tc.rate)
		if !got.Eq(uint256.NewInt(tc.want)) {
			t.Fatal("value", tc.value, "rate", tc.rate, "want", tc.want, "got", got)
		}
	}
}

func TestMulPPMCeilFullWidth(t *testing.T) {
	// the intermediate product exceeds 256 bits, the result must not
	fee := MulPPMCeil(MaxUint256(), OneInPPM)
	if !IsMaxUint256(fee) {
		t.Fatal("full-width product was truncated", fee)
	}
}

func TestPercentToPPM(t *testing.T) {
	if PercentToPPM(100) != OneInPPM {
		t.Fatal("100 percent is not one in ppm")
	}
}
