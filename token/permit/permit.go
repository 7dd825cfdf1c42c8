// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

// Package permit authenticates off-chain-signed spending authorizations. A relayer
// submits an owner's detached signature over a domain-separated structured hash; the
// hash binds the owner's replay nonce, so each signature is good for exactly one
// successful installation of a persistent allowance.
package permit

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/offchainlabs/flashtoken/token/storage"
)

var (
	domainTypeHash = crypto.Keccak256Hash(
		[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"),
	)
	permitTypeHash = crypto.Keccak256Hash(
		[]byte("Permit(address owner,address spender,uint256 value,uint256 nonce,uint256 deadline)"),
	)
)

// DomainSeparator commits to this contract instance, its version, and the chain it
// executes on, keeping a signature from being replayed against any other deployment.
func DomainSeparator(name, version string, chainId *big.Int, contract common.Address) common.Hash {
	return crypto.Keccak256Hash(
		domainTypeHash.Bytes(),
		crypto.Keccak256([]byte(name)),
		crypto.Keccak256([]byte(version)),
		common.BigToHash(chainId).Bytes(),
		storage.AddressToHash(contract).Bytes(),
	)
}

// StructHash binds an authorization to the owner's current replay nonce
func StructHash(owner, spender common.Address, value *uint256.Int, nonce uint64, deadline uint64) common.Hash {
	return crypto.Keccak256Hash(
		permitTypeHash.Bytes(),
		storage.AddressToHash(owner).Bytes(),
		storage.AddressToHash(spender).Bytes(),
		value.PaddedBytes(32),
		storage.UintToHash(nonce).Bytes(),
		storage.UintToHash(deadline).Bytes(),
	)
}

// TypedDataHash combines a struct hash with a domain separator per the
// structured-data signing convention (0x19 0x01 prefix).
func TypedDataHash(domainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01},
		domainSeparator.Bytes(),
		structHash.Bytes(),
	)
}

// RecoverSigner extracts the signing identity from a 65-byte detached signature
// over the given digest. Both legacy (27/28) and raw (0/1) recovery ids are accepted.
func RecoverSigner(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, errors.Errorf(
			"malformed signature: have %v bytes, want %v", len(signature), crypto.SignatureLength,
		)
	}
	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pubkey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "unable to recover authorization signer")
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// Nonces tracks each owner's replay counter. A counter value is consumed during
// struct hash construction, before signature verification, so a rejected signature
// still burns the value it was built over.
type Nonces struct {
	backingStorage *storage.Storage
}

func OpenNonces(sto *storage.Storage) *Nonces {
	return &Nonces{backingStorage: sto}
}

func (n *Nonces) Current(owner common.Address) uint64 {
	return n.backingStorage.Get(storage.AddressToHash(owner)).Big().Uint64()
}

// Consume returns the owner's current nonce and advances the counter by one
func (n *Nonces) Consume(owner common.Address) uint64 {
	key := storage.AddressToHash(owner)
	nonce := n.backingStorage.Get(key).Big().Uint64()
	n.backingStorage.Set(key, storage.UintToHash(nonce+1))
	return nonce
}
