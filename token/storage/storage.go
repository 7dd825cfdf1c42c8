// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package storage

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Storage lets the token persist its state in an Ethereum-compatible stateDB, as the
// storage of the account the token itself lives at.
//
// The storage is logically a tree of storage spaces which can be nested hierarchically,
// with each storage space containing a key-value store with 256-bit keys and values.
// Uninitialized storage spaces and uninitialized keys within initialized storage spaces
// are deemed to be filled with zeroes.
//
// A storage space (represented by a Storage object) has a byte-slice storageKey which
// distinguishes it from other storage spaces. The root Storage has the empty string as
// its storageKey. The storageKey of a child is keccak256(parent.storageKey, name), so
// two spaces cannot collide without implying a collision in keccak256.
//
// The contents of key, within a storage space with storageKey, are stored at location
// keccak256(storageKey, key) in the account's flat key-value store.

type Storage struct {
	account    common.Address
	db         vm.StateDB
	storageKey []byte
}

// NewGeth opens the root storage space of the given account in a Geth stateDB
func NewGeth(statedb vm.StateDB, account common.Address) *Storage {
	statedb.SetNonce(account, 1) // setting the nonce ensures Geth won't treat the account as empty
	return &Storage{
		account:    account,
		db:         statedb,
		storageKey: []byte{},
	}
}

// NewMemoryBacked uses Geth's memory-backed database to create a key-value store for testing
func NewMemoryBacked(account common.Address) *Storage {
	return NewGeth(NewMemoryBackedStateDB(), account)
}

// NewMemoryBackedStateDB uses Geth's memory-backed database to create a statedb
func NewMemoryBackedStateDB() vm.StateDB {
	raw := rawdb.NewMemoryDatabase()
	db := state.NewDatabase(raw)
	statedb, err := state.New(common.Hash{}, db, nil)
	if err != nil {
		panic("failed to init empty statedb")
	}
	return statedb
}

// We map addresses using "pages" of 256 storage slots. We hash over the page number but
// not the offset within a page, to preserve contiguity within a page.
func mapAddress(storageKey []byte, key common.Hash) common.Hash {
	keyBytes := key.Bytes()
	boundary := common.HashLength - 1
	return common.BytesToHash(
		append(
			crypto.Keccak256(storageKey, keyBytes[:boundary])[:boundary],
			keyBytes[boundary],
		),
	)
}

func (store *Storage) Get(key common.Hash) common.Hash {
	return store.db.GetState(store.account, mapAddress(store.storageKey, key))
}

func (store *Storage) GetByUint64(key uint64) common.Hash {
	return store.Get(UintToHash(key))
}

func (store *Storage) Set(key common.Hash, value common.Hash) {
	store.db.SetState(store.account, mapAddress(store.storageKey, key), value)
}

func (store *Storage) SetByUint64(key uint64, value common.Hash) {
	store.Set(UintToHash(key), value)
}

func (store *Storage) Clear(key common.Hash) {
	store.Set(key, common.Hash{})
}

func (store *Storage) OpenSubStorage(id []byte) *Storage {
	return &Storage{
		store.account,
		store.db,
		crypto.Keccak256(store.storageKey, id),
	}
}

func (store *Storage) SetBytes(b []byte) {
	store.ClearBytes()
	store.SetByUint64(0, UintToHash(uint64(len(b))))
	offset := uint64(1)
	for len(b) >= 32 {
		store.SetByUint64(offset, common.BytesToHash(b[:32]))
		b = b[32:]
		offset++
	}
	store.SetByUint64(offset, common.BytesToHash(b))
}

func (store *Storage) GetBytes() []byte {
	bytesLeft := store.GetByUint64(0).Big().Uint64()
	ret := []byte{}
	offset := uint64(1)
	for bytesLeft >= 32 {
		ret = append(ret, store.GetByUint64(offset).Bytes()...)
		bytesLeft -= 32
		offset++
	}
	ret = append(ret, store.GetByUint64(offset).Bytes()[32-bytesLeft:]...)
	return ret
}

func (store *Storage) ClearBytes() {
	bytesLeft := store.GetByUint64(0).Big().Uint64()
	offset := uint64(1)
	for bytesLeft > 0 {
		store.SetByUint64(offset, common.Hash{})
		offset++
		if bytesLeft < 32 {
			bytesLeft = 0
		} else {
			bytesLeft -= 32
		}
	}
	store.SetByUint64(0, common.Hash{})
}

// UintToHash encodes a uint64 as its 32-byte storage representation
func UintToHash(val uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(val))
}

// AddressToHash left-pads an address to the width of a storage key
func AddressToHash(address common.Address) common.Hash {
	return common.BytesToHash(address.Bytes())
}

type StorageSlot struct {
	account common.Address
	db      vm.StateDB
	slot    common.Hash
}

func (store *Storage) NewSlot(offset uint64) StorageSlot {
	return StorageSlot{store.account, store.db, mapAddress(store.storageKey, UintToHash(offset))}
}

func (ss *StorageSlot) Get() common.Hash {
	return ss.db.GetState(ss.account, ss.slot)
}

func (ss *StorageSlot) Set(val common.Hash) {
	ss.db.SetState(ss.account, ss.slot, val)
}

type StorageBackedUint64 struct {
	StorageSlot
}

func (store *Storage) OpenStorageBackedUint64(offset uint64) StorageBackedUint64 {
	return StorageBackedUint64{store.NewSlot(offset)}
}

func (sbu *StorageBackedUint64) Get() uint64 {
	raw := sbu.StorageSlot.Get().Big()
	if !raw.IsUint64() {
		panic("expected uint64 compatible value in storage")
	}
	return raw.Uint64()
}

func (sbu *StorageBackedUint64) Set(value uint64) {
	sbu.StorageSlot.Set(UintToHash(value))
}

// StorageBackedUint256 holds one 256-bit word in a single storage slot
type StorageBackedUint256 struct {
	StorageSlot
}

func (store *Storage) OpenStorageBackedUint256(offset uint64) StorageBackedUint256 {
	return StorageBackedUint256{store.NewSlot(offset)}
}

func (sbu *StorageBackedUint256) Get() *uint256.Int {
	value := sbu.StorageSlot.Get()
	return new(uint256.Int).SetBytes32(value[:])
}

func (sbu *StorageBackedUint256) Set(value *uint256.Int) {
	sbu.StorageSlot.Set(common.Hash(value.Bytes32()))
}

type StorageBackedAddress struct {
	StorageSlot
}

func (store *Storage) OpenStorageBackedAddress(offset uint64) StorageBackedAddress {
	return StorageBackedAddress{store.NewSlot(offset)}
}

func (sba *StorageBackedAddress) Get() common.Address {
	return common.BytesToAddress(sba.StorageSlot.Get().Bytes())
}

func (sba *StorageBackedAddress) Set(val common.Address) {
	sba.StorageSlot.Set(AddressToHash(val))
}

type StorageBackedHash struct {
	StorageSlot
}

func (store *Storage) OpenStorageBackedHash(offset uint64) StorageBackedHash {
	return StorageBackedHash{store.NewSlot(offset)}
}

func (sbh *StorageBackedHash) Get() common.Hash {
	return sbh.StorageSlot.Get()
}

func (sbh *StorageBackedHash) Set(val common.Hash) {
	sbh.StorageSlot.Set(val)
}

type StorageBackedBytes struct {
	Storage
}

func (store *Storage) OpenStorageBackedBytes(id []byte) StorageBackedBytes {
	return StorageBackedBytes{
		*store.OpenSubStorage(id),
	}
}

func (sbb *StorageBackedBytes) Get() []byte {
	return sbb.Storage.GetBytes()
}

func (sbb *StorageBackedBytes) Set(val []byte) {
	sbb.Storage.SetBytes(val)
}
