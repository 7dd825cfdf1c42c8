// Copyright 2023-2024, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/flashtoken/blob/master/LICENSE

package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/offchainlabs/flashtoken/token/storage"
)

// Event topics use the standard ERC-20 signatures where one exists, so stock
// Ethereum tooling can filter the ledger's logs.
var (
	transferTopic          = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
	approvalTopic          = crypto.Keccak256Hash([]byte("Approval(address,address,uint256)"))
	temporaryApprovalTopic = crypto.Keccak256Hash([]byte("TemporaryApproval(address,address,uint256)"))
	feePaidTopic           = crypto.Keccak256Hash([]byte("FeePaid(address,address,uint256)"))
)

// emitValueEvent records a two-address, one-amount event. The addresses are indexed
// topics; the amount is the 32-byte data word. Geth fills in the positional log
// fields (TxHash, TxIndex, Index) when the invocation is part of a block.
func (t *Token) emitValueEvent(topic common.Hash, first, second common.Address, value *uint256.Int) {
	data := value.Bytes32()
	t.statedb.AddLog(&types.Log{
		Address: t.Address,
		Topics: []common.Hash{
			topic,
			storage.AddressToHash(first),
			storage.AddressToHash(second),
		},
		Data: data[:],
	})
}

func (t *Token) emitTransfer(from, to common.Address, value *uint256.Int) {
	t.emitValueEvent(transferTopic, from, to, value)
}

func (t *Token) emitApproval(owner, spender common.Address, value *uint256.Int) {
	t.emitValueEvent(approvalTopic, owner, spender, value)
}

func (t *Token) emitTemporaryApproval(owner, spender common.Address, value *uint256.Int) {
	t.emitValueEvent(temporaryApprovalTopic, owner, spender, value)
}

func (t *Token) emitFeePaid(payer, receiver common.Address, fee *uint256.Int) {
	t.emitValueEvent(feePaidTopic, payer, receiver, fee)
}
