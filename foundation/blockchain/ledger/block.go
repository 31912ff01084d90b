// Package ledger implements the block, chain, and transaction data model
// shared by every node in the network.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/racechain/racechain/foundation/blockchain/signature"
)

// Difficulty is the number of leading zero hex characters the hash of a
// mined block must carry. It is fixed for the life of the chain; every
// node must agree on it to ever converge.
const Difficulty = 3

// =============================================================================

// Block represents a group of transactions batched together with a link to
// the previous block. Once a nonce that solves the work puzzle has been
// found, the block is immutable.
type Block struct {
	TimeStamp     uint64     `json:"timestamp"`       // Time the block was mined.
	Trans         []SignedTx `json:"txs"`             // Transactions recorded in this block.
	PrevBlockHash string     `json:"prev_block_hash"` // Hash of the previous block in the chain.
	Nonce         uint64     `json:"nonce"`           // Value identified to solve the hash solution.
}

// NewBlock constructs a candidate block on top of the specified parent hash.
// The nonce starts at zero and is identified by the mining operation.
func NewBlock(prevBlockHash string, trans []SignedTx) Block {
	return Block{
		TimeStamp:     uint64(time.Now().UTC().Unix()),
		Trans:         trans,
		PrevBlockHash: prevBlockHash,
	}
}

// Hash returns the unique hash for the block. The digest covers every
// field, the nonce included, so identity is content addressed.
func (b Block) Hash() string {
	return signature.Hash(b)
}

// IsHashSolved checks the hash to make sure it complies with the work
// rules. We need to match a difficulty number of 0's.
func IsHashSolved(hash string) bool {
	const match = "00000000000000000"

	if len(hash) != 64 {
		return false
	}

	return hash[:Difficulty] == match[:Difficulty]
}

// =============================================================================

// MarshalBlock serializes a block to its canonical wire form. The wire
// form is exactly what the Hash function digests.
func MarshalBlock(block Block) ([]byte, error) {
	return json.Marshal(block)
}

// UnmarshalBlock reconstructs a block from its wire form.
func UnmarshalBlock(data []byte) (Block, error) {
	var block Block
	if err := json.Unmarshal(data, &block); err != nil {
		return Block{}, err
	}

	return block, nil
}
