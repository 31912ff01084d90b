package node

import (
	"github.com/racechain/racechain/foundation/blockchain/ledger"
)

// VerifyProof validates the block's hash complies with the work rules.
func VerifyProof(block ledger.Block) bool {
	return ledger.IsHashSolved(block.Hash())
}

// VerifyTransaction validates the transaction carries a signature and that
// the signature is cryptographically valid for the sender over the
// unsigned payload.
func VerifyTransaction(tx ledger.SignedTx) bool {
	return tx.Validate() == nil
}

// VerifyBlock validates every transaction in the block and the block's
// proof of work.
func VerifyBlock(block ledger.Block) bool {
	for _, tx := range block.Trans {
		if !VerifyTransaction(tx) {
			return false
		}
	}

	return VerifyProof(block)
}

// VerifyChain validates the chain from the tip back to genesis: every
// block after genesis must pass VerifyBlock and carry the hash of its
// predecessor. An empty or genesis-only chain is trivially valid.
func VerifyChain(chain *ledger.Chain) bool {
	for i := chain.Len() - 1; i > 0; i-- {
		if !VerifyBlock(chain.At(i)) {
			return false
		}

		if chain.At(i-1).Hash() != chain.At(i).PrevBlockHash {
			return false
		}
	}

	return true
}
