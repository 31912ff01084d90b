package node

import (
	"context"
	"errors"

	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/nonce"
)

// ErrNoTransactions is returned when a block is requested to be mined and
// there are no transactions in the inbox. This is an idle condition, not a
// failure; the caller should back off and try again.
var ErrNoTransactions = errors.New("no transactions to mine")

// abortCheckInterval is the number of nonce attempts between checks for a
// competing block or a longer chain. It bounds the work wasted racing a
// puzzle another node has already solved.
const abortCheckInterval = 500

// Mine drains the node's transaction inbox, builds a candidate block on
// the current tip, and searches for a nonce that solves the work puzzle.
// The search pauses periodically to ingest competitor blocks and to
// reconcile against neighbour chains; if either moves the local chain
// forward, the attempt is abandoned since the work was already done
// elsewhere.
func (n *Node) Mine(ctx context.Context) error {
	txs := n.net.GetTransactions(n.id)
	if len(txs) == 0 {
		return ErrNoTransactions
	}

	if ctx.Err() != nil {
		n.requeue(txs)
		return ctx.Err()
	}

	n.evHandler("node: %s: mine: started: txs[%d]", n.id, len(txs))

	// Build the candidate on the current tip. The tip can move while the
	// search runs; that is detected by the periodic abort checks below.
	block := ledger.NewBlock(n.TipHash(), txs)

	gen := nonce.NewGenerator()

	var attempts uint64
	for {
		attempts++

		block.Nonce = gen.Next()
		if ledger.IsHashSolved(block.Hash()) {
			break
		}

		if attempts%abortCheckInterval != 0 {
			continue
		}

		// Suspension point: yield to shared state. Mining holds no lock,
		// so this is the only place an in-progress attempt can be
		// overtaken.
		if ctx.Err() != nil {
			n.requeue(txs)
			return ctx.Err()
		}

		if n.AddBlock() || n.ResolveConflicts() {
			n.evHandler("node: %s: mine: abandoned: attempts[%d]", n.id, attempts)
			n.requeue(txs)
			return nil
		}
	}

	n.evHandler("node: %s: mine: solved: blk[%s]: attempts[%d]", n.id, block.Hash(), attempts)

	// Extend the local chain with the mined block, then hand it to the
	// neighbours. Broadcast never targets self, so this append is the only
	// way the block reaches the miner's own chain.
	n.mu.Lock()
	n.chain.Append(block)
	n.mu.Unlock()

	if err := n.net.BroadcastBlock(block, n.id); err != nil {
		return err
	}

	n.evHandler("node: %s: mine: broadcast: blk[%s]", n.id, block.Hash())

	return nil
}

// requeue reposts drained transactions that have not made it into the
// chain back to the node's own inbox so an abandoned mining attempt does
// not bury them.
func (n *Node) requeue(txs []ledger.SignedTx) {
	mined := make(map[string]struct{})
	for _, block := range n.Chain() {
		for _, tx := range block.Trans {
			mined[tx.SignatureString()] = struct{}{}
		}
	}

	for _, tx := range txs {
		if _, exists := mined[tx.SignatureString()]; exists {
			continue
		}

		if err := n.net.PostTransaction(tx, n.id); err != nil {
			n.evHandler("node: %s: requeue: ERROR: %s", n.id, err)
		}
	}
}
