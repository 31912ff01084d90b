// Package mailbox simulates the peer transport for the network. Every node
// owns three mailboxes keyed by its id: the latest published chain
// snapshot, an inbox of candidate blocks, and an inbox of transactions to
// mine. The mailboxes are the only state shared between nodes, so every
// operation takes the lock for the duration of a single post or drain and
// nothing more.
//
// Payloads are stored in their serialized form. Readers reconstruct their
// own copies, so no memory is ever shared between a poster and a reader.
package mailbox

import (
	"sync"

	"github.com/racechain/racechain/foundation/blockchain/ledger"
)

// Network maintains the mailboxes and the static neighbour adjacency for
// the simulation. The adjacency is fixed at construction; there is no
// dynamic membership.
type Network struct {
	mu         sync.RWMutex
	chains     map[string][]byte
	blocks     map[string][][]byte
	trans      map[string][][]byte
	neighbours map[string][]string
}

// New constructs a network for the specified neighbour adjacency. The
// adjacency maps a node id to the set of ids it can reach.
func New(neighbours map[string][]string) *Network {
	adj := make(map[string][]string, len(neighbours))
	for id, peers := range neighbours {
		adj[id] = append([]string(nil), peers...)
	}

	return &Network{
		chains:     make(map[string][]byte),
		blocks:     make(map[string][][]byte),
		trans:      make(map[string][][]byte),
		neighbours: adj,
	}
}

// Neighbours returns the ids adjacent to the specified node.
func (n *Network) Neighbours(nodeID string) []string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return append([]string(nil), n.neighbours[nodeID]...)
}

// =============================================================================
// Published chain snapshots. Last writer wins.

// PostChain overwrites the published chain snapshot for the node.
func (n *Network) PostChain(chain *ledger.Chain, nodeID string) error {
	data, err := ledger.MarshalChain(chain)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.chains[nodeID] = data

	return nil
}

// GetChain returns the last chain snapshot published by the node. A node
// that has never published returns an empty chain; that is a normal state
// before first publish, not a failure. A snapshot that cannot be parsed
// fails this read only.
func (n *Network) GetChain(nodeID string) (*ledger.Chain, error) {
	n.mu.RLock()
	data, exists := n.chains[nodeID]
	n.mu.RUnlock()

	if !exists {
		return &ledger.Chain{}, nil
	}

	return ledger.UnmarshalChain(data)
}

// GetNeighbourChains returns the published chain of every neighbour of the
// node, the node itself excluded. Snapshots that cannot be parsed are
// dropped; they carry no usable data.
func (n *Network) GetNeighbourChains(nodeID string) []*ledger.Chain {
	var chains []*ledger.Chain

	for _, neighbour := range n.Neighbours(nodeID) {
		if neighbour == nodeID {
			continue
		}

		chain, err := n.GetChain(neighbour)
		if err != nil {
			continue
		}
		chains = append(chains, chain)
	}

	return chains
}

// =============================================================================
// Block inboxes. Atomic drain, exactly-once delivery per poll.

// PostBlock appends a candidate block to the node's block inbox.
func (n *Network) PostBlock(block ledger.Block, nodeID string) error {
	data, err := ledger.MarshalBlock(block)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.blocks[nodeID] = append(n.blocks[nodeID], data)

	return nil
}

// BroadcastBlock posts the block to every neighbour of the node, the node
// itself excluded.
func (n *Network) BroadcastBlock(block ledger.Block, nodeID string) error {
	for _, neighbour := range n.Neighbours(nodeID) {
		if neighbour == nodeID {
			continue
		}

		if err := n.PostBlock(block, neighbour); err != nil {
			return err
		}
	}

	return nil
}

// GetBlocks drains and returns all blocks currently in the node's inbox.
// The drain is atomic: each posted block is delivered to exactly one call
// and never redelivered. Items that cannot be parsed are dropped.
func (n *Network) GetBlocks(nodeID string) []ledger.Block {
	n.mu.Lock()
	queue := n.blocks[nodeID]
	delete(n.blocks, nodeID)
	n.mu.Unlock()

	var blocks []ledger.Block
	for _, data := range queue {
		block, err := ledger.UnmarshalBlock(data)
		if err != nil {
			continue
		}
		blocks = append(blocks, block)
	}

	return blocks
}

// =============================================================================
// Transaction inboxes. Same drain semantics as blocks.

// PostTransaction appends a signed transaction to the node's transaction
// inbox.
func (n *Network) PostTransaction(tx ledger.SignedTx, nodeID string) error {
	data, err := ledger.MarshalTx(tx)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.trans[nodeID] = append(n.trans[nodeID], data)

	return nil
}

// GetTransactions drains and returns all transactions currently in the
// node's inbox.
func (n *Network) GetTransactions(nodeID string) []ledger.SignedTx {
	n.mu.Lock()
	queue := n.trans[nodeID]
	delete(n.trans, nodeID)
	n.mu.Unlock()

	var txs []ledger.SignedTx
	for _, data := range queue {
		tx, err := ledger.UnmarshalTx(data)
		if err != nil {
			continue
		}
		txs = append(txs, tx)
	}

	return txs
}

// =============================================================================

// Shutdown releases all mailbox state.
func (n *Network) Shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.chains = make(map[string][]byte)
	n.blocks = make(map[string][][]byte)
	n.trans = make(map[string][][]byte)
}
