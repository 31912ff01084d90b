// Package node implements the consensus engine: it mines blocks over the
// transactions in its inbox, validates and ingests blocks mined by
// neighbours, and resolves divergent chains with the longest valid chain
// rule.
package node

import (
	"sync"

	"github.com/google/uuid"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/mailbox"
)

// EventHandler defines a function that is called when events occur in the
// processing of the node.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to start a node.
type Config struct {
	ID        string
	Net       *mailbox.Network
	Genesis   ledger.Block
	EvHandler EventHandler
}

// Node owns one chain and drives the mining protocol against the network
// mailboxes. The chain is owned exclusively by this node; other nodes only
// ever see it through its published snapshot.
type Node struct {
	id        string
	net       *mailbox.Network
	evHandler EventHandler

	mu    sync.RWMutex
	chain *ledger.Chain

	Worker *Worker
}

// New constructs a node seeded with the shared genesis block. Every node
// in the network must be seeded with the same genesis or the chains can
// never converge.
func New(cfg Config) *Node {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Node{
		id:        id,
		net:       cfg.Net,
		evHandler: ev,
		chain:     ledger.NewChain(cfg.Genesis),
	}
}

// ID returns the identity of the node.
func (n *Node) ID() string {
	return n.id
}

// Chain returns a copy of the blocks in the node's current chain.
func (n *Node) Chain() []ledger.Block {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.chain.Blocks()
}

// ChainLength returns the number of blocks in the node's current chain.
func (n *Node) ChainLength() int {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.chain.Len()
}

// TipHash returns the hash of the last block in the node's current chain.
func (n *Node) TipHash() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.chain.Tip().Hash()
}

// Publish posts a snapshot of the node's current chain to the network for
// neighbours to reconcile against.
func (n *Node) Publish() error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.net.PostChain(n.chain, n.id)
}
