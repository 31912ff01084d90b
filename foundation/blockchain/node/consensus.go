package node

// AddBlock drains the node's block inbox and attempts to extend the local
// chain with each candidate in turn. A candidate is accepted only when it
// validates on its own and the chain as a whole still validates after the
// append; otherwise the append is rolled back and the next candidate is
// tried. The first acceptance wins. Reports whether a block was accepted.
func (n *Node) AddBlock() bool {
	for _, block := range n.net.GetBlocks(n.id) {
		if !VerifyBlock(block) {
			n.evHandler("node: %s: addblock: rejected: blk[%s]: invalid block", n.id, block.Hash())
			continue
		}

		n.mu.Lock()

		// Speculatively append, then judge the chain as a whole. The
		// candidate may not link to our tip.
		n.chain.Append(block)
		if !VerifyChain(n.chain) {
			n.chain.PopLast()
			n.mu.Unlock()

			n.evHandler("node: %s: addblock: rejected: blk[%s]: chain does not validate", n.id, block.Hash())
			continue
		}

		n.mu.Unlock()

		n.evHandler("node: %s: addblock: accepted: blk[%s]", n.id, block.Hash())
		return true
	}

	return false
}

// ResolveConflicts fetches the published chain of every neighbour and
// adopts the strictly longest one that validates. The local chain wins
// ties, so adoption always means the content changed. Reports whether the
// local chain was replaced.
func (n *Node) ResolveConflicts() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	authoritative := n.chain
	for _, chain := range n.net.GetNeighbourChains(n.id) {
		if !VerifyChain(chain) {
			n.evHandler("node: %s: resolve: discarded neighbour chain: does not validate", n.id)
			continue
		}

		if chain.Len() > authoritative.Len() {
			authoritative = chain
		}
	}

	if authoritative == n.chain {
		return false
	}

	n.evHandler("node: %s: resolve: adopted longer chain: len[%d]", n.id, authoritative.Len())
	n.chain = authoritative

	return true
}
