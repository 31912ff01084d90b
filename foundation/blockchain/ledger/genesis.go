package ledger

// GenesisParentHash is the sentinel parent hash carried by the first block
// of every chain.
const GenesisParentHash = "0"

// genesisTime is the fixed timestamp of the genesis block. Every node must
// construct a byte-identical genesis block or their chains can never link.
const genesisTime = 1735689600 // 2025-01-01T00:00:00Z

// Genesis constructs the first block of the chain. It carries no
// transactions and no work; every node starts from this exact block.
func Genesis() Block {
	return Block{
		TimeStamp:     genesisTime,
		PrevBlockHash: GenesisParentHash,
	}
}
