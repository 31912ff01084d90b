package ledger

import (
	"encoding/json"
	"errors"
)

// Chain is an ordered sequence of blocks, index 0 being genesis. It exposes
// only the operations the protocol needs: append, pop of the last block,
// length, indexed access, and serialization.
type Chain struct {
	blocks []Block
}

// NewChain constructs a chain seeded with the specified genesis block.
func NewChain(genesis Block) *Chain {
	return &Chain{
		blocks: []Block{genesis},
	}
}

// Append adds a block to the end of the chain.
func (c *Chain) Append(block Block) {
	c.blocks = append(c.blocks, block)
}

// PopLast removes and returns the last block in the chain. Popping an
// empty chain returns an error.
func (c *Chain) PopLast() (Block, error) {
	if len(c.blocks) == 0 {
		return Block{}, errors.New("chain is empty")
	}

	block := c.blocks[len(c.blocks)-1]
	c.blocks = c.blocks[:len(c.blocks)-1]

	return block, nil
}

// Len returns the number of blocks in the chain. This is the chain's
// weight for conflict resolution.
func (c *Chain) Len() int {
	return len(c.blocks)
}

// At returns the block at the specified index.
func (c *Chain) At(i int) Block {
	return c.blocks[i]
}

// Tip returns the last block in the chain.
func (c *Chain) Tip() Block {
	return c.blocks[len(c.blocks)-1]
}

// Blocks returns a copy of the ordered block sequence.
func (c *Chain) Blocks() []Block {
	blocks := make([]Block, len(c.blocks))
	copy(blocks, c.blocks)

	return blocks
}

// MarshalJSON implements the json.Marshaler interface so a chain
// serializes as its plain block sequence.
func (c *Chain) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.blocks)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (c *Chain) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.blocks)
}

// =============================================================================

// MarshalChain serializes a chain to its wire form.
func MarshalChain(chain *Chain) ([]byte, error) {
	return json.Marshal(chain)
}

// UnmarshalChain reconstructs a chain from its wire form. The blocks come
// back as an isolated copy, never sharing memory with the producer.
func UnmarshalChain(data []byte) (*Chain, error) {
	var chain Chain
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, err
	}

	return &chain, nil
}
