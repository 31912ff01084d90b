// Package stamper implements the centralized timestamp server: a single
// authority that appends signed blocks to its own private chain. No mining
// and no consensus takes place; it is a simplified substitute for the peer
// mining protocol and is never composed with the node or mailbox packages.
package stamper

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/signature"
)

// SignedBlock is a block vouched for by the server's signature instead of
// proof of work. The signature covers the block payload only.
type SignedBlock struct {
	ledger.Block
	V *big.Int `json:"v"`
	R *big.Int `json:"r"`
	S *big.Int `json:"s"`
}

// Server maintains the authority key and the private chain.
type Server struct {
	privateKey *ecdsa.PrivateKey
	accountID  ledger.AccountID

	mu     sync.Mutex
	blocks []SignedBlock
}

// New constructs a timestamp server with a freshly generated authority
// key and a genesis block.
func New() (*Server, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	srv := Server{
		privateKey: privateKey,
		accountID:  ledger.PublicKeyToAccountID(privateKey.PublicKey),
		blocks:     []SignedBlock{{Block: ledger.Genesis()}},
	}

	return &srv, nil
}

// AccountID returns the account clients verify signed blocks against.
func (s *Server) AccountID() ledger.AccountID {
	return s.accountID
}

// GenerateBlock batches the transactions into a block linked to the tip
// of the private chain, signs it, and appends it.
func (s *Server) GenerateBlock(txs []ledger.SignedTx) (SignedBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tip := s.blocks[len(s.blocks)-1]
	block := ledger.NewBlock(tip.Hash(), txs)

	v, r, sig, err := signature.Sign(block, s.privateKey)
	if err != nil {
		return SignedBlock{}, err
	}

	sb := SignedBlock{
		Block: block,
		V:     v,
		R:     r,
		S:     sig,
	}
	s.blocks = append(s.blocks, sb)

	return sb, nil
}

// Verify validates the block was signed by this server's authority key.
func (s *Server) Verify(sb SignedBlock) error {
	if sb.V == nil || sb.R == nil || sb.S == nil {
		return errors.New("block is not signed")
	}

	if err := signature.VerifySignature(sb.V, sb.R, sb.S); err != nil {
		return err
	}

	address, err := signature.FromAddress(sb.Block, sb.V, sb.R, sb.S)
	if err != nil {
		return err
	}

	if address != string(s.accountID) {
		return errors.New("block was not signed by the timestamp authority")
	}

	return nil
}

// Chain returns a copy of the private chain.
func (s *Server) Chain() []SignedBlock {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SignedBlock(nil), s.blocks...)
}
