package node_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/mailbox"
	"github.com/racechain/racechain/foundation/blockchain/node"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	toID     = ledger.AccountID("0xF01813E4B85e178A83e29B8E7bF26BD830a25f32")
)

// signTx constructs and signs a transaction with the fixed test key.
func signTx(t *testing.T, value uint64) ledger.SignedTx {
	t.Helper()

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the private key: %v", failed, err)
	}

	tx, err := ledger.NewTx(ledger.PublicKeyToAccountID(pk.PublicKey), toID, value)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a transaction: %v", failed, err)
	}

	signedTx, err := tx.Sign(pk)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the transaction: %v", failed, err)
	}

	return signedTx
}

// solveBlock searches nonces sequentially until the block solves the work
// puzzle. At the test difficulty this takes a few thousand attempts.
func solveBlock(prevBlockHash string, txs []ledger.SignedTx) ledger.Block {
	block := ledger.NewBlock(prevBlockHash, txs)
	for block.Nonce = 0; ; block.Nonce++ {
		if ledger.IsHashSolved(block.Hash()) {
			return block
		}
	}
}

// newPair constructs two nodes wired to each other over a fresh network.
func newPair() (*node.Node, *node.Node, *mailbox.Network) {
	net := mailbox.New(map[string][]string{
		"n1": {"n1", "n2"},
		"n2": {"n1", "n2"},
	})

	genesis := ledger.Genesis()
	n1 := node.New(node.Config{ID: "n1", Net: net, Genesis: genesis})
	n2 := node.New(node.Config{ID: "n2", Net: net, Genesis: genesis})

	return n1, n2, net
}

// =============================================================================

func Test_MineAndPropagate(t *testing.T) {
	t.Log("Given the need to mine a block on one node and accept it on another.")
	{
		t.Logf("\tTest 0:\tWhen a signed transaction is posted to the first node.")
		{
			n1, n2, net := newPair()

			tx := signTx(t, 10)
			if err := net.PostTransaction(tx, n1.ID()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to post the transaction: %v", failed, err)
			}

			if err := n1.Mine(context.Background()); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to mine a block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to mine a block.", success)

			if n1.ChainLength() != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould extend the miner's chain: got %d blocks.", failed, n1.ChainLength())
			}
			t.Logf("\t%s\tTest 0:\tShould extend the miner's chain.", success)

			tip := n1.Chain()[1]
			if !node.VerifyBlock(tip) {
				t.Fatalf("\t%s\tTest 0:\tShould produce a block that validates.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce a block that validates.", success)

			if len(tip.Trans) != 1 || tip.Trans[0].SignatureString() != tx.SignatureString() {
				t.Fatalf("\t%s\tTest 0:\tShould carry the posted transaction in the block.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the posted transaction in the block.", success)

			if !n2.AddBlock() {
				t.Fatalf("\t%s\tTest 0:\tShould accept the broadcast block on the second node.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould accept the broadcast block on the second node.", success)

			if n2.TipHash() != n1.TipHash() {
				t.Fatalf("\t%s\tTest 0:\tShould agree on the tip after propagation.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould agree on the tip after propagation.", success)
		}
	}
}

func Test_MineEmptyInbox(t *testing.T) {
	t.Log("Given the need to validate mining with no transactions.")
	{
		n1, _, _ := newPair()

		if err := n1.Mine(context.Background()); err != node.ErrNoTransactions {
			t.Fatalf("\t%s\tTest 0:\tShould get ErrNoTransactions: got %v.", failed, err)
		}
		t.Logf("\t%s\tTest 0:\tShould get ErrNoTransactions.", success)

		if n1.ChainLength() != 1 {
			t.Fatalf("\t%s\tTest 0:\tShould leave the chain untouched: got %d blocks.", failed, n1.ChainLength())
		}
		t.Logf("\t%s\tTest 0:\tShould leave the chain untouched.", success)
	}
}

func Test_MineCancelled(t *testing.T) {
	t.Log("Given the need to validate cancellation during mining.")
	{
		n1, _, net := newPair()

		tx := signTx(t, 10)
		if err := net.PostTransaction(tx, n1.ID()); err != nil {
			t.Fatalf("\t%s\tTest 0:\tShould be able to post the transaction: %v", failed, err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if err := n1.Mine(ctx); err != context.Canceled {
			t.Fatalf("\t%s\tTest 0:\tShould return the context error: got %v.", failed, err)
		}
		t.Logf("\t%s\tTest 0:\tShould return the context error.", success)

		txs := net.GetTransactions(n1.ID())
		if len(txs) != 1 || txs[0].SignatureString() != tx.SignatureString() {
			t.Fatalf("\t%s\tTest 0:\tShould requeue the drained transaction.", failed)
		}
		t.Logf("\t%s\tTest 0:\tShould requeue the drained transaction.", success)
	}
}

func Test_RejectTampered(t *testing.T) {
	t.Log("Given the need to reject tampered data.")
	{
		t.Logf("\tTest 0:\tWhen a transaction is altered after signing.")
		{
			tx := signTx(t, 10)
			tx.Value = 999

			if node.VerifyTransaction(tx) {
				t.Fatalf("\t%s\tTest 0:\tShould fail transaction verification.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould fail transaction verification.", success)

			block := solveBlock(ledger.Genesis().Hash(), []ledger.SignedTx{tx})
			if node.VerifyBlock(block) {
				t.Fatalf("\t%s\tTest 0:\tShould fail block verification even with solved work.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould fail block verification even with solved work.", success)
		}

		t.Logf("\tTest 1:\tWhen a block does not meet the work rule.")
		{
			tx := signTx(t, 10)

			block := ledger.NewBlock(ledger.Genesis().Hash(), []ledger.SignedTx{tx})
			for ledger.IsHashSolved(block.Hash()) {
				block.Nonce++
			}

			if node.VerifyBlock(block) {
				t.Fatalf("\t%s\tTest 1:\tShould fail block verification.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould fail block verification.", success)
		}

		t.Logf("\tTest 2:\tWhen a valid block does not link to the tip.")
		{
			n1, _, net := newPair()

			block := solveBlock(strings.Repeat("a", 64), nil)
			if err := net.PostBlock(block, n1.ID()); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to post the block: %v", failed, err)
			}

			if n1.AddBlock() {
				t.Fatalf("\t%s\tTest 2:\tShould reject a block that breaks the hash link.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a block that breaks the hash link.", success)

			if n1.ChainLength() != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould roll the chain back to genesis only: got %d blocks.", failed, n1.ChainLength())
			}
			t.Logf("\t%s\tTest 2:\tShould roll the chain back to genesis only.", success)
		}
	}
}

func Test_ResolveConflicts(t *testing.T) {
	t.Log("Given the need to resolve divergent chains.")
	{
		t.Logf("\tTest 0:\tWhen a neighbour publishes a strictly longer valid chain.")
		{
			n1, n2, net := newPair()

			extend(t, net, n2, 2)
			if err := n2.Publish(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to publish the chain: %v", failed, err)
			}

			if !n1.ResolveConflicts() {
				t.Fatalf("\t%s\tTest 0:\tShould adopt the longer chain.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould adopt the longer chain.", success)

			if n1.ChainLength() != 3 || n1.TipHash() != n2.TipHash() {
				t.Fatalf("\t%s\tTest 0:\tShould match the neighbour's chain after adoption.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould match the neighbour's chain after adoption.", success)
		}

		t.Logf("\tTest 1:\tWhen a neighbour publishes an equal length chain.")
		{
			n1, n2, net := newPair()

			extend(t, net, n1, 1)
			extend(t, net, n2, 1)
			if err := n2.Publish(); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to publish the chain: %v", failed, err)
			}

			before := n1.TipHash()
			if n1.ResolveConflicts() {
				t.Fatalf("\t%s\tTest 1:\tShould keep the local chain on a tie.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould keep the local chain on a tie.", success)

			if n1.TipHash() != before {
				t.Fatalf("\t%s\tTest 1:\tShould leave the local chain untouched.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould leave the local chain untouched.", success)
		}

		t.Logf("\tTest 2:\tWhen a longer chain does not validate.")
		{
			n1, _, net := newPair()

			// Build a longer chain whose second block skips the work rule.
			chain := ledger.NewChain(ledger.Genesis())
			bad := ledger.NewBlock(chain.Tip().Hash(), nil)
			for ledger.IsHashSolved(bad.Hash()) {
				bad.Nonce++
			}
			chain.Append(bad)
			chain.Append(solveBlock(bad.Hash(), nil))

			if err := net.PostChain(chain, "n2"); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to publish the chain: %v", failed, err)
			}

			if n1.ResolveConflicts() {
				t.Fatalf("\t%s\tTest 2:\tShould discard a longer chain that does not validate.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould discard a longer chain that does not validate.", success)

			if n1.ChainLength() != 1 {
				t.Fatalf("\t%s\tTest 2:\tShould keep the local chain: got %d blocks.", failed, n1.ChainLength())
			}
			t.Logf("\t%s\tTest 2:\tShould keep the local chain.", success)
		}
	}
}

// extend grows the node's chain by the specified number of blocks by
// posting solved empty blocks to its inbox and ingesting them.
func extend(t *testing.T, net *mailbox.Network, n *node.Node, blocks int) {
	t.Helper()

	for i := 0; i < blocks; i++ {
		block := solveBlock(n.TipHash(), nil)
		if err := net.PostBlock(block, n.ID()); err != nil {
			t.Fatalf("\t%s\tShould be able to post a block: %v", failed, err)
		}
		if !n.AddBlock() {
			t.Fatalf("\t%s\tShould be able to ingest a solved block.", failed)
		}
	}
}
