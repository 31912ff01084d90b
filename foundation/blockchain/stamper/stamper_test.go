package stamper_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/stamper"
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

func Test_GenerateAndVerify(t *testing.T) {
	t.Log("Given the need to validate the timestamp server.")
	{
		t.Logf("\tTest 0:\tWhen generating a signed block.")
		{
			srv, err := stamper.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the server: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to construct the server.", success)

			sb, err := srv.GenerateBlock([]ledger.SignedTx{signTx(t, 10)})
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to generate a block: %v", failed, err)
			}

			if sb.PrevBlockHash != ledger.Genesis().Hash() {
				t.Fatalf("\t%s\tTest 0:\tShould link the block to genesis.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould link the block to genesis.", success)

			if err := srv.Verify(sb); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould verify the server's signature: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the server's signature.", success)

			if chain := srv.Chain(); len(chain) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould append the block to the private chain: got %d.", failed, len(chain))
			}
			t.Logf("\t%s\tTest 0:\tShould append the block to the private chain.", success)
		}

		t.Logf("\tTest 1:\tWhen a signed block is tampered with.")
		{
			srv, err := stamper.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the server: %v", failed, err)
			}

			sb, err := srv.GenerateBlock([]ledger.SignedTx{signTx(t, 10)})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to generate a block: %v", failed, err)
			}

			sb.Nonce++
			if err := srv.Verify(sb); err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould reject a tampered block.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a tampered block.", success)
		}

		t.Logf("\tTest 2:\tWhen a block is signed by a different authority.")
		{
			srv1, err := stamper.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct the first server: %v", failed, err)
			}
			srv2, err := stamper.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct the second server: %v", failed, err)
			}

			sb, err := srv1.GenerateBlock(nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to generate a block: %v", failed, err)
			}

			if err := srv2.Verify(sb); err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould reject a foreign signature.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould reject a foreign signature.", success)
		}

		t.Logf("\tTest 3:\tWhen a block carries no signature.")
		{
			srv, err := stamper.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to construct the server: %v", failed, err)
			}

			genesis := srv.Chain()[0]
			if err := srv.Verify(genesis); err == nil {
				t.Fatalf("\t%s\tTest 3:\tShould reject an unsigned block.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould reject an unsigned block.", success)
		}
	}
}
