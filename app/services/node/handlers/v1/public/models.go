package public

import (
	"math/big"

	"github.com/racechain/racechain/business/sys/validate"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
)

type genesis struct {
	Block      ledger.Block `json:"block"`
	Hash       string       `json:"hash"`
	Difficulty int          `json:"difficulty"`
}

type nodeInfo struct {
	ID      string `json:"id"`
	Height  int    `json:"height"`
	TipHash string `json:"tip_hash"`
}

type block struct {
	Hash          string            `json:"hash"`
	TimeStamp     uint64            `json:"timestamp"`
	PrevBlockHash string            `json:"prev_block_hash"`
	Nonce         uint64            `json:"nonce"`
	Transactions  []ledger.SignedTx `json:"txs"`
}

type submitTx struct {
	From  string   `json:"from" validate:"required"`
	To    string   `json:"to" validate:"required"`
	Value uint64   `json:"value" validate:"required,gt=0"`
	V     *big.Int `json:"v" validate:"required"`
	R     *big.Int `json:"r" validate:"required"`
	S     *big.Int `json:"s" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (tx submitTx) Validate() error {
	return validate.Check(tx)
}

// toSignedTx converts the request model into the ledger representation.
func (tx submitTx) toSignedTx() ledger.SignedTx {
	return ledger.SignedTx{
		Tx: ledger.Tx{
			FromID: ledger.AccountID(tx.From),
			ToID:   ledger.AccountID(tx.To),
			Value:  tx.Value,
		},
		V: tx.V,
		R: tx.R,
		S: tx.S,
	}
}
