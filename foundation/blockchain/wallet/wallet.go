// Package wallet provides account key management and the signing of
// transactions for submission to the network.
package wallet

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/mailbox"
)

// Wallet holds a private key and posts signed transactions to the
// transaction inboxes of a set of nodes.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	accountID  ledger.AccountID
	net        *mailbox.Network
	nodes      []string
}

// New constructs a wallet with a freshly generated key.
func New(net *mailbox.Network, nodes []string) (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}

	return NewFromKey(privateKey, net, nodes), nil
}

// NewFromKey constructs a wallet around an existing private key.
func NewFromKey(privateKey *ecdsa.PrivateKey, net *mailbox.Network, nodes []string) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		accountID:  ledger.PublicKeyToAccountID(privateKey.PublicKey),
		net:        net,
		nodes:      nodes,
	}
}

// AccountID returns the account this wallet signs for.
func (w *Wallet) AccountID() ledger.AccountID {
	return w.accountID
}

// SignTransaction signs the specified transaction with the wallet's key.
func (w *Wallet) SignTransaction(tx ledger.Tx) (ledger.SignedTx, error) {
	return tx.Sign(w.privateKey)
}

// Send constructs, signs, and broadcasts a transfer of value to the
// specified account. There is no acknowledgement; whichever node drains
// its inbox first mines the transaction.
func (w *Wallet) Send(to ledger.AccountID, value uint64) error {
	tx, err := ledger.NewTx(w.accountID, to, value)
	if err != nil {
		return err
	}

	signedTx, err := w.SignTransaction(tx)
	if err != nil {
		return err
	}

	return w.Broadcast(signedTx)
}

// Broadcast posts a signed transaction to the inbox of every node this
// wallet knows about.
func (w *Wallet) Broadcast(signedTx ledger.SignedTx) error {
	for _, nodeID := range w.nodes {
		if err := w.net.PostTransaction(signedTx, nodeID); err != nil {
			return err
		}
	}

	return nil
}
