package ledger

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/racechain/racechain/foundation/blockchain/signature"
)

// Tx is the transactional information between two parties. This is the
// payload that gets signed; the signature fields are excluded.
type Tx struct {
	FromID AccountID `json:"from"`  // Account sending the value.
	ToID   AccountID `json:"to"`    // Account receiving the value.
	Value  uint64    `json:"value"` // Monetary value transferred.
}

// NewTx constructs a new transaction.
func NewTx(fromID AccountID, toID AccountID, value uint64) (Tx, error) {
	if !fromID.IsAccountID() {
		return Tx{}, fmt.Errorf("from account is not properly formatted")
	}

	if !toID.IsAccountID() {
		return Tx{}, fmt.Errorf("to account is not properly formatted")
	}

	tx := Tx{
		FromID: fromID,
		ToID:   toID,
		Value:  value,
	}

	return tx, nil
}

// Sign uses the specified private key to sign the transaction.
func (tx Tx) Sign(privateKey *ecdsa.PrivateKey) (SignedTx, error) {

	// Sign the transaction with the private key to produce a signature.
	v, r, s, err := signature.Sign(tx, privateKey)
	if err != nil {
		return SignedTx{}, err
	}

	// Construct the signed transaction by adding the signature
	// in the [R|S|V] format.
	signedTx := SignedTx{
		Tx: tx,
		V:  v,
		R:  r,
		S:  s,
	}

	return signedTx, nil
}

// =============================================================================

// SignedTx is a signed version of the transaction. This is how wallets
// provide transactions for inclusion into the ledger.
type SignedTx struct {
	Tx
	V *big.Int `json:"v"` // Recovery identifier, either 31 or 32 with raceID.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the transaction carries a signature, that the signature
// conforms to our standards, and that it was produced by the account claimed
// in the from field over the unsigned payload.
func (tx SignedTx) Validate() error {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return errors.New("transaction is not signed")
	}

	if !tx.FromID.IsAccountID() {
		return errors.New("invalid account for from account")
	}

	if !tx.ToID.IsAccountID() {
		return errors.New("invalid account for to account")
	}

	if err := signature.VerifySignature(tx.V, tx.R, tx.S); err != nil {
		return err
	}

	// Recover the account that signed the payload. If the payload was
	// tampered with after signing, a different account comes back.
	address, err := signature.FromAddress(tx.Tx, tx.V, tx.R, tx.S)
	if err != nil {
		return err
	}

	if address != string(tx.FromID) {
		return errors.New("signature does not match from account")
	}

	return nil
}

// SignatureString returns the signature as a string.
func (tx SignedTx) SignatureString() string {
	if tx.V == nil || tx.R == nil || tx.S == nil {
		return ""
	}

	return signature.SignatureString(tx.V, tx.R, tx.S)
}

// String implements the fmt.Stringer interface for logging.
func (tx SignedTx) String() string {
	return fmt.Sprintf("%s->%s:%d", tx.FromID, tx.ToID, tx.Value)
}

// =============================================================================

// MarshalTx serializes a signed transaction to its canonical wire form.
func MarshalTx(tx SignedTx) ([]byte, error) {
	return json.Marshal(tx)
}

// UnmarshalTx reconstructs a signed transaction from its wire form.
func UnmarshalTx(data []byte) (SignedTx, error) {
	var tx SignedTx
	if err := json.Unmarshal(data, &tx); err != nil {
		return SignedTx{}, err
	}

	return tx, nil
}
