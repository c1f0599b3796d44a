package tx

import (
	"errors"
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-pow-core/config"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
)

// Validation errors.
var (
	ErrNoOutputs      = errors.New("transaction has no outputs")
	ErrOutputOverflow = errors.New("output values overflow")
	ErrZeroOutput     = errors.New("output value is zero")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrMissingPubKey  = errors.New("signed transaction missing public key")
	ErrMissingSig     = errors.New("signed transaction missing signature")
	ErrInvalidSig     = errors.New("invalid signature")
)

// Validate checks transaction structure and basic rules. This does NOT
// check UTXO existence or ownership; that requires the UTXO set and is
// performed by the state transition.
func (tx *Transaction) Validate() error {
	if len(tx.Outputs) == 0 {
		return ErrNoOutputs
	}
	if len(tx.Outputs) > config.MaxTxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(tx.Outputs), config.MaxTxOutputs)
	}

	var totalOutput uint64
	for i, out := range tx.Outputs {
		if out.Value == 0 {
			return fmt.Errorf("output %d: %w", i, ErrZeroOutput)
		}
		if totalOutput > math.MaxUint64-out.Value {
			return fmt.Errorf("output %d: %w", i, ErrOutputOverflow)
		}
		totalOutput += out.Value
	}

	return nil
}

// Validate checks the wrapped transaction and, unless it is coinbase-flagged
// (genesis allocations carry no signer), that it carries a public key and a
// signature.
func (stx *SignedTransaction) Validate() error {
	if err := stx.Tx.Validate(); err != nil {
		return err
	}
	if stx.Tx.Input.CoinbaseFlag {
		return nil
	}
	if len(stx.PubKey) == 0 {
		return ErrMissingPubKey
	}
	if len(stx.Signature) == 0 {
		return ErrMissingSig
	}
	return nil
}

// VerifySignature checks that the Ed25519 signature over the canonical
// unsigned transaction bytes is valid for the carried public key.
// Coinbase-flagged transactions have no signer and always pass.
func (stx *SignedTransaction) VerifySignature() error {
	if stx.Tx.Input.CoinbaseFlag {
		return nil
	}
	if !crypto.VerifySignature(stx.Tx.SigningBytes(), stx.Signature, stx.PubKey) {
		return ErrInvalidSig
	}
	return nil
}

// Sign produces a SignedTransaction by signing tx's canonical bytes with signer.
func Sign(transaction Transaction, signer crypto.Signer) (SignedTransaction, error) {
	sig, err := signer.Sign(transaction.SigningBytes())
	if err != nil {
		return SignedTransaction{}, fmt.Errorf("sign transaction: %w", err)
	}
	return SignedTransaction{
		Tx:        transaction,
		Signature: sig,
		PubKey:    signer.PublicKey(),
	}, nil
}
