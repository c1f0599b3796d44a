package utxostate

import (
	"errors"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Transition errors. Every one of them means "abort this one transaction",
// never "abort the batch" — §4.2 requires sequential processing where a
// later abort has no effect on earlier acceptances.
var (
	ErrBadSignature  = errors.New("utxostate: signature verification failed")
	ErrUnknownUTXO   = errors.New("utxostate: input funding outpoint not found (double-spend or unknown)")
	ErrOwnerMismatch = errors.New("utxostate: signer address does not own the spent utxo")
)

// Abort pairs a rejected signed transaction with the reason it was rejected.
type Abort struct {
	Tx  tx.SignedTransaction
	Err error
}

// Update applies signedTxs to stateIn in order, mutating a working copy
// in-place so that later transactions may spend outputs created by earlier
// ones in the same batch (§4.2). It never mutates stateIn itself.
//
// For each transaction:
//  1. verify the Ed25519 signature over the canonical unsigned transaction
//  2. require the input's funding outpoint to exist in the working set
//  3. require the signer's derived address to own that utxo
//  4. remove the consumed utxo and insert one new utxo per output, keyed
//     by (hash(tx), i)
//
// Value conservation (sum(inputs) == sum(outputs)) is deliberately NOT
// checked — see DESIGN.md Open Question 3.
func Update(stateIn Set, signedTxs []tx.SignedTransaction) (stateOut Set, accepted []tx.SignedTransaction, aborted []Abort) {
	working := stateIn.Clone()

	for _, stx := range signedTxs {
		if err := stx.VerifySignature(); err != nil {
			aborted = append(aborted, Abort{Tx: stx, Err: ErrBadSignature})
			continue
		}

		outpoint := stx.Tx.Input.Outpoint()
		entry, ok := working[outpoint]
		if !ok {
			aborted = append(aborted, Abort{Tx: stx, Err: ErrUnknownUTXO})
			continue
		}

		if !stx.Tx.Input.CoinbaseFlag {
			signer := crypto.AddressFromPubKey(stx.PubKey)
			if signer != entry.Owner {
				aborted = append(aborted, Abort{Tx: stx, Err: ErrOwnerMismatch})
				continue
			}
		}

		delete(working, outpoint)

		txHash := stx.Hash()
		for i, out := range stx.Tx.Outputs {
			working[types.Outpoint{TxHash: txHash, Index: uint32(i)}] = Entry{
				Value: out.Value,
				Owner: out.Address,
			}
		}

		accepted = append(accepted, stx)
	}

	return working, accepted, aborted
}
