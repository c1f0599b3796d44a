package codec

import (
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// EncodeInput appends an Input's canonical encoding.
func EncodeInput(w *Writer, in tx.Input) {
	w.WriteHash256(in.PrevTxHash)
	w.WriteUint32(in.PrevOutputIndex)
	w.WriteBool(in.CoinbaseFlag)
}

// DecodeInput reads an Input.
func DecodeInput(r *Reader) (tx.Input, error) {
	var in tx.Input
	var err error
	if in.PrevTxHash, err = r.ReadHash256(); err != nil {
		return in, err
	}
	if in.PrevOutputIndex, err = r.ReadUint32(); err != nil {
		return in, err
	}
	if in.CoinbaseFlag, err = r.ReadBool(); err != nil {
		return in, err
	}
	return in, nil
}

// EncodeOutput appends an Output's canonical encoding.
func EncodeOutput(w *Writer, out tx.Output) {
	w.WriteAddress(out.Address)
	w.WriteUint64(out.Value)
}

// DecodeOutput reads an Output.
func DecodeOutput(r *Reader) (tx.Output, error) {
	var out tx.Output
	var err error
	if out.Address, err = r.ReadAddress(); err != nil {
		return out, err
	}
	if out.Value, err = r.ReadUint64(); err != nil {
		return out, err
	}
	return out, nil
}

// EncodeTransaction appends a Transaction's canonical encoding: this is
// exactly Transaction.SigningBytes(), reimplemented here with the shared
// Writer so gossip and hashing draw on the one format spec.md §6 names.
func EncodeTransaction(w *Writer, t tx.Transaction) {
	EncodeInput(w, t.Input)
	w.WriteUint32(uint32(len(t.Outputs)))
	for _, out := range t.Outputs {
		EncodeOutput(w, out)
	}
}

// DecodeTransaction reads a Transaction.
func DecodeTransaction(r *Reader) (tx.Transaction, error) {
	var t tx.Transaction
	var err error
	if t.Input, err = DecodeInput(r); err != nil {
		return t, err
	}
	n, err := r.ReadUint32()
	if err != nil {
		return t, err
	}
	if int(n) > r.Remaining() {
		return t, ErrFieldTooLarge
	}
	t.Outputs = make([]tx.Output, n)
	for i := range t.Outputs {
		if t.Outputs[i], err = DecodeOutput(r); err != nil {
			return t, err
		}
	}
	return t, nil
}

// EncodeSignedTransaction appends a SignedTransaction's wire encoding:
// the transaction, followed by length-prefixed signature and pubkey.
// Unlike SigningBytes/Hash, this full wire form carries the signature
// and pubkey since peers need them to re-verify on receipt.
func EncodeSignedTransaction(w *Writer, stx tx.SignedTransaction) {
	EncodeTransaction(w, stx.Tx)
	w.WriteBytes(stx.Signature)
	w.WriteBytes(stx.PubKey)
}

// DecodeSignedTransaction reads a SignedTransaction.
func DecodeSignedTransaction(r *Reader) (tx.SignedTransaction, error) {
	var stx tx.SignedTransaction
	var err error
	if stx.Tx, err = DecodeTransaction(r); err != nil {
		return stx, err
	}
	if stx.Signature, err = r.ReadBytes(); err != nil {
		return stx, err
	}
	if stx.PubKey, err = r.ReadBytes(); err != nil {
		return stx, err
	}
	return stx, nil
}

// EncodeHashList appends a uint32 count followed by each hash.
func EncodeHashList(w *Writer, hashes []types.Hash256) {
	w.WriteUint32(uint32(len(hashes)))
	for _, h := range hashes {
		w.WriteHash256(h)
	}
}

// DecodeHashList reads a hash list written by EncodeHashList.
func DecodeHashList(r *Reader) ([]types.Hash256, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if int(n) > r.Remaining()/types.HashSize {
		return nil, ErrFieldTooLarge
	}
	hashes := make([]types.Hash256, n)
	for i := range hashes {
		if hashes[i], err = r.ReadHash256(); err != nil {
			return nil, err
		}
	}
	return hashes, nil
}
