package codec

import (
	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
)

// EncodeHeader appends a Header's canonical encoding, matching
// block.Header.SigningBytes() field-for-field: parent, nonce,
// difficulty, timestamp_ms (widened to u128), merkle_root.
func EncodeHeader(w *Writer, h block.Header) {
	w.WriteHash256(h.Parent)
	w.WriteUint32(h.Nonce)
	w.WriteHash256(h.Difficulty)
	w.WriteUint128(h.TimestampMs)
	w.WriteHash256(h.MerkleRoot)
}

// DecodeHeader reads a Header.
func DecodeHeader(r *Reader) (block.Header, error) {
	var h block.Header
	var err error
	if h.Parent, err = r.ReadHash256(); err != nil {
		return h, err
	}
	if h.Nonce, err = r.ReadUint32(); err != nil {
		return h, err
	}
	if h.Difficulty, err = r.ReadHash256(); err != nil {
		return h, err
	}
	if h.TimestampMs, err = r.ReadUint128(); err != nil {
		return h, err
	}
	if h.MerkleRoot, err = r.ReadHash256(); err != nil {
		return h, err
	}
	return h, nil
}

// EncodeBlock appends a Block's canonical encoding: the header followed
// by a length-prefixed list of signed transactions.
func EncodeBlock(w *Writer, b block.Block) {
	EncodeHeader(w, b.Header)
	w.WriteUint32(uint32(len(b.Content)))
	for _, stx := range b.Content {
		EncodeSignedTransaction(w, stx)
	}
}

// DecodeBlock reads a Block.
func DecodeBlock(r *Reader) (block.Block, error) {
	var b block.Block
	var err error
	if b.Header, err = DecodeHeader(r); err != nil {
		return b, err
	}
	n, err := r.ReadUint32()
	if err != nil {
		return b, err
	}
	if int(n) > r.Remaining() {
		return b, ErrFieldTooLarge
	}
	b.Content = make([]tx.SignedTransaction, n)
	for i := range b.Content {
		if b.Content[i], err = DecodeSignedTransaction(r); err != nil {
			return b, err
		}
	}
	return b, nil
}
