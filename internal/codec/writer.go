// Package codec implements the canonical binary wire encoding used for
// both hash-input serialization and gossip transport: length-prefixed,
// little-endian integer widths, fields written in declared order.
package codec

import (
	"encoding/binary"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Writer accumulates a canonical-encoded byte stream.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the encoded stream so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool appends a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
	} else {
		w.WriteUint8(0)
	}
}

// WriteUint32 appends a little-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends a little-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint128 appends a little-endian 128-bit integer whose value fits
// in a uint64; the high 8 bytes are always zero. Used for timestamp_ms,
// which the wire format spells out as u128 even though no practical
// timestamp needs the high half.
func (w *Writer) WriteUint128(v uint64) {
	w.WriteUint64(v)
	w.WriteUint64(0)
}

// WriteHash256 appends a raw 32-byte hash (fixed width, no length prefix).
func (w *Writer) WriteHash256(h types.Hash256) {
	w.buf = append(w.buf, h[:]...)
}

// WriteAddress appends a raw 20-byte address (fixed width, no length prefix).
func (w *Writer) WriteAddress(a types.Address) {
	w.buf = append(w.buf, a[:]...)
}

// WriteBytes appends a uint32 length prefix followed by data.
func (w *Writer) WriteBytes(data []byte) {
	w.WriteUint32(uint32(len(data)))
	w.buf = append(w.buf, data...)
}
