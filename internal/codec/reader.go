package codec

import (
	"encoding/binary"
	"errors"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// ErrTruncated is returned when the input ends before a field can be
// fully read. Unlike the in-process SigningBytes encoders, a Reader
// decodes bytes that arrived over the wire from a peer and must not
// panic or read out of bounds on malformed input.
var ErrTruncated = errors.New("codec: truncated input")

// ErrFieldTooLarge is returned when a length-prefixed field declares a
// size larger than the remaining input, which can only happen for
// malformed or adversarial input.
var ErrFieldTooLarge = errors.New("codec: field length exceeds remaining input")

// Reader consumes a canonical-encoded byte stream.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps data for sequential decoding.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a single byte and reports whether it was non-zero.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadUint32 reads a little-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUint128 reads a little-endian 128-bit integer written by
// WriteUint128 and returns its low 64 bits.
func (r *Reader) ReadUint128() (uint64, error) {
	low, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	if _, err := r.ReadUint64(); err != nil {
		return 0, err
	}
	return low, nil
}

// ReadHash256 reads a fixed 32-byte hash.
func (r *Reader) ReadHash256() (types.Hash256, error) {
	b, err := r.take(types.HashSize)
	if err != nil {
		return types.Hash256{}, err
	}
	var h types.Hash256
	copy(h[:], b)
	return h, nil
}

// ReadAddress reads a fixed 20-byte address.
func (r *Reader) ReadAddress() (types.Address, error) {
	b, err := r.take(types.AddressSize)
	if err != nil {
		return types.Address{}, err
	}
	var a types.Address
	copy(a[:], b)
	return a, nil
}

// maxFieldLength bounds a single length-prefixed field so a malformed
// peer cannot force an out-of-memory allocation from a tiny frame.
const maxFieldLength = 64 << 20

// ReadBytes reads a uint32 length prefix followed by that many bytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if n > maxFieldLength || int(n) > r.Remaining() {
		return nil, ErrFieldTooLarge
	}
	b, err := r.take(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
