// Package types defines the core wire primitives for the klingnet-pow-core node.
package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashSize is the length of a Hash256 digest in bytes.
const HashSize = 32

// Hash256 is a 32-byte SHA-256 digest. It is ordered lexicographically
// big-endian when compared against a difficulty threshold.
type Hash256 [HashSize]byte

// IsZero reports whether the hash is the all-zero genesis sentinel.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// Less reports whether h, treated as a big-endian 256-bit integer, is
// strictly less than other. Used for puzzle-threshold comparisons.
func (h Hash256) Less(other Hash256) bool {
	return bytes.Compare(h[:], other[:]) < 0
}

// LessOrEqual reports whether h <= other under the same big-endian ordering.
func (h Hash256) LessOrEqual(other Hash256) bool {
	return bytes.Compare(h[:], other[:]) <= 0
}

// String returns the hex-encoded hash.
func (h Hash256) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash256) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as a hex string.
func (h Hash256) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a hex string into a hash.
func (h *Hash256) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash256{}
		return nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hash hex: %w", err)
	}
	if len(decoded) != HashSize {
		return fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(decoded))
	}
	copy(h[:], decoded)
	return nil
}

// HexToHash256 converts a hex string to a Hash256.
// Returns an error if the string is not exactly 64 hex characters.
func HexToHash256(s string) (Hash256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash256{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return Hash256{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash256
	copy(h[:], b)
	return h, nil
}

// MaxDifficulty is the loosest possible difficulty threshold (all 0xFF),
// i.e. any hash satisfies it. Useful for tests and bootstrapping.
var MaxDifficulty = Hash256{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}
