// Package crypto provides the hashing, signing, and address-derivation
// primitives used throughout klingnet-pow-core.
package crypto

import (
	"crypto/sha256"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Hash computes a SHA-256 digest of the input data.
func Hash(data []byte) types.Hash256 {
	return sha256.Sum256(data)
}

// AddressFromPubKey derives an Addr160 from an Ed25519 public key by
// taking the last 20 bytes of SHA-256(pubkey).
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[types.HashSize-types.AddressSize:])
	return addr
}

// HashConcat hashes the concatenation of two hashes. Used to build
// parent nodes of the merkle tree.
func HashConcat(a, b types.Hash256) types.Hash256 {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Hash(buf[:])
}
