package block

import (
	"encoding/binary"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Header is a block's proof-of-work envelope.
type Header struct {
	Parent      types.Hash256 `json:"parent"`
	Nonce       uint32        `json:"nonce"`
	Difficulty  types.Hash256 `json:"difficulty"`
	TimestampMs uint64        `json:"timestamp_ms"`
	MerkleRoot  types.Hash256 `json:"merkle_root"`
}

// Hash returns the block hash: SHA256(serialize(header)).
func (h Header) Hash() types.Hash256 {
	return crypto.Hash(h.SigningBytes())
}

// SigningBytes returns the canonical little-endian encoding of the header.
// timestamp_ms is wire-widened to 16 bytes (u128) with the high 8 bytes
// always zero; this node never needs more than 64 bits of millisecond
// resolution but the width is part of the external wire contract.
func (h Header) SigningBytes() []byte {
	buf := make([]byte, 0, types.HashSize+4+types.HashSize+16+types.HashSize)
	buf = append(buf, h.Parent[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, h.Nonce)
	buf = append(buf, h.Difficulty[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, h.TimestampMs)
	buf = binary.LittleEndian.AppendUint64(buf, 0) // high 64 bits of u128.
	buf = append(buf, h.MerkleRoot[:]...)
	return buf
}

// SatisfiesDifficulty reports whether the header's own block hash is at
// most its difficulty threshold under big-endian comparison.
func (h Header) SatisfiesDifficulty() bool {
	return h.Hash().LessOrEqual(h.Difficulty)
}
