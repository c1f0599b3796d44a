package block

import (
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// MerkleTree holds every level of a zero-padded binary hash tree built
// over an ordered list of leaves.
type MerkleTree struct {
	levels [][]types.Hash256 // levels[0] is the leaves, last level has len 1.
}

// NewMerkleTree builds a tree over leaves. An empty input yields a tree
// whose root is the zero hash.
func NewMerkleTree(leaves []types.Hash256) *MerkleTree {
	if len(leaves) == 0 {
		return &MerkleTree{levels: [][]types.Hash256{{types.Hash256{}}}}
	}

	level := make([]types.Hash256, len(leaves))
	copy(level, leaves)
	levels := [][]types.Hash256{level}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, types.Hash256{})
		}
		next := make([]types.Hash256, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = crypto.HashConcat(level[i], level[i+1])
		}
		levels = append(levels, next)
		level = next
	}

	return &MerkleTree{levels: levels}
}

// Root returns the tree's root hash.
func (t *MerkleTree) Root() types.Hash256 {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns, for each level from the bottom up, the sibling hash of
// the running index at that level. Levels padded during construction
// contribute the zero hash as their sibling, exactly as they did when
// the root was computed.
func (t *MerkleTree) Proof(index int) []types.Hash256 {
	proof := make([]types.Hash256, 0, len(t.levels)-1)
	i := index
	for level := 0; level < len(t.levels)-1; level++ {
		nodes := t.levels[level]
		var sibling types.Hash256
		if i%2 == 0 {
			if i+1 < len(nodes) {
				sibling = nodes[i+1]
			}
		} else {
			sibling = nodes[i-1]
		}
		proof = append(proof, sibling)
		i /= 2
	}
	return proof
}

// VerifyMerkleProof folds leaf back up through proof, pairing each step
// according to the parity of the running index, and reports whether the
// result equals root. A verifier that ignores index parity (always
// pairing the sibling on one fixed side) passes only the two-leaf case
// and is incorrect for deeper trees — this implementation honors parity
// throughout.
func VerifyMerkleProof(root, leaf types.Hash256, proof []types.Hash256, index int, nLeaves int) bool {
	if index < 0 || index >= nLeaves {
		return false
	}
	current := leaf
	i := index
	for _, sibling := range proof {
		if i%2 == 0 {
			current = crypto.HashConcat(current, sibling)
		} else {
			current = crypto.HashConcat(sibling, current)
		}
		i /= 2
	}
	return current == root
}

// ComputeMerkleRoot builds a tree over txHashes and returns its root.
func ComputeMerkleRoot(txHashes []types.Hash256) types.Hash256 {
	return NewMerkleTree(txHashes).Root()
}
