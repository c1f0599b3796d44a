package block

import (
	"errors"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Validation errors, matched against distinct consensus-failure kinds so
// callers can choose to drop, buffer, or re-check orphans accordingly.
var (
	ErrBadMerkleRoot      = errors.New("merkle root mismatch")
	ErrPuzzleFailed       = errors.New("block hash exceeds difficulty")
	ErrDifficultyMismatch = errors.New("block difficulty differs from parent")
)

// ValidateMerkleRoot recomputes the merkle root over Content and checks it
// against Header.MerkleRoot.
func (b Block) ValidateMerkleRoot() error {
	leaves := make([]types.Hash256, len(b.Content))
	for i, stx := range b.Content {
		leaves[i] = stx.Hash()
	}
	if ComputeMerkleRoot(leaves) != b.Header.MerkleRoot {
		return ErrBadMerkleRoot
	}
	return nil
}

// ValidatePoW checks that the block's hash satisfies its own declared
// difficulty under big-endian comparison.
func (b Block) ValidatePoW() error {
	if !b.Header.SatisfiesDifficulty() {
		return ErrPuzzleFailed
	}
	return nil
}

// ValidateDifficultyInheritance checks that Header.Difficulty equals the
// parent block's difficulty. Difficulty is inherited, never recomputed.
func (b Block) ValidateDifficultyInheritance(parentDifficulty types.Hash256) error {
	if b.Header.Difficulty != parentDifficulty {
		return ErrDifficultyMismatch
	}
	return nil
}

// Validate runs every structural and consensus check a newly received
// block must pass before it may be committed: merkle root, proof of work,
// and difficulty inheritance from parentDifficulty.
func (b Block) Validate(parentDifficulty types.Hash256) error {
	if err := b.ValidateMerkleRoot(); err != nil {
		return err
	}
	if err := b.ValidatePoW(); err != nil {
		return err
	}
	return b.ValidateDifficultyInheritance(parentDifficulty)
}
