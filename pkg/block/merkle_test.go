package block

import (
	"testing"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

func TestComputeMerkleRoot_Empty(t *testing.T) {
	root := ComputeMerkleRoot(nil)
	if !root.IsZero() {
		t.Errorf("empty input should return zero hash, got %s", root)
	}
}

func TestComputeMerkleRoot_SingleHash(t *testing.T) {
	h := crypto.Hash([]byte("single tx"))
	root := ComputeMerkleRoot([]types.Hash256{h})
	if root != h {
		t.Errorf("single hash should return itself: got %s, want %s", root, h)
	}
}

func TestComputeMerkleRoot_TwoHashes(t *testing.T) {
	h1 := crypto.Hash([]byte("tx1"))
	h2 := crypto.Hash([]byte("tx2"))

	root := ComputeMerkleRoot([]types.Hash256{h1, h2})
	want := crypto.HashConcat(h1, h2)

	if root != want {
		t.Errorf("two hashes: got %s, want %s", root, want)
	}
}

func TestComputeMerkleRoot_ThreeHashes_ZeroPadded(t *testing.T) {
	h1 := crypto.Hash([]byte("tx1"))
	h2 := crypto.Hash([]byte("tx2"))
	h3 := crypto.Hash([]byte("tx3"))

	root := ComputeMerkleRoot([]types.Hash256{h1, h2, h3})

	// Odd count is padded with the zero hash, not a duplicate of h3.
	left := crypto.HashConcat(h1, h2)
	right := crypto.HashConcat(h3, types.Hash256{})
	want := crypto.HashConcat(left, right)

	if root != want {
		t.Errorf("three hashes: got %s, want %s", root, want)
	}
}

func TestComputeMerkleRoot_FourHashes(t *testing.T) {
	h1 := crypto.Hash([]byte("tx1"))
	h2 := crypto.Hash([]byte("tx2"))
	h3 := crypto.Hash([]byte("tx3"))
	h4 := crypto.Hash([]byte("tx4"))

	root := ComputeMerkleRoot([]types.Hash256{h1, h2, h3, h4})

	left := crypto.HashConcat(h1, h2)
	right := crypto.HashConcat(h3, h4)
	want := crypto.HashConcat(left, right)

	if root != want {
		t.Errorf("four hashes: got %s, want %s", root, want)
	}
}

func TestComputeMerkleRoot_Deterministic(t *testing.T) {
	hashes := make([]types.Hash256, 5)
	for i := range hashes {
		hashes[i] = crypto.Hash([]byte{byte(i)})
	}

	r1 := ComputeMerkleRoot(hashes)
	r2 := ComputeMerkleRoot(hashes)
	if r1 != r2 {
		t.Error("merkle root is not deterministic")
	}
}

func TestComputeMerkleRoot_OrderMatters(t *testing.T) {
	h1 := crypto.Hash([]byte("tx1"))
	h2 := crypto.Hash([]byte("tx2"))

	r1 := ComputeMerkleRoot([]types.Hash256{h1, h2})
	r2 := ComputeMerkleRoot([]types.Hash256{h2, h1})

	if r1 == r2 {
		t.Error("different ordering should produce different merkle root")
	}
}

func TestComputeMerkleRoot_DoesNotMutateInput(t *testing.T) {
	h1 := crypto.Hash([]byte("tx1"))
	h2 := crypto.Hash([]byte("tx2"))
	h3 := crypto.Hash([]byte("tx3"))

	original := []types.Hash256{h1, h2, h3}
	input := make([]types.Hash256, len(original))
	copy(input, original)

	ComputeMerkleRoot(input)

	for i := range input {
		if input[i] != original[i] {
			t.Errorf("input[%d] was mutated: got %s, want %s", i, input[i], original[i])
		}
	}
}

func TestMerkleProof_RoundTrip_EvenLeaves(t *testing.T) {
	hashes := make([]types.Hash256, 8)
	for i := range hashes {
		hashes[i] = crypto.Hash([]byte{byte(i)})
	}

	tree := NewMerkleTree(hashes)
	root := tree.Root()

	for i, leaf := range hashes {
		proof := tree.Proof(i)
		if !VerifyMerkleProof(root, leaf, proof, i, len(hashes)) {
			t.Errorf("proof for leaf %d failed to verify", i)
		}
	}
}

func TestMerkleProof_RoundTrip_OddLeaves(t *testing.T) {
	hashes := make([]types.Hash256, 7)
	for i := range hashes {
		hashes[i] = crypto.Hash([]byte{byte(i), 0xaa})
	}

	tree := NewMerkleTree(hashes)
	root := tree.Root()

	for i, leaf := range hashes {
		proof := tree.Proof(i)
		if !VerifyMerkleProof(root, leaf, proof, i, len(hashes)) {
			t.Errorf("proof for leaf %d failed to verify", i)
		}
	}
}

func TestMerkleProof_WrongLeafFails(t *testing.T) {
	hashes := make([]types.Hash256, 5)
	for i := range hashes {
		hashes[i] = crypto.Hash([]byte{byte(i)})
	}

	tree := NewMerkleTree(hashes)
	root := tree.Root()
	proof := tree.Proof(2)

	wrongLeaf := crypto.Hash([]byte("not a leaf"))
	if VerifyMerkleProof(root, wrongLeaf, proof, 2, len(hashes)) {
		t.Error("proof should not verify against the wrong leaf")
	}
}

func TestMerkleProof_WrongIndexFails(t *testing.T) {
	hashes := make([]types.Hash256, 5)
	for i := range hashes {
		hashes[i] = crypto.Hash([]byte{byte(i)})
	}

	tree := NewMerkleTree(hashes)
	root := tree.Root()
	proof := tree.Proof(1)

	// Using leaf 1's proof with leaf 1's hash but at the wrong index
	// must fail once the tree has more than two leaves: this is the
	// parity-sensitivity the verifier is required to honor.
	if VerifyMerkleProof(root, hashes[1], proof, 3, len(hashes)) {
		t.Error("proof should not verify at the wrong index")
	}
}

func TestMerkleProof_OutOfRangeIndex(t *testing.T) {
	hashes := []types.Hash256{crypto.Hash([]byte("a")), crypto.Hash([]byte("b"))}
	tree := NewMerkleTree(hashes)
	root := tree.Root()

	if VerifyMerkleProof(root, hashes[0], tree.Proof(0), -1, len(hashes)) {
		t.Error("negative index should fail")
	}
	if VerifyMerkleProof(root, hashes[0], tree.Proof(0), len(hashes), len(hashes)) {
		t.Error("out-of-range index should fail")
	}
}
