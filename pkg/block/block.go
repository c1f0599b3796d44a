// Package block defines block types, the merkle tree, and block validation.
package block

import (
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Block is a header plus its ordered content. The merkle root of Content
// must equal Header.MerkleRoot.
type Block struct {
	Header  Header                   `json:"header"`
	Content []tx.SignedTransaction `json:"content"`
}

// NewBlock creates a block with the given header and content.
func NewBlock(header Header, content []tx.SignedTransaction) Block {
	return Block{Header: header, Content: content}
}

// Hash returns the header hash.
func (b Block) Hash() types.Hash256 {
	return b.Header.Hash()
}
