package chain

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-pow-core/config"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// BuildGenesisBlock constructs the deterministic genesis block every honest
// node must build byte-identically (§3 Genesis). Its content is a single
// unsigned, coinbase-flagged transaction recording the ICO allocation to
// the three preconfigured addresses — present for the block's own hash
// determinism, not the source of the UtxoSet's genesis entries (those are
// built directly by utxostate.GenesisSet, keyed by (zero, i)).
func BuildGenesisBlock() (block.Block, error) {
	addrs, err := config.PreconfiguredAddresses()
	if err != nil {
		return block.Block{}, fmt.Errorf("preconfigured addresses: %w", err)
	}

	allocation := tx.Transaction{
		Input: tx.Input{CoinbaseFlag: true},
	}
	for _, addr := range addrs {
		allocation.Outputs = append(allocation.Outputs, tx.Output{
			Address: addr,
			Value:   config.GenesisAllocation,
		})
	}

	content := []tx.SignedTransaction{{Tx: allocation}}

	leaves := make([]types.Hash256, len(content))
	for i, stx := range content {
		leaves[i] = stx.Hash()
	}

	header := block.Header{
		Parent:      types.Hash256{},
		Nonce:       0,
		Difficulty:  config.GenesisDifficulty,
		TimestampMs: 0,
		MerkleRoot:  block.ComputeMerkleRoot(leaves),
	}

	return block.NewBlock(header, content), nil
}
