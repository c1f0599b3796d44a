package tx

import (
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Builder constructs a transaction incrementally.
type Builder struct {
	tx Transaction
}

// NewBuilder creates a transaction builder with no input or outputs set.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetInput sets the single spent outpoint.
func (b *Builder) SetInput(prevOut types.Outpoint) *Builder {
	b.tx.Input = Input{PrevTxHash: prevOut.TxHash, PrevOutputIndex: prevOut.Index}
	return b
}

// SetCoinbaseInput marks the transaction as a coinbase allocation spending
// no prior UTXO.
func (b *Builder) SetCoinbaseInput() *Builder {
	b.tx.Input = Input{CoinbaseFlag: true}
	return b
}

// AddOutput appends an output paying value to addr.
func (b *Builder) AddOutput(addr types.Address, value uint64) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Address: addr, Value: value})
	return b
}

// Build returns the constructed unsigned transaction. Call Validate()
// separately.
func (b *Builder) Build() Transaction {
	return b.tx
}

// Sign builds and signs the transaction with the given key in one step.
func (b *Builder) Sign(key *crypto.PrivateKey) (SignedTransaction, error) {
	return Sign(b.tx, key)
}
