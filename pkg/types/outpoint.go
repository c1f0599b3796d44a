package types

import "fmt"

// Outpoint references a specific output of a funding transaction.
// It is the UTXO key: (funding_tx_hash, output_index).
type Outpoint struct {
	TxHash Hash256 `json:"tx_hash"`
	Index  uint32  `json:"index"`
}

// String returns "txhash:index" in hex.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash.String(), o.Index)
}
