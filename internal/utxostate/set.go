// Package utxostate implements the UTXO set, the per-block state chain of
// snapshots, and the pure state-transition function that applies a batch of
// signed transactions to a working set.
package utxostate

import "github.com/Klingon-tech/klingnet-pow-core/pkg/types"

// Entry is an unspent transaction output: its value and owning address.
type Entry struct {
	Value uint64
	Owner types.Address
}

// Set maps a UTXO key (funding_tx_hash, output_index) to its entry.
type Set map[types.Outpoint]Entry

// Clone returns a shallow copy of the set, safe for a caller to mutate
// in-place without affecting the original (Entry is a value type).
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Get looks up the entry funding outpoint, if still unspent.
func (s Set) Get(outpoint types.Outpoint) (Entry, bool) {
	e, ok := s[outpoint]
	return e, ok
}
