// Package mempool holds unconfirmed signed transactions known to this
// node, accepted monotonically and drained by the miner (§3, §4.4).
package mempool

import (
	"sync"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Mempool is a map from tx hash to SignedTransaction. It only ever grows
// via Insert and shrinks via Retrieve — there is no eviction policy in
// the core (fee-based prioritization is an explicit Non-goal, §1).
type Mempool struct {
	mu      sync.Mutex
	entries map[types.Hash256]tx.SignedTransaction
	order   []types.Hash256 // insertion order, for Retrieve's FIFO drain
}

// New creates an empty mempool.
func New() *Mempool {
	return &Mempool{entries: make(map[types.Hash256]tx.SignedTransaction)}
}

// Insert adds stx if its hash is not already known. Reports whether it was
// newly added (false means it was already present — a no-op).
func (m *Mempool) Insert(stx tx.SignedTransaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := stx.Hash()
	if _, exists := m.entries[hash]; exists {
		return false
	}
	m.entries[hash] = stx
	m.order = append(m.order, hash)
	return true
}

// Contains reports whether hash is currently in the mempool.
func (m *Mempool) Contains(hash types.Hash256) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[hash]
	return ok
}

// Get returns the signed transaction for hash, if present.
func (m *Mempool) Get(hash types.Hash256) (tx.SignedTransaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stx, ok := m.entries[hash]
	return stx, ok
}

// Retrieve removes up to n entries in insertion order and returns them.
// Used by the miner to assemble a candidate block (§4.4 step 3).
func (m *Mempool) Retrieve(n int) []tx.SignedTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n > len(m.order) {
		n = len(m.order)
	}
	if n == 0 {
		return nil
	}

	drained := make([]tx.SignedTransaction, n)
	for i := 0; i < n; i++ {
		hash := m.order[i]
		drained[i] = m.entries[hash]
		delete(m.entries, hash)
	}
	m.order = m.order[n:]
	return drained
}

// Len returns the number of pending transactions.
func (m *Mempool) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// FilterUnknown returns the subset of hashes NOT currently in the mempool,
// preserving order. Used to answer NewTransactionHashes advertisements.
func (m *Mempool) FilterUnknown(hashes []types.Hash256) []types.Hash256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var missing []types.Hash256
	for _, h := range hashes {
		if _, ok := m.entries[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}
