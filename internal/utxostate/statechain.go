package utxostate

import (
	"sync"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// StateChain maps a block hash to the UtxoSet snapshot produced by applying
// that block's transactions. Every key in the Blockchain must have a
// corresponding key here (§3 invariant); nothing ever removes an entry —
// §9 flags this as unbounded growth, acceptable for the didactic core.
type StateChain struct {
	mu        sync.Mutex
	snapshots map[types.Hash256]Set
}

// New creates an empty state chain.
func New() *StateChain {
	return &StateChain{snapshots: make(map[types.Hash256]Set)}
}

// Lock acquires the state chain's mutex. Callers that must hold the
// Blockchain lock and the StateChain lock together (miner commit, gossip
// block acceptance) MUST acquire Blockchain's lock first, per §5's fixed
// lock order.
func (sc *StateChain) Lock() { sc.mu.Lock() }

// Unlock releases the state chain's mutex.
func (sc *StateChain) Unlock() { sc.mu.Unlock() }

// Put installs a snapshot for blockHash, acquiring the lock itself.
func (sc *StateChain) Put(blockHash types.Hash256, state Set) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.PutLocked(blockHash, state)
}

// PutLocked installs a snapshot for blockHash. The caller must already
// hold the lock (via Lock()), used when committing alongside a Blockchain
// insert under the fixed lock order.
func (sc *StateChain) PutLocked(blockHash types.Hash256, state Set) {
	sc.snapshots[blockHash] = state
}

// Get returns a copy of the snapshot for blockHash, acquiring the lock
// itself. The returned set is safe for the caller to mutate.
func (sc *StateChain) Get(blockHash types.Hash256) (Set, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	s, ok := sc.snapshots[blockHash]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Contains reports whether a snapshot exists for blockHash.
func (sc *StateChain) Contains(blockHash types.Hash256) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_, ok := sc.snapshots[blockHash]
	return ok
}

// Len returns the number of snapshots held.
func (sc *StateChain) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.snapshots)
}
