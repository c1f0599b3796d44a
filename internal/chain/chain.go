// Package chain implements the ledger store: a block-indexed directed tree
// with a tracked longest chain (§3/§4.1). It holds no UTXO state itself —
// that lives in internal/utxostate, one snapshot per accepted block.
package chain

import (
	"errors"
	"sync"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// ErrUnknownParent is returned by Insert when the candidate block's parent
// is not present in the chain. The caller is expected to buffer the block
// as an orphan and retry once the parent arrives (§4.6, §7).
var ErrUnknownParent = errors.New("chain: unknown parent")

// LedgerEntry pairs a stored block with its height, owned by the Blockchain.
type LedgerEntry struct {
	Block  block.Block
	Height uint32
}

// Blockchain is a map from block hash to LedgerEntry plus a tracked tip.
// Tie-break: a strictly greater height replaces the tip; an equal height
// never does, keeping the chain sticky to the first block seen at a given
// height (§3(iii), §4.1, §9 Open Question 3 — deliberate, not a bug).
type Blockchain struct {
	mu          sync.Mutex
	entries     map[types.Hash256]LedgerEntry
	tipHash     types.Hash256
	tipHeight   uint32
	genesisHash types.Hash256
}

// New installs genesis and sets the tip to genesis at height 0.
func New(genesis block.Block) *Blockchain {
	hash := genesis.Hash()
	bc := &Blockchain{
		entries:     make(map[types.Hash256]LedgerEntry),
		tipHash:     hash,
		tipHeight:   0,
		genesisHash: hash,
	}
	bc.entries[hash] = LedgerEntry{Block: genesis, Height: 0}
	return bc
}

// Lock acquires the blockchain's mutex. Callers committing a block and its
// UtxoSet snapshot together must acquire this lock first, then the
// StateChain's, per the fixed Blockchain→StateChain→Mempool lock order (§5).
func (bc *Blockchain) Lock() { bc.mu.Lock() }

// Unlock releases the blockchain's mutex.
func (bc *Blockchain) Unlock() { bc.mu.Unlock() }

// Insert stores blk if its parent is known, acquiring the lock itself.
// Duplicate hashes are rejected silently (inserted=false, err=nil).
func (bc *Blockchain) Insert(blk block.Block) (inserted bool, err error) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.InsertLocked(blk)
}

// InsertLocked is Insert without acquiring the lock; the caller must
// already hold it (via Lock()). Used by the miner and gossip worker to
// commit a block and its state snapshot under one critical section.
func (bc *Blockchain) InsertLocked(blk block.Block) (inserted bool, err error) {
	hash := blk.Hash()
	if _, exists := bc.entries[hash]; exists {
		return false, nil
	}

	parentEntry, ok := bc.entries[blk.Header.Parent]
	if !ok {
		return false, ErrUnknownParent
	}

	height := parentEntry.Height + 1
	bc.entries[hash] = LedgerEntry{Block: blk, Height: height}

	if height > bc.tipHeight {
		bc.tipHash = hash
		bc.tipHeight = height
	}

	return true, nil
}

// Tip returns the hash of the current chain tip, acquiring the lock itself.
func (bc *Blockchain) Tip() types.Hash256 {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.tipHash
}

// TipLocked returns the tip hash; the caller must already hold the lock.
func (bc *Blockchain) TipLocked() types.Hash256 {
	return bc.tipHash
}

// TipHeight returns the height of the current chain tip.
func (bc *Blockchain) TipHeight() uint32 {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.tipHeight
}

// GenesisHash returns the hash of the genesis block, fixed at construction.
func (bc *Blockchain) GenesisHash() types.Hash256 {
	return bc.genesisHash
}

// Contains reports whether hash is stored in the chain.
func (bc *Blockchain) Contains(hash types.Hash256) bool {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	_, ok := bc.entries[hash]
	return ok
}

// ContainsLocked is Contains without acquiring the lock.
func (bc *Blockchain) ContainsLocked(hash types.Hash256) bool {
	_, ok := bc.entries[hash]
	return ok
}

// Get returns the block stored at hash, if any.
func (bc *Blockchain) Get(hash types.Hash256) (block.Block, bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	e, ok := bc.entries[hash]
	return e.Block, ok
}

// GetLocked is Get without acquiring the lock.
func (bc *Blockchain) GetLocked(hash types.Hash256) (block.Block, bool) {
	e, ok := bc.entries[hash]
	return e.Block, ok
}

// GetEntry returns the full LedgerEntry (block + height) stored at hash.
func (bc *Blockchain) GetEntry(hash types.Hash256) (LedgerEntry, bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	e, ok := bc.entries[hash]
	return e, ok
}

// Height returns the height of a stored block.
func (bc *Blockchain) Height(hash types.Hash256) (uint32, bool) {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	e, ok := bc.entries[hash]
	return e.Height, ok
}

// Len returns the number of blocks stored, including genesis.
func (bc *Blockchain) Len() int {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return len(bc.entries)
}
