// Package miner implements the proof-of-work mining loop: assemble
// candidate transactions, run the speculative state update, search for a
// satisfying nonce, and atomically commit block + state (§4.4).
package miner

import (
	"math/rand/v2"
	"time"

	"github.com/Klingon-tech/klingnet-pow-core/config"
	"github.com/Klingon-tech/klingnet-pow-core/internal/chain"
	"github.com/Klingon-tech/klingnet-pow-core/internal/codec"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/mempool"
	"github.com/Klingon-tech/klingnet-pow-core/internal/utxostate"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// CommandKind distinguishes the two control messages the miner accepts.
type CommandKind int

const (
	// CmdStart moves the miner to the Run state with the given inter-
	// iteration delay; lambda == 0 means no sleep between iterations.
	CmdStart CommandKind = iota
	// CmdExit moves the miner to ShutDown; the run loop returns.
	CmdExit
)

// Command is a single control-channel message: Start(lambda) | Exit (§4.4).
type Command struct {
	Kind   CommandKind
	Lambda time.Duration
}

type runState int

const (
	statePaused runState = iota
	stateRunning
	stateShutDown
)

// Miner drains the mempool, mines, and commits new blocks against the
// shared Blockchain and StateChain. It is controlled exclusively through
// its control channel — there is no other way to start, pace, or stop it.
type Miner struct {
	chain       *chain.Blockchain
	states      *utxostate.StateChain
	pool        *mempool.Mempool
	broadcaster codec.Broadcaster

	control chan Command
}

// New creates a miner bound to the shared ledger, state chain, mempool,
// and outbound broadcaster. Call Run in its own goroutine.
func New(bc *chain.Blockchain, states *utxostate.StateChain, pool *mempool.Mempool, broadcaster codec.Broadcaster) *Miner {
	return &Miner{
		chain:       bc,
		states:      states,
		pool:        pool,
		broadcaster: broadcaster,
		control:     make(chan Command),
	}
}

// Start sends Start(lambda) to the miner's control channel.
func (m *Miner) Start(lambda time.Duration) {
	m.control <- Command{Kind: CmdStart, Lambda: lambda}
}

// Exit sends Exit to the miner's control channel.
func (m *Miner) Exit() {
	m.control <- Command{Kind: CmdExit}
}

// Run executes the miner's control-plane state machine until Exit is
// received. States: Paused (blocks on recv), Run(lambda) (non-blocking
// try-recv, mine, sleep lambda), ShutDown (return) — §4.4.
func (m *Miner) Run() {
	state := statePaused
	var lambda time.Duration
	logger := log.Miner

	for {
		switch state {
		case stateShutDown:
			return

		case statePaused:
			cmd, ok := <-m.control
			if !ok {
				return
			}
			state, lambda = m.apply(cmd)

		case stateRunning:
			select {
			case cmd := <-m.control:
				state, lambda = m.apply(cmd)
				continue
			default:
			}

			if err := m.mineOnce(); err != nil {
				logger.Debug().Err(err).Msg("mine iteration skipped")
			}

			if lambda > 0 {
				time.Sleep(lambda)
			}
		}
	}
}

func (m *Miner) apply(cmd Command) (runState, time.Duration) {
	switch cmd.Kind {
	case CmdStart:
		return stateRunning, cmd.Lambda
	case CmdExit:
		return stateShutDown, 0
	default:
		return statePaused, 0
	}
}

// mineOnce runs a single iteration of the mining loop (§4.4 steps 1-8).
// It returns nil even when there is nothing to mine this iteration; an error
// only comes from inserting the mined block into the chain, never from a
// normal empty-mempool cycle.
func (m *Miner) mineOnce() error {
	m.chain.Lock()
	tipHash := m.chain.TipLocked()
	tipBlock, _ := m.chain.GetLocked(tipHash)
	m.chain.Unlock()

	parent := tipHash
	difficulty := tipBlock.Header.Difficulty
	timestampMs := uint64(time.Now().UnixMilli())

	snapshot, ok := m.states.Get(tipHash)
	if !ok {
		return nil // Tip state not yet committed; try again next iteration.
	}

	drained := m.pool.Retrieve(config.BlockTxCap)
	if len(drained) == 0 {
		return nil
	}

	newState, accepted, _ := utxostate.Update(snapshot, drained)
	if len(accepted) == 0 {
		return nil
	}

	leaves := make([]types.Hash256, len(accepted))
	for i, stx := range accepted {
		leaves[i] = stx.Hash()
	}
	merkleRoot := block.ComputeMerkleRoot(leaves)

	header := block.Header{
		Parent:      parent,
		Difficulty:  difficulty,
		TimestampMs: timestampMs,
		MerkleRoot:  merkleRoot,
	}
	for {
		header.Nonce = rand.Uint32()
		if header.Hash().LessOrEqual(difficulty) {
			break
		}
	}

	blk := block.NewBlock(header, accepted)
	blockHash := blk.Hash()

	m.chain.Lock()
	m.states.Lock()
	m.states.PutLocked(blockHash, newState)
	inserted, err := m.chain.InsertLocked(blk)
	m.states.Unlock()
	m.chain.Unlock()

	if err != nil || !inserted {
		return err
	}

	log.Miner.Info().
		Str("hash", blockHash.String()).
		Int("txs", len(accepted)).
		Msg("mined block")

	if m.broadcaster != nil {
		m.broadcaster.Broadcast(codec.Message{
			Type:   codec.MsgNewBlockHashes,
			Hashes: []types.Hash256{blockHash},
		})
	}

	return nil
}
