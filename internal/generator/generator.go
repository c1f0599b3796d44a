// Package generator implements the transaction generator: a periodic,
// self-funded transfer to a random peer address from this node's own
// unspent outputs (§4.5). Unlike the bounded-lifetime educational source,
// this generator is unbounded and purely event-driven — it runs until
// Exit, the way a production node's generator would (see DESIGN.md).
package generator

import (
	"math/rand/v2"
	"time"

	"github.com/Klingon-tech/klingnet-pow-core/internal/chain"
	"github.com/Klingon-tech/klingnet-pow-core/internal/codec"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/mempool"
	"github.com/Klingon-tech/klingnet-pow-core/internal/utxostate"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// CommandKind mirrors the miner's control-channel taxonomy: the generator
// is paced and stopped through the same Start(lambda) | Exit protocol.
type CommandKind int

const (
	CmdStart CommandKind = iota
	CmdExit
)

// Command is a single control-channel message.
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

// Generator periodically mints a signed transaction spending one of this
// node's own UTXOs, splitting it between a randomly chosen peer and
// itself, and feeds it into the mempool and gossip.
type Generator struct {
	chain       *chain.Blockchain
	states      *utxostate.StateChain
	pool        *mempool.Mempool
	broadcaster codec.Broadcaster

	self     *crypto.PrivateKey
	selfAddr types.Address
	peers    []types.Address // preconfigured address list, excluding self

	control chan Command
}

// New creates a generator signing with self, able to pay any address in
// peers (which must not include self).
func New(bc *chain.Blockchain, states *utxostate.StateChain, pool *mempool.Mempool, broadcaster codec.Broadcaster, self *crypto.PrivateKey, peers []types.Address) *Generator {
	return &Generator{
		chain:       bc,
		states:      states,
		pool:        pool,
		broadcaster: broadcaster,
		self:        self,
		selfAddr:    crypto.AddressFromPubKey(self.PublicKey()),
		peers:       peers,
		control:     make(chan Command),
	}
}

// Start sends Start(lambda) to the generator's control channel; lambda is
// the interval between generated transactions.
func (g *Generator) Start(lambda time.Duration) {
	g.control <- Command{Kind: CmdStart, Lambda: lambda}
}

// Exit sends Exit to the generator's control channel.
func (g *Generator) Exit() {
	g.control <- Command{Kind: CmdExit}
}

// Run executes the generator's control-plane state machine until Exit.
func (g *Generator) Run() {
	state := statePaused
	var lambda time.Duration

	for {
		switch state {
		case stateShutDown:
			return

		case statePaused:
			cmd, ok := <-g.control
			if !ok {
				return
			}
			state, lambda = g.apply(cmd)

		case stateRunning:
			select {
			case cmd := <-g.control:
				state, lambda = g.apply(cmd)
				continue
			default:
			}

			if err := g.tick(); err != nil {
				log.Generator.Debug().Err(err).Msg("generator iteration skipped")
			}

			if lambda > 0 {
				time.Sleep(lambda)
			} else {
				time.Sleep(time.Millisecond) // Never busy-loop with lambda == 0.
			}
		}
	}
}

func (g *Generator) apply(cmd Command) (runState, time.Duration) {
	switch cmd.Kind {
	case CmdStart:
		return stateRunning, cmd.Lambda
	case CmdExit:
		return stateShutDown, 0
	default:
		return statePaused, 0
	}
}

// tick runs one iteration: pick an own UTXO and a peer, build, sign,
// mempool-insert, and broadcast a half/remainder transfer (§4.5).
func (g *Generator) tick() error {
	if len(g.peers) == 0 {
		return nil
	}

	tipHash := g.chain.Tip()
	snapshot, ok := g.states.Get(tipHash)
	if !ok {
		return nil
	}

	var owned []types.Outpoint
	for outpoint, entry := range snapshot {
		if entry.Owner == g.selfAddr {
			owned = append(owned, outpoint)
		}
	}
	if len(owned) == 0 {
		return nil
	}

	outpoint := owned[rand.IntN(len(owned))]
	entry := snapshot[outpoint]
	peer := g.peers[rand.IntN(len(g.peers))]

	half := entry.Value / 2
	remainder := entry.Value - half

	built := tx.Transaction{
		Input: tx.Input{PrevTxHash: outpoint.TxHash, PrevOutputIndex: outpoint.Index},
		Outputs: []tx.Output{
			{Address: peer, Value: half},
			{Address: g.selfAddr, Value: remainder},
		},
	}

	signed, err := tx.Sign(built, g.self)
	if err != nil {
		return err
	}

	if !g.pool.Insert(signed) {
		return nil
	}

	log.Generator.Info().
		Str("hash", signed.Hash().String()).
		Str("to", peer.String()).
		Uint64("value", half).
		Msg("generated transaction")

	if g.broadcaster != nil {
		g.broadcaster.Broadcast(codec.Message{
			Type:   codec.MsgNewTransactionHashes,
			Hashes: []types.Hash256{signed.Hash()},
		})
	}

	return nil
}
