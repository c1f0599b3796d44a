// Package gossip implements the inventory-exchange protocol worker pool:
// decoding inbound frames, validating blocks and transactions, resolving
// orphans, and flooding advertisements onward (§4.6).
package gossip

import (
	"context"

	"github.com/Klingon-tech/klingnet-pow-core/internal/chain"
	"github.com/Klingon-tech/klingnet-pow-core/internal/codec"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/mempool"
	"github.com/Klingon-tech/klingnet-pow-core/internal/utxostate"
)

// PeerHandle lets a worker unicast a reply to whichever peer sent the
// message currently being handled (§6 "peer_handle.write(Message)").
type PeerHandle interface {
	Write(msg codec.Message) error
	String() string
}

// Inbound pairs an undecoded wire frame with the peer that sent it. The
// server/transport collaborator feeds these into the worker pool's
// shared channel; any worker may receive any message (§5).
type Inbound struct {
	Data []byte
	Peer PeerHandle
}

// Pool is the gossip worker pool: N goroutines draining one inbound
// channel, mutating the shared Blockchain/StateChain/Mempool under their
// own locks, and publishing outbound frames through a Broadcaster.
type Pool struct {
	chain       *chain.Blockchain
	states      *utxostate.StateChain
	pool        *mempool.Mempool
	broadcaster codec.Broadcaster

	inbound <-chan Inbound
	workers int

	orphans *orphanBuffer
}

// New creates a gossip worker pool of the given size, draining inbound.
func New(bc *chain.Blockchain, states *utxostate.StateChain, mp *mempool.Mempool, broadcaster codec.Broadcaster, inbound <-chan Inbound, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		chain:       bc,
		states:      states,
		pool:        mp,
		broadcaster: broadcaster,
		inbound:     inbound,
		workers:     workers,
		orphans:     newOrphanBuffer(),
	}
}

// Run starts the worker pool and blocks until ctx is cancelled or the
// inbound channel is closed.
func (p *Pool) Run(ctx context.Context) {
	done := make(chan struct{})
	for i := 0; i < p.workers; i++ {
		go p.worker(ctx, done)
	}
	for i := 0; i < p.workers; i++ {
		<-done
	}
}

func (p *Pool) worker(ctx context.Context, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-p.inbound:
			if !ok {
				return
			}
			p.handleFrame(in)
		}
	}
}

func (p *Pool) handleFrame(in Inbound) {
	msg, err := codec.Unmarshal(in.Data)
	if err != nil {
		log.Gossip.Debug().Err(err).Str("peer", in.Peer.String()).Msg("malformed message dropped")
		return
	}
	p.Handle(msg, in.Peer)
}

// Handle dispatches a decoded message to the handler for its type. It is
// exported so a transport collaborator that already decodes frames itself
// can call straight in, bypassing handleFrame's codec.Unmarshal step.
func (p *Pool) Handle(msg codec.Message, peer PeerHandle) {
	switch msg.Type {
	case codec.MsgPing:
		p.handlePing(msg, peer)
	case codec.MsgPong:
		// Liveness only; no further action.
	case codec.MsgNewBlockHashes:
		p.handleNewBlockHashes(msg, peer)
	case codec.MsgGetBlocks:
		p.handleGetBlocks(msg, peer)
	case codec.MsgBlocks:
		p.handleBlocks(msg, peer)
	case codec.MsgNewTransactionHashes:
		p.handleNewTransactionHashes(msg, peer)
	case codec.MsgGetTransaction:
		p.handleGetTransaction(msg, peer)
	case codec.MsgTransactions:
		p.handleTransactions(msg, peer)
	default:
		log.Gossip.Debug().Str("peer", peer.String()).Msg("unknown message type dropped")
	}
}

func (p *Pool) handlePing(msg codec.Message, peer PeerHandle) {
	if err := peer.Write(codec.Message{Type: codec.MsgPong, PongEcho: msg.PingNonce}); err != nil {
		log.Gossip.Debug().Err(err).Msg("pong reply failed")
	}
}
