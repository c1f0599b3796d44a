package gossip

import (
	"github.com/Klingon-tech/klingnet-pow-core/internal/codec"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/utxostate"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// handleNewBlockHashes answers a NewBlockHashes advertisement by asking the
// sender for whichever of the advertised hashes this node doesn't hold yet
// (§4.6).
func (p *Pool) handleNewBlockHashes(msg codec.Message, peer PeerHandle) {
	var missing []types.Hash256
	for _, h := range msg.Hashes {
		if !p.chain.Contains(h) {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := peer.Write(codec.Message{Type: codec.MsgGetBlocks, Hashes: missing}); err != nil {
		log.Gossip.Debug().Err(err).Msg("get-blocks request failed")
	}
}

// handleGetBlocks answers a GetBlocks request with whichever of the
// requested blocks this node actually holds.
func (p *Pool) handleGetBlocks(msg codec.Message, peer PeerHandle) {
	var blocks []block.Block
	for _, h := range msg.Hashes {
		if blk, ok := p.chain.Get(h); ok {
			blocks = append(blocks, blk)
		}
	}
	if len(blocks) == 0 {
		return
	}
	if err := peer.Write(codec.Message{Type: codec.MsgBlocks, Blocks: blocks}); err != nil {
		log.Gossip.Debug().Err(err).Msg("blocks reply failed")
	}
}

// acceptOutcome classifies what became of one received block.
type acceptOutcome int

const (
	outcomeAccepted acceptOutcome = iota // validated and committed
	outcomeSkipped                       // already stored
	outcomeOrphaned                      // parent unknown, buffered
	outcomeDropped                       // failed validation, never stored
)

// handleBlocks processes a batch of received blocks in order, buffering
// any whose parent is unknown, validating and committing the rest, and
// recursively resolving any orphans that were waiting on a newly accepted
// block (§4.6, §7, §9 "orphan recovery"). A validation failure drops the
// block but still triggers an orphan re-check on its hash — no buffered
// child can actually resolve against a block that was never stored, but
// the re-check runs either way. Every received hash is re-flooded
// regardless of outcome, so well-behaved peers converge even when this
// node rejects a block outright.
func (p *Pool) handleBlocks(msg codec.Message, peer PeerHandle) {
	var toFlood []types.Hash256

	for _, blk := range msg.Blocks {
		toFlood = append(toFlood, blk.Hash())
		switch p.tryAcceptBlock(blk) {
		case outcomeAccepted, outcomeDropped:
			toFlood = append(toFlood, p.resolveOrphans(blk.Hash())...)
		}
	}

	if len(toFlood) == 0 || p.broadcaster == nil {
		return
	}
	p.broadcaster.Broadcast(codec.Message{Type: codec.MsgNewBlockHashes, Hashes: dedupeHashes(toFlood)})
}

// tryAcceptBlock validates and commits a single block against the chain's
// current state, buffering it as an orphan if its parent is missing.
func (p *Pool) tryAcceptBlock(blk block.Block) acceptOutcome {
	hash := blk.Hash()
	if p.chain.Contains(hash) {
		return outcomeSkipped
	}

	parent, ok := p.chain.Get(blk.Header.Parent)
	if !ok {
		p.orphans.add(blk)
		return outcomeOrphaned
	}

	if err := blk.Validate(parent.Header.Difficulty); err != nil {
		log.Gossip.Debug().Err(err).Str("hash", hash.String()).Msg("block rejected")
		return outcomeDropped
	}

	parentState, ok := p.states.Get(blk.Header.Parent)
	if !ok {
		log.Gossip.Debug().Str("hash", hash.String()).Msg("parent state missing, dropping block")
		return outcomeDropped
	}

	newState, _, _ := utxostate.Update(parentState, blk.Content)

	p.chain.Lock()
	p.states.Lock()
	p.states.PutLocked(hash, newState)
	inserted, err := p.chain.InsertLocked(blk)
	p.states.Unlock()
	p.chain.Unlock()

	if err != nil {
		return outcomeDropped
	}
	if !inserted {
		return outcomeSkipped
	}

	log.Gossip.Info().Str("hash", hash.String()).Int("txs", len(blk.Content)).Msg("accepted block")
	return outcomeAccepted
}

// resolveOrphans recursively accepts any blocks buffered under acceptedHash,
// returning every newly accepted block's hash so they can be re-flooded.
func (p *Pool) resolveOrphans(acceptedHash types.Hash256) []types.Hash256 {
	var newlyAccepted []types.Hash256

	frontier := []types.Hash256{acceptedHash}
	for len(frontier) > 0 {
		parentHash := frontier[0]
		frontier = frontier[1:]

		children := p.orphans.take(parentHash)
		for _, child := range children {
			if p.tryAcceptBlock(child) == outcomeAccepted {
				childHash := child.Hash()
				newlyAccepted = append(newlyAccepted, childHash)
				frontier = append(frontier, childHash)
			}
		}
	}

	return newlyAccepted
}

func dedupeHashes(hashes []types.Hash256) []types.Hash256 {
	seen := make(map[types.Hash256]struct{}, len(hashes))
	out := make([]types.Hash256, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}
