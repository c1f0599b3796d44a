package gossip

import (
	"github.com/Klingon-tech/klingnet-pow-core/internal/codec"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// handleNewTransactionHashes answers a NewTransactionHashes advertisement
// by requesting whichever advertised hashes aren't already in the mempool.
func (p *Pool) handleNewTransactionHashes(msg codec.Message, peer PeerHandle) {
	missing := p.pool.FilterUnknown(msg.Hashes)
	if len(missing) == 0 {
		return
	}
	if err := peer.Write(codec.Message{Type: codec.MsgGetTransaction, Hashes: missing}); err != nil {
		log.Gossip.Debug().Err(err).Msg("get-transaction request failed")
	}
}

// handleGetTransaction answers a GetTransaction request with whichever of
// the requested transactions this node still holds in its mempool.
func (p *Pool) handleGetTransaction(msg codec.Message, peer PeerHandle) {
	var found []tx.SignedTransaction
	for _, h := range msg.Hashes {
		if stx, ok := p.pool.Get(h); ok {
			found = append(found, stx)
		}
	}
	if len(found) == 0 {
		return
	}
	if err := peer.Write(codec.Message{Type: codec.MsgTransactions, Transactions: found}); err != nil {
		log.Gossip.Debug().Err(err).Msg("transactions reply failed")
	}
}

// handleTransactions admits a batch of received transactions into the
// mempool, validating each against the chain tip's UtxoSet snapshot as an
// acceptability check only — mempool membership is never itself a
// commitment, and the miner's own speculative Update is what decides what
// actually lands in a block (§4.3, §4.6).
func (p *Pool) handleTransactions(msg codec.Message, peer PeerHandle) {
	tipHash := p.chain.Tip()
	snapshot, ok := p.states.Get(tipHash)
	if !ok {
		return
	}

	var accepted []types.Hash256
	for _, stx := range msg.Transactions {
		hash := stx.Hash()
		if p.pool.Contains(hash) {
			continue
		}
		if err := stx.VerifySignature(); err != nil {
			log.Gossip.Debug().Err(err).Str("hash", hash.String()).Msg("transaction rejected: bad signature")
			continue
		}

		outpoint := stx.Tx.Input.Outpoint()
		entry, ok := snapshot[outpoint]
		if !ok {
			log.Gossip.Debug().Str("hash", hash.String()).Msg("transaction rejected: unknown utxo")
			continue
		}
		if !stx.Tx.Input.CoinbaseFlag {
			if crypto.AddressFromPubKey(stx.PubKey) != entry.Owner {
				log.Gossip.Debug().Str("hash", hash.String()).Msg("transaction rejected: owner mismatch")
				continue
			}
		}

		if p.pool.Insert(stx) {
			accepted = append(accepted, hash)
		}
	}

	if len(accepted) == 0 || p.broadcaster == nil {
		return
	}
	p.broadcaster.Broadcast(codec.Message{Type: codec.MsgNewTransactionHashes, Hashes: accepted})
}
