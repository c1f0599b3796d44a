package config

import (
	"encoding/hex"
	"fmt"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// =============================================================================
// Protocol Rules (immutable, defined in genesis)
// These MUST match across all nodes or consensus breaks.
// =============================================================================

// GenesisAllocation is the number of base units the ICO genesis block
// grants to each of the three PreconfiguredSeeds addresses.
const GenesisAllocation uint64 = 10_000

// BlockTxCap is the maximum number of mempool entries the miner drains
// into a single candidate block.
const BlockTxCap = 10

// MaxTxOutputs caps the number of outputs a single transaction may carry.
const MaxTxOutputs = 16

// GenesisDifficulty is the fixed puzzle threshold every node mines
// against; the protocol has no difficulty adjustment. Set loose enough
// (only the top byte constrained) that a single CPU core finds a nonce
// in a reasonable time for the didactic demo.
var GenesisDifficulty = types.Hash256{
	0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// PreconfiguredSeeds holds the three fixed Ed25519 seeds used by the
// three-node demo: a node started on a port p with p%1000 < 3 loads
// PreconfiguredSeeds[p%1000] instead of generating a fresh key, so the
// ICO genesis can hand out funds deterministically. DO NOT use these on
// a deployment that has to resist a key-known attacker.
var PreconfiguredSeeds = [3]string{
	"dcef57cd21a2b09e16c59025bb469f0472612e8c239a6037a054aa9a7e81a777",
	"e8b46da4419443e8e2eec3ad142b22310622b34df3e109d9c524b5f5ddfc45d8",
	"567b74b47669c2f71b1eef5be00eecde72988c5370de8bb1ccde1105565ed0a3",
}

// PreconfiguredKey returns the i'th preconfigured private key, i in [0, 3).
func PreconfiguredKey(i int) (*crypto.PrivateKey, error) {
	if i < 0 || i >= len(PreconfiguredSeeds) {
		return nil, fmt.Errorf("preconfigured key index %d out of range", i)
	}
	seed, err := hex.DecodeString(PreconfiguredSeeds[i])
	if err != nil {
		return nil, fmt.Errorf("preconfigured key %d: %w", i, err)
	}
	return crypto.PrivateKeyFromSeed(seed)
}

// PreconfiguredAddress returns the address of the i'th preconfigured key.
func PreconfiguredAddress(i int) (types.Address, error) {
	key, err := PreconfiguredKey(i)
	if err != nil {
		return types.Address{}, err
	}
	return crypto.AddressFromPubKey(key.PublicKey()), nil
}

// PreconfiguredAddresses returns the addresses of all three preconfigured
// keys, in order. Used to build the ICO genesis allocation.
func PreconfiguredAddresses() ([3]types.Address, error) {
	var addrs [3]types.Address
	for i := range addrs {
		addr, err := PreconfiguredAddress(i)
		if err != nil {
			return addrs, err
		}
		addrs[i] = addr
	}
	return addrs, nil
}

// HRPFor returns the bech32 address HRP for the given network.
func HRPFor(network NetworkType) string {
	if network == Testnet {
		return types.TestnetHRP
	}
	return types.MainnetHRP
}
