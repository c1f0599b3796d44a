package utxostate

import "github.com/Klingon-tech/klingnet-pow-core/pkg/types"

// GenesisSet builds the ICO allocation: amount units to each of addrs,
// keyed directly by (Hash256::zero, i) — NOT by hashing a transaction,
// since the genesis allocation is a protocol constant, not the product
// of running Update over a signed transaction. Every honest node must
// build byte-identical entries here (§3 Genesis).
func GenesisSet(addrs [3]types.Address, amount uint64) Set {
	set := make(Set, len(addrs))
	for i, addr := range addrs {
		set[types.Outpoint{TxHash: types.Hash256{}, Index: uint32(i)}] = Entry{
			Value: amount,
			Owner: addr,
		}
	}
	return set
}
