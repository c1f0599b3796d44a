// Package identity resolves a node's signing key at startup: one of the
// three preconfigured demo keypairs when the listen port says this is a
// seeded demo node, otherwise a freshly generated keypair recoverable
// from a BIP-39 mnemonic (§6).
package identity

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-pow-core/config"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/tyler-smith/go-bip39"
)

// demoPortModulus is the boundary klingnetd's CLI uses to decide whether
// a listen port addresses one of the three preconfigured demo nodes.
const demoPortModulus = 1000
const demoSeedCount = 3

// Identity is a resolved node keypair plus, for freshly generated
// identities, the recovery mnemonic the operator should record.
type Identity struct {
	Key      *crypto.PrivateKey
	Mnemonic string // empty for a preconfigured demo identity
}

// Resolve picks PreconfiguredKey(port % demoPortModulus) when port mod
// demoPortModulus falls in the preconfigured range, otherwise generates
// a fresh keypair derived from a new BIP-39 mnemonic.
func Resolve(port int) (Identity, error) {
	if i := port % demoPortModulus; i >= 0 && i < demoSeedCount {
		key, err := config.PreconfiguredKey(i)
		if err != nil {
			return Identity{}, fmt.Errorf("resolve preconfigured identity: %w", err)
		}
		return Identity{Key: key}, nil
	}
	return Fresh()
}

// Fresh always generates a new keypair from a new BIP-39 mnemonic,
// bypassing the preconfigured-demo-key check in Resolve.
func Fresh() (Identity, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return Identity{}, fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return Identity{}, fmt.Errorf("generate mnemonic: %w", err)
	}

	seed := bip39.NewSeed(mnemonic, "")
	key, err := crypto.PrivateKeyFromSeed(seed[:32])
	if err != nil {
		return Identity{}, fmt.Errorf("derive key from mnemonic seed: %w", err)
	}
	return Identity{Key: key, Mnemonic: mnemonic}, nil
}

// FromMnemonic recovers an identity previously produced by Fresh.
func FromMnemonic(mnemonic string) (Identity, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return Identity{}, fmt.Errorf("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	key, err := crypto.PrivateKeyFromSeed(seed[:32])
	if err != nil {
		return Identity{}, fmt.Errorf("derive key from mnemonic seed: %w", err)
	}
	return Identity{Key: key, Mnemonic: mnemonic}, nil
}
