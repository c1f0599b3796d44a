// Package keystore implements the key-file persistence collaborator
// (§6): a single Ed25519 seed, encrypted at rest with a
// passphrase-derived key and stored in a badger-backed
// internal/storage.DB, namespaced under its own key prefix. The
// encryption scheme — Argon2id key derivation feeding an
// XChaCha20-Poly1305 AEAD — mirrors the teacher's own
// internal/wallet/encryption.go exactly.
package keystore

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/storage"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// keyPrefix namespaces every keystore record inside the backing store.
var keyPrefix = []byte("identity/")

// Record keys within the keystore's namespace: the encrypted seed and
// the plaintext public key it decrypts to. The pair is written
// atomically so the pubkey record always matches the stored seed.
var (
	seedKey   = []byte("seed")
	pubKeyKey = []byte("pubkey")
)

const saltSize = 32
const headerSize = saltSize + 4 + 4 + 1 // salt | memory | iterations | parallelism

// Params holds the Argon2id cost parameters used to derive the file
// encryption key from an operator passphrase.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the teacher's own recommended Argon2id settings.
func DefaultParams() Params {
	return Params{Memory: 64 * 1024, Iterations: 3, Parallelism: 4}
}

// Store persists one encrypted Ed25519 seed in a badger-backed database.
type Store struct {
	db     storage.DB
	params Params
}

// Open opens (creating if necessary) the badger database at path.
func Open(path string) (*Store, error) {
	db, err := storage.NewBadger(path)
	if err != nil {
		return nil, fmt.Errorf("open keystore: %w", err)
	}
	return &Store{db: storage.NewPrefixDB(db, keyPrefix), params: DefaultParams()}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Has reports whether an identity has already been saved.
func (s *Store) Has() (bool, error) {
	return s.db.Has(seedKey)
}

// Save encrypts key's seed under passphrase and persists it together
// with the plaintext public key, overwriting any previously stored
// identity. Both records are committed in one atomic batch.
func (s *Store) Save(key *crypto.PrivateKey, passphrase []byte) error {
	encrypted, err := encrypt(key.Seed(), passphrase, s.params)
	if err != nil {
		return fmt.Errorf("encrypt identity: %w", err)
	}

	batch := s.db.NewBatch()
	if err := batch.Put(seedKey, encrypted); err != nil {
		return fmt.Errorf("stage identity seed: %w", err)
	}
	if err := batch.Put(pubKeyKey, key.PublicKey()); err != nil {
		return fmt.Errorf("stage identity pubkey: %w", err)
	}
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("persist identity: %w", err)
	}
	log.Keystore.Info().Msg("identity saved")
	return nil
}

// Load decrypts and returns the stored identity, checking the decrypted
// seed against the stored pubkey record.
func (s *Store) Load(passphrase []byte) (*crypto.PrivateKey, error) {
	encrypted, err := s.db.Get(seedKey)
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	seed, err := decrypt(encrypted, passphrase)
	if err != nil {
		return nil, fmt.Errorf("decrypt identity: %w", err)
	}
	key, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}

	stored, err := s.db.Get(pubKeyKey)
	if err != nil {
		return nil, fmt.Errorf("read identity pubkey: %w", err)
	}
	if !bytes.Equal(stored, key.PublicKey()) {
		return nil, fmt.Errorf("keystore pubkey record does not match the decrypted seed")
	}
	return key, nil
}

func deriveKey(passphrase, salt []byte, params Params) []byte {
	return argon2.IDKey(passphrase, salt, params.Iterations, params.Memory, params.Parallelism, chacha20poly1305.KeySize)
}

// encrypt produces salt | memory | iterations | parallelism | nonce | ciphertext.
func encrypt(data, passphrase []byte, params Params) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt, params)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, data, nil)

	out := make([]byte, 0, headerSize+len(nonce)+len(ciphertext))
	out = append(out, salt...)
	out = binary.LittleEndian.AppendUint32(out, params.Memory)
	out = binary.LittleEndian.AppendUint32(out, params.Iterations)
	out = append(out, params.Parallelism)
	out = append(out, nonce...)
	out = append(out, ciphertext...)
	return out, nil
}

func decrypt(encrypted, passphrase []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSizeX
	minSize := headerSize + nonceSize + chacha20poly1305.Overhead
	if len(encrypted) < minSize {
		return nil, fmt.Errorf("encrypted data too short: %d bytes, need at least %d", len(encrypted), minSize)
	}

	salt := encrypted[:saltSize]
	memory := binary.LittleEndian.Uint32(encrypted[saltSize:])
	iterations := binary.LittleEndian.Uint32(encrypted[saltSize+4:])
	parallelism := encrypted[saltSize+8]
	params := Params{Memory: memory, Iterations: iterations, Parallelism: parallelism}

	nonce := encrypted[headerSize : headerSize+nonceSize]
	ciphertext := encrypted[headerSize+nonceSize:]

	key := deriveKey(passphrase, salt, params)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
