package keystore

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
)

// fastParams keeps Argon2id cheap in tests; production uses DefaultParams.
func fastParams() Params {
	return Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "keystore"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.params = fastParams()
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := testStore(t)

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	passphrase := []byte("correct horse battery staple")

	if err := s.Save(key, passphrase); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.Load(passphrase)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(loaded.Seed(), key.Seed()) {
		t.Fatalf("loaded identity does not match saved identity")
	}
}

func TestLoadWrongPassphraseFails(t *testing.T) {
	s := testStore(t)

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := s.Save(key, []byte("right passphrase")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := s.Load([]byte("wrong passphrase")); err == nil {
		t.Fatalf("expected decryption to fail with the wrong passphrase")
	}
}

func TestLoadDetectsTamperedPubkeyRecord(t *testing.T) {
	s := testStore(t)

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	passphrase := []byte("pass")
	if err := s.Save(key, passphrase); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Overwrite the pubkey record so it no longer matches the seed.
	if err := s.db.Put(pubKeyKey, []byte("not the right pubkey")); err != nil {
		t.Fatalf("tamper pubkey record: %v", err)
	}

	if _, err := s.Load(passphrase); err == nil {
		t.Fatalf("expected Load to reject a pubkey record that does not match the seed")
	}
}

func TestHasReportsPresence(t *testing.T) {
	s := testStore(t)

	if has, err := s.Has(); err != nil || has {
		t.Fatalf("expected no identity yet, has=%v err=%v", has, err)
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if err := s.Save(key, []byte("pass")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if has, err := s.Has(); err != nil || !has {
		t.Fatalf("expected an identity to be present, has=%v err=%v", has, err)
	}
}
