package identity

import (
	"testing"

	"github.com/Klingon-tech/klingnet-pow-core/config"
)

func TestResolvePreconfigured(t *testing.T) {
	for i := 0; i < demoSeedCount; i++ {
		id, err := Resolve(6000 + i)
		if err != nil {
			t.Fatalf("resolve demo port %d: %v", i, err)
		}
		if id.Mnemonic != "" {
			t.Fatalf("preconfigured identity should not carry a mnemonic")
		}

		want, err := config.PreconfiguredKey(i)
		if err != nil {
			t.Fatalf("preconfigured key %d: %v", i, err)
		}
		if string(id.Key.Seed()) != string(want.Seed()) {
			t.Fatalf("resolved key %d does not match the preconfigured seed", i)
		}
	}
}

func TestResolveFreshOutsideDemoRange(t *testing.T) {
	id, err := Resolve(6003)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id.Mnemonic == "" {
		t.Fatalf("expected a recovery mnemonic for a freshly generated identity")
	}
}

func TestFromMnemonicRoundTrip(t *testing.T) {
	original, err := Fresh()
	if err != nil {
		t.Fatalf("fresh: %v", err)
	}

	recovered, err := FromMnemonic(original.Mnemonic)
	if err != nil {
		t.Fatalf("from mnemonic: %v", err)
	}

	if string(recovered.Key.Seed()) != string(original.Key.Seed()) {
		t.Fatalf("recovered key does not match original")
	}
}

func TestFromMnemonicRejectsInvalid(t *testing.T) {
	if _, err := FromMnemonic("not a real mnemonic phrase at all"); err == nil {
		t.Fatalf("expected an error for an invalid mnemonic")
	}
}
