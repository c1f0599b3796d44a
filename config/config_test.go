package config

import "testing"

func TestDefault_UsesCLIDefaults(t *testing.T) {
	cfg := Default(Mainnet, DefaultP2PAddr, DefaultAPIAddr)

	if cfg.P2P.ListenAddr != "127.0.0.1:6000" {
		t.Errorf("unexpected p2p listen addr: %s", cfg.P2P.ListenAddr)
	}
	if cfg.RPC.Addr != "127.0.0.1:7000" {
		t.Errorf("unexpected rpc addr: %s", cfg.RPC.Addr)
	}
	if cfg.P2P.Workers != 4 {
		t.Errorf("expected 4 default workers, got %d", cfg.P2P.Workers)
	}
}

func TestDefaultMainnet_Testnet(t *testing.T) {
	if DefaultMainnet().Network != Mainnet {
		t.Error("DefaultMainnet should set Network=Mainnet")
	}
	if DefaultTestnet().Network != Testnet {
		t.Error("DefaultTestnet should set Network=Testnet")
	}
}

func TestChainDataDir_KeystoreDir(t *testing.T) {
	cfg := &Config{DataDir: "/tmp/klingnet-test", Network: Testnet}

	want := "/tmp/klingnet-test/testnet"
	if got := cfg.ChainDataDir(); got != want {
		t.Errorf("ChainDataDir() = %s, want %s", got, want)
	}
	if got := cfg.KeystoreDir(); got != want+"/keystore" {
		t.Errorf("KeystoreDir() = %s, want %s/keystore", got, want)
	}
}
