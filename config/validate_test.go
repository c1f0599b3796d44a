package config

import "testing"

func TestValidate_Nil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := DefaultMainnet()
	if err := Validate(cfg); err != nil {
		t.Errorf("default mainnet config should be valid: %v", err)
	}
}

func TestValidate_BadNetwork(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.Network = "regtest"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for unknown network")
	}
}

func TestValidate_MissingP2PAddr(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.P2P.ListenAddr = ""
	if err := Validate(cfg); err == nil {
		t.Error("expected error for empty p2p listen address")
	}
}

func TestValidate_MissingRPCAddr(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.RPC.Addr = ""
	if err := Validate(cfg); err == nil {
		t.Error("expected error for empty rpc address")
	}
}

func TestValidate_ZeroWorkers(t *testing.T) {
	cfg := DefaultMainnet()
	cfg.P2P.Workers = 0
	if err := Validate(cfg); err == nil {
		t.Error("expected error for zero p2p workers")
	}
}
