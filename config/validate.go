package config

import "fmt"

// Validate checks runtime node config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.P2P.ListenAddr == "" {
		return fmt.Errorf("p2p listen address is required")
	}
	if cfg.RPC.Addr == "" {
		return fmt.Errorf("rpc listen address is required")
	}
	if cfg.P2P.Workers <= 0 {
		return fmt.Errorf("p2p.workers must be positive, got %d", cfg.P2P.Workers)
	}
	return nil
}
