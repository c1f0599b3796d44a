package config

// DefaultMainnet returns the default mainnet node configuration.
func DefaultMainnet() *Config {
	return Default(Mainnet, DefaultP2PAddr, DefaultAPIAddr)
}

// DefaultTestnet returns the default testnet node configuration.
func DefaultTestnet() *Config {
	return Default(Testnet, DefaultP2PAddr, DefaultAPIAddr)
}
