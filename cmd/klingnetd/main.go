// Klingnet PoW node daemon: miner, transaction generator, and gossip
// worker pool wired around a shared ledger, mempool, and UTXO state
// chain (§2/§6).
//
// Usage:
//
//	klingnetd --p2p 127.0.0.1:6000 --api 127.0.0.1:7000 --mine
//	klingnetd --help
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Klingon-tech/klingnet-pow-core/config"
	"github.com/Klingon-tech/klingnet-pow-core/internal/chain"
	"github.com/Klingon-tech/klingnet-pow-core/internal/generator"
	"github.com/Klingon-tech/klingnet-pow-core/internal/gossip"
	"github.com/Klingon-tech/klingnet-pow-core/internal/identity"
	"github.com/Klingon-tech/klingnet-pow-core/internal/keystore"
	klog "github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/mempool"
	"github.com/Klingon-tech/klingnet-pow-core/internal/miner"
	"github.com/Klingon-tech/klingnet-pow-core/internal/p2p"
	"github.com/Klingon-tech/klingnet-pow-core/internal/rpc"
	"github.com/Klingon-tech/klingnet-pow-core/internal/utxostate"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
	"golang.org/x/term"
)

// stringList accumulates a repeatable CLI flag, e.g. -c/--connect (§6).
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	// ── 1. Parse flags ───────────────────────────────────────────────
	var (
		p2pAddr      = flag.String("p2p", config.DefaultP2PAddr, "p2p listen address (IP:PORT)")
		apiAddr      = flag.String("api", config.DefaultAPIAddr, "control API listen address (IP:PORT)")
		workers      = flag.Int("p2p-workers", config.DefaultP2PWorkers, "gossip worker pool size")
		network      = flag.String("network", string(config.Testnet), "mainnet or testnet")
		mine         = flag.Bool("mine", false, "start the miner immediately")
		mineLambda   = flag.Duration("mine-lambda", 0, "inter-iteration delay for the miner (0 = no sleep)")
		generate     = flag.Bool("generate", false, "start the transaction generator immediately")
		genLambda    = flag.Duration("generate-lambda", config.DefaultGeneratorIntervalSeconds*time.Second, "interval between generated transactions")
		keystorePath = flag.String("keystore", "", "path to an encrypted keystore file (default: in-memory identity only)")
		passphrase   = flag.String("passphrase", "", "keystore passphrase (only used with --keystore)")
	)
	var connect stringList
	flag.Var(&connect, "connect", "peer multiaddr to dial at startup (repeatable)")
	flag.Var(&connect, "c", "shorthand for --connect")
	verbosity := 0
	flag.Func("v", "increase log verbosity (repeatable)", func(string) error {
		verbosity++
		return nil
	})
	flag.Parse()

	// ── 2. Build and validate node config ────────────────────────────
	netType := config.NetworkType(*network)
	cfg := config.Default(netType, *p2pAddr, *apiAddr)
	cfg.P2P.Workers = *workers
	cfg.P2P.Connect = connect
	cfg.Mining.AutoStart = *mine
	cfg.Generator.AutoStart = *generate
	cfg.Generator.Interval = int(genLambda.Seconds())
	cfg.Log.Verbosity = verbosity
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	types.SetAddressHRP(config.HRPFor(netType))

	// ── 3. Init logger ────────────────────────────────────────────────
	level := "info"
	if verbosity >= 1 {
		level = "debug"
	}
	if err := klog.Init(level, false, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("network", string(netType)).
		Str("p2p", cfg.P2P.ListenAddr).
		Str("api", cfg.RPC.Addr).
		Int("workers", cfg.P2P.Workers).
		Msg("starting klingnetd")

	// ── 4. Resolve identity ──────────────────────────────────────────
	self, mnemonic, err := resolveIdentity(cfg, *keystorePath, *passphrase)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve node identity")
	}
	selfAddr := crypto.AddressFromPubKey(self.PublicKey())
	if mnemonic != "" {
		logger.Warn().Msg("fresh identity generated — record the recovery mnemonic printed below")
		fmt.Fprintf(os.Stderr, "RECOVERY MNEMONIC (write this down, shown once): %s\n", mnemonic)
	}
	logger.Info().Str("address", selfAddr.String()).Msg("node identity resolved")

	// ── 5. Genesis, ledger, UTXO state, mempool ──────────────────────
	genesisBlock, err := chain.BuildGenesisBlock()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build genesis block")
	}
	bc := chain.New(genesisBlock)

	preconfigured, err := config.PreconfiguredAddresses()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to derive preconfigured ICO addresses")
	}
	states := utxostate.New()
	states.Put(genesisBlock.Hash(), utxostate.GenesisSet(preconfigured, config.GenesisAllocation))

	pool := mempool.New()

	logger.Info().
		Str("genesis", genesisBlock.Hash().String()).
		Uint64("ico_allocation", config.GenesisAllocation).
		Msg("ledger and UTXO state initialized")

	// ── 6. Peer transport ─────────────────────────────────────────────
	transport := p2p.New(p2p.Config{
		ListenAddr: cfg.P2P.ListenAddr,
		Connect:    cfg.P2P.Connect,
	})
	if err := transport.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start p2p transport")
	}
	defer transport.Stop()
	logger.Info().Str("id", transport.ID()).Msg("p2p transport started")

	// ── 7. Miner, generator, gossip worker pool ──────────────────────
	m := miner.New(bc, states, pool, transport)
	go m.Run()

	peers := generatorPeers(preconfigured, selfAddr)
	g := generator.New(bc, states, pool, transport, self, peers)
	go g.Run()

	gp := gossip.New(bc, states, pool, transport, transport.Inbound(), cfg.P2P.Workers)
	ctx, cancel := context.WithCancel(context.Background())
	go gp.Run(ctx)

	// ── 8. Control API ────────────────────────────────────────────────
	apiServer := rpc.New(cfg.RPC.Addr, m, g, transport)
	if err := apiServer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start control API")
	}
	defer apiServer.Stop()
	logger.Info().Str("addr", apiServer.Addr()).Msg("control API started")

	// ── 9. Honor --mine / --generate autostart ───────────────────────
	if cfg.Mining.AutoStart {
		m.Start(*mineLambda)
		logger.Info().Dur("lambda", *mineLambda).Msg("miner started")
	}
	if cfg.Generator.AutoStart {
		g.Start(*genLambda)
		logger.Info().Dur("lambda", *genLambda).Msg("generator started")
	}

	// ── 10. Wait for shutdown ─────────────────────────────────────────
	logger.Info().Msg("node started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	m.Exit()
	g.Exit()
	cancel()
	logger.Info().Msg("goodbye")
}

// resolveIdentity loads a keystore identity if one was requested,
// otherwise falls back to identity.Resolve's port-based demo-key rule
// (§6). A freshly generated identity is saved to the keystore when one
// was requested but did not yet exist.
func resolveIdentity(cfg *config.Config, keystorePath, passphrase string) (*crypto.PrivateKey, string, error) {
	if keystorePath == "" {
		port, err := listenPort(cfg.P2P.ListenAddr)
		if err != nil {
			return nil, "", err
		}
		id, err := identity.Resolve(port)
		if err != nil {
			return nil, "", err
		}
		return id.Key, id.Mnemonic, nil
	}

	pass := []byte(passphrase)
	if passphrase == "" && term.IsTerminal(int(syscall.Stdin)) {
		p, err := readPassword("Keystore passphrase: ")
		if err != nil {
			return nil, "", fmt.Errorf("read passphrase: %w", err)
		}
		pass = p
	}

	store, err := keystore.Open(keystorePath)
	if err != nil {
		return nil, "", fmt.Errorf("open keystore: %w", err)
	}
	defer store.Close()

	has, err := store.Has()
	if err != nil {
		return nil, "", fmt.Errorf("check keystore: %w", err)
	}
	if has {
		key, err := store.Load(pass)
		if err != nil {
			return nil, "", fmt.Errorf("load keystore identity: %w", err)
		}
		return key, "", nil
	}

	id, err := identity.Fresh()
	if err != nil {
		return nil, "", fmt.Errorf("generate identity: %w", err)
	}
	if err := store.Save(id.Key, pass); err != nil {
		return nil, "", fmt.Errorf("save identity to keystore: %w", err)
	}
	return id.Key, id.Mnemonic, nil
}

// listenPort extracts the numeric port from a "host:port" listen
// address, used by identity.Resolve to pick a preconfigured demo
// keypair (§6).
func listenPort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("parse p2p listen address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("parse p2p listen port: %w", err)
	}
	return port, nil
}

// generatorPeers returns the preconfigured address list minus self, the
// candidate recipients the generator's periodic transfer picks from
// (§4.5). If self is not one of the three preconfigured demo addresses,
// all three are eligible.
func generatorPeers(preconfigured [3]types.Address, self types.Address) []types.Address {
	peers := make([]types.Address, 0, len(preconfigured))
	for _, addr := range preconfigured {
		if addr != self {
			peers = append(peers, addr)
		}
	}
	return peers
}

// readPassword prompts on stderr and reads a line of hidden input.
func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
