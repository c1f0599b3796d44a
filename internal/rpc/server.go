// Package rpc implements the JSON-over-HTTP control API: a handful of
// operator endpoints for starting the miner and generator and for
// inspecting/growing the peer set (§6). Like the teacher's own daemon
// RPC, it is plain net/http with no router dependency.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Klingon-tech/klingnet-pow-core/internal/generator"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/Klingon-tech/klingnet-pow-core/internal/miner"
)

// Transport is the subset of internal/p2p.Transport the RPC server needs:
// enough to report identity and dial a peer on demand.
type Transport interface {
	ID() string
	Addrs() []string
	Connect(ctx context.Context, addr string) error
}

// Server is the control API's HTTP server.
type Server struct {
	addr      string
	miner     *miner.Miner
	generator *generator.Generator
	transport Transport

	server *http.Server
	ln     net.Listener
}

// New creates a control API server bound to addr. generator may be nil
// when no generator was configured for this node.
func New(addr string, m *miner.Miner, g *generator.Generator, t Transport) *Server {
	s := &Server{addr: addr, miner: m, generator: g, transport: t}

	mux := http.NewServeMux()
	mux.HandleFunc("/miner/start", s.handleMinerStart)
	mux.HandleFunc("/generator/start", s.handleGeneratorStart)
	mux.HandleFunc("/network/ping", s.handleNetworkPing)
	mux.HandleFunc("/network/connect", s.handleNetworkConnect)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Start begins listening and serving in a background goroutine,
// returning once the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.RPC.Error().Err(err).Msg("rpc server error")
		}
	}()
	return nil
}

// Addr returns the bound listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleMinerStart starts the miner's PoW loop with an optional
// ?lambda=<μs> inter-iteration pacing delay (§6).
func (s *Server) handleMinerStart(w http.ResponseWriter, r *http.Request) {
	lambda, err := parseLambda(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.miner.Start(lambda)
	writeJSON(w, map[string]string{"status": "started"})
}

// handleGeneratorStart starts the transaction generator the same way.
func (s *Server) handleGeneratorStart(w http.ResponseWriter, r *http.Request) {
	if s.generator == nil {
		http.Error(w, "no generator configured for this node", http.StatusNotFound)
		return
	}
	lambda, err := parseLambda(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.generator.Start(lambda)
	writeJSON(w, map[string]string{"status": "started"})
}

// handleNetworkPing reports this node's identity and dialable addresses.
func (s *Server) handleNetworkPing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"id":    s.transport.ID(),
		"addrs": s.transport.Addrs(),
	})
}

// handleNetworkConnect dials a peer by multiaddr given in ?peer=.
func (s *Server) handleNetworkConnect(w http.ResponseWriter, r *http.Request) {
	peerAddr := r.URL.Query().Get("peer")
	if peerAddr == "" {
		http.Error(w, "missing peer parameter", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := s.transport.Connect(ctx, peerAddr); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"status": "connected", "peer": peerAddr})
}

// parseLambda reads ?lambda=<μs>, matching spec.md §6's control API
// exactly (microseconds, not milliseconds).
func parseLambda(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("lambda")
	if raw == "" {
		return 0, nil
	}
	us, err := strconv.Atoi(raw)
	if err != nil || us < 0 {
		return 0, fmt.Errorf("invalid lambda: %q", raw)
	}
	return time.Duration(us) * time.Microsecond, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
