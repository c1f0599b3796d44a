// Package p2p implements the peer transport collaborator: a libp2p host
// broadcasting gossip frames over a tx topic and a block topic, with
// DHT and mDNS discovery finding peers automatically (§6). It sits
// outside the CORE boundary — the gossip worker pool never imports it;
// this package imports the gossip package instead, satisfying
// codec.Broadcaster and feeding gossip.Inbound into a shared channel.
package p2p

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Klingon-tech/klingnet-pow-core/internal/codec"
	"github.com/Klingon-tech/klingnet-pow-core/internal/gossip"
	"github.com/Klingon-tech/klingnet-pow-core/internal/log"
	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/discovery/mdns"
	drouting "github.com/libp2p/go-libp2p/p2p/discovery/routing"
	dutil "github.com/libp2p/go-libp2p/p2p/discovery/util"
	"github.com/multiformats/go-multiaddr"
)

// Two topics split the taxonomy the way the teacher's own gossip.go
// splits BroadcastTx/BroadcastBlock: transaction traffic and block
// traffic scale differently, so each gets its own GossipSub mesh.
const (
	txTopicName    = "/klingnet-pow/tx/1.0.0"
	blockTopicName = "/klingnet-pow/block/1.0.0"
)

// rendezvous is the DHT/mDNS discovery namespace.
const rendezvous = "klingnet-pow-core"

const dhtDiscoveryInterval = 30 * time.Second

// Config holds the transport's startup settings (§6 CLI flags).
type Config struct {
	ListenAddr string   // "host:port" to listen on
	Connect    []string // peer multiaddrs to dial at startup
}

// Transport is the libp2p-backed peer transport collaborator. It
// satisfies codec.Broadcaster and produces a channel of gossip.Inbound
// for the gossip worker pool to drain.
type Transport struct {
	cfg Config

	host   host.Host
	pubsub *pubsub.PubSub

	txTopic    *pubsub.Topic
	txSub      *pubsub.Subscription
	blockTopic *pubsub.Topic
	blockSub   *pubsub.Subscription

	dht *dht.IpfsDHT

	ctx    context.Context
	cancel context.CancelFunc

	inbound chan gossip.Inbound
}

// New creates a transport that has not yet been started.
func New(cfg Config) *Transport {
	ctx, cancel := context.WithCancel(context.Background())
	return &Transport{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		inbound: make(chan gossip.Inbound, 256),
	}
}

// Start brings up the libp2p host, joins both gossip topics, starts mDNS
// and DHT discovery, and dials any explicitly configured peers.
func (t *Transport) Start() error {
	listenMA, err := listenMultiaddr(t.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("p2p listen address: %w", err)
	}

	h, err := libp2p.New(libp2p.ListenAddrs(listenMA))
	if err != nil {
		return fmt.Errorf("create libp2p host: %w", err)
	}
	t.host = h

	kadDHT, err := dht.New(t.ctx, h, dht.Mode(dht.ModeServer))
	if err != nil {
		h.Close()
		return fmt.Errorf("create kad-dht: %w", err)
	}
	t.dht = kadDHT
	if err := kadDHT.Bootstrap(t.ctx); err != nil {
		log.P2P.Warn().Err(err).Msg("dht bootstrap failed")
	}

	ps, err := pubsub.NewGossipSub(t.ctx, h)
	if err != nil {
		h.Close()
		return fmt.Errorf("create pubsub: %w", err)
	}
	t.pubsub = ps

	if t.txTopic, t.txSub, err = joinTopic(ps, txTopicName); err != nil {
		h.Close()
		return err
	}
	if t.blockTopic, t.blockSub, err = joinTopic(ps, blockTopicName); err != nil {
		h.Close()
		return err
	}

	go t.readLoop(t.txSub)
	go t.readLoop(t.blockSub)
	t.startMDNS()
	go t.runDHTDiscovery()

	for _, addr := range t.cfg.Connect {
		if err := t.Connect(t.ctx, addr); err != nil {
			log.P2P.Warn().Str("addr", addr).Err(err).Msg("initial connect failed")
		}
	}

	log.P2P.Info().Str("id", h.ID().String()).Str("listen", t.cfg.ListenAddr).Msg("p2p transport started")
	return nil
}

// Stop tears down the host and every background loop.
func (t *Transport) Stop() error {
	t.cancel()
	if t.txSub != nil {
		t.txSub.Cancel()
	}
	if t.blockSub != nil {
		t.blockSub.Cancel()
	}
	if t.dht != nil {
		t.dht.Close()
	}
	if t.host != nil {
		return t.host.Close()
	}
	return nil
}

// Broadcast publishes msg on whichever of the two topics matches its
// kind, satisfying codec.Broadcaster for the miner, generator, and
// gossip worker pool. Ping/Pong liveness traffic rides the block topic
// since a peer's mesh membership there already implies reachability.
func (t *Transport) Broadcast(msg codec.Message) error {
	topic := t.topicFor(msg.Type)
	if topic == nil {
		return fmt.Errorf("p2p transport not started")
	}
	return topic.Publish(t.ctx, codec.Marshal(msg))
}

func (t *Transport) topicFor(typ codec.MessageType) *pubsub.Topic {
	switch typ {
	case codec.MsgNewTransactionHashes, codec.MsgGetTransaction, codec.MsgTransactions:
		return t.txTopic
	default:
		return t.blockTopic
	}
}

func joinTopic(ps *pubsub.PubSub, name string) (*pubsub.Topic, *pubsub.Subscription, error) {
	topic, err := ps.Join(name)
	if err != nil {
		return nil, nil, fmt.Errorf("join topic %s: %w", name, err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe topic %s: %w", name, err)
	}
	return topic, sub, nil
}

// Connect dials a peer by multiaddr string (e.g. "/ip4/1.2.3.4/tcp/6000/p2p/Qm...").
func (t *Transport) Connect(ctx context.Context, addr string) error {
	info, err := peer.AddrInfoFromString(addr)
	if err != nil {
		return fmt.Errorf("parse peer address: %w", err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := t.host.Connect(dialCtx, *info); err != nil {
		return fmt.Errorf("connect %s: %w", info.ID, err)
	}
	return nil
}

// Inbound returns the channel the gossip worker pool should drain.
func (t *Transport) Inbound() <-chan gossip.Inbound {
	return t.inbound
}

// ID returns this node's libp2p peer ID.
func (t *Transport) ID() string {
	if t.host == nil {
		return ""
	}
	return t.host.ID().String()
}

// Addrs returns the full dialable multiaddrs of this node.
func (t *Transport) Addrs() []string {
	if t.host == nil {
		return nil
	}
	var addrs []string
	for _, a := range t.host.Addrs() {
		addrs = append(addrs, fmt.Sprintf("%s/p2p/%s", a, t.host.ID()))
	}
	return addrs
}

// readLoop drains one subscription, wrapping every non-self message into
// a gossip.Inbound fed to the worker pool's shared channel. There is no
// per-peer unicast reply channel in this transport (see DESIGN.md): a
// PeerHandle's Write re-publishes to the topic matching the reply's own
// kind, which is harmless since every gossip handler is idempotent
// against redundant delivery (Contains/FilterUnknown checks precede
// every side effect).
func (t *Transport) readLoop(sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(t.ctx)
		if err != nil {
			return
		}
		if msg.ReceivedFrom == t.host.ID() {
			continue
		}
		select {
		case t.inbound <- gossip.Inbound{Data: msg.Data, Peer: &floodPeer{t: t, id: msg.ReceivedFrom}}:
		case <-t.ctx.Done():
			return
		}
	}
}

// floodPeer implements gossip.PeerHandle by re-broadcasting on Write,
// since this transport has no addressed unicast channel.
type floodPeer struct {
	t  *Transport
	id peer.ID
}

func (p *floodPeer) Write(msg codec.Message) error { return p.t.Broadcast(msg) }
func (p *floodPeer) String() string                { return p.id.String() }

func (t *Transport) startMDNS() {
	svc := mdns.NewMdnsService(t.host, rendezvous, &discoveryNotifee{t: t})
	if err := svc.Start(); err != nil {
		log.P2P.Warn().Err(err).Msg("mdns discovery failed to start")
	}
}

type discoveryNotifee struct {
	t *Transport
}

func (d *discoveryNotifee) HandlePeerFound(pi peer.AddrInfo) {
	if pi.ID == d.t.host.ID() {
		return
	}
	ctx, cancel := context.WithTimeout(d.t.ctx, 5*time.Second)
	defer cancel()
	if err := d.t.host.Connect(ctx, pi); err != nil {
		log.P2P.Debug().Str("peer", pi.ID.String()).Err(err).Msg("mdns connect failed")
	}
}

func (t *Transport) runDHTDiscovery() {
	routingDiscovery := drouting.NewRoutingDiscovery(t.dht)
	dutil.Advertise(t.ctx, routingDiscovery, rendezvous)

	ticker := time.NewTicker(dhtDiscoveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			t.findDHTPeers(routingDiscovery)
		}
	}
}

func (t *Transport) findDHTPeers(routingDiscovery *drouting.RoutingDiscovery) {
	ctx, cancel := context.WithTimeout(t.ctx, 20*time.Second)
	defer cancel()

	peerCh, err := routingDiscovery.FindPeers(ctx, rendezvous)
	if err != nil {
		return
	}
	for pi := range peerCh {
		if pi.ID == t.host.ID() || len(pi.Addrs) == 0 {
			continue
		}
		dialCtx, dialCancel := context.WithTimeout(t.ctx, 5*time.Second)
		t.host.Connect(dialCtx, pi)
		dialCancel()
	}
}

// listenMultiaddr converts a "host:port" listen address into a TCP
// multiaddr, matching how klingnetd's --p2p flag is specified (§6).
func listenMultiaddr(hostPort string) (multiaddr.Multiaddr, error) {
	addrHost, port, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, err
	}
	if addrHost == "" {
		addrHost = "0.0.0.0"
	}
	return multiaddr.NewMultiaddr(fmt.Sprintf("/ip4/%s/tcp/%s", addrHost, port))
}
