package codec

// Broadcaster is the minimal outbound surface the miner, generator, and
// gossip worker pool need from the peer transport collaborator (§6):
// best-effort fan-out of one message to every connected peer.
type Broadcaster interface {
	Broadcast(msg Message) error
}
