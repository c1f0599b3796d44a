package codec

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// MessageType identifies the kind of gossip message, matching the
// wire-symmetric taxonomy table of spec.md §4.6.
type MessageType uint8

const (
	MsgPing MessageType = iota + 1
	MsgPong
	MsgNewBlockHashes
	MsgGetBlocks
	MsgBlocks
	MsgNewTransactionHashes
	MsgGetTransaction
	MsgTransactions
)

func (t MessageType) String() string {
	switch t {
	case MsgPing:
		return "Ping"
	case MsgPong:
		return "Pong"
	case MsgNewBlockHashes:
		return "NewBlockHashes"
	case MsgGetBlocks:
		return "GetBlocks"
	case MsgBlocks:
		return "Blocks"
	case MsgNewTransactionHashes:
		return "NewTransactionHashes"
	case MsgGetTransaction:
		return "GetTransaction"
	case MsgTransactions:
		return "Transactions"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// ErrUnknownMessageType is returned when decoding an envelope whose type
// byte does not match any entry of the taxonomy.
var ErrUnknownMessageType = fmt.Errorf("codec: unknown message type")

// Message is the gossip wire envelope. Exactly one of the payload
// fields is populated, selected by Type.
type Message struct {
	Type MessageType

	PingNonce uint32 // Ping(n)
	PongEcho  uint32 // Pong(s)

	Hashes []types.Hash256 // NewBlockHashes / GetBlocks / NewTransactionHashes / GetTransaction

	Blocks []block.Block // Blocks

	Transactions []tx.SignedTransaction // Transactions
}

// Encode appends the message's canonical wire encoding: a one-byte type
// tag followed by the type-specific payload.
func Encode(w *Writer, m Message) {
	w.WriteUint8(uint8(m.Type))
	switch m.Type {
	case MsgPing:
		w.WriteUint32(m.PingNonce)
	case MsgPong:
		w.WriteUint32(m.PongEcho)
	case MsgNewBlockHashes, MsgGetBlocks, MsgNewTransactionHashes, MsgGetTransaction:
		EncodeHashList(w, m.Hashes)
	case MsgBlocks:
		w.WriteUint32(uint32(len(m.Blocks)))
		for _, b := range m.Blocks {
			EncodeBlock(w, b)
		}
	case MsgTransactions:
		w.WriteUint32(uint32(len(m.Transactions)))
		for _, stx := range m.Transactions {
			EncodeSignedTransaction(w, stx)
		}
	}
}

// Decode reads a Message previously written by Encode.
func Decode(r *Reader) (Message, error) {
	var m Message
	typ, err := r.ReadUint8()
	if err != nil {
		return m, err
	}
	m.Type = MessageType(typ)

	switch m.Type {
	case MsgPing:
		m.PingNonce, err = r.ReadUint32()
	case MsgPong:
		m.PongEcho, err = r.ReadUint32()
	case MsgNewBlockHashes, MsgGetBlocks, MsgNewTransactionHashes, MsgGetTransaction:
		m.Hashes, err = DecodeHashList(r)
	case MsgBlocks:
		var n uint32
		if n, err = r.ReadUint32(); err != nil {
			break
		}
		if int(n) > r.Remaining() {
			return m, ErrFieldTooLarge
		}
		m.Blocks = make([]block.Block, n)
		for i := range m.Blocks {
			if m.Blocks[i], err = DecodeBlock(r); err != nil {
				break
			}
		}
	case MsgTransactions:
		var n uint32
		if n, err = r.ReadUint32(); err != nil {
			break
		}
		if int(n) > r.Remaining() {
			return m, ErrFieldTooLarge
		}
		m.Transactions = make([]tx.SignedTransaction, n)
		for i := range m.Transactions {
			if m.Transactions[i], err = DecodeSignedTransaction(r); err != nil {
				break
			}
		}
	default:
		return m, ErrUnknownMessageType
	}
	if err != nil {
		return m, err
	}
	return m, nil
}

// Marshal encodes m to a standalone byte slice.
func Marshal(m Message) []byte {
	w := NewWriter()
	Encode(w, m)
	return w.Bytes()
}

// Unmarshal decodes a standalone byte slice produced by Marshal.
func Unmarshal(data []byte) (Message, error) {
	return Decode(NewReader(data))
}
