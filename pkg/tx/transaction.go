// Package tx defines transaction types and validation.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// Transaction is the unsigned body of a transfer: a single funding input
// and an ordered list of outputs.
type Transaction struct {
	Input   Input    `json:"input"`
	Outputs []Output `json:"outputs"`
}

// Input references the single UTXO being spent. A coinbase input (genesis
// allocation) carries CoinbaseFlag and a zero PrevTxHash.
type Input struct {
	PrevTxHash      types.Hash256 `json:"prev_tx_hash"`
	PrevOutputIndex uint32        `json:"prev_output_index"`
	CoinbaseFlag    bool          `json:"coinbase_flag"`
}

// Outpoint returns the (funding_tx_hash, output_index) UTXO key this input spends.
func (in Input) Outpoint() types.Outpoint {
	return types.Outpoint{TxHash: in.PrevTxHash, Index: in.PrevOutputIndex}
}

// Output creates a new UTXO paying value to address.
type Output struct {
	Address types.Address `json:"address"`
	Value   uint64        `json:"value"`
}

// SignedTransaction pairs a Transaction with the Ed25519 signature and
// public key that authorize it. Its hash equals Hash(tx); the signature
// and public key are not covered by the hash.
type SignedTransaction struct {
	Tx        Transaction `json:"tx"`
	Signature []byte      `json:"signature"`
	PubKey    []byte      `json:"pubkey"`
}

// signedTransactionJSON hex-encodes the byte fields for JSON transport.
type signedTransactionJSON struct {
	Tx        Transaction `json:"tx"`
	Signature string      `json:"signature"`
	PubKey    string      `json:"pubkey"`
}

// MarshalJSON encodes the signed transaction with hex-encoded signature and pubkey.
func (stx SignedTransaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(signedTransactionJSON{
		Tx:        stx.Tx,
		Signature: hex.EncodeToString(stx.Signature),
		PubKey:    hex.EncodeToString(stx.PubKey),
	})
}

// UnmarshalJSON decodes a signed transaction with hex-encoded byte fields.
func (stx *SignedTransaction) UnmarshalJSON(data []byte) error {
	var j signedTransactionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	sig, err := hex.DecodeString(j.Signature)
	if err != nil {
		return err
	}
	pub, err := hex.DecodeString(j.PubKey)
	if err != nil {
		return err
	}
	stx.Tx = j.Tx
	stx.Signature = sig
	stx.PubKey = pub
	return nil
}

// Hash returns the SignedTransaction's hash: Hash(tx.SigningBytes()).
// Signature and pubkey are deliberately excluded.
func (stx SignedTransaction) Hash() types.Hash256 {
	return stx.Tx.Hash()
}

// Hash computes the transaction hash over the canonical signing bytes.
func (tx *Transaction) Hash() types.Hash256 {
	return crypto.Hash(tx.SigningBytes())
}

// SigningBytes returns the canonical byte representation used both for
// hashing and for signing. Format:
//
//	prev_tx_hash(32) | prev_output_index(4) | coinbase_flag(1) |
//	output_count(4) | [address(20) + value(8)]...
func (tx *Transaction) SigningBytes() []byte {
	var buf []byte

	buf = append(buf, tx.Input.PrevTxHash[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, tx.Input.PrevOutputIndex)
	if tx.Input.CoinbaseFlag {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = append(buf, out.Address[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, out.Value)
	}

	return buf
}
