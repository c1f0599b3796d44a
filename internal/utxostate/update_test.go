package utxostate

import (
	"testing"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/crypto"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/tx"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return key
}

func fundedState(t *testing.T, owner types.Address, amount uint64) (Set, types.Outpoint) {
	t.Helper()
	outpoint := types.Outpoint{TxHash: types.Hash256{0x01}, Index: 0}
	return Set{outpoint: Entry{Value: amount, Owner: owner}}, outpoint
}

func signedSpend(t *testing.T, key *crypto.PrivateKey, outpoint types.Outpoint, outputs ...tx.Output) tx.SignedTransaction {
	t.Helper()
	unsigned := tx.Transaction{
		Input:   tx.Input{PrevTxHash: outpoint.TxHash, PrevOutputIndex: outpoint.Index},
		Outputs: outputs,
	}
	stx, err := tx.Sign(unsigned, key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return stx
}

func TestUpdateAcceptsValidSpend(t *testing.T) {
	key := mustKey(t)
	owner := crypto.AddressFromPubKey(key.PublicKey())
	state, outpoint := fundedState(t, owner, 100)

	recipient := crypto.AddressFromPubKey(mustKey(t).PublicKey())
	stx := signedSpend(t, key, outpoint, tx.Output{Address: recipient, Value: 100})

	newState, accepted, aborted := Update(state, []tx.SignedTransaction{stx})
	if len(aborted) != 0 {
		t.Fatalf("unexpected aborts: %+v", aborted)
	}
	if len(accepted) != 1 {
		t.Fatalf("accepted = %d, want 1", len(accepted))
	}
	if _, stillPresent := newState[outpoint]; stillPresent {
		t.Fatal("spent outpoint should be removed from the new state")
	}
	newOutpoint := types.Outpoint{TxHash: stx.Hash(), Index: 0}
	entry, ok := newState[newOutpoint]
	if !ok {
		t.Fatal("expected a new utxo for the transaction's output")
	}
	if entry.Value != 100 || entry.Owner != recipient {
		t.Fatalf("new entry = %+v, want value 100 owner %s", entry, recipient)
	}
	// stateIn must not be mutated.
	if _, stillThere := state[outpoint]; !stillThere {
		t.Fatal("Update must not mutate its input state")
	}
}

func TestUpdateDoubleSpendWithinBatchAcceptsExactlyOne(t *testing.T) {
	key := mustKey(t)
	owner := crypto.AddressFromPubKey(key.PublicKey())
	state, outpoint := fundedState(t, owner, 100)
	recipient := crypto.AddressFromPubKey(mustKey(t).PublicKey())

	first := signedSpend(t, key, outpoint, tx.Output{Address: recipient, Value: 50})
	second := signedSpend(t, key, outpoint, tx.Output{Address: recipient, Value: 60})

	_, accepted, aborted := Update(state, []tx.SignedTransaction{first, second})
	if len(accepted) != 1 {
		t.Fatalf("accepted = %d, want exactly 1", len(accepted))
	}
	if len(aborted) != 1 {
		t.Fatalf("aborted = %d, want exactly 1", len(aborted))
	}
	if accepted[0].Hash() != first.Hash() {
		t.Fatal("expected the first tx in order to win the double-spend race")
	}
	if aborted[0].Err != ErrUnknownUTXO {
		t.Fatalf("abort reason = %v, want ErrUnknownUTXO", aborted[0].Err)
	}
}

func TestUpdateChainedSpendWithinBatch(t *testing.T) {
	key := mustKey(t)
	owner := crypto.AddressFromPubKey(key.PublicKey())
	state, outpoint := fundedState(t, owner, 100)

	middleKey := mustKey(t)
	middleAddr := crypto.AddressFromPubKey(middleKey.PublicKey())
	final := crypto.AddressFromPubKey(mustKey(t).PublicKey())

	first := signedSpend(t, key, outpoint, tx.Output{Address: middleAddr, Value: 100})
	secondOutpoint := types.Outpoint{TxHash: first.Hash(), Index: 0}
	second := signedSpend(t, middleKey, secondOutpoint, tx.Output{Address: final, Value: 100})

	_, accepted, aborted := Update(state, []tx.SignedTransaction{first, second})
	if len(aborted) != 0 {
		t.Fatalf("unexpected aborts: %+v", aborted)
	}
	if len(accepted) != 2 {
		t.Fatalf("accepted = %d, want 2 (second tx spends first tx's output in the same batch)", len(accepted))
	}
}

func TestUpdateSignatureMismatchAborts(t *testing.T) {
	ownerKey := mustKey(t)
	wrongKey := mustKey(t)
	owner := crypto.AddressFromPubKey(ownerKey.PublicKey())
	state, outpoint := fundedState(t, owner, 100)
	recipient := crypto.AddressFromPubKey(mustKey(t).PublicKey())

	unsigned := tx.Transaction{
		Input:   tx.Input{PrevTxHash: outpoint.TxHash, PrevOutputIndex: outpoint.Index},
		Outputs: []tx.Output{{Address: recipient, Value: 100}},
	}
	sig, err := wrongKey.Sign(unsigned.SigningBytes())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	stx := tx.SignedTransaction{Tx: unsigned, Signature: sig, PubKey: ownerKey.PublicKey()}

	_, accepted, aborted := Update(state, []tx.SignedTransaction{stx})
	if len(accepted) != 0 {
		t.Fatalf("accepted = %d, want 0", len(accepted))
	}
	if len(aborted) != 1 || aborted[0].Err != ErrBadSignature {
		t.Fatalf("aborted = %+v, want exactly one ErrBadSignature", aborted)
	}
}

func TestUpdateOwnerMismatchAborts(t *testing.T) {
	ownerKey := mustKey(t)
	attackerKey := mustKey(t)
	owner := crypto.AddressFromPubKey(ownerKey.PublicKey())
	state, outpoint := fundedState(t, owner, 100)
	recipient := crypto.AddressFromPubKey(mustKey(t).PublicKey())

	// Correctly signed by the attacker, but the outpoint is owned by someone else.
	stx := signedSpend(t, attackerKey, outpoint, tx.Output{Address: recipient, Value: 100})

	_, accepted, aborted := Update(state, []tx.SignedTransaction{stx})
	if len(accepted) != 0 {
		t.Fatalf("accepted = %d, want 0", len(accepted))
	}
	if len(aborted) != 1 || aborted[0].Err != ErrOwnerMismatch {
		t.Fatalf("aborted = %+v, want exactly one ErrOwnerMismatch", aborted)
	}
}

func TestUpdateUnknownUtxoAborts(t *testing.T) {
	key := mustKey(t)
	recipient := crypto.AddressFromPubKey(mustKey(t).PublicKey())
	stx := signedSpend(t, key, types.Outpoint{TxHash: types.Hash256{0x99}, Index: 3}, tx.Output{Address: recipient, Value: 1})

	_, accepted, aborted := Update(Set{}, []tx.SignedTransaction{stx})
	if len(accepted) != 0 {
		t.Fatalf("accepted = %d, want 0", len(accepted))
	}
	if len(aborted) != 1 || aborted[0].Err != ErrUnknownUTXO {
		t.Fatalf("aborted = %+v, want exactly one ErrUnknownUTXO", aborted)
	}
}

func TestGenesisSetICOAllocation(t *testing.T) {
	var addrs [3]types.Address
	for i := range addrs {
		addrs[i] = crypto.AddressFromPubKey(mustKey(t).PublicKey())
	}

	set := GenesisSet(addrs, 10_000)
	if len(set) != 3 {
		t.Fatalf("genesis set has %d entries, want 3", len(set))
	}
	for i, addr := range addrs {
		outpoint := types.Outpoint{TxHash: types.Hash256{}, Index: uint32(i)}
		entry, ok := set[outpoint]
		if !ok {
			t.Fatalf("missing genesis entry for index %d", i)
		}
		if entry.Value != 10_000 || entry.Owner != addr {
			t.Fatalf("entry %d = %+v, want value 10000 owner %s", i, entry, addr)
		}
	}
}
