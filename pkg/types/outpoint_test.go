package types

import (
	"strings"
	"testing"
)

func TestOutpoint_String(t *testing.T) {
	o := Outpoint{
		TxHash: Hash256{0xab},
		Index:  3,
	}
	s := o.String()

	if !strings.HasPrefix(s, "ab") {
		t.Errorf("String() should start with tx hash hex, got %s", s)
	}
	if !strings.HasSuffix(s, ":3") {
		t.Errorf("String() should end with ':3', got %s", s)
	}

	var zero Outpoint
	zs := zero.String()
	if !strings.HasSuffix(zs, ":0") {
		t.Errorf("zero Outpoint String() should end with ':0', got %s", zs)
	}
}

func TestOutpoint_Equality(t *testing.T) {
	a := Outpoint{TxHash: Hash256{0x01}, Index: 0}
	b := Outpoint{TxHash: Hash256{0x01}, Index: 0}
	c := Outpoint{TxHash: Hash256{0x01}, Index: 1}

	if a != b {
		t.Error("outpoints with identical fields should be equal")
	}
	if a == c {
		t.Error("outpoints with different indexes should not be equal")
	}
}
