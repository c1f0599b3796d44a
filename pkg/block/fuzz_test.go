package block

import (
	"encoding/json"
	"testing"
)

// FuzzBlockUnmarshal tests that arbitrary JSON input does not panic when
// unmarshaled into a Block struct.
func FuzzBlockUnmarshal(f *testing.F) {
	f.Add([]byte(`{"header":{"parent":"0000000000000000000000000000000000000000000000000000000000000000","nonce":0,"difficulty":"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff","timestamp_ms":1000,"merkle_root":"0000000000000000000000000000000000000000000000000000000000000000"},"content":[]}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`null`))
	f.Add([]byte(`{"header":null}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var blk Block
		if err := json.Unmarshal(data, &blk); err != nil {
			return
		}
		blk.Hash()
		blk.ValidateMerkleRoot()
		blk.ValidatePoW()
	})
}

// FuzzHeaderUnmarshal tests that arbitrary JSON input does not panic when
// unmarshaled into a Header struct.
func FuzzHeaderUnmarshal(f *testing.F) {
	f.Add([]byte(`{"nonce":1,"timestamp_ms":1000}`))
	f.Add([]byte(`{}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var h Header
		if err := json.Unmarshal(data, &h); err != nil {
			return
		}
		h.Hash()
		h.SigningBytes()
	})
}
