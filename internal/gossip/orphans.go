package gossip

import (
	"sync"

	"github.com/Klingon-tech/klingnet-pow-core/pkg/block"
	"github.com/Klingon-tech/klingnet-pow-core/pkg/types"
)

// orphanBuffer holds blocks received before their parent, keyed by the
// missing parent's hash (§4.6, §9 Open Question — a map, not a flat list,
// so resolution on parent arrival is O(children) rather than O(buffer)).
type orphanBuffer struct {
	mu       sync.Mutex
	byParent map[types.Hash256][]block.Block
}

func newOrphanBuffer() *orphanBuffer {
	return &orphanBuffer{byParent: make(map[types.Hash256][]block.Block)}
}

// add buffers blk under its parent hash.
func (o *orphanBuffer) add(blk block.Block) {
	o.mu.Lock()
	defer o.mu.Unlock()
	parent := blk.Header.Parent
	o.byParent[parent] = append(o.byParent[parent], blk)
}

// take removes and returns every block buffered under parentHash, if any.
func (o *orphanBuffer) take(parentHash types.Hash256) []block.Block {
	o.mu.Lock()
	defer o.mu.Unlock()
	children, ok := o.byParent[parentHash]
	if !ok {
		return nil
	}
	delete(o.byParent, parentHash)
	return children
}
