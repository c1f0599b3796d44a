package storage

// PrefixDB namespaces a DB by prepending a fixed prefix to every key, so
// the keystore's records cannot collide with anything else kept in the
// same backing store.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB wraps inner, scoping every operation under prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return &PrefixDB{inner: inner, prefix: p}
}

func (p *PrefixDB) prefixed(key []byte) []byte {
	out := make([]byte, len(p.prefix)+len(key))
	copy(out, p.prefix)
	copy(out[len(p.prefix):], key)
	return out
}

// Get retrieves a value by key.
func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(p.prefixed(key))
}

// Put stores a key-value pair.
func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(p.prefixed(key), value)
}

// Has checks if a key exists.
func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(p.prefixed(key))
}

// NewBatch stages prefixed writes on the inner DB's atomic batch.
func (p *PrefixDB) NewBatch() Batch {
	return &prefixBatch{inner: p.inner.NewBatch(), prefix: p.prefix}
}

// Close closes the backing store. A PrefixDB is the only handle its
// owner keeps, so closing the view closes the store.
func (p *PrefixDB) Close() error {
	return p.inner.Close()
}

type prefixBatch struct {
	inner  Batch
	prefix []byte
}

func (pb *prefixBatch) Put(key, value []byte) error {
	out := make([]byte, len(pb.prefix)+len(key))
	copy(out, pb.prefix)
	copy(out[len(pb.prefix):], key)
	return pb.inner.Put(out, value)
}

func (pb *prefixBatch) Commit() error {
	return pb.inner.Commit()
}
