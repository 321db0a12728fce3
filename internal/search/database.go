package search

import (
	"sync"

	"github.com/google/uuid"

	"github.com/chromabeam/engine/internal/fingerprint"
)

// Database maps key identifiers to their fingerprint sequences. It is the
// single mutable resource queries read from; a sync.RWMutex is Go's answer
// to the borrow-checker invariant the original implementation enforced at
// compile time ("a query borrows the database read-only for its lifetime,
// the database must not be mutated while a query is live") — Insert takes
// the write lock, NewQuery takes the read lock and holds it until the
// returned Query is finalized.
type Database struct {
	cfg DatabaseConfig
	mu  sync.RWMutex
	seq map[uuid.UUID][]fingerprint.Fingerprint
}

// NewDatabase validates cfg and returns an empty Database.
func NewDatabase(cfg DatabaseConfig) (*Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Database{
		cfg: cfg,
		seq: make(map[uuid.UUID][]fingerprint.Fingerprint),
	}, nil
}

// Insert replaces the fingerprint sequence registered under id. An empty
// sequence is valid and not an error (spec.md §7).
func (db *Database) Insert(id uuid.UUID, seq []fingerprint.Fingerprint) {
	db.mu.Lock()
	defer db.mu.Unlock()
	cp := make([]fingerprint.Fingerprint, len(seq))
	copy(cp, seq)
	db.seq[id] = cp
}

// Len reports how many fingerprints are registered under id, or 0 if id is
// not registered.
func (db *Database) Len(id uuid.UUID) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.seq[id])
}

// NewQuery opens a streaming query over the database's current contents. It
// takes a read lock that is held until Finalize is called, so the database
// must not be mutated for the lifetime of any open query.
func (db *Database) NewQuery() *Query {
	db.mu.RLock()
	keys := make(map[uuid.UUID][]fingerprint.Fingerprint, len(db.seq))
	for id, s := range db.seq {
		keys[id] = s
	}
	return &Query{
		db:    db,
		keys:  keys,
		beams: make(map[uuid.UUID][]scoredBeam, len(keys)),
	}
}
