// Package keyspace implements the in-memory store: 16 numbered databases,
// each mapping a byte-string key to a byte-string value with an optional
// absolute-millisecond expiry deadline.
package keyspace

import "sync"

// NumDatabases is the number of logical databases the store exposes.
// Only database 0 is reachable from the command surface today.
const NumDatabases = 16

type storedValue struct {
	value     []byte
	hasExpire bool
	expireMs  int64
}

// Store is the process-wide collection of databases. The single-threaded
// event loop is the only writer during normal operation, but Store is
// guarded by a mutex anyway so every method, Snapshot included, sees a
// consistent point-in-time view without racing another caller.
type Store struct {
	mu  sync.Mutex
	dbs [NumDatabases]map[string]storedValue

	// OnExpire, if set, is called once for every key the store evicts
	// lazily on read. It must not call back into the Store.
	OnExpire func()
}

// New returns a Store with all databases empty.
func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	for i := range s.dbs {
		s.dbs[i] = make(map[string]storedValue)
	}
}

// Clock lets callers (the connection layer, tests) supply the notion of
// "now" instead of wiring time.Now() into every comparison.
type Clock func() int64

// Get returns the value for key in db, and whether it was present and not
// expired. An expired entry is removed as a side effect (lazy eviction).
func (s *Store) Get(db int, key []byte, now Clock) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.dbs[db]
	sv, ok := m[string(key)]
	if !ok {
		return nil, false
	}
	if sv.hasExpire && sv.expireMs < now() {
		delete(m, string(key))
		if s.OnExpire != nil {
			s.OnExpire()
		}
		return nil, false
	}
	return sv.value, true
}

// Exists reports whether key is present and unexpired in db, without
// returning its value.
func (s *Store) Exists(db int, key []byte, now Clock) bool {
	_, ok := s.Get(db, key, now)
	return ok
}

// SetOptions controls the optional behavior of Set, mirroring the SET
// command's option grammar.
type SetOptions struct {
	OnlyIfExists    bool // XX
	OnlyIfNotExists bool // NX
	HasExpire       bool
	ExpireMs        int64
	KeepTTL         bool
}

// Set stores value for key in db according to opts. It returns false
// without modifying anything when an NX/XX precondition fails.
func (s *Store) Set(db int, key, value []byte, opts SetOptions, now Clock) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.dbs[db]
	existing, exists := m[string(key)]
	if exists && existing.hasExpire && existing.expireMs < now() {
		exists = false
	}

	if opts.OnlyIfNotExists && exists {
		return false
	}
	if opts.OnlyIfExists && !exists {
		return false
	}

	sv := storedValue{value: value}
	switch {
	case opts.HasExpire:
		sv.hasExpire = true
		sv.expireMs = opts.ExpireMs
	case opts.KeepTTL && exists:
		sv.hasExpire = existing.hasExpire
		sv.expireMs = existing.expireMs
	}
	m[string(key)] = sv
	return true
}

// LoadEntry inserts a key/value/expiry triple directly, bypassing the SET
// option grammar. Used by the snapshot bootstrap loader.
func (s *Store) LoadEntry(db int, key, value []byte, hasExpire bool, expireMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dbs[db][string(key)] = storedValue{value: value, hasExpire: hasExpire, expireMs: expireMs}
}

// Clear empties every database, used before a snapshot load replaces the
// current contents rather than merging into them.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Snapshot returns a shallow, point-in-time copy of every database's
// entries, the copy-on-write-style substitute for fork() used by the
// periodic snapshot writer.
func (s *Store) Snapshot() [NumDatabases]map[string]SnapshotEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out [NumDatabases]map[string]SnapshotEntry
	for i, m := range s.dbs {
		cp := make(map[string]SnapshotEntry, len(m))
		for k, v := range m {
			cp[k] = SnapshotEntry{Value: v.value, HasExpire: v.hasExpire, ExpireMs: v.expireMs}
		}
		out[i] = cp
	}
	return out
}

// SnapshotEntry is one database entry as handed to the snapshot writer.
type SnapshotEntry struct {
	Value     []byte
	HasExpire bool
	ExpireMs  int64
}
