package memory

import (
	"sync"

	"github.com/patrickmn/go-cache"
)

// Store keeps sessions and messages in process memory. Entries never expire.
// Transactions are serialized on txMu. Writes made inside a transaction are
// journaled per key, so Rollback undoes only what that transaction wrote.
type Store struct {
	txMu     sync.Mutex
	sessions *cache.Cache
	messages *cache.Cache
}

func NewStore() *Store {
	return &Store{
		sessions: cache.New(cache.NoExpiration, 0),
		messages: cache.New(cache.NoExpiration, 0),
	}
}

// undoEntry restores one key to what it held before the first write of a transaction.
type undoEntry struct {
	cache   *cache.Cache
	key     string
	prior   interface{}
	existed bool
}

func (e undoEntry) apply() {
	if e.existed {
		e.cache.Set(e.key, e.prior, cache.NoExpiration)
		return
	}
	e.cache.Delete(e.key)
}

// journal records undo entries for an open transaction. A nil journal
// records nothing, which is the case for writes outside a transaction.
type journal struct {
	entries []undoEntry
	seen    map[*cache.Cache]map[string]struct{}
}

func newJournal() *journal {
	return &journal{seen: make(map[*cache.Cache]map[string]struct{})}
}

func (j *journal) record(c *cache.Cache, key string) {
	if j == nil {
		return
	}
	keys, ok := j.seen[c]
	if !ok {
		keys = make(map[string]struct{})
		j.seen[c] = keys
	}
	if _, done := keys[key]; done {
		return
	}
	keys[key] = struct{}{}

	prior, existed := c.Get(key)
	j.entries = append(j.entries, undoEntry{cache: c, key: key, prior: prior, existed: existed})
}

func (j *journal) undo() {
	for i := len(j.entries) - 1; i >= 0; i-- {
		j.entries[i].apply()
	}
}
