// Package configstore implements the process-wide typed key/value
// registry (§3, §4.3): an ordered String->Ele map with many concurrent
// readers and a single writer. It is process-wide by design (§9) — model
// it as explicit state behind Global(), not an ambient singleton buried in
// a constructor, so tests can construct isolated stores with New().
package configstore

import (
	"sort"
	"strings"
	"sync"

	"github.com/forbearing/probing/ele"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"
)

// Store is a sharded, concurrency-safe map of configuration entries,
// iterated in lexicographic key order. The zero value is not usable;
// construct with New. It is backed by orcaman/concurrent-map the same way
// the teacher's database/helper tracks table-initialization state: reads
// and writes go through independent shard locks rather than one global
// mutex, so a write to one key never blocks a read of another.
type Store struct {
	entries cmap.ConcurrentMap[string, ele.Ele]
	log     *zap.SugaredLogger
}

// New constructs an empty, independent store. Most callers should use
// Global() instead; New is for tests and for embedding a private store
// inside an extension that wants store semantics without sharing state.
func New() *Store {
	return &Store{
		entries: cmap.New[ele.Ele](),
		log:     zap.S().Named("configstore"),
	}
}

var (
	globalOnce  sync.Once
	globalStore *Store
)

// Global returns the process-wide store, constructing it on first access.
func Global() *Store {
	globalOnce.Do(func() {
		globalStore = New()
	})
	return globalStore
}

// Get returns the value at key, or (Nil, false) if absent.
func (s *Store) Get(key string) (ele.Ele, bool) {
	return s.entries.Get(key)
}

// GetStr returns the textual rendering of the value at key, or ("", false)
// if absent.
func (s *Store) GetStr(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Set writes a value, accepting anything with a total ToEle conversion.
// Writes are never blocked by readers longer than a single insertion.
func (s *Store) Set(key string, value ele.ToEle) {
	s.SetEle(key, value.ToEle())
}

// SetEle writes an already-constructed Ele. This is the primitive Set
// builds on, and what C7's write-through path calls directly.
func (s *Store) SetEle(key string, value ele.Ele) {
	s.entries.Set(key, value)
	s.log.Debugw("config set", "key", key, "value", value.String())
}

// Remove deletes key, returning the prior value if it existed.
func (s *Store) Remove(key string) (ele.Ele, bool) {
	v, ok := s.entries.Get(key)
	if ok {
		s.entries.Remove(key)
	}
	return v, ok
}

// ContainsKey reports whether key is present.
func (s *Store) ContainsKey(key string) bool {
	return s.entries.Has(key)
}

// Keys returns all keys in lexicographic order.
func (s *Store) Keys() []string {
	keys := s.entries.Keys()
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (s *Store) Len() int { return s.entries.Count() }

// IsEmpty reports whether the store has no entries.
func (s *Store) IsEmpty() bool { return s.Len() == 0 }

// Clear removes every entry.
func (s *Store) Clear() {
	s.entries.Clear()
}

// Entry pairs a key with its value, returned by PrefixScan in lex order.
type Entry struct {
	Key   string
	Value ele.Ele
}

// PrefixScan returns every entry whose key starts with prefix, in
// lexicographic key order.
func (s *Store) PrefixScan(prefix string) []Entry {
	keys := make([]string, 0)
	for k := range s.entries.IterBuffered() {
		if strings.HasPrefix(k.Key, prefix) {
			keys = append(keys, k.Key)
		}
	}
	sort.Strings(keys)
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, _ := s.entries.Get(k)
		out = append(out, Entry{Key: k, Value: v})
	}
	return out
}

// PrefixRemove deletes every entry whose key starts with prefix, returning
// the count removed.
func (s *Store) PrefixRemove(prefix string) int {
	removed := 0
	for k := range s.entries.IterBuffered() {
		if strings.HasPrefix(k.Key, prefix) {
			s.entries.Remove(k.Key)
			removed++
		}
	}
	return removed
}
