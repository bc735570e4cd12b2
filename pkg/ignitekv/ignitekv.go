// Package ignitekv is the store's public, embeddable API. It wraps
// internal/engine behind a small surface — Open, Get, Set, Remove, Compact,
// Close — so callers outside this module never touch segment files, the
// index, or recovery directly.
package ignitekv

import (
	"github.com/ignitekv/ignite/internal/engine"
	"github.com/ignitekv/ignite/pkg/options"
)

// Store is a single, exclusively-owned handle on a store directory. It is
// not safe for concurrent use: the contract is single-threaded, matching
// the underlying engine.
type Store struct {
	engine *engine.Engine
}

// Open creates the store directory if absent, recovers its index from any
// existing segments, and returns a ready-to-use Store.
//
//	store, err := ignitekv.Open(
//	    options.WithDataDir("/var/lib/ignitekv"),
//	)
func Open(optFns ...options.OptionFunc) (*Store, error) {
	opts := &options.Options{}
	options.WithDefaultOptions()(opts)
	for _, fn := range optFns {
		fn(opts)
	}

	eng, err := engine.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{engine: eng}, nil
}

// Get returns the value most recently set for key. found is false if key is
// not currently live — this is not an error condition.
func (s *Store) Get(key string) (value string, found bool, err error) {
	return s.engine.Get(key)
}

// Set records that key now maps to value, superseding any prior value.
func (s *Store) Set(key, value string) error {
	return s.engine.Set(key, value)
}

// Remove deletes key. It returns a kverrors.ErrKeyNotFound-wrapped error
// (checkable with errors.Is) if key is not currently live.
func (s *Store) Remove(key string) error {
	return s.engine.Remove(key)
}

// Compact forces the synchronous compaction procedure to run immediately,
// regardless of the configured uncompacted-byte threshold. The engine also
// triggers this automatically from Set; exposing it lets callers compact on
// their own schedule (e.g. before a clean shutdown) instead of only
// reactively.
func (s *Store) Compact() error {
	return s.engine.Compact()
}

// Close flushes and closes every open segment file handle. The store must
// not be used after Close returns.
func (s *Store) Close() error {
	return s.engine.Close()
}
