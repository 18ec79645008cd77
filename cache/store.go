// Package cache stores lowered programs in a pebble database, keyed by the
// hash of their source.
package cache

import (
	"crypto/sha256"
	"errors"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/sarchlab/tapesim/inst"
)

// Option configures a Store.
type Option func(*pebble.Options)

// WithFS will open the database on the provided file system.
func WithFS(fs vfs.FS) Option {
	return func(opts *pebble.Options) {
		opts.FS = fs
	}
}

// Store is a persistent map from source hashes to programs.
type Store struct {
	db *pebble.DB
}

// Open will open or create the store in the specified directory.
func Open(dir string, opts ...Option) (*Store, error) {
	// check directory
	if dir == "" {
		panic("cache: missing directory")
	}

	// prepare options
	options := &pebble.Options{}
	for _, opt := range opts {
		opt(options)
	}

	// ensure directory
	if options.FS == nil {
		err := os.MkdirAll(dir, 0777)
		if err != nil {
			return nil, err
		}
	}

	// open db
	db, err := pebble.Open(dir, options)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Passes records the optimizer passes that produced a program. The zero
// value stands for an unoptimized program.
type Passes struct {
	Coalesce bool
	Idioms   bool
}

func (p Passes) flags() byte {
	var b byte
	if p.Coalesce {
		b |= 1
	}
	if p.Idioms {
		b |= 2
	}

	return b
}

// Key will compute the key of a source. The same source lowered after
// different passes has different keys.
func Key(src []byte, passes Passes) []byte {
	// prepare hash
	h := sha256.New()
	h.Write([]byte{Version, passes.flags()})
	h.Write(src)

	return h.Sum([]byte("prog:"))
}

// Put will write the program under the key.
func (s *Store) Put(key []byte, prog inst.Program) error {
	return s.db.Set(key, Encode(prog), pebble.Sync)
}

// Get will read the program stored under the key.
func (s *Store) Get(key []byte) (inst.Program, bool, error) {
	// get value
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	// ensure close
	defer closer.Close()

	// decode program
	prog, err := Decode(value)
	if err != nil {
		return nil, false, err
	}

	return prog, true, nil
}

// Delete will remove the program stored under the key.
func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

// Close will close the store.
func (s *Store) Close() error {
	return s.db.Close()
}
