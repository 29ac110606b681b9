// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/labthesis/thesis-engine/pkg/types"
)

// Store persists one feature vector per lab, keyed by lab slug.
type Store interface {
	// Put replaces the vector of a lab atomically.
	Put(ctx context.Context, slug string, vec types.FeatureVector) error
	// Get returns the vector of a lab. ok is false when the lab has none.
	Get(ctx context.Context, slug string) (vec types.FeatureVector, ok bool, err error)
	// All returns every stored vector keyed by slug.
	All(ctx context.Context) (map[string]types.FeatureVector, error)
	Close() error
}

const keyPrefix = "lab/"

func labKey(slug string) []byte { return []byte(keyPrefix + slug) }

// BadgerStore is a Store backed by BadgerDB. Every Put is a single
// transaction, so readers observe either the old or the new vector.
type BadgerStore struct {
	db     *badger.DB
	dim    int
	logger *slog.Logger
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any) {
	bl.logger.Error(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLogger) Warningf(msg string, items ...any) {
	bl.logger.Warn(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLogger) Infof(msg string, items ...any) {
	bl.logger.Debug(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

func (bl *badgerLogger) Debugf(msg string, items ...any) {
	bl.logger.Debug(strings.TrimSpace(fmt.Sprintf(msg, items...)))
}

// OpenBadgerStore opens the store in dir, creating it if needed. An empty
// dir opens an in-memory store. dim is the vector dimension enforced on Put.
func OpenBadgerStore(dir string, dim int, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dim <= 0 {
		dim = DefaultDimension
	}

	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating feature store directory: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening feature store: %w", err)
	}
	return &BadgerStore{db: db, dim: dim, logger: logger}, nil
}

// Dimension returns the enforced vector dimension.
func (s *BadgerStore) Dimension() int { return s.dim }

func (s *BadgerStore) Put(ctx context.Context, slug string, vec types.FeatureVector) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrStoreClosed
	}
	if slug == "" {
		return &types.ValidationError{Param: "lab", Value: slug}
	}
	if len(vec) != s.dim {
		return fmt.Errorf("lab %s: %w: got %d, want %d", slug, ErrDimensionMismatch, len(vec), s.dim)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(labKey(slug), encodeVector(vec))
	})
	if err != nil {
		return fmt.Errorf("storing vector for %s: %w", slug, err)
	}
	return nil
}

func (s *BadgerStore) Get(ctx context.Context, slug string) (types.FeatureVector, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.db.IsClosed() {
		return nil, false, ErrStoreClosed
	}
	var vec types.FeatureVector
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(labKey(slug))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec, err = decodeVector(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading vector for %s: %w", slug, err)
	}
	return vec, true, nil
}

func (s *BadgerStore) All(ctx context.Context) (map[string]types.FeatureVector, error) {
	if s.db.IsClosed() {
		return nil, ErrStoreClosed
	}
	out := make(map[string]types.FeatureVector)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			slug := strings.TrimPrefix(string(item.Key()), keyPrefix)
			err := item.Value(func(val []byte) error {
				vec, err := decodeVector(val)
				if err != nil {
					return fmt.Errorf("lab %s: %w", slug, err)
				}
				out[slug] = vec
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing vectors: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// encodeVector writes vec as little-endian float32 values.
func encodeVector(vec types.FeatureVector) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(b []byte) (types.FeatureVector, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector blob of %d bytes", len(b))
	}
	vec := make(types.FeatureVector, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return vec, nil
}
