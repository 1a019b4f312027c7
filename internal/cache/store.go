// Package cache keeps rendered explanations keyed by a hash of their input.
//
// Three backends share the Store interface: an in-process map, Redis and a
// SQLite file. A cache is an optimisation only; callers treat every error as
// a miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/njchilds90/intsteps/internal/config"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Key derives a stable cache key from a namespace and the request parts.
// Parts are length-prefixed so ("ab","c") and ("a","bc") differ.
func Key(namespace string, parts ...[]byte) string {
	d := xxhash.New()
	for _, p := range parts {
		fmt.Fprintf(d, "%d:", len(p))
		d.Write(p)
	}
	return fmt.Sprintf("%s:%016x", namespace, d.Sum64())
}

// New builds the backend selected by cfg. BackendNone yields a nil Store.
func New(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendNone, "":
		return nil, nil
	case config.BackendMemory:
		return NewMemory(cfg.TTL), nil
	case config.BackendRedis:
		return NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			WithTTL(cfg.TTL), WithPrefix(cfg.Redis.Prefix)), nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLite.Path, cfg.TTL)
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

func expired(at time.Time, now time.Time) bool {
	return !at.IsZero() && !now.Before(at)
}
