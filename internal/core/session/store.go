// Package session keeps the per-browser UI component state between requests.
// Values are opaque bytes; callers decide the encoding.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when no state exists for the session.
var ErrNotFound = errors.New("session not found")

// Store persists component state keyed by session id.
type Store interface {
	Get(ctx context.Context, id string) ([]byte, error)
	Set(ctx context.Context, id string, data []byte) error
	Delete(ctx context.Context, id string) error
	// Lock serializes requests for one session. It returns domain.ErrBusy
	// when another request holds the lock.
	Lock(ctx context.Context, id string) (unlock func(), err error)
	Close() error
}

// Options configures a Store.
type Options struct {
	Backend   string        // "memory" or "redis"
	Addr      string        // Redis address (host:port)
	Password  string        // Redis password
	DB        int           // Redis database index
	Namespace string        // key prefix
	TTL       time.Duration // idle lifetime of a session's state
	LockTTL   time.Duration // upper bound for a held request lock
}

// NewID returns a fresh, unguessable session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Open creates the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Namespace == "" {
		opts.Namespace = "profile-web"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 30 * time.Second
	}

	switch opts.Backend {
	case "redis":
		return Connect(ctx, opts)
	case "", "memory":
		return NewMemoryStore(opts.TTL), nil
	default:
		return nil, errors.New("unknown session backend: " + opts.Backend)
	}
}
