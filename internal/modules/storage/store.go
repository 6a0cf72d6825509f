package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Store is the platform key-value store the Service translates onto.
type Store interface {
	// Get returns the raw value stored under key, or nil with no error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key the store holds for this client.
	Clear(ctx context.Context) error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Options selects and configures a Store backend.
type Options struct {
	Driver    string
	Path      string // file backend directory
	DSN       string // sql backends
	Namespace string // sql backends: one namespace per device/profile
}

// Open builds the backend named by opts.Driver. The returned close func releases any
// connection pool and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(opts.Driver) {
	case DriverMemory:
		return NewMemoryStore(), noop, nil

	case DriverFile, "":
		store, err := NewFileStore(opts.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case DriverPostgres:
		db, err := sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, noop, errors.Wrap(err, "open postgres")
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, errors.Wrap(err, "ping postgres")
		}
		return NewPostgresStore(db, opts.Namespace), db.Close, nil

	case DriverMySQL:
		db, err := sqlx.ConnectContext(ctx, "mysql", opts.DSN)
		if err != nil {
			return nil, noop, errors.Wrap(err, "connect mysql")
		}
		return NewMySQLStore(db, opts.Namespace), db.Close, nil

	default:
		return nil, noop, errors.Errorf("unknown storage driver %q", opts.Driver)
	}
}
