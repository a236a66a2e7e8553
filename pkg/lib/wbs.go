package lib

import (
	"context"
	"fmt"
	"os"

	"github.com/slok/wbs/internal/conventions"
	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/storage"
	"github.com/slok/wbs/internal/storage/memory"
	"github.com/slok/wbs/internal/storage/postgres"
	"github.com/slok/wbs/internal/storage/sqlite"
)

// StorageType identifies the storage backend of the client.
type StorageType string

const (
	// StorageSQLite stores everything in a local SQLite database file.
	StorageSQLite StorageType = "sqlite"

	// StoragePostgres stores everything in a PostgreSQL database.
	StoragePostgres StorageType = "postgres"

	// StorageMemory keeps everything in memory, it's lost when the client is closed.
	// Use this for unit testing without infrastructure dependencies.
	StorageMemory StorageType = "memory"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults. At minimum, an empty
// Config{} will use ~/.wbs/wbs.db for storage.
type Config struct {
	// Storage selects the storage backend.
	// Default: [StorageSQLite], or [StoragePostgres] when PostgresDSN is set.
	Storage StorageType

	// DBPath is the SQLite database path.
	// Default: ~/.wbs/wbs.db.
	DBPath string

	// PostgresDSN is the PostgreSQL connection string.
	// Only used when Storage is [StoragePostgres].
	PostgresDSN string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Storage == "" {
		c.Storage = StorageSQLite
		if c.PostgresDSN != "" {
			c.Storage = StoragePostgres
		}
	}

	if c.Storage == StorageSQLite && c.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DBPath = conventions.DefaultDBPath(home)
	}

	if c.Storage == StoragePostgres && c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is required: %w", ErrNotValid)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for managing projects programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use, every operation runs in its own unit
// of work and is retried on conflicts with concurrent changes.
type Client struct {
	repo    storage.Repository
	logger  log.Logger
	closeFn func() error
}

// New creates a new SDK client.
//
// The caller must call [Client.Close] when done to release the database
// connection. Typically used with defer:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{logger: cfg.Logger}
	switch cfg.Storage {
	case StorageSQLite:
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: cfg.DBPath,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo, c.closeFn = repo, repo.Close
	case StoragePostgres:
		repo, err := postgres.NewRepository(ctx, postgres.RepositoryConfig{
			DSN:    cfg.PostgresDSN,
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo, c.closeFn = repo, repo.Close
	case StorageMemory:
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		if err != nil {
			return nil, fmt.Errorf("could not create repository: %w", err)
		}
		c.repo = repo
	default:
		return nil, fmt.Errorf("unsupported storage type: %s: %w", cfg.Storage, ErrNotValid)
	}

	return c, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
