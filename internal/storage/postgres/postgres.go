// Package postgres is the PostgreSQL implementation of the project and task
// repository, used when several processes share the same projects.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/model"
	"github.com/slok/wbs/internal/storage"
	"github.com/slok/wbs/internal/storage/postgres/migrations"
)

// RepositoryConfig is the configuration for the PostgreSQL repository.
type RepositoryConfig struct {
	// DSN is used to create the pool when Pool is missing.
	DSN    string
	Pool   *pgxpool.Pool
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DSN == "" && c.Pool == nil {
		return fmt.Errorf("dsn or pool is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Postgres"})
	return nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is a PostgreSQL implementation of storage.Repository.
type Repository struct {
	pool     *pgxpool.Pool
	ownsPool bool
	q        querier
	inTx     bool
	logger   log.Logger
}

var _ storage.Repository = &Repository{}

// NewRepository creates a new PostgreSQL repository and migrates its schema.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	pool, ownsPool := cfg.Pool, false
	if pool == nil {
		p, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("could not create pool: %w", err)
		}
		pool, ownsPool = p, true
	}

	closePool := func() {
		if ownsPool {
			pool.Close()
		}
	}

	if err := pool.Ping(ctx); err != nil {
		closePool()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	migrator, err := migrations.NewMigrator(migrations.MigratorConfig{Pool: pool, Logger: cfg.Logger})
	if err != nil {
		closePool()
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	if err := migrator.Up(ctx); err != nil {
		closePool()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("PostgreSQL repository initialized")

	return &Repository{pool: pool, ownsPool: ownsPool, q: pool, logger: cfg.Logger}, nil
}

// Close closes the pool when the repository created it.
func (r *Repository) Close() error {
	if r.ownsPool {
		r.pool.Close()
	}
	return nil
}

// WithinTx satisfies storage.Repository interface. Units of work run with
// serializable isolation, serialization failures are reported as conflicts.
func (r *Repository) WithinTx(ctx context.Context, fn func(ctx context.Context, repo storage.Repository) error) error {
	if r.inTx {
		return fn(ctx, r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txRepo := &Repository{pool: r.pool, q: tx, inTx: true, logger: r.logger}
	if err := fn(ctx, txRepo); err != nil {
		return conflictErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("could not commit transaction: %w", conflictErr(err))
	}

	return nil
}

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func conflictErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %w", model.ErrConflict, err)
	}
	return err
}

func constraintErr(err error, what string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return conflictErr(err)
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%s already exists: %w", what, model.ErrAlreadyExists)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s references a missing project or parent task: %w", what, model.ErrNotValid)
	case codeCheckViolation:
		return fmt.Errorf("%s has invalid values: %w", what, model.ErrNotValid)
	}
	return conflictErr(err)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
