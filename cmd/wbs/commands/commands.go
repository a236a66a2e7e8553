package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/wbs/internal/conventions"
	"github.com/slok/wbs/internal/log"
	"github.com/slok/wbs/internal/printer"
	"github.com/slok/wbs/internal/storage"
	"github.com/slok/wbs/internal/storage/postgres"
	"github.com/slok/wbs/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"

	// StorageSQLite stores everything in a local SQLite file.
	StorageSQLite = "sqlite"
	// StoragePostgres stores everything in a PostgreSQL database.
	StoragePostgres = "postgres"

	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug       bool
	NoLog       bool
	NoColor     bool
	LoggerType  string
	Storage     string
	DBPath      string
	PostgresDSN string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and output colors.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("storage", "Selects the storage backend.").Default(StorageSQLite).EnumVar(&c.Storage, StorageSQLite, StoragePostgres)
	app.Flag("db-path", "Path to the SQLite database file.").Default(conventions.DefaultDBPath(homedir.HomeDir())).StringVar(&c.DBPath)
	app.Flag("postgres-dsn", "PostgreSQL connection string, required with postgres storage.").StringVar(&c.PostgresDSN)

	return c
}

// OpenRepository opens the selected storage backend, the returned func
// releases it.
func (c RootCommand) OpenRepository(ctx context.Context) (storage.Repository, func() error, error) {
	switch c.Storage {
	case StoragePostgres:
		if c.PostgresDSN == "" {
			return nil, nil, fmt.Errorf("postgres DSN is required with postgres storage")
		}
		repo, err := postgres.NewRepository(ctx, postgres.RepositoryConfig{
			DSN:    c.PostgresDSN,
			Logger: c.Logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create postgres repository: %w", err)
		}
		return repo, repo.Close, nil
	default:
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: c.DBPath,
			Logger: c.Logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create sqlite repository: %w", err)
		}
		return repo, repo.Close, nil
	}
}

// Printer returns the printer for an output format.
func (c RootCommand) Printer(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(c.Stdout)
	}
	return printer.NewTablePrinter(c.Stdout, !c.NoColor)
}

func addFormatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

func closeRepository(logger log.Logger, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warningf("could not close repository: %s", err)
	}
}
