package conventions

import "path/filepath"

const (
	// DefaultDataDir is the default wbs data directory name (relative to home).
	DefaultDataDir = ".wbs"
	// DBFile is the SQLite database filename inside the data directory.
	DBFile = "wbs.db"
	// PlanFileExtension is the extension of project plan files.
	PlanFileExtension = ".yaml"
)

// DBPath returns the SQLite database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// DefaultDBPath returns the default SQLite database path for a home directory.
func DefaultDBPath(homeDir string) string {
	return DBPath(filepath.Join(homeDir, DefaultDataDir))
}
