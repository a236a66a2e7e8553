package wbs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/slok/wbs/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "wbs"
	}

	// go test changes the CWD to the test package directory, relative paths
	// would be resolved from there.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("WBS_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("wbs binary not found at %q: %w", c.Binary, err)
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "WBS_INTEGRATION"
		envBinary     = "WBS_INTEGRATION_BINARY"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary: os.Getenv(envBinary),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// RunWBSCmd runs a wbs command with the given arguments and a specific db path.
// It suppresses logging output for cleaner test output.
func RunWBSCmd(ctx context.Context, config Config, dbPath, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --no-color --db-path %s %s", dbPath, cmdArgs)
	return testutils.RunWBS(ctx, nil, config.Binary, args, true)
}

// RunWBSCmdArgs is like RunWBSCmd but preserves arguments with spaces.
func RunWBSCmdArgs(ctx context.Context, config Config, dbPath string, args ...string) (stdout, stderr []byte, err error) {
	args = append([]string{"--no-log", "--no-color", "--db-path", dbPath}, args...)
	return testutils.RunWBSArgs(ctx, nil, config.Binary, args, true)
}

// RunProjectStatus gets the status of a project in JSON format.
func RunProjectStatus(ctx context.Context, config Config, dbPath, project string) (stdout, stderr []byte, err error) {
	return RunWBSCmd(ctx, config, dbPath, fmt.Sprintf("project status %s --format json", project))
}

// RunTaskCreate creates a task in JSON format, extra args are appended as is.
func RunTaskCreate(ctx context.Context, config Config, dbPath, project, name, extra string) (stdout, stderr []byte, err error) {
	return RunWBSCmd(ctx, config, dbPath, fmt.Sprintf("task create %s %s --format json %s", project, name, extra))
}
