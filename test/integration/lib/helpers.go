package lib

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sdklib "github.com/slok/wbs/pkg/lib"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	PostgresDSN string
}

func (c *Config) defaults() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres DSN is required (WBS_INTEGRATION_POSTGRES_DSN)")
	}

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation  = "WBS_INTEGRATION"
		envPostgresDSN = "WBS_INTEGRATION_POSTGRES_DSN"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		PostgresDSN: os.Getenv(envPostgresDSN),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// UniqueCode generates a unique project code for test isolation on a shared database.
func UniqueCode(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// NewTestClient creates an SDK client on the configured PostgreSQL database.
func NewTestClient(t *testing.T, config Config) *sdklib.Client {
	t.Helper()

	client, err := sdklib.New(context.Background(), sdklib.Config{
		Storage:     sdklib.StoragePostgres,
		PostgresDSN: config.PostgresDSN,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// CleanupProject registers a cleanup function that removes a project with its tasks.
func CleanupProject(t *testing.T, client *sdklib.Client, code string) {
	t.Helper()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		// Best effort cleanup.
		_, _ = client.RemoveProject(ctx, code)
	})
}
