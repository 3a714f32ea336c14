// Package testutil provides test utilities for integration tests
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/config"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/system"
)

// TestEnv holds the test environment
type TestEnv struct {
	T          *testing.T
	TmpDir     string
	ConfigPath string
	Paths      *config.Paths
	HostConfig *config.HostConfig
	Runner     *system.MockExecutor
	App        *app.App
	cleanup    func()
}

// NewTestEnv creates a test environment with a temporary state directory,
// a config file pointing at it and a mock command runner.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()

	hostConfig := config.Default()
	hostConfig.StateDir = filepath.Join(tmpDir, "state")

	if err := os.MkdirAll(hostConfig.StateDir, 0755); err != nil {
		t.Fatalf("Failed to create state directory: %v", err)
	}

	configPath := filepath.Join(tmpDir, "config.toml")
	f, err := os.Create(configPath)
	if err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}
	if err := toml.NewEncoder(f).Encode(hostConfig); err != nil {
		f.Close()
		t.Fatalf("Failed to write config: %v", err)
	}
	f.Close()

	runner := system.NewMockExecutor()
	system.SetDefaultExecutor(runner)

	testApp, err := app.New(
		app.WithHostConfig(hostConfig),
		app.WithRunner(runner),
	)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	originalDefault := app.Default
	app.SetDefault(testApp)

	env := &TestEnv{
		T:          t,
		TmpDir:     tmpDir,
		ConfigPath: configPath,
		Paths:      testApp.Paths,
		HostConfig: hostConfig,
		Runner:     runner,
		App:        testApp,
		cleanup: func() {
			app.SetDefault(originalDefault)
			system.ResetDefaults()
		},
	}

	return env
}

// Cleanup restores the original app and executor defaults
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// WriteTable replaces the table file contents
func (e *TestEnv) WriteTable(content string) {
	e.T.Helper()

	if err := os.WriteFile(e.Paths.TablePath, []byte(content), 0644); err != nil {
		e.T.Fatalf("Failed to write table: %v", err)
	}
}

// ReadTable returns the table file contents, or "" if it does not exist
func (e *TestEnv) ReadTable() string {
	e.T.Helper()

	data, err := os.ReadFile(e.Paths.TablePath)
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		e.T.Fatalf("Failed to read table: %v", err)
	}
	return string(data)
}

// TableExists checks if the table file exists
func (e *TestEnv) TableExists() bool {
	_, err := os.Stat(e.Paths.TablePath)
	return err == nil
}

// Entries loads the allocation table through the app's service
func (e *TestEnv) Entries() []port.Entry {
	e.T.Helper()

	entries, err := e.App.Service.Entries(context.Background())
	if err != nil {
		e.T.Fatalf("Failed to load entries: %v", err)
	}
	return entries
}
