package app

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firefly-engineering/sshproxy-ctl/internal/config"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/firewall"
	"github.com/firefly-engineering/sshproxy-ctl/internal/store"
	"github.com/firefly-engineering/sshproxy-ctl/internal/system"
)

func testConfig(t *testing.T) *config.HostConfig {
	t.Helper()
	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	return cfg
}

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(WithHostConfig(cfg), WithRunner(system.NewMockExecutor()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if a.HostConfig != cfg {
		t.Error("WithHostConfig did not set host config")
	}
	if a.Paths == nil || a.Paths.TablePath != filepath.Join(cfg.StateDir, config.DefaultTableFile) {
		t.Errorf("Paths = %+v", a.Paths)
	}
	if a.Store == nil || a.Audit == nil || a.Executor == nil || a.Service == nil {
		t.Error("dependencies should be initialized")
	}
	if _, ok := a.Executor.(*firewall.CommandExecutor); !ok {
		t.Errorf("Executor = %T, want *firewall.CommandExecutor", a.Executor)
	}
}

func TestNew_WithPaths(t *testing.T) {
	dir := t.TempDir()
	customPaths := &config.Paths{
		StateDir:  dir,
		TablePath: filepath.Join(dir, "custom.txt"),
		LockPath:  filepath.Join(dir, "custom.lock"),
		AuditPath: filepath.Join(dir, "custom.jsonl"),
	}

	a, err := New(WithHostConfig(testConfig(t)), WithPaths(customPaths))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if a.Paths != customPaths {
		t.Error("WithPaths did not set custom paths")
	}
	fs, ok := a.Store.(*store.FileStore)
	if !ok || fs.Path() != customPaths.TablePath || fs.LockPath() != customPaths.LockPath {
		t.Errorf("Store not built from custom paths: %+v", a.Store)
	}
}

func TestNew_WithExecutor(t *testing.T) {
	var out bytes.Buffer
	exec := &firewall.PrintExecutor{Out: &out}

	a, err := New(WithHostConfig(testConfig(t)), WithExecutor(exec))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if a.Executor != exec {
		t.Error("WithExecutor did not set executor")
	}
}

func TestNew_DryRun(t *testing.T) {
	var out bytes.Buffer
	mock := system.NewMockExecutor()

	a, err := New(WithHostConfig(testConfig(t)), WithRunner(mock), WithDryRun(true, &out))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	p, err := a.Service.Create(context.Background(), "10.0.0.5", 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p != config.DefaultStartPort {
		t.Errorf("port = %d, want %d", p, config.DefaultStartPort)
	}

	if len(mock.Commands) != 0 {
		t.Errorf("dry run executed %d commands", len(mock.Commands))
	}
	if !strings.Contains(out.String(), "--dport 3100") {
		t.Errorf("dry run output = %q", out.String())
	}
}

func TestNew_ServiceUsesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.StartPort = 5000
	cfg.Namespace = "qrouter-1"
	mock := system.NewMockExecutor()

	a, err := New(WithHostConfig(cfg), WithRunner(mock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	p, err := a.Service.Create(context.Background(), "10.0.0.5", 0)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p != 5000 {
		t.Errorf("port = %d, want 5000", p)
	}

	last, ok := mock.LastCommand()
	if !ok || last.Name != "ip" {
		t.Errorf("last command = %v, want namespaced ip netns exec", last)
	}
}

func TestNew_InvalidBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backend = "pf"

	_, err := New(WithHostConfig(cfg))
	if !errors.HasCode(err, errors.ExitConfigError) {
		t.Errorf("err = %v, want ConfigError", err)
	}
}

func TestSetDefault(t *testing.T) {
	a, err := New(WithHostConfig(testConfig(t)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	SetDefault(a)
	if Default != a {
		t.Error("SetDefault did not set Default")
	}

	ResetDefault()
	if Default != nil {
		t.Error("ResetDefault did not clear Default")
	}
}

func TestApp_Runner(t *testing.T) {
	mock := system.NewMockExecutor()
	a, err := New(WithHostConfig(testConfig(t)), WithRunner(mock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if a.Runner() != mock {
		t.Error("Runner() should return the configured runner")
	}

	b, err := New(WithHostConfig(testConfig(t)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Runner() == nil {
		t.Error("Runner() should fall back to the default executor")
	}
}
