//go:build linux

package integration

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/vishvananda/netns"

	"github.com/firefly-engineering/sshproxy-ctl/internal/app"
	"github.com/firefly-engineering/sshproxy-ctl/internal/config"
	"github.com/firefly-engineering/sshproxy-ctl/internal/port"
	"github.com/firefly-engineering/sshproxy-ctl/internal/proxy"
)

// EnvVar enables integration tests when set to a non-empty value.
const EnvVar = "SSHPROXY_INTEGRATION_TESTS"

// TestHarness owns a named network namespace and an app whose iptables
// backend targets it.
type TestHarness struct {
	t         *testing.T
	namespace string
	app       *app.App
}

// NewHarness creates a new test harness.
// It skips the test if SSHPROXY_INTEGRATION_TESTS is not set or the process
// cannot create namespaces.
func NewHarness(t *testing.T) *TestHarness {
	t.Helper()

	if os.Getenv(EnvVar) == "" {
		t.Skipf("integration tests disabled (set %s=1 to enable)", EnvVar)
	}
	if os.Geteuid() != 0 {
		t.Skip("integration tests need root to create network namespaces")
	}

	name := fmt.Sprintf("sshproxy-test-%d", os.Getpid())
	if err := createNamespace(name); err != nil {
		t.Skipf("failed to create network namespace: %v", err)
	}

	h := &TestHarness{t: t, namespace: name}
	t.Cleanup(h.Cleanup)

	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	cfg.Backend = "iptables"
	cfg.Namespace = name

	a, err := app.New(app.WithHostConfig(cfg))
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	h.app = a

	return h
}

// createNamespace creates a named namespace without leaving the calling
// thread inside it.
func createNamespace(name string) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	origin, err := netns.Get()
	if err != nil {
		return err
	}
	defer origin.Close()

	ns, err := netns.NewNamed(name)
	if err != nil {
		return err
	}
	ns.Close()

	return netns.Set(origin)
}

// Namespace returns the name of the harness namespace.
func (h *TestHarness) Namespace() string {
	return h.namespace
}

// App returns the app wired to the harness namespace.
func (h *TestHarness) App() *app.App {
	return h.app
}

// Service returns the proxy service under test.
func (h *TestHarness) Service() *proxy.Service {
	return h.app.Service
}

// Entries returns the current table contents.
func (h *TestHarness) Entries() []port.Entry {
	h.t.Helper()

	entries, err := h.app.Service.Entries(context.Background())
	if err != nil {
		h.t.Fatalf("Entries failed: %v", err)
	}
	return entries
}

// Rules returns the nat table listing of the namespace.
func (h *TestHarness) Rules() string {
	h.t.Helper()

	out, err := h.app.Service.List(context.Background())
	if err != nil {
		h.t.Fatalf("List failed: %v", err)
	}
	return out
}

// HasRule reports whether the nat listing contains every fragment.
func (h *TestHarness) HasRule(fragments ...string) bool {
	for _, line := range strings.Split(h.Rules(), "\n") {
		match := true
		for _, f := range fragments {
			if !strings.Contains(line, f) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Cleanup removes the namespace and with it every rule the test created.
func (h *TestHarness) Cleanup() {
	if err := netns.DeleteNamed(h.namespace); err != nil {
		h.t.Logf("Warning: failed to delete namespace %s: %v", h.namespace, err)
	}
}
