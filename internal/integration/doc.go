// Package integration runs the proxy service against real iptables inside a
// throwaway network namespace.
//
// Integration tests are skipped unless SSHPROXY_INTEGRATION_TESTS is set.
// They also need root (or CAP_NET_ADMIN and CAP_SYS_ADMIN) and an iptables
// binary on PATH.
//
//	func TestMyIntegration(t *testing.T) {
//	    h := integration.NewHarness(t) // Skips if env var not set
//
//	    port, err := h.Service().Create(ctx, "10.0.0.5", 0)
//	    // Inspect h.Rules(), h.Entries()...
//	}
//
// The namespace and its rules disappear when the test ends, so the host
// firewall is never touched.
//
//	SSHPROXY_INTEGRATION_TESTS=1 sudo -E go test -v ./internal/integration/...
package integration
