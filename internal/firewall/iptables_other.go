//go:build !linux

package firewall

import (
	"context"
	"fmt"
	"runtime"

	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
)

// IPTablesExecutor is only available on Linux.
type IPTablesExecutor struct{}

// NewIPTablesExecutor reports that the backend is unsupported.
func NewIPTablesExecutor() (*IPTablesExecutor, error) {
	return nil, fmt.Errorf("iptables backend is not supported on %s", runtime.GOOS)
}

func (e *IPTablesExecutor) Apply(ctx context.Context, directives []rules.Directive) error {
	return fmt.Errorf("iptables backend is not supported on %s", runtime.GOOS)
}

func (e *IPTablesExecutor) List(ctx context.Context, namespace string) (string, error) {
	return "", fmt.Errorf("iptables backend is not supported on %s", runtime.GOOS)
}

func (e *IPTablesExecutor) Exists(ctx context.Context, d rules.Directive) (bool, error) {
	return false, fmt.Errorf("iptables backend is not supported on %s", runtime.GOOS)
}
