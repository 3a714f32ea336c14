//go:build linux

package firewall

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/vishvananda/netns"

	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
)

// IPTablesExecutor applies directives with go-iptables. The iptables binary
// is resolved from PATH inside the target namespace.
type IPTablesExecutor struct{}

// NewIPTablesExecutor returns an executor backed by go-iptables.
func NewIPTablesExecutor() (*IPTablesExecutor, error) {
	return &IPTablesExecutor{}, nil
}

func (e *IPTablesExecutor) Apply(ctx context.Context, directives []rules.Directive) error {
	var errs []error

	for _, d := range directives {
		err := inNamespace(d.Namespace, func() error {
			ipt, err := iptables.New(iptables.IPFamily(iptables.ProtocolIPv4))
			if err != nil {
				return err
			}
			if d.Op == rules.OpInsert {
				return ipt.Insert(d.Table, d.Chain, 1, d.Spec...)
			}
			return ipt.DeleteIfExists(d.Table, d.Chain, d.Spec...)
		})
		if err != nil {
			logging.Warn("firewall directive failed", "directive", d.String(), "error", err)
			errs = append(errs, fmt.Errorf("%s %s: %w", d.Op, d.Chain, err))
		}
	}

	return errors.Join(errs...)
}

func (e *IPTablesExecutor) List(ctx context.Context, namespace string) (string, error) {
	var b strings.Builder

	err := inNamespace(namespace, func() error {
		ipt, err := iptables.New(iptables.IPFamily(iptables.ProtocolIPv4))
		if err != nil {
			return err
		}

		chains, err := ipt.ListChains("nat")
		if err != nil {
			return err
		}

		for _, chain := range chains {
			lines, err := ipt.List("nat", chain)
			if err != nil {
				return err
			}
			for _, line := range lines {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		return nil
	})
	if err != nil {
		return b.String(), fmt.Errorf("failed to list rules: %w", err)
	}

	return b.String(), nil
}

func (e *IPTablesExecutor) Exists(ctx context.Context, d rules.Directive) (bool, error) {
	var exists bool

	err := inNamespace(d.Namespace, func() error {
		ipt, err := iptables.New(iptables.IPFamily(iptables.ProtocolIPv4))
		if err != nil {
			return err
		}
		exists, err = ipt.Exists(d.Table, d.Chain, d.Spec...)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("check %s: %w", d.Chain, err)
	}

	return exists, nil
}

// inNamespace runs fn on a locked OS thread switched into the named network
// namespace. Child processes started by fn inherit that namespace.
func inNamespace(name string, fn func() error) error {
	if name == "" {
		return fn()
	}

	runtime.LockOSThread()

	orig, err := netns.Get()
	if err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("failed to get current namespace: %w", err)
	}
	defer orig.Close()

	target, err := netns.GetFromName(name)
	if err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("failed to open namespace %s: %w", name, err)
	}
	defer target.Close()

	if err := netns.Set(target); err != nil {
		runtime.UnlockOSThread()
		return fmt.Errorf("failed to enter namespace %s: %w", name, err)
	}

	ferr := fn()

	if err := netns.Set(orig); err != nil {
		// Leave the thread locked so the runtime discards it with the goroutine.
		logging.Error("failed to restore network namespace", "namespace", name, "error", err)
		return errors.Join(ferr, err)
	}
	runtime.UnlockOSThread()

	return ferr
}
