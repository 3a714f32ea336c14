package firewall

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/rules"
	"github.com/firefly-engineering/sshproxy-ctl/internal/system"
)

// Backend names accepted by New.
const (
	BackendExec     = "exec"
	BackendIPTables = "iptables"
)

// Executor applies directives and lists the current NAT rules.
type Executor interface {
	Apply(ctx context.Context, directives []rules.Directive) error
	List(ctx context.Context, namespace string) (string, error)
	// Exists reports whether the rule described by d is installed.
	// The directive's Op is ignored.
	Exists(ctx context.Context, d rules.Directive) (bool, error)
}

// Options configures New.
type Options struct {
	Backend      string
	IPTablesPath string
	DryRun       bool
	Out          io.Writer
	Runner       system.CommandExecutor
}

// New returns the executor selected by opts.
func New(opts Options) (Executor, error) {
	if opts.DryRun {
		return &PrintExecutor{Out: opts.Out, IPTablesPath: opts.IPTablesPath}, nil
	}

	switch opts.Backend {
	case "", BackendExec:
		runner := opts.Runner
		if runner == nil {
			runner = system.DefaultExecutor()
		}
		return &CommandExecutor{Runner: runner, IPTablesPath: opts.IPTablesPath}, nil
	case BackendIPTables:
		ipt, err := NewIPTablesExecutor()
		if err != nil {
			return nil, err
		}
		return ipt, nil
	default:
		return nil, fmt.Errorf("unknown firewall backend %q (use %s or %s)", opts.Backend, BackendExec, BackendIPTables)
	}
}

// CommandExecutor runs iptables as a child process.
type CommandExecutor struct {
	Runner       system.CommandExecutor
	IPTablesPath string
}

func (e *CommandExecutor) Apply(ctx context.Context, directives []rules.Directive) error {
	var errs []error

	for _, d := range directives {
		argv := d.Argv(e.IPTablesPath)
		logging.Debug("running firewall directive", "cmd", shellquote.Join(argv...))

		out, err := e.Runner.Execute(ctx, argv[0], argv[1:]...)
		if err != nil && d.Op == rules.OpDelete && isMissingRule(out) {
			logging.Debug("rule already absent", "directive", d.String())
			continue
		}
		if err != nil {
			msg := strings.TrimSpace(string(out))
			logging.Warn("firewall directive failed", "directive", d.String(), "error", err, "output", msg)
			if msg != "" {
				err = fmt.Errorf("%w: %s", err, msg)
			}
			errs = append(errs, fmt.Errorf("%s %s: %w", d.Op, d.Chain, err))
		}
	}

	return errors.Join(errs...)
}

func (e *CommandExecutor) List(ctx context.Context, namespace string) (string, error) {
	argv := rules.ListArgv(e.IPTablesPath, namespace)
	logging.Debug("listing nat rules", "cmd", shellquote.Join(argv...))

	out, err := e.Runner.Execute(ctx, argv[0], argv[1:]...)
	if err != nil {
		return string(out), fmt.Errorf("failed to list rules: %w", err)
	}
	return string(out), nil
}

// Exists probes the rule with "iptables -C". iptables exits 1 with a
// "does a matching rule exist" message when the rule is absent; any other
// failure is returned as an error.
func (e *CommandExecutor) Exists(ctx context.Context, d rules.Directive) (bool, error) {
	argv := d.WithOp(rules.OpCheck).Argv(e.IPTablesPath)
	logging.Debug("checking firewall rule", "cmd", shellquote.Join(argv...))

	out, err := e.Runner.Execute(ctx, argv[0], argv[1:]...)
	if err == nil {
		return true, nil
	}
	if isMissingRule(out) {
		return false, nil
	}

	msg := strings.TrimSpace(string(out))
	if msg != "" {
		err = fmt.Errorf("%w: %s", err, msg)
	}
	return false, fmt.Errorf("check %s: %w", d.Chain, err)
}

func isMissingRule(out []byte) bool {
	msg := string(out)
	return strings.Contains(msg, "does a matching rule exist") ||
		strings.Contains(msg, "No chain/target/match by that name")
}

// PrintExecutor writes directives instead of applying them.
type PrintExecutor struct {
	Out          io.Writer
	IPTablesPath string
}

func (e *PrintExecutor) Apply(ctx context.Context, directives []rules.Directive) error {
	for _, d := range directives {
		if _, err := fmt.Fprintln(e.Out, shellquote.Join(d.Argv(e.IPTablesPath)...)); err != nil {
			return err
		}
	}
	return nil
}

func (e *PrintExecutor) List(ctx context.Context, namespace string) (string, error) {
	return shellquote.Join(rules.ListArgv(e.IPTablesPath, namespace)...) + "\n", nil
}

// Exists prints the probe and reports the rule as present.
func (e *PrintExecutor) Exists(ctx context.Context, d rules.Directive) (bool, error) {
	_, err := fmt.Fprintln(e.Out, shellquote.Join(d.WithOp(rules.OpCheck).Argv(e.IPTablesPath)...))
	return true, err
}
