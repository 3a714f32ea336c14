// Package ssh builds ssh invocations that reach an internal host through
// its allocated proxy port on the gateway.
package ssh

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/sshproxy-ctl/internal/system"
)

// Default SSH configuration values.
const (
	DefaultHost           = "localhost"
	DefaultConnectTimeout = 2
)

// Options configures SSH connection parameters.
type Options struct {
	Port int
	// User is omitted from the destination when empty.
	User               string
	Host               string
	StrictHostKeyCheck bool
	KnownHostsFile     string
	ConnectTimeout     int
	BatchMode          bool
	RequestTTY         bool
}

// DefaultOptions returns Options for the gateway's proxy port.
// Host keys are checked as usual since every proxy port fronts a
// different machine on the same gateway address.
func DefaultOptions(host string, port int) Options {
	if host == "" {
		host = DefaultHost
	}
	return Options{
		Port:               port,
		Host:               host,
		StrictHostKeyCheck: true,
		ConnectTimeout:     DefaultConnectTimeout,
	}
}

// WithUser returns a copy with the login user set.
func (o Options) WithUser(user string) Options {
	o.User = user
	return o
}

// WithBatchMode returns a copy with batch mode enabled.
func (o Options) WithBatchMode() Options {
	o.BatchMode = true
	return o
}

// WithTTY returns a copy with TTY requested.
func (o Options) WithTTY() Options {
	o.RequestTTY = true
	return o
}

// WithTimeout returns a copy with the specified connect timeout.
func (o Options) WithTimeout(seconds int) Options {
	o.ConnectTimeout = seconds
	return o
}

// BaseArgs returns the common SSH arguments (options only, no user@host).
func (o Options) BaseArgs() []string {
	args := []string{"-p", strconv.Itoa(o.Port)}

	if !o.StrictHostKeyCheck {
		args = append(args, "-o", "StrictHostKeyChecking=no")
	}
	if o.KnownHostsFile != "" {
		args = append(args, "-o", "UserKnownHostsFile="+o.KnownHostsFile)
	}
	if o.BatchMode {
		args = append(args, "-o", "BatchMode=yes")
	}
	if o.ConnectTimeout > 0 {
		args = append(args, "-o", fmt.Sprintf("ConnectTimeout=%d", o.ConnectTimeout))
	}
	if o.RequestTTY {
		args = append(args, "-t")
	}

	return args
}

// Destination returns the user@host string, or just host when no user is set.
func (o Options) Destination() string {
	if o.User == "" {
		return o.Host
	}
	return o.User + "@" + o.Host
}

// BuildArgs returns complete SSH arguments for executing a command.
func (o Options) BuildArgs(command ...string) []string {
	args := o.BaseArgs()
	args = append(args, o.Destination())
	return append(args, command...)
}

// CommandLine renders the ssh invocation for display.
func (o Options) CommandLine(command ...string) string {
	return shellquote.Join(append([]string{"ssh"}, o.BuildArgs(command...)...)...)
}

// CheckConnection runs "true" on the far side in batch mode and reports
// whether it succeeded.
func CheckConnection(ctx context.Context, runner system.CommandExecutor, o Options) error {
	args := o.WithBatchMode().BuildArgs("true")
	if out, err := runner.Execute(ctx, "ssh", args...); err != nil {
		if len(out) > 0 {
			return fmt.Errorf("ssh %s port %d: %w: %s", o.Host, o.Port, err, out)
		}
		return fmt.Errorf("ssh %s port %d: %w", o.Host, o.Port, err)
	}
	return nil
}

// ReplaceWithSession replaces the current process with an SSH session.
// It does not return on success.
func ReplaceWithSession(o Options, command ...string) error {
	sshPath, err := exec.LookPath("ssh")
	if err != nil {
		return fmt.Errorf("ssh not found: %w", err)
	}

	argv := append([]string{"ssh"}, o.BuildArgs(command...)...)
	return syscall.Exec(sshPath, argv, os.Environ())
}
