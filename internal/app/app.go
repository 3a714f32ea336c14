// Package app provides the application context for sshproxy-ctl.
// It allows dependency injection for testing.
package app

import (
	"io"
	"os"

	"github.com/firefly-engineering/sshproxy-ctl/internal/audit"
	"github.com/firefly-engineering/sshproxy-ctl/internal/config"
	"github.com/firefly-engineering/sshproxy-ctl/internal/errors"
	"github.com/firefly-engineering/sshproxy-ctl/internal/firewall"
	"github.com/firefly-engineering/sshproxy-ctl/internal/logging"
	"github.com/firefly-engineering/sshproxy-ctl/internal/proxy"
	"github.com/firefly-engineering/sshproxy-ctl/internal/store"
	"github.com/firefly-engineering/sshproxy-ctl/internal/system"
)

// App holds the application dependencies
type App struct {
	// HostConfig is the loaded host configuration
	HostConfig *config.HostConfig

	// Paths holds the resolved state file locations
	Paths *config.Paths

	// Store backs the allocation table
	Store store.Store

	// Executor applies firewall directives
	Executor firewall.Executor

	// Audit records table events
	Audit *audit.Logger

	// Service orchestrates proxies over the above
	Service *proxy.Service

	runner system.CommandExecutor
	dryRun bool
	out    io.Writer
}

// Option is a function that configures the App
type Option func(*App)

// WithHostConfig sets a custom host config
func WithHostConfig(cfg *config.HostConfig) Option {
	return func(a *App) {
		a.HostConfig = cfg
	}
}

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithStore sets a custom table store
func WithStore(s store.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithExecutor sets a custom firewall executor
func WithExecutor(e firewall.Executor) Option {
	return func(a *App) {
		a.Executor = e
	}
}

// WithRunner sets the command runner used by the exec backend
func WithRunner(r system.CommandExecutor) Option {
	return func(a *App) {
		a.runner = r
	}
}

// WithDryRun prints directives to out instead of applying them
func WithDryRun(dryRun bool, out io.Writer) Option {
	return func(a *App) {
		a.dryRun = dryRun
		a.out = out
	}
}

// New creates a new App with the given options.
// Anything not provided is built from the host config.
func New(opts ...Option) (*App, error) {
	a := &App{}

	for _, opt := range opts {
		opt(a)
	}

	if a.HostConfig == nil {
		a.HostConfig = config.Default()
	}

	if a.Paths == nil {
		paths, err := a.HostConfig.Paths()
		if err != nil {
			return nil, errors.ConfigError("failed to resolve state paths", err)
		}
		a.Paths = paths
	}

	if a.Store == nil {
		a.Store = store.NewFileStore(a.Paths.TablePath, a.Paths.LockPath).WithMinPort(a.HostConfig.MinPort)
	}

	if a.Audit == nil {
		a.Audit = audit.NewLogger(a.Paths.AuditPath)
	}

	if a.Executor == nil {
		out := a.out
		if out == nil {
			out = os.Stdout
		}
		exec, err := firewall.New(firewall.Options{
			Backend:      a.HostConfig.Backend,
			IPTablesPath: a.HostConfig.IPTablesPath,
			DryRun:       a.dryRun,
			Out:          out,
			Runner:       a.runner,
		})
		if err != nil {
			return nil, errors.ConfigError("failed to initialize firewall backend", err)
		}
		a.Executor = exec
	}

	strategy, err := store.ParseStrategy(a.HostConfig.LockMode)
	if err != nil {
		return nil, errors.ConfigError("invalid lock mode", err)
	}

	logging.Debug("app initialized",
		"table", a.Paths.TablePath,
		"backend", a.HostConfig.Backend,
		"lock_mode", strategy,
		"dry_run", a.dryRun)

	a.Service = proxy.New(store.NewTable(a.Store, strategy), a.Executor, a.Audit, proxy.Options{
		StartPort: a.HostConfig.StartPort,
		MinPort:   a.HostConfig.MinPort,
		Namespace: a.HostConfig.Namespace,
	})

	return a, nil
}

// Runner returns the command runner for external tools such as ssh.
func (a *App) Runner() system.CommandExecutor {
	if a.runner != nil {
		return a.runner
	}
	return system.DefaultExecutor()
}

// Default is the application instance used by the CLI commands
var Default *App

// SetDefault sets the default application instance
func SetDefault(app *App) {
	Default = app
}

// ResetDefault clears the default application instance
func ResetDefault() {
	Default = nil
}
