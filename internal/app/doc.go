// Package app provides the application context for sshproxy-ctl.
//
// This package manages application-wide dependencies using the functional
// options pattern, enabling easy testing through dependency injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    HostConfig *config.HostConfig // Host configuration
//	    Paths      *config.Paths      // Table, lock and audit files
//	    Store      store.Store        // Allocation table storage
//	    Executor   firewall.Executor  // Firewall backend
//	    Audit      *audit.Logger      // Event log
//	    Service    *proxy.Service     // Create/delete/clear orchestration
//	}
//
// # Creating an App
//
// Use New with functional options:
//
//	// Production usage
//	a, err := app.New(app.WithHostConfig(cfg))
//
//	// Testing with custom dependencies
//	a, err := app.New(
//	    app.WithHostConfig(testConfig),
//	    app.WithRunner(mockExecutor),
//	)
//
// # Available Options
//
//	WithHostConfig(config)  // Host configuration
//	WithPaths(paths)        // Pre-resolved state paths
//	WithStore(store)        // Custom table store
//	WithExecutor(executor)  // Custom firewall executor
//	WithRunner(runner)      // Command runner for the exec backend
//	WithDryRun(bool, out)   // Print directives instead of applying them
package app
