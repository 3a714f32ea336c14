// Package testutil provides test fixtures and utilities.
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/valid_host_config.toml
//	fixtures/invalid_host_config.toml
//	fixtures/port_table.txt
//
// Host config fixtures are decoded without defaults or validation:
//
//	cfg, err := testutil.ValidHostConfig()
//	cfg, err := testutil.InvalidHostConfig()
//	data, err := testutil.PortTable()
//
// # Test Environment
//
// NewTestEnv builds a temporary state directory, writes a config.toml
// pointing at it, installs a system.MockExecutor as the default command
// runner and sets app.Default:
//
//	env := testutil.NewTestEnv(t)
//	defer env.Cleanup()
//
//	env.WriteTable("10.0.0.5\t3100\n")
//	// run commands against env.ConfigPath
//	lines := env.Runner.CommandLines()
package testutil
