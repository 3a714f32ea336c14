// Package logging provides logging utilities for sshproxy-ctl.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("allocated port", "address", addr, "port", port)
//	logging.Warn("firewall directive failed", "directive", d, "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Clearing %d entries...", n)
//	logging.UserSuccess("Proxy for %s on port %d", addr, port)
//	logging.UserWarning("Table left untouched for %s", addr)
//	logging.UserError("Failed to create proxy: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
