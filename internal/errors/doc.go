// Package errors provides typed errors with exit codes for sshproxy-ctl.
//
// # Error Types
//
// ProxyError is the base error type that wraps an error with an exit code:
//
//	type ProxyError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess          = 0 // Success
//	ExitGeneralError     = 1 // General/unknown errors
//	ExitInvalidAddress   = 2 // Malformed dotted-decimal address
//	ExitDuplicateAddress = 3 // Address already has a port
//	ExitInvalidPort      = 4 // Explicit port below the minimum
//	ExitNotFound         = 5 // Address or port missing from the table
//	ExitStoreUnavailable = 6 // Port table cannot be read or written
//	ExitLockUnavailable  = 7 // Lock file cannot be opened or locked
//	ExitConfigError      = 8 // Configuration error
//	ExitFirewallError    = 9 // Firewall directive failed
//
// Every error is fatal to the current invocation; nothing is retried.
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
