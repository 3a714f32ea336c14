package errors

import (
	"errors"
	"fmt"
)

// Exit codes for sshproxy-ctl
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidAddress   = 2
	ExitDuplicateAddress = 3
	ExitInvalidPort      = 4
	ExitNotFound         = 5
	ExitStoreUnavailable = 6
	ExitLockUnavailable  = 7
	ExitConfigError      = 8
	ExitFirewallError    = 9
)

// ProxyError is the base error type for sshproxy-ctl
type ProxyError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ProxyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *ProxyError) ExitCode() int {
	return e.Code
}

// New creates a new ProxyError
func New(code int, message string) *ProxyError {
	return &ProxyError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ProxyError
func Wrap(code int, message string, cause error) *ProxyError {
	return &ProxyError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// InvalidAddress returns an error for malformed dotted-decimal input
func InvalidAddress(text string) *ProxyError {
	return New(ExitInvalidAddress, fmt.Sprintf("bad address %q", text))
}

// DuplicateAddress returns an error when an address already has a port
func DuplicateAddress(addr string, port int) *ProxyError {
	return New(ExitDuplicateAddress, fmt.Sprintf("address %s already assigned to port %d", addr, port))
}

// InvalidPort returns an error for an explicit port below the minimum
func InvalidPort(port, min int) *ProxyError {
	return New(ExitInvalidPort, fmt.Sprintf("port %d is below minimum %d", port, min))
}

// NotFound returns an error for an address (and optionally port) missing from the table
func NotFound(addr string, port int) *ProxyError {
	if port > 0 {
		return New(ExitNotFound, fmt.Sprintf("no entry for %s on port %d", addr, port))
	}
	return New(ExitNotFound, fmt.Sprintf("no entry for %s", addr))
}

// StoreUnavailable returns an error when the backing table cannot be used
func StoreUnavailable(op string, cause error) *ProxyError {
	return Wrap(ExitStoreUnavailable, fmt.Sprintf("port table %s failed", op), cause)
}

// LockUnavailable returns an error when the lock file cannot be opened or locked
func LockUnavailable(path string, cause error) *ProxyError {
	return Wrap(ExitLockUnavailable, fmt.Sprintf("cannot lock %s", path), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *ProxyError {
	return Wrap(ExitConfigError, message, cause)
}

// FirewallError returns an error for directives the executor could not apply
func FirewallError(op string, cause error) *ProxyError {
	return Wrap(ExitFirewallError, fmt.Sprintf("firewall %s failed", op), cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *ProxyError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var proxyErr *ProxyError
	if errors.As(err, &proxyErr) {
		return proxyErr.ExitCode()
	}
	return ExitGeneralError
}

// HasCode reports whether err carries a ProxyError with the given code
func HasCode(err error, code int) bool {
	var proxyErr *ProxyError
	return errors.As(err, &proxyErr) && proxyErr.Code == code
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
