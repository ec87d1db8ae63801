package exitcode

import (
	"os"
	"strings"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates a provider authentication failure
	AuthError = 3

	// NetworkError indicates a network connectivity issue
	NetworkError = 4

	// NotFound indicates a missing plan or enhancement state
	NotFound = 5

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "provider-002"),
		strings.Contains(errMsg, "authentication failed"),
		strings.Contains(errMsg, "unauthorized"):
		return AuthError
	case strings.Contains(errMsg, "connection refused"),
		strings.Contains(errMsg, "no such host"),
		strings.Contains(errMsg, "timeout"):
		return NetworkError
	case strings.Contains(errMsg, "state-001"),
		strings.Contains(errMsg, "not found"):
		return NotFound
	case strings.Contains(errMsg, "usage"),
		strings.Contains(errMsg, "unknown flag"),
		strings.Contains(errMsg, "requires at least"):
		return UsageError
	default:
		return GeneralError
	}
}
