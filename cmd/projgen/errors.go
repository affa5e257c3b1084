package main

import "fmt"

// Exit codes.
const (
	exitGeneralError = 1
	// exitDiagnostics indicates at least one call site failed to compile.
	exitDiagnostics = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code    int
	err     error
	printed bool
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}
