package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Command completed
	ExitCheckFailed = 1 // check --strict found schema problems
	ExitError       = 2 // Configuration, input or runtime error
)

// CheckFailureError indicates that a document was read and normalized, but
// it does not conform to the results schema.
type CheckFailureError struct {
	Message string
}

func (e *CheckFailureError) Error() string {
	return e.Message
}

func main() {
	os.Exit(exitCode(execute()))
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(os.Stderr, err)

	var checkErr *CheckFailureError
	if errors.As(err, &checkErr) {
		return ExitCheckFailed
	}

	// All other errors are configuration/runtime errors
	return ExitError
}
