// Package main provides the CLI for the LeapDQ data quality rule runner.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdq/internal/cli"
	"github.com/leapstack-labs/leapdq/internal/cli/commands"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1 // configuration, storage or warehouse errors
	exitValidation = 2 // a HIGH expectation failed
)

func main() {
	os.Exit(exitCode(cli.Execute()))
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case commands.IsValidationFailure(err):
		return exitValidation
	default:
		return exitError
	}
}
