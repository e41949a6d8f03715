package commands

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/shelfscan/backend/cmd/shelfscan/ui"
)

// reportedError marks a failure the command has already shown to the user
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return reportedError{err: err}
}

// Execute runs the command tree and returns the process exit code.
// Failures not already shown by a command are printed to stderr.
func Execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var shown reportedError
	if !errors.As(err, &shown) {
		ui.Error(stderr, "%v", err)
	}
	return 1
}
