package occtl

import (
	"fmt"
	"strings"
)

// CommandError represents a failed occtl invocation.
type CommandError struct {
	Command    string
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("occtl %s failed: %v: %s", e.Command, e.Underlying, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("occtl %s failed: %v", e.Command, e.Underlying)
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

func newCommandError(command, stderr string, err error) *CommandError {
	return &CommandError{
		Command:    command,
		Stderr:     stderr,
		Underlying: err,
	}
}
