package util

import (
	"errors"
	"os/exec"

	"github.com/desertwitch/execwalk/internal/schema"
)

func HighestError(errs []error) error {
	var highest error
	highestPriority := -1

	for _, e := range errs {
		if e == nil {
			continue
		}

		priority := schema.ExitCodeFor(e)
		if priority > highestPriority {
			highestPriority = priority
			highest = e
		}
	}

	return highest
}

func AsExitCode(err error) *int {
	var exitCode int

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()

		return &exitCode
	}

	return nil
}

// SplitExitError separates the outcome of a finished process from a failure
// to run it at all. A nil error yields exit code 0, an [*exec.ExitError]
// yields its exit code and any other error is handed back with exit code -1.
func SplitExitError(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	if code := AsExitCode(err); code != nil {
		return *code, nil
	}

	return -1, err
}
