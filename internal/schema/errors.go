package schema

import "errors"

var (
	ErrExitCommandFailure = errors.New("command exited with failure")   // [ExitCodeCommandFailure]
	ErrExitBadInvocation  = errors.New("bad invocation of the program") // [ExitCodeBadInvocation]
	ErrExitSpawnFailure   = errors.New("command could not be spawned")  // [ExitCodeSpawnFailure]
	ErrExitNotReady       = errors.New("service did not become ready")  // [ExitCodeNotReady]
	ErrExitUnclassified   = errors.New("unclassified error")            // [ExitCodeUnclassified]

	ErrSpawnFailure     = errors.New("failed to spawn")
	ErrEmptyCommand     = errors.New("empty command")
	ErrServiceNotReady  = errors.New("service not ready")
	ErrProcessExited    = errors.New("process exited early")
	ErrNoCommandForWalk = errors.New("no command supplied for entry")
)

var exitErrorsByPriority = []struct {
	err  error
	code int
}{
	{ErrExitUnclassified, ExitCodeUnclassified},     // 5
	{ErrExitNotReady, ExitCodeNotReady},             // 4
	{ErrExitSpawnFailure, ExitCodeSpawnFailure},     // 3
	{ErrExitBadInvocation, ExitCodeBadInvocation},   // 2
	{ErrExitCommandFailure, ExitCodeCommandFailure}, // 1
}

func ExitCodeFor(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	for _, entry := range exitErrorsByPriority {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}

	return ExitCodeUnclassified
}
