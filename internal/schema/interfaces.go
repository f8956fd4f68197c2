package schema

import (
	"context"
	"io"
	"io/fs"
)

// FilesystemWalker is an interface describing a filesystem walking function.
type FilesystemWalker interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
}

// CommandRunner spawns a process for the given command and waits for it.
// A process exiting non-zero is reported as an [*exec.ExitError].
type CommandRunner interface {
	Run(ctx context.Context, cmd Command, stdout io.Writer, stderr io.Writer) error
}
