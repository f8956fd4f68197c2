package util

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/desertwitch/execwalk/internal/schema"
)

type CtxRunner struct{}

var _ schema.CommandRunner = (*CtxRunner)(nil)

func (CtxRunner) Run(ctx context.Context, cmd schema.Command, stdout io.Writer, stderr io.Writer) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("%w: no arguments", schema.ErrEmptyCommand)
	}

	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...) //nolint:gosec

	c.Dir = cmd.Dir
	c.Stdout = stdout
	c.Stderr = stderr

	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Environ()...)
	}

	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = ProcessKillTimeout

	return c.Run() //nolint:wrapcheck
}
