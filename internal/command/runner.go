package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/util"
)

var errNilTransform = errors.New("transform returned no result")

// Runner executes or simulates commands and reports their results to hooks.
type Runner struct {
	spawner schema.CommandRunner
	log     *logging.Logger
}

// NewRunner returns a [Runner] spawning through spawner. A nil spawner
// spawns real processes, a nil log discards all records.
func NewRunner(spawner schema.CommandRunner, log *logging.Logger) *Runner {
	if spawner == nil {
		spawner = util.CtxRunner{}
	}
	if log == nil {
		log = logging.Discard()
	}

	return &Runner{
		spawner: spawner,
		log:     log,
	}
}

// Run resolves spec and either describes it (dry run) or runs it to
// completion, capturing both output streams.
//
// A non-zero exit code is not an error; it is reported through the
// returned [*ExecResult]. Failing to start the process at all returns an
// error wrapping [schema.ErrSpawnFailure] and fires no hook. So does any
// failed run once ctx is done, even a non-zero exit, since the exit code
// may stem from the interruption.
func (r *Runner) Run(ctx context.Context, spec Specifier, cfg Config) (Result, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: %w", schema.ErrSpawnFailure, schema.ErrEmptyCommand)
	}

	cmd := spec.Resolve()
	logger := r.log.With("args", cmd.Args, "dir", cmd.Dir)

	if cfg.IsDryRun() {
		logger.Debug("Command described (dry run)")

		res, err := transform(cfg, &DryRunResult{Cmd: cmd, Cfg: cfg})
		if err != nil {
			return nil, err
		}
		if cfg.OnDryRun != nil {
			cfg.OnDryRun(res)
		}

		return res, nil
	}

	var stdout, stderr bytes.Buffer

	logger.Debug("Command started")

	start := time.Now()
	err := r.spawner.Run(ctx, cmd, &stdout, &stderr)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() != nil {
		return nil, fmt.Errorf("%w: command interrupted: %w: %w", schema.ErrSpawnFailure, ctx.Err(), err)
	}

	exitCode, err := util.SplitExitError(err)
	if err != nil {
		logger.Debug("Command failed to spawn", "error", err)

		return nil, fmt.Errorf("%w: %q: %w", schema.ErrSpawnFailure, cmd.Name(), err)
	}

	logger.Debug("Command completed",
		"exitCode", exitCode,
		"stdoutBytes", stdout.Len(),
		"stderrBytes", stderr.Len(),
		"duration", elapsed.String())

	res, err := transform(cfg, &ExecResult{
		Cmd:      cmd,
		Cfg:      cfg,
		ExitCode: exitCode,
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.OnComplete != nil {
		cfg.OnComplete(res)
	}

	return res, nil
}

func transform(cfg Config, res Result) (Result, error) {
	if cfg.Transform == nil {
		return res, nil
	}

	out, err := cfg.Transform(res)
	if err != nil {
		return nil, fmt.Errorf("failed to transform result: %w", err)
	}
	if out == nil {
		return nil, errNilTransform
	}

	return out, nil
}
