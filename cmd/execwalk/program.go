package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/flags"
	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/desertwitch/execwalk/internal/output"
	"github.com/desertwitch/execwalk/internal/report"
	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/service"
	"github.com/desertwitch/execwalk/internal/util"
	"github.com/desertwitch/execwalk/internal/walk"
	"github.com/spf13/afero"
)

type RunOptions struct {
	DryRun    bool
	Dir       string
	Env       map[string]string
	Header    string
	Separator string
	HideBody  bool
	Color     bool
}

type WalkOptions struct {
	DryRun      bool
	Env         map[string]string
	Color       bool
	Kind        flags.EntryKind
	Walker      flags.WalkerKind
	Exclude     []string
	MaxDepth    int
	IncludeRoot bool
	NoIgnore    bool
	Chdir       bool
	Report      string
}

type ServeOptions struct {
	Dir          string
	Env          map[string]string
	Host         string
	Port         int
	Timeout      flags.Duration
	PollInterval flags.Duration
}

type Program struct {
	Runner      *command.Runner
	WalkService *walk.Service

	fsys afero.Fs
	log  *logging.Logger
}

func NewProgram(fsys afero.Fs, ls logging.Options, spawner schema.CommandRunner) *Program {
	log := logging.NewLogger(ls)
	runner := command.NewRunner(spawner, log)

	return &Program{
		Runner:      runner,
		WalkService: walk.NewService(log, runner),

		fsys: fsys,
		log:  log,
	}
}

func (prog *Program) streams(color bool) output.Streams {
	return output.Streams{
		Stdout: prog.log.Options.Stdout,
		Stderr: prog.log.Options.Stderr,
		Color:  color,
	}
}

// Run runs a single command and prints its result as a block.
func (prog *Program) Run(ctx context.Context, spec command.Specifier, opts RunOptions) error {
	cmd := spec.Resolve()
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd = withEnv(cmd, opts.Env)
	}

	cfg := output.BlockOptions(prog.streams(opts.Color), func(command.Result) output.Block {
		return output.Block{
			Header:    opts.Header,
			HideBody:  opts.HideBody,
			Separator: opts.Separator,
		}
	}, command.Config{DryRun: util.Ptr(opts.DryRun)})

	res, err := prog.Runner.Run(ctx, cmd, cfg)
	if err != nil {
		return classifyError(err)
	}

	if er, ok := command.AsExec(res); ok && !er.Succeeded() {
		return fmt.Errorf("%w: %q exited with code %d", schema.ErrExitCommandFailure, cmd.Name(), er.ExitCode)
	}

	return nil
}

// Walk runs the command template for every entry below root.
func (prog *Program) Walk(ctx context.Context, root string, spec command.Specifier, opts WalkOptions) error {
	reject, err := walk.RejectGlobs(opts.Exclude...)
	if err != nil {
		return fmt.Errorf("%w: invalid --exclude: %w", schema.ErrExitBadInvocation, err)
	}

	filters := []walk.Filter{reject}
	switch opts.Kind.Value {
	case schema.EntryKindDirs:
		filters = append(filters, walk.OnlyDirs())
	case schema.EntryKindFiles:
		filters = append(filters, walk.OnlyFiles())
	}

	scanOpts := walk.ScanOptions{
		IncludeRoot: opts.IncludeRoot,
		MaxDepth:    opts.MaxDepth,
	}
	if !opts.NoIgnore {
		scanOpts.Ignore = util.NewIgnoreChecker(prog.fsys)
	}

	cmd := spec.Resolve()
	if len(opts.Env) > 0 {
		cmd = withEnv(cmd, opts.Env)
	}

	coll := report.NewCollector(root)
	cfg := walk.Config{
		Root:          root,
		Run:           command.Config{DryRun: util.Ptr(opts.DryRun)},
		Streams:       prog.streams(opts.Color),
		Filter:        walk.Every(filters...),
		Observe:       coll.Observe,
		EnhanceResult: coll.Enhance,
	}

	entries := walk.Scan(util.NewWalker(prog.fsys, opts.Walker.Value), root, scanOpts)
	supply := walk.Template(cmd, walk.TemplateOptions{Chdir: opts.Chdir})

	sum, err := prog.WalkService.Walk(ctx, entries, supply, cfg)
	if err != nil {
		return classifyError(err)
	}

	rep, ok := sum.(*report.Report)
	if !ok {
		return fmt.Errorf("%w: unexpected walk summary %T", schema.ErrExitUnclassified, sum)
	}

	var errs []error

	if opts.Report != "" {
		if err := report.Write(prog.fsys, opts.Report, rep); err != nil {
			prog.log.Error("Failed to write report", "path", opts.Report, "error", err)
			errs = append(errs, fmt.Errorf("%w: %w", schema.ErrExitUnclassified, err))
		} else {
			prog.log.Info("Report written", "path", opts.Report)
		}
	}

	if failed := rep.Failed(); len(failed) > 0 {
		errs = append(errs, fmt.Errorf("%w: %d/%d entries exited with failure",
			schema.ErrExitCommandFailure, len(failed), len(rep.Records)))
	}

	return util.HighestError(errs)
}

// Serve starts a service, waits for it to become ready and keeps it
// running until it exits or ctx ends.
func (prog *Program) Serve(ctx context.Context, spec command.Specifier, opts ServeOptions) error {
	cmd := spec.Resolve()
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if len(opts.Env) > 0 {
		cmd = withEnv(cmd, opts.Env)
	}

	p, err := service.Start(ctx, service.Options{
		Command:      cmd,
		Host:         opts.Host,
		Port:         opts.Port,
		Timeout:      opts.Timeout.Value,
		PollInterval: opts.PollInterval.Value,
		Stdout:       prog.log.Options.Stdout,
		Stderr:       prog.log.Options.Stderr,
		Log:          prog.log,
	})
	if err != nil {
		return classifyError(err)
	}
	defer p.Stop()

	prog.log.Info("Service is ready (stop with a signal)", "pid", p.PID(), "addr", p.Addr())

	select {
	case <-ctx.Done():
		p.Stop()
		prog.log.Info("Service stopped", "pid", p.PID())

		return nil

	case <-p.Done():
		code, err := util.SplitExitError(p.Wait())
		if err != nil {
			return fmt.Errorf("%w: %w", schema.ErrExitUnclassified, err)
		}
		if code != 0 {
			return fmt.Errorf("%w: service exited with code %d", schema.ErrExitCommandFailure, code)
		}
		prog.log.Info("Service exited", "pid", p.PID())

		return nil
	}
}

func withEnv(cmd schema.Command, env map[string]string) schema.Command {
	cmd = cmd.Clone()
	if cmd.Env == nil {
		cmd.Env = make(map[string]string, len(env))
	}
	for k, v := range env {
		cmd.Env[k] = v
	}

	return cmd
}

// classifyError attaches the exit code sentinel matching err.
func classifyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, schema.ErrServiceNotReady), errors.Is(err, schema.ErrProcessExited):
		return fmt.Errorf("%w: %w", schema.ErrExitNotReady, err)
	case errors.Is(err, schema.ErrSpawnFailure):
		return fmt.Errorf("%w: %w", schema.ErrExitSpawnFailure, err)
	case errors.Is(err, schema.ErrExitBadInvocation):
		return err
	default:
		return fmt.Errorf("%w: %w", schema.ErrExitUnclassified, err)
	}
}
