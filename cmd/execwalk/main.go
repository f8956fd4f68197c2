/*
execwalk is a tool that runs external commands and captures their output,
either once, for every entry of a directory tree, or as a long-running
service that is waited on until it accepts connections.

Every command is either run or, in dry-run mode, only described. The outcome
of a run is printed as a block of a header, the captured output and a
separator: standard output of successful commands goes to standard output,
standard error of failing commands to standard error. A non-zero exit code
is an ordinary outcome, while a command that cannot be started at all ends
the operation.

Walks process the entries of a tree strictly one after another, in the order
of the traversal. Entries can be narrowed down by kind, depth, exclusion globs
and ignore files, and all outcomes collected into a JSON report:
  - execwalk run -- git status -s
  - execwalk walk --kind dirs --max-depth 1 ~/src -- git status -s
  - execwalk serve --port 8080 -- python3 -m http.server 8080
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/service"
	"github.com/desertwitch/execwalk/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func wrapArgsError(validator cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validator(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", schema.ErrExitBadInvocation, err)
		}

		return nil
	}
}

// newRootCmd returns the primary [cobra.Command] pointer for the program.
func newRootCmd(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               rootUsage,
		Short:             rootHelpShort,
		Long:              rootHelpLong,
		Version:           schema.ProgramVersion,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", schema.ErrExitBadInvocation, err)
	})

	runCmd := newRunCmd(ctx)
	walkCmd := newWalkCmd(ctx)
	serveCmd := newServeCmd(ctx)
	checkConfigCmd := newCheckConfigCmd(ctx)

	rootCmd.AddCommand(runCmd, walkCmd, serveCmd, checkConfigCmd)

	return rootCmd
}

func newCheckConfigCmd(_ context.Context) *cobra.Command {
	checkConfigCmd := &cobra.Command{
		Use:     checkConfigUsage,
		Short:   checkConfigHelpShort,
		Long:    checkConfigHelpLong,
		Example: checkConfigHelpExample,
		Args:    wrapArgsError(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseConfigFile(afero.NewOsFs(), args[0]); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Provided configuration file is invalid.")

				return fmt.Errorf("%w: %w", schema.ErrExitBadInvocation, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Provided configuration file is valid.")

			return nil
		},
	}

	return checkConfigCmd
}

func defaultLogSettings() logging.Options {
	var logSettings logging.Options

	_ = logSettings.LogLevel.Set("info")
	logSettings.Logout = os.Stderr
	logSettings.Stdout = os.Stdout
	logSettings.Stderr = os.Stderr

	return logSettings
}

func visitedFlags(cmd *cobra.Command) map[string]bool {
	setFlags := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		setFlags[f.Name] = true
	})

	return setFlags
}

// commandArgs returns the command following "--", or the single argument
// string to be tokenized when no "--" was given.
func commandArgs(cmd *cobra.Command, args []string, before int) (command.Specifier, error) {
	dashAt := cmd.ArgsLenAtDash()

	switch {
	case dashAt == -1 && len(args) == before+1:
		return command.Line(args[before]), nil

	case dashAt == before && len(args) > before:
		return schema.Command{Args: append([]string{}, args[dashAt:]...)}, nil

	default:
		return nil, fmt.Errorf("%w: expected the command after -- or as a single quoted argument",
			schema.ErrExitBadInvocation)
	}
}

// newRunCmd returns the "run" [cobra.Command] pointer for the program.
func newRunCmd(ctx context.Context) *cobra.Command {
	var runArgs RunOptions
	var spec command.Specifier
	var configPath string

	fsys := afero.NewOsFs()
	logSettings := defaultLogSettings()

	runCmd := &cobra.Command{
		Use:     runUsage,
		Short:   runHelpShort,
		Long:    runHelpLong,
		Example: runHelpExample,
		Args:    wrapArgsError(cobra.MinimumNArgs(1)),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			spec, err = commandArgs(cmd, args, 0)
			if err != nil {
				return err
			}

			if configPath != "" {
				cfg, err := parseConfigFile(fsys, configPath)
				if err != nil {
					return fmt.Errorf("%w: failed to parse --config file: %w",
						schema.ErrExitBadInvocation, err)
				}
				if cfg.Run != nil {
					cfg.Run.Merge(&runArgs, &logSettings, visitedFlags(cmd))
				}
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			prog := NewProgram(fsys, logSettings, &util.CtxRunner{})

			if err := prog.Run(ctx, spec, runArgs); err != nil {
				return fmt.Errorf("run: %w", err)
			}

			return nil
		},
	}
	runCmd.Flags().BoolVar(&logSettings.WantJSON, "json", false, "output structured logs in JSON format")
	runCmd.Flags().BoolVarP(&runArgs.DryRun, "dry-run", "n", false, "describe the command instead of running it")
	runCmd.Flags().BoolVar(&runArgs.HideBody, "hide-body", false, "do not print the captured output")
	runCmd.Flags().BoolVar(&runArgs.Color, "color", false, "print the header in bold")
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to an execwalk YAML configuration file")
	runCmd.Flags().StringVarP(&runArgs.Dir, "dir", "C", "", "working directory of the command")
	runCmd.Flags().StringToStringVarP(&runArgs.Env, "env", "e", nil, "additional environment of the command (KEY=value)")
	runCmd.Flags().StringVar(&runArgs.Header, "header", "", "line printed before the output")
	runCmd.Flags().StringVar(&runArgs.Separator, "separator", "", "line printed after the output")
	runCmd.Flags().VarP(&logSettings.LogLevel, "log-level", "l", "minimum level of emitted logs (debug|info|warn|error)")

	return runCmd
}

// newWalkCmd returns the "walk" [cobra.Command] pointer for the program.
func newWalkCmd(ctx context.Context) *cobra.Command {
	var walkArgs WalkOptions
	var spec command.Specifier
	var configPath string

	fsys := afero.NewOsFs()
	logSettings := defaultLogSettings()

	_ = walkArgs.Kind.Set(schema.EntryKindAll)
	_ = walkArgs.Walker.Set(schema.WalkerNative)

	walkCmd := &cobra.Command{
		Use:     walkUsage,
		Short:   walkHelpShort,
		Long:    walkHelpLong,
		Example: walkHelpExample,
		Args:    wrapArgsError(cobra.MinimumNArgs(2)), //nolint:mnd
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			spec, err = commandArgs(cmd, args, 1)
			if err != nil {
				return err
			}

			if configPath != "" {
				cfg, err := parseConfigFile(fsys, configPath)
				if err != nil {
					return fmt.Errorf("%w: failed to parse --config file: %w",
						schema.ErrExitBadInvocation, err)
				}
				if cfg.Walk != nil {
					cfg.Walk.Merge(&walkArgs, &logSettings, visitedFlags(cmd))
				}
			}

			if walkArgs.MaxDepth < 0 {
				return fmt.Errorf("%w: --max-depth must not be negative", schema.ErrExitBadInvocation)
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("%w: failed to convert relative path to absolute: %w",
					schema.ErrExitBadInvocation, err)
			}
			args[0] = path

			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			prog := NewProgram(fsys, logSettings, &util.CtxRunner{})

			if err := prog.Walk(ctx, args[0], spec, walkArgs); err != nil {
				return fmt.Errorf("walk: %w", err)
			}

			return nil
		},
	}
	walkCmd.Flags().BoolVar(&logSettings.WantJSON, "json", false, "output structured logs in JSON format")
	walkCmd.Flags().BoolVarP(&walkArgs.DryRun, "dry-run", "n", false, "describe the commands instead of running them")
	walkCmd.Flags().BoolVar(&walkArgs.Color, "color", false, "print the headers in bold")
	walkCmd.Flags().BoolVar(&walkArgs.IncludeRoot, "include-root", false, "also run the command for <dir> itself")
	walkCmd.Flags().BoolVar(&walkArgs.NoIgnore, "no-ignore", false, "do not respect ignore files")
	walkCmd.Flags().BoolVar(&walkArgs.Chdir, "chdir", false, "run the commands in the entry's directory")
	walkCmd.Flags().IntVarP(&walkArgs.MaxDepth, "max-depth", "d", 0, "maximum depth below <dir> (0 is unlimited)")
	walkCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to an execwalk YAML configuration file")
	walkCmd.Flags().StringVarP(&walkArgs.Report, "report", "r", "", "write a JSON report of all outcomes to this file")
	walkCmd.Flags().StringSliceVarP(&walkArgs.Exclude, "exclude", "x", nil, "skip entries matching this glob (repeatable)")
	walkCmd.Flags().StringToStringVarP(&walkArgs.Env, "env", "e", nil, "additional environment of the commands (KEY=value)")
	walkCmd.Flags().VarP(&walkArgs.Kind, "kind", "k", "kind of entries to run the command for (dirs|files|all)")
	walkCmd.Flags().VarP(&walkArgs.Walker, "walker", "w", "filesystem walk implementation (native|afero|godirwalk)")
	walkCmd.Flags().VarP(&logSettings.LogLevel, "log-level", "l", "minimum level of emitted logs (debug|info|warn|error)")

	return walkCmd
}

// newServeCmd returns the "serve" [cobra.Command] pointer for the program.
func newServeCmd(ctx context.Context) *cobra.Command {
	var serveArgs ServeOptions
	var spec command.Specifier
	var configPath string

	fsys := afero.NewOsFs()
	logSettings := defaultLogSettings()

	_ = serveArgs.Timeout.Set(service.DefaultTimeout.String())
	_ = serveArgs.PollInterval.Set(service.DefaultPollInterval.String())

	serveCmd := &cobra.Command{
		Use:     serveUsage,
		Short:   serveHelpShort,
		Long:    serveHelpLong,
		Example: serveHelpExample,
		Args:    wrapArgsError(cobra.MinimumNArgs(1)),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			var err error

			spec, err = commandArgs(cmd, args, 0)
			if err != nil {
				return err
			}

			if configPath != "" {
				cfg, err := parseConfigFile(fsys, configPath)
				if err != nil {
					return fmt.Errorf("%w: failed to parse --config file: %w",
						schema.ErrExitBadInvocation, err)
				}
				if cfg.Serve != nil {
					cfg.Serve.Merge(&serveArgs, &logSettings, visitedFlags(cmd))
				}
			}

			if serveArgs.Port < 1 || serveArgs.Port > 65535 {
				return fmt.Errorf("%w: --port must be between 1 and 65535", schema.ErrExitBadInvocation)
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			prog := NewProgram(fsys, logSettings, &util.CtxRunner{})

			if err := prog.Serve(ctx, spec, serveArgs); err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			return nil
		},
	}
	serveCmd.Flags().BoolVar(&logSettings.WantJSON, "json", false, "output structured logs in JSON format")
	serveCmd.Flags().IntVarP(&serveArgs.Port, "port", "p", 0, "TCP port the service listens on")
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to an execwalk YAML configuration file")
	serveCmd.Flags().StringVarP(&serveArgs.Dir, "dir", "C", "", "working directory of the service")
	serveCmd.Flags().StringVar(&serveArgs.Host, "host", service.DefaultHost, "host the service listens on")
	serveCmd.Flags().StringToStringVarP(&serveArgs.Env, "env", "e", nil, "additional environment of the service (KEY=value)")
	serveCmd.Flags().VarP(&serveArgs.Timeout, "timeout", "t", "maximum wait for the service to become ready")
	serveCmd.Flags().Var(&serveArgs.PollInterval, "poll-interval", "pause between two readiness checks")
	serveCmd.Flags().VarP(&logSettings.LogLevel, "log-level", "l", "minimum level of emitted logs (debug|info|warn|error)")

	return serveCmd
}

func main() {
	var exitCode int
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n\n", r)
			debug.PrintStack()
			exitCode = schema.ExitCodeUnclassified
		}
		os.Exit(exitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	rootCmd := newRootCmd(ctx)
	err := rootCmd.Execute()
	exitCode = schema.ExitCodeFor(err)
}
