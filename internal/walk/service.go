package walk

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"time"

	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/desertwitch/execwalk/internal/output"
	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/util"
)

// Config controls a walk. All functions are optional.
type Config struct {
	// Root is the base of relative paths; empty keeps the entry paths.
	Root string

	// Run is the configuration of every invocation, below the overrides
	// of the [Supplier] and above the default block printing.
	Run command.Config

	// Streams receive the default block printing.
	Streams output.Streams

	Relativize    func(e Entry) (string, error)
	Enhance       func(c Context) (Context, error)
	Filter        Filter
	Observe       func(o Observation)
	EnhanceResult func(s Summary) Summary
}

type Service struct {
	log    *logging.Logger
	runner *command.Runner
}

func NewService(log *logging.Logger, runner *command.Runner) *Service {
	if log == nil {
		log = logging.Discard()
	}
	if runner == nil {
		runner = command.NewRunner(nil, log)
	}

	return &Service{
		log:    log,
		runner: runner,
	}
}

// Walk runs the command selected by supply for every entry that passes
// the filter, one after another in traversal order.
//
// Errors produced by the traversal are logged and the entry is skipped.
// Any error of the caller's functions or a command failing to spawn ends
// the walk; the counts up to that point are returned along with it.
func (prog *Service) Walk(ctx context.Context, entries iter.Seq2[Entry, error], supply Supplier, cfg Config) (Summary, error) {
	var totals Totals

	if supply == nil {
		return totals, fmt.Errorf("%w: no supplier", schema.ErrNoCommandForWalk)
	}

	start := time.Now()
	results := util.NewResultTracker(prog.log.Logger)

	for entry, err := range entries {
		if err := ctx.Err(); err != nil {
			return totals, fmt.Errorf("context error: %w", err)
		}
		if err != nil {
			logger := prog.walkLogger(ctx, nil, nil)
			logger.Warn("An entry was skipped due to a traversal error", "error", err)

			continue
		}

		totals.TotalEntries++
		ctx := context.WithValue(ctx, schema.PosKey, totals.TotalEntries)

		c, err := prog.entryContext(entry, totals.FilteredEntries, cfg)
		if err != nil {
			return totals, err
		}

		logger := prog.walkLogger(ctx, c, entry.Path())

		if cfg.Filter != nil {
			ok, err := cfg.Filter(c)
			if err != nil {
				return totals, fmt.Errorf("failed to filter %q: %w", c.RelPath(), err)
			}
			if !ok {
				logger.Debug("Entry was filtered out")
				results.Skipped++

				continue
			}
		}

		inv, err := supply(c)
		if err != nil {
			return totals, fmt.Errorf("failed to supply command for %q: %w", c.RelPath(), err)
		}
		if inv.Command == nil {
			return totals, fmt.Errorf("%w: %q", schema.ErrNoCommandForWalk, c.RelPath())
		}

		logger.Debug("Entry started")

		res, err := prog.runner.Run(ctx, inv.Command, effectiveConfig(c, inv, cfg))
		if err != nil {
			logger.Error("Entry failed to run", "error", err)

			return totals, fmt.Errorf("failed to run %q: %w", c.RelPath(), err)
		}

		switch {
		case command.IsDryRun(res):
			results.DryRun++
		case command.Succeeded(res):
			results.Success++
		default:
			results.Failure++
		}

		if cfg.Observe != nil {
			cfg.Observe(Observation{Context: c, Result: res})
		}

		totals.FilteredEntries++
	}

	results.PrintCompletionInfo(totals.TotalEntries, time.Since(start))

	if cfg.EnhanceResult != nil {
		return cfg.EnhanceResult(totals), nil
	}

	return totals, nil
}

func (prog *Service) entryContext(entry Entry, index int, cfg Config) (Context, error) {
	rel, err := relativize(entry, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to relativize %q: %w", entry.Path(), err)
	}

	var c Context = NewEntryContext(entry, rel, index)

	if cfg.Enhance != nil {
		c, err = cfg.Enhance(c)
		if err != nil {
			return nil, fmt.Errorf("failed to enhance %q: %w", rel, err)
		}
		if c == nil {
			return nil, fmt.Errorf("failed to enhance %q: no context returned", rel)
		}
	}

	return c, nil
}

func relativize(entry Entry, cfg Config) (string, error) {
	if cfg.Relativize != nil {
		return cfg.Relativize(entry)
	}
	if cfg.Root == "" {
		return entry.Path(), nil
	}

	return filepath.Rel(cfg.Root, entry.Path()) //nolint:wrapcheck
}

// effectiveConfig layers the entry's block printing, the walk-level
// configuration and the supplier's override, in increasing precedence.
func effectiveConfig(c Context, inv Invocation, cfg Config) command.Config {
	header := c.RelPath()
	blocks := output.BlockOptions(cfg.Streams, func(command.Result) output.Block {
		return output.Block{Header: header}
	}, command.Config{})

	if inv.Override == nil {
		return command.Merge(blocks, cfg.Run)
	}

	return command.Merge(blocks, cfg.Run, *inv.Override)
}
