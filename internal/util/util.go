package util

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/davidscholberg/go-durationfmt"
)

const (
	UmaskFilePerm      os.FileMode   = 0o666
	ProcessKillTimeout time.Duration = 10 * time.Second
)

// ResultTracker counts the outcomes of a walk's entries.
type ResultTracker struct {
	Success int
	Failure int
	DryRun  int
	Skipped int

	log *slog.Logger
}

func NewResultTracker(log *slog.Logger) *ResultTracker {
	return &ResultTracker{
		log: log,
	}
}

// Executed is the number of entries that were dispatched to the runner.
func (t *ResultTracker) Executed() int {
	return t.Success + t.Failure + t.DryRun
}

func (t *ResultTracker) PrintCompletionInfo(encounteredCount int, elapsed time.Duration) {
	if t.log == nil {
		return
	}

	executed := t.Executed()

	t.log.Info(
		fmt.Sprintf("Walk complete (%d/%d entries executed)",
			executed, encounteredCount),
		"successCount", t.Success,
		"failureCount", t.Failure,
		"dryRunCount", t.DryRun,
		"skipCount", t.Skipped,
		"executedCount", executed,
		"encounteredCount", encounteredCount,
		"elapsed", FmtDur(elapsed),
	)
}

// Ptr converts a value of type [T] to a pointer of type [*T].
func Ptr[T any](v T) *T {
	return &v
}

func FmtDur(d time.Duration) string {
	d = d.Round(time.Second)

	str, err := durationfmt.Format(d, "%d days, %h hours %m minutes %s seconds")
	if err != nil {
		return "?"
	}

	return str
}
