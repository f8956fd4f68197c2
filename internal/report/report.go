// Package report aggregates the results of a walk into a JSON report.
package report

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/util"
	"github.com/desertwitch/execwalk/internal/walk"
	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// Record is the outcome of one walked entry.
type Record struct {
	Entry   string         `json:"entry"`
	Path    string         `json:"path"`
	Index   int            `json:"index"`
	Kind    string         `json:"kind"`
	Command schema.Command `json:"command"`

	ExitCode     *int   `json:"exitCode,omitempty"`
	StdoutBytes  int    `json:"stdoutBytes,omitempty"`
	StderrBytes  int    `json:"stderrBytes,omitempty"`
	StdoutBlake3 string `json:"stdoutBlake3,omitempty"`
	StderrBlake3 string `json:"stderrBlake3,omitempty"`

	result command.Result
}

// Result is the result the record was made from.
func (r Record) Result() command.Result {
	return r.result
}

// Succeeded reports whether the entry ran and exited with code 0.
func (r Record) Succeeded() bool {
	return command.Succeeded(r.result)
}

// Report is a [walk.Summary] carrying every record of the walk.
type Report struct {
	ProgramVersion string      `json:"programVersion"`
	Root           string      `json:"root,omitempty"`
	Created        time.Time   `json:"created"`
	Totals         walk.Totals `json:"totals"`

	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	DryRunCount  int      `json:"dryRunCount"`
	Records      []Record `json:"records"`
}

var _ walk.Summary = (*Report)(nil)

func (r *Report) Counts() walk.Totals {
	return r.Totals
}

// Successful returns the records of the entries that exited with code 0.
func (r *Report) Successful() []Record {
	return r.filter(Record.Succeeded)
}

// Failed returns the records of the entries that exited with another code.
func (r *Report) Failed() []Record {
	return r.filter(func(rec Record) bool {
		return command.IsExec(rec.result) && !rec.Succeeded()
	})
}

func (r *Report) filter(keep func(Record) bool) []Record {
	out := []Record{}
	for _, rec := range r.Records {
		if keep(rec) {
			out = append(out, rec)
		}
	}

	return out
}

// Collector records every observed result of a walk. Its Observe and
// Enhance methods are meant for [walk.Config.Observe] and
// [walk.Config.EnhanceResult].
type Collector struct {
	root    string
	records []Record
}

func NewCollector(root string) *Collector {
	return &Collector{
		root:    root,
		records: []Record{},
	}
}

// Observe records the observation.
func (c *Collector) Observe(o walk.Observation) {
	rec := Record{
		Entry:   o.Context.RelPath(),
		Path:    o.Context.Entry().Path(),
		Index:   o.Context.Index(),
		Kind:    o.Result.Kind().String(),
		Command: o.Result.Command().Clone(),
		result:  o.Result,
	}

	if er, ok := command.AsExec(o.Result); ok {
		rec.ExitCode = util.Ptr(er.ExitCode)
		rec.StdoutBytes = len(er.Stdout)
		rec.StderrBytes = len(er.Stderr)
		rec.StdoutBlake3 = digest(er.Stdout)
		rec.StderrBlake3 = digest(er.Stderr)
	}

	c.records = append(c.records, rec)
}

// Enhance turns the walk's summary into a [*Report].
func (c *Collector) Enhance(s walk.Summary) walk.Summary {
	rep := &Report{
		ProgramVersion: schema.ProgramVersion,
		Root:           c.root,
		Created:        time.Now(),
		Totals:         s.Counts(),
		Records:        c.records,
	}

	for _, rec := range rep.Records {
		switch {
		case command.IsDryRun(rec.result):
			rep.DryRunCount++
		case rec.Succeeded():
			rep.SuccessCount++
		default:
			rep.FailureCount++
		}
	}

	return rep
}

// Write stores the report as JSON at path.
func Write(fsys afero.Fs, path string, rep *Report) error {
	if err := util.WriteJSON(fsys, path, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func digest(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	sum := blake3.Sum256(b)

	return hex.EncodeToString(sum[:])
}
