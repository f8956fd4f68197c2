package command

import (
	"github.com/desertwitch/execwalk/internal/schema"
)

// Kind discriminates the variants of a [Result].
type Kind int

const (
	KindDryRun Kind = iota + 1
	KindExec
)

func (k Kind) String() string {
	switch k {
	case KindDryRun:
		return "dry-run"
	case KindExec:
		return "exec"
	default:
		return "unknown"
	}
}

// Result is the outcome of one command invocation. It is either a
// [*DryRunResult] or an [*ExecResult]. Transformations may wrap a Result in
// their own type by embedding it, which keeps the variant discriminable.
type Result interface {
	Kind() Kind
	Command() schema.Command
	Options() Config

	// Exec returns the payload of an executed command, or false for a dry run.
	Exec() (*ExecResult, bool)
}

var (
	_ Result = (*DryRunResult)(nil)
	_ Result = (*ExecResult)(nil)
)

// DryRunResult describes a command that would have been executed.
type DryRunResult struct {
	Cmd schema.Command
	Cfg Config
}

func (r *DryRunResult) Kind() Kind {
	return KindDryRun
}

func (r *DryRunResult) Command() schema.Command {
	return r.Cmd
}

func (r *DryRunResult) Options() Config {
	return r.Cfg
}

func (r *DryRunResult) Exec() (*ExecResult, bool) {
	return nil, false
}

// ExecResult describes a process that ran to completion.
type ExecResult struct {
	Cmd      schema.Command
	Cfg      Config
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

func (r *ExecResult) Kind() Kind {
	return KindExec
}

func (r *ExecResult) Command() schema.Command {
	return r.Cmd
}

func (r *ExecResult) Options() Config {
	return r.Cfg
}

func (r *ExecResult) Exec() (*ExecResult, bool) {
	return r, true
}

// Succeeded reports whether the process exited with code 0.
func (r *ExecResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Body returns the output that matters for the outcome: standard output on
// success and standard error on failure.
func (r *ExecResult) Body() []byte {
	if r.Succeeded() {
		return r.Stdout
	}

	return r.Stderr
}

func IsDryRun(r Result) bool {
	return r != nil && r.Kind() == KindDryRun
}

func IsExec(r Result) bool {
	return r != nil && r.Kind() == KindExec
}

// AsExec returns the exec payload of r, also through wrapping types.
func AsExec(r Result) (*ExecResult, bool) {
	if r == nil {
		return nil, false
	}

	return r.Exec()
}

// Succeeded reports whether r is an executed command that exited with code 0.
func Succeeded(r Result) bool {
	er, ok := AsExec(r)

	return ok && er.Succeeded()
}
