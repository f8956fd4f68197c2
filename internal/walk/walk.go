// Package walk applies a command to every entry of a filesystem traversal.
package walk

import (
	"github.com/desertwitch/execwalk/internal/command"
)

// Entry is a single element produced by a traversal.
type Entry interface {
	Path() string
	Name() string
	IsDir() bool
}

// Context is what the walk knows about the current entry. Enhancement
// functions may return their own type embedding a Context.
type Context interface {
	Entry() Entry
	RelPath() string

	// Index is the zero-based position among the entries that passed the
	// filter before this one.
	Index() int
}

var _ Context = (*EntryContext)(nil)

// EntryContext is the [Context] built by the walk for every visited entry.
type EntryContext struct {
	entry Entry
	rel   string
	index int
}

func NewEntryContext(entry Entry, rel string, index int) *EntryContext {
	return &EntryContext{
		entry: entry,
		rel:   rel,
		index: index,
	}
}

func (c *EntryContext) Entry() Entry {
	return c.entry
}

func (c *EntryContext) RelPath() string {
	return c.rel
}

func (c *EntryContext) Index() int {
	return c.index
}

// Summary is the outcome of a walk. Result enhancement functions may
// return their own type embedding a Summary.
type Summary interface {
	Counts() Totals
}

var _ Summary = Totals{}

// Totals is the [Summary] built by the walk itself.
type Totals struct {
	// TotalEntries counts every entry produced by the traversal.
	TotalEntries int `json:"totalEntries"`

	// FilteredEntries counts the entries that passed the filter and were
	// handed to the runner.
	FilteredEntries int `json:"filteredEntries"`
}

func (t Totals) Counts() Totals {
	return t
}

// Invocation is what a [Supplier] wants to run for an entry.
type Invocation struct {
	Command command.Specifier

	// Override is merged over the walk-level configuration.
	Override *command.Config
}

// Cmd returns an [Invocation] of spec without an override.
func Cmd(spec command.Specifier) Invocation {
	return Invocation{Command: spec}
}

// CmdWith returns an [Invocation] of spec with an override.
func CmdWith(spec command.Specifier, override command.Config) Invocation {
	return Invocation{Command: spec, Override: &override}
}

// Supplier selects the command for an entry.
type Supplier func(c Context) (Invocation, error)

// Filter reports whether an entry should be run.
type Filter func(c Context) (bool, error)

// Observation is handed to the observer for every entry that was run.
type Observation struct {
	Context Context
	Result  command.Result
}
