package walk

import (
	"maps"
	"path/filepath"
	"strings"

	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/schema"
)

const (
	placeholderPath = "{}"
	placeholderRel  = "{rel}"
	placeholderName = "{name}"
	placeholderDir  = "{dir}"
)

type TemplateOptions struct {
	// Chdir runs the command in the entry's directory: the entry itself
	// for directories and the parent directory for everything else.
	Chdir bool
}

// Template returns a [Supplier] expanding the arguments of spec for every
// entry. The placeholders are "{}" for the entry path, "{rel}" for the
// relative path, "{name}" for the base name and "{dir}" for the entry's
// directory. Without any placeholder the entry path is appended as last
// argument.
func Template(spec command.Specifier, opts TemplateOptions) Supplier {
	base := spec.Resolve()
	args := base.Args

	hasPlaceholder := false
	for _, a := range args {
		if containsPlaceholder(a) {
			hasPlaceholder = true

			break
		}
	}

	return func(c Context) (Invocation, error) {
		if len(args) == 0 {
			return Invocation{}, schema.ErrEmptyCommand
		}

		r := strings.NewReplacer(
			placeholderRel, c.RelPath(),
			placeholderName, c.Entry().Name(),
			placeholderDir, entryDir(c.Entry()),
			placeholderPath, c.Entry().Path(),
		)

		cmd := schema.Command{
			Args: make([]string, 0, len(args)+1),
			Dir:  base.Dir,
			Env:  maps.Clone(base.Env),
		}
		for _, a := range args {
			cmd.Args = append(cmd.Args, r.Replace(a))
		}
		if !hasPlaceholder {
			cmd.Args = append(cmd.Args, c.Entry().Path())
		}
		if opts.Chdir {
			cmd.Dir = entryDir(c.Entry())
		}

		return Cmd(cmd), nil
	}
}

func containsPlaceholder(s string) bool {
	for _, p := range []string{placeholderPath, placeholderRel, placeholderName, placeholderDir} {
		if strings.Contains(s, p) {
			return true
		}
	}

	return false
}

func entryDir(e Entry) string {
	if e.IsDir() {
		return e.Path()
	}

	return filepath.Dir(e.Path())
}
