package walk

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// RejectGlobs returns a [Filter] rejecting every entry whose relative path
// or base name matches any of the patterns. Paths are matched with forward
// slashes, and "**" matches across directories.
func RejectGlobs(patterns ...string) (Filter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, p)
		}
	}

	return func(c Context) (bool, error) {
		rel := filepath.ToSlash(c.RelPath())
		name := c.Entry().Name()

		for _, p := range patterns {
			if matched, _ := doublestar.Match(p, rel); matched {
				return false, nil
			}
			if matched, _ := doublestar.Match(p, name); matched {
				return false, nil
			}
		}

		return true, nil
	}, nil
}

// OnlyDirs passes directories only.
func OnlyDirs() Filter {
	return func(c Context) (bool, error) {
		return c.Entry().IsDir(), nil
	}
}

// OnlyFiles passes everything but directories.
func OnlyFiles() Filter {
	return func(c Context) (bool, error) {
		return !c.Entry().IsDir(), nil
	}
}

// Every passes an entry when all filters pass it. Nil filters are ignored;
// evaluation stops at the first rejection or error.
func Every(filters ...Filter) Filter {
	return func(c Context) (bool, error) {
		for _, f := range filters {
			if f == nil {
				continue
			}

			ok, err := f(c)
			if err != nil || !ok {
				return false, err
			}
		}

		return true, nil
	}
}
