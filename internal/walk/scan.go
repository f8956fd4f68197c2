package walk

import (
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/util"
)

type ScanOptions struct {
	// IncludeRoot also produces the root directory itself.
	IncludeRoot bool

	// MaxDepth limits the depth below root, with 1 being the direct
	// children of root. Zero or less means no limit.
	MaxDepth int

	// Ignore skips the paths marked with ignore files, if set.
	Ignore *util.IgnoreChecker
}

type scanEntry struct {
	path string
	d    fs.DirEntry
}

func (e scanEntry) Path() string {
	return e.path
}

func (e scanEntry) Name() string {
	return e.d.Name()
}

func (e scanEntry) IsDir() bool {
	return e.d.IsDir()
}

// Scan returns the entries below root in the order the walker visits them.
// A root that is not a directory is produced as the only entry. The ignore
// files themselves are never produced. The sequence is lazy and
// can only be consumed once.
func Scan(walker schema.FilesystemWalker, root string, opts ScanOptions) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		stopped := false

		err := walker.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(nil, fmt.Errorf("%q: %w", path, err)) {
					stopped = true

					return fs.SkipAll
				}

				return nil
			}

			if opts.Ignore != nil {
				if skip, err := opts.Ignore.ShouldSkip(path, d.IsDir()); skip {
					return err //nolint:wrapcheck
				}
			}

			if !d.IsDir() && (d.Name() == schema.IgnoreFile || d.Name() == schema.IgnoreAllFile) {
				return nil
			}

			depth := depthOf(root, path)
			if opts.MaxDepth > 0 && depth > opts.MaxDepth {
				if d.IsDir() {
					return fs.SkipDir
				}

				return nil
			}

			if depth > 0 || opts.IncludeRoot || !d.IsDir() {
				if !yield(scanEntry{path: path, d: d}, nil) {
					stopped = true

					return fs.SkipAll
				}
			}

			if d.IsDir() && opts.MaxDepth > 0 && depth == opts.MaxDepth {
				return fs.SkipDir
			}

			return nil
		})
		if err != nil && !stopped {
			yield(nil, fmt.Errorf("failed to walk FS: %w", err))
		}
	}
}

func depthOf(root string, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}

	return strings.Count(rel, string(filepath.Separator)) + 1
}
