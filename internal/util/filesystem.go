package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/karrick/godirwalk"
	"github.com/spf13/afero"
)

var (
	_ schema.FilesystemWalker = AferoWalker{}
	_ schema.FilesystemWalker = OSWalker{}
	_ schema.FilesystemWalker = GodirWalker{}
)

// WriteJSON marshals v as indented JSON and writes it to path.
func WriteJSON(fsys afero.Fs, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}

	err = afero.WriteFile(fsys, path, data, UmaskFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}

	return nil
}

// NewWalker returns the walker that suits the given filesystem and kind.
// Non-OS filesystems can only be walked through [AferoWalker].
func NewWalker(fsys afero.Fs, kind string) schema.FilesystemWalker {
	if _, ok := fsys.(*afero.OsFs); !ok {
		return AferoWalker{Fs: fsys}
	}

	switch kind {
	case schema.WalkerAfero:
		return AferoWalker{Fs: fsys}
	case schema.WalkerGodirwalk:
		return GodirWalker{}
	default:
		return OSWalker{}
	}
}

// AferoWalker is an adapter to turn the [afero.Walk] into a [filepath.WalkDir] signature.
type AferoWalker struct {
	Fs afero.Fs
}

// WalkDir is a method that adapts [afero.Walk] into a [filepath.WalkDir] compatible signature.
func (w AferoWalker) WalkDir(root string, fn fs.WalkDirFunc) error {
	err := afero.Walk(w.Fs, root, func(path string, info fs.FileInfo, err error) error {
		var entry fs.DirEntry

		if info != nil {
			entry = fileInfoDirEntry{info}
		}

		return fn(path, entry, err)
	})
	if errors.Is(err, filepath.SkipAll) {
		return nil
	}

	return err //nolint:wrapcheck
}

// OSWalker is a wrapper structure for the native [filepath.WalkDir] function.
type OSWalker struct{}

// WalkDir is a wrapper method for the native [filepath.WalkDir] function.
func (w OSWalker) WalkDir(root string, fn fs.WalkDirFunc) error {
	return filepath.WalkDir(root, fn) //nolint:wrapcheck
}

// GodirWalker walks the OS filesystem with [godirwalk.Walk], visiting the
// children of each directory in lexical order.
type GodirWalker struct{}

// WalkDir adapts [godirwalk.Walk] into a [filepath.WalkDir] compatible signature.
func (w GodirWalker) WalkDir(root string, fn fs.WalkDirFunc) error {
	var halted error

	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted:          false,
		AllowNonDirectory: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			err := fn(path, direntDirEntry{path: path, de: de}, nil)
			if err != nil && !errors.Is(err, filepath.SkipDir) {
				halted = err
			}

			return err
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if halted != nil {
				return godirwalk.Halt
			}
			if halted = fn(path, nil, err); halted != nil {
				return godirwalk.Halt
			}

			return godirwalk.SkipNode
		},
	})

	if errors.Is(halted, filepath.SkipAll) {
		return nil
	}
	if halted != nil {
		return halted
	}

	return err //nolint:wrapcheck
}

type direntDirEntry struct {
	path string
	de   *godirwalk.Dirent
}

func (d direntDirEntry) Name() string {
	return d.de.Name()
}

func (d direntDirEntry) IsDir() bool {
	return d.de.IsDir()
}

func (d direntDirEntry) Type() fs.FileMode {
	return d.de.ModeType()
}

func (d direntDirEntry) Info() (fs.FileInfo, error) {
	return os.Lstat(d.path) //nolint:wrapcheck
}

type fileInfoDirEntry struct {
	fs.FileInfo
}

func (fi fileInfoDirEntry) Type() fs.FileMode {
	return fi.Mode().Type()
}

func (fi fileInfoDirEntry) Info() (fs.FileInfo, error) {
	return fi.FileInfo, nil
}

func (fi fileInfoDirEntry) IsDir() bool {
	return fi.Mode().IsDir()
}

func (fi fileInfoDirEntry) Name() string {
	return fi.FileInfo.Name()
}

// IgnoreChecker decides whether a walked path is excluded by an ignore file
// placed in its directory.
type IgnoreChecker struct {
	fsys afero.Fs

	lastVisited  string
	hasIgnore    bool
	hasIgnoreAll bool
}

func NewIgnoreChecker(fsys afero.Fs) *IgnoreChecker {
	return &IgnoreChecker{
		fsys: fsys,
	}
}

// ShouldSkip reports whether path is to be skipped. For directories holding
// an ignore-all file it also returns [filepath.SkipDir].
func (c *IgnoreChecker) ShouldSkip(path string, isDir bool) (bool, error) {
	if isDir {
		if _, err := c.fsys.Stat(filepath.Join(path, schema.IgnoreAllFile)); err == nil {
			return true, filepath.SkipDir
		}
	}

	if currentDir := filepath.Dir(path); currentDir != c.lastVisited {
		ignorePath := filepath.Join(currentDir, schema.IgnoreFile)
		ignoreAllPath := filepath.Join(currentDir, schema.IgnoreAllFile)

		_, err := c.fsys.Stat(ignorePath)
		c.hasIgnore = (err == nil)
		_, err = c.fsys.Stat(ignoreAllPath)
		c.hasIgnoreAll = (err == nil)

		c.lastVisited = currentDir
	}

	if isDir && c.hasIgnoreAll {
		return true, filepath.SkipDir
	} else if !isDir && (c.hasIgnore || c.hasIgnoreAll) {
		return true, nil
	}

	return false, nil
}
