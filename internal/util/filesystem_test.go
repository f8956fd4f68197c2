package util

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/desertwitch/execwalk/internal/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Expectation: The value should be written out as valid JSON.
func Test_WriteJSON_Success(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/data", 0o755))

	err := WriteJSON(fsys, "/data/report"+schema.ReportExtension, map[string]int{"total": 3})

	require.NoError(t, err)

	by, err := afero.ReadFile(fsys, "/data/report"+schema.ReportExtension)
	require.NoError(t, err)
	require.True(t, json.Valid(by))
	require.Contains(t, string(by), `"total": 3`)
}

// Expectation: A value that cannot be marshalled should return an error.
func Test_WriteJSON_MarshalFails_Error(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()

	err := WriteJSON(fsys, "/data/report"+schema.ReportExtension, make(chan int))

	require.ErrorContains(t, err, "failed to marshal")
}

// Expectation: A write failure should fail the function and return an error.
func Test_WriteJSON_WriteFails_Error(t *testing.T) {
	t.Parallel()

	fsys := &testutil.FailingWriteFs{Fs: afero.NewMemMapFs(), FailSuffix: schema.ReportExtension}
	require.NoError(t, fsys.MkdirAll("/data", 0o755))

	err := WriteJSON(fsys, "/data/report"+schema.ReportExtension, map[string]int{})

	require.ErrorContains(t, err, "failed to write")

	exists, _ := afero.Exists(fsys, "/data/report"+schema.ReportExtension)
	require.False(t, exists)
}

// Expectation: The walker should be chosen by filesystem and kind.
func Test_NewWalker_Table_Success(t *testing.T) {
	t.Parallel()

	memFs := afero.NewMemMapFs()
	osFs := afero.NewOsFs()

	require.Equal(t, AferoWalker{Fs: memFs}, NewWalker(memFs, schema.WalkerGodirwalk))
	require.Equal(t, AferoWalker{Fs: osFs}, NewWalker(osFs, schema.WalkerAfero))
	require.Equal(t, GodirWalker{}, NewWalker(osFs, schema.WalkerGodirwalk))
	require.Equal(t, OSWalker{}, NewWalker(osFs, schema.WalkerNative))
	require.Equal(t, OSWalker{}, NewWalker(osFs, ""))
}

// Expectation: The walker should visit all files and directories.
func Test_AferoWalker_WalkDir_Success(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/subdir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/file1.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/subdir/file2.txt", []byte("content"), 0o644))

	walker := AferoWalker{Fs: fsys}

	var visited []string
	err := walker.WalkDir("/root", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		visited = append(visited, path)

		return nil
	})

	require.NoError(t, err)
	require.Contains(t, visited, "/root")
	require.Contains(t, visited, "/root/file1.txt")
	require.Contains(t, visited, "/root/subdir")
	require.Contains(t, visited, "/root/subdir/file2.txt")
}

// Expectation: The walker should provide correct DirEntry information.
func Test_AferoWalker_WalkDir_DirEntry_Success(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/subdir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/file.txt", []byte("content"), 0o644))

	walker := AferoWalker{Fs: fsys}

	entries := make(map[string]fs.DirEntry)
	err := walker.WalkDir("/root", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		entries[path] = d

		return nil
	})

	require.NoError(t, err)

	require.True(t, entries["/root"].IsDir())
	require.True(t, entries["/root/subdir"].IsDir())
	require.False(t, entries["/root/file.txt"].IsDir())
	require.NotNil(t, entries["/root/file.txt"].Type())

	require.Equal(t, "file.txt", entries["/root/file.txt"].Name())

	info, err := entries["/root/file.txt"].Info()
	require.NoError(t, err)
	require.Equal(t, int64(7), info.Size())
}

// Expectation: The walker should propagate errors from the walk function.
func Test_AferoWalker_WalkDir_Error(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/root/file.txt", []byte("content"), 0o644))

	walker := AferoWalker{Fs: fsys}

	expectedErr := fs.ErrPermission
	err := walker.WalkDir("/root", func(path string, d fs.DirEntry, err error) error {
		if d != nil && !d.IsDir() {
			return expectedErr
		}

		return nil
	})

	require.ErrorIs(t, err, expectedErr)
}

// Expectation: The checker should not skip files when no ignore files exist.
func Test_IgnoreChecker_ShouldSkip_NoIgnoreFiles_Success(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/file.txt", []byte("content"), 0o644))

	checker := NewIgnoreChecker(fsys)

	skip, err := checker.ShouldSkip("/root/file.txt", false)

	require.NoError(t, err)
	require.False(t, skip)
}

// Expectation: The checker should skip files when ignore file exists.
func Test_IgnoreChecker_ShouldSkip_IgnoreFile_SkipsFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/file.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/"+schema.IgnoreFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip, err := checker.ShouldSkip("/root/file.txt", false)

	require.NoError(t, err)
	require.True(t, skip)
}

// Expectation: The checker should not skip directories when only ignore file exists.
func Test_IgnoreChecker_ShouldSkip_IgnoreFile_DoesNotSkipDir(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/subdir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/"+schema.IgnoreFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip, err := checker.ShouldSkip("/root/subdir", true)

	require.NoError(t, err)
	require.False(t, skip)
}

// Expectation: The checker should skip files when ignore-all file exists.
func Test_IgnoreChecker_ShouldSkip_IgnoreAllFile_SkipsFile(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/file.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/"+schema.IgnoreAllFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip, err := checker.ShouldSkip("/root/file.txt", false)

	require.NoError(t, err)
	require.True(t, skip)
}

// Expectation: The checker should skip directories with SkipDir when ignore-all file exists.
func Test_IgnoreChecker_ShouldSkip_IgnoreAllFile_SkipsDir(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/subdir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/"+schema.IgnoreAllFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip, err := checker.ShouldSkip("/root/subdir", true)

	require.True(t, skip)
	require.ErrorIs(t, err, filepath.SkipDir)
}

// Expectation: The checker should cache ignore status for the same directory.
func Test_IgnoreChecker_ShouldSkip_CachesDirectory(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/file1.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/file2.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/"+schema.IgnoreFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip1, _ := checker.ShouldSkip("/root/file1.txt", false)
	skip2, _ := checker.ShouldSkip("/root/file2.txt", false)

	require.True(t, skip1)
	require.True(t, skip2)
	require.Equal(t, "/root", checker.lastVisited)
}

// Expectation: The checker should update cache when directory changes.
func Test_IgnoreChecker_ShouldSkip_UpdatesCacheOnDirChange(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/dir1", 0o755))
	require.NoError(t, fsys.MkdirAll("/root/dir2", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/dir1/file.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/dir2/file.txt", []byte("content"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/dir1/"+schema.IgnoreFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip1, _ := checker.ShouldSkip("/root/dir1/file.txt", false)
	skip2, _ := checker.ShouldSkip("/root/dir2/file.txt", false)

	require.True(t, skip1)
	require.False(t, skip2)
}

// Expectation: The walker should stop without error when the walk function returns SkipAll.
func Test_AferoWalker_WalkDir_SkipAll_Success(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/root/a.txt", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/root/b.txt", []byte("b"), 0o644))

	walker := AferoWalker{Fs: fsys}

	var visited []string
	err := walker.WalkDir("/root", func(path string, _ fs.DirEntry, _ error) error {
		visited = append(visited, path)
		if path == "/root/a.txt" {
			return filepath.SkipAll
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, []string{"/root", "/root/a.txt"}, visited)
}

func makeTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b", "c"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "c", "d.txt"), []byte("d"), 0o644))

	return root
}

// Expectation: The native and godirwalk walkers should visit the same paths in the same order.
func Test_GodirWalker_WalkDir_MatchesOSWalker_Success(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	collect := func(w schema.FilesystemWalker) []string {
		var visited []string
		err := w.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			require.NoError(t, err)
			rel, _ := filepath.Rel(root, path)
			if d.IsDir() {
				rel += "/"
			}
			visited = append(visited, rel)

			return nil
		})
		require.NoError(t, err)

		return visited
	}

	expected := []string{"./", "a.txt", "b/", "b/c/", "b/c/d.txt"}

	require.Equal(t, expected, collect(OSWalker{}))
	require.Equal(t, expected, collect(GodirWalker{}))
}

// Expectation: The godirwalk walker should provide correct DirEntry information.
func Test_GodirWalker_WalkDir_DirEntry_Success(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	entries := make(map[string]fs.DirEntry)
	err := GodirWalker{}.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		entries[path] = d

		return nil
	})

	require.NoError(t, err)

	file := entries[filepath.Join(root, "a.txt")]
	require.NotNil(t, file)
	require.False(t, file.IsDir())
	require.Equal(t, "a.txt", file.Name())
	require.True(t, file.Type().IsRegular())

	info, err := file.Info()
	require.NoError(t, err)
	require.Equal(t, int64(1), info.Size())

	require.True(t, entries[filepath.Join(root, "b")].IsDir())
}

// Expectation: The godirwalk walker should honor SkipDir for directories.
func Test_GodirWalker_WalkDir_SkipDir_Success(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	var visited []string
	err := GodirWalker{}.WalkDir(root, func(path string, d fs.DirEntry, _ error) error {
		visited = append(visited, path)
		if d.IsDir() && d.Name() == "b" {
			return filepath.SkipDir
		}

		return nil
	})

	require.NoError(t, err)
	require.NotContains(t, visited, filepath.Join(root, "b", "c"))
	require.Contains(t, visited, filepath.Join(root, "a.txt"))
}

// Expectation: The godirwalk walker should stop without error on SkipAll.
func Test_GodirWalker_WalkDir_SkipAll_Success(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	var visited int
	err := GodirWalker{}.WalkDir(root, func(_ string, _ fs.DirEntry, _ error) error {
		visited++
		if visited == 2 {
			return filepath.SkipAll
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 2, visited)
}

// Expectation: The godirwalk walker should propagate errors from the walk function.
func Test_GodirWalker_WalkDir_Error(t *testing.T) {
	t.Parallel()

	root := makeTree(t)

	err := GodirWalker{}.WalkDir(root, func(_ string, d fs.DirEntry, _ error) error {
		if d != nil && !d.IsDir() {
			return fs.ErrPermission
		}

		return nil
	})

	require.ErrorIs(t, err, fs.ErrPermission)
}

// Expectation: The godirwalk walker should fail on a missing root.
func Test_GodirWalker_WalkDir_MissingRoot_Error(t *testing.T) {
	t.Parallel()

	err := GodirWalker{}.WalkDir(filepath.Join(t.TempDir(), "missing"), func(_ string, _ fs.DirEntry, err error) error {
		return err
	})

	require.Error(t, err)
}

// Expectation: A directory holding an ignore-all file should itself be skipped.
func Test_IgnoreChecker_ShouldSkip_IgnoreAllFile_SkipsOwnDir(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/root/subdir", 0o755))
	require.NoError(t, afero.WriteFile(fsys, "/root/subdir/"+schema.IgnoreAllFile, []byte{}, 0o644))

	checker := NewIgnoreChecker(fsys)

	skip, err := checker.ShouldSkip("/root/subdir", true)

	require.True(t, skip)
	require.ErrorIs(t, err, filepath.SkipDir)
}
