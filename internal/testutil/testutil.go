package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertwitch/execwalk/internal/schema"
	"github.com/spf13/afero"
)

type SafeBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (sb *SafeBuffer) Bytes() []byte {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.buf.Bytes()
}

func (sb *SafeBuffer) Write(p []byte) (n int, err error) { //nolint:nonamedreturns
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.buf.Write(p)
}

func (sb *SafeBuffer) String() string {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.buf.String()
}

func (sb *SafeBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buf.Reset()
}

func (sb *SafeBuffer) Len() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.buf.Len()
}

type MockRunner struct {
	RunFunc func(ctx context.Context, cmd schema.Command, stdout io.Writer, stderr io.Writer) error

	mu    sync.Mutex
	calls []schema.Command
}

func (m *MockRunner) Run(ctx context.Context, cmd schema.Command, stdout io.Writer, stderr io.Writer) error {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, cmd, stdout, stderr)
	}

	return nil
}

// Calls returns the commands the runner was asked to run, in order.
func (m *MockRunner) Calls() []schema.Command {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]schema.Command{}, m.calls...)
}

// MockEntry is a fixed filesystem entry for feeding walks in tests.
type MockEntry struct {
	P   string
	Dir bool
}

func (e MockEntry) Path() string {
	return e.P
}

func (e MockEntry) Name() string {
	return filepath.Base(e.P)
}

func (e MockEntry) IsDir() bool {
	return e.Dir
}

// Seq turns the given items into a single-use sequence without errors.
func Seq[E any](items ...E) iter.Seq2[E, error] {
	return func(yield func(E, error) bool) {
		for _, it := range items {
			if !yield(it, nil) {
				return
			}
		}
	}
}

// FailingStatFs wraps an afero.Fs and fails Stat calls for paths containing FailPattern.
type FailingStatFs struct {
	afero.Fs

	FailPattern string
}

func (f *FailingStatFs) Stat(name string) (os.FileInfo, error) {
	if strings.Contains(name, f.FailPattern) {
		return nil, errors.New("stat failed")
	}

	return f.Fs.Stat(name)
}

type FailingWriteFs struct {
	afero.Fs

	FailSuffix string
}

func (f *FailingWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if strings.HasSuffix(name, f.FailSuffix) && (flag&os.O_CREATE != 0 || flag&os.O_WRONLY != 0) {
		return nil, errors.New("permission denied: open file failed")
	}

	return f.Fs.OpenFile(name, flag, perm)
}

func (f *FailingWriteFs) Create(name string) (afero.File, error) {
	if strings.HasSuffix(name, f.FailSuffix) {
		return nil, errors.New("permission denied: create file failed")
	}

	return f.Fs.Create(name)
}

func CreateExitError(t *testing.T, ctx context.Context, code int) error {
	t.Helper()

	if code < 0 {
		panic("exit code cannot be < 0")
	}

	cmd := exec.CommandContext(ctx, //nolint:gosec
		"sh", "-c", fmt.Sprintf("exit %d", code))
	cmd.WaitDelay = 5 * time.Second //nolint:mnd

	return cmd.Run()
}
