// Package service starts long-running processes that become ready once
// they accept TCP connections.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/desertwitch/execwalk/internal/command"
	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/desertwitch/execwalk/internal/schema"
)

const (
	DefaultHost         = "127.0.0.1"
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

type Options struct {
	Command command.Specifier

	Host string
	Port int

	// Timeout bounds the wait for readiness.
	Timeout time.Duration

	// PollInterval is the pause between two connection attempts.
	PollInterval time.Duration

	Stdout io.Writer
	Stderr io.Writer

	Log *logging.Logger
}

// Process is a started service. It must be stopped by the caller.
type Process struct {
	cmd  *exec.Cmd
	log  *logging.Logger
	addr string

	done    chan struct{}
	waitErr error

	stopOnce sync.Once
}

// Start spawns the service and waits until its port accepts connections.
// When the timeout passes or ctx ends first, the process is killed and
// waited for before returning. A process that exits on its own before
// becoming ready is reported as [schema.ErrProcessExited]. A port that
// already accepts connections before the spawn is a bad invocation.
func Start(ctx context.Context, opts Options) (*Process, error) {
	opts = withDefaults(opts)

	if opts.Port <= 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", schema.ErrExitBadInvocation, opts.Port)
	}

	var cmd schema.Command
	if opts.Command != nil {
		cmd = opts.Command.Resolve()
	}
	if len(cmd.Args) == 0 {
		return nil, fmt.Errorf("%w: %w", schema.ErrSpawnFailure, schema.ErrEmptyCommand)
	}

	addr := net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))
	if portInUse(ctx, addr, opts.PollInterval) {
		return nil, fmt.Errorf("%w: port already in use: %s", schema.ErrExitBadInvocation, addr)
	}

	c := exec.Command(cmd.Args[0], cmd.Args[1:]...) //nolint:gosec,noctx
	c.Dir = cmd.Dir
	c.Stdout = opts.Stdout
	c.Stderr = opts.Stderr
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Environ()...)
	}

	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", schema.ErrSpawnFailure, cmd.Name(), err)
	}

	p := &Process{
		cmd:  c,
		addr: addr,
		done: make(chan struct{}),
	}
	p.log = opts.Log.With("pid", c.Process.Pid, "addr", p.addr)

	go func() {
		p.waitErr = c.Wait()
		close(p.done)
	}()

	p.log.Debug("Service started, waiting for readiness",
		"args", cmd.Args,
		"timeout", opts.Timeout.String(),
		"pollInterval", opts.PollInterval.String())

	if err := p.awaitReady(ctx, opts); err != nil {
		return nil, err
	}

	p.log.Debug("Service is ready")

	return p, nil
}

func withDefaults(opts Options) Options {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Log == nil {
		opts.Log = logging.Discard()
	}

	return opts
}

func (p *Process) awaitReady(ctx context.Context, opts Options) error {
	timeout := time.NewTimer(opts.Timeout)
	defer timeout.Stop()

	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	dialer := net.Dialer{Timeout: opts.PollInterval}

	for {
		conn, err := dialer.DialContext(ctx, "tcp", p.addr)
		if err == nil {
			_ = conn.Close()

			select {
			case <-p.done:
				p.log.Warn("Service exited while its port accepted connections", "error", p.waitErr)

				return fmt.Errorf("%w: %w", schema.ErrProcessExited, p.exitError())
			default:
				return nil
			}
		}

		select {
		case <-p.done:
			p.log.Warn("Service exited before becoming ready", "error", p.waitErr)

			return fmt.Errorf("%w: %w", schema.ErrProcessExited, p.exitError())

		case <-ctx.Done():
			p.Stop()

			return fmt.Errorf("context error: %w", ctx.Err())

		case <-timeout.C:
			p.log.Warn("Service did not become ready in time (killed)", "timeout", opts.Timeout.String())
			p.Stop()

			return fmt.Errorf("%w: %s after %s", schema.ErrServiceNotReady, p.addr, opts.Timeout)

		case <-ticker.C:
		}
	}
}

// portInUse reports whether something already accepts connections on addr.
func portInUse(ctx context.Context, addr string, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()

	return true
}

func (p *Process) exitError() error {
	if p.waitErr != nil {
		return p.waitErr
	}

	return errors.New("exit status 0")
}

// PID is the operating system's identifier of the process.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Addr is the address that was polled for readiness.
func (p *Process) Addr() string {
	return p.addr
}

// Done is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the process exits and returns its exit error.
func (p *Process) Wait() error {
	<-p.done

	return p.waitErr
}

// Stop kills the process and waits for it to exit. It is safe to call
// more than once and after the process has exited on its own.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}

		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.log.Warn("Failed to kill service", "error", err)
		}
		<-p.done

		p.log.Debug("Service stopped")
	})
}

// Kill terminates the process with the given identifier.
func Kill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to kill process: %w", err)
	}

	return nil
}
