// Package process runs external tools (ffmpeg, the whisper helper) and
// captures their output.
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Command configures a subprocess to execute.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
	// Env is additional environment variables (key=value). Merged with os.Environ.
	Env []string
	// Stdin provides input to the process. May be nil.
	Stdin io.Reader
	// GracePeriod is how long to wait after SIGTERM before SIGKILL.
	// Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Args...), " ")
}

// Result holds the output and status of a completed subprocess.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int // -1 if the process was killed
	Duration time.Duration
}

// Runner executes commands. Tests substitute a RunnerFunc.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command) (*Result, error)

func (f RunnerFunc) Run(ctx context.Context, cmd Command) (*Result, error) { return f(ctx, cmd) }

// Exec is the Runner backed by os/exec.
var Exec Runner = RunnerFunc(Run)

// Run executes a subprocess and waits for it to complete.
// If the context is canceled, SIGTERM is sent to the process group first,
// then SIGKILL after GracePeriod.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // running configured tools is the point
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: %s killed by context: %w", cmd.Binary, ctx.Err())
		}
		if tail := Tail(result.Stderr, 5); tail != "" {
			return result, fmt.Errorf("process: %s exit code %d: %w\n%s", cmd.Binary, result.ExitCode, err, tail)
		}
		return result, fmt.Errorf("process: %s exit code %d: %w", cmd.Binary, result.ExitCode, err)
	}

	return result, nil
}

// Tail returns the last n non-empty lines of out.
func Tail(out []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	var kept []string
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			kept = append([]string{l}, kept...)
		}
	}
	return strings.Join(kept, "\n")
}

// LookPath reports whether binary resolves on PATH (or as a path).
func LookPath(binary string) (string, error) {
	return exec.LookPath(binary)
}

func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	return append(os.Environ(), extra...)
}
