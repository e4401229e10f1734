// Package process records external commands as Tests of a session: every
// output line becomes a Log and the exit status becomes the Test result.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os/exec"
	"slices"
	"time"

	"github.com/aretw0/complog/internal/logging"
	"golang.org/x/sync/errgroup"
)

// StderrPrefix marks log lines read from standard error.
const StderrPrefix = "stderr:"

// ErrNotRegistered is returned by RunRegistered for names outside the allow-list.
var ErrNotRegistered = errors.New("command not registered")

// Sink receives the session operations of a run. *complog.Logger implements it.
type Sink interface {
	StartTest(name string) error
	Log(args ...any) error
	EndTest(result any) error
}

// Result is recorded as the Test result.
type Result struct {
	ExitCode int     `json:"exit_code"`
	Seconds  float64 `json:"seconds"`
}

// String is the queue form of the result.
func (r Result) String() string {
	return fmt.Sprintf("exit_code=%d", r.ExitCode)
}

// Runner executes local processes. Remote callers are limited to the allow-list.
type Runner struct {
	registry map[string]CommandConfig
	baseDir  string
	logger   *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithCommands populates the allow-list from a loaded config.
func WithCommands(cmds map[string]CommandConfig) RunnerOption {
	return func(r *Runner) {
		for name, c := range cmds {
			c.Name = name
			r.registry[name] = c
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithLogger configures a logger for the Runner.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]CommandConfig),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.registry[name] = CommandConfig{Name: name, Command: command, Args: args}
}

// Commands returns the allow-listed names, sorted.
func (r *Runner) Commands() []string {
	return slices.Sorted(maps.Keys(r.registry))
}

// RunRegistered runs an allow-listed command as a Test named after it.
func (r *Runner) RunRegistered(ctx context.Context, sink Sink, name string) (Result, error) {
	c, ok := r.registry[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	env := make([]string, 0, len(c.Environment))
	for k, v := range c.Environment {
		env = append(env, k+"="+v)
	}
	return r.run(ctx, sink, name, env, c.Command, c.Args...)
}

// Run executes command as a Test called name. A non-zero exit is reported in
// the Result, not as an error. The error is set only when the process could
// not run or the sink rejected an operation.
func (r *Runner) Run(ctx context.Context, sink Sink, name, command string, args ...string) (Result, error) {
	return r.run(ctx, sink, name, nil, command, args...)
}

func (r *Runner) run(ctx context.Context, sink Sink, name string, env []string, command string, args ...string) (Result, error) {
	if err := sink.StartTest(name); err != nil {
		return Result{}, err
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), env...)

	start := time.Now()
	res, runErr := r.execute(cmd, sink)
	res.Seconds = time.Since(start).Seconds()

	if runErr != nil {
		r.logger.Warn("Process failed to run", "command", command, "err", runErr)
		_ = sink.Log("failed to run:", runErr)
	}
	if err := sink.EndTest(res); err != nil {
		return res, err
	}
	return res, runErr
}

func (r *Runner) execute(cmd *exec.Cmd, sink Sink) (Result, error) {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, err
	}

	// Both pipes must be drained before Wait closes them.
	var g errgroup.Group
	g.Go(func() error { return forward(stdout, sink) })
	g.Go(func() error { return forward(stderr, sink, StderrPrefix) })
	streamErr := g.Wait()

	waitErr := cmd.Wait()
	res := Result{ExitCode: cmd.ProcessState.ExitCode()}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return res, waitErr
	}
	return res, streamErr
}

func forward(rd io.Reader, sink Sink, prefix ...any) error {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := sink.Log(append(prefix, sc.Text())...); err != nil {
			// Keep draining so the process does not block on a full pipe.
			_, _ = io.Copy(io.Discard, rd)
			return err
		}
	}
	return sc.Err()
}
