package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/markc/pablo/pkg/logger"
)

// maxOutput bounds the command output quoted in a Run error.
const maxOutput = 512

// Runner starts host commands, optionally behind a prefix such as sudo.
type Runner struct {
	prefix []string
	logDir string
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithPrefix runs every command behind argv, e.g. "sudo" or "sudo", "-n".
func WithPrefix(argv ...string) Option {
	return func(r *Runner) {
		r.prefix = argv
	}
}

// WithLogDir sets where Start writes command output. Default: os.TempDir().
func WithLogDir(dir string) Option {
	return func(r *Runner) {
		if dir != "" {
			r.logDir = dir
		}
	}
}

// New creates a Runner without prefix logging to log.
func New(log *slog.Logger, opts ...Option) *Runner {
	if log == nil {
		log = logger.NewNope()
	}
	r := &Runner{logDir: os.TempDir(), logger: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LogDir returns the directory Start writes command output to.
func (r *Runner) LogDir() string {
	return r.logDir
}

// Line returns the shell-quoted command line Runner would execute.
func (r *Runner) Line(name string, args ...string) string {
	return shellquote.Join(r.argv(name, args)...)
}

func (r *Runner) argv(name string, args []string) []string {
	argv := make([]string, 0, len(r.prefix)+1+len(args))
	argv = append(argv, r.prefix...)
	argv = append(argv, name)
	return append(argv, args...)
}

// Start launches the command and returns once it is running. Output goes to
// <LogDir>/<name>.log. The process is not bound to ctx since it outlives
// the request.
func (r *Runner) Start(ctx context.Context, name string, args ...string) error {
	argv := r.argv(name, args)
	line := shellquote.Join(argv...)

	out, err := os.OpenFile(filepath.Join(r.logDir, filepath.Base(name)+".log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open log for %q: %w", ErrStart, line, err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Start(); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: %q: %w", ErrStart, line, err)
	}
	r.logger.InfoContext(ctx, "command started", slog.String("command", line), slog.Int("pid", cmd.Process.Pid))

	go func() {
		defer out.Close()
		if err := cmd.Wait(); err != nil {
			r.logger.Error("command failed", slog.String("command", line), slog.Any("error", err))
			return
		}
		r.logger.Info("command finished", slog.String("command", line))
	}()
	return nil
}

// Run executes the command, waits for it and returns its combined output.
// Cancelling ctx kills the process. Logs and errors name the program only,
// never its arguments.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	argv := r.argv(name, args)
	line := shellquote.Join(argv[:len(r.prefix)+1]...)

	var buf bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		r.logger.DebugContext(ctx, "command finished", slog.String("command", line))
		return buf.Bytes(), nil
	case errors.As(err, &exitErr), ctx.Err() != nil:
		r.logger.WarnContext(ctx, "command failed", slog.String("command", line), slog.Any("error", err))
		return buf.Bytes(), fmt.Errorf("%w: %q: %w: %s", ErrFailed, line, err, summary(buf.Bytes()))
	default:
		return nil, fmt.Errorf("%w: %q: %w", ErrStart, line, err)
	}
}

func summary(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutput {
		s = s[:maxOutput] + "..."
	}
	return s
}
