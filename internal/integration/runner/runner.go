// Package runner runs the file being edited with the interpreter
// configured for its extension.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/integration/process"
)

// Sentinel errors.
var (
	// ErrNoFile is returned when there is no file to run.
	ErrNoFile = errors.New("no file opened")

	// ErrUnsupported is returned when no interpreter is configured for
	// the file's extension.
	ErrUnsupported = errors.New("no interpreter for file type")
)

// DefaultInterpreters maps extensions to interpreters.
func DefaultInterpreters() map[string]string {
	return map[string]string{".py": "python3"}
}

// Result is the outcome of a run.
type Result struct {
	// Output is stdout and stderr interleaved.
	Output   string
	ExitCode int
	Duration time.Duration
}

// Executor runs files through a process supervisor.
type Executor struct {
	supervisor   *process.Supervisor
	interpreters map[string]string
	killTimeout  time.Duration
	logger       *zap.Logger
}

// NewExecutor creates an executor. Extensions are matched case
// insensitively and must include the leading dot; an empty map means
// DefaultInterpreters.
func NewExecutor(sup *process.Supervisor, interpreters map[string]string, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(interpreters) == 0 {
		interpreters = DefaultInterpreters()
	}
	norm := make(map[string]string, len(interpreters))
	for ext, prog := range interpreters {
		norm[strings.ToLower(ext)] = prog
	}
	return &Executor{
		supervisor:   sup,
		interpreters: norm,
		killTimeout:  2 * time.Second,
		logger:       logger,
	}
}

// Interpreter returns the program configured for path.
func (e *Executor) Interpreter(path string) (string, error) {
	if path == "" {
		return "", ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(path))
	prog, ok := e.interpreters[ext]
	if !ok {
		return "", fmt.Errorf("%w %q (supported: %s)", ErrUnsupported, ext, strings.Join(e.Extensions(), ", "))
	}
	return prog, nil
}

// Extensions returns the supported extensions, sorted.
func (e *Executor) Extensions() []string {
	exts := make([]string, 0, len(e.interpreters))
	for ext := range e.interpreters {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Run executes path and returns its combined output. A non-zero exit is
// reported through Result.ExitCode, not as an error. Cancelling ctx stops
// the process.
func (e *Executor) Run(ctx context.Context, path string) (Result, error) {
	prog, err := e.Interpreter(path)
	if err != nil {
		return Result{}, err
	}

	cmd := exec.Command(prog, path)
	cmd.Dir = filepath.Dir(path)

	proc, err := e.supervisor.Start(prog, cmd)
	if err != nil {
		return Result{}, fmt.Errorf("run %s: %w", filepath.Base(path), err)
	}
	defer proc.Close()
	_ = proc.Stdin.Close()

	e.logger.Info("running file", zap.String("path", path), zap.String("interpreter", prog))

	type readResult struct {
		data []byte
		err  error
	}
	read := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(proc.Output)
		read <- readResult{data, err}
	}()

	var out readResult
	select {
	case out = <-read:
		<-proc.Done()
	case <-ctx.Done():
		proc.Stop(e.killTimeout)
		_ = proc.Close()
		<-read
		return Result{}, ctx.Err()
	}
	if out.err != nil {
		return Result{}, fmt.Errorf("read output: %w", out.err)
	}

	res := Result{
		Output:   string(out.data),
		ExitCode: proc.ExitCode(),
		Duration: proc.Runtime(),
	}
	e.logger.Info("run finished",
		zap.String("path", path),
		zap.Int("code", res.ExitCode),
		zap.Duration("duration", res.Duration))
	return res, nil
}
