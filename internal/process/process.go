package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/handiism/skylark-downloader/internal/logging"
)

var commandContext = exec.CommandContext

// stderrLimit bounds the diagnostic tail kept per process.
const stderrLimit = 64 * 1024

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after the child itself was killed.
const waitDelay = 5 * time.Second

// Result is the outcome of one process run.
type Result struct {
	ExitCode  int
	Stdout    []byte
	Stderr    []byte
	TimedOut  bool
	Cancelled bool
	Elapsed   time.Duration
}

// Success reports a zero exit that was neither timed out nor cancelled.
func (r Result) Success() bool {
	return r.ExitCode == 0 && !r.TimedOut && !r.Cancelled
}

// LastLine returns the last non-blank stderr line, falling back to stdout.
func (r Result) LastLine() string {
	if line := lastLine(r.Stderr); line != "" {
		return line
	}
	return lastLine(r.Stdout)
}

func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}

// Runner runs external processes. Exec is the production implementation.
type Runner interface {
	Run(ctx context.Context, name string, args []string, timeout time.Duration) (Result, error)
	Stream(ctx context.Context, name string, args []string, timeout time.Duration, onLine func([]byte)) (Result, error)
}

// Exec runs processes with os/exec.
type Exec struct {
	logger *slog.Logger
}

// NewExec creates an Exec. A nil logger discards output.
func NewExec(logger *slog.Logger) *Exec {
	return &Exec{logger: logging.OrNop(logger)}
}

// Run executes name with args and collects stdout and the tail of stderr.
// A timeout of zero means no limit beyond ctx.
func (e *Exec) Run(ctx context.Context, name string, args []string, timeout time.Duration) (Result, error) {
	var stdout bytes.Buffer
	return e.run(ctx, name, args, timeout, func(r io.Reader) error {
		_, err := io.Copy(&stdout, r)
		return err
	}, &stdout)
}

// Stream executes name with args and calls onLine for each stdout line, with
// the line terminator removed, from the calling goroutine. Result.Stdout is
// left empty.
func (e *Exec) Stream(ctx context.Context, name string, args []string, timeout time.Duration, onLine func([]byte)) (Result, error) {
	return e.run(ctx, name, args, timeout, func(r io.Reader) error {
		br := bufio.NewReaderSize(r, 64*1024)
		for {
			line, err := br.ReadBytes('\n')
			if trimmed := bytes.TrimRight(line, "\r\n"); len(trimmed) > 0 {
				onLine(trimmed)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}, nil)
}

func (e *Exec) run(ctx context.Context, name string, args []string, timeout time.Duration, consume func(io.Reader) error, stdout *bytes.Buffer) (Result, error) {
	runCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	stderr := &tailBuffer{limit: stderrLimit}
	cmd := commandContext(runCtx, name, args...) //nolint:gosec
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	configure(cmd)

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("stdout pipe: %w", err)
	}

	start := time.Now()
	e.logger.Debug("starting process", slog.String("binary", name), slog.Any("args", args))
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start %s: %w", name, err)
	}

	readErr := consume(pipe)
	if readErr != nil {
		// Drain so the child does not block on a full pipe.
		_, _ = io.Copy(io.Discard, pipe)
	}
	waitErr := cmd.Wait()

	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stderr:   stderr.Bytes(),
		Elapsed:  time.Since(start),
	}
	if stdout != nil {
		res.Stdout = stdout.Bytes()
	}
	switch {
	case ctx.Err() != nil:
		res.Cancelled = true
	case runCtx.Err() != nil:
		res.TimedOut = true
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) && !expectedWaitErr(waitErr) {
		return res, fmt.Errorf("wait %s: %w", name, waitErr)
	}
	if readErr != nil {
		return res, fmt.Errorf("read %s output: %w", name, readErr)
	}

	e.logger.Debug("process finished",
		slog.String("binary", name),
		slog.Int("exit_code", res.ExitCode),
		slog.Bool("timed_out", res.TimedOut),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func expectedWaitErr(err error) bool {
	return errors.Is(err, exec.ErrWaitDelay) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return bytes.Clone(t.buf)
}
