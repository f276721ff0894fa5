// Package execrunner runs external commands for the diff source and the
// build guard.
package execrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// waitDelay bounds how long Run waits for pipes after the process is killed;
// build tools leave grandchildren holding stdout open.
const waitDelay = 5 * time.Second

// Runner is the os/exec implementation of domain.CommandRunner.
type Runner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

func (r *Runner) Run(ctx context.Context, c domain.Command) domain.CommandResult {
	if c.Name == "" {
		return domain.CommandResult{ExitCode: -1, Err: errors.New("empty command")}
	}

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay

	stdout := &cappedBuffer{max: c.MaxOutput}
	stderr := &cappedBuffer{max: c.MaxOutput}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()

	res := domain.CommandResult{
		Stdout: normalize(stdout.Bytes()),
		Stderr: normalize(stderr.Bytes()),
	}
	if stdout.truncated || stderr.truncated {
		r.logger.Debug("command output truncated", "command", c.Name, "max_bytes", c.MaxOutput)
	}

	switch {
	case err == nil:
		res.ExitCode = 0
	case runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		res.ExitCode = -1
		res.TimedOut = true
		res.Err = fmt.Errorf("%s timed out after %s: %w", c.Name, c.Timeout, context.DeadlineExceeded)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		res.Err = fmt.Errorf("running %s: %w", c.Name, err)
	}

	r.logger.Debug("command finished",
		"command", c.Name,
		"args", strings.Join(c.Args, " "),
		"exit_code", res.ExitCode,
		"duration", time.Since(start))
	return res
}

// cappedBuffer keeps the first max bytes written. Later writes are dropped
// but reported as complete.
type cappedBuffer struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.max <= 0 {
		return b.buf.Write(p)
	}
	room := b.max - b.buf.Len()
	if room <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Bytes() []byte { return b.buf.Bytes() }

func normalize(raw []byte) string {
	if !utf8.Valid(raw) {
		raw = bytes.ToValidUTF8(raw, []byte("�"))
	}
	return strings.ReplaceAll(string(raw), "\r\n", "\n")
}
