// Package gitdiff is the git-backed diff source. Every query tries the
// staged changes first and falls back to the previous commit.
package gitdiff

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/diff"
)

// MaxDiffOutput caps the output kept from a single git invocation.
const MaxDiffOutput = 10 * 1024 * 1024

// Source implements domain.DiffSource on top of the git CLI. It never fails:
// a git error is logged at debug level and treated as an empty diff.
type Source struct {
	runner domain.CommandRunner
	dir    string
	logger *slog.Logger
}

// New returns a Source running git in dir.
func New(runner domain.CommandRunner, dir string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{runner: runner, dir: dir, logger: logger}
}

func (s *Source) AddedLines(ctx context.Context) []domain.DiffLine {
	raw := s.twoTier(ctx,
		[]string{"diff", "--cached", "--diff-filter=AM", "-U0"},
		[]string{"diff", "HEAD~1", "--diff-filter=AM", "-U0"},
	)
	if raw == "" {
		return nil
	}
	return diff.ParseUnified(raw).AddedLines()
}

func (s *Source) ChangedFiles(ctx context.Context) []domain.ChangedFile {
	raw := s.twoTier(ctx,
		[]string{"diff", "--cached", "--name-status"},
		[]string{"diff", "HEAD~1", "--name-status"},
	)
	if raw == "" {
		return nil
	}
	return diff.ParseNameStatus(raw)
}

func (s *Source) DiffForPath(ctx context.Context, pattern string) string {
	return s.twoTier(ctx,
		[]string{"diff", "--cached", "--", pattern},
		[]string{"diff", "HEAD~1", "--", pattern},
	)
}

func (s *Source) HasFileChanged(ctx context.Context, path string) bool {
	return anyChanged(s.ChangedFiles(ctx), path)
}

// twoTier runs the staged query and, when it yields nothing, the fallback.
func (s *Source) twoTier(ctx context.Context, staged, fallback []string) string {
	if out := s.git(ctx, staged...); strings.TrimSpace(out) != "" {
		return out
	}
	if out := s.git(ctx, fallback...); strings.TrimSpace(out) != "" {
		return out
	}
	return ""
}

func (s *Source) git(ctx context.Context, args ...string) string {
	res := s.runner.Run(ctx, domain.Command{
		Name:      "git",
		Args:      gitArgs(args),
		Dir:       s.dir,
		MaxOutput: MaxDiffOutput,
	})
	if !res.Succeeded() {
		s.logger.Debug("git query yielded no diff",
			"args", strings.Join(args, " "),
			"exit_code", res.ExitCode,
			"stderr", strings.TrimSpace(res.Stderr))
		return ""
	}
	return res.Stdout
}

// gitArgs pins output options that user configuration could change. They go
// before any "--" path separator.
func gitArgs(args []string) []string {
	out := []string{"-c", "core.quotePath=false", "--no-pager"}
	i := len(args)
	for j, a := range args {
		if a == "--" {
			i = j
			break
		}
	}
	out = append(out, args[:i]...)
	out = append(out, "--no-color", "--no-ext-diff", "--src-prefix=a/", "--dst-prefix=b/")
	return append(out, args[i:]...)
}

// anyChanged reports whether a changed path equals path or lies under it.
// Patterns with glob syntax are matched with doublestar.
func anyChanged(files []domain.ChangedFile, path string) bool {
	glob := strings.ContainsAny(path, "*?[{")
	for _, f := range files {
		if f.Path == path || strings.HasPrefix(f.Path, path) {
			return true
		}
		if glob {
			if ok, _ := doublestar.Match(path, f.Path); ok {
				return true
			}
		}
	}
	return false
}
