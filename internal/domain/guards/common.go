// Package guards holds the seven analyzers of the compliance gate. Each guard
// reads the pending changes through a domain.DiffSource, consults the
// injected domain.Policy and returns a uniform domain.GuardRun.
package guards

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/diff"
)

// Guard is one analyzer of the pipeline.
type Guard interface {
	Name() domain.GuardName
	Run(ctx context.Context) domain.GuardRun
}

// isComment reports whether a source line is a C-style comment line.
func isComment(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "//") ||
		strings.HasPrefix(t, "/*") ||
		strings.HasPrefix(t, "*")
}

// isScriptComment extends isComment with shell/YAML style "#" comments.
func isScriptComment(line string) bool {
	return isComment(line) || strings.HasPrefix(strings.TrimSpace(line), "#")
}

// dedupe keeps the first finding of every key, preserving order.
func dedupe[T any](items []T, key func(T) string) []T {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, it := range items {
		k := key(it)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

func toViolations[T domain.Violation](items []T) []domain.Violation {
	out := make([]domain.Violation, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// skipped is the result of a guard with nothing to inspect.
func skipped(name domain.GuardName, reason string) domain.GuardRun {
	return domain.GuardRun{
		Result: domain.GuardResult{
			Guard:   name,
			Passed:  true,
			Details: []string{reason},
		},
	}
}

// patchFor fetches and parses the diff of one path or directory.
func patchFor(ctx context.Context, src domain.DiffSource, pattern string) *diff.Patch {
	return diff.ParseUnified(src.DiffForPath(ctx, pattern))
}

var secretRunRe = regexp.MustCompile(`([A-Za-z0-9_-]{4})[A-Za-z0-9_-]{16,}`)

// MaskMarker replaces the hidden part of a masked token.
const MaskMarker = "****"

// MaskSecrets hides every run of 20 or more token characters, keeping only
// its first four.
func MaskSecrets(line string) string {
	return secretRunRe.ReplaceAllString(line, "${1}"+MaskMarker)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

type noFilter struct{}

func (noFilter) Excluded(string) bool { return false }

func orNoFilter(f domain.PathFilter) domain.PathFilter {
	if f == nil {
		return noFilter{}
	}
	return f
}
