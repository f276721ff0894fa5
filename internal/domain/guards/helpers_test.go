package guards_test

import (
	"context"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// fakeSource serves canned diff data.
type fakeSource struct {
	added []domain.DiffLine
	files []domain.ChangedFile
	diffs map[string]string
}

func (f *fakeSource) AddedLines(context.Context) []domain.DiffLine      { return f.added }
func (f *fakeSource) ChangedFiles(context.Context) []domain.ChangedFile { return f.files }

func (f *fakeSource) DiffForPath(_ context.Context, pattern string) string {
	return f.diffs[pattern]
}

func (f *fakeSource) HasFileChanged(_ context.Context, path string) bool {
	for _, c := range f.files {
		if c.Path == path || strings.HasPrefix(c.Path, path) {
			return true
		}
	}
	return false
}

func added(file string, line int, content string) domain.DiffLine {
	return domain.DiffLine{File: file, LineNumber: line, Content: content}
}

func modified(paths ...string) []domain.ChangedFile {
	out := make([]domain.ChangedFile, len(paths))
	for i, p := range paths {
		out[i] = domain.ChangedFile{Path: p, Status: domain.StatusModified}
	}
	return out
}

type excludeFilter map[string]bool

func (e excludeFilter) Excluded(path string) bool { return e[path] }

// fakeRunner records the last command and returns a canned result.
type fakeRunner struct {
	result domain.CommandResult
	got    domain.Command
	calls  int
}

func (r *fakeRunner) Run(_ context.Context, cmd domain.Command) domain.CommandResult {
	r.got = cmd
	r.calls++
	return r.result
}
