package gitdiff

import (
	"context"
	"sync"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// Snapshot memoizes a DiffSource for one pipeline run so every guard sees
// the same diff and git is queried once per question.
type Snapshot struct {
	src domain.DiffSource

	mu     sync.Mutex
	added  []domain.DiffLine
	files  []domain.ChangedFile
	byPath map[string]string
	loaded struct{ added, files bool }
}

func NewSnapshot(src domain.DiffSource) *Snapshot {
	return &Snapshot{src: src, byPath: map[string]string{}}
}

func (s *Snapshot) AddedLines(ctx context.Context) []domain.DiffLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded.added {
		s.added = s.src.AddedLines(ctx)
		s.loaded.added = true
	}
	return s.added
}

func (s *Snapshot) ChangedFiles(ctx context.Context) []domain.ChangedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changedFiles(ctx)
}

func (s *Snapshot) changedFiles(ctx context.Context) []domain.ChangedFile {
	if !s.loaded.files {
		s.files = s.src.ChangedFiles(ctx)
		s.loaded.files = true
	}
	return s.files
}

func (s *Snapshot) DiffForPath(ctx context.Context, pattern string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if out, ok := s.byPath[pattern]; ok {
		return out
	}
	out := s.src.DiffForPath(ctx, pattern)
	s.byPath[pattern] = out
	return out
}

func (s *Snapshot) HasFileChanged(ctx context.Context, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return anyChanged(s.changedFiles(ctx), path)
}
