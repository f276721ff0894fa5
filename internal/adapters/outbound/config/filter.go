package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

const IgnoreFileName = ".sentinelignore"

// PathFilter excludes paths matched by exclude_paths globs or by the
// gitignore-syntax .sentinelignore file.
type PathFilter struct {
	globs  []string
	ignore *ignore.GitIgnore
}

// NewPathFilter builds a filter for repoPath. A missing .sentinelignore is
// not an error.
func NewPathFilter(repoPath string, excludePaths []string) (*PathFilter, error) {
	f := &PathFilter{globs: excludePaths}

	p := filepath.Join(repoPath, IgnoreFileName)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", IgnoreFileName, err)
	}
	gi, err := ignore.CompileIgnoreFile(p)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", IgnoreFileName, err)
	}
	f.ignore = gi
	return f, nil
}

// Excluded reports whether the repository-relative path is filtered out.
func (f *PathFilter) Excluded(path string) bool {
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	for _, g := range f.globs {
		if ok, _ := doublestar.Match(g, path); ok {
			return true
		}
	}
	return f.ignore != nil && f.ignore.MatchesPath(path)
}
