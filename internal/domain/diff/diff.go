// Package diff parses git's unified and name-status output into the
// structured form every guard consumes.
package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// RemovedLine is a line deleted by the diff. LineNumber is its position in
// the old version of the file.
type RemovedLine struct {
	File       string
	LineNumber int
	Content    string
}

// Hunk is one "@@" section of a file diff. Body keeps every line in diff
// order, context lines included.
type Hunk struct {
	OldStart int
	NewStart int
	Body     []Line
	Added    []domain.DiffLine
	Removed  []RemovedLine
}

// LineKind tells which side of the diff a body line belongs to.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

// Line is one hunk body line without its marker.
type Line struct {
	Kind    LineKind
	Content string
}

// FileDiff holds the hunks of one file.
type FileDiff struct {
	Path    string // new path, from "+++ b/<path>"
	OldPath string // old path, from "--- a/<path>"
	Hunks   []Hunk
}

// Patch is a parsed multi-file unified diff.
type Patch struct {
	Files []FileDiff
}

// AddedLines flattens every added line in file order.
func (p *Patch) AddedLines() []domain.DiffLine {
	var out []domain.DiffLine
	for _, f := range p.Files {
		for _, h := range f.Hunks {
			out = append(out, h.Added...)
		}
	}
	return out
}

// RemovedLines flattens every removed line in file order.
func (p *Patch) RemovedLines() []RemovedLine {
	var out []RemovedLine
	for _, f := range p.Files {
		for _, h := range f.Hunks {
			out = append(out, h.Removed...)
		}
	}
	return out
}

// File returns the diff of path, or nil.
func (p *Patch) File(path string) *FileDiff {
	for i := range p.Files {
		if p.Files[i].Path == path {
			return &p.Files[i]
		}
	}
	return nil
}

// Lines returns the body lines of every hunk in diff order.
func (f *FileDiff) Lines() []Line {
	var out []Line
	for _, h := range f.Hunks {
		out = append(out, h.Body...)
	}
	return out
}

var (
	newFileRe = regexp.MustCompile(`^\+\+\+ b/(.+)$`)
	oldFileRe = regexp.MustCompile(`^--- a/(.+)$`)
	hunkRe    = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)
)

// ParseUnified parses the output of `git diff`. The new-file line counter is
// set from each hunk header and advanced by added and context lines; removed
// lines advance only the old-file counter. Lines before the first file
// header are ignored.
//
// While a hunk still expects body lines (per its header counts), lines that
// look like "+++"/"---" file headers are treated as content.
func ParseUnified(raw string) *Patch {
	p := &Patch{}
	var (
		cur     *FileDiff
		hunk    *Hunk
		oldPath string
		newLine int
		oldLine int
		oldRem  int
		newRem  int
	)

	flushHunk := func() {
		if cur != nil && hunk != nil {
			cur.Hunks = append(cur.Hunks, *hunk)
		}
		hunk = nil
		oldRem, newRem = 0, 0
	}
	flushFile := func() {
		flushHunk()
		if cur != nil {
			p.Files = append(p.Files, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "diff --git ") {
			flushFile()
			oldPath = ""
			continue
		}

		inBody := hunk != nil && (oldRem > 0 || newRem > 0)
		if !inBody {
			if m := oldFileRe.FindStringSubmatch(line); m != nil {
				oldPath = m[1]
				continue
			}
			if line == "--- /dev/null" {
				oldPath = ""
				continue
			}
			if m := newFileRe.FindStringSubmatch(line); m != nil {
				flushFile()
				cur = &FileDiff{Path: m[1], OldPath: oldPath}
				continue
			}
			if line == "+++ /dev/null" {
				// deleted file: keep its removed lines under the old path
				flushFile()
				cur = &FileDiff{Path: oldPath, OldPath: oldPath}
				continue
			}
		}
		if m := hunkRe.FindStringSubmatch(line); m != nil {
			flushHunk()
			oldLine, _ = strconv.Atoi(m[1])
			newLine, _ = strconv.Atoi(m[3])
			oldRem = hunkCount(m[2])
			newRem = hunkCount(m[4])
			hunk = &Hunk{OldStart: oldLine, NewStart: newLine}
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			if cur != nil && hunk != nil {
				hunk.Added = append(hunk.Added, domain.DiffLine{
					File:       cur.Path,
					LineNumber: newLine,
					Content:    line[1:],
				})
				hunk.Body = append(hunk.Body, Line{Kind: Added, Content: line[1:]})
			}
			newLine++
			newRem--
		case strings.HasPrefix(line, "-"):
			if cur != nil && hunk != nil {
				hunk.Removed = append(hunk.Removed, RemovedLine{
					File:       cur.Path,
					LineNumber: oldLine,
					Content:    line[1:],
				})
				hunk.Body = append(hunk.Body, Line{Kind: Removed, Content: line[1:]})
			}
			oldLine++
			oldRem--
		case strings.HasPrefix(line, "\\"), line == "":
			// "\ No newline at end of file" and blank separators
		default:
			if hunk != nil && strings.HasPrefix(line, " ") {
				hunk.Body = append(hunk.Body, Line{Kind: Context, Content: line[1:]})
			}
			newLine++
			oldLine++
			newRem--
			oldRem--
		}
	}
	flushFile()

	return p
}

func hunkCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// ParseNameStatus parses `git diff --name-status`. The status is the first
// character of the first field and the path is the last field, so renames
// ("R100\told\tnew") resolve to the new path.
func ParseNameStatus(raw string) []domain.ChangedFile {
	var out []domain.ChangedFile
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			continue
		}
		out = append(out, domain.ChangedFile{
			Path:   parts[len(parts)-1],
			Status: statusFor(parts[0]),
		})
	}
	return out
}

func statusFor(code string) domain.FileStatus {
	if code == "" {
		return domain.StatusModified
	}
	switch code[0] {
	case 'A':
		return domain.StatusAdded
	case 'M':
		return domain.StatusModified
	case 'D':
		return domain.StatusDeleted
	case 'R':
		return domain.StatusRenamed
	default:
		return domain.StatusModified
	}
}
