package guards

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/camelcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// Terminology flags forbidden vocabulary in added lines.
type Terminology struct {
	src              domain.DiffSource
	policy           domain.Policy
	filter           domain.PathFilter
	splitIdentifiers bool
	matchers         []termMatcher
}

type termMatcher struct {
	term domain.ForbiddenTerm
	re   *regexp.Regexp
}

// A term boundary is the start or end of the text or any rune that cannot
// be part of a word. Go's \b only knows ASCII, which breaks on Polish terms.
const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

// NewTerminology builds the guard. With splitIdentifiers, camelCase and
// PascalCase identifiers are also matched word by word.
func NewTerminology(src domain.DiffSource, policy domain.Policy, filter domain.PathFilter, splitIdentifiers bool) *Terminology {
	g := &Terminology{
		src:              src,
		policy:           policy,
		filter:           orNoFilter(filter),
		splitIdentifiers: splitIdentifiers,
	}
	for _, t := range policy.SortedTerms() {
		g.matchers = append(g.matchers, termMatcher{term: t, re: compileTerm(t.Term)})
	}
	return g
}

func compileTerm(term string) *regexp.Regexp {
	words := strings.Fields(fold(term))
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(wordStart + strings.Join(words, `\s+`) + wordEnd)
}

// fold normalizes s for caseless comparison.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

func (g *Terminology) Name() domain.GuardName { return domain.GuardTerminology }

func (g *Terminology) Run(ctx context.Context) domain.GuardRun {
	lines := g.src.AddedLines(ctx)
	if len(lines) == 0 {
		return skipped(g.Name(), "No added lines to scan")
	}

	var found []domain.TerminologyViolation
	for _, dl := range lines {
		if g.excludedFile(dl.File) || g.excludedLine(dl.Content) {
			continue
		}
		texts := []string{fold(dl.Content)}
		if g.splitIdentifiers {
			if split := splitIdentifiers(dl.Content); split != "" {
				texts = append(texts, fold(split))
			}
		}
		for _, m := range g.matchers {
			if !matchAny(m.re, texts) {
				continue
			}
			found = append(found, domain.TerminologyViolation{
				File:       dl.File,
				LineNumber: dl.LineNumber,
				Line:       strings.TrimSpace(dl.Content),
				Word:       m.term.Term,
				Suggestion: m.term.Suggestion,
				Language:   m.term.Language,
				Category:   string(m.term.Category),
			})
		}
	}

	found = dedupe(found, func(v domain.TerminologyViolation) string {
		return fmt.Sprintf("%s:%d:%s", v.File, v.LineNumber, v.Word)
	})

	details := make([]string, 0, len(found))
	for _, v := range found {
		details = append(details, fmt.Sprintf("%s - forbidden %q (%s) -> use %q",
			v.Location(), v.Word, v.Language, v.Suggestion))
	}
	if len(found) == 0 {
		details = append(details, "No forbidden terminology detected")
	}

	return domain.GuardRun{
		Result: domain.GuardResult{
			Guard:      g.Name(),
			Passed:     len(found) == 0,
			Violations: len(found),
			Details:    details,
		},
		Findings: toViolations(found),
	}
}

func (g *Terminology) excludedFile(path string) bool {
	return g.policy.TerminologyExcluded(path) ||
		g.policy.IsBinary(path) ||
		g.filter.Excluded(path)
}

// excludedLine exempts comments, imports and lines that define the policy.
func (g *Terminology) excludedLine(content string) bool {
	line := strings.TrimSpace(content)
	if isComment(line) {
		return true
	}
	if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from ") {
		return true
	}
	for _, marker := range g.policy.SelfReferenceMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func matchAny(re *regexp.Regexp, texts []string) bool {
	for _, t := range texts {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

var identifierRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]*`)

// splitIdentifiers returns the words of every multi-word identifier in the
// line, space separated, or "" when there are none.
func splitIdentifiers(line string) string {
	var words []string
	for _, id := range identifierRe.FindAllString(line, -1) {
		parts := camelcase.Split(id)
		if len(parts) < 2 {
			continue
		}
		words = append(words, parts...)
		words = append(words, "|")
	}
	return strings.Join(words, " ")
}
