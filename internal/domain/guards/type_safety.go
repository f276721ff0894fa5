package guards

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// TypeSafety flags suppression directives and `any`/`unknown` usage in added
// TypeScript lines.
type TypeSafety struct {
	src          domain.DiffSource
	policy       domain.Policy
	filter       domain.PathFilter
	countUnknown bool
}

// NewTypeSafety builds the guard. countUnknown decides whether advisory
// `unknown` findings enter the violation count.
func NewTypeSafety(src domain.DiffSource, policy domain.Policy, filter domain.PathFilter, countUnknown bool) *TypeSafety {
	return &TypeSafety{src: src, policy: policy, filter: orNoFilter(filter), countUnknown: countUnknown}
}

type typeRule struct {
	kind domain.TypeSafetyViolationType
	re   *regexp.Regexp
	desc string
}

// Directives are usually written inside comments, so they are checked on
// every line.
var directiveRules = []typeRule{
	{domain.TSIgnore, regexp.MustCompile(`@ts-ignore`), "@ts-ignore suppresses type checking - fix the type error instead"},
	{domain.TSNoCheck, regexp.MustCompile(`@ts-nocheck`), "@ts-nocheck disables type checking for the entire file"},
	{domain.TSExpectError, regexp.MustCompile(`@ts-expect-error`), "@ts-expect-error suppresses type errors - fix the underlying issue"},
}

var (
	asAnyRe       = regexp.MustCompile(`\bas\s+any\b`)
	legacyAnyRe   = regexp.MustCompile(`<any>`)
	anyAnnotRe    = regexp.MustCompile(`:\s*any\b`)
	unknownAnnoRe = regexp.MustCompile(`:\s*unknown\b`)

	typeSafetySkipRe = []*regexp.Regexp{
		regexp.MustCompile(`(?i)sentinel.*policy`),
		regexp.MustCompile(`\.test\.(ts|tsx)$`),
		regexp.MustCompile(`\.spec\.(ts|tsx)$`),
	}
)

func (g *TypeSafety) Name() domain.GuardName { return domain.GuardTypeSafety }

func (g *TypeSafety) Run(ctx context.Context) domain.GuardRun {
	var lines []domain.DiffLine
	for _, dl := range g.src.AddedLines(ctx) {
		if g.inScope(dl.File) {
			lines = append(lines, dl)
		}
	}
	if len(lines) == 0 {
		return skipped(g.Name(), "No TypeScript lines added - skipped")
	}

	var found []domain.TypeSafetyViolation
	for _, dl := range lines {
		found = append(found, inspectTyped(dl)...)
	}
	found = dedupe(found, func(v domain.TypeSafetyViolation) string {
		return fmt.Sprintf("%s:%d:%s", v.File, v.LineNumber, v.Type)
	})

	counted := 0
	details := make([]string, 0, len(found))
	for _, v := range found {
		d := fmt.Sprintf("%s - %s: %s", v.Location(), v.Type, v.Description)
		if v.Advisory {
			d += " (advisory)"
		}
		details = append(details, d)
		if !v.Advisory || g.countUnknown {
			counted++
		}
	}
	if len(found) == 0 {
		details = append(details, "No type-safety violations detected")
	}

	return domain.GuardRun{
		Result: domain.GuardResult{
			Guard:      g.Name(),
			Passed:     counted == 0,
			Violations: counted,
			Details:    details,
		},
		Findings: toViolations(found),
	}
}

func (g *TypeSafety) inScope(path string) bool {
	if !g.policy.IsTyped(path) || g.filter.Excluded(path) {
		return false
	}
	for _, re := range typeSafetySkipRe {
		if re.MatchString(path) {
			return false
		}
	}
	return true
}

func inspectTyped(dl domain.DiffLine) []domain.TypeSafetyViolation {
	content := dl.Content
	var out []domain.TypeSafetyViolation
	add := func(kind domain.TypeSafetyViolationType, desc string, advisory bool) {
		out = append(out, domain.TypeSafetyViolation{
			File:        dl.File,
			LineNumber:  dl.LineNumber,
			Line:        strings.TrimSpace(content),
			Type:        kind,
			Description: desc,
			Advisory:    advisory,
		})
	}

	for _, r := range directiveRules {
		if r.re.MatchString(content) {
			add(r.kind, r.desc, false)
		}
	}
	if isComment(content) {
		return out
	}

	cast := false
	if asAnyRe.MatchString(content) {
		add(domain.AsAny, "`as any` bypasses type safety - use proper typing", false)
		cast = true
	}
	if legacyAnyRe.MatchString(content) {
		add(domain.LegacyAnyCast, "Legacy `<any>` type assertion - use proper typing", false)
		cast = true
	}
	if !cast && anyAnnotRe.MatchString(content) {
		add(domain.ExplicitAny, "Explicit `any` type - use a specific type instead", false)
	}
	if unknownAnnoRe.MatchString(content) {
		add(domain.UnknownType, "`unknown` type - consider using a more specific type", true)
	}
	return out
}
