package guards_test

import (
	"context"
	"testing"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/guards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTerminology(t *testing.T, lines ...domain.DiffLine) domain.GuardRun {
	t.Helper()
	g := guards.NewTerminology(&fakeSource{added: lines}, domain.DefaultPolicy(), nil, false)
	return g.Run(context.Background())
}

func TestTerminology_WholeWordMatch(t *testing.T) {
	run := runTerminology(t, added("apps/web/page.tsx", 12, `const label = "therapy";`))

	require.Len(t, run.Findings, 1)
	v := run.Findings[0].(domain.TerminologyViolation)
	assert.Equal(t, "therapy", v.Word)
	assert.Equal(t, "structural analysis", v.Suggestion)
	assert.Equal(t, "en", v.Language)
	assert.Equal(t, 12, v.LineNumber)

	assert.False(t, run.Result.Passed)
	assert.Equal(t, 1, run.Result.Violations)
	assert.Contains(t, run.Result.Details[0], `apps/web/page.tsx:12 - forbidden "therapy"`)
}

func TestTerminology_WordBoundary(t *testing.T) {
	run := runTerminology(t, added("apps/web/a.ts", 1, `const role = "therapist";`))
	assert.True(t, run.Result.Passed)
	assert.Zero(t, run.Result.Violations)

	run = runTerminology(t, added("apps/web/a.ts", 1, `const label = "therapy session";`))
	require.Equal(t, 1, run.Result.Violations)
	assert.Equal(t, "therapy", run.Findings[0].(domain.TerminologyViolation).Word)
}

func TestTerminology_CaseInsensitive(t *testing.T) {
	run := runTerminology(t, added("apps/web/a.ts", 3, `title: "THERAPY"`))
	assert.Equal(t, 1, run.Result.Violations)
}

func TestTerminology_DedupesWithinRunNotAcrossRuns(t *testing.T) {
	line := added("apps/web/a.ts", 7, `const a = "therapy";`)
	g := guards.NewTerminology(&fakeSource{added: []domain.DiffLine{line, line}}, domain.DefaultPolicy(), nil, false)

	first := g.Run(context.Background())
	second := g.Run(context.Background())

	assert.Equal(t, 1, first.Result.Violations)
	assert.Equal(t, 1, second.Result.Violations)
}

func TestTerminology_PolishTermsUseUnicodeBoundaries(t *testing.T) {
	run := runTerminology(t, added("apps/web/pl.ts", 1, `const t = "Osobowość";`))
	require.Equal(t, 1, run.Result.Violations)
	v := run.Findings[0].(domain.TerminologyViolation)
	assert.Equal(t, "pl", v.Language)
	assert.Equal(t, "wzorzec strukturalny", v.Suggestion)

	run = runTerminology(t, added("apps/web/pl.ts", 1, `const t = "osobowości";`))
	assert.Zero(t, run.Result.Violations)
}

func TestTerminology_MultiWordPhrase(t *testing.T) {
	run := runTerminology(t, added("apps/web/a.ts", 1, `const kind = "personality   type";`))

	words := map[string]bool{}
	for _, f := range run.Findings {
		words[f.(domain.TerminologyViolation).Word] = true
	}
	assert.True(t, words["personality type"])
	assert.True(t, words["personality"])
}

func TestTerminology_ExcludedLines(t *testing.T) {
	run := runTerminology(t,
		added("apps/web/a.ts", 1, `// therapy is not allowed here`),
		added("apps/web/a.ts", 2, `import { therapy } from "./x";`),
		added("apps/web/a.ts", 3, `const FORBIDDEN_TERMS = ["therapy"];`),
		added("apps/web/a.ts", 4, `const x = "therapy"; // sentinel-ignore`),
	)
	assert.True(t, run.Result.Passed)
	assert.Equal(t, []string{"No forbidden terminology detected"}, run.Result.Details)
}

func TestTerminology_ExcludedFiles(t *testing.T) {
	lines := []domain.DiffLine{
		added("agents/sentinel/src/policy.ts", 1, `"therapy"`),
		added("docs/COMPLIANCE.md", 1, `therapy`),
		added("apps/web/public/therapy.svg", 1, `therapy`),
		added("apps/web/generated.ts", 1, `therapy`),
	}
	filter := excludeFilter{"apps/web/generated.ts": true}
	g := guards.NewTerminology(&fakeSource{added: lines}, domain.DefaultPolicy(), filter, false)

	run := g.Run(context.Background())
	assert.True(t, run.Result.Passed)
}

func TestTerminology_SplitIdentifiers(t *testing.T) {
	line := added("apps/web/a.ts", 1, `const getTherapyPlan = () => 1;`)

	off := guards.NewTerminology(&fakeSource{added: []domain.DiffLine{line}}, domain.DefaultPolicy(), nil, false)
	assert.True(t, off.Run(context.Background()).Result.Passed)

	on := guards.NewTerminology(&fakeSource{added: []domain.DiffLine{line}}, domain.DefaultPolicy(), nil, true)
	run := on.Run(context.Background())
	require.Equal(t, 1, run.Result.Violations)
	assert.Equal(t, "therapy", run.Findings[0].(domain.TerminologyViolation).Word)
}

func TestTerminology_NoAddedLines(t *testing.T) {
	run := runTerminology(t)
	assert.True(t, run.Result.Passed)
	assert.Zero(t, run.Result.Violations)
	assert.Equal(t, []string{"No added lines to scan"}, run.Result.Details)
}

func TestTerminology_InjectedPolicy(t *testing.T) {
	policy := domain.Policy{Terms: []domain.ForbiddenTerm{
		{Term: "widget", Language: "en", Suggestion: "component", Category: domain.CategoryInterpretive},
	}}
	g := guards.NewTerminology(&fakeSource{added: []domain.DiffLine{
		added("a.go", 1, `x := "widget therapy"`),
	}}, policy, nil, false)

	run := g.Run(context.Background())
	require.Equal(t, 1, run.Result.Violations)
	assert.Equal(t, "component", run.Findings[0].(domain.TerminologyViolation).Suggestion)
}
