package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/silenceobjects/sentinel/internal/application"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const anthropicKey = "sk-ant-REDACTED"

type fakeSource struct {
	added []domain.DiffLine
	files []domain.ChangedFile
}

func (f *fakeSource) AddedLines(context.Context) []domain.DiffLine      { return f.added }
func (f *fakeSource) ChangedFiles(context.Context) []domain.ChangedFile { return f.files }
func (f *fakeSource) DiffForPath(context.Context, string) string        { return "" }

func (f *fakeSource) HasFileChanged(_ context.Context, path string) bool {
	for _, c := range f.files {
		if strings.HasPrefix(c.Path, path) {
			return true
		}
	}
	return false
}

type recordedEvents struct {
	events []domain.Event
	err    error
}

func (r *recordedEvents) Publish(_ context.Context, ev domain.Event) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordedEvents) Close() error { return nil }

func (r *recordedEvents) types() []string {
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type recordedMetrics struct {
	guards  []domain.GuardName
	reports int
}

func (m *recordedMetrics) ObserveGuard(run domain.GuardRun) {
	m.guards = append(m.guards, run.Result.Guard)
}
func (m *recordedMetrics) ObserveReport(domain.ComplianceReport) { m.reports++ }

type recordedProgress struct {
	total int
	steps []string
	done  bool
}

func (p *recordedProgress) Start(total int)  { p.total = total }
func (p *recordedProgress) Step(desc string) { p.steps = append(p.steps, desc) }
func (p *recordedProgress) Finish()          { p.done = true }

type fakeGitInfo struct{}

func (fakeGitInfo) IsGitRepo(string) bool             { return true }
func (fakeGitInfo) RepoRoot(p string) (string, error) { return p, nil }
func (fakeGitInfo) CommitHash(string) (string, error) { return "abc1234def", nil }
func (fakeGitInfo) Branch(string) (string, error)     { return "main", nil }

type memHistory struct {
	entries []domain.ScoreEntry
	err     error
}

func (h *memHistory) Save(_ string, e domain.ScoreEntry) error {
	if h.err != nil {
		return h.err
	}
	h.entries = append(h.entries, e)
	return nil
}

func (h *memHistory) Load(string) ([]domain.ScoreEntry, error) { return h.entries, h.err }

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc      *application.SentinelService
	source   *fakeSource
	sources  int
	events   *recordedEvents
	metrics  *recordedMetrics
	progress *recordedProgress
	history  *memHistory
}

func newHarness(t *testing.T, cfg domain.SentinelConfig, src *fakeSource) *harness {
	t.Helper()
	h := &harness{
		source:   src,
		events:   &recordedEvents{},
		metrics:  &recordedMetrics{},
		progress: &recordedProgress{},
		history:  &memHistory{},
	}
	h.svc = application.NewSentinelService(application.Options{
		RepoPath: "/repo",
		Config:   cfg,
		Policy:   domain.DefaultPolicy(),
		Source: func() domain.DiffSource {
			h.sources++
			return h.source
		},
		GitInfo:  fakeGitInfo{},
		History:  h.history,
		Events:   h.events,
		Metrics:  h.metrics,
		Progress: h.progress,
		Now:      func() time.Time { return fixedNow },
		RunID:    func() string { return "run-1" },
	})
	return h
}

func TestRunAll_CleanDiff(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})

	report, runs, err := h.svc.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100, report.Score)
	assert.Equal(t, domain.GradeA, report.Grade)
	assert.True(t, report.Passed)
	assert.Equal(t, "abc1234def", report.CommitHash)
	assert.Equal(t, "main", report.Branch)
	assert.Equal(t, fixedNow, report.Timestamp)

	require.Len(t, runs, 6, "build is disabled by default")
	for i, name := range domain.AllGuards[:6] {
		assert.Equal(t, name, runs[i].Result.Guard)
		assert.Equal(t, name, report.Results[i].Guard)
	}
	assert.Equal(t, 1, h.sources, "one diff snapshot per run")
	assert.Equal(t, domain.AllGuards[:6], h.metrics.guards)
	assert.Equal(t, 1, h.metrics.reports)
	assert.Equal(t, 6, h.progress.total)
	assert.Len(t, h.progress.steps, 6)
	assert.True(t, h.progress.done)
}

func TestRunAll_Events(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})

	_, _, err := h.svc.RunAll(context.Background())
	require.NoError(t, err)

	types := h.events.types()
	require.Len(t, types, 8)
	assert.Equal(t, domain.EventStarted, types[0])
	assert.Equal(t, domain.EventStopped, types[7])
	for _, ty := range types[1:7] {
		assert.Equal(t, domain.EventGuardCompleted, ty)
	}
	for _, ev := range h.events.events {
		assert.Equal(t, domain.AgentID, ev.AgentID)
		assert.Equal(t, "run-1", ev.RunID)
	}
	stopped := h.events.events[7]
	require.NotNil(t, stopped.Score)
	assert.Equal(t, 100, *stopped.Score)
}

func TestRunAll_SecurityViolation(t *testing.T) {
	src := &fakeSource{added: []domain.DiffLine{
		{File: "apps/api/client.ts", LineNumber: 4, Content: `const token = "` + anthropicKey + `";`},
	}}
	h := newHarness(t, domain.DefaultConfig(), src)

	report, _, err := h.svc.RunAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 75, report.Score)
	assert.Equal(t, domain.GradeC, report.Grade)
	assert.True(t, report.Passed)
	assert.Equal(t, 1, report.TotalViolations())
	assert.NotContains(t, report.Summary, anthropicKey)
}

func TestRunAll_OnlyEnabledGuards(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Guards = domain.GuardToggles{Security: true, ClosedModule: true}
	h := newHarness(t, cfg, &fakeSource{})

	report, runs, err := h.svc.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, domain.GuardClosedModule, report.Results[0].Guard)
	assert.Equal(t, domain.GuardSecurity, report.Results[1].Guard)
}

func TestRunAll_BuildWithoutRunner(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Guards.Build = true
	h := newHarness(t, cfg, &fakeSource{})

	_, runs, err := h.svc.RunAll(context.Background())
	require.Error(t, err)
	assert.Len(t, runs, 6, "guards before build still ran")
	assert.Equal(t, domain.EventError, h.events.events[len(h.events.events)-1].Type)
	assert.Equal(t, domain.GuardBuild, h.events.events[len(h.events.events)-1].Guard)
}

func TestRunAll_CancelledContext(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, _, err := h.svc.RunAll(ctx)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, h.events.types(), domain.EventError)
}

func TestRunAll_EventFailuresAreNotFatal(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})
	h.events.err = errors.New("bus down")

	report, _, err := h.svc.RunAll(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Passed)
}

func TestRunGuard(t *testing.T) {
	src := &fakeSource{files: []domain.ChangedFile{{Path: "packages/events/src/bus.ts", Status: domain.StatusModified}}}
	h := newHarness(t, domain.DefaultConfig(), src)

	run, err := h.svc.RunGuard(context.Background(), domain.GuardClosedModule)
	require.NoError(t, err)

	assert.False(t, run.Result.Passed)
	assert.Equal(t, 1, run.Result.Violations)
	assert.Equal(t, []string{domain.EventStarted, domain.EventGuardCompleted, domain.EventStopped}, h.events.types())
	assert.Equal(t, 1, h.sources)
}

func TestRunGuard_IgnoresEnablement(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Guards.Security = false
	h := newHarness(t, cfg, &fakeSource{})

	run, err := h.svc.RunGuard(context.Background(), domain.GuardSecurity)
	require.NoError(t, err)
	assert.True(t, run.Result.Passed)
}

func TestRunGuard_Unknown(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})

	_, err := h.svc.RunGuard(context.Background(), "lint")
	assert.ErrorIs(t, err, domain.ErrUnknownGuard)
	assert.Empty(t, h.events.events)
}

func TestRecordAndHistory(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})
	report, _, err := h.svc.RunAll(context.Background())
	require.NoError(t, err)

	require.NoError(t, h.svc.Record(*report))

	entries, err := h.svc.History()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ScoreEntry{
		Timestamp:  "2026-10-17T12:00:00Z",
		CommitHash: "abc1234def",
		Branch:     "main",
		Score:      100,
		Grade:      domain.GradeA,
		Passed:     true,
	}, entries[0])
}

func TestRecord_Error(t *testing.T) {
	h := newHarness(t, domain.DefaultConfig(), &fakeSource{})
	h.history.err = errors.New("disk full")

	err := h.svc.Record(domain.ComplianceReport{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving history")
}

func TestRecord_WithoutHistory(t *testing.T) {
	svc := application.NewSentinelService(application.Options{
		Config: domain.DefaultConfig(),
		Policy: domain.DefaultPolicy(),
		Source: func() domain.DiffSource { return &fakeSource{} },
	})
	assert.NoError(t, svc.Record(domain.ComplianceReport{}))

	report, _, err := svc.RunAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.CommitHash)
	assert.False(t, report.Timestamp.IsZero())
}
