package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/guards"
	"github.com/silenceobjects/sentinel/internal/domain/scoring"
)

// Options wires a SentinelService. Source, Config and Policy are required;
// the rest fall back to no-ops.
type Options struct {
	RepoPath string
	Config   domain.SentinelConfig
	Policy   domain.Policy
	Filter   domain.PathFilter

	// Source returns the diff source for one run. Callers return a fresh
	// memoizing snapshot so every run sees the diff exactly once.
	Source func() domain.DiffSource
	Runner domain.CommandRunner

	GitInfo  domain.GitInfo
	History  domain.ScoreHistory
	Events   domain.EventPublisher
	Metrics  domain.MetricsRecorder
	Progress domain.Progress
	Logger   *slog.Logger

	Now   func() time.Time
	RunID func() string
}

// SentinelService orchestrates the guard pipeline:
// diff snapshot → guards in fixed order → compliance score → report.
type SentinelService struct {
	opts   Options
	logger *slog.Logger
}

func NewSentinelService(opts Options) *SentinelService {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Events == nil {
		opts.Events = nopEvents{}
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunID == nil {
		opts.RunID = func() string { return uuid.NewString() }
	}
	return &SentinelService{opts: opts, logger: opts.Logger}
}

// Config returns the configuration the service runs with.
func (s *SentinelService) Config() domain.SentinelConfig { return s.opts.Config }

// RunGuard runs exactly one guard, regardless of whether it is enabled.
func (s *SentinelService) RunGuard(ctx context.Context, name domain.GuardName) (domain.GuardRun, error) {
	if !name.Valid() {
		return domain.GuardRun{}, fmt.Errorf("%w %q", domain.ErrUnknownGuard, string(name))
	}

	runID := s.opts.RunID()
	s.emit(ctx, domain.Event{Type: domain.EventStarted, RunID: runID, Guard: name,
		Labels: map[string]string{"mode": "guard"}})

	run, err := s.runOne(ctx, runID, s.opts.Source(), name)
	if err != nil {
		s.fail(ctx, runID, name, err)
		return domain.GuardRun{}, err
	}

	passed := run.Result.Passed
	s.emit(ctx, domain.Event{Type: domain.EventStopped, RunID: runID, Guard: name, Passed: &passed})
	return run, nil
}

// RunAll runs every enabled guard sequentially against one diff snapshot
// and scores the results.
func (s *SentinelService) RunAll(ctx context.Context) (*domain.ComplianceReport, []domain.GuardRun, error) {
	runID := s.opts.RunID()
	enabled := s.opts.Config.EnabledGuards()
	s.emit(ctx, domain.Event{Type: domain.EventStarted, RunID: runID,
		Labels: map[string]string{"mode": "all", "guards": fmt.Sprint(len(enabled))}})
	s.logger.Info("running guards", "run_id", runID, "count", len(enabled))

	source := s.opts.Source()
	s.opts.Progress.Start(len(enabled))
	defer s.opts.Progress.Finish()

	runs := make([]domain.GuardRun, 0, len(enabled))
	results := make([]domain.GuardResult, 0, len(enabled))
	for _, name := range enabled {
		if err := ctx.Err(); err != nil {
			s.fail(ctx, runID, name, err)
			return nil, runs, err
		}
		s.opts.Progress.Step(name.String())

		run, err := s.runOne(ctx, runID, source, name)
		if err != nil {
			s.fail(ctx, runID, name, err)
			return nil, runs, err
		}
		runs = append(runs, run)
		results = append(results, run.Result)
	}

	report := scoring.CalculateScore(results, s.opts.Config.Scoring)
	report.Timestamp = s.opts.Now().UTC()
	s.annotate(&report)
	s.opts.Metrics.ObserveReport(report)

	score := report.Score
	passed := report.Passed
	s.emit(ctx, domain.Event{Type: domain.EventStopped, RunID: runID, Score: &score, Passed: &passed})
	s.logger.Info("compliance scored", "run_id", runID, "score", report.Score,
		"grade", report.Grade, "passed", report.Passed)
	return &report, runs, nil
}

// Record appends report to the score history. Without a history store it
// does nothing.
func (s *SentinelService) Record(report domain.ComplianceReport) error {
	if s.opts.History == nil {
		return nil
	}
	entry := domain.ScoreEntry{
		Timestamp:  report.Timestamp.Format(time.RFC3339),
		CommitHash: report.CommitHash,
		Branch:     report.Branch,
		Score:      report.Score,
		Grade:      report.Grade,
		Passed:     report.Passed,
		Violations: report.TotalViolations(),
	}
	if err := s.opts.History.Save(s.opts.RepoPath, entry); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// History returns the recorded scores, oldest first.
func (s *SentinelService) History() ([]domain.ScoreEntry, error) {
	if s.opts.History == nil {
		return nil, nil
	}
	entries, err := s.opts.History.Load(s.opts.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return entries, nil
}

func (s *SentinelService) runOne(ctx context.Context, runID string, source domain.DiffSource, name domain.GuardName) (domain.GuardRun, error) {
	g, err := guards.New(name, guards.Deps{
		Source:  source,
		Policy:  s.opts.Policy,
		Filter:  s.opts.Filter,
		Runner:  s.opts.Runner,
		Config:  s.opts.Config,
		RepoDir: s.opts.RepoPath,
	})
	if err != nil {
		return domain.GuardRun{}, err
	}

	start := s.opts.Now()
	run := g.Run(ctx)
	run.Duration = s.opts.Now().Sub(start)

	s.logger.Debug("guard finished", "run_id", runID, "guard", name,
		"passed", run.Result.Passed, "violations", run.Result.Violations, "duration", run.Duration)
	s.opts.Metrics.ObserveGuard(run)

	passed := run.Result.Passed
	s.emit(ctx, domain.Event{Type: domain.EventGuardCompleted, RunID: runID, Guard: name, Passed: &passed,
		Labels: map[string]string{"violations": fmt.Sprint(run.Result.Violations)}})
	return run, nil
}

func (s *SentinelService) annotate(report *domain.ComplianceReport) {
	gi := s.opts.GitInfo
	if gi == nil || !gi.IsGitRepo(s.opts.RepoPath) {
		return
	}
	if hash, err := gi.CommitHash(s.opts.RepoPath); err == nil {
		report.CommitHash = hash
	}
	if branch, err := gi.Branch(s.opts.RepoPath); err == nil {
		report.Branch = branch
	}
}

func (s *SentinelService) fail(ctx context.Context, runID string, name domain.GuardName, err error) {
	s.logger.Error("guard pipeline failed", "run_id", runID, "guard", name, "error", err)
	s.emit(context.WithoutCancel(ctx), domain.Event{Type: domain.EventError, RunID: runID, Guard: name, Error: err.Error()})
}

func (s *SentinelService) emit(ctx context.Context, ev domain.Event) {
	ev.AgentID = domain.AgentID
	ev.Timestamp = s.opts.Now().UTC()
	if err := s.opts.Events.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed", "type", ev.Type, "error", err)
	}
}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, domain.Event) error { return nil }
func (nopEvents) Close() error                                { return nil }

type nopMetrics struct{}

func (nopMetrics) ObserveGuard(domain.GuardRun)          {}
func (nopMetrics) ObserveReport(domain.ComplianceReport) {}

type nopProgress struct{}

func (nopProgress) Start(int)   {}
func (nopProgress) Step(string) {}
func (nopProgress) Finish()     {}
