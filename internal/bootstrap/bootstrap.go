// Package bootstrap wires the outbound adapters into a SentinelService.
package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/config"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/events"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/execrunner"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/gitdiff"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/gitinfo"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/history"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/metrics"
	"github.com/silenceobjects/sentinel/internal/adapters/outbound/progress"
	"github.com/silenceobjects/sentinel/internal/application"
	"github.com/silenceobjects/sentinel/internal/domain"
)

// Params selects the repository and the optional integrations.
type Params struct {
	Path       string
	ConfigPath string
	LogOutput  io.Writer
	Verbose    bool

	// Override adjusts the loaded config before anything is built from it.
	Override func(*domain.SentinelConfig)

	Progress bool
	Metrics  bool
}

// Runtime is a ready-to-use service plus the resources it holds.
type Runtime struct {
	Service  *application.SentinelService
	Config   domain.SentinelConfig
	Policy   domain.Policy
	RepoPath string
	Logger   *slog.Logger
	Metrics  *metrics.Recorder

	events domain.EventPublisher
}

// NewLogger returns the text logger used on stderr: warnings by default,
// everything with verbose.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Build resolves the repository root, loads its config and wires every
// adapter.
func Build(p Params) (*Runtime, error) {
	if p.LogOutput == nil {
		p.LogOutput = io.Discard
	}
	logger := NewLogger(p.LogOutput, p.Verbose)

	path := p.Path
	if path == "" {
		path = "."
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	gi := gitinfo.New()
	repoPath := absPath
	if root, err := gi.RepoRoot(absPath); err == nil {
		repoPath = root
	} else {
		logger.Warn("not a git repository; diffs will be empty", "path", absPath)
	}

	loader := config.New()
	if p.ConfigPath != "" {
		loader = config.NewWithPath(p.ConfigPath)
	}
	cfg, err := loader.Load(repoPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if p.Override != nil {
		p.Override(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	filter, err := config.NewPathFilter(repoPath, cfg.ExcludePaths)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		Config:   cfg,
		Policy:   domain.DefaultPolicy(),
		RepoPath: repoPath,
		Logger:   logger,
		events:   events.Noop{},
	}

	if cfg.Events.NATSURL != "" {
		pub, err := events.Connect(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, logger)
		if err != nil {
			logger.Warn("event bus unavailable; continuing without events", "url", cfg.Events.NATSURL, "error", err)
		} else {
			rt.events = pub
		}
	}

	var rec domain.MetricsRecorder = metrics.Noop{}
	if p.Metrics {
		rt.Metrics = metrics.New()
		rec = rt.Metrics
	}

	runner := execrunner.New(logger)
	raw := gitdiff.New(runner, repoPath, logger)

	rt.Service = application.NewSentinelService(application.Options{
		RepoPath: repoPath,
		Config:   cfg,
		Policy:   rt.Policy,
		Filter:   filter,
		Source:   func() domain.DiffSource { return gitdiff.NewSnapshot(raw) },
		Runner:   runner,
		GitInfo:  gi,
		History:  history.New(),
		Events:   rt.events,
		Metrics:  rec,
		Progress: progress.New(p.Progress),
		Logger:   logger,
	})
	return rt, nil
}

// Close releases the event bus connection.
func (r *Runtime) Close() {
	if err := r.events.Close(); err != nil {
		r.Logger.Warn("closing event bus", "error", err)
	}
}
