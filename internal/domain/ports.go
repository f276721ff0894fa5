package domain

import (
	"context"
	"time"
)

// DiffSource retrieves the pending changes of a repository. Implementations
// never fail: an unavailable diff is an empty result.
type DiffSource interface {
	AddedLines(ctx context.Context) []DiffLine
	ChangedFiles(ctx context.Context) []ChangedFile
	DiffForPath(ctx context.Context, pattern string) string
	HasFileChanged(ctx context.Context, path string) bool
}

// Command describes one external process invocation.
type Command struct {
	Name      string
	Args      []string
	Dir       string
	Timeout   time.Duration // 0 means no timeout beyond ctx
	MaxOutput int           // bytes kept per stream, 0 means unlimited
}

// CommandResult captures the outcome of a Command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Err      error // spawn failure, timeout or non-zero exit
}

// Succeeded reports whether the command ran and exited with status 0.
func (r CommandResult) Succeeded() bool {
	return r.Err == nil && r.ExitCode == 0
}

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) CommandResult
}

// GitInfo reads repository metadata.
type GitInfo interface {
	IsGitRepo(path string) bool
	RepoRoot(path string) (string, error)
	CommitHash(path string) (string, error)
	Branch(path string) (string, error)
}

// ConfigLoader loads the sentinel configuration of a repository.
type ConfigLoader interface {
	Load(repoPath string) (SentinelConfig, error)
}

// PathFilter reports whether a repository-relative path is excluded from
// line scanning by user configuration.
type PathFilter interface {
	Excluded(path string) bool
}

// ScoreHistory persists compliance scores between runs.
type ScoreHistory interface {
	Save(repoPath string, entry ScoreEntry) error
	Load(repoPath string) ([]ScoreEntry, error)
}

// Event is a guard-pipeline lifecycle notification.
type Event struct {
	Type      string            `json:"type"`
	AgentID   string            `json:"agent_id"`
	RunID     string            `json:"run_id"`
	Guard     GuardName         `json:"guard,omitempty"`
	Passed    *bool             `json:"passed,omitempty"`
	Score     *int              `json:"score,omitempty"`
	Reason    string            `json:"reason,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// AgentID identifies sentinel on the event bus.
const AgentID = "sentinel"

const (
	EventStarted        = "agent.started"
	EventGuardCompleted = "agent.guard.completed"
	EventError          = "agent.error"
	EventStopped        = "agent.stopped"
)

// EventPublisher announces pipeline lifecycle events to an external bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// MetricsRecorder observes guard runs and the final report.
type MetricsRecorder interface {
	ObserveGuard(run GuardRun)
	ObserveReport(report ComplianceReport)
}

// Progress reports pipeline progress to an interactive user.
type Progress interface {
	Start(total int)
	Step(description string)
	Finish()
}
