package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	DefaultMinimumScore          = 70
	DefaultMaxViolationsPerGuard = 20
	DefaultBuildCommand          = "pnpm -r build"
	DefaultBuildTimeout          = 5 * time.Minute
	DefaultBuildMaxOutput        = 50 * 1024 * 1024
	DefaultPackageScope          = "@silence/"
	DefaultEventSubjectPrefix    = "sentinel"
)

// SentinelConfig holds the configuration loaded from .sentinel.yaml.
type SentinelConfig struct {
	Guards       GuardToggles      `yaml:"guards"        json:"guards"`
	Scoring      ScoringConfig     `yaml:"scoring"       json:"scoring"`
	Output       OutputConfig      `yaml:"output"        json:"output"`
	CI           CIConfig          `yaml:"ci"            json:"ci"`
	ExcludePaths []string          `yaml:"exclude_paths" json:"exclude_paths,omitempty"`
	Build        BuildConfig       `yaml:"build"         json:"build"`
	TypeSafety   TypeSafetyConfig  `yaml:"type_safety"   json:"type_safety"`
	Terminology  TerminologyConfig `yaml:"terminology"   json:"terminology"`
	Events       EventsConfig      `yaml:"events"        json:"events"`
}

// GuardToggles enables or disables individual guards.
type GuardToggles struct {
	Terminology  bool `yaml:"terminology"   json:"terminology"`
	Contracts    bool `yaml:"contracts"     json:"contracts"`
	Dependency   bool `yaml:"dependency"    json:"dependency"`
	ClosedModule bool `yaml:"closed_module" json:"closed_module"`
	TypeSafety   bool `yaml:"type_safety"   json:"type_safety"`
	Security     bool `yaml:"security"      json:"security"`
	Build        bool `yaml:"build"         json:"build"`
}

type ScoringConfig struct {
	MinimumScore int            `yaml:"minimum_score" json:"minimum_score"`
	Deductions   map[string]int `yaml:"deductions"    json:"deductions,omitempty"`
}

type OutputConfig struct {
	Console               bool `yaml:"console"                  json:"console"`
	Markdown              bool `yaml:"markdown"                 json:"markdown"`
	MaxViolationsPerGuard int  `yaml:"max_violations_per_guard" json:"max_violations_per_guard"`
}

type CIConfig struct {
	FailOnViolations bool `yaml:"fail_on_violations" json:"fail_on_violations"`
	PostPRComment    bool `yaml:"post_pr_comment"    json:"post_pr_comment"`
}

type BuildConfig struct {
	Command      string        `yaml:"command"       json:"command"`
	Timeout      time.Duration `yaml:"timeout"       json:"timeout"`
	MaxOutput    int           `yaml:"max_output"    json:"max_output"`
	PackageScope string        `yaml:"package_scope" json:"package_scope"`
}

type TypeSafetyConfig struct {
	// CountUnknown keeps advisory `unknown` findings in the blocking counter.
	CountUnknown bool `yaml:"count_unknown" json:"count_unknown"`
}

type TerminologyConfig struct {
	SplitIdentifiers bool `yaml:"split_identifiers" json:"split_identifiers"`
}

type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"       json:"nats_url,omitempty"`
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix,omitempty"`
}

// DefaultConfig returns the documented defaults: every guard but build
// enabled, minimum score 70, both outputs on, fail on violations.
func DefaultConfig() SentinelConfig {
	return SentinelConfig{
		Guards: GuardToggles{
			Terminology:  true,
			Contracts:    true,
			Dependency:   true,
			ClosedModule: true,
			TypeSafety:   true,
			Security:     true,
			Build:        false,
		},
		Scoring: ScoringConfig{
			MinimumScore: DefaultMinimumScore,
		},
		Output: OutputConfig{
			Console:               true,
			Markdown:              true,
			MaxViolationsPerGuard: DefaultMaxViolationsPerGuard,
		},
		CI: CIConfig{
			FailOnViolations: true,
			PostPRComment:    true,
		},
		Build: BuildConfig{
			Command:      DefaultBuildCommand,
			Timeout:      DefaultBuildTimeout,
			MaxOutput:    DefaultBuildMaxOutput,
			PackageScope: DefaultPackageScope,
		},
		TypeSafety: TypeSafetyConfig{CountUnknown: true},
		Events:     EventsConfig{SubjectPrefix: DefaultEventSubjectPrefix},
	}
}

// Enabled reports whether guard g is switched on.
func (c SentinelConfig) Enabled(g GuardName) bool {
	switch g {
	case GuardTerminology:
		return c.Guards.Terminology
	case GuardContracts:
		return c.Guards.Contracts
	case GuardDependency:
		return c.Guards.Dependency
	case GuardClosedModule:
		return c.Guards.ClosedModule
	case GuardTypeSafety:
		return c.Guards.TypeSafety
	case GuardSecurity:
		return c.Guards.Security
	case GuardBuild:
		return c.Guards.Build
	default:
		return false
	}
}

// EnabledGuards returns the enabled guards in pipeline order.
func (c SentinelConfig) EnabledGuards() []GuardName {
	var out []GuardName
	for _, g := range AllGuards {
		if c.Enabled(g) {
			out = append(out, g)
		}
	}
	return out
}

// Deduction returns the configured per-violation cost of g, falling back to
// the guard's default weight.
func (s ScoringConfig) Deduction(g GuardName) int {
	if d, ok := s.Deductions[string(g)]; ok {
		return d
	}
	return g.DefaultDeduction()
}

// BuildArgv splits the build command into program and arguments.
func (b BuildConfig) BuildArgv() []string {
	return strings.Fields(b.Command)
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c SentinelConfig) Validate() error {
	if c.Scoring.MinimumScore < 0 || c.Scoring.MinimumScore > 100 {
		return fmt.Errorf("scoring.minimum_score = %d (must be between 0 and 100)", c.Scoring.MinimumScore)
	}

	for k, v := range c.Scoring.Deductions {
		if !GuardName(k).Valid() {
			return fmt.Errorf("unknown guard %q in scoring.deductions", k)
		}
		if v < 0 {
			return fmt.Errorf("scoring.deductions[%q] = %d (must be >= 0)", k, v)
		}
	}

	if c.Output.MaxViolationsPerGuard <= 0 {
		return fmt.Errorf("output.max_violations_per_guard must be > 0 (got %d)", c.Output.MaxViolationsPerGuard)
	}

	if c.Guards.Build {
		if len(c.Build.BuildArgv()) == 0 {
			return fmt.Errorf("build.command must not be empty when the build guard is enabled")
		}
		if c.Build.Timeout <= 0 {
			return fmt.Errorf("build.timeout must be > 0 (got %s)", c.Build.Timeout)
		}
	}

	if c.Build.MaxOutput < 0 {
		return fmt.Errorf("build.max_output must be >= 0 (got %d)", c.Build.MaxOutput)
	}

	for i, p := range c.ExcludePaths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("exclude_paths[%d] must not be empty", i)
		}
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("exclude_paths[%d] = %q is not a valid glob", i, p)
		}
	}

	return nil
}
