package domain_test

import (
	"testing"
	"time"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()

	assert.Equal(t, []domain.GuardName{
		domain.GuardTerminology,
		domain.GuardContracts,
		domain.GuardDependency,
		domain.GuardClosedModule,
		domain.GuardTypeSafety,
		domain.GuardSecurity,
	}, cfg.EnabledGuards(), "build is off by default")
	assert.Equal(t, 70, cfg.Scoring.MinimumScore)
	assert.True(t, cfg.Output.Console)
	assert.True(t, cfg.Output.Markdown)
	assert.True(t, cfg.CI.FailOnViolations)
	assert.True(t, cfg.CI.PostPRComment)
	assert.Equal(t, 5*time.Minute, cfg.Build.Timeout)
	assert.Equal(t, []string{"pnpm", "-r", "build"}, cfg.Build.BuildArgv())
	assert.NoError(t, cfg.Validate())
}

func TestEnabled_UnknownGuard(t *testing.T) {
	assert.False(t, domain.DefaultConfig().Enabled("lint"))
}

func TestDeduction_Override(t *testing.T) {
	s := domain.ScoringConfig{Deductions: map[string]int{"security": 40}}
	assert.Equal(t, 40, s.Deduction(domain.GuardSecurity))
	assert.Equal(t, 30, s.Deduction(domain.GuardBuild))
	assert.Equal(t, domain.FallbackDeduction, s.Deduction("lint"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.SentinelConfig)
		wantErr string
	}{
		{"minimum score too high", func(c *domain.SentinelConfig) { c.Scoring.MinimumScore = 101 }, "scoring.minimum_score"},
		{"minimum score negative", func(c *domain.SentinelConfig) { c.Scoring.MinimumScore = -1 }, "scoring.minimum_score"},
		{"unknown deduction guard", func(c *domain.SentinelConfig) { c.Scoring.Deductions = map[string]int{"lint": 5} }, `unknown guard "lint"`},
		{"negative deduction", func(c *domain.SentinelConfig) { c.Scoring.Deductions = map[string]int{"build": -5} }, "must be >= 0"},
		{"zero max violations", func(c *domain.SentinelConfig) { c.Output.MaxViolationsPerGuard = 0 }, "max_violations_per_guard"},
		{"empty build command", func(c *domain.SentinelConfig) {
			c.Guards.Build = true
			c.Build.Command = ""
		}, "build.command"},
		{"zero build timeout", func(c *domain.SentinelConfig) {
			c.Guards.Build = true
			c.Build.Timeout = 0
		}, "build.timeout"},
		{"negative max output", func(c *domain.SentinelConfig) { c.Build.MaxOutput = -1 }, "build.max_output"},
		{"blank exclude path", func(c *domain.SentinelConfig) { c.ExcludePaths = []string{" "} }, "exclude_paths[0]"},
		{"bad glob", func(c *domain.SentinelConfig) { c.ExcludePaths = []string{"src/[a"} }, "not a valid glob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_EmptyBuildCommandIgnoredWhenDisabled(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Build.Command = ""
	assert.NoError(t, cfg.Validate())
}
