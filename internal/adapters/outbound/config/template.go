package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/silenceobjects/sentinel/internal/domain"
)

var fileTemplate = template.Must(template.New("sentinel").Parse(`# Silence Sentinel configuration
# Every key is optional; omitted keys keep their defaults.

guards:
  terminology: {{.Guards.Terminology}}
  contracts: {{.Guards.Contracts}}
  dependency: {{.Guards.Dependency}}
  closed_module: {{.Guards.ClosedModule}}
  type_safety: {{.Guards.TypeSafety}}
  security: {{.Guards.Security}}
  # runs the workspace build; slow
  build: {{.Guards.Build}}

scoring:
  minimum_score: {{.Scoring.MinimumScore}}

output:
  console: {{.Output.Console}}
  markdown: {{.Output.Markdown}}
  max_violations_per_guard: {{.Output.MaxViolationsPerGuard}}

ci:
  fail_on_violations: {{.CI.FailOnViolations}}
  post_pr_comment: {{.CI.PostPRComment}}

# exclude_paths:
#   - "apps/legacy/**"

build:
  command: "{{.Build.Command}}"
  timeout: {{.Build.Timeout}}
  package_scope: "{{.Build.PackageScope}}"

type_safety:
  # count ": unknown" findings against the score
  count_unknown: {{.TypeSafety.CountUnknown}}

terminology:
  split_identifiers: {{.Terminology.SplitIdentifiers}}

# events:
#   nats_url: "nats://localhost:4222"
#   subject_prefix: "{{.Events.SubjectPrefix}}"
`))

// Render produces the commented .sentinel.yaml for cfg.
func Render(cfg domain.SentinelConfig) ([]byte, error) {
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, cfg); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", FileName, err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes cfg to <repoPath>/.sentinel.yaml. An existing file is
// only replaced when force is set.
func WriteFile(repoPath string, cfg domain.SentinelConfig, force bool) (string, error) {
	path := filepath.Join(repoPath, FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", FileName)
	}
	data, err := Render(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", FileName, err)
	}
	return path, nil
}
