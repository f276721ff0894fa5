package guards

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// SecretPattern is one secret shape the security guard looks for.
type SecretPattern struct {
	Name        string
	Pattern     *regexp.Regexp
	Description string
}

const envFileReference = "Env File Reference"

// DefaultSecretPatterns returns the secret shapes in match order.
func DefaultSecretPatterns() []SecretPattern {
	p := func(name, re, desc string) SecretPattern {
		return SecretPattern{Name: name, Pattern: regexp.MustCompile(re), Description: desc}
	}
	return []SecretPattern{
		p("Anthropic API Key", `sk-ant-[a-zA-Z0-9_-]{20,}`, "Anthropic API key detected"),
		p("Stripe Secret Key", `sk_live_[a-zA-Z0-9]{20,}`, "Stripe live secret key detected"),
		p("Stripe Test Key", `sk_test_[a-zA-Z0-9]{20,}`, "Stripe test secret key detected"),
		p("AWS Access Key", `AKIA[0-9A-Z]{16}`, "AWS Access Key ID detected"),
		p("AWS Secret Key", `(?:aws_secret_access_key|AWS_SECRET_ACCESS_KEY)\s*[=:]\s*["']?[A-Za-z0-9/+=]{40}`, "AWS Secret Access Key detected"),
		p("Generic API Key", `(?i)(?:api[_-]?key|apikey)\s*[=:]\s*["'][a-zA-Z0-9_-]{20,}["']`, "Generic API key assignment detected"),
		p("Generic Secret", `(?:secret|SECRET)\s*[=:]\s*["'][a-zA-Z0-9_-]{20,}["']`, "Generic secret assignment detected"),
		p("Password in Code", `(?i)(?:password|passwd|pwd)\s*[=:]\s*["'][^"']{4,}["']`, "Password hardcoded in source code"),
		p("Private Key", `-----BEGIN\s+(RSA\s+)?PRIVATE\s+KEY-----`, "Private key detected in source code"),
		p("GitHub Token", `gh[ps]_[A-Za-z0-9_]{36,}`, "GitHub personal access token detected"),
		p("Supabase Service Key", `eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`, "JWT token (possibly Supabase service key) detected"),
		p("OpenAI API Key", `sk-[a-zA-Z0-9]{48,}`, "OpenAI API key detected"),
		p("Database URL with Credentials", `(?:postgres|mysql|mongodb)://[^:]+:[^@]+@`, "Database connection string with credentials detected"),
		p("Bearer Token", `(?:bearer|Bearer)\s+[a-zA-Z0-9_.-]{20,}`, "Bearer token detected"),
		p(envFileReference, `\.env(?:\.local|\.production|\.staging)?\b`, "Reference to .env file - ensure it is in .gitignore"),
	}
}

var ignoreFileRe = regexp.MustCompile(`\.(gitignore|dockerignore|eslintignore)$`)

// Security scans added lines for leaked credentials. Reported lines are
// masked so the report never repeats a secret.
type Security struct {
	src      domain.DiffSource
	policy   domain.Policy
	filter   domain.PathFilter
	patterns []SecretPattern
}

func NewSecurity(src domain.DiffSource, policy domain.Policy, filter domain.PathFilter) *Security {
	return &Security{
		src:      src,
		policy:   policy,
		filter:   orNoFilter(filter),
		patterns: DefaultSecretPatterns(),
	}
}

func (g *Security) Name() domain.GuardName { return domain.GuardSecurity }

func (g *Security) Run(ctx context.Context) domain.GuardRun {
	lines := g.src.AddedLines(ctx)
	if len(lines) == 0 {
		return skipped(g.Name(), "No added lines to scan")
	}

	var found []domain.SecurityViolation
	for _, dl := range lines {
		if g.policy.SecurityExcluded(dl.File) || g.policy.IsBinary(dl.File) || g.filter.Excluded(dl.File) {
			continue
		}
		comment := isScriptComment(dl.Content)
		for _, sp := range g.patterns {
			if !sp.Pattern.MatchString(dl.Content) {
				continue
			}
			if sp.Name == envFileReference {
				if ignoreFileRe.MatchString(dl.File) {
					continue
				}
			} else if comment {
				continue
			}
			found = append(found, domain.SecurityViolation{
				File:        dl.File,
				LineNumber:  dl.LineNumber,
				Line:        MaskSecrets(strings.TrimSpace(dl.Content)),
				Type:        sp.Name,
				Description: sp.Description,
			})
		}
	}

	found = dedupe(found, func(v domain.SecurityViolation) string {
		return fmt.Sprintf("%s:%d:%s", v.File, v.LineNumber, v.Type)
	})

	details := make([]string, 0, len(found))
	for _, v := range found {
		details = append(details, fmt.Sprintf("%s - %s: %s", v.Location(), v.Type, v.Description))
	}
	if len(found) == 0 {
		details = append(details, "No secrets or sensitive data detected")
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
