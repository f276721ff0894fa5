package guards

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
)

const (
	unknownPackage     = "unknown"
	unattributedLimit  = 500
	buildDetailLimit   = 200
	unknownBuildFailed = "Unknown build error"
)

var errorCodeRe = regexp.MustCompile(`\bTS\d+`)

// Build runs the external multi-package build and attributes failures to
// packages. It is the only guard that talks to something other than git.
type Build struct {
	runner domain.CommandRunner
	cfg    domain.BuildConfig
	dir    string
	scope  *regexp.Regexp
}

// NewBuild builds the guard; dir is the repository root the command runs in.
func NewBuild(runner domain.CommandRunner, cfg domain.BuildConfig, dir string) *Build {
	scope := cfg.PackageScope
	if scope == "" {
		scope = domain.DefaultPackageScope
	}
	return &Build{
		runner: runner,
		cfg:    cfg,
		dir:    dir,
		scope:  regexp.MustCompile(regexp.QuoteMeta(scope) + `([^:\s]+)`),
	}
}

func (g *Build) Name() domain.GuardName { return domain.GuardBuild }

func (g *Build) Run(ctx context.Context) domain.GuardRun {
	argv := g.cfg.BuildArgv()
	if len(argv) == 0 {
		return g.failed([]domain.BuildViolation{{Package: unknownPackage, Error: "build command is empty"}})
	}

	res := g.runner.Run(ctx, domain.Command{
		Name:      argv[0],
		Args:      argv[1:],
		Dir:       g.dir,
		Timeout:   g.cfg.Timeout,
		MaxOutput: g.cfg.MaxOutput,
	})
	if res.Succeeded() {
		return domain.GuardRun{
			Result: domain.GuardResult{
				Guard:   g.Name(),
				Passed:  true,
				Details: []string{"All packages built successfully"},
			},
		}
	}

	if res.TimedOut {
		return g.failed([]domain.BuildViolation{{
			Package: unknownPackage,
			Error:   fmt.Sprintf("build timed out after %s", g.cfg.Timeout),
		}})
	}

	output := firstNonEmpty(res.Stderr, res.Stdout)
	if output == "" && res.Err != nil {
		output = res.Err.Error()
	}
	if output == "" {
		output = unknownBuildFailed
	}

	violations := g.attribute(output)
	if len(violations) == 0 {
		violations = []domain.BuildViolation{{Package: unknownPackage, Error: truncate(output, unattributedLimit)}}
	}
	return g.failed(violations)
}

func (g *Build) failed(violations []domain.BuildViolation) domain.GuardRun {
	details := make([]string, 0, len(violations))
	for _, v := range violations {
		details = append(details, fmt.Sprintf("Build failed in %s: %s", v.Package, truncate(v.Error, buildDetailLimit)))
	}
	return domain.GuardRun{
		Result: domain.GuardResult{
			Guard:      g.Name(),
			Passed:     false,
			Violations: len(violations),
			Details:    details,
		},
		Findings: toViolations(violations),
	}
}

// attribute groups error lines under the most recently seen package marker.
// Error lines before the first marker are not attributed.
func (g *Build) attribute(output string) []domain.BuildViolation {
	var (
		out     []domain.BuildViolation
		current string
		errs    []string
	)
	flush := func() {
		if current != "" && len(errs) > 0 {
			out = append(out, domain.BuildViolation{Package: current, Error: strings.Join(errs, "\n")})
		}
		errs = nil
	}

	for _, line := range strings.Split(output, "\n") {
		if m := g.scope.FindStringSubmatch(line); m != nil {
			pkg := m[0]
			if pkg != current {
				flush()
				current = pkg
			}
		}
		if current != "" && isErrorLine(line) {
			errs = append(errs, strings.TrimSpace(line))
		}
	}
	flush()
	return out
}

func isErrorLine(line string) bool {
	return strings.Contains(line, "error") ||
		strings.Contains(line, "Error") ||
		strings.Contains(line, "ERR") ||
		strings.Contains(line, "FAIL") ||
		errorCodeRe.MatchString(line)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
