package guards

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/diff"
)

// Dependency checks for unapproved dependency changes: any lockfile change
// and every external package added to a manifest dependency block.
type Dependency struct {
	src    domain.DiffSource
	policy domain.Policy
}

func NewDependency(src domain.DiffSource, policy domain.Policy) *Dependency {
	return &Dependency{src: src, policy: policy}
}

var (
	dependencyBlocks = []string{
		`"dependencies"`,
		`"devDependencies"`,
		`"peerDependencies"`,
		`"optionalDependencies"`,
	}
	blockEndRe = regexp.MustCompile(`^\s*\}`)
	depEntryRe = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]+)"`)
)

func (g *Dependency) Name() domain.GuardName { return domain.GuardDependency }

func (g *Dependency) Run(ctx context.Context) domain.GuardRun {
	var (
		lockfileChanged bool
		manifests       []string
	)
	for _, f := range g.src.ChangedFiles(ctx) {
		if f.Path == g.policy.LockfileName {
			lockfileChanged = true
		}
		if strings.HasSuffix(f.Path, g.policy.ManifestName) {
			manifests = append(manifests, f.Path)
		}
	}
	if !lockfileChanged && len(manifests) == 0 {
		return skipped(g.Name(), "No dependency changes detected")
	}

	var found []domain.DependencyViolation
	if lockfileChanged {
		found = append(found, domain.DependencyViolation{
			File:        g.policy.LockfileName,
			Type:        domain.LockfileChanged,
			PackageName: g.policy.LockfileName,
			Description: "Lockfile was modified - verify dependency changes are intentional",
		})
	}

	for _, path := range manifests {
		patch := patchFor(ctx, g.src, path)
		for _, f := range patch.Files {
			if f.Path != path {
				continue
			}
			found = append(found, g.scanManifest(f)...)
		}
	}

	details := make([]string, 0, len(found))
	for _, v := range found {
		details = append(details, fmt.Sprintf("%s - %s: %s - %s", v.File, v.Type, v.PackageName, v.Description))
	}
	if len(found) == 0 {
		details = append(details, "No unauthorized dependency changes")
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

// scanManifest walks the diff body of one manifest, tracking whether the
// current line sits inside a dependency block.
func (g *Dependency) scanManifest(f diff.FileDiff) []domain.DependencyViolation {
	var out []domain.DependencyViolation
	module := g.policy.ModuleFor(f.Path)
	inBlock := false

	for _, l := range f.Lines() {
		if opensDependencyBlock(l.Content) {
			inBlock = true
			continue
		}
		if inBlock && blockEndRe.MatchString(l.Content) {
			inBlock = false
			continue
		}
		if !inBlock || l.Kind != diff.Added {
			continue
		}

		m := depEntryRe.FindStringSubmatch(l.Content)
		if m == nil {
			continue
		}
		name, version := m[1], m[2]

		if strings.HasPrefix(version, g.policy.WorkspaceProtocol) {
			if strings.HasPrefix(name, g.policy.InternalScope) && !g.policy.AllowsInternalDependency(module, name) {
				out = append(out, domain.DependencyViolation{
					File:        f.Path,
					Type:        domain.ForbiddenInternalDependency,
					PackageName: name,
					Description: fmt.Sprintf("%s may not depend on %s", module, name),
				})
			}
			continue
		}

		out = append(out, domain.DependencyViolation{
			File:        f.Path,
			Type:        domain.NewDependency,
			PackageName: name,
			Description: fmt.Sprintf("New dependency added: %s@%s - requires approval", name, version),
		})
	}
	return out
}

func opensDependencyBlock(line string) bool {
	for _, key := range dependencyBlocks {
		if strings.Contains(line, key) {
			return true
		}
	}
	return false
}
