package guards

import (
	"context"
	"fmt"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// ClosedModule blocks edits to CLOSED modules and warns about edits to
// PROTECTED ones. Only CLOSED matches are counted.
type ClosedModule struct {
	src    domain.DiffSource
	policy domain.Policy
}

func NewClosedModule(src domain.DiffSource, policy domain.Policy) *ClosedModule {
	return &ClosedModule{src: src, policy: policy}
}

func (g *ClosedModule) Name() domain.GuardName { return domain.GuardClosedModule }

func (g *ClosedModule) Run(ctx context.Context) domain.GuardRun {
	files := g.src.ChangedFiles(ctx)
	if len(files) == 0 {
		return skipped(g.Name(), "No changed files to check")
	}

	var closed, protected []domain.ClosedModuleViolation
	for _, f := range files {
		if mod, ok := g.policy.ClosedModule(f.Path); ok {
			closed = append(closed, domain.ClosedModuleViolation{
				File:        f.Path,
				Module:      mod,
				Level:       domain.LevelClosed,
				Description: fmt.Sprintf("CLOSED module %q was modified - requires OWNER approval", mod),
			})
		}
		if mod, ok := g.policy.ProtectedModule(f.Path); ok {
			protected = append(protected, domain.ClosedModuleViolation{
				File:        f.Path,
				Module:      mod,
				Level:       domain.LevelProtected,
				Description: fmt.Sprintf("PROTECTED module %q was modified - requires review", mod),
			})
		}
	}

	var details []string
	if len(closed) > 0 {
		details = append(details, fmt.Sprintf("BLOCKED: %d file(s) in CLOSED modules were modified", len(closed)))
		for _, v := range closed {
			details = append(details, fmt.Sprintf("  %s - %s", v.File, v.Description))
		}
	}
	if len(protected) > 0 {
		details = append(details, fmt.Sprintf("WARNING: %d file(s) in PROTECTED modules were modified", len(protected)))
		for _, v := range protected {
			details = append(details, fmt.Sprintf("  %s - %s", v.File, v.Description))
		}
	}
	if len(closed) == 0 && len(protected) == 0 {
		details = append(details, "No CLOSED or PROTECTED module changes detected")
	}

	return domain.GuardRun{
		Result: domain.GuardResult{
			Guard:      g.Name(),
			Passed:     len(closed) == 0,
			Violations: len(closed),
			Details:    details,
		},
		Findings: append(toViolations(closed), toViolations(protected)...),
	}
}
