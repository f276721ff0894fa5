package guards

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/diff"
)

// Contracts detects breaking changes in the frozen public API directory.
// The breaking signal is a removed line; added lines only help to tell a
// changed signature from a removal.
type Contracts struct {
	src    domain.DiffSource
	policy domain.Policy
}

func NewContracts(src domain.DiffSource, policy domain.Policy) *Contracts {
	return &Contracts{src: src, policy: policy}
}

var (
	exportRe     = regexp.MustCompile(`\bexport\b`)
	interfaceRe  = regexp.MustCompile(`\binterface\b`)
	typeAliasRe  = regexp.MustCompile(`\btype\b.*=`)
	exportNameRe = regexp.MustCompile(`\bexport\s+(?:default\s+)?(?:declare\s+)?(?:async\s+)?(?:function\*?|const|let|var|class|interface|type|enum)\s+([A-Za-z_$][\w$]*)`)
)

func (g *Contracts) Name() domain.GuardName { return domain.GuardContracts }

func (g *Contracts) Run(ctx context.Context) domain.GuardRun {
	dir := g.policy.FrozenAPIDir
	touched := false
	for _, f := range g.src.ChangedFiles(ctx) {
		if strings.HasPrefix(f.Path, dir) {
			touched = true
			break
		}
	}
	if !touched {
		return skipped(g.Name(), fmt.Sprintf("No changes to %s - skipped", strings.TrimSuffix(dir, "/")))
	}

	patch := patchFor(ctx, g.src, dir)
	if len(patch.Files) == 0 {
		return skipped(g.Name(), fmt.Sprintf("No diff output for %s", strings.TrimSuffix(dir, "/")))
	}

	var found []domain.ContractsViolation
	for _, f := range patch.Files {
		readded := addedExports(f)
		for _, h := range f.Hunks {
			for _, rl := range h.Removed {
				found = append(found, classifyRemoval(rl, readded)...)
			}
		}
	}

	details := make([]string, 0, len(found))
	for _, v := range found {
		details = append(details, fmt.Sprintf("%s - %s: %s", v.File, v.Type, v.Description))
	}
	if len(found) == 0 {
		details = append(details, fmt.Sprintf("%s modified but no breaking changes detected", strings.TrimSuffix(dir, "/")))
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

// classifyRemoval turns one removed line into zero or more violations. A
// removed export whose name is exported again in the same file is reported
// as a changed signature rather than a removal.
func classifyRemoval(rl diff.RemovedLine, readded map[string]bool) []domain.ContractsViolation {
	content := strings.TrimSpace(rl.Content)
	var out []domain.ContractsViolation
	add := func(t domain.ContractsViolationType, desc string) {
		out = append(out, domain.ContractsViolation{
			File:        rl.File,
			LineNumber:  rl.LineNumber,
			Type:        t,
			Description: desc,
		})
	}

	if exportRe.MatchString(content) {
		if m := exportNameRe.FindStringSubmatch(content); m != nil && readded[m[1]] {
			add(domain.ChangedSignature, "Changed export signature: "+content)
		} else {
			add(domain.RemovedExport, "Potentially removed export: "+content)
		}
	}
	if interfaceRe.MatchString(content) {
		add(domain.ModifiedInterface, "Modified interface: "+content)
	}
	if typeAliasRe.MatchString(content) {
		add(domain.RemovedType, "Modified type definition: "+content)
	}
	return out
}

func addedExports(f diff.FileDiff) map[string]bool {
	names := map[string]bool{}
	for _, h := range f.Hunks {
		for _, al := range h.Added {
			if m := exportNameRe.FindStringSubmatch(al.Content); m != nil {
				names[m[1]] = true
			}
		}
	}
	return names
}
