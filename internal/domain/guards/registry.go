package guards

import (
	"fmt"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// Deps is everything a guard may need. Guards take only what they use.
type Deps struct {
	Source  domain.DiffSource
	Policy  domain.Policy
	Filter  domain.PathFilter
	Runner  domain.CommandRunner
	Config  domain.SentinelConfig
	RepoDir string
}

// New constructs the guard identified by name.
func New(name domain.GuardName, d Deps) (Guard, error) {
	switch name {
	case domain.GuardTerminology:
		return NewTerminology(d.Source, d.Policy, d.Filter, d.Config.Terminology.SplitIdentifiers), nil
	case domain.GuardContracts:
		return NewContracts(d.Source, d.Policy), nil
	case domain.GuardDependency:
		return NewDependency(d.Source, d.Policy), nil
	case domain.GuardClosedModule:
		return NewClosedModule(d.Source, d.Policy), nil
	case domain.GuardTypeSafety:
		return NewTypeSafety(d.Source, d.Policy, d.Filter, d.Config.TypeSafety.CountUnknown), nil
	case domain.GuardSecurity:
		return NewSecurity(d.Source, d.Policy, d.Filter), nil
	case domain.GuardBuild:
		if d.Runner == nil {
			return nil, fmt.Errorf("build guard: no command runner configured")
		}
		return NewBuild(d.Runner, d.Config.Build, d.RepoDir), nil
	default:
		return nil, fmt.Errorf("%w %q", domain.ErrUnknownGuard, string(name))
	}
}
