package domain

import (
	"errors"
	"fmt"
	"strings"
)

// GuardName identifies one of the seven guards. The set is closed: every
// value is listed in AllGuards, in execution order.
type GuardName string

const (
	GuardTerminology  GuardName = "terminology"
	GuardContracts    GuardName = "contracts"
	GuardDependency   GuardName = "dependency"
	GuardClosedModule GuardName = "closed-module"
	GuardTypeSafety   GuardName = "type-safety"
	GuardSecurity     GuardName = "security"
	GuardBuild        GuardName = "build"
)

// AllGuards lists every guard in the fixed pipeline order.
var AllGuards = []GuardName{
	GuardTerminology,
	GuardContracts,
	GuardDependency,
	GuardClosedModule,
	GuardTypeSafety,
	GuardSecurity,
	GuardBuild,
}

// FallbackDeduction is charged per violation for a guard without a weight.
const FallbackDeduction = 10

// ErrUnknownGuard is returned when a name does not identify a guard.
var ErrUnknownGuard = errors.New("unknown guard")

// ParseGuardName maps a CLI or config spelling to a GuardName.
func ParseGuardName(s string) (GuardName, error) {
	g := GuardName(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownGuard, s)
	}
	return g, nil
}

// Valid reports whether g is one of AllGuards.
func (g GuardName) Valid() bool {
	for _, known := range AllGuards {
		if g == known {
			return true
		}
	}
	return false
}

// DefaultDeduction is the number of points one violation of g costs.
func (g GuardName) DefaultDeduction() int {
	switch g {
	case GuardTerminology:
		return 20
	case GuardContracts:
		return 15
	case GuardDependency:
		return 10
	case GuardClosedModule:
		return 15
	case GuardTypeSafety:
		return 5
	case GuardSecurity:
		return 25
	case GuardBuild:
		return 30
	default:
		return FallbackDeduction
	}
}

// Description is the one-line help text shown in usage output.
func (g GuardName) Description() string {
	switch g {
	case GuardTerminology:
		return "Scan for forbidden vocabulary in added code"
	case GuardContracts:
		return "Detect breaking changes in the frozen public API"
	case GuardDependency:
		return "Check for unauthorized new dependencies"
	case GuardClosedModule:
		return "Verify no CLOSED modules were modified"
	case GuardTypeSafety:
		return "Scan for any/unknown/@ts-ignore usage"
	case GuardSecurity:
		return "Detect leaked secrets and API keys"
	case GuardBuild:
		return "Verify all packages build successfully"
	default:
		return ""
	}
}

func (g GuardName) String() string { return string(g) }
