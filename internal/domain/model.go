package domain

import (
	"fmt"
	"time"
)

// FileStatus is the change status reported by a name-status diff.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
)

// ChangedFile is one entry of the changed-file set of a diff.
type ChangedFile struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
}

// DiffLine is a line added by the diff. LineNumber is the position of the
// line in the new version of File.
type DiffLine struct {
	File       string `json:"file"`
	LineNumber int    `json:"line_number"`
	Content    string `json:"content"`
}

// GuardResult is the uniform record every guard produces. Passed is decided by
// the guard and is not always Violations == 0.
type GuardResult struct {
	Guard      GuardName `json:"guard"`
	Passed     bool      `json:"passed"`
	Violations int       `json:"violations"`
	Details    []string  `json:"details"`
}

// Violation is the detailed payload a guard returns next to its GuardResult.
type Violation interface {
	Location() string
	Message() string
}

// GuardRun bundles a guard's result with its detailed findings.
type GuardRun struct {
	Result   GuardResult   `json:"result"`
	Findings []Violation   `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Grade is the letter grade derived from a compliance score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

func GradeFor(score int) Grade {
	switch {
	case score >= 95:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 50:
		return GradeD
	default:
		return GradeF
	}
}

// ComplianceReport is the aggregated verdict of one pipeline execution.
type ComplianceReport struct {
	Score        int           `json:"score"`
	Grade        Grade         `json:"grade"`
	Passed       bool          `json:"passed"`
	MinimumScore int           `json:"minimum_score"`
	Results      []GuardResult `json:"results"`
	Summary      string        `json:"summary"`
	CommitHash   string        `json:"commit_hash,omitempty"`
	Branch       string        `json:"branch,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// TotalViolations sums the violation counters of all results.
func (r ComplianceReport) TotalViolations() int {
	total := 0
	for _, res := range r.Results {
		total += res.Violations
	}
	return total
}

// PassedGuards counts results whose guard passed.
func (r ComplianceReport) PassedGuards() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed {
			n++
		}
	}
	return n
}

// ScoreEntry is one record of the score history.
type ScoreEntry struct {
	Timestamp  string `json:"timestamp"`
	CommitHash string `json:"commit_hash,omitempty"`
	Branch     string `json:"branch,omitempty"`
	Score      int    `json:"score"`
	Grade      Grade  `json:"grade"`
	Passed     bool   `json:"passed"`
	Violations int    `json:"violations"`
}

// ── Per-guard violations ──

type TerminologyViolation struct {
	File       string `json:"file"`
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
	Word       string `json:"word"`
	Suggestion string `json:"suggestion"`
	Language   string `json:"language"`
	Category   string `json:"category"`
}

func (v TerminologyViolation) Location() string { return fmt.Sprintf("%s:%d", v.File, v.LineNumber) }

func (v TerminologyViolation) Message() string {
	return fmt.Sprintf("forbidden %q (%s) -> use %q", v.Word, v.Language, v.Suggestion)
}

// ContractsViolationType classifies a breaking change in the frozen API.
type ContractsViolationType string

const (
	RemovedExport     ContractsViolationType = "removed-export"
	ChangedSignature  ContractsViolationType = "changed-signature"
	RemovedType       ContractsViolationType = "removed-type"
	ModifiedInterface ContractsViolationType = "modified-interface"
)

type ContractsViolation struct {
	File        string                 `json:"file"`
	LineNumber  int                    `json:"line_number,omitempty"`
	Type        ContractsViolationType `json:"type"`
	Description string                 `json:"description"`
}

func (v ContractsViolation) Location() string { return v.File }

func (v ContractsViolation) Message() string {
	return fmt.Sprintf("%s: %s", v.Type, v.Description)
}

// DependencyViolationType classifies a dependency change.
type DependencyViolationType string

const (
	NewDependency               DependencyViolationType = "new-dependency"
	LockfileChanged             DependencyViolationType = "lockfile-changed"
	ForbiddenInternalDependency DependencyViolationType = "forbidden-internal-dependency"
)

type DependencyViolation struct {
	File        string                  `json:"file"`
	Type        DependencyViolationType `json:"type"`
	PackageName string                  `json:"package_name"`
	Description string                  `json:"description"`
}

func (v DependencyViolation) Location() string { return v.File }

func (v DependencyViolation) Message() string {
	return fmt.Sprintf("%s: %s - %s", v.Type, v.PackageName, v.Description)
}

// ModuleLevel distinguishes frozen modules from review-required ones.
type ModuleLevel string

const (
	LevelClosed    ModuleLevel = "closed"
	LevelProtected ModuleLevel = "protected"
)

type ClosedModuleViolation struct {
	File        string      `json:"file"`
	Module      string      `json:"module"`
	Level       ModuleLevel `json:"level"`
	Description string      `json:"description"`
}

func (v ClosedModuleViolation) Location() string { return v.File }
func (v ClosedModuleViolation) Message() string  { return v.Description }

// TypeSafetyViolationType names one kind of type-safety erosion.
type TypeSafetyViolationType string

const (
	TSIgnore      TypeSafetyViolationType = "ts-ignore"
	TSNoCheck     TypeSafetyViolationType = "ts-nocheck"
	TSExpectError TypeSafetyViolationType = "ts-expect-error"
	AsAny         TypeSafetyViolationType = "as-any"
	ExplicitAny   TypeSafetyViolationType = "any"
	LegacyAnyCast TypeSafetyViolationType = "legacy-any-cast"
	UnknownType   TypeSafetyViolationType = "unknown"
)

type TypeSafetyViolation struct {
	File        string                  `json:"file"`
	LineNumber  int                     `json:"line_number"`
	Line        string                  `json:"line"`
	Type        TypeSafetyViolationType `json:"type"`
	Description string                  `json:"description"`
	Advisory    bool                    `json:"advisory,omitempty"`
}

func (v TypeSafetyViolation) Location() string { return fmt.Sprintf("%s:%d", v.File, v.LineNumber) }

func (v TypeSafetyViolation) Message() string {
	return fmt.Sprintf("%s: %s", v.Type, v.Description)
}

type SecurityViolation struct {
	File        string `json:"file"`
	LineNumber  int    `json:"line_number"`
	Line        string `json:"line"` // masked
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (v SecurityViolation) Location() string { return fmt.Sprintf("%s:%d", v.File, v.LineNumber) }

func (v SecurityViolation) Message() string {
	return fmt.Sprintf("%s: %s", v.Type, v.Description)
}

type BuildViolation struct {
	Package string `json:"package"`
	Error   string `json:"error"`
}

func (v BuildViolation) Location() string { return v.Package }
func (v BuildViolation) Message() string  { return v.Error }
