// Package scoring turns guard results into a compliance verdict.
package scoring

import (
	"fmt"
	"strings"

	"github.com/silenceobjects/sentinel/internal/domain"
)

// Status bands share the grade thresholds.
const (
	StatusExcellent  = "EXCELLENT - all clear"
	StatusGood       = "GOOD - minor issues detected"
	StatusAcceptable = "ACCEPTABLE - issues should be addressed"
	StatusWarning    = "WARNING - significant issues found"
	StatusBlocked    = "BLOCKED - critical violations must be fixed"
)

// CalculateScore starts from 100 and subtracts violations times the guard's
// deduction for every result. The score is clamped to [0, 100] and passes
// when it reaches the configured minimum.
func CalculateScore(results []domain.GuardResult, cfg domain.ScoringConfig) domain.ComplianceReport {
	score := 100
	for _, r := range results {
		score -= r.Violations * cfg.Deduction(r.Guard)
	}
	score = clamp(score)

	report := domain.ComplianceReport{
		Score:        score,
		Grade:        domain.GradeFor(score),
		Passed:       score >= cfg.MinimumScore,
		MinimumScore: cfg.MinimumScore,
		Results:      results,
	}
	report.Summary = Summary(report)
	return report
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// StatusFor maps a score to its status band.
func StatusFor(score int) string {
	switch {
	case score >= 95:
		return StatusExcellent
	case score >= 80:
		return StatusGood
	case score >= 70:
		return StatusAcceptable
	case score >= 50:
		return StatusWarning
	default:
		return StatusBlocked
	}
}

// Summary renders the fixed four-line summary of a report.
func Summary(r domain.ComplianceReport) string {
	lines := []string{
		fmt.Sprintf("SILENCE SENTINEL Compliance Score: %d/100 (Grade: %s)", r.Score, r.Grade),
		fmt.Sprintf("Guards: %d/%d passed", r.PassedGuards(), len(r.Results)),
		fmt.Sprintf("Total violations: %d", r.TotalViolations()),
		"Status: " + StatusFor(r.Score),
	}
	return strings.Join(lines, "\n")
}
