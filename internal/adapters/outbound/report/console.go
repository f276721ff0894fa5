// Package report renders guard results and compliance reports for the
// terminal and for pull-request comments.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/scoring"
)

// LineWidth bounds one rendered detail line in the console.
const LineWidth = 110

var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	faint   = lipgloss.Color("#3F3F46")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	gradeColors = map[domain.Grade]lipgloss.Color{
		domain.GradeA: success,
		domain.GradeB: lipgloss.Color("#A3E635"), // lime
		domain.GradeC: warning,
		domain.GradeD: lipgloss.Color("#FB923C"), // orange
		domain.GradeF: danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	guardStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// FormatGuardResult renders one guard result: a status line followed by at
// most max detail lines.
func FormatGuardResult(r domain.GuardResult, max int) string {
	var b strings.Builder

	status := passStyle.Render("PASS")
	if !r.Passed {
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(&b, "[%s] %s: %d violation(s)\n", status, guardStyle.Render(r.Guard.String()), r.Violations)

	shown, rest := capDetails(r.Details, max)
	for _, d := range shown {
		fmt.Fprintf(&b, "  %s\n", truncateLine(d))
	}
	if rest > 0 {
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(fmt.Sprintf("... and %d more", rest)))
	}
	return b.String()
}

// RenderConsole renders the full report for a terminal.
func RenderConsole(report domain.ComplianceReport, max int) string {
	var b strings.Builder

	color := gradeColor(report.Grade)
	title := headerStyle.Render("SILENCE SENTINEL")
	subtitle := dimStyle.Render("Compliance Score")
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(fmt.Sprintf("%d / 100", report.Score))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Render(string(report.Grade))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + gradeStyled))
	b.WriteString("\n\n")

	for _, r := range report.Results {
		b.WriteString(indent(FormatGuardResult(r, max), "  "))
		b.WriteString("\n")
	}

	b.WriteString("  " + separatorLine + "\n\n")
	for _, line := range strings.Split(report.Summary, "\n") {
		b.WriteString("  " + titleStyle.Render(line) + "\n")
	}

	verdict := passStyle.Render(fmt.Sprintf("PASSED (minimum %d)", report.MinimumScore))
	if !report.Passed {
		verdict = failStyle.Render(fmt.Sprintf("FAILED (minimum %d)", report.MinimumScore))
	}
	b.WriteString("\n  " + verdict + "\n")
	return b.String()
}

// RenderHistory formats score history for terminal output.
func RenderHistory(entries []domain.ScoreEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No score history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Compliance History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(gradeColor(e.Grade)).
			Render(fmt.Sprintf("%3d/100", e.Score))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(padRight(date, 10)),
			faintStyle.Render(hash),
			scoreStyled,
			e.Grade,
			dimStyle.Render(fmt.Sprintf("%d violation(s)", e.Violations)),
		)

		if i > 0 {
			diff := e.Score - entries[i-1].Score
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%d", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%d", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// StatusLine is the one-line verdict used by the progress and MCP outputs.
func StatusLine(report domain.ComplianceReport) string {
	return fmt.Sprintf("%d/100 (%s) %s", report.Score, report.Grade, scoring.StatusFor(report.Score))
}

func capDetails(details []string, max int) ([]string, int) {
	if max <= 0 || len(details) <= max {
		return details, 0
	}
	return details[:max], len(details) - max
}

func truncateLine(s string) string {
	return runewidth.Truncate(s, LineWidth, "...")
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func gradeColor(grade domain.Grade) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return fg
}

func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
