package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/silenceobjects/sentinel/internal/domain"
)

const (
	MarkdownStart = "--- SENTINEL MARKDOWN REPORT ---"
	MarkdownEnd   = "--- END SENTINEL MARKDOWN REPORT ---"
)

// RenderMarkdown renders the report as a pull-request comment. Each guard
// section lists at most max details.
func RenderMarkdown(report domain.ComplianceReport, max int) string {
	var b strings.Builder

	icon := "✅"
	verdict := "PASSED"
	if !report.Passed {
		icon = "❌"
		verdict = "FAILED"
	}

	b.WriteString("## 🛡️ Silence Sentinel Compliance Report\n\n")
	fmt.Fprintf(&b, "%s **Score: %d/100** (Grade: **%s**) - %s, minimum %d\n\n",
		icon, report.Score, report.Grade, verdict, report.MinimumScore)
	if report.CommitHash != "" || report.Branch != "" {
		fmt.Fprintf(&b, "Commit `%s` on `%s`\n\n", shortHash(report.CommitHash), report.Branch)
	}

	b.WriteString("| Guard | Status | Violations |\n")
	b.WriteString("|-------|--------|------------|\n")
	for _, r := range report.Results {
		status := "✅ Pass"
		if !r.Passed {
			status = "❌ Fail"
		}
		fmt.Fprintf(&b, "| %s | %s | %d |\n", r.Guard, status, r.Violations)
	}
	b.WriteString("\n")

	for _, r := range report.Results {
		if r.Passed && r.Violations == 0 {
			if !hasWarnings(r.Details) {
				continue
			}
			fmt.Fprintf(&b, "### ⚠️ %s\n\n", r.Guard)
		} else {
			fmt.Fprintf(&b, "### ❌ %s (%d)\n\n", r.Guard, r.Violations)
		}
		shown, rest := capDetails(r.Details, max)
		for _, d := range shown {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(d))
		}
		if rest > 0 {
			fmt.Fprintf(&b, "- _... and %d more_\n", rest)
		}
		b.WriteString("\n")
	}

	b.WriteString("```\n")
	b.WriteString(report.Summary)
	b.WriteString("\n```\n")
	return b.String()
}

// WrapMarkdown surrounds md with the delimiters CI jobs search for.
func WrapMarkdown(md string) string {
	return "\n" + MarkdownStart + "\n\n" + strings.TrimRight(md, "\n") + "\n\n" + MarkdownEnd + "\n"
}

// ExtractMarkdown returns the text between the delimiters, or false when
// the output holds no report.
func ExtractMarkdown(output string) (string, bool) {
	start := strings.Index(output, MarkdownStart)
	if start < 0 {
		return "", false
	}
	rest := output[start+len(MarkdownStart):]
	end := strings.Index(rest, MarkdownEnd)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// RenderPretty renders Markdown for a terminal, falling back to the raw
// text when glamour fails.
func RenderPretty(md string, width int) string {
	if md == "" {
		return ""
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n ")
}

// hasWarnings reports whether a passing guard left non-blocking findings
// that reviewers still need to see.
func hasWarnings(details []string) bool {
	for _, d := range details {
		d = strings.TrimSpace(d)
		if strings.HasPrefix(d, "WARNING:") || strings.HasSuffix(d, "(advisory)") {
			return true
		}
	}
	return false
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "<", "&lt;")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(strings.TrimSpace(s))
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
