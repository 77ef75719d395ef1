package parser

import (
	"strings"

	"github.com/helmcode/sitecritic/pkg/model"
)

const (
	pageDescriptionPrefix   = "page description:"
	fallbackPageDescription = "No page description provided"
	fallbackSummary         = "Design review completed."
	maxSummaryLines         = 4
)

// noIssuePhrases mark a critique that judged the page clean.
var noIssuePhrases = []string{
	"no critical layout issues found",
	"no issues found",
	"no layout issues",
	"no visual issues",
	"no problems detected",
}

var severityKeywords = []model.Severity{
	model.SeverityCritical,
	model.SeverityMajor,
	model.SeverityMinor,
}

// categoryKeywords is matched in declaration order; the first hit wins even
// when a header mentions several of them.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"navigation", "Navigation"},
	{"layout", "Layout"},
	{"responsive", "Responsive"},
	{"accessibility", "Accessibility"},
	{"performance", "Performance"},
	{"visual", "Visual"},
	{"content", "Content"},
}

var summaryKeywords = []string{"overall", "summary", "assessment"}

var headerSeparators = []string{" - ", " – ", " — "}

// section is the severity/category carried forward onto bullet lines.
type section struct {
	severity model.Severity
	category string
}

// ParseCritique turns free-form critique text into a page description, a
// summary and an ordered issue list. It never fails: text it cannot
// structure becomes a single catch-all issue, and text that reports a clean
// page yields no issues at all.
func ParseCritique(text string) model.Critique {
	trimmed := strings.TrimSpace(text)
	pageDescription, lines := splitLines(trimmed)

	clean := hasNoIssuesPhrase(trimmed)
	issues := extractIssues(lines)
	if len(issues) == 0 && !clean {
		issues = append(issues, model.Issue{
			Severity:    model.SeverityMajor,
			Category:    model.DefaultCategory,
			Description: trimmed,
		})
	}

	return model.Critique{
		PageDescription: pageDescription,
		Summary:         summarize(lines, trimmed, clean),
		Issues:          issues,
	}
}

// splitLines drops blank lines and pulls out the page description. Every
// "page description:" line is removed; only the first one is kept.
func splitLines(text string) (string, []string) {
	var (
		lines       []string
		description string
		found       bool
	)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), pageDescriptionPrefix) {
			if !found {
				description = strings.TrimSpace(line[len(pageDescriptionPrefix):])
				found = true
			}
			continue
		}
		lines = append(lines, line)
	}
	if description == "" {
		description = fallbackPageDescription
	}
	return description, lines
}

func extractIssues(lines []string) []model.Issue {
	issues := []model.Issue{}
	current := section{severity: model.SeverityMajor, category: model.DefaultCategory}

	for _, line := range lines {
		if next, ok := parseHeader(line); ok {
			current = next
		}
		if desc, ok := bulletText(line); ok && desc != "" {
			issues = append(issues, model.Issue{
				Severity:    current.severity,
				Category:    current.category,
				Description: desc,
			})
		}
	}
	return issues
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"-", "•"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}

func isBullet(line string) bool {
	_, ok := bulletText(line)
	return ok
}

// parseHeader reports whether line changes the running severity. Bullets
// count too, so "- Critical: ..." raises the state for what follows.
func parseHeader(line string) (section, bool) {
	lower := strings.ToLower(line)
	for _, sev := range severityKeywords {
		if strings.Contains(lower, string(sev)) {
			return section{severity: sev, category: headerCategory(line)}, true
		}
	}
	return section{}, false
}

func isSeverityHeader(line string) bool {
	if isBullet(line) {
		return false
	}
	_, ok := parseHeader(line)
	return ok
}

func headerCategory(line string) string {
	for _, sep := range headerSeparators {
		if i := strings.Index(line, sep); i >= 0 {
			if category := cleanHeaderText(line[i+len(sep):]); category != "" {
				return category
			}
		}
	}

	lower := strings.ToLower(line)
	for _, kw := range categoryKeywords {
		if strings.Contains(lower, kw.keyword) {
			return kw.category
		}
	}
	return model.DefaultCategory
}

// cleanHeaderText strips markdown emphasis and trailing colons.
func cleanHeaderText(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*#_:"))
}

func hasNoIssuesPhrase(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range noIssuePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func isSummaryHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range summaryKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func summarize(lines []string, trimmed string, clean bool) string {
	if clean {
		for _, line := range lines {
			if hasNoIssuesPhrase(line) {
				return line
			}
		}
		return trimmed
	}

	for i, line := range lines {
		if !isSummaryHeader(line) {
			continue
		}
		var parts []string
		for _, next := range lines[i+1:] {
			if isSeverityHeader(next) {
				break
			}
			if isBullet(next) {
				continue
			}
			parts = append(parts, next)
			if len(parts) == maxSummaryLines {
				break
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
		break
	}

	for _, line := range lines {
		if isBullet(line) || isSeverityHeader(line) {
			continue
		}
		return line
	}
	return fallbackSummary
}
