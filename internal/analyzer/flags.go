package analyzer

import (
	"strings"

	"resumescreen/internal/types"
)

const (
	minWords = 100
	maxWords = 1500
)

// Issue type identifiers reported by the rule path
const (
	IssueEmploymentGap        = "employment_gap"
	IssueMissingEmail         = "missing_email"
	IssueQuantifyAchievements = "quantify_achievements"
	IssueTooShort             = "too_short"
	IssueTooLong              = "too_long"
)

func applyFlags(analysis *types.ResumeAnalysis, text string) {
	if employmentGapPattern.MatchString(text) {
		analysis.Warnings = append(analysis.Warnings, types.Issue{
			Type:     IssueEmploymentGap,
			Message:  "Resume mentions a gap in employment; be ready to discuss it",
			Severity: types.SeverityMedium,
		})
	}

	if !strings.Contains(text, "@") {
		analysis.RedFlags = append(analysis.RedFlags, types.Issue{
			Type:     IssueMissingEmail,
			Message:  "No email address found",
			Severity: types.SeverityHigh,
		})
	}

	if len(analysis.Strengths) == 0 && !metricPattern.MatchString(text) {
		analysis.Suggestions = append(analysis.Suggestions, types.Issue{
			Type:     IssueQuantifyAchievements,
			Message:  "Add measurable results such as percentages, amounts or counts",
			Severity: types.SeverityLow,
		})
	}

	switch words := analysis.WordCount; {
	case words < minWords:
		analysis.RedFlags = append(analysis.RedFlags, types.Issue{
			Type:     IssueTooShort,
			Message:  "Resume is too short to assess properly",
			Severity: types.SeverityHigh,
		})
	case words > maxWords:
		analysis.Warnings = append(analysis.Warnings, types.Issue{
			Type:     IssueTooLong,
			Message:  "Resume is longer than recommended; consider trimming it",
			Severity: types.SeverityLow,
		})
	}
}
