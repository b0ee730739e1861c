package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumescreen/internal/extract"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScore() types.MatchScore {
	return types.MatchScore{
		OverallScore: 82,
		MatchDetails: types.MatchDetails{
			SkillsMatch:          []string{"go", "postgres"},
			MissingSkills:        []string{"kafka"},
			ExperienceMatch:      true,
			SkillMatchPercentage: 67,
		},
		Recommendation: types.Recommendation{Status: "Recommended", Action: "Schedule interview"},
	}
}

func TestFormatDispatch(t *testing.T) {
	registry := NewFormatterRegistry()
	score := sampleScore()

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
	}{
		{"score text", score, FormatText, []string{"=== MATCH SCORE ===", "Overall: 82/100", "- kafka"}},
		{"score pointer markdown", &score, FormatMarkdown, []string{"# Match Score", "**Overall:** 82/100", "**Education match:** No"}},
		{"ranking markdown", []types.RankedCandidate{{Rank: 1, Name: "Ann", Score: score}}, FormatMarkdown,
			[]string{"| Rank | Candidate |", "| #1 | Ann | 82 | Recommended | Rule-based |"}},
		{"ats text", types.ATSOutput{Score: 70, Keywords: types.ATSKeywords{Missing: []string{"terraform"}}}, FormatText,
			[]string{"Score: 70/100", "--- Keywords Present ---\n- None", "- terraform"}},
		{"questions", types.InterviewQuestionsOutput{JobTitle: "SRE", Questions: []types.InterviewQuestion{{Question: "Why Go?", Category: "technical", Purpose: "depth"}}},
			FormatText, []string{"Position: SRE", "1. [technical] Why Go?", "Purpose: depth"}},
		{"entities", extract.Entities{Names: []string{"Jane Doe"}, Languages: []string{"Spanish"}, Keywords: []extract.KeywordCount{{Word: "kubernetes", Count: 3}}},
			FormatText, []string{"=== EXTRACTED ENTITIES ===", "--- Names ---\n- Jane Doe", "--- Money ---\n- None", "- kubernetes (3)"}},
		{"comparison", types.ComparisonOutput{Rankings: []types.CandidateComparison{{CandidateID: "a", Rank: 1, Score: 90}}, Recommendation: "Hire a"},
			FormatMarkdown, []string{"## #1 a (90/100)", "Hire a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatAnalysis(t *testing.T) {
	score := sampleScore()
	analysis := types.ResumeAnalysis{
		Contact:    types.Contact{Name: "Jane Doe", Email: "jane@example.com"},
		Skills:     types.NewSkills(map[string][]string{types.CategoryProgramming: {"go", "python"}}, nil),
		Experience: types.Experience{TotalYears: 6, ExperienceLevel: types.LevelSenior},
		Education:  types.Education{HighestDegree: "Masters", Score: 85},
		RedFlags:   []types.Issue{{Type: "employment_gap", Message: "Gap of 2 years", Severity: types.SeverityHigh}},
		AIPowered:  true,
		MatchScore: &score,
	}

	out, err := NewFormatterRegistry().Format(analysis, FormatText)
	require.NoError(t, err)
	assert.Contains(t, out, "Candidate: Jane Doe")
	assert.Contains(t, out, "Phone: Not found")
	assert.Contains(t, out, "Analysis: AI")
	assert.Contains(t, out, "programming: go, python")
	assert.Contains(t, out, "Years: 6.0")
	assert.Contains(t, out, "- [high] Gap of 2 years")
	assert.Contains(t, out, "--- Warnings ---\n- None")
	assert.Contains(t, out, "=== MATCH SCORE ===")
	assert.NotContains(t, out, "WEIGHTED SCORE")
	assert.True(t, strings.HasSuffix(out, "\n") && !strings.HasSuffix(out, "\n\n"))
}

func TestFormatAnalysisWithWeightedScore(t *testing.T) {
	inline := sampleScore()
	weighted := sampleScore()
	weighted.OverallScore = 74
	weighted.Breakdown = &types.ScoreBreakdown{Skills: 67, Experience: 100, Education: 100, Professionalism: 50, Completeness: 40}

	out, err := NewFormatterRegistry().Format(types.ResumeAnalysis{MatchScore: &inline, EngineScore: &weighted}, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, out, "# Match Score")
	assert.Contains(t, out, "# Weighted Score")
	assert.Contains(t, out, "**Overall:** 74/100")
	assert.Contains(t, out, "**Professionalism:** 50")
	assert.Less(t, strings.Index(out, "# Match Score"), strings.Index(out, "# Weighted Score"))
}

func TestFormatBatch(t *testing.T) {
	score := sampleScore()
	result := &types.BatchResult{
		BatchID: "b-1", Total: 2, Succeeded: 1, Failed: 1,
		Items: []types.BatchItemResult{
			{FileName: "ann.pdf", Status: types.StatusCompleted, MatchScore: &score},
			{FileName: "bad.docx", Status: types.StatusFailed, Error: "Failed to parse resume file"},
		},
		Ranking: []types.RankedCandidate{{Rank: 1, FileName: "ann.pdf", Score: score}},
	}

	out, err := NewFormatterRegistry().Format(result, FormatText)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed: 1 of 2 (1 failed)")
	assert.Contains(t, out, "- ann.pdf: completed, score 82")
	assert.Contains(t, out, "- bad.docx: failed (Failed to parse resume file)")
	assert.Contains(t, out, "#1  |  ann.pdf  |  82")
}

func TestJSONFallback(t *testing.T) {
	registry := NewFormatterRegistry()

	out, err := registry.Format(map[string]int{"a": 1}, FormatJSON)
	require.NoError(t, err)
	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 1, decoded["a"])

	_, err = registry.Format(map[string]int{"a": 1}, FormatText)
	assert.Error(t, err, "Expected no text formatter for arbitrary data")

	_, err = registry.Format(sampleScore(), "yaml")
	assert.Error(t, err)

	assert.Equal(t, []string{FormatJSON, FormatMarkdown, FormatText}, registry.GetSupportedFormats())
}

func TestReportFormatterRejectsWrongType(t *testing.T) {
	f := &ReportFormatter{dataType: TypeATS, render: renderATS}
	_, err := f.Format("not ats")
	assert.Error(t, err)
	assert.Equal(t, TypeATS, f.SupportedType())
}
