package transform

import (
	"encoding/json"
	"testing"

	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadFrom(t *testing.T, raw string) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

const fullReply = `{
  "contact": {"name": "Jane Doe", "email": "jane@example.com", "linkedin": "linkedin.com/in/janedoe", "github": ""},
  "summary": "Backend engineer",
  "skills": {
    "technical": ["Go", "Python", "PyTorch"],
    "frameworks": ["React", "Gin", "Next.js"],
    "databases": ["PostgreSQL"],
    "cloud": ["AWS", "Docker"],
    "soft": ["Mentoring"],
    "other": ["go"]
  },
  "experience": {
    "totalYears": "6+ years",
    "level": "",
    "positions": [
      {"title": "Senior Engineer", "company": "Acme", "achievements": ["Cut latency by 40%"]},
      {"title": "Engineer", "company": "Initech"}
    ]
  },
  "education": {"degrees": ["Master of Science in Computer Science", "B.Sc. Mathematics"], "highestDegree": ""},
  "projects": [{"name": "gocache", "technologies": ["Go"]}],
  "matchScore": {"overall": 84.6, "breakdown": {"skills": 90, "experience": 120}, "missingSkills": ["Kafka"], "matchedSkills": ["Go"]},
  "analysis": {"strengths": ["Strong Go"], "weaknesses": [], "redFlags": ["Short tenure at Initech"]},
  "interviewQuestions": [{"question": "How did you cut latency?"}, "Why Go?"]
}`

func TestTransformFullReply(t *testing.T) {
	job := &types.JobRequirements{Skills: []string{"Go", "Kafka"}, MinExperience: 5, Education: types.DegreeBachelors}
	analysis := Transform(payloadFrom(t, fullReply), job)

	assert.True(t, analysis.AIPowered)
	assert.Equal(t, "Jane Doe", analysis.Contact.Name)
	assert.Equal(t, "https://linkedin.com/in/janedoe", analysis.Contact.LinkedIn)

	t.Run("skills", func(t *testing.T) {
		c := analysis.Skills.Categorized
		assert.Equal(t, []string{"Go", "Python"}, c[types.CategoryProgramming])
		assert.Equal(t, []string{"PyTorch"}, c[types.CategoryMLAI])
		assert.Equal(t, []string{"React", "Next.js"}, c[types.CategoryFrontend])
		assert.Equal(t, []string{"Gin"}, c[types.CategoryBackend])
		assert.Equal(t, []string{"Mentoring"}, c[types.CategorySoftSkills])
		assert.NotContains(t, c, types.CategoryOther, "Duplicate skills must be placed once")
		assert.Equal(t, len(analysis.Skills.All()), analysis.Skills.TotalSkills)
	})

	t.Run("experience", func(t *testing.T) {
		assert.Equal(t, 6.0, analysis.Experience.TotalYears)
		assert.Equal(t, types.LevelSenior, analysis.Experience.ExperienceLevel)
		assert.Equal(t, []string{"Senior Engineer", "Engineer"}, analysis.Experience.JobTitles)
	})

	t.Run("education", func(t *testing.T) {
		assert.Equal(t, "Masters", analysis.Education.HighestDegree)
		assert.Equal(t, 85, analysis.Education.Score)
	})

	t.Run("professionalism", func(t *testing.T) {
		// 50 + positions + degrees + achievements + projects + linkedin - one red flag
		assert.Equal(t, 50+10+10+10+5+5-5, analysis.Sentiment.ProfessionalismScore)
		require.Len(t, analysis.RedFlags, 1)
		assert.Equal(t, types.SeverityMedium, analysis.RedFlags[0].Severity)
	})

	t.Run("suggestions", func(t *testing.T) {
		require.Len(t, analysis.Suggestions, 1)
		assert.Equal(t, "skills_gap", analysis.Suggestions[0].Type)
		assert.Equal(t, types.SeverityMedium, analysis.Suggestions[0].Severity)
	})

	t.Run("match score", func(t *testing.T) {
		require.NotNil(t, analysis.MatchScore)
		assert.Equal(t, 85, analysis.MatchScore.OverallScore)
		assert.Equal(t, "Highly Recommended", analysis.MatchScore.Recommendation.Status)
		assert.Equal(t, 50, analysis.MatchScore.MatchDetails.SkillMatchPercentage)
		assert.True(t, analysis.MatchScore.MatchDetails.ExperienceMatch)
		assert.True(t, analysis.MatchScore.MatchDetails.EducationMatch)
		assert.Equal(t, 100.0, analysis.MatchScore.Breakdown.Experience)
	})

	assert.Equal(t, []string{"How did you cut latency?", "Why Go?"}, analysis.InterviewQuestions)
}

func TestTransformEmptyPayload(t *testing.T) {
	for name, payload := range map[string]map[string]any{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			analysis := Transform(payload, nil)

			assert.True(t, analysis.AIPowered)
			assert.Equal(t, 0, analysis.Skills.TotalSkills)
			assert.Equal(t, types.LevelEntry, analysis.Experience.ExperienceLevel)
			assert.Equal(t, types.NotSpecified, analysis.Education.HighestDegree)
			assert.Equal(t, 20, analysis.Education.Score)
			assert.Equal(t, 50, analysis.Sentiment.ProfessionalismScore)
			assert.Nil(t, analysis.MatchScore)
			assert.NotNil(t, analysis.RedFlags)

			kinds := make([]string, 0, len(analysis.Suggestions))
			for _, s := range analysis.Suggestions {
				kinds = append(kinds, s.Type)
			}
			assert.Equal(t, []string{"missing_linkedin", "no_projects"}, kinds)
		})
	}
}

func TestTransformMismatchedTypes(t *testing.T) {
	payload := payloadFrom(t, `{
		"contact": {"name": "Sam"},
		"skills": "Go, Rust",
		"experience": {"totalYears": "n/a", "level": "Lead"},
		"education": {"degrees": "PhD in Physics"}
	}`)

	analysis := Transform(payload, nil)

	assert.Equal(t, "Sam", analysis.Contact.Name, "Fields after a bad field must still decode")
	assert.Equal(t, 0, analysis.Skills.TotalSkills)
	assert.Equal(t, 0.0, analysis.Experience.TotalYears)
	assert.Equal(t, types.LevelLead, analysis.Experience.ExperienceLevel)
	assert.Equal(t, "PhD", analysis.Education.HighestDegree)
}

func TestTransformRecomputesRecommendation(t *testing.T) {
	tests := []struct {
		overall  float64
		expected string
	}{
		{90, "Highly Recommended"},
		{84, "Recommended"},
		{50, "Potential"},
		{12, "Not Recommended"},
		{140, "Highly Recommended"},
	}

	for _, tt := range tests {
		payload := map[string]any{
			"matchScore": map[string]any{"overall": tt.overall, "recommendation": "Strong Hire"},
		}
		analysis := Transform(payload, &types.JobRequirements{})
		require.NotNil(t, analysis.MatchScore)
		if got := analysis.MatchScore.Recommendation.Status; got != tt.expected {
			t.Errorf("Expected %q for overall %v, got %q", tt.expected, tt.overall, got)
		}
		assert.LessOrEqual(t, analysis.MatchScore.OverallScore, 100)
	}
}

func TestTransformWithoutAIMatchScore(t *testing.T) {
	payload := payloadFrom(t, `{"skills": {"technical": ["Python"]}, "experience": {"totalYears": 4}}`)
	job := &types.JobRequirements{Skills: []string{"Python", "AWS", "Docker"}, MinExperience: 2}

	analysis := Transform(payload, job)

	require.NotNil(t, analysis.MatchScore)
	require.NotNil(t, analysis.MatchScore.Breakdown, "Expected the scoring engine breakdown")
	assert.InDelta(t, 50, analysis.MatchScore.Breakdown.Skills, 0.001)
	assert.Equal(t, []string{"AWS", "Docker"}, analysis.MatchScore.MatchDetails.MissingSkills)
}

func TestDegreeFromText(t *testing.T) {
	tests := map[string]types.Degree{
		"Bachelor of Science in Computer Science": types.DegreeBachelors,
		"MBA":                     types.DegreeMasters,
		"Ph.D. in Chemistry":      types.DegreePhD,
		"Associate of Arts":       types.DegreeAssociate,
		"High School Diploma":     types.DegreeDiploma,
		"Coursework in economics": types.DegreeNone,
	}
	for input, expected := range tests {
		if got := degreeFromText(input); got != expected {
			t.Errorf("Expected %v for %q, got %v", expected, input, got)
		}
	}
}
