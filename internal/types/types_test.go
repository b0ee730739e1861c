package types

import (
	"encoding/json"
	"testing"

	"resumescreen/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForYears(t *testing.T) {
	tests := []struct {
		years    float64
		expected ExperienceLevel
	}{
		{-3, LevelEntry},
		{0, LevelEntry},
		{0.5, LevelJunior},
		{2, LevelJunior},
		{2.1, LevelMid},
		{5, LevelMid},
		{6, LevelSenior},
		{8, LevelSenior},
		{9, LevelLead},
		{12, LevelLead},
		{12.5, LevelPrincipal},
		{40, LevelPrincipal},
	}

	for _, tt := range tests {
		if got := LevelForYears(tt.years); got != tt.expected {
			t.Errorf("LevelForYears(%v): expected %s, got %s", tt.years, tt.expected, got)
		}
	}
}

func TestLevelForYearsIsMonotonic(t *testing.T) {
	prev := LevelForYears(0).Rank()
	for y := 0.0; y <= 60; y += 0.25 {
		rank := LevelForYears(y).Rank()
		if rank < prev {
			t.Fatalf("level rank decreased at %v years: %d -> %d", y, prev, rank)
		}
		prev = rank
	}
}

func TestParseExperienceLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected ExperienceLevel
		ok       bool
	}{
		{"Senior", LevelSenior, true},
		{"mid-level", LevelMid, true},
		{"Staff Engineer", LevelLead, true},
		{"Director", LevelPrincipal, true},
		{"intern", LevelEntry, true},
		{"", "", false},
		{"astronaut", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseExperienceLevel(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}
}

func TestDegreeOrderingAndParsing(t *testing.T) {
	assert.True(t, DegreeDiploma < DegreeAssociate)
	assert.True(t, DegreeAssociate < DegreeBachelors)
	assert.True(t, DegreeBachelors < DegreeMasters)
	assert.True(t, DegreeMasters < DegreePhD)
	assert.Equal(t, 5, int(DegreePhD))

	tests := []struct {
		input    string
		expected Degree
	}{
		{"PhD", DegreePhD},
		{"Ph.D.", DegreePhD},
		{"Master's", DegreeMasters},
		{"bachelor", DegreeBachelors},
		{"Associate", DegreeAssociate},
		{"diploma", DegreeDiploma},
		{"Not specified", DegreeNone},
		{"", DegreeNone},
	}
	for _, tt := range tests {
		got, err := ParseDegree(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.expected, got, tt.input)
	}

	_, err := ParseDegree("wizardry")
	assert.Error(t, err)
}

func TestDegreeJSON(t *testing.T) {
	req := JobRequirements{Skills: []string{"Go"}, MinExperience: 2, Education: DegreeMasters}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"skills":["Go"],"minExperience":2,"education":"Masters"}`, string(data))

	var decoded JobRequirements
	require.NoError(t, json.Unmarshal([]byte(`{"skills":["Go"],"education":"PhD"}`), &decoded))
	assert.Equal(t, DegreePhD, decoded.Education)

	err = json.Unmarshal([]byte(`{"education":"Sorcery"}`), &decoded)
	assert.Error(t, err)
}

func TestNewSkillsTotal(t *testing.T) {
	skills := NewSkills(map[string][]string{
		CategoryProgramming: {"go", "python"},
		CategoryCloud:       {"aws"},
		CategoryFrontend:    {},
	}, nil)

	assert.Equal(t, 3, skills.TotalSkills)
	assert.NotContains(t, skills.Categorized, CategoryFrontend)
	assert.Equal(t, []string{"go", "python", "aws"}, skills.All())
	assert.NotNil(t, skills.Keywords)
}

func TestJobRequirementsValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     JobRequirements
		wantErr bool
	}{
		{"valid", JobRequirements{Skills: []string{"Go"}, MinExperience: 2, MaxExperience: 5, Education: DegreeBachelors}, false},
		{"no upper bound", JobRequirements{MinExperience: 3}, false},
		{"negative minimum", JobRequirements{MinExperience: -1}, true},
		{"max below min", JobRequirements{MinExperience: 5, MaxExperience: 2}, true},
		{"empty skill", JobRequirements{Skills: []string{"Go", ""}}, true},
		{"bad degree", JobRequirements{Education: Degree(9)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err), "expected a validation error, got %v", err)
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-10))
	assert.Equal(t, 100, ClampScore(140))
	assert.Equal(t, 55, ClampScore(55))
}
