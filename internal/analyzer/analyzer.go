// Package analyzer implements the rule-based resume analysis path. It needs no
// network access and always produces a result, so it doubles as the fallback
// whenever the AI path fails.
package analyzer

import (
	"strconv"
	"strings"

	"resumescreen/internal/extract"
	"resumescreen/internal/types"
)

const (
	maxKeywords     = 30
	maxJobTitles    = 5
	maxUniversities = 3
)

// Analyzer produces a ResumeAnalysis from plain resume text
type Analyzer struct {
	extractor *extract.Extractor
}

// New creates an analyzer. A nil extractor uses one without a person tagger.
func New(extractor *extract.Extractor) *Analyzer {
	if extractor == nil {
		extractor = extract.New(nil)
	}
	return &Analyzer{extractor: extractor}
}

// Analyze runs every heuristic over text. When job is non-nil the result also
// carries the inline match score. The same input always yields the same output.
func (a *Analyzer) Analyze(text string, job *types.JobRequirements) types.ResumeAnalysis {
	lower := strings.ToLower(text)

	analysis := types.ResumeAnalysis{
		Contact:     a.contact(text),
		Skills:      analyzeSkills(text, lower),
		Experience:  analyzeExperience(text),
		Education:   analyzeEducation(text),
		Sentiment:   analyzeSentiment(text, lower),
		RedFlags:    []types.Issue{},
		Warnings:    []types.Issue{},
		Suggestions: []types.Issue{},
		WordCount:   len(strings.Fields(text)),
		AIPowered:   false,
	}
	analysis.Education.Certifications = extract.Certifications(text)
	analysis.Strengths = extract.Achievements(text)
	analysis.Languages = extract.Languages(text)

	applyFlags(&analysis, text)

	if job != nil {
		score := MatchScore(analysis, *job)
		analysis.MatchScore = &score
	}

	var missing []string
	if analysis.MatchScore != nil {
		missing = analysis.MatchScore.MatchDetails.MissingSkills
	}
	analysis.InterviewQuestions = interviewQuestions(analysis, missing)

	return analysis
}

func (a *Analyzer) contact(text string) types.Contact {
	urls := extract.URLs(text)
	c := types.Contact{
		Name:  a.extractor.FirstName(text),
		Email: extract.FirstEmail(text),
		Phone: extract.FirstPhone(text),
	}
	if locations := extract.Locations(text); len(locations) > 0 {
		c.Location = locations[0]
	}
	if len(urls.LinkedIn) > 0 {
		c.LinkedIn = urls.LinkedIn[0]
	}
	if len(urls.GitHub) > 0 {
		c.GitHub = urls.GitHub[0]
	}
	return c
}

// analyzeSkills checks each dictionary token for substring containment in
// the lowercased text.
func analyzeSkills(text, lower string) types.Skills {
	categorized := make(map[string][]string, len(ruleCategories))
	for _, category := range ruleCategories {
		var found []string
		for _, skill := range skillDictionary[category] {
			if strings.Contains(lower, skill) {
				found = append(found, skill)
			}
		}
		categorized[category] = found
	}
	return types.NewSkills(categorized, extract.UniqueKeywords(text, maxKeywords))
}

// analyzeExperience takes the largest "N years" figure below 50 as total years
func analyzeExperience(text string) types.Experience {
	var years float64
	for _, pattern := range yearsPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.ParseFloat(m[1], 64)
			if err != nil || n >= 50 {
				continue
			}
			years = max(years, n)
		}
	}

	titles := jobTitlePattern.FindAllString(text, -1)
	for i, t := range titles {
		titles[i] = strings.Join(strings.Fields(t), " ")
	}

	return types.Experience{
		TotalYears:      years,
		ExperienceLevel: types.LevelForYears(years),
		JobTitles:       dedupeFold(titles, maxJobTitles),
	}
}

func analyzeEducation(text string) types.Education {
	edu := types.Education{
		Degrees:       []string{},
		HighestDegree: types.NotSpecified,
		Score:         types.DegreeNone.EducationScore(),
	}

	for _, dp := range degreePatterns {
		if dp.pattern.MatchString(text) {
			edu.Degrees = append(edu.Degrees, dp.degree.String())
		}
	}
	if len(edu.Degrees) > 0 {
		highest, _ := types.ParseDegree(edu.Degrees[0])
		edu.HighestDegree = highest.String()
		edu.Score = highest.EducationScore()
	}

	var universities []string
	for _, pattern := range universityPatterns {
		universities = append(universities, pattern.FindAllString(text, -1)...)
	}
	edu.Universities = dedupeFold(universities, maxUniversities)

	return edu
}

// dedupeFold removes case-insensitive duplicates, keeping first-seen order, up to limit
func dedupeFold(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := []string{}
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(item))
		if len(out) == limit {
			break
		}
	}
	return out
}
