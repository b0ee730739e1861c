// Package transform turns the loosely shaped JSON returned by the AI analyze
// operation into the canonical ResumeAnalysis produced by the rule path.
package transform

import (
	"math"
	"strings"

	"resumescreen/internal/scoring"
	"resumescreen/internal/types"
)

const (
	maxKeywords  = 30
	maxJobTitles = 5

	baseProfessionalism = 50
	positionsBonus      = 10
	degreesBonus        = 10
	achievementsBonus   = 10
	projectsBonus       = 5
	linkedInBonus       = 5
	gitHubBonus         = 5
	redFlagPenalty      = 5
	aiRedFlagType       = "ai_red_flag"
	skillsGapType       = "skills_gap"
	missingLinkedInType = "missing_linkedin"
	missingProjectsType = "no_projects"
)

// Transform maps an AI analyze payload onto a ResumeAnalysis. It never fails:
// missing or malformed fields fall back to empty values. When job is non-nil
// the result carries a MatchScore whose recommendation is always recomputed.
func Transform(payload map[string]any, job *types.JobRequirements) types.ResumeAnalysis {
	// Partial decodes are kept; see decode.
	raw, _ := decode(payload)

	categorized := categorize(raw.Skills)
	skills := types.NewSkills(categorized, keywordsFrom(categorized))

	analysis := types.ResumeAnalysis{
		Contact:            contactFrom(raw.Contact),
		Summary:            firstNonEmpty(raw.Summary, raw.OverallAssessment),
		Skills:             skills,
		Experience:         experienceFrom(raw.Experience),
		Education:          educationFrom(raw.Education),
		RedFlags:           redFlagsFrom(raw.Analysis.RedFlags),
		Warnings:           []types.Issue{},
		Strengths:          nonEmpty(raw.Analysis.Strengths),
		Weaknesses:         nonEmpty(raw.Analysis.Weaknesses),
		Projects:           projectNames(raw.Projects),
		InterviewQuestions: nonEmpty(raw.InterviewQuestions),
		AIPowered:          true,
	}

	analysis.Sentiment = types.Sentiment{
		ProfessionalismScore: professionalism(raw, analysis.Contact, len(analysis.RedFlags)),
		Tone:                 types.ToneNeutral,
	}

	var missing []string
	if raw.MatchScore != nil {
		missing = nonEmpty(raw.MatchScore.MissingSkills)
	}
	analysis.Suggestions = suggestions(missing, analysis.Contact, len(analysis.Projects))

	if job != nil {
		score := matchScore(raw.MatchScore, analysis, *job)
		analysis.MatchScore = &score
	}

	return analysis
}

func contactFrom(c aiContact) types.Contact {
	return types.Contact{
		Name:     strings.TrimSpace(c.Name),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.TrimSpace(c.Phone),
		Location: strings.TrimSpace(c.Location),
		LinkedIn: normalizeURL(c.LinkedIn),
		GitHub:   normalizeURL(c.GitHub),
	}
}

func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return "https://" + u
}

func experienceFrom(e aiExperience) types.Experience {
	years := max(0, e.TotalYears)

	level, ok := types.ParseExperienceLevel(e.Level)
	if !ok {
		level = types.LevelForYears(years)
	}

	positions := make([]types.Position, 0, len(e.Positions))
	titles := make([]string, 0, len(e.Positions))
	for _, p := range e.Positions {
		title := strings.TrimSpace(p.Title)
		if title == "" && p.Company == "" {
			continue
		}
		positions = append(positions, types.Position{
			Title:    title,
			Company:  strings.TrimSpace(p.Company),
			Duration: strings.TrimSpace(p.Duration),
			Summary:  strings.TrimSpace(p.Summary),
		})
		titles = append(titles, title)
	}

	return types.Experience{
		TotalYears:      years,
		ExperienceLevel: level,
		JobTitles:       dedupe(titles, maxJobTitles),
		Positions:       positions,
	}
}

func educationFrom(e aiEducation) types.Education {
	degrees := nonEmpty(e.Degrees)

	highest := degreeFromText(e.HighestDegree)
	for _, d := range degrees {
		highest = max(highest, degreeFromText(d))
	}

	name := types.NotSpecified
	if highest > types.DegreeNone {
		name = highest.String()
	}

	return types.Education{
		Degrees:        degrees,
		Universities:   nonEmpty(e.Universities),
		HighestDegree:  name,
		Score:          highest.EducationScore(),
		Certifications: nonEmpty(e.Certifications),
	}
}

// degreeFromText recognizes degree names inside longer phrases such as
// "Bachelor of Science in Computer Science"
func degreeFromText(s string) types.Degree {
	if d, err := types.ParseDegree(s); err == nil {
		return d
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "phd"), strings.Contains(lower, "ph.d"), strings.Contains(lower, "doctor"):
		return types.DegreePhD
	case strings.Contains(lower, "master"), strings.Contains(lower, "mba"), strings.Contains(lower, "m.s."), strings.Contains(lower, "msc"):
		return types.DegreeMasters
	case strings.Contains(lower, "bachelor"), strings.Contains(lower, "b.s."), strings.Contains(lower, "bsc"), strings.Contains(lower, "b.tech"), strings.Contains(lower, "b.a."):
		return types.DegreeBachelors
	case strings.Contains(lower, "associate"):
		return types.DegreeAssociate
	case strings.Contains(lower, "diploma"):
		return types.DegreeDiploma
	}
	return types.DegreeNone
}

func redFlagsFrom(flags []string) []types.Issue {
	issues := []types.Issue{}
	for _, flag := range nonEmpty(flags) {
		issues = append(issues, types.Issue{Type: aiRedFlagType, Message: flag, Severity: types.SeverityMedium})
	}
	return issues
}

func professionalism(raw aiAnalysis, contact types.Contact, redFlags int) int {
	score := baseProfessionalism
	if len(raw.Experience.Positions) > 0 {
		score += positionsBonus
	}
	if len(nonEmpty(raw.Education.Degrees)) > 0 {
		score += degreesBonus
	}
	for _, p := range raw.Experience.Positions {
		if len(nonEmpty(p.Achievements)) > 0 {
			score += achievementsBonus
			break
		}
	}
	if len(raw.Projects) > 0 {
		score += projectsBonus
	}
	if contact.LinkedIn != "" {
		score += linkedInBonus
	}
	if contact.GitHub != "" {
		score += gitHubBonus
	}
	score -= redFlagPenalty * redFlags
	return types.ClampScore(score)
}

func suggestions(missingSkills []string, contact types.Contact, projects int) []types.Issue {
	out := []types.Issue{}
	if len(missingSkills) > 0 {
		out = append(out, types.Issue{
			Type:     skillsGapType,
			Message:  "Missing required skills: " + strings.Join(missingSkills, ", "),
			Severity: types.SeverityMedium,
		})
	}
	if contact.LinkedIn == "" {
		out = append(out, types.Issue{
			Type:     missingLinkedInType,
			Message:  "Add a LinkedIn profile URL",
			Severity: types.SeverityLow,
		})
	}
	if projects == 0 {
		out = append(out, types.Issue{
			Type:     missingProjectsType,
			Message:  "Add personal or professional projects to showcase practical skills",
			Severity: types.SeverityLow,
		})
	}
	return out
}

// matchScore maps the AI's matchScore into the canonical shape. The AI's
// overall figure is kept, but the recommendation tier is always derived from
// it here. Without an AI score the scoring engine fills in.
func matchScore(raw *aiMatchScore, analysis types.ResumeAnalysis, job types.JobRequirements) types.MatchScore {
	if raw == nil {
		return scoring.Score(analysis, job)
	}

	candidateSkills := analysis.Skills.All()
	details := types.MatchDetails{
		SkillsMatch:   nonEmpty(raw.MatchedSkills),
		MissingSkills: nonEmpty(raw.MissingSkills),
	}
	if len(details.SkillsMatch) == 0 && len(details.MissingSkills) == 0 {
		for _, required := range job.Skills {
			if scoring.HasSkill(candidateSkills, required) {
				details.SkillsMatch = append(details.SkillsMatch, required)
			} else {
				details.MissingSkills = append(details.MissingSkills, required)
			}
		}
	}

	matched := len(details.SkillsMatch)
	if total := matched + len(details.MissingSkills); total > 0 {
		details.SkillMatchPercentage = int(math.Round(float64(matched) / float64(total) * 100))
	} else {
		details.SkillMatchPercentage = 100
	}
	details.ExperienceMatch = analysis.Experience.TotalYears >= job.MinExperience
	details.EducationMatch = analysis.Education.HighestDegreeLevel() >= job.Education

	overall := types.ClampScore(int(math.Round(raw.Overall)))
	return types.MatchScore{
		OverallScore:   overall,
		MatchDetails:   details,
		Recommendation: scoring.RecommendationFor(overall),
		Breakdown: &types.ScoreBreakdown{
			Skills:     clamp(raw.Breakdown.Skills),
			Experience: clamp(raw.Breakdown.Experience),
			Education:  clamp(raw.Breakdown.Education),
		},
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func keywordsFrom(categorized map[string][]string) []string {
	var all []string
	for _, category := range types.SkillCategories {
		for _, skill := range categorized[category] {
			all = append(all, strings.ToLower(skill))
		}
	}
	return dedupe(all, maxKeywords)
}

func projectNames(projects []aiProject) []string {
	names := []string{}
	for _, p := range projects {
		if name := firstNonEmpty(p.Name, p.Description); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// dedupe removes case-insensitive duplicates, keeping first-seen order, up to limit
func dedupe(items []string, limit int) []string {
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
