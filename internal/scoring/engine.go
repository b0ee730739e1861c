// Package scoring computes weighted match scores between a resume analysis
// and job requirements, and owns the recommendation thresholds every other
// component reuses.
package scoring

import (
	"math"
	"strings"

	"resumescreen/internal/types"
)

// Weights are the contributions of each sub-score to the overall score
type Weights struct {
	Skills          float64
	Experience      float64
	Education       float64
	Professionalism float64
	Completeness    float64
}

// DefaultWeights sum to 1.0
var DefaultWeights = Weights{
	Skills:          0.40,
	Experience:      0.30,
	Education:       0.15,
	Professionalism: 0.10,
	Completeness:    0.05,
}

const (
	defaultProfessionalism = 50
	maxExtraSkillBonus     = 10
	noRequiredSkillsScore  = 70
	noSkillsScore          = 30
	noDegreeScore          = 40
	minUnderqualifiedScore = 20
	minOverqualifiedScore  = 60
	overqualifiedPenalty   = 5
)

// Score computes the weighted match of analysis against job. It is pure and deterministic.
func Score(analysis types.ResumeAnalysis, job types.JobRequirements) types.MatchScore {
	candidateSkills := analysis.Skills.All()

	breakdown := types.ScoreBreakdown{
		Skills:          SkillsScore(candidateSkills, job.Skills),
		Experience:      ExperienceScore(analysis.Experience.TotalYears, job.MinExperience, job.MaxExperience),
		Education:       EducationScore(analysis.Education.HighestDegreeLevel(), job.Education),
		Professionalism: ProfessionalismScore(analysis.Sentiment),
		Completeness:    CompletenessScore(analysis),
	}

	w := DefaultWeights
	weighted := w.Skills*breakdown.Skills +
		w.Experience*breakdown.Experience +
		w.Education*breakdown.Education +
		w.Professionalism*breakdown.Professionalism +
		w.Completeness*breakdown.Completeness
	overall := types.ClampScore(int(math.Round(weighted)))

	return types.MatchScore{
		OverallScore:   overall,
		MatchDetails:   matchDetails(analysis, candidateSkills, job),
		Recommendation: RecommendationFor(overall),
		Breakdown:      &breakdown,
	}
}

// SkillsScore weights required skills by position in tiers of 3, 2 and 1
// and adds one point per candidate skill beyond the required count, up to
// ten. The result is capped at 100.
func SkillsScore(candidate, required []string) float64 {
	if len(required) == 0 {
		if len(candidate) > 0 {
			return noRequiredSkillsScore
		}
		return noSkillsScore
	}

	var matched, total float64
	for i, skill := range required {
		weight := Importance(i, len(required))
		total += weight
		if HasSkill(candidate, skill) {
			matched += weight
		}
	}

	score := matched / total * 100
	if extra := len(candidate) - len(required); extra > 0 {
		score += float64(min(extra, maxExtraSkillBonus))
	}
	return math.Min(score, 100)
}

// Importance is the weight of the required skill at index in a list of n.
// Tiers hold up to three skills each, so long lists weigh 3,3,3,2,2,2,1...
// while a three skill list weighs 3,2,1.
func Importance(index, n int) float64 {
	tier := min(3, (n+2)/3)
	if tier < 1 {
		tier = 1
	}
	return math.Max(1, float64(3-index/tier))
}

// ExperienceScore is 100 inside [min, max]. A zero max means no upper bound.
func ExperienceScore(years, minYears, maxYears float64) float64 {
	switch {
	case years < minYears:
		return math.Max(minUnderqualifiedScore, years/minYears*100)
	case maxYears > 0 && years > maxYears:
		return math.Max(minOverqualifiedScore, 100-overqualifiedPenalty*(years-maxYears))
	default:
		return 100
	}
}

// EducationScore compares degrees by ordinal
func EducationScore(candidate, required types.Degree) float64 {
	switch {
	case required == types.DegreeNone:
		return 100
	case candidate == types.DegreeNone:
		return noDegreeScore
	case candidate >= required:
		return 100
	default:
		return float64(candidate) / float64(required) * 100
	}
}

// ProfessionalismScore passes the analysis score through, including a real
// zero. Only a sentiment that was never assessed gets the default.
func ProfessionalismScore(sentiment types.Sentiment) float64 {
	if !sentiment.Assessed() {
		return defaultProfessionalism
	}
	return float64(types.ClampScore(sentiment.ProfessionalismScore))
}

// CompletenessScore awards points for each piece of profile information present
func CompletenessScore(analysis types.ResumeAnalysis) float64 {
	score := 0
	if analysis.Contact.Name != "" {
		score += 15
	}
	if analysis.Contact.Email != "" {
		score += 20
	}
	if analysis.Contact.Phone != "" {
		score += 10
	}
	if analysis.Experience.TotalYears > 0 {
		score += 15
	}
	if analysis.Education.HighestDegreeLevel() > types.DegreeNone || len(analysis.Education.Degrees) > 0 {
		score += 15
	}
	if analysis.Skills.TotalSkills > 5 {
		score += 15
	}
	if analysis.Contact.LinkedIn != "" || analysis.Contact.GitHub != "" {
		score += 10
	}
	return float64(score)
}

func matchDetails(analysis types.ResumeAnalysis, candidateSkills []string, job types.JobRequirements) types.MatchDetails {
	details := types.MatchDetails{
		SkillsMatch:   []string{},
		MissingSkills: []string{},
	}
	for _, skill := range job.Skills {
		if HasSkill(candidateSkills, skill) {
			details.SkillsMatch = append(details.SkillsMatch, skill)
		} else {
			details.MissingSkills = append(details.MissingSkills, skill)
		}
	}

	details.SkillMatchPercentage = 100
	if len(job.Skills) > 0 {
		details.SkillMatchPercentage = int(math.Round(float64(len(details.SkillsMatch)) / float64(len(job.Skills)) * 100))
	}

	years := analysis.Experience.TotalYears
	details.ExperienceMatch = years >= job.MinExperience && (job.MaxExperience <= 0 || years <= job.MaxExperience)
	details.EducationMatch = analysis.Education.HighestDegreeLevel() >= job.Education
	return details
}

// HasSkill reports whether any candidate skill matches required, where two
// skills match if either contains the other, ignoring case. "java" therefore
// matches "javascript".
func HasSkill(candidate []string, required string) bool {
	req := strings.ToLower(strings.TrimSpace(required))
	if req == "" {
		return false
	}
	for _, skill := range candidate {
		s := strings.ToLower(strings.TrimSpace(skill))
		if s == "" {
			continue
		}
		if strings.Contains(s, req) || strings.Contains(req, s) {
			return true
		}
	}
	return false
}
