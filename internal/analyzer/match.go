package analyzer

import (
	"math"

	"resumescreen/internal/scoring"
	"resumescreen/internal/types"
)

const (
	skillPoints      = 50.0
	experiencePoints = 30.0
	educationPoints  = 20.0
)

// MatchScore computes the rule path's inline match score: skills out of 50,
// experience out of 30 and education out of 20. It uses a different weight
// split from the scoring engine and the two are kept separate.
func MatchScore(analysis types.ResumeAnalysis, job types.JobRequirements) types.MatchScore {
	candidateSkills := analysis.Skills.All()

	details := types.MatchDetails{
		SkillsMatch:   []string{},
		MissingSkills: []string{},
	}
	for _, required := range job.Skills {
		if scoring.HasSkill(candidateSkills, required) {
			details.SkillsMatch = append(details.SkillsMatch, required)
		} else {
			details.MissingSkills = append(details.MissingSkills, required)
		}
	}

	skillRatio := 1.0
	if len(job.Skills) > 0 {
		skillRatio = float64(len(details.SkillsMatch)) / float64(len(job.Skills))
	}
	details.SkillMatchPercentage = int(math.Round(skillRatio * 100))

	years := analysis.Experience.TotalYears
	experienceRatio := 1.0
	if job.MinExperience > 0 && years < job.MinExperience {
		experienceRatio = years / job.MinExperience
	}
	details.ExperienceMatch = years >= job.MinExperience

	candidate := analysis.Education.HighestDegreeLevel()
	educationRatio := 1.0
	if job.Education > types.DegreeNone && candidate < job.Education {
		educationRatio = float64(candidate) / float64(job.Education)
	}
	details.EducationMatch = candidate >= job.Education

	overall := int(math.Round(skillRatio*skillPoints + experienceRatio*experiencePoints + educationRatio*educationPoints))
	overall = types.ClampScore(overall)

	return types.MatchScore{
		OverallScore:   overall,
		MatchDetails:   details,
		Recommendation: scoring.RecommendationFor(overall),
	}
}
