package analyzer

import (
	"fmt"
	"strconv"

	"resumescreen/internal/types"
)

const (
	maxQuestions      = 8
	maxSkillQuestions = 3
	maxGapQuestions   = 2
)

func interviewQuestions(analysis types.ResumeAnalysis, missingSkills []string) []string {
	questions := make([]string, 0, maxQuestions)

	skills := analysis.Skills.All()
	for i := 0; i < len(skills) && i < maxSkillQuestions; i++ {
		questions = append(questions,
			fmt.Sprintf("Can you describe a challenging project where you used %s?", skills[i]))
	}

	if years := analysis.Experience.TotalYears; years > 0 {
		questions = append(questions,
			fmt.Sprintf("Looking back on your %s years of experience, which accomplishment are you most proud of and why?",
				strconv.FormatFloat(years, 'f', -1, 64)))
	}

	if analysis.Experience.ExperienceLevel.IsLeadership() {
		questions = append(questions,
			"Tell us about a time you led a team through a difficult technical decision. How did you build consensus?")
	}

	for i := 0; i < len(missingSkills) && i < maxGapQuestions; i++ {
		questions = append(questions,
			fmt.Sprintf("This role relies on %s. How would you get up to speed with it?", missingSkills[i]))
	}

	questions = append(questions,
		"Describe a situation where you disagreed with a colleague. How did you resolve it, and what did you learn?")

	return questions
}
