package types

import (
	"fmt"
	"strings"
	"sync"

	"resumescreen/internal/errors"

	"github.com/go-playground/validator/v10"
)

// JobRequirements are the structured requirements a resume is matched against.
// Skills are ordered by importance, most important first. A MaxExperience of
// zero means there is no upper bound.
type JobRequirements struct {
	Skills        []string `json:"skills" validate:"dive,required"`
	MinExperience float64  `json:"minExperience" validate:"gte=0"`
	MaxExperience float64  `json:"maxExperience,omitempty" validate:"omitempty,gtefield=MinExperience"`
	Education     Degree   `json:"education,omitempty" validate:"gte=0,lte=5"`
}

// Job is a posted position with its requirements
type Job struct {
	ID           string          `json:"id,omitempty"`
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description,omitempty"`
	Requirements JobRequirements `json:"requirements"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared struct validator
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the requirements for malformed values
func (r *JobRequirements) Validate() error {
	return validateStruct(r)
}

// Validate checks the job and its requirements
func (j *Job) Validate() error {
	return validateStruct(j)
}

func validateStruct(v any) error {
	if err := Validator().Struct(v); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			fields = append(fields, err.Error())
		}
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"invalid job requirements: "+strings.Join(fields, "; "), err)
	}
	return nil
}

// Recommendation is the hiring recommendation tier for a score
type Recommendation struct {
	Status string `json:"status"`
	Color  string `json:"color"`
	Action string `json:"action"`
}

// MatchDetails explains which requirements were and were not met
type MatchDetails struct {
	SkillsMatch          []string `json:"skillsMatch"`
	MissingSkills        []string `json:"missingSkills"`
	ExperienceMatch      bool     `json:"experienceMatch"`
	EducationMatch       bool     `json:"educationMatch"`
	SkillMatchPercentage int      `json:"skillMatchPercentage"`
}

// ScoreBreakdown holds the weighted sub-scores, each in [0, 100]
type ScoreBreakdown struct {
	Skills          float64 `json:"skills"`
	Experience      float64 `json:"experience"`
	Education       float64 `json:"education"`
	Professionalism float64 `json:"professionalism"`
	Completeness    float64 `json:"completeness"`
}

// MatchScore is a resume's computed fit against one job's requirements
type MatchScore struct {
	OverallScore   int             `json:"overallScore"`
	MatchDetails   MatchDetails    `json:"matchDetails"`
	Recommendation Recommendation  `json:"recommendation"`
	Breakdown      *ScoreBreakdown `json:"breakdown,omitempty"`
}

// RankedCandidate is one entry in a ranking of candidates for a job
type RankedCandidate struct {
	Rank        int        `json:"rank"`
	CandidateID string     `json:"candidateId"`
	Name        string     `json:"name,omitempty"`
	FileName    string     `json:"fileName,omitempty"`
	AIPowered   bool       `json:"aiPowered"`
	Score       MatchScore `json:"score"`
}
