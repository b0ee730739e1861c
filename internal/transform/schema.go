package transform

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// aiAnalysis mirrors the JSON the analyze prompt asks for. Every field is
// optional; anything missing or malformed decodes to its zero value.
type aiAnalysis struct {
	Contact            aiContact     `json:"contact"`
	Summary            string        `json:"summary"`
	Skills             aiSkills      `json:"skills"`
	Experience         aiExperience  `json:"experience"`
	Education          aiEducation   `json:"education"`
	Projects           []aiProject   `json:"projects"`
	MatchScore         *aiMatchScore `json:"matchScore"`
	Analysis           aiAssessment  `json:"analysis"`
	InterviewQuestions []string      `json:"interviewQuestions"`
	OverallAssessment  string        `json:"overallAssessment"`
}

type aiContact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

type aiSkills struct {
	Technical  []string `json:"technical"`
	Frameworks []string `json:"frameworks"`
	Databases  []string `json:"databases"`
	Cloud      []string `json:"cloud"`
	Soft       []string `json:"soft"`
	Other      []string `json:"other"`
}

type aiPosition struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Summary      string   `json:"summary"`
	Achievements []string `json:"achievements"`
}

type aiExperience struct {
	TotalYears        float64      `json:"totalYears"`
	Level             string       `json:"level"`
	Positions         []aiPosition `json:"positions"`
	CareerProgression string       `json:"careerProgression"`
}

type aiEducation struct {
	Degrees        []string `json:"degrees"`
	Universities   []string `json:"universities"`
	HighestDegree  string   `json:"highestDegree"`
	Certifications []string `json:"certifications"`
}

type aiProject struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

type aiBreakdown struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
}

type aiMatchScore struct {
	Overall       float64     `json:"overall"`
	Breakdown     aiBreakdown `json:"breakdown"`
	MissingSkills []string    `json:"missingSkills"`
	MatchedSkills []string    `json:"matchedSkills"`
}

type aiAssessment struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	RedFlags   []string `json:"redFlags"`
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// textKeys are tried in order when an object shows up where a string was expected
var textKeys = []string{"name", "title", "question", "degree", "skill", "text", "description"}

// decode fills an aiAnalysis from the payload. mapstructure keeps going past
// fields it cannot convert, so the returned value holds everything that did
// decode even when err is non-nil.
func decode(payload map[string]any) (aiAnalysis, error) {
	var out aiAnalysis
	if payload == nil {
		return out, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(numberFromText, textFromObject),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	err = decoder.Decode(payload)
	return out, err
}

// numberFromText reads figures like "5+ years" as 5
func numberFromText(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	match := numberPattern.FindString(data.(string))
	if match == "" {
		return 0.0, nil
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0.0, nil
	}
	return n, nil
}

// textFromObject flattens {"name": "Go", "level": "expert"} into "Go"
func textFromObject(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Map || to.Kind() != reflect.String {
		return data, nil
	}
	obj, ok := data.(map[string]any)
	if !ok {
		return "", nil
	}
	for _, key := range textKeys {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", nil
}
