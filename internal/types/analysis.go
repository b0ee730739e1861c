package types

// Severity classifies how serious a detected issue is
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Tone is the overall sentiment tone of a resume
type Tone string

const (
	TonePositive Tone = "Positive"
	ToneNegative Tone = "Negative"
	ToneNeutral  Tone = "Neutral"
)

// Skill categories in their canonical order
const (
	CategoryProgramming = "programming"
	CategoryFrontend    = "frontend"
	CategoryBackend     = "backend"
	CategoryDatabase    = "database"
	CategoryCloud       = "cloud"
	CategoryMLAI        = "ml_ai"
	CategorySoftSkills  = "soft_skills"
	CategoryOther       = "other"
)

// SkillCategories lists every skill category in canonical order
var SkillCategories = []string{
	CategoryProgramming,
	CategoryFrontend,
	CategoryBackend,
	CategoryDatabase,
	CategoryCloud,
	CategoryMLAI,
	CategorySoftSkills,
	CategoryOther,
}

// NotSpecified is reported as the highest degree when none was found
const NotSpecified = "Not specified"

// Contact holds candidate contact information. Empty strings mean "not found".
type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// Skills holds categorized skills and free-form keywords
type Skills struct {
	Categorized map[string][]string `json:"categorized"`
	Keywords    []string            `json:"keywords"`
	TotalSkills int                 `json:"totalSkills"`
}

// NewSkills builds a Skills value whose TotalSkills always equals the
// flattened length of the categorized lists. Empty categories are dropped.
func NewSkills(categorized map[string][]string, keywords []string) Skills {
	clean := make(map[string][]string, len(categorized))
	total := 0
	for category, list := range categorized {
		if len(list) == 0 {
			continue
		}
		clean[category] = list
		total += len(list)
	}
	if keywords == nil {
		keywords = []string{}
	}
	return Skills{
		Categorized: clean,
		Keywords:    keywords,
		TotalSkills: total,
	}
}

// All returns every categorized skill, walking categories in canonical order
// and then any non-canonical categories in the order they were stored.
func (s Skills) All() []string {
	all := make([]string, 0, s.TotalSkills)
	seen := make(map[string]bool, len(SkillCategories))
	for _, category := range SkillCategories {
		seen[category] = true
		all = append(all, s.Categorized[category]...)
	}
	for category, list := range s.Categorized {
		if !seen[category] {
			all = append(all, list...)
		}
	}
	return all
}

// Position is a single role held by the candidate
type Position struct {
	Title    string `json:"title"`
	Company  string `json:"company,omitempty"`
	Duration string `json:"duration,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// Experience summarizes the candidate's work history
type Experience struct {
	TotalYears      float64         `json:"totalYears"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	JobTitles       []string        `json:"jobTitles"`
	Positions       []Position      `json:"positions,omitempty"`
}

// Education summarizes degrees and institutions
type Education struct {
	Degrees        []string `json:"degrees"`
	Universities   []string `json:"universities"`
	HighestDegree  string   `json:"highestDegree"`
	Score          int      `json:"score"`
	Certifications []string `json:"certifications,omitempty"`
}

// HighestDegreeLevel returns the ordinal of the highest recorded degree
func (e Education) HighestDegreeLevel() Degree {
	d, err := ParseDegree(e.HighestDegree)
	if err != nil {
		return DegreeNone
	}
	return d
}

// Sentiment is the lexicon sentiment plus the professionalism heuristic
type Sentiment struct {
	Score                int     `json:"score"`
	Comparative          float64 `json:"comparative"`
	ProfessionalismScore int     `json:"professionalismScore"`
	Tone                 Tone    `json:"tone"`
}

// Assessed reports whether an analysis path filled the sentiment. Both paths
// always set Tone, so a zero Sentiment means none was computed.
func (s Sentiment) Assessed() bool {
	return s.Tone != ""
}

// Issue is a red flag, warning or suggestion found in a resume
type Issue struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ResumeAnalysis is the canonical structured result of analyzing one resume.
// Both the AI path and the rule path produce this shape.
type ResumeAnalysis struct {
	Contact            Contact     `json:"contact"`
	Summary            string      `json:"summary,omitempty"`
	Skills             Skills      `json:"skills"`
	Experience         Experience  `json:"experience"`
	Education          Education   `json:"education"`
	Sentiment          Sentiment   `json:"sentiment"`
	RedFlags           []Issue     `json:"redFlags"`
	Warnings           []Issue     `json:"warnings"`
	Suggestions        []Issue     `json:"suggestions"`
	Strengths          []string    `json:"strengths,omitempty"`
	Weaknesses         []string    `json:"weaknesses,omitempty"`
	Projects           []string    `json:"projects,omitempty"`
	Languages          []string    `json:"languages,omitempty"`
	InterviewQuestions []string    `json:"interviewQuestions,omitempty"`
	WordCount          int         `json:"wordCount"`
	AIPowered          bool        `json:"aiPowered"`
	MatchScore         *MatchScore `json:"matchScore,omitempty"`
	// EngineScore is the weighted scoring engine result for the same job.
	// MatchScore stays the score the analysis path computed itself.
	EngineScore *MatchScore `json:"engineScore,omitempty"`
}

// ClampScore bounds a score to the inclusive range [0, 100]
func ClampScore(score int) int {
	return max(0, min(100, score))
}
