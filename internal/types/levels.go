package types

import (
	"fmt"
	"strings"
)

// ExperienceLevel is the seniority tier derived from years of experience
type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "Entry Level"
	LevelJunior    ExperienceLevel = "Junior"
	LevelMid       ExperienceLevel = "Mid-Level"
	LevelSenior    ExperienceLevel = "Senior"
	LevelLead      ExperienceLevel = "Lead/Staff"
	LevelPrincipal ExperienceLevel = "Principal/Director"
)

// ExperienceLevels lists every tier from lowest to highest
var ExperienceLevels = []ExperienceLevel{
	LevelEntry,
	LevelJunior,
	LevelMid,
	LevelSenior,
	LevelLead,
	LevelPrincipal,
}

// LevelForYears maps years of experience onto the fixed tier breakpoints.
// Negative input is treated as zero.
func LevelForYears(years float64) ExperienceLevel {
	switch {
	case years <= 0:
		return LevelEntry
	case years <= 2:
		return LevelJunior
	case years <= 5:
		return LevelMid
	case years <= 8:
		return LevelSenior
	case years <= 12:
		return LevelLead
	default:
		return LevelPrincipal
	}
}

// Rank returns the position of the level in ExperienceLevels, or -1 if unknown
func (l ExperienceLevel) Rank() int {
	for i, level := range ExperienceLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// IsLeadership reports whether the level is Senior or above
func (l ExperienceLevel) IsLeadership() bool {
	return l.Rank() >= LevelSenior.Rank()
}

// ParseExperienceLevel matches a free-form level label against the known tiers
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "" {
		return "", false
	}
	for _, level := range ExperienceLevels {
		if strings.ToLower(string(level)) == normalized {
			return level, true
		}
	}
	switch {
	case strings.Contains(normalized, "principal"), strings.Contains(normalized, "director"):
		return LevelPrincipal, true
	case strings.Contains(normalized, "lead"), strings.Contains(normalized, "staff"):
		return LevelLead, true
	case strings.Contains(normalized, "senior"):
		return LevelSenior, true
	case strings.Contains(normalized, "mid"), strings.Contains(normalized, "intermediate"):
		return LevelMid, true
	case strings.Contains(normalized, "junior"):
		return LevelJunior, true
	case strings.Contains(normalized, "entry"), strings.Contains(normalized, "intern"), strings.Contains(normalized, "graduate"):
		return LevelEntry, true
	}
	return "", false
}

// Degree is an ordinal education level. DegreeNone means no degree.
type Degree int

const (
	DegreeNone Degree = iota
	DegreeDiploma
	DegreeAssociate
	DegreeBachelors
	DegreeMasters
	DegreePhD
)

var degreeNames = map[Degree]string{
	DegreeDiploma:   "Diploma",
	DegreeAssociate: "Associate",
	DegreeBachelors: "Bachelors",
	DegreeMasters:   "Masters",
	DegreePhD:       "PhD",
}

var degreeScores = map[Degree]int{
	DegreePhD:       100,
	DegreeMasters:   85,
	DegreeBachelors: 70,
	DegreeAssociate: 55,
	DegreeDiploma:   40,
}

// Degrees lists every real degree from highest to lowest
var Degrees = []Degree{DegreePhD, DegreeMasters, DegreeBachelors, DegreeAssociate, DegreeDiploma}

func (d Degree) String() string {
	if name, ok := degreeNames[d]; ok {
		return name
	}
	return ""
}

// EducationScore is the fixed education score of the degree, 20 when there is none
func (d Degree) EducationScore() int {
	if score, ok := degreeScores[d]; ok {
		return score
	}
	return 20
}

// Valid reports whether d is DegreeNone or a known degree
func (d Degree) Valid() bool {
	return d >= DegreeNone && d <= DegreePhD
}

// ParseDegree parses a degree name. The empty string and "Not specified"
// parse to DegreeNone.
func ParseDegree(s string) (Degree, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("'", "", "’", "", ".", "").Replace(normalized)
	switch normalized {
	case "", "none", strings.ToLower(NotSpecified):
		return DegreeNone, nil
	case "phd", "doctorate", "doctoral", "ph d":
		return DegreePhD, nil
	case "masters", "master", "ms", "msc", "ma", "mba", "meng":
		return DegreeMasters, nil
	case "bachelors", "bachelor", "bs", "bsc", "ba", "beng", "btech":
		return DegreeBachelors, nil
	case "associate", "associates":
		return DegreeAssociate, nil
	case "diploma":
		return DegreeDiploma, nil
	}
	return DegreeNone, fmt.Errorf("unknown degree: %q", s)
}

// MarshalText encodes the degree by name
func (d Degree) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid degree ordinal: %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a degree name
func (d *Degree) UnmarshalText(text []byte) error {
	parsed, err := ParseDegree(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
