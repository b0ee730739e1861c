package scoring

import (
	"sort"

	"resumescreen/internal/types"
)

// Recommendation tiers, from best to worst
var (
	HighlyRecommended = types.Recommendation{Status: "Highly Recommended", Color: "green", Action: "Schedule Interview"}
	Recommended       = types.Recommendation{Status: "Recommended", Color: "blue", Action: "Review Further"}
	Potential         = types.Recommendation{Status: "Potential", Color: "yellow", Action: "Consider for Other Roles"}
	NotRecommended    = types.Recommendation{Status: "Not Recommended", Color: "red", Action: "Archive"}
)

// RecommendationFor maps an overall score onto its tier: 85 and above,
// 70 and above, 50 and above, everything else.
func RecommendationFor(score int) types.Recommendation {
	switch {
	case score >= 85:
		return HighlyRecommended
	case score >= 70:
		return Recommended
	case score >= 50:
		return Potential
	default:
		return NotRecommended
	}
}

// Candidate is one analyzed resume to be ranked
type Candidate struct {
	ID       string
	Name     string
	FileName string
	Analysis types.ResumeAnalysis
}

// Rank scores every candidate against job and orders them best first
func Rank(candidates []Candidate, job types.JobRequirements) []types.RankedCandidate {
	ranked := make([]types.RankedCandidate, len(candidates))
	for i, c := range candidates {
		name := c.Name
		if name == "" {
			name = c.Analysis.Contact.Name
		}
		ranked[i] = types.RankedCandidate{
			CandidateID: c.ID,
			Name:        name,
			FileName:    c.FileName,
			AIPowered:   c.Analysis.AIPowered,
			Score:       Score(c.Analysis, job),
		}
	}
	return AssignRanks(ranked)
}

// AssignRanks sorts scored candidates by descending overall score and numbers
// them from 1. Equal scores keep their input order.
func AssignRanks(ranked []types.RankedCandidate) []types.RankedCandidate {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.OverallScore > ranked[j].Score.OverallScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
