package analyzer

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"resumescreen/internal/types"

	"github.com/jonreiter/govader"
)

// vader loads the VADER lexicon once; its valences run from -4 to +4
var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

var wordPattern = regexp.MustCompile(`[a-z']+`)

// scoreSentiment returns the rounded sum of word valences and the per-word
// average of the unrounded sum.
func scoreSentiment(text string) (int, float64) {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return 0, 0
	}
	lexicon := vader().Lexicon
	var sum float64
	for _, w := range words {
		sum += lexicon[w]
	}
	return int(math.Round(sum)), sum / float64(len(words))
}

// professionalismScore starts at 50, adds 3 for each occurrence of a
// professional word and subtracts 5 for each unprofessional one.
func professionalismScore(lowerText string) int {
	score := 50
	for _, w := range professionalWords {
		score += 3 * strings.Count(lowerText, w)
	}
	for _, w := range unprofessionalWords {
		score -= 5 * strings.Count(lowerText, w)
	}
	return types.ClampScore(score)
}

func toneFor(score int) types.Tone {
	switch {
	case score > 0:
		return types.TonePositive
	case score < 0:
		return types.ToneNegative
	default:
		return types.ToneNeutral
	}
}

func analyzeSentiment(text, lowerText string) types.Sentiment {
	score, comparative := scoreSentiment(text)
	return types.Sentiment{
		Score:                score,
		Comparative:          comparative,
		ProfessionalismScore: professionalismScore(lowerText),
		Tone:                 toneFor(score),
	}
}
