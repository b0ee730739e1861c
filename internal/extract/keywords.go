package extract

import (
	"regexp"
	"sort"
	"strings"
)

// KeywordCount is a keyword and how often it occurs
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

var (
	tokenPattern     = regexp.MustCompile(`[a-z0-9][a-z0-9+#]*`)
	pureDigitPattern = regexp.MustCompile(`^\d+$`)
)

var stopWords = toSet(strings.Fields(`
a about above after again against all also am an and any are as at be because been
before being below between both but by can could did do does doing down during each
etc few for from further had has have having he her here hers herself him himself his
how i if in into is it its itself just me more most my myself no nor not now of off on
once only or other our ours ourselves out over own per same she should so some such
than that the their theirs them themselves then there these they this those through to
too under until up us very via was we were what when where which while who whom why
will with within would you your yours yourself yourselves
`))

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Tokens lowercases text and splits it into tokens, dropping stop words,
// pure-digit tokens and single characters.
func Tokens(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if len(tok) < 2 || stopWords[tok] || pureDigitPattern.MatchString(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Keywords returns the topN most frequent tokens. Ties keep first-seen order.
// A non-positive topN returns every token.
func Keywords(text string, topN int) []KeywordCount {
	counts := make(map[string]int)
	var order []string
	for _, tok := range Tokens(text) {
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	result := make([]KeywordCount, len(order))
	for i, word := range order {
		result[i] = KeywordCount{Word: word, Count: counts[word]}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}
	return result
}

// UniqueKeywords returns up to limit distinct tokens in first-seen order
func UniqueKeywords(text string, limit int) []string {
	return dedupe(Tokens(text), limit)
}
