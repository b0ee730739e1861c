package extract

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

const maxNames = 5

var digitRunPattern = regexp.MustCompile(`\d{3,}`)

// PersonTagger finds person names in free text
type PersonTagger interface {
	People(text string) []string
}

// ProseTagger tags PERSON entities with the prose NER model
type ProseTagger struct{}

// People returns PERSON entities in order of appearance. Tagging errors yield no names.
func (ProseTagger) People(text string) []string {
	if isBlank(text) {
		return nil
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil
	}
	var people []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			people = append(people, ent.Text)
		}
	}
	return people
}

// Extractor bundles the pure extraction functions with a person tagger
type Extractor struct {
	tagger PersonTagger
}

// New creates an extractor. A nil tagger disables NER and leaves only the
// first-line heuristic for names.
func New(tagger PersonTagger) *Extractor {
	return &Extractor{tagger: tagger}
}

// NewDefault creates an extractor backed by the prose tagger
func NewDefault() *Extractor {
	return New(ProseTagger{})
}

// Names merges tagger hits with the first-line heuristic, capped at five
func (e *Extractor) Names(text string) []string {
	var names []string
	if e != nil && e.tagger != nil {
		names = append(names, e.tagger.People(text)...)
	}
	if candidate := FirstLineName(text); candidate != "" {
		names = append(names, candidate)
	}
	return dedupe(names, maxNames)
}

// FirstName returns the tagger's first hit, falling back to the first short
// line that has no '@' and no digits.
func (e *Extractor) FirstName(text string) string {
	if e != nil && e.tagger != nil {
		if people := e.tagger.People(text); len(people) > 0 {
			return strings.TrimSpace(people[0])
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) < 50 && !strings.Contains(line, "@") && !strings.ContainsAny(line, "0123456789") {
			return line
		}
	}
	return ""
}

// FirstLineName treats the first non-empty line as a name when it is short,
// has no '@', no run of three or more digits, and two to four words.
func FirstLineName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) >= 50 || strings.Contains(line, "@") || digitRunPattern.MatchString(line) {
			return ""
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			return ""
		}
		return strings.Join(words, " ")
	}
	return ""
}

// DefaultTopKeywords is the keyword count ExtractAll uses for a non-positive limit
const DefaultTopKeywords = 20

// ExtractAll runs every extractor over text and keeps the topKeywords most
// frequent keywords.
func (e *Extractor) ExtractAll(text string, topKeywords int) Entities {
	if topKeywords <= 0 {
		topKeywords = DefaultTopKeywords
	}
	return Entities{
		Emails:         Emails(text),
		Phones:         Phones(text),
		URLs:           URLs(text),
		Names:          e.Names(text),
		Dates:          Dates(text),
		Locations:      Locations(text),
		Organizations:  Organizations(text),
		Money:          Money(text),
		Certifications: Certifications(text),
		Achievements:   Achievements(text),
		Languages:      Languages(text),
		Keywords:       Keywords(text, topKeywords),
	}
}
