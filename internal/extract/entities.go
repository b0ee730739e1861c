package extract

import (
	"regexp"
	"strings"
)

const (
	maxDates          = 20
	maxLocations      = 10
	maxOrganizations  = 10
	maxMoney          = 10
	maxCertifications = 10
	maxAchievements   = 10
	maxLanguages      = 10
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+(?:19|20)\d{2}\s*(?:-|–|to)\s*(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+(?:19|20)\d{2}|present|current|now)\b`),
	regexp.MustCompile(`(?i)\b(?:19|20)\d{2}\s*(?:-|–|to)\s*(?:(?:19|20)\d{2}|present|current|now)\b`),
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+(?:19|20)\d{2}\b`),
	regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])/(?:19|20)\d{2}\b`),
}

var cityStatePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s[A-Z][a-z]+)?,\s?[A-Z]{2}\b`)

var knownLocations = []string{
	"New York", "San Francisco", "Los Angeles", "Seattle", "Austin", "Boston", "Chicago",
	"Denver", "Atlanta", "Toronto", "Vancouver", "London", "Manchester", "Edinburgh",
	"Dublin", "Berlin", "Munich", "Amsterdam", "Paris", "Madrid", "Barcelona", "Stockholm",
	"Zurich", "Singapore", "Sydney", "Melbourne", "Tokyo", "Bangalore", "Bengaluru",
	"Mumbai", "Delhi", "Hyderabad", "Chennai", "Pune", "Jakarta", "Dubai",
	"United States", "USA", "Canada", "United Kingdom", "UK", "Germany", "France",
	"India", "Australia", "Netherlands", "Indonesia", "Remote",
}

var orgPattern = regexp.MustCompile(`\b(?:[A-Z][A-Za-z0-9&'\-]*[ \t]){0,4}(?:Inc|LLC|Ltd|Limited|Corp|Corporation|Company|Co|Technologies|Technology|Solutions|Systems|Labs|Group|Partners|Consulting|University|College|Institute|Bank)\b\.?`)

var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[$€£₹]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:k|m|mm|million|billion|bn)\b)?`),
	regexp.MustCompile(`(?i)\b\d[\d,]*(?:\.\d+)?\s?(?:usd|eur|gbp|inr|dollars|euros|pounds|rupees)\b`),
}

var certificationPattern = regexp.MustCompile(`(?i)\b(?:aws certified [a-z\- ]+?(?:associate|professional|practitioner|specialty)|google (?:cloud )?certified[a-z\- ]*?(?:engineer|architect|developer|analyst)|microsoft certified[:a-z\- ]*?(?:associate|expert|fundamentals)|azure [a-z ]+? (?:associate|expert|fundamentals)|certified kubernetes (?:administrator|application developer)|certified scrum master|certified information systems security professional|comptia [a-z+]+|pmp|cissp|ccna|ccnp|cka|ckad|csm|cfa|cpa|itil)\b`)

var achievementPattern = regexp.MustCompile(`(?i)\b(?:increased|reduced|improved|achieved|delivered|saved|generated|grew|boosted|cut|awarded|won|led|launched|scaled)\b[^.\n]*?\d[^.\n]*`)

var spokenLanguages = []string{
	"English", "Spanish", "French", "German", "Italian", "Portuguese", "Dutch", "Russian",
	"Mandarin", "Cantonese", "Chinese", "Japanese", "Korean", "Arabic", "Hindi", "Bengali",
	"Urdu", "Tamil", "Telugu", "Marathi", "Punjabi", "Indonesian", "Malay", "Vietnamese",
	"Thai", "Turkish", "Polish", "Swedish", "Norwegian", "Danish", "Finnish", "Greek",
	"Hebrew", "Swahili", "Ukrainian",
}

var (
	locationPatterns = wordPatterns(knownLocations, false)
	languagePatterns = wordPatterns(spokenLanguages, true)
)

// wordPatterns compiles one whole-word pattern per dictionary entry
func wordPatterns(words []string, caseInsensitive bool) []*regexp.Regexp {
	prefix := ""
	if caseInsensitive {
		prefix = "(?i)"
	}
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(prefix + `\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return patterns
}

// Dates returns date expressions and ranges, longest patterns first
func Dates(text string) []string {
	var found []string
	for _, pattern := range datePatterns {
		found = append(found, pattern.FindAllString(text, -1)...)
	}
	return dedupe(found, maxDates)
}

// Locations returns "City, ST" mentions and well-known place names
func Locations(text string) []string {
	found := cityStatePattern.FindAllString(text, -1)
	for i, pattern := range locationPatterns {
		if pattern.MatchString(text) {
			found = append(found, knownLocations[i])
		}
	}
	return dedupe(found, maxLocations)
}

// Organizations returns capitalized names ending in a company or institution suffix
func Organizations(text string) []string {
	return dedupe(orgPattern.FindAllString(text, -1), maxOrganizations)
}

// Money returns currency amounts
func Money(text string) []string {
	var found []string
	for _, pattern := range moneyPatterns {
		found = append(found, pattern.FindAllString(text, -1)...)
	}
	return dedupe(found, maxMoney)
}

// Certifications returns recognized professional certifications
func Certifications(text string) []string {
	return dedupe(certificationPattern.FindAllString(text, -1), maxCertifications)
}

// Achievements returns sentences that pair an impact verb with a number
func Achievements(text string) []string {
	return dedupe(achievementPattern.FindAllString(text, -1), maxAchievements)
}

// Languages returns spoken languages mentioned in text, in dictionary order
func Languages(text string) []string {
	var found []string
	for i, pattern := range languagePatterns {
		if pattern.MatchString(text) {
			found = append(found, spokenLanguages[i])
		}
	}
	return dedupe(found, maxLanguages)
}

// Entities is the full set of entities extracted from one text
type Entities struct {
	Emails         []string       `json:"emails"`
	Phones         []string       `json:"phones"`
	URLs           URLSet         `json:"urls"`
	Names          []string       `json:"names"`
	Dates          []string       `json:"dates"`
	Locations      []string       `json:"locations"`
	Organizations  []string       `json:"organizations"`
	Money          []string       `json:"money"`
	Certifications []string       `json:"certifications"`
	Achievements   []string       `json:"achievements"`
	Languages      []string       `json:"languages"`
	Keywords       []KeywordCount `json:"keywords"`
}

// isBlank reports whether s has no visible content
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
