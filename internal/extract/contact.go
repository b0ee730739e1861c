// Package extract pulls contact details and named entities out of raw resume
// text using fixed regex batteries and dictionaries. Every function is
// deterministic and returns empty results instead of failing.
package extract

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	phonePatterns = []*regexp.Regexp{
		// US: (555) 123-4567, 555.123.4567, +1 555 123 4567
		regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\b\d{3}\)?[\s.\-]?\d{3}[\s.\-]\d{4}\b`),
		// India: +91 98765 43210, 9876543210
		regexp.MustCompile(`(?:\+91[\s\-]?)?\b[6-9]\d{4}[\s\-]?\d{5}\b`),
		// UK mobile: +44 7911 123456, 07911 123456
		regexp.MustCompile(`(?:\+44\s?|\b0)7\d{3}\s?\d{6}\b`),
		// UK landline: +44 20 7946 0958, 020 7946 0958
		regexp.MustCompile(`(?:\+44\s?|\b0)[1-9]\d{1,3}\s\d{3,4}\s\d{3,4}\b`),
	}

	urlPattern           = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"'()\[\]]+`)
	bareLinkedInPattern  = regexp.MustCompile(`(?i)\blinkedin\.com/in/([A-Za-z0-9_\-%]+)`)
	bareGitHubPattern    = regexp.MustCompile(`(?i)\bgithub\.com/([A-Za-z0-9\-]+)`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

var portfolioHints = []string{
	"portfolio", "behance.net", "dribbble.com", "github.io", "netlify.app",
	"vercel.app", "about.me", "medium.com", "dev.to", "kaggle.com",
}

// URLSet holds URLs found in a resume, grouped by kind
type URLSet struct {
	LinkedIn  []string `json:"linkedin"`
	GitHub    []string `json:"github"`
	Portfolio []string `json:"portfolio"`
	Other     []string `json:"other"`
}

// Emails returns every distinct email address in text
func Emails(text string) []string {
	return dedupe(emailPattern.FindAllString(text, -1), 0)
}

// FirstEmail returns the first email address in text, or ""
func FirstEmail(text string) string {
	return emailPattern.FindString(text)
}

// Phones returns distinct phone numbers matched by any regional pattern,
// with internal whitespace collapsed.
func Phones(text string) []string {
	var found []string
	for _, pattern := range phonePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			found = append(found, normalizeSpace(match))
		}
	}
	return dedupe(found, 0)
}

// FirstPhone returns the first phone number in text, trying the patterns in order
func FirstPhone(text string) string {
	for _, pattern := range phonePatterns {
		if match := pattern.FindString(text); match != "" {
			return normalizeSpace(match)
		}
	}
	return ""
}

// URLs classifies the URLs found in text. When no explicit LinkedIn or
// GitHub URL is present, bare "linkedin.com/in/<handle>" and
// "github.com/<handle>" mentions are turned into canonical https URLs.
func URLs(text string) URLSet {
	set := URLSet{
		LinkedIn:  []string{},
		GitHub:    []string{},
		Portfolio: []string{},
		Other:     []string{},
	}

	for _, raw := range urlPattern.FindAllString(text, -1) {
		url := strings.TrimRight(raw, ".,;:!?")
		lower := strings.ToLower(url)
		switch {
		case strings.Contains(lower, "linkedin.com"):
			set.LinkedIn = append(set.LinkedIn, url)
		case strings.Contains(lower, "github.com"):
			set.GitHub = append(set.GitHub, url)
		case containsAny(lower, portfolioHints):
			set.Portfolio = append(set.Portfolio, url)
		default:
			set.Other = append(set.Other, url)
		}
	}

	if len(set.LinkedIn) == 0 {
		for _, m := range bareLinkedInPattern.FindAllStringSubmatch(text, -1) {
			set.LinkedIn = append(set.LinkedIn, "https://www.linkedin.com/in/"+m[1])
		}
	}
	if len(set.GitHub) == 0 {
		for _, m := range bareGitHubPattern.FindAllStringSubmatch(text, -1) {
			set.GitHub = append(set.GitHub, "https://github.com/"+m[1])
		}
	}

	set.LinkedIn = dedupe(set.LinkedIn, 0)
	set.GitHub = dedupe(set.GitHub, 0)
	set.Portfolio = dedupe(set.Portfolio, 0)
	set.Other = dedupe(set.Other, 0)
	return set
}

func normalizeSpace(s string) string {
	return strings.TrimSpace(whitespaceRunPattern.ReplaceAllString(s, " "))
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

// dedupe trims entries, drops empties and case-insensitive duplicates while
// keeping first-seen order. A positive limit caps the result length.
func dedupe(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
