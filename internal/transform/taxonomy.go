package transform

import (
	"strings"

	"resumescreen/internal/types"
)

var (
	frontendHints = []string{"react", "vue", "angular", "svelte", "next", "nuxt", "html", "css", "tailwind", "jquery", "redux"}
	mlHints       = []string{"tensorflow", "pytorch", "keras", "scikit", "machine learning", "deep learning", "nlp", "llm", "pandas", "numpy", "computer vision", "hugging"}
)

func containsHint(skill string, hints []string) bool {
	lower := strings.ToLower(skill)
	for _, hint := range hints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// categorize maps the AI skill taxonomy onto the canonical categories. A skill
// is placed once, in the first bucket that claims it.
func categorize(s aiSkills) map[string][]string {
	c := newCategorizer()

	for _, skill := range s.Technical {
		if containsHint(skill, mlHints) {
			c.add(types.CategoryMLAI, skill)
		} else {
			c.add(types.CategoryProgramming, skill)
		}
	}
	for _, skill := range s.Frameworks {
		switch {
		case containsHint(skill, frontendHints):
			c.add(types.CategoryFrontend, skill)
		case containsHint(skill, mlHints):
			c.add(types.CategoryMLAI, skill)
		default:
			c.add(types.CategoryBackend, skill)
		}
	}
	for _, skill := range s.Databases {
		c.add(types.CategoryDatabase, skill)
	}
	for _, skill := range s.Cloud {
		c.add(types.CategoryCloud, skill)
	}
	for _, skill := range s.Soft {
		c.add(types.CategorySoftSkills, skill)
	}
	for _, skill := range s.Other {
		if containsHint(skill, mlHints) {
			c.add(types.CategoryMLAI, skill)
		} else {
			c.add(types.CategoryOther, skill)
		}
	}

	return c.categories
}

type categorizer struct {
	categories map[string][]string
	seen       map[string]bool
}

func newCategorizer() *categorizer {
	return &categorizer{
		categories: make(map[string][]string),
		seen:       make(map[string]bool),
	}
}

func (c *categorizer) add(category, skill string) {
	skill = strings.TrimSpace(skill)
	key := strings.ToLower(skill)
	if key == "" || c.seen[key] {
		return
	}
	c.seen[key] = true
	c.categories[category] = append(c.categories[category], skill)
}
