package analyzer

import (
	"regexp"

	"resumescreen/internal/types"
)

// skillDictionary maps each rule-path category to the lowercase skill tokens it recognizes
var skillDictionary = map[string][]string{
	types.CategoryProgramming: {
		"javascript", "typescript", "python", "java", "c++", "c#", "golang", "ruby",
		"php", "swift", "kotlin", "rust", "scala", "perl", "haskell", "elixir", "dart",
	},
	types.CategoryFrontend: {
		"react", "angular", "vue", "svelte", "html", "css", "sass", "tailwind",
		"next.js", "redux", "webpack", "jquery", "bootstrap",
	},
	types.CategoryBackend: {
		"node.js", "express", "django", "flask", "spring", "rails", "laravel",
		"fastapi", "graphql", "rest api", "microservices", "grpc", ".net",
	},
	types.CategoryDatabase: {
		"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "cassandra",
		"elasticsearch", "dynamodb", "sql server", "firebase", "neo4j",
	},
	types.CategoryCloud: {
		"aws", "azure", "gcp", "google cloud", "docker", "kubernetes", "terraform",
		"jenkins", "ci/cd", "ansible", "heroku", "linux", "github actions",
	},
	types.CategoryMLAI: {
		"machine learning", "deep learning", "tensorflow", "pytorch", "scikit-learn",
		"nlp", "computer vision", "pandas", "numpy", "keras", "llm", "data science",
	},
	types.CategorySoftSkills: {
		"leadership", "communication", "teamwork", "problem solving", "project management",
		"agile", "scrum", "mentoring", "collaboration", "time management",
	},
}

// ruleCategories is the order the rule path walks the dictionary in
var ruleCategories = []string{
	types.CategoryProgramming,
	types.CategoryFrontend,
	types.CategoryBackend,
	types.CategoryDatabase,
	types.CategoryCloud,
	types.CategoryMLAI,
	types.CategorySoftSkills,
}

var yearsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\+?\s*(?:years?|yrs?)\s+(?:of\s+)?(?:professional\s+|industry\s+|relevant\s+|work\s+)?experience`),
	regexp.MustCompile(`(?i)experience\s*(?:of|:|-)?\s*(\d+(?:\.\d+)?)\+?\s*(?:years?|yrs?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\+?\s*(?:years?|yrs?)\s+(?:in|as|working)\b`),
}

var jobTitlePattern = regexp.MustCompile(`(?i)\b(?:(?:senior|junior|lead|principal|staff|chief|sr\.|jr\.|head of)\s+)?(?:software|backend|back-end|frontend|front-end|full[\s-]?stack|data|devops|cloud|machine learning|ml|mobile|web|qa|security|product|project|engineering|platform|site reliability)\s+(?:engineer|developer|architect|scientist|analyst|manager|designer|consultant|administrator|lead)\b`)

type degreePattern struct {
	degree  types.Degree
	pattern *regexp.Regexp
}

// degreePatterns are checked in priority order, highest degree first
var degreePatterns = []degreePattern{
	{types.DegreePhD, regexp.MustCompile(`(?i)\bph\.?\s?d\b|\bdoctorate\b|\bdoctor of philosophy\b`)},
	{types.DegreeMasters, regexp.MustCompile(`(?i)\bmaster'?s?\s+(?:of|in|degree)\b|\bm\.s\.|\bm\.?sc\b|\bmba\b|\bm\.tech\b|\bm\.eng\b`)},
	{types.DegreeBachelors, regexp.MustCompile(`(?i)\bbachelor'?s?\b|\bb\.s\.|\bb\.?sc\b|\bb\.a\.|\bb\.tech\b|\bb\.e\.|\bbeng\b`)},
	{types.DegreeAssociate, regexp.MustCompile(`(?i)\bassociate'?s?\s+(?:of|in|degree)\b`)},
	{types.DegreeDiploma, regexp.MustCompile(`(?i)\bdiploma\b`)},
}

var universityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:University|College|Institute) of [A-Z][A-Za-z]+(?:[ \t][A-Z][A-Za-z]+){0,3}`),
	regexp.MustCompile(`\b[A-Z][A-Za-z]+(?:[ \t][A-Z][A-Za-z]+){0,3}[ \t](?:University|College|Institute of Technology|Institute)\b`),
}

var professionalWords = []string{
	"achieved", "managed", "led", "developed", "implemented", "designed", "delivered",
	"improved", "collaborated", "optimized", "launched", "coordinated", "established",
	"spearheaded", "streamlined", "mentored", "architected", "negotiated",
}

var unprofessionalWords = []string{
	"awesome", "stuff", "lol", "gonna", "wanna", "kinda", "whatever", "sucks", "dude", "crap",
}

var employmentGapPattern = regexp.MustCompile(`(?i)\b(?:employment gap|career break|gap year|sabbatical|unemployed|between jobs|time off)\b`)

var metricPattern = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*%|[$€£₹]\s?\d|\b\d+\+?\s*(?:users|customers|clients|projects|people|engineers|members|countries|servers|applications|services|million|thousand|k)\b`)
