package ai

import (
	"strings"

	"resumescreen/internal/config"
)

// Placeholders substituted into user prompt templates
const (
	PlaceholderResume         = "{{RESUME}}"
	PlaceholderJob            = "{{JOB}}"
	PlaceholderJobTitle       = "{{JOB_TITLE}}"
	PlaceholderFocusAreas     = "{{FOCUS_AREAS}}"
	PlaceholderCandidates     = "{{CANDIDATES}}"
	PlaceholderJobDescription = "{{JOB_DESCRIPTION}}"
)

// DefaultSystemPrompts holds the built-in persona for each operation
var DefaultSystemPrompts = map[string]string{
	config.OperationAnalyze: `You are an expert technical recruiter and resume analyst. You extract facts from resumes with strict accuracy:

- NEVER invent skills, employers, degrees or dates that are not in the resume
- Prefer leaving a field empty over guessing
- Judge the candidate against the job requirements only when they are provided
- Always answer with a single JSON object and nothing else`,

	config.OperationQuestions: `You are a senior hiring manager preparing a structured interview. You write specific, probing questions grounded in the candidate's actual experience, mixing technical, behavioral and situational questions. Always answer with a single JSON object and nothing else.`,

	config.OperationCompare: `You are an impartial hiring committee chair. You compare candidates for one role on evidence from their resumes only, never on names, gender, age or background. Always answer with a single JSON object and nothing else.`,

	config.OperationATS: `You are an applicant tracking system specialist. You evaluate how well a resume will be parsed and ranked by ATS software for a specific job description, and you give concrete, honest improvements. Always answer with a single JSON object and nothing else.`,
}

// DefaultUserPrompts holds the built-in user prompt templates
var DefaultUserPrompts = map[string]string{
	config.OperationAnalyze: `Analyze the resume below and extract structured candidate data.

**Resume:**
-----
{{RESUME}}
-----

{{JOB}}`,

	config.OperationQuestions: `Generate interview questions for the candidate below.

**Position:** {{JOB_TITLE}}
**Focus areas:** {{FOCUS_AREAS}}

**Resume:**
-----
{{RESUME}}
-----`,

	config.OperationCompare: `Compare the candidates below for the same role and rank them from strongest to weakest fit.

**Job requirements:**
{{JOB}}

**Candidates:**
{{CANDIDATES}}`,

	config.OperationATS: `Review the resume below for applicant tracking system compatibility with the job description.

**Resume:**
-----
{{RESUME}}
-----

**Job Description:**
-----
{{JOB_DESCRIPTION}}
-----`,
}

// OutputContracts describes the JSON each operation must return. It is always
// appended to the user prompt so custom templates cannot change the reply shape.
var OutputContracts = map[string]string{
	config.OperationAnalyze: `Respond with JSON matching this structure (omit nothing, use empty values when unknown):
{
  "contact": {"name": "", "email": "", "phone": "", "location": "", "linkedin": "", "github": ""},
  "summary": "",
  "skills": {
    "technical": [""], "frameworks": [""], "databases": [""], "cloud": [""], "soft": [""], "other": [""],
    "proficiency": {"expert": [""], "intermediate": [""], "beginner": [""]}
  },
  "experience": {
    "totalYears": 0,
    "level": "Entry Level | Junior | Mid-Level | Senior | Lead/Staff | Principal/Director",
    "positions": [{"title": "", "company": "", "duration": "", "summary": "", "achievements": [""]}],
    "careerProgression": ""
  },
  "education": {"degrees": [""], "universities": [""], "highestDegree": "", "certifications": [""]},
  "projects": [{"name": "", "description": "", "technologies": [""]}],
  "matchScore": {"overall": 0, "breakdown": {"skills": 0, "experience": 0, "education": 0}, "missingSkills": [""], "matchedSkills": [""]},
  "analysis": {"strengths": [""], "weaknesses": [""], "redFlags": [""]},
  "salaryEstimate": {"min": 0, "max": 0, "currency": "USD"},
  "interviewQuestions": [""],
  "overallAssessment": ""
}
Include "matchScore" only when job requirements are given.`,

	config.OperationQuestions: `Respond with JSON: {"questions": [{"question": "", "category": "technical | behavioral | situational", "purpose": ""}]}`,

	config.OperationCompare: `Respond with JSON: {"rankings": [{"candidateId": "", "rank": 1, "score": 0, "summary": "", "strengths": [""], "weaknesses": [""]}], "recommendation": ""}
Use the candidate IDs exactly as given and rank every candidate.`,

	config.OperationATS: `Respond with JSON: {"score": 0, "keywords": {"present": [""], "missing": [""]}, "formattingIssues": [""], "suggestions": [""]}`,
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

// buildPrompt resolves the system and user prompts of an operation and fills in the template
func buildPrompt(cfg config.OperationAIConfig, operation string, values map[string]string) Prompt {
	loaded := config.GetPromptsForOperation(operation)

	system := resolvePrompt(loaded.SystemPrompt, cfg.CustomPrompts.SystemPrompt, DefaultSystemPrompts[operation])
	template := resolvePrompt(loaded.UserPrompt, cfg.CustomPrompts.UserPrompt, DefaultUserPrompts[operation])

	pairs := make([]string, 0, len(values)*2)
	for placeholder, value := range values {
		pairs = append(pairs, placeholder, value)
	}
	user := strings.NewReplacer(pairs...).Replace(template)
	user = strings.TrimSpace(user) + "\n\n" + OutputContracts[operation]

	return Prompt{System: system, User: user}
}

// truncate cuts text to at most limit bytes without splitting a UTF-8 sequence
func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return strings.ToValidUTF8(text[:limit], "")
}
