package types

// BatchStatus is the processing state of a resume
type BatchStatus string

const (
	StatusProcessing BatchStatus = "processing"
	StatusCompleted  BatchStatus = "completed"
	StatusFailed     BatchStatus = "failed"
)

// BatchItemResult is the outcome of screening one file in a batch
type BatchItemResult struct {
	ResumeID   string          `json:"resumeId"`
	FileName   string          `json:"fileName"`
	Status     BatchStatus     `json:"status"`
	Analysis   *ResumeAnalysis `json:"analysis,omitempty"`
	MatchScore *MatchScore     `json:"matchScore,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// BatchResult collects every item of a batch, in input order
type BatchResult struct {
	BatchID   string            `json:"batchId"`
	JobID     string            `json:"jobId,omitempty"`
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
	Ranking   []RankedCandidate `json:"ranking,omitempty"`
}

// InterviewQuestion is a single generated interview question
type InterviewQuestion struct {
	Question string `json:"question"`
	Category string `json:"category"`
	Purpose  string `json:"purpose,omitempty"`
}

// InterviewQuestionsOutput is the result of AI interview question generation
type InterviewQuestionsOutput struct {
	JobTitle  string              `json:"jobTitle,omitempty"`
	Questions []InterviewQuestion `json:"questions"`
}

// CandidateComparison is one candidate's place in an AI comparison
type CandidateComparison struct {
	CandidateID string   `json:"candidateId"`
	Rank        int      `json:"rank"`
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	Strengths   []string `json:"strengths"`
	Weaknesses  []string `json:"weaknesses"`
}

// ComparisonOutput is the result of comparing several resumes for one job
type ComparisonOutput struct {
	Rankings       []CandidateComparison `json:"rankings"`
	Recommendation string                `json:"recommendation"`
}

// ATSKeywords lists job keywords present in and missing from a resume
type ATSKeywords struct {
	Present []string `json:"present"`
	Missing []string `json:"missing"`
}

// ATSOutput is the result of an ATS optimization review
type ATSOutput struct {
	Score            int         `json:"score"`
	Keywords         ATSKeywords `json:"keywords"`
	FormattingIssues []string    `json:"formattingIssues"`
	Suggestions      []string    `json:"suggestions"`
}
