package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"
)

const (
	defaultMaxResumeChars = 12000
	minCompareChars       = 1500
)

// AnalysisPayload is the loosely typed JSON object returned by the analyze operation
type AnalysisPayload map[string]any

// CandidateText is one resume submitted for comparison
type CandidateText struct {
	ID   string
	Name string
	Text string
}

// Recorder receives telemetry for every AI call
type Recorder interface {
	RecordAICall(ctx context.Context, operation, provider string, duration time.Duration, usage *TokenUsage, err error)
}

// Client runs the resume AI operations on top of per-operation backends
type Client struct {
	backends       map[string]Backend
	policies       map[string]RetryPolicy
	maxResumeChars map[string]int
	configs        map[string]config.OperationAIConfig
	recorder       Recorder
	logger         *errors.Logger
}

// NewClient creates backends for every operation that has credentials.
// Operations without credentials stay unavailable and fail with a
// ConfigurationError when called.
func NewClient(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*Client, error) {
	c := newClient(logger)

	for _, op := range config.Operations {
		opCfg := cfg.GetOperationConfig(op)
		c.configs[op] = opCfg
		c.policies[op] = NewRetryPolicy(opCfg, logger)
		c.maxResumeChars[op] = opCfg.MaxResumeChars

		backend, err := NewBackend(ctx, opCfg, op, logger)
		if err != nil {
			if errors.IsConfiguration(err) {
				logger.Info("AI operation unavailable, no credentials configured", "operation", op)
				continue
			}
			return nil, err
		}
		c.backends[op] = backend
	}

	return c, nil
}

// NewClientWithBackend uses one backend and retry policy for every operation
func NewClientWithBackend(backend Backend, policy RetryPolicy, maxResumeChars int, logger *errors.Logger) *Client {
	c := newClient(logger)
	for _, op := range config.Operations {
		if backend != nil {
			c.backends[op] = backend
		}
		c.policies[op] = policy
		c.maxResumeChars[op] = maxResumeChars
	}
	return c
}

func newClient(logger *errors.Logger) *Client {
	return &Client{
		backends:       make(map[string]Backend),
		policies:       make(map[string]RetryPolicy),
		maxResumeChars: make(map[string]int),
		configs:        make(map[string]config.OperationAIConfig),
		logger:         logger,
	}
}

// SetRecorder attaches a telemetry recorder
func (c *Client) SetRecorder(r Recorder) {
	c.recorder = r
}

// Available reports whether an operation has a backend
func (c *Client) Available(operation string) bool {
	if c == nil {
		return false
	}
	_, ok := c.backends[operation]
	return ok
}

// Backend returns the backend of an operation, or nil
func (c *Client) Backend(operation string) Backend {
	if c == nil {
		return nil
	}
	return c.backends[operation]
}

// Analyze extracts structured candidate data from resume text. Job
// requirements are optional and ask the model for a match assessment.
func (c *Client) Analyze(ctx context.Context, text string, job *types.JobRequirements) (AnalysisPayload, error) {
	jobSection := "No job requirements were provided. Omit \"matchScore\"."
	if job != nil {
		encoded, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to encode job requirements", err)
		}
		jobSection = "**Job requirements (JSON):**\n" + string(encoded)
	}

	prompt := c.prompt(config.OperationAnalyze, map[string]string{
		PlaceholderResume: c.truncate(config.OperationAnalyze, text),
		PlaceholderJob:    jobSection,
	})

	reply, err := c.generate(ctx, config.OperationAnalyze, prompt)
	if err != nil {
		return nil, err
	}

	var payload AnalysisPayload
	if err := decodeReply(reply, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// GenerateInterviewQuestions writes interview questions tailored to a resume
func (c *Client) GenerateInterviewQuestions(ctx context.Context, text, jobTitle string, focusAreas []string) (*types.InterviewQuestionsOutput, error) {
	if jobTitle == "" {
		jobTitle = "Not specified"
	}
	focus := "general fit"
	if len(focusAreas) > 0 {
		focus = strings.Join(focusAreas, ", ")
	}

	prompt := c.prompt(config.OperationQuestions, map[string]string{
		PlaceholderResume:     c.truncate(config.OperationQuestions, text),
		PlaceholderJobTitle:   jobTitle,
		PlaceholderFocusAreas: focus,
	})

	var out types.InterviewQuestionsOutput
	if err := c.run(ctx, config.OperationQuestions, prompt, &out); err != nil {
		return nil, err
	}
	out.JobTitle = jobTitle
	return &out, nil
}

// CompareResumes ranks several candidates for one job in a single prompt
func (c *Client) CompareResumes(ctx context.Context, candidates []CandidateText, job types.JobRequirements) (*types.ComparisonOutput, error) {
	if len(candidates) < 2 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "at least two resumes are required for comparison", nil)
	}

	encodedJob, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "failed to encode job requirements", err)
	}

	// The whole comparison shares one character budget
	perCandidate := max(c.limit(config.OperationCompare)/len(candidates), minCompareChars)
	var b strings.Builder
	for _, candidate := range candidates {
		fmt.Fprintf(&b, "--- Candidate ID: %s", candidate.ID)
		if candidate.Name != "" {
			fmt.Fprintf(&b, " (%s)", candidate.Name)
		}
		b.WriteString(" ---\n")
		b.WriteString(truncate(candidate.Text, perCandidate))
		b.WriteString("\n\n")
	}

	prompt := c.prompt(config.OperationCompare, map[string]string{
		PlaceholderJob:        string(encodedJob),
		PlaceholderCandidates: b.String(),
	})

	var out types.ComparisonOutput
	if err := c.run(ctx, config.OperationCompare, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeATSOptimization reviews a resume for applicant tracking systems
func (c *Client) AnalyzeATSOptimization(ctx context.Context, text, jobDescription string) (*types.ATSOutput, error) {
	prompt := c.prompt(config.OperationATS, map[string]string{
		PlaceholderResume:         c.truncate(config.OperationATS, text),
		PlaceholderJobDescription: truncate(jobDescription, c.limit(config.OperationATS)),
	})

	var out types.ATSOutput
	if err := c.run(ctx, config.OperationATS, prompt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// run generates, cleans, schema-checks and decodes one reply
func (c *Client) run(ctx context.Context, operation string, prompt Prompt, out any) error {
	reply, err := c.generate(ctx, operation, prompt)
	if err != nil {
		return err
	}

	cleaned, err := CleanJSON(reply)
	if err != nil {
		return err
	}
	if err := validateReply(operation, cleaned); err != nil {
		c.logger.LogError(err, "AI reply failed schema validation", "operation", operation)
		return err
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return errors.NewAIResponseError("Failed to parse AI response for "+operation, err)
	}
	return nil
}

// generate calls the operation's backend under its retry policy
func (c *Client) generate(ctx context.Context, operation string, prompt Prompt) (string, error) {
	backend := c.Backend(operation)
	if backend == nil {
		return "", errors.NewConfigurationError("AI is not configured for the " + operation + " operation")
	}

	var reply string
	err := c.policies[operation].Do(ctx, operation, func(ctx context.Context) error {
		start := time.Now()
		text, usage, err := backend.Generate(ctx, prompt)
		if c.recorder != nil {
			c.recorder.RecordAICall(ctx, operation, backend.Name(), time.Since(start), usage, err)
		}
		if err != nil {
			return err
		}
		reply = text
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *Client) prompt(operation string, values map[string]string) Prompt {
	return buildPrompt(c.configs[operation], operation, values)
}

func (c *Client) limit(operation string) int {
	if n := c.maxResumeChars[operation]; n > 0 {
		return n
	}
	return defaultMaxResumeChars
}

func (c *Client) truncate(operation, text string) string {
	return truncate(text, c.limit(operation))
}
