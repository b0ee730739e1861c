package ai

import (
	"context"
	stdErrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend replays canned replies and records prompts
type fakeBackend struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []Prompt
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, prompt Prompt) (string, *TokenUsage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	if n < len(f.errs) && f.errs[n] != nil {
		return "", nil, f.errs[n]
	}
	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[min(n, len(f.replies)-1)]
	}
	return reply, &TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, nil
}

type recordedCall struct {
	operation string
	provider  string
	failed    bool
}

type fakeRecorder struct {
	calls []recordedCall
}

func (r *fakeRecorder) RecordAICall(_ context.Context, operation, provider string, _ time.Duration, _ *TokenUsage, err error) {
	r.calls = append(r.calls, recordedCall{operation, provider, err != nil})
}

func noSleepPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Retryable:   IsTransient,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func TestAnalyzeParsesFencedReply(t *testing.T) {
	backend := &fakeBackend{replies: []string{"Sure!\n```json\n{\"contact\": {\"name\": \"Jane Doe\"}, \"skills\": {\"technical\": [\"Go\"]}}\n```"}}
	client := NewClientWithBackend(backend, noSleepPolicy(3), 100, nil)

	job := &types.JobRequirements{Skills: []string{"Go", "Kafka"}, MinExperience: 3, Education: types.DegreeBachelors}
	payload, err := client.Analyze(context.Background(), strings.Repeat("x", 500), job)
	require.NoError(t, err)

	contact, ok := payload["contact"].(map[string]any)
	require.True(t, ok, "Expected contact object in payload")
	assert.Equal(t, "Jane Doe", contact["name"])

	require.Len(t, backend.prompts, 1)
	prompt := backend.prompts[0]
	assert.NotEmpty(t, prompt.System)
	assert.Contains(t, prompt.User, `"Kafka"`)
	assert.Contains(t, prompt.User, `"education": "Bachelors"`)
	assert.Contains(t, prompt.User, strings.Repeat("x", 100))
	assert.NotContains(t, prompt.User, strings.Repeat("x", 101), "Expected the resume to be truncated")
	assert.Contains(t, prompt.User, "Respond with JSON")
}

func TestAnalyzeWithoutJob(t *testing.T) {
	backend := &fakeBackend{replies: []string{`{"summary": "ok"}`}}
	client := NewClientWithBackend(backend, noSleepPolicy(1), 0, nil)

	_, err := client.Analyze(context.Background(), "resume", nil)
	require.NoError(t, err)
	assert.Contains(t, backend.prompts[0].User, "No job requirements were provided")
}

func TestAnalyzeUnparsableReply(t *testing.T) {
	backend := &fakeBackend{replies: []string{"I am unable to analyze this resume."}}
	client := NewClientWithBackend(backend, noSleepPolicy(3), 0, nil)

	_, err := client.Analyze(context.Background(), "resume", nil)
	require.Error(t, err)
	assert.True(t, errors.IsAIResponse(err), "Expected AIResponseError, got %v", err)
	assert.Len(t, backend.prompts, 1, "Unparsable replies are not retried")
}

func TestAnalyzeWithoutBackend(t *testing.T) {
	client := NewClientWithBackend(nil, noSleepPolicy(3), 0, nil)

	assert.False(t, client.Available("analyze"))
	_, err := client.Analyze(context.Background(), "resume", nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err), "Expected ConfigurationError, got %v", err)
}

func TestAnalyzeRetriesRateLimits(t *testing.T) {
	rateLimited := stdErrors.New("429 Too Many Requests")
	backend := &fakeBackend{
		errs:    []error{rateLimited, rateLimited},
		replies: []string{"", "", `{"summary": "third time lucky"}`},
	}
	recorder := &fakeRecorder{}
	client := NewClientWithBackend(backend, noSleepPolicy(3), 0, nil)
	client.SetRecorder(recorder)

	payload, err := client.Analyze(context.Background(), "resume", nil)
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", payload["summary"])

	require.Len(t, recorder.calls, 3)
	assert.True(t, recorder.calls[0].failed)
	assert.False(t, recorder.calls[2].failed)
	assert.Equal(t, "analyze", recorder.calls[2].operation)
	assert.Equal(t, "fake", recorder.calls[2].provider)
}

func TestAnalyzeRateLimitExhaustion(t *testing.T) {
	rateLimited := stdErrors.New("429 Too Many Requests")
	backend := &fakeBackend{errs: []error{rateLimited, rateLimited, rateLimited}}
	client := NewClientWithBackend(backend, noSleepPolicy(3), 0, nil)

	_, err := client.Analyze(context.Background(), "resume", nil)
	require.Error(t, err)
	assert.True(t, errors.IsMaxRetriesExceeded(err))
	assert.Len(t, backend.prompts, 3)
}

func TestGenerateInterviewQuestions(t *testing.T) {
	backend := &fakeBackend{replies: []string{`{"questions": [{"question": "Describe a Kafka outage you handled.", "category": "technical"}]}`}}
	client := NewClientWithBackend(backend, noSleepPolicy(1), 0, nil)

	out, err := client.GenerateInterviewQuestions(context.Background(), "resume", "Backend Engineer", []string{"Kafka", "leadership"})
	require.NoError(t, err)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "technical", out.Questions[0].Category)
	assert.Equal(t, "Backend Engineer", out.JobTitle)
	assert.Contains(t, backend.prompts[0].User, "Kafka, leadership")
}

func TestGenerateInterviewQuestionsSchemaViolation(t *testing.T) {
	backend := &fakeBackend{replies: []string{`{"questions": []}`}}
	client := NewClientWithBackend(backend, noSleepPolicy(1), 0, nil)

	_, err := client.GenerateInterviewQuestions(context.Background(), "resume", "", nil)
	require.Error(t, err)
	assert.True(t, errors.IsAIResponse(err), "Expected AIResponseError, got %v", err)
}

func TestCompareResumes(t *testing.T) {
	reply := `{"rankings": [
		{"candidateId": "b", "rank": 1, "score": 88, "summary": "strong"},
		{"candidateId": "a", "rank": 2, "score": 61, "summary": "ok"}
	], "recommendation": "Interview b"}`
	backend := &fakeBackend{replies: []string{reply}}
	client := NewClientWithBackend(backend, noSleepPolicy(1), 3000, nil)

	candidates := []CandidateText{
		{ID: "a", Name: "Ann", Text: strings.Repeat("a", 5000)},
		{ID: "b", Text: "Bob's resume"},
	}
	out, err := client.CompareResumes(context.Background(), candidates, types.JobRequirements{Skills: []string{"Go"}})
	require.NoError(t, err)
	require.Len(t, out.Rankings, 2)
	assert.Equal(t, "b", out.Rankings[0].CandidateID)
	assert.Equal(t, "Interview b", out.Recommendation)

	user := backend.prompts[0].User
	assert.Contains(t, user, "Candidate ID: a (Ann)")
	assert.Contains(t, user, "Candidate ID: b")
	assert.NotContains(t, user, strings.Repeat("a", minCompareChars+1))

	_, err = client.CompareResumes(context.Background(), candidates[:1], types.JobRequirements{})
	assert.True(t, errors.IsValidation(err), "Expected ValidationError, got %v", err)
}

func TestAnalyzeATSOptimization(t *testing.T) {
	backend := &fakeBackend{replies: []string{`{"score": 72, "keywords": {"present": ["Go"], "missing": ["Kubernetes"]}, "suggestions": ["Add a skills section"]}`}}
	client := NewClientWithBackend(backend, noSleepPolicy(1), 0, nil)

	out, err := client.AnalyzeATSOptimization(context.Background(), "resume", "We need Go and Kubernetes")
	require.NoError(t, err)
	assert.Equal(t, 72, out.Score)
	assert.Equal(t, []string{"Kubernetes"}, out.Keywords.Missing)
	assert.Contains(t, backend.prompts[0].User, "We need Go and Kubernetes")

	backend.replies = []string{`{"score": 140, "keywords": {}}`}
	_, err = client.AnalyzeATSOptimization(context.Background(), "resume", "jd")
	assert.True(t, errors.IsAIResponse(err), "Expected out-of-range score to be rejected, got %v", err)
}
