package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumescreen/internal/analyzer"
	"resumescreen/internal/app"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/extract"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const janeResume = `Jane Doe
jane@example.com | linkedin.com/in/janedoe
Senior Software Engineer with 6 years of experience building Go and Python services on AWS.
Bachelor of Science in Computer Science, State University.
Reduced infrastructure cost by 30% and mentored 5 engineers.`

func newTestServer(t *testing.T, mutate func(*config.Config, *ServerConfig)) *httptest.Server {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Screening.BatchCooldown = 0

	serverCfg := ServerConfig{Version: "test", MaxRequestSize: 1 << 20, RankWorkers: 2}
	if mutate != nil {
		mutate(cfg, &serverCfg)
	}

	services, err := app.New(context.Background(), cfg, errors.NewNopLogger(), app.Options{Persist: true})
	require.NoError(t, err)

	srv := NewServer(services, serverCfg, errors.NewNopLogger())
	ts := httptest.NewServer(srv.setupRoutes())
	t.Cleanup(func() {
		ts.Close()
		if srv.RateLimiter != nil {
			srv.RateLimiter.Close()
		}
		_ = services.Close(context.Background())
	})
	return ts
}

func postJSON(t *testing.T, url string, body any, headers ...string) *http.Response {
	t.Helper()
	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(encoded))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthWithoutAI(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["ai_available"])

	models, ok := body["ai_models"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, models, len(config.Operations))
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/analyze", AnalyzeRequest{
		ResumeText: janeResume,
		Job:        &types.JobRequirements{Skills: []string{"Go", "AWS"}, MinExperience: 5},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	analysis := decode[types.ResumeAnalysis](t, resp)
	assert.False(t, analysis.AIPowered)
	assert.Equal(t, "jane@example.com", analysis.Contact.Email)
	require.NotNil(t, analysis.MatchScore)
	assert.Positive(t, analysis.MatchScore.OverallScore)
}

func TestAnalyzeEndpointKeepsBothScores(t *testing.T) {
	ts := newTestServer(t, nil)
	job := types.JobRequirements{Skills: []string{"Go", "AWS"}, MinExperience: 5}

	resp := postJSON(t, ts.URL+"/analyze", AnalyzeRequest{ResumeText: janeResume, Job: &job})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	analysis := decode[types.ResumeAnalysis](t, resp)

	require.NotNil(t, analysis.MatchScore)
	require.NotNil(t, analysis.EngineScore)
	assert.Nil(t, analysis.MatchScore.Breakdown, "Expected the inline score to carry no breakdown")
	require.NotNil(t, analysis.EngineScore.Breakdown, "Expected the weighted score breakdown")

	inline := analyzer.MatchScore(analysis, job)
	if analysis.MatchScore.OverallScore != inline.OverallScore {
		t.Errorf("Expected inline score %d, got %d", inline.OverallScore, analysis.MatchScore.OverallScore)
	}
}

func TestExtractEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/extract", ExtractRequest{ResumeText: janeResume, TopKeywords: 4})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entities := decode[extract.Entities](t, resp)
	assert.Equal(t, []string{"jane@example.com"}, entities.Emails)
	assert.Len(t, entities.Achievements, 1)
	assert.Len(t, entities.Keywords, 4)

	bad := postJSON(t, ts.URL+"/extract", ExtractRequest{ResumeText: janeResume, TopKeywords: 500})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestRequestValidation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name     string
		path     string
		body     any
		expected int
	}{
		{"missing resume text", "/analyze", AnalyzeRequest{}, http.StatusBadRequest},
		{"invalid mode", "/analyze", AnalyzeRequest{ResumeText: "x", Mode: "fast"}, http.StatusBadRequest},
		{"score without job", "/score", AnalyzeRequest{ResumeText: janeResume}, http.StatusBadRequest},
		{"unknown job id", "/score", AnalyzeRequest{ResumeText: janeResume, JobID: "nope"}, http.StatusNotFound},
		{"negative experience", "/score", AnalyzeRequest{ResumeText: janeResume, Job: &types.JobRequirements{MinExperience: -1}}, http.StatusBadRequest},
		{"compare needs two resumes", "/compare", CompareRequest{Resumes: []ResumeInput{{Text: "a"}}, Job: &types.JobRequirements{}}, http.StatusBadRequest},
		{"questions without AI", "/questions", QuestionsRequest{ResumeText: janeResume}, http.StatusServiceUnavailable},
		{"ats without AI", "/ats", ATSRequest{ResumeText: janeResume, JobDescription: "Go developer"}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, resp.StatusCode)
			}
			body := decode[ErrorResponse](t, resp)
			assert.NotEmpty(t, body.Error)
		})
	}

	t.Run("wrong content type", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/analyze", "text/plain", bytes.NewBufferString("{}"))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRankEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/rank", RankRequest{
		Resumes: []ResumeInput{
			{ID: "cashier", Text: "John Smith\nCashier with 1 year of retail experience."},
			{ID: "jane", Text: janeResume},
		},
		Job:  &types.JobRequirements{Skills: []string{"Go", "Python", "AWS"}, MinExperience: 5},
		Mode: "rule",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ranked := decode[[]types.RankedCandidate](t, resp)
	require.Len(t, ranked, 2)
	assert.Equal(t, "jane", ranked[0].CandidateID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestJobsBatchAndLookups(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/jobs", types.Job{
		Title:        "Backend Engineer",
		Requirements: types.JobRequirements{Skills: []string{"Go"}, MinExperience: 2},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	job := decode[types.Job](t, resp)
	require.NotEmpty(t, job.ID)

	resp = postJSON(t, ts.URL+"/batch", BatchRequest{
		JobID: job.ID,
		Mode:  "rule",
		Files: []BatchFileInput{
			{FileName: "jane.txt", Content: []byte(janeResume)},
			{FileName: "blank.txt", Content: []byte("  ")},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[types.BatchResult](t, resp)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Items, 2)

	batchResp, err := http.Get(ts.URL + "/batches/" + result.BatchID)
	require.NoError(t, err)
	defer func() { _ = batchResp.Body.Close() }()
	require.Equal(t, http.StatusOK, batchResp.StatusCode)

	resumeResp, err := http.Get(ts.URL + "/resumes/" + result.Items[0].ResumeID)
	require.NoError(t, err)
	defer func() { _ = resumeResp.Body.Close() }()
	require.Equal(t, http.StatusOK, resumeResp.StatusCode)
	view := decode[resumeView](t, resumeResp)
	assert.Equal(t, types.StatusCompleted, view.Status)
	require.NotNil(t, view.MatchScore)

	missing, err := http.Get(ts.URL + "/jobs/unknown")
	require.NoError(t, err)
	defer func() { _ = missing.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestUploadEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	upload := func(fileName, content string) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(uploadFormField, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.WriteField("mode", "rule"))
		require.NoError(t, mw.Close())

		resp, err := http.Post(ts.URL+"/upload", mw.FormDataContentType(), &buf)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := upload("jane.html", "<html><body><h1>Jane Doe</h1><p>jane@example.com</p><p>Go developer</p></body></html>")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.NotEmpty(t, body["resumeId"])
	assert.Equal(t, "jane.html", body["fileName"])

	resp = upload("photo.png", "not a resume")
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	ts := newTestServer(t, func(_ *config.Config, sc *ServerConfig) {
		sc.APIKeys = []string{"test-key-123456"}
	})
	body := AnalyzeRequest{ResumeText: janeResume}

	tests := []struct {
		name     string
		headers  []string
		expected int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", []string{"X-API-Key", "nope"}, http.StatusUnauthorized},
		{"header key", []string{"X-API-Key", "test-key-123456"}, http.StatusOK},
		{"bearer token", []string{"Authorization", "Bearer test-key-123456"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/analyze", body, tt.headers...)
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = health.Body.Close() }()
	assert.Equal(t, http.StatusOK, health.StatusCode, "Health stays public")
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(_ *config.Config, sc *ServerConfig) {
		sc.RateLimit = &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1, ByIP: true}
	})
	body := AnalyzeRequest{ResumeText: janeResume, Mode: "rule"}

	first := postJSON(t, ts.URL+"/analyze", body)
	assert.Equal(t, http.StatusOK, first.StatusCode)

	second := postJSON(t, ts.URL+"/analyze", body)
	assert.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	assert.Equal(t, "1", second.Header.Get("Retry-After"))
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", errors.NewValidationError(errors.ErrCodeInvalidRequest, "bad", nil), http.StatusBadRequest},
		{"not found", errors.NewStorageError(errors.ErrCodeNotFound, "missing", nil), http.StatusNotFound},
		{"unsupported", errors.NewUnsupportedFormatError("image/png"), http.StatusUnsupportedMediaType},
		{"parse", errors.NewParseError("Failed to parse resume file", nil), http.StatusUnprocessableEntity},
		{"no credentials", errors.NewConfigurationError("no key"), http.StatusServiceUnavailable},
		{"rate limited", errors.NewRateLimitError("slow down", nil), http.StatusTooManyRequests},
		{"bad reply", errors.NewAIResponseError("not json", nil), http.StatusBadGateway},
		{"retries", errors.NewMaxRetriesExceededError(3, nil), http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"plain", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestRateLimitKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "bogus, 203.0.113.9")

	assert.Equal(t, "ip:203.0.113.9", rateLimitKey(req, true, true))
	assert.Equal(t, "", rateLimitKey(req, true, false))

	req.Header.Set("X-API-Key", "abc")
	assert.Equal(t, "api:abc", rateLimitKey(req, true, true))
}

func newBareServer(t *testing.T, serverCfg ServerConfig) *Server {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	services, err := app.New(context.Background(), cfg, errors.NewNopLogger(), app.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = services.Close(context.Background()) })
	return NewServer(services, serverCfg, errors.NewNopLogger())
}

func TestBannerListsEveryRoute(t *testing.T) {
	srv := newBareServer(t, ServerConfig{Version: "test"})
	defer srv.RateLimiter.Close()

	var out bytes.Buffer
	srv.writeBanner(&out)
	banner := out.String()

	for _, rt := range srv.routes() {
		_, path, _ := strings.Cut(rt.pattern, " ")
		assert.Contains(t, banner, path)
	}
	assert.Contains(t, banner, "AI analysis: DISABLED")
	assert.Contains(t, banner, "WARNING: screening endpoints are publicly accessible")
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := newBareServer(t, ServerConfig{Version: "test"})
	defer srv.RateLimiter.Close()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, srv.httpServer(), listener) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected serve to return after cancellation")
	}
}
