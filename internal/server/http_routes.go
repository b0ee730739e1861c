package server

import (
	"net/http"
)

type route struct {
	pattern     string
	handler     http.HandlerFunc
	public      bool
	description string
}

// routes lists every endpoint. Public routes skip rate limiting, auth and
// the size limit.
func (s *Server) routes() []route {
	return []route{
		{"GET /health", s.healthHandler, true, "Health check"},
		{"GET /stats", s.statsHandler, true, "Server statistics"},
		{"POST /analyze", s.analyzeHandler, false, "Analyze a resume"},
		{"POST /score", s.scoreHandler, false, "Score a resume against a job"},
		{"POST /rank", s.rankHandler, false, "Rank resumes against a job"},
		{"POST /extract", s.extractHandler, false, "Extract entities and keywords from a resume"},
		{"POST /batch", s.batchHandler, false, "Screen a batch of resume files"},
		{"POST /upload", s.uploadHandler, false, "Screen one uploaded resume file (multipart)"},
		{"POST /questions", s.questionsHandler, false, "Generate interview questions (AI)"},
		{"POST /compare", s.compareHandler, false, "Compare candidates (AI)"},
		{"POST /ats", s.atsHandler, false, "ATS optimization report (AI)"},
		{"POST /jobs", s.createJobHandler, false, "Store a job"},
		{"GET /jobs/{id}", s.getJobHandler, false, "Fetch a stored job"},
		{"GET /resumes/{id}", s.getResumeHandler, false, "Fetch a screened resume"},
		{"GET /batches/{id}", s.getBatchHandler, false, "Fetch the resumes of a batch"},
	}
}

// setupRoutes registers every route on a new mux
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	for _, rt := range s.routes() {
		handler := rt.handler
		if !rt.public {
			handler = s.protected(handler)
		}
		mux.HandleFunc(rt.pattern, handler)
	}
	return mux
}

// protected applies rate limiting, authentication and the request size limit
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.rateLimitMiddleware(s.authMiddleware(s.requestSizeLimitMiddleware(next)))
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r))
			writeErrorResponse(w, "Missing API key", "", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", clientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
