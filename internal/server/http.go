package server

import (
	"time"

	"resumescreen/internal/app"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"
)

// AnalyzeRequest is the body of POST /analyze and POST /score. The job is
// given inline or by the ID of a stored job.
type AnalyzeRequest struct {
	ResumeText string                 `json:"resumeText" validate:"required"`
	Job        *types.JobRequirements `json:"job,omitempty"`
	JobID      string                 `json:"jobId,omitempty"`
	Mode       string                 `json:"mode,omitempty" validate:"omitempty,oneof=ai rule"`
}

// ResumeInput is one resume inside a multi-resume request
type ResumeInput struct {
	ID       string `json:"id,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Text     string `json:"text" validate:"required"`
}

// RankRequest is the body of POST /rank
type RankRequest struct {
	Resumes []ResumeInput          `json:"resumes" validate:"required,min=1,dive"`
	Job     *types.JobRequirements `json:"job,omitempty"`
	JobID   string                 `json:"jobId,omitempty"`
	Mode    string                 `json:"mode,omitempty" validate:"omitempty,oneof=ai rule"`
}

// BatchFileInput is one uploaded document. Content is base64 in JSON.
type BatchFileInput struct {
	FileName string `json:"fileName" validate:"required"`
	MIMEType string `json:"mimeType,omitempty"`
	Content  []byte `json:"content" validate:"required"`
}

// BatchRequest is the body of POST /batch
type BatchRequest struct {
	Files []BatchFileInput       `json:"files" validate:"required,min=1,dive"`
	Job   *types.JobRequirements `json:"job,omitempty"`
	JobID string                 `json:"jobId,omitempty"`
	Mode  string                 `json:"mode,omitempty" validate:"omitempty,oneof=ai rule"`
}

// ExtractRequest is the body of POST /extract
type ExtractRequest struct {
	ResumeText  string `json:"resumeText" validate:"required"`
	TopKeywords int    `json:"topKeywords,omitempty" validate:"omitempty,min=1,max=100"`
}

// QuestionsRequest is the body of POST /questions
type QuestionsRequest struct {
	ResumeText string   `json:"resumeText" validate:"required"`
	JobTitle   string   `json:"jobTitle,omitempty"`
	FocusAreas []string `json:"focusAreas,omitempty"`
}

// CompareRequest is the body of POST /compare
type CompareRequest struct {
	Resumes []ResumeInput          `json:"resumes" validate:"required,min=2,dive"`
	Job     *types.JobRequirements `json:"job,omitempty"`
	JobID   string                 `json:"jobId,omitempty"`
}

// ATSRequest is the body of POST /ats
type ATSRequest struct {
	ResumeText     string `json:"resumeText" validate:"required"`
	JobDescription string `json:"jobDescription" validate:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Screening services shared with the CLI
	Services *app.Services

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Parallel rule analyses for /rank
	RankWorkers int

	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
	RankWorkers    int
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(services *app.Services, cfg ServerConfig, logger *errors.Logger) *Server {
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.Window, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		Services:       services,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		RankWorkers:    cfg.RankWorkers,
		Logger:         logger,
	}
}
