package cli

import (
	"resumescreen/internal/app"
	"resumescreen/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the screening HTTP API",
	Long: `Start an HTTP server exposing the screening operations.

Available endpoints:
- POST /analyze, /score, /rank: analyze, score and rank resume text
- POST /batch: screen base64-encoded resume files one at a time
- POST /upload: screen one multipart-uploaded resume file
- POST /questions, /compare, /ats: AI-only operations
- POST /jobs, GET /jobs/{id}: store and fetch jobs
- GET /resumes/{id}, /batches/{id}: fetch screened resumes
- GET /health: health check including AI models and database
- GET /stats: server statistics and rate limiting info`,
	RunE: runServe,
}

var (
	serveHost string
	servePort string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if servePort != "" {
		cfg.Server.Port = servePort
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}

	return withServices(cmd, app.Options{Persist: true, Observability: true}, func(services *app.Services) error {
		serverCfg := server.ServerConfig{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Version:        Version,
			APIKeys:        cfg.Server.APIKeys,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxRequestSize: cfg.App.MaxFileSize,
			RateLimit:      &cfg.Server.RateLimit,
			RankWorkers:    cfg.Screening.RankWorkers,
		}
		return server.NewServer(services, serverCfg, logger).Start(cmd.Context())
	})
}
