// Package app builds the screening services shared by the CLI and the HTTP
// server from one loaded configuration.
package app

import (
	"context"
	stdErrors "errors"
	"fmt"

	"resumescreen/internal/ai"
	"resumescreen/internal/analyzer"
	"resumescreen/internal/batch"
	"resumescreen/internal/common"
	"resumescreen/internal/config"
	"resumescreen/internal/document"
	"resumescreen/internal/errors"
	"resumescreen/internal/events"
	"resumescreen/internal/extract"
	"resumescreen/internal/observability"
	"resumescreen/internal/screening"
	"resumescreen/internal/storage"
)

// Options controls which optional services are started
type Options struct {
	Version string
	// Observability starts the telemetry providers configured under
	// observability. Short CLI runs leave it off.
	Observability bool
	// Persist opens the configured store. When the database is disabled an
	// in-memory store is used.
	Persist bool
}

// Services holds the wired screening components
type Services struct {
	Config    *config.Config
	Logger    *errors.Logger
	AI        *ai.Client
	Rules     *analyzer.Analyzer
	Entities  *extract.Extractor
	Screener  *screening.Orchestrator
	Documents document.Extractor
	Files     *common.FileProcessor
	Store     storage.Store
	Events    *events.Dispatcher
	Batch     *batch.Processor
	Telemetry *observability.Telemetry
}

// New wires every component. On error the services created so far are closed.
func New(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts Options) (*Services, error) {
	s := &Services{Config: cfg, Logger: logger}

	if err := s.initObservability(opts); err != nil {
		return nil, err
	}

	client, err := ai.NewClient(ctx, cfg, logger)
	if err != nil {
		s.closeQuietly()
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}
	s.AI = client

	s.Entities = extract.NewDefault()
	s.Rules = analyzer.New(s.Entities)
	s.Screener = screening.NewOrchestrator(client, screening.NewAIAvailability(client), s.Rules, logger)
	s.Screener.SetCooldown(cfg.Screening.BatchCooldown)
	if metrics := s.Telemetry.Metrics(); metrics != nil {
		client.SetRecorder(metrics)
		s.Screener.SetMetrics(metrics)
	}

	s.Documents = document.NewExtractor(logger)
	s.Files = common.NewFileProcessor(logger, s.Documents, cfg.App.MaxFileSize)

	if err := s.initStore(opts); err != nil {
		s.closeQuietly()
		return nil, err
	}

	s.Events = events.NewDispatcher(s.eventTarget(), cfg.Events.BufferSize, logger)
	s.Batch = s.newBatchProcessor()

	logger.Info("Screening services ready",
		"ai_available", s.Screener.AIAvailable(),
		"default_mode", cfg.Screening.DefaultMode,
		"persistence", s.Store != nil,
		"webhook", cfg.Events.WebhookURL != "")

	return s, nil
}

func (s *Services) initObservability(opts Options) error {
	settings := observability.SettingsFrom(s.Config, opts.Version)
	if !opts.Observability {
		settings.Enabled = false
	}
	telemetry, err := observability.NewTelemetry(settings, s.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	s.Telemetry = telemetry
	return nil
}

func (s *Services) initStore(opts Options) error {
	if !opts.Persist {
		return nil
	}
	if !s.Config.Database.Enabled {
		s.Store = storage.NewMemoryStore()
		return nil
	}
	store, err := storage.OpenPostgres(s.Config.Database, s.Logger)
	if err != nil {
		return err
	}
	s.Store = store
	return nil
}

// eventTarget logs every event and also posts it when a webhook is configured
func (s *Services) eventTarget() events.Emitter {
	logEmitter := events.NewLogEmitter(s.Logger)
	if s.Config.Events.WebhookURL == "" {
		return logEmitter
	}
	return events.MultiEmitter{
		logEmitter,
		events.NewWebhookEmitter(s.Config.Events.WebhookURL, s.Config.Events.WebhookSecret, s.Config.Events.Timeout),
	}
}

func (s *Services) newBatchProcessor() *batch.Processor {
	opts := []batch.Option{
		batch.WithEmitter(s.Events),
		batch.WithCooldown(s.Config.Screening.BatchCooldown),
	}
	if s.Store != nil {
		opts = append(opts, batch.WithStore(s.Store), batch.WithJobLookup(s.Store))
	}
	if metrics := s.Telemetry.Metrics(); metrics != nil {
		opts = append(opts, batch.WithMetrics(metrics))
	}
	return batch.NewProcessor(s.Screener, s.Documents, s.Logger, opts...)
}

// ResolveMode parses a requested mode, falling back to the configured default
func (s *Services) ResolveMode(requested string) (screening.Mode, error) {
	return screening.ParseMode(requested, screening.Mode(s.Config.Screening.DefaultMode))
}

// Close drains pending events, closes the store and flushes telemetry
func (s *Services) Close(ctx context.Context) error {
	var errs []error
	if s.Events != nil {
		if err := s.Events.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
		if dropped := s.Events.Dropped(); dropped > 0 {
			s.Logger.Warn("Progress events were dropped", "count", dropped)
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.Telemetry != nil {
		if err := s.Telemetry.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("observability: %w", err))
		}
	}
	return stdErrors.Join(errs...)
}

func (s *Services) closeQuietly() {
	if err := s.Close(context.Background()); err != nil {
		s.Logger.LogError(err, "Failed to release services after startup error")
	}
}
