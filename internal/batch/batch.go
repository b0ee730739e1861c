// Package batch screens many resumes against one job, one at a time.
package batch

import (
	"context"
	"fmt"
	"time"

	"resumescreen/internal/ai"
	"resumescreen/internal/document"
	"resumescreen/internal/errors"
	"resumescreen/internal/events"
	"resumescreen/internal/scoring"
	"resumescreen/internal/screening"
	"resumescreen/internal/storage"
	"resumescreen/internal/types"

	"github.com/google/uuid"
)

// DefaultCooldown separates consecutive AI-backed items
const DefaultCooldown = 3 * time.Second

// Progress values reported for single-resume milestones
const (
	progressStarted   = 0
	progressParsed    = 25
	progressAnalyzing = 50
	progressDone      = 100
)

// JobLookup resolves a job ID to its requirements. A nil result with a nil
// error means the job does not exist.
type JobLookup interface {
	GetJobRequirements(ctx context.Context, jobID string) (*types.JobRequirements, error)
}

// Store persists each resume as it moves through the pipeline
type Store interface {
	SaveResume(ctx context.Context, record *storage.ResumeRecord) error
}

// Analyzer is the analysis entry point used for every item
type Analyzer interface {
	AnalyzeAndScore(ctx context.Context, text string, job *types.JobRequirements, mode screening.Mode) (types.ResumeAnalysis, *types.MatchScore, error)
	UsesAI(mode screening.Mode) bool
}

// Metrics receives per-item outcomes
type Metrics interface {
	RecordBatchItem(ctx context.Context, status string, duration time.Duration)
}

// File is one resume to screen
type File struct {
	Name     string
	Data     []byte
	MIMEType string
}

// Request describes a batch. Job takes precedence over JobID.
type Request struct {
	JobID string
	Job   *types.JobRequirements
	Mode  screening.Mode
}

// Processor runs batches sequentially
type Processor struct {
	analyzer  Analyzer
	extractor document.Extractor
	jobs      JobLookup
	store     Store
	emitter   events.Emitter
	metrics   Metrics
	cooldown  time.Duration
	sleep     func(context.Context, time.Duration) error
	logger    *errors.Logger
}

// Option configures a Processor
type Option func(*Processor)

// WithJobLookup resolves Request.JobID
func WithJobLookup(jobs JobLookup) Option {
	return func(p *Processor) { p.jobs = jobs }
}

// WithStore persists every item
func WithStore(store Store) Option {
	return func(p *Processor) { p.store = store }
}

// WithEmitter reports progress events
func WithEmitter(emitter events.Emitter) Option {
	return func(p *Processor) { p.emitter = emitter }
}

// WithMetrics records item outcomes
func WithMetrics(metrics Metrics) Option {
	return func(p *Processor) { p.metrics = metrics }
}

// WithCooldown sets the pause between consecutive AI-backed items
func WithCooldown(d time.Duration) Option {
	return func(p *Processor) { p.cooldown = d }
}

// WithSleep replaces the cooldown sleep
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(p *Processor) { p.sleep = sleep }
}

// NewProcessor creates a batch processor
func NewProcessor(analyzer Analyzer, extractor document.Extractor, logger *errors.Logger, opts ...Option) *Processor {
	p := &Processor{
		analyzer:  analyzer,
		extractor: extractor,
		emitter:   events.NopEmitter{},
		cooldown:  DefaultCooldown,
		sleep:     ai.SleepContext,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process screens files in order. A failing item is recorded and the batch
// moves on; only an unknown job or cancellation stops it. On cancellation the
// items finished so far are returned with the context's error.
func (p *Processor) Process(ctx context.Context, files []File, req Request) (*types.BatchResult, error) {
	job, err := p.resolveJob(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &types.BatchResult{
		BatchID: uuid.NewString(),
		JobID:   req.JobID,
		Total:   len(files),
		Items:   make([]types.BatchItemResult, 0, len(files)),
	}
	logger := p.logger.With("batch_id", result.BatchID)
	usesAI := p.analyzer.UsesAI(req.Mode)

	logger.Info("Batch started", "files", len(files), "mode", string(req.Mode), "ai", usesAI)
	p.emit(ctx, events.BatchStarted, events.BatchItemProgress{
		BatchID: result.BatchID,
		Total:   len(files),
		Message: fmt.Sprintf("Processing %d resumes", len(files)),
	})

	aiCalled := false
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("Batch cancelled", "processed", i, "total", len(files))
			return p.finish(ctx, result, job), err
		}

		// Pace AI-backed analyses to stay under the provider's rate limit
		if usesAI && aiCalled && p.cooldown > 0 {
			if err := p.sleep(ctx, p.cooldown); err != nil {
				return p.finish(ctx, result, job), err
			}
		}

		item, reachedAnalysis, err := p.processItem(ctx, file, result.BatchID, req, job)
		if err != nil {
			return p.finish(ctx, result, job), err
		}
		aiCalled = reachedAnalysis

		result.Items = append(result.Items, item)
		if item.Status == types.StatusCompleted {
			result.Succeeded++
		} else {
			result.Failed++
		}

		message := "Processed " + file.Name
		if item.Error != "" {
			message = item.Error
		}
		p.emit(ctx, events.BatchProgress, events.BatchItemProgress{
			BatchID:  result.BatchID,
			Current:  i + 1,
			Total:    len(files),
			FileName: file.Name,
			Progress: (i + 1) * 100 / len(files),
			Message:  message,
		})
	}

	logger.Info("Batch completed", "succeeded", result.Succeeded, "failed", result.Failed)
	return p.finish(ctx, result, job), nil
}

func (p *Processor) resolveJob(ctx context.Context, req Request) (*types.JobRequirements, error) {
	if req.Job != nil {
		return req.Job, nil
	}
	if req.JobID == "" {
		return nil, nil
	}
	if p.jobs == nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "job lookup is not configured", nil)
	}

	job, err := p.jobs.GetJobRequirements(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.NewValidationError(errors.ErrCodeNotFound, "job not found: "+req.JobID, nil)
	}
	return job, nil
}

// processItem screens one file. The bool reports whether analysis ran. A
// returned error is always the context's; every other failure is recorded
// on the item.
func (p *Processor) processItem(ctx context.Context, file File, batchID string, req Request, job *types.JobRequirements) (types.BatchItemResult, bool, error) {
	start := time.Now()
	record := storage.NewResumeRecord(file.Name, batchID, req.JobID)
	item := types.BatchItemResult{
		ResumeID: record.ID.String(),
		FileName: file.Name,
		Status:   types.StatusProcessing,
	}
	p.save(ctx, record)
	p.emitResume(ctx, events.ResumeStarted, item, progressStarted, "Processing "+file.Name)

	mimeType := file.MIMEType
	if mimeType == "" {
		mimeType = document.TypeForFile(file.Name)
	}
	text, err := p.extractor.ExtractText(ctx, file.Data, mimeType)
	if err != nil {
		if ctx.Err() != nil {
			return item, false, ctx.Err()
		}
		p.fail(ctx, record, &item, err, start)
		return item, false, nil
	}
	record.Text = text
	p.emitResume(ctx, events.ResumeParsed, item, progressParsed, "Resume parsed")

	p.emitResume(ctx, events.ResumeAnalyzing, item, progressAnalyzing, "Analyzing resume")
	analysis, score, err := p.analyzer.AnalyzeAndScore(ctx, text, job, req.Mode)
	if err != nil {
		return item, true, err
	}

	if err := record.Complete(analysis, score); err != nil {
		p.fail(ctx, record, &item, err, start)
		return item, true, nil
	}
	p.save(ctx, record)

	item.Status = types.StatusCompleted
	item.Analysis = &analysis
	item.MatchScore = score
	p.emitResume(ctx, events.ResumeCompleted, item, progressDone, "Analysis complete")
	p.record(ctx, item.Status, start)
	return item, true, nil
}

func (p *Processor) fail(ctx context.Context, record *storage.ResumeRecord, item *types.BatchItemResult, err error, start time.Time) {
	message := userMessage(err)
	p.logger.LogError(err, "Batch item failed", "file", item.FileName)

	record.Fail(message)
	p.save(ctx, record)

	item.Status = types.StatusFailed
	item.Error = message
	p.emitResume(ctx, events.ResumeFailed, *item, progressDone, message)
	p.record(ctx, item.Status, start)
}

// finish ranks the completed items when there is a job to rank against
func (p *Processor) finish(ctx context.Context, result *types.BatchResult, job *types.JobRequirements) *types.BatchResult {
	if job != nil {
		var ranked []types.RankedCandidate
		for _, item := range result.Items {
			if item.Status != types.StatusCompleted || item.MatchScore == nil {
				continue
			}
			ranked = append(ranked, types.RankedCandidate{
				CandidateID: item.ResumeID,
				Name:        item.Analysis.Contact.Name,
				FileName:    item.FileName,
				AIPowered:   item.Analysis.AIPowered,
				Score:       *item.MatchScore,
			})
		}
		result.Ranking = scoring.AssignRanks(ranked)
	}

	p.emit(ctx, events.BatchCompleted, events.BatchItemProgress{
		BatchID:  result.BatchID,
		Current:  len(result.Items),
		Total:    result.Total,
		Progress: progressDone,
		Message:  fmt.Sprintf("%d succeeded, %d failed", result.Succeeded, result.Failed),
	})
	return result
}

func (p *Processor) save(ctx context.Context, record *storage.ResumeRecord) {
	if p.store == nil {
		return
	}
	// Persistence problems are logged; they never fail the item
	if err := p.store.SaveResume(ctx, record); err != nil {
		p.logger.LogError(err, "Failed to persist resume", "resume_id", record.ID.String())
	}
}

func (p *Processor) emitResume(ctx context.Context, name string, item types.BatchItemResult, progress int, message string) {
	p.emit(ctx, name, events.ResumeProgress{
		ResumeID: item.ResumeID,
		Status:   string(item.Status),
		Progress: progress,
		Message:  message,
	})
}

func (p *Processor) emit(ctx context.Context, name string, payload any) {
	if err := p.emitter.Emit(ctx, name, payload); err != nil {
		p.logger.Warn("Failed to emit progress event", "event", name, "error", err)
	}
}

func (p *Processor) record(ctx context.Context, status types.BatchStatus, start time.Time) {
	if p.metrics != nil {
		p.metrics.RecordBatchItem(ctx, string(status), time.Since(start))
	}
}

// userMessage is the message shown next to a failed file
func userMessage(err error) string {
	if appErr, ok := errors.As(err); ok {
		if appErr.Cause != nil && errors.IsParse(err) {
			return appErr.Message + ": " + appErr.Cause.Error()
		}
		return appErr.Message
	}
	return err.Error()
}
