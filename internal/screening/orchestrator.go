// Package screening chooses between the AI and rule-based analysis paths for
// each resume and falls back to the rule path whenever the AI path fails.
package screening

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"resumescreen/internal/ai"
	"resumescreen/internal/analyzer"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/scoring"
	"resumescreen/internal/transform"
	"resumescreen/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Mode is the analysis path a caller asks for
type Mode string

const (
	ModeAI   Mode = config.ModeAI
	ModeRule Mode = config.ModeRule
)

// ParseMode parses "ai" or "rule"; the empty string yields fallback
func ParseMode(s string, fallback Mode) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return fallback, nil
	case ModeAI:
		return ModeAI, nil
	case ModeRule:
		return ModeRule, nil
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
		fmt.Sprintf("invalid mode %q (must be %q or %q)", s, ModeAI, ModeRule), nil)
}

// AIAnalyzer is the AI analyze operation the orchestrator depends on
type AIAnalyzer interface {
	Analyze(ctx context.Context, text string, job *types.JobRequirements) (ai.AnalysisPayload, error)
}

// AIAvailability records once, at startup, whether the AI path can be used
type AIAvailability struct {
	available bool
}

// NewAIAvailability reports AI as available when the client has an analyze backend
func NewAIAvailability(client *ai.Client) AIAvailability {
	return AIAvailability{available: client.Available(config.OperationAnalyze)}
}

// StaticAIAvailability fixes availability explicitly
func StaticAIAvailability(available bool) AIAvailability {
	return AIAvailability{available: available}
}

// Available reports whether the AI path may be attempted
func (a AIAvailability) Available() bool {
	return a.available
}

// Metrics receives analysis outcomes
type Metrics interface {
	RecordAnalysis(ctx context.Context, requested string, aiPowered bool, duration time.Duration)
	RecordFallback(ctx context.Context, reason string)
	RecordMatchScore(ctx context.Context, score int)
}

// Orchestrator runs one analysis request down exactly one path
type Orchestrator struct {
	ai           AIAnalyzer
	availability AIAvailability
	rules        *analyzer.Analyzer
	metrics      Metrics
	cooldown     time.Duration
	sleep        func(context.Context, time.Duration) error
	logger       *errors.Logger
}

// NewOrchestrator wires the two analysis paths. aiAnalyzer may be nil when
// availability says AI is off.
func NewOrchestrator(aiAnalyzer AIAnalyzer, availability AIAvailability, rules *analyzer.Analyzer, logger *errors.Logger) *Orchestrator {
	if rules == nil {
		rules = analyzer.New(nil)
	}
	if aiAnalyzer == nil {
		availability = StaticAIAvailability(false)
	}
	return &Orchestrator{
		ai:           aiAnalyzer,
		availability: availability,
		rules:        rules,
		sleep:        ai.SleepContext,
		logger:       logger,
	}
}

// SetMetrics attaches a metrics sink
func (o *Orchestrator) SetMetrics(m Metrics) {
	o.metrics = m
}

// SetCooldown sets the pause Rank takes between consecutive AI analyses
func (o *Orchestrator) SetCooldown(d time.Duration) {
	o.cooldown = d
}

// SetSleep replaces the cooldown sleep
func (o *Orchestrator) SetSleep(sleep func(context.Context, time.Duration) error) {
	o.sleep = sleep
}

// AIAvailable reports whether AI-mode requests will try the AI path
func (o *Orchestrator) AIAvailable() bool {
	return o.availability.Available()
}

// UsesAI reports whether a request in mode would attempt the AI path
func (o *Orchestrator) UsesAI(mode Mode) bool {
	return mode == ModeAI && o.availability.Available()
}

// Analyze produces a ResumeAnalysis for text. AI failures never surface: the
// rule path takes over and AIPowered reports which path produced the result.
// The only error returned is the context's.
func (o *Orchestrator) Analyze(ctx context.Context, text string, job *types.JobRequirements, mode Mode) (types.ResumeAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return types.ResumeAnalysis{}, err
	}

	ctx, span := otel.Tracer("resumescreen.screening").Start(ctx, "screening.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("screening.mode", string(mode)),
		attribute.Bool("screening.ai_available", o.availability.Available()),
	)

	start := time.Now()
	analysis, err := o.analyze(ctx, text, job, mode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return types.ResumeAnalysis{}, err
	}

	span.SetAttributes(attribute.Bool("screening.ai_powered", analysis.AIPowered))
	if o.metrics != nil {
		o.metrics.RecordAnalysis(ctx, string(mode), analysis.AIPowered, time.Since(start))
	}
	return analysis, nil
}

func (o *Orchestrator) analyze(ctx context.Context, text string, job *types.JobRequirements, mode Mode) (types.ResumeAnalysis, error) {
	if !o.UsesAI(mode) {
		return o.rules.Analyze(text, job), nil
	}

	payload, err := o.ai.Analyze(ctx, text, job)
	if err == nil {
		analysis := transform.Transform(payload, job)
		analysis.WordCount = len(strings.Fields(text))
		return analysis, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && (stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded)) {
		return types.ResumeAnalysis{}, ctxErr
	}

	reason := fallbackReason(err)
	o.logger.LogError(err, "AI analysis failed, falling back to rule-based analysis", "reason", reason)
	if o.metrics != nil {
		o.metrics.RecordFallback(ctx, reason)
	}
	return o.rules.Analyze(text, job), nil
}

// AnalyzeAndScore analyzes text and, when job is present, scores the result
// with the scoring engine
func (o *Orchestrator) AnalyzeAndScore(ctx context.Context, text string, job *types.JobRequirements, mode Mode) (types.ResumeAnalysis, *types.MatchScore, error) {
	analysis, err := o.Analyze(ctx, text, job, mode)
	if err != nil {
		return types.ResumeAnalysis{}, nil, err
	}
	if job == nil {
		return analysis, nil, nil
	}

	score := scoring.Score(analysis, *job)
	if o.metrics != nil {
		o.metrics.RecordMatchScore(ctx, score.OverallScore)
	}
	return analysis, &score, nil
}

// fallbackReason is the error code of an AI failure, used as a metric label
func fallbackReason(err error) string {
	if appErr, ok := errors.As(err); ok {
		return strings.ToLower(appErr.Code)
	}
	return "unknown"
}
