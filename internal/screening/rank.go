package screening

import (
	"context"

	"resumescreen/internal/scoring"
	"resumescreen/internal/types"

	"golang.org/x/sync/errgroup"
)

// Submission is one resume offered for ranking
type Submission struct {
	ID       string
	FileName string
	Text     string
}

// Rank analyzes every submission and orders the candidates by match score.
// Rule analyses run on up to workers goroutines. The AI path runs one
// analysis at a time and pauses for the cooldown between analyses. The first
// analysis error cancels the rest.
func (o *Orchestrator) Rank(ctx context.Context, submissions []Submission, job types.JobRequirements, mode Mode, workers int) ([]types.RankedCandidate, error) {
	var (
		candidates []scoring.Candidate
		err        error
	)
	if o.UsesAI(mode) {
		workers = 1
		candidates, err = o.analyzeSequential(ctx, submissions, job, mode)
	} else {
		if workers < 1 {
			workers = 1
		}
		candidates, err = o.analyzeConcurrent(ctx, submissions, job, mode, workers)
	}
	if err != nil {
		return nil, err
	}

	ranked := scoring.Rank(candidates, job)
	if o.metrics != nil {
		for _, c := range ranked {
			o.metrics.RecordMatchScore(ctx, c.Score.OverallScore)
		}
	}
	o.logger.Info("Ranked candidates", "count", len(ranked), "mode", mode, "workers", workers)
	return ranked, nil
}

func (o *Orchestrator) analyzeSequential(ctx context.Context, submissions []Submission, job types.JobRequirements, mode Mode) ([]scoring.Candidate, error) {
	candidates := make([]scoring.Candidate, 0, len(submissions))
	for i, sub := range submissions {
		if i > 0 && o.cooldown > 0 {
			if err := o.sleep(ctx, o.cooldown); err != nil {
				return nil, err
			}
		}
		analysis, err := o.Analyze(ctx, sub.Text, &job, mode)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, scoring.Candidate{ID: sub.ID, FileName: sub.FileName, Analysis: analysis})
	}
	return candidates, nil
}

func (o *Orchestrator) analyzeConcurrent(ctx context.Context, submissions []Submission, job types.JobRequirements, mode Mode, workers int) ([]scoring.Candidate, error) {
	candidates := make([]scoring.Candidate, len(submissions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sub := range submissions {
		g.Go(func() error {
			analysis, err := o.Analyze(gctx, sub.Text, &job, mode)
			if err != nil {
				return err
			}
			candidates[i] = scoring.Candidate{ID: sub.ID, FileName: sub.FileName, Analysis: analysis}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}
