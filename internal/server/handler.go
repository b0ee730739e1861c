package server

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"resumescreen/internal/ai"
	"resumescreen/internal/batch"
	"resumescreen/internal/document"
	"resumescreen/internal/errors"
	"resumescreen/internal/screening"
	"resumescreen/internal/storage"
	"resumescreen/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uploadFormField = "resume"

// startSpan opens an API span named after the operation
func (s *Server) startSpan(r *http.Request, operation string) (context.Context, trace.Span) {
	ctx, span := s.Services.Telemetry.Tracer("resumescreen.api").Start(r.Context(), "api."+operation)
	span.SetAttributes(attribute.String("operation", operation))
	return ctx, span
}

// fail records err on the span and writes the error response
func (s *Server) fail(w http.ResponseWriter, span trace.Span, title string, err error) {
	span.RecordError(err)
	if appErr, ok := errors.As(err); ok {
		span.SetAttributes(attribute.String("error.type", string(appErr.Type)))
	}
	s.writeError(w, title, err)
}

// resolveJob returns the inline requirements or those of the stored job.
// Both empty yields nil.
func (s *Server) resolveJob(ctx context.Context, job *types.JobRequirements, jobID string) (*types.JobRequirements, error) {
	if job != nil {
		if err := job.Validate(); err != nil {
			return nil, err
		}
		return job, nil
	}
	if jobID == "" {
		return nil, nil
	}
	requirements, err := s.Services.Store.GetJobRequirements(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if requirements == nil {
		return nil, errors.NewValidationError(errors.ErrCodeNotFound, "job not found", nil).WithContext("job_id", jobID)
	}
	return requirements, nil
}

// requireJob is resolveJob for endpoints that cannot run without a job
func (s *Server) requireJob(ctx context.Context, job *types.JobRequirements, jobID string) (*types.JobRequirements, error) {
	requirements, err := s.resolveJob(ctx, job, jobID)
	if err != nil {
		return nil, err
	}
	if requirements == nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "job or jobId is required", nil)
	}
	return requirements, nil
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "analyze")
	defer span.End()

	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}
	mode, err := s.Services.ResolveMode(req.Mode)
	if err != nil {
		s.fail(w, span, "Invalid mode", err)
		return
	}
	job, err := s.resolveJob(ctx, req.Job, req.JobID)
	if err != nil {
		s.fail(w, span, "Invalid job", err)
		return
	}
	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.String("screening.mode", string(mode)),
	)

	analysis, score, err := s.Services.Screener.AnalyzeAndScore(ctx, document.Clean(req.ResumeText), job, mode)
	if err != nil {
		s.fail(w, span, "Failed to analyze resume", err)
		return
	}
	analysis.EngineScore = score

	span.SetAttributes(attribute.Bool("screening.ai_powered", analysis.AIPowered))
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) scoreHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "score")
	defer span.End()

	var req AnalyzeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}
	mode, err := s.Services.ResolveMode(req.Mode)
	if err != nil {
		s.fail(w, span, "Invalid mode", err)
		return
	}
	job, err := s.requireJob(ctx, req.Job, req.JobID)
	if err != nil {
		s.fail(w, span, "Invalid job", err)
		return
	}

	_, score, err := s.Services.Screener.AnalyzeAndScore(ctx, document.Clean(req.ResumeText), job, mode)
	if err != nil {
		s.fail(w, span, "Failed to score resume", err)
		return
	}

	span.SetAttributes(attribute.Int("score.overall", score.OverallScore))
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) rankHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "rank")
	defer span.End()

	var req RankRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}
	mode, err := s.Services.ResolveMode(req.Mode)
	if err != nil {
		s.fail(w, span, "Invalid mode", err)
		return
	}
	job, err := s.requireJob(ctx, req.Job, req.JobID)
	if err != nil {
		s.fail(w, span, "Invalid job", err)
		return
	}

	submissions := make([]screening.Submission, len(req.Resumes))
	for i, resume := range req.Resumes {
		submissions[i] = screening.Submission{ID: resume.ID, FileName: resume.FileName, Text: document.Clean(resume.Text)}
	}
	span.SetAttributes(attribute.Int("request.resume_count", len(submissions)))

	ranked, err := s.Services.Screener.Rank(ctx, submissions, *job, mode, s.RankWorkers)
	if err != nil {
		s.fail(w, span, "Failed to rank resumes", err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "batch")
	defer span.End()

	var req BatchRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}
	mode, err := s.Services.ResolveMode(req.Mode)
	if err != nil {
		s.fail(w, span, "Invalid mode", err)
		return
	}
	if req.Job != nil {
		if err := req.Job.Validate(); err != nil {
			s.fail(w, span, "Invalid job", err)
			return
		}
	}

	files := make([]batch.File, len(req.Files))
	for i, f := range req.Files {
		mimeType := f.MIMEType
		if mimeType == "" {
			mimeType = document.TypeForFile(f.FileName)
		}
		files[i] = batch.File{Name: filepath.Base(f.FileName), Data: f.Content, MIMEType: mimeType}
	}
	span.SetAttributes(attribute.Int("request.file_count", len(files)))

	result, err := s.Services.Batch.Process(ctx, files, batch.Request{JobID: req.JobID, Job: req.Job, Mode: mode})
	if err != nil {
		s.fail(w, span, "Batch processing failed", err)
		return
	}

	span.SetAttributes(
		attribute.String("batch.id", result.BatchID),
		attribute.Int("batch.succeeded", result.Succeeded),
		attribute.Int("batch.failed", result.Failed),
	)
	writeJSON(w, http.StatusOK, result)
}

// uploadHandler screens one multipart-uploaded resume file. Optional form
// fields: jobId and mode.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "upload")
	defer span.End()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		s.fail(w, span, "Invalid upload",
			errors.NewValidationError(errors.ErrCodeInvalidRequest, "multipart field 'resume' is required", err))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		s.fail(w, span, "Invalid upload", errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read uploaded file", err))
		return
	}

	mode, err := s.Services.ResolveMode(r.FormValue("mode"))
	if err != nil {
		s.fail(w, span, "Invalid mode", err)
		return
	}
	job, err := s.resolveJob(ctx, nil, r.FormValue("jobId"))
	if err != nil {
		s.fail(w, span, "Invalid job", err)
		return
	}

	mimeType := document.TypeForFile(header.Filename)
	if mimeType == "" {
		mimeType = header.Header.Get("Content-Type")
	}
	span.SetAttributes(
		attribute.String("upload.file_name", header.Filename),
		attribute.String("upload.mime_type", mimeType),
		attribute.Int("upload.size", len(data)),
	)

	text, err := s.Services.Documents.ExtractText(ctx, data, mimeType)
	if err != nil {
		s.fail(w, span, "Failed to parse resume file", err)
		return
	}

	analysis, score, err := s.Services.Screener.AnalyzeAndScore(ctx, text, job, mode)
	if err != nil {
		s.fail(w, span, "Failed to analyze resume", err)
		return
	}

	record := storage.NewResumeRecord(filepath.Base(header.Filename), "", r.FormValue("jobId"))
	record.Text = text
	if err := record.Complete(analysis, score); err != nil {
		s.fail(w, span, "Failed to store resume", err)
		return
	}
	if err := s.Services.Store.SaveResume(ctx, record); err != nil {
		s.Logger.LogError(err, "Failed to persist uploaded resume", "file", header.Filename)
	}

	analysis.EngineScore = score
	writeJSON(w, http.StatusOK, map[string]any{
		"resumeId": record.ID.String(),
		"fileName": record.FileName,
		"analysis": analysis,
	})
}

func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.startSpan(r, "extract")
	defer span.End()

	var req ExtractRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}
	span.SetAttributes(attribute.Int("request.resume_length", len(req.ResumeText)))

	entities := s.Services.Entities.ExtractAll(document.Clean(req.ResumeText), req.TopKeywords)
	writeJSON(w, http.StatusOK, entities)
}

func (s *Server) questionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "questions")
	defer span.End()

	var req QuestionsRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}

	out, err := s.Services.AI.GenerateInterviewQuestions(ctx, document.Clean(req.ResumeText), req.JobTitle, req.FocusAreas)
	if err != nil {
		s.fail(w, span, "Failed to generate interview questions", err)
		return
	}
	span.SetAttributes(attribute.Int("questions.count", len(out.Questions)))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "compare")
	defer span.End()

	var req CompareRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}
	job, err := s.requireJob(ctx, req.Job, req.JobID)
	if err != nil {
		s.fail(w, span, "Invalid job", err)
		return
	}

	candidates := make([]ai.CandidateText, len(req.Resumes))
	for i, resume := range req.Resumes {
		id := resume.ID
		if id == "" {
			id = resume.FileName
		}
		candidates[i] = ai.CandidateText{ID: id, Name: resume.FileName, Text: document.Clean(resume.Text)}
	}

	out, err := s.Services.AI.CompareResumes(ctx, candidates, *job)
	if err != nil {
		s.fail(w, span, "Failed to compare resumes", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) atsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.startSpan(r, "ats")
	defer span.End()

	var req ATSRequest
	if err := parseJSONRequest(r, &req); err != nil {
		s.fail(w, span, "Invalid request body", err)
		return
	}

	out, err := s.Services.AI.AnalyzeATSOptimization(ctx, document.Clean(req.ResumeText), req.JobDescription)
	if err != nil {
		s.fail(w, span, "Failed to analyze ATS compatibility", err)
		return
	}
	span.SetAttributes(attribute.Int("ats.score", out.Score))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createJobHandler(w http.ResponseWriter, r *http.Request) {
	var job types.Job
	if err := parseJSONRequest(r, &job); err != nil {
		s.writeError(w, "Invalid job", err)
		return
	}
	if err := s.Services.Store.SaveJob(r.Context(), &job); err != nil {
		s.writeError(w, "Failed to save job", err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) getJobHandler(w http.ResponseWriter, r *http.Request) {
	job, err := s.Services.Store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, "Job lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// resumeView is the API shape of a stored resume
type resumeView struct {
	ID         string                `json:"id"`
	FileName   string                `json:"fileName"`
	Status     types.BatchStatus     `json:"status"`
	BatchID    string                `json:"batchId,omitempty"`
	JobID      string                `json:"jobId,omitempty"`
	Error      string                `json:"error,omitempty"`
	Analysis   *types.ResumeAnalysis `json:"analysis,omitempty"`
	MatchScore *types.MatchScore     `json:"matchScore,omitempty"`
}

func newResumeView(record *storage.ResumeRecord) (resumeView, error) {
	view := resumeView{
		ID:       record.ID.String(),
		FileName: record.FileName,
		Status:   record.Status,
		BatchID:  record.BatchID,
		JobID:    record.JobID,
		Error:    record.Error,
	}
	var err error
	if view.Analysis, err = record.DecodeAnalysis(); err != nil {
		return view, err
	}
	if view.MatchScore, err = record.DecodeMatchScore(); err != nil {
		return view, err
	}
	return view, nil
}

func (s *Server) getResumeHandler(w http.ResponseWriter, r *http.Request) {
	record, err := s.Services.Store.GetResume(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, "Resume lookup failed", err)
		return
	}
	view, err := newResumeView(record)
	if err != nil {
		s.writeError(w, "Stored resume is corrupt", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getBatchHandler(w http.ResponseWriter, r *http.Request) {
	batchID := r.PathValue("id")
	records, err := s.Services.Store.ListResumes(r.Context(), batchID)
	if err != nil {
		s.writeError(w, "Batch lookup failed", err)
		return
	}
	if len(records) == 0 {
		s.writeError(w, "Batch lookup failed",
			errors.NewStorageError(errors.ErrCodeNotFound, "batch not found", nil).WithContext("batch_id", batchID))
		return
	}

	views := make([]resumeView, 0, len(records))
	for i := range records {
		view, err := newResumeView(&records[i])
		if err != nil {
			s.writeError(w, "Stored resume is corrupt", err)
			return
		}
		views = append(views, view)
	}
	writeJSON(w, http.StatusOK, map[string]any{"batchId": batchID, "resumes": views})
}
