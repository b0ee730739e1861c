// Package storage persists screened resumes and job postings.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResumeRecord is one screened resume. Analysis and MatchScore hold the
// canonical JSON of types.ResumeAnalysis and types.MatchScore.
type ResumeRecord struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID      string            `gorm:"type:varchar(64);index" json:"batchId,omitempty"`
	JobID        string            `gorm:"type:varchar(64);index" json:"jobId,omitempty"`
	FileName     string            `gorm:"type:varchar(255)" json:"fileName"`
	Status       types.BatchStatus `gorm:"type:varchar(20);index" json:"status"`
	Text         string            `gorm:"type:text" json:"-"`
	AIPowered    bool              `json:"aiPowered"`
	OverallScore *int              `json:"overallScore,omitempty"`
	Analysis     string            `gorm:"type:jsonb" json:"analysis,omitempty"`
	MatchScore   string            `gorm:"type:jsonb" json:"matchScore,omitempty"`
	Error        string            `gorm:"type:text" json:"error,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// BeforeCreate assigns an ID when the caller did not
func (r *ResumeRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewResumeRecord starts a record in the processing state
func NewResumeRecord(fileName, batchID, jobID string) *ResumeRecord {
	return &ResumeRecord{
		ID:       uuid.New(),
		BatchID:  batchID,
		JobID:    jobID,
		FileName: fileName,
		Status:   types.StatusProcessing,
	}
}

// Complete stores the analysis and optional match score and marks the record completed
func (r *ResumeRecord) Complete(analysis types.ResumeAnalysis, score *types.MatchScore) error {
	encoded, err := json.Marshal(analysis)
	if err != nil {
		return errors.NewInternalError("ENCODE_FAILED", "failed to encode resume analysis", err)
	}
	r.Analysis = string(encoded)
	r.AIPowered = analysis.AIPowered

	if score != nil {
		encoded, err := json.Marshal(score)
		if err != nil {
			return errors.NewInternalError("ENCODE_FAILED", "failed to encode match score", err)
		}
		r.MatchScore = string(encoded)
		overall := score.OverallScore
		r.OverallScore = &overall
	}

	r.Status = types.StatusCompleted
	r.Error = ""
	return nil
}

// Fail marks the record failed with a message
func (r *ResumeRecord) Fail(message string) {
	r.Status = types.StatusFailed
	r.Error = message
}

// DecodeAnalysis returns the stored analysis, or nil when there is none
func (r *ResumeRecord) DecodeAnalysis() (*types.ResumeAnalysis, error) {
	if r.Analysis == "" {
		return nil, nil
	}
	var analysis types.ResumeAnalysis
	if err := json.Unmarshal([]byte(r.Analysis), &analysis); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "stored analysis is malformed", err).
			WithContext("resume_id", r.ID.String())
	}
	return &analysis, nil
}

// DecodeMatchScore returns the stored match score, or nil when there is none
func (r *ResumeRecord) DecodeMatchScore() (*types.MatchScore, error) {
	if r.MatchScore == "" {
		return nil, nil
	}
	var score types.MatchScore
	if err := json.Unmarshal([]byte(r.MatchScore), &score); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "stored match score is malformed", err).
			WithContext("resume_id", r.ID.String())
	}
	return &score, nil
}

// JobRecord is a persisted job posting
type JobRecord struct {
	ID           string `gorm:"type:varchar(64);primaryKey"`
	Title        string `gorm:"type:varchar(255)"`
	Description  string `gorm:"type:text"`
	Requirements string `gorm:"type:jsonb"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func jobRecordFrom(job *types.Job) (*JobRecord, error) {
	encoded, err := json.Marshal(job.Requirements)
	if err != nil {
		return nil, errors.NewInternalError("ENCODE_FAILED", "failed to encode job requirements", err)
	}
	return &JobRecord{
		ID:           job.ID,
		Title:        job.Title,
		Description:  job.Description,
		Requirements: string(encoded),
	}, nil
}

func (r *JobRecord) toJob() (*types.Job, error) {
	job := &types.Job{ID: r.ID, Title: r.Title, Description: r.Description}
	if r.Requirements != "" {
		if err := json.Unmarshal([]byte(r.Requirements), &job.Requirements); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "stored job requirements are malformed", err).
				WithContext("job_id", r.ID)
		}
	}
	return job, nil
}

// Store persists resumes and jobs
type Store interface {
	SaveResume(ctx context.Context, record *ResumeRecord) error
	GetResume(ctx context.Context, id string) (*ResumeRecord, error)
	ListResumes(ctx context.Context, batchID string) ([]ResumeRecord, error)
	SaveJob(ctx context.Context, job *types.Job) error
	GetJob(ctx context.Context, id string) (*types.Job, error)
	GetJobRequirements(ctx context.Context, jobID string) (*types.JobRequirements, error)
	Close() error
}

func notFound(kind, id string) error {
	return errors.NewStorageError(errors.ErrCodeNotFound, kind+" not found", nil).WithContext("id", id)
}

// IsNotFound reports whether err is a missing-record error
func IsNotFound(err error) bool {
	return errors.HasCode(err, errors.ErrCodeNotFound)
}

// prepareJob validates a job and assigns an ID when it has none
func prepareJob(job *types.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	return nil
}
