package storage

import (
	"context"
	"slices"
	"sync"
	"time"

	"resumescreen/internal/types"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory. It is used when no database
// is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	resumes map[uuid.UUID]ResumeRecord
	order   []uuid.UUID
	jobs    map[string]JobRecord
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resumes: make(map[uuid.UUID]ResumeRecord),
		jobs:    make(map[string]JobRecord),
		now:     time.Now,
	}
}

// SaveResume inserts or replaces a resume record
func (m *MemoryStore) SaveResume(_ context.Context, record *ResumeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := m.now()
	if existing, ok := m.resumes[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
		m.order = append(m.order, record.ID)
	}
	record.UpdatedAt = now
	m.resumes[record.ID] = *record
	return nil
}

// GetResume returns a copy of one resume record
func (m *MemoryStore) GetResume(_ context.Context, id string) (*ResumeRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound("resume", id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.resumes[parsed]
	if !ok {
		return nil, notFound("resume", id)
	}
	return &record, nil
}

// ListResumes returns the records of a batch in insertion order
func (m *MemoryStore) ListResumes(_ context.Context, batchID string) ([]ResumeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := []ResumeRecord{}
	for _, id := range m.order {
		record := m.resumes[id]
		if batchID == "" || record.BatchID == batchID {
			records = append(records, record)
		}
	}
	return records, nil
}

// SaveJob validates and stores a job
func (m *MemoryStore) SaveJob(_ context.Context, job *types.Job) error {
	if err := prepareJob(job); err != nil {
		return err
	}
	record, err := jobRecordFrom(job)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	record.CreatedAt, record.UpdatedAt = now, now
	if existing, ok := m.jobs[job.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	m.jobs[job.ID] = *record
	return nil
}

// GetJob returns one job
func (m *MemoryStore) GetJob(_ context.Context, id string) (*types.Job, error) {
	m.mu.RLock()
	record, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, notFound("job", id)
	}
	return record.toJob()
}

// GetJobRequirements returns a job's requirements, or nil when the job does not exist
func (m *MemoryStore) GetJobRequirements(ctx context.Context, jobID string) (*types.JobRequirements, error) {
	job, err := m.GetJob(ctx, jobID)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job.Requirements, nil
}

// JobIDs lists stored job IDs in sorted order
func (m *MemoryStore) JobIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }
