package storage

import (
	"context"
	"os"
	"testing"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() (types.ResumeAnalysis, *types.MatchScore) {
	analysis := types.ResumeAnalysis{
		Contact:   types.Contact{Name: "Jane Doe"},
		Skills:    types.NewSkills(map[string][]string{types.CategoryProgramming: {"go"}}, nil),
		AIPowered: true,
	}
	score := &types.MatchScore{OverallScore: 77, Recommendation: types.Recommendation{Status: "Recommended"}}
	return analysis, score
}

// exerciseStore runs the same behavior checks against any Store
func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("resume lifecycle", func(t *testing.T) {
		record := NewResumeRecord("jane.pdf", "batch-1", "job-1")
		require.NoError(t, store.SaveResume(ctx, record))

		analysis, score := sampleAnalysis()
		require.NoError(t, record.Complete(analysis, score))
		require.NoError(t, store.SaveResume(ctx, record))

		loaded, err := store.GetResume(ctx, record.ID.String())
		require.NoError(t, err)
		assert.Equal(t, types.StatusCompleted, loaded.Status)
		assert.True(t, loaded.AIPowered)
		require.NotNil(t, loaded.OverallScore)
		assert.Equal(t, 77, *loaded.OverallScore)

		decoded, err := loaded.DecodeAnalysis()
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", decoded.Contact.Name)
		assert.Equal(t, 1, decoded.Skills.TotalSkills)

		decodedScore, err := loaded.DecodeMatchScore()
		require.NoError(t, err)
		assert.Equal(t, "Recommended", decodedScore.Recommendation.Status)
	})

	t.Run("list by batch", func(t *testing.T) {
		failed := NewResumeRecord("broken.docx", "batch-2", "")
		failed.Fail("Failed to parse resume file")
		require.NoError(t, store.SaveResume(ctx, failed))
		require.NoError(t, store.SaveResume(ctx, NewResumeRecord("other.txt", "batch-2", "")))

		records, err := store.ListResumes(ctx, "batch-2")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "broken.docx", records[0].FileName)
		assert.Equal(t, types.StatusFailed, records[0].Status)
		assert.Equal(t, "Failed to parse resume file", records[0].Error)
	})

	t.Run("missing resume", func(t *testing.T) {
		_, err := store.GetResume(ctx, "00000000-0000-0000-0000-000000000000")
		assert.True(t, IsNotFound(err))
		_, err = store.GetResume(ctx, "not-a-uuid")
		assert.True(t, IsNotFound(err))
	})

	t.Run("jobs", func(t *testing.T) {
		job := &types.Job{
			Title:        "Backend Engineer",
			Requirements: types.JobRequirements{Skills: []string{"Go", "Kafka"}, MinExperience: 3, Education: types.DegreeBachelors},
		}
		require.NoError(t, store.SaveJob(ctx, job))
		require.NotEmpty(t, job.ID, "Expected an ID to be assigned")

		loaded, err := store.GetJob(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, "Backend Engineer", loaded.Title)
		assert.Equal(t, types.DegreeBachelors, loaded.Requirements.Education)

		reqs, err := store.GetJobRequirements(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Kafka"}, reqs.Skills)

		reqs, err = store.GetJobRequirements(ctx, "unknown-job")
		require.NoError(t, err)
		assert.Nil(t, reqs)
	})

	t.Run("invalid job", func(t *testing.T) {
		err := store.SaveJob(ctx, &types.Job{Title: ""})
		assert.True(t, errors.IsValidation(err), "Expected ValidationError, got %v", err)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)
	assert.Len(t, store.JobIDs(), 1)
}

func TestGormStore(t *testing.T) {
	dsn := os.Getenv("RESUMESCREEN_TEST_DSN")
	if dsn == "" {
		t.Skip("RESUMESCREEN_TEST_DSN not set")
	}

	store, err := OpenPostgres(config.DatabaseConfig{DSN: dsn, AutoMigrate: true}, errors.NewNopLogger())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Ping(context.Background()))

	// Scope the batch listing to this run
	require.NoError(t, store.db.Exec("DELETE FROM resume_records WHERE batch_id = ?", "batch-2").Error)
	exerciseStore(t, store)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := OpenPostgres(config.DatabaseConfig{}, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}

func TestDecodeMalformedAnalysis(t *testing.T) {
	record := &ResumeRecord{Analysis: "{not json"}
	_, err := record.DecodeAnalysis()
	assert.True(t, errors.IsValidation(err))

	empty := &ResumeRecord{}
	analysis, err := empty.DecodeAnalysis()
	assert.NoError(t, err)
	assert.Nil(t, analysis)
}
