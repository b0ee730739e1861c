package storage

import (
	"context"
	stdErrors "errors"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormStore is a Store backed by PostgreSQL through gorm
type GormStore struct {
	db     *gorm.DB
	logger *errors.Logger
}

var _ Store = (*GormStore)(nil)

// OpenPostgres connects to the database in cfg and migrates the schema when
// AutoMigrate is set
func OpenPostgres(cfg config.DatabaseConfig, logger *errors.Logger) (*GormStore, error) {
	if cfg.DSN == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "database DSN is required", nil)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to connect to database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to access connection pool", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	store := &GormStore{db: db, logger: logger}
	if cfg.AutoMigrate {
		if err := store.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	logger.Info("Connected to database", "auto_migrate", cfg.AutoMigrate)
	return store, nil
}

// Migrate creates or updates the resume and job tables
func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&ResumeRecord{}, &JobRecord{}); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "database migration failed", err)
	}
	return nil
}

// SaveResume inserts or updates a resume record
func (s *GormStore) SaveResume(ctx context.Context, record *ResumeRecord) error {
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to save resume", err).
			WithContext("resume_id", record.ID.String())
	}
	return nil
}

// GetResume loads one resume record
func (s *GormStore) GetResume(ctx context.Context, id string) (*ResumeRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, notFound("resume", id)
	}

	var record ResumeRecord
	err = s.db.WithContext(ctx).First(&record, "id = ?", parsed).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("resume", id)
	}
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to load resume", err)
	}
	return &record, nil
}

// ListResumes returns the records of a batch, oldest first. An empty batchID
// lists every record.
func (s *GormStore) ListResumes(ctx context.Context, batchID string) ([]ResumeRecord, error) {
	query := s.db.WithContext(ctx).Order("created_at asc")
	if batchID != "" {
		query = query.Where("batch_id = ?", batchID)
	}

	var records []ResumeRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to list resumes", err)
	}
	return records, nil
}

// SaveJob validates and upserts a job. A job without ID gets a new one.
func (s *GormStore) SaveJob(ctx context.Context, job *types.Job) error {
	if err := prepareJob(job); err != nil {
		return err
	}
	record, err := jobRecordFrom(job)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to save job", err).
			WithContext("job_id", job.ID)
	}
	return nil
}

// GetJob loads one job
func (s *GormStore) GetJob(ctx context.Context, id string) (*types.Job, error) {
	var record JobRecord
	err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("job", id)
	}
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeStorageFailed, "failed to load job", err)
	}
	return record.toJob()
}

// GetJobRequirements returns a job's requirements, or nil when the job does not exist
func (s *GormStore) GetJobRequirements(ctx context.Context, jobID string) (*types.JobRequirements, error) {
	job, err := s.GetJob(ctx, jobID)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job.Requirements, nil
}

// Ping checks the database connection
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
