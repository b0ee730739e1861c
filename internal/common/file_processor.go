package common

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"resumescreen/internal/batch"
	"resumescreen/internal/document"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"
	"resumescreen/internal/utils"

	"github.com/tidwall/gjson"
)

// Resume is a resume file reduced to its cleaned text
type Resume struct {
	Path string
	Name string
	Text string
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger      *errors.Logger
	extractor   document.Extractor
	maxFileSize int64
}

// NewFileProcessor creates a new file processor instance. A nil extractor
// uses the default document extractor.
func NewFileProcessor(logger *errors.Logger, extractor document.Extractor, maxFileSize int64) *FileProcessor {
	if extractor == nil {
		extractor = document.NewExtractor(logger)
	}
	return &FileProcessor{logger: logger, extractor: extractor, maxFileSize: maxFileSize}
}

// ReadResume reads one resume file and extracts its text
func (fp *FileProcessor) ReadResume(ctx context.Context, path string) (*Resume, error) {
	file, err := utils.ReadResumeFile(path, fp.maxFileSize)
	if err != nil {
		return nil, err
	}

	text, err := fp.extractor.ExtractText(ctx, file.Data, file.MIMEType)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr.WithContext("file", path)
		}
		return nil, err
	}

	fp.logger.Debug("Extracted resume text", "file", path, "size", utils.FormatFileSize(int64(len(file.Data))))
	return &Resume{Path: path, Name: file.Name, Text: text}, nil
}

// ReadResumes reads every file, expanding directories, and fails on the
// first one that cannot be read
func (fp *FileProcessor) ReadResumes(ctx context.Context, paths ...string) ([]Resume, error) {
	expanded, err := utils.CollectResumePaths(paths)
	if err != nil {
		return nil, err
	}

	resumes := make([]Resume, 0, len(expanded))
	for _, path := range expanded {
		resume, err := fp.ReadResume(ctx, path)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, *resume)
	}
	return resumes, nil
}

// ReadBatchFiles expands directories and loads raw file bytes for batch
// processing. Extraction happens per item inside the batch, so a file that
// cannot be parsed is reported there; files that cannot even be read are
// logged and skipped.
func (fp *FileProcessor) ReadBatchFiles(paths ...string) ([]batch.File, error) {
	expanded, err := utils.CollectResumePaths(paths)
	if err != nil {
		return nil, err
	}

	files := make([]batch.File, 0, len(expanded))
	for _, path := range expanded {
		file, err := utils.ReadResumeFile(path, fp.maxFileSize)
		if err != nil {
			fp.logger.LogError(err, "Skipping unreadable file", "file", path)
			continue
		}
		files = append(files, batch.File{Name: file.Name, Data: file.Data, MIMEType: file.MIMEType})
	}
	if len(files) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "no readable resume files found", nil)
	}
	return files, nil
}

// LoadJob reads a job definition from a JSON file. The file holds either a
// full job ({"title": ..., "requirements": {...}}) or a bare requirements
// object, in which case the file name becomes the title.
func (fp *FileProcessor) LoadJob(path string) (*types.Job, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is a user-selected job file
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "job file not found", err).WithContext("file", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read job file", err).WithContext("file", path)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "job file is not valid JSON", nil).WithContext("file", path)
	}

	var job types.Job
	if gjson.GetBytes(data, "requirements").Exists() {
		err = json.Unmarshal(data, &job)
	} else {
		err = json.Unmarshal(data, &job.Requirements)
		base := filepath.Base(path)
		job.Title = base[:len(base)-len(filepath.Ext(base))]
	}
	if err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "job file has an invalid shape", err).WithContext("file", path)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
