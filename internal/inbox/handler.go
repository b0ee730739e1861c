package inbox

import (
	"context"

	"resumescreen/internal/batch"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"
	"resumescreen/internal/utils"
)

// BatchRunner is the part of batch.Processor the inbox needs
type BatchRunner interface {
	Process(ctx context.Context, files []batch.File, req batch.Request) (*types.BatchResult, error)
}

// ResultSink receives each finished group
type ResultSink func(result *types.BatchResult)

// NewBatchHandler screens each settled group of inbox files as one batch.
// Files that cannot be read are logged and skipped.
func NewBatchHandler(runner BatchRunner, req batch.Request, maxFileSize int64, sink ResultSink, logger *errors.Logger) Handler {
	return func(ctx context.Context, paths []string) {
		files := make([]batch.File, 0, len(paths))
		for _, path := range paths {
			file, err := utils.ReadResumeFile(path, maxFileSize)
			if err != nil {
				logger.LogError(err, "Skipping inbox file", "file", path)
				continue
			}
			files = append(files, batch.File{Name: file.Name, Data: file.Data, MIMEType: file.MIMEType})
		}
		if len(files) == 0 {
			return
		}

		result, err := runner.Process(ctx, files, req)
		if err != nil {
			logger.LogError(err, "Inbox batch stopped")
		}
		if result != nil && sink != nil {
			sink(result)
		}
	}
}
