package common

import (
	"context"
	"time"

	"resumescreen/internal/errors"
)

// OperationFunc produces a command's result
type OperationFunc[Output any] func(ctx context.Context) (Output, error)

// CommandRunner validates output settings, runs an operation and writes its
// formatted result
type CommandRunner struct {
	Files  *FileProcessor
	Output *OutputHandler
	logger *errors.Logger
}

// NewCommandRunner creates a runner sharing one FileProcessor
func NewCommandRunner(logger *errors.Logger, files *FileProcessor) *CommandRunner {
	return &CommandRunner{
		Files:  files,
		Output: NewOutputHandler(files, logger),
		logger: logger,
	}
}

// RunCommand encapsulates the common logic for file-based CLI commands. Output
// settings are checked before the operation runs so a bad --output path does
// not waste an AI call.
func RunCommand[Output any](ctx context.Context, runner *CommandRunner, name string, cfg CommandConfig, operation OperationFunc[Output]) error {
	if err := runner.Files.ValidateOutputFile(cfg.OutputFile); err != nil {
		return err
	}

	start := time.Now()
	result, err := operation(ctx)
	if err != nil {
		return err
	}
	runner.logger.Info("Command completed", "command", name, "duration", time.Since(start))

	return runner.Output.HandleOutput(result, cfg)
}
