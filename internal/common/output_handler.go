package common

import (
	"fmt"
	"io"
	"os"

	"resumescreen/internal/errors"
	"resumescreen/internal/formatters"
)

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
	// Stdout receives output when OutputFile is empty; nil means os.Stdout
	Stdout io.Writer
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(fileProcessor *FileProcessor, logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: fileProcessor,
		registry:      formatters.GlobalRegistry,
		logger:        logger,
	}
}

// HandleOutput formats data and writes it to the specified output
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err
		}
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	if _, err := fmt.Fprintln(out, output); err != nil {
		return errors.NewIOError("OUTPUT_WRITE_FAILED", "failed to write output", err)
	}
	return nil
}
