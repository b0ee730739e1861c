package cli

import (
	"context"
	"time"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

// shutdownTimeout bounds how long a command waits for events and telemetry to flush
const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "resumescreen",
	Short: "Screen and rank resumes against job requirements",
	Long: `resumescreen analyzes resumes, scores them against structured job
requirements and ranks candidates. Analysis uses an AI model when one is
configured and falls back to a rule-based analyzer otherwise.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// withServices builds the shared services, runs fn and releases them
func withServices(cmd *cobra.Command, opts app.Options, fn func(*app.Services) error) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	opts.Version = Version
	services, err := app.New(ctx, cfg, logger, opts)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := services.Close(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down services")
		}
	}()

	return fn(services)
}

// addOutputFlags registers -o/--output and --format
func addOutputFlags(cmd *cobra.Command, out *common.CommandConfig) {
	cmd.Flags().StringVarP(&out.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&out.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutput applies the configured default format and validates it
func resolveOutput(cmd *cobra.Command, out *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	format, err := common.ResolveOutputFormat(out.OutputFormat, cfg.App.DefaultFormat, cfg.App.SupportedFormats)
	if err != nil {
		return err
	}
	out.OutputFormat = format
	return nil
}

// loadRequirements reads --job when set. An empty path yields nil.
func loadRequirements(services *app.Services, path string) (*types.Job, *types.JobRequirements, error) {
	if path == "" {
		return nil, nil, nil
	}
	job, err := services.Files.LoadJob(path)
	if err != nil {
		return nil, nil, err
	}
	return job, &job.Requirements, nil
}

func newRunner(services *app.Services) *common.CommandRunner {
	return common.NewCommandRunner(services.Logger, services.Files)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(atsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
