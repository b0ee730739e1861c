package cli

import (
	"context"
	"time"

	"resumescreen/internal/app"
	"resumescreen/internal/batch"
	"resumescreen/internal/common"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir|resume-files...]",
	Short: "Screen a batch of resumes one at a time",
	Long: `Process a batch of resumes sequentially. Each resume is parsed, analyzed
and, when a job is given, scored; a resume that fails is reported without
stopping the batch. Progress events are logged and posted to the configured
webhook, and every resume is stored when persistence is enabled.

AI-backed items are separated by a cooldown (see --cooldown) so the batch
stays within provider rate limits.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &batchConfig)
	},
	RunE: runBatch,
}

var (
	batchConfig   common.CommandConfig
	batchJobFile  string
	batchJobID    string
	batchMode     string
	batchCooldown time.Duration
)

func init() {
	addOutputFlags(batchCmd, &batchConfig)
	batchCmd.Flags().StringVar(&batchJobFile, "job", "", "Job requirements file (JSON)")
	batchCmd.Flags().StringVar(&batchJobID, "job-id", "", "ID of a stored job to score against")
	batchCmd.Flags().StringVar(&batchMode, "mode", "", "Analysis mode: ai or rule (default from config)")
	batchCmd.Flags().DurationVar(&batchCooldown, "cooldown", 0, "Pause between AI-backed items (default from config)")
	batchCmd.MarkFlagsMutuallyExclusive("job", "job-id")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if cmd.Flags().Changed("cooldown") {
		cfg.Screening.BatchCooldown = batchCooldown
	}

	return withServices(cmd, app.Options{Persist: true}, func(services *app.Services) error {
		mode, err := services.ResolveMode(batchMode)
		if err != nil {
			return err
		}
		_, requirements, err := loadRequirements(services, batchJobFile)
		if err != nil {
			return err
		}
		req := batch.Request{JobID: batchJobID, Job: requirements, Mode: mode}

		return common.RunCommand(cmd.Context(), newRunner(services), "batch", batchConfig,
			func(ctx context.Context) (types.BatchResult, error) {
				files, err := services.Files.ReadBatchFiles(args...)
				if err != nil {
					return types.BatchResult{}, err
				}
				result, err := services.Batch.Process(ctx, files, req)
				if err != nil {
					return types.BatchResult{}, err
				}
				return *result, nil
			})
	})
}
