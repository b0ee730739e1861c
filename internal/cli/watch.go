package cli

import (
	"resumescreen/internal/app"
	"resumescreen/internal/batch"
	"resumescreen/internal/common"
	"resumescreen/internal/inbox"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Screen resumes as they arrive in an inbox directory",
	Long: `Watch a directory and screen every new resume dropped into it. Files
arriving close together are screened as one batch, exactly like the batch
command: results are stored, progress events are emitted and each finished
batch is printed.

Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &watchConfig)
	},
	RunE: runWatch,
}

var (
	watchConfig   common.CommandConfig
	watchDir      string
	watchJobFile  string
	watchMode     string
	watchExisting bool
)

func init() {
	addOutputFlags(watchCmd, &watchConfig)
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "Inbox directory (default from config)")
	watchCmd.Flags().StringVar(&watchJobFile, "job", "", "Job requirements file (default from config)")
	watchCmd.Flags().StringVar(&watchMode, "mode", "", "Analysis mode: ai or rule (default from config)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Also screen files already in the directory")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	dir := firstNonEmpty(watchDir, cfg.Inbox.Dir)
	jobFile := firstNonEmpty(watchJobFile, cfg.Inbox.JobFile)

	return withServices(cmd, app.Options{Persist: true, Observability: true}, func(services *app.Services) error {
		mode, err := services.ResolveMode(firstNonEmpty(watchMode, cfg.Inbox.Mode))
		if err != nil {
			return err
		}
		_, requirements, err := loadRequirements(services, jobFile)
		if err != nil {
			return err
		}

		output := common.NewOutputHandler(services.Files, logger)
		sink := func(result *types.BatchResult) {
			logger.Info("Inbox batch finished",
				"batch_id", result.BatchID,
				"total", result.Total,
				"succeeded", result.Succeeded,
				"failed", result.Failed)
			if err := output.HandleOutput(result, watchConfig); err != nil {
				logger.LogError(err, "Failed to write inbox batch result")
			}
		}

		handler := inbox.NewBatchHandler(services.Batch, batch.Request{Job: requirements, Mode: mode},
			cfg.App.MaxFileSize, sink, logger)
		watcher, err := inbox.NewWatcher(inbox.Options{
			Dir:             dir,
			Debounce:        cfg.Inbox.Debounce,
			ProcessExisting: watchExisting,
			Handler:         handler,
			Logger:          logger,
		})
		if err != nil {
			return err
		}

		if err := watcher.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		logger.Info("Stopping inbox watcher")
		return watcher.Stop()
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
