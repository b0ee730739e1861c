package cli

import (
	"context"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/screening"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var rankCmd = &cobra.Command{
	Use:   "rank [resume-files...]",
	Short: "Rank several resumes against job requirements",
	Long: `Analyze every resume, score each against the job requirements and
list the candidates best first.

Directories are expanded to the supported resume files they contain. In rule
mode resumes are analyzed in parallel (see --concurrency); AI mode analyzes
them one at a time.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &rankConfig)
	},
	RunE: runRank,
}

var (
	rankConfig      common.CommandConfig
	rankJobFile     string
	rankMode        string
	rankConcurrency int
)

func init() {
	addOutputFlags(rankCmd, &rankConfig)
	rankCmd.Flags().StringVar(&rankJobFile, "job", "", "Job requirements file (JSON)")
	rankCmd.Flags().StringVar(&rankMode, "mode", "", "Analysis mode: ai or rule (default from config)")
	rankCmd.Flags().IntVar(&rankConcurrency, "concurrency", 0, "Parallel rule analyses (default from config)")
	_ = rankCmd.MarkFlagRequired("job")
}

func runRank(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		mode, err := services.ResolveMode(rankMode)
		if err != nil {
			return err
		}
		_, requirements, err := loadRequirements(services, rankJobFile)
		if err != nil {
			return err
		}

		workers := rankConcurrency
		if workers <= 0 {
			workers = services.Config.Screening.RankWorkers
		}

		return common.RunCommand(cmd.Context(), newRunner(services), "rank", rankConfig,
			func(ctx context.Context) ([]types.RankedCandidate, error) {
				resumes, err := services.Files.ReadResumes(ctx, args...)
				if err != nil {
					return nil, err
				}
				submissions := make([]screening.Submission, len(resumes))
				for i, r := range resumes {
					submissions[i] = screening.Submission{ID: r.Path, FileName: r.Name, Text: r.Text}
				}
				return services.Screener.Rank(ctx, submissions, *requirements, mode, workers)
			})
	})
}
