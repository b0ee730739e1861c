package cli

import (
	"context"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/errors"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [resume-file]",
	Short: "Score a resume against job requirements",
	Long: `Analyze a resume and score it against job requirements.

The score combines skills, experience, education, professionalism and
completeness into an overall 0-100 value with a hiring recommendation.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &scoreConfig)
	},
	RunE: runScore,
}

var (
	scoreConfig  common.CommandConfig
	scoreJobFile string
	scoreMode    string
)

func init() {
	addOutputFlags(scoreCmd, &scoreConfig)
	scoreCmd.Flags().StringVar(&scoreJobFile, "job", "", "Job requirements file (JSON)")
	scoreCmd.Flags().StringVar(&scoreMode, "mode", "", "Analysis mode: ai or rule (default from config)")
	_ = scoreCmd.MarkFlagRequired("job")
}

func runScore(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		mode, err := services.ResolveMode(scoreMode)
		if err != nil {
			return err
		}
		_, requirements, err := loadRequirements(services, scoreJobFile)
		if err != nil {
			return err
		}

		return common.RunCommand(cmd.Context(), newRunner(services), "score", scoreConfig,
			func(ctx context.Context) (types.MatchScore, error) {
				resume, err := services.Files.ReadResume(ctx, args[0])
				if err != nil {
					return types.MatchScore{}, err
				}
				_, score, err := services.Screener.AnalyzeAndScore(ctx, resume.Text, requirements, mode)
				if err != nil {
					return types.MatchScore{}, err
				}
				if score == nil {
					return types.MatchScore{}, errors.NewInternalError("SCORE_MISSING", "analysis produced no match score", nil)
				}
				return *score, nil
			})
	})
}
