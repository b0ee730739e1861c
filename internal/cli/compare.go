package cli

import (
	"context"

	"resumescreen/internal/ai"
	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare [resume-files...]",
	Short: "Compare candidates side by side with AI",
	Long: `Ask the configured AI model to compare two or more resumes against the
job requirements and recommend a candidate.`,
	Args: cobra.MinimumNArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &compareConfig)
	},
	RunE: runCompare,
}

var (
	compareConfig  common.CommandConfig
	compareJobFile string
)

func init() {
	addOutputFlags(compareCmd, &compareConfig)
	compareCmd.Flags().StringVar(&compareJobFile, "job", "", "Job requirements file (JSON)")
	_ = compareCmd.MarkFlagRequired("job")
}

func runCompare(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		_, requirements, err := loadRequirements(services, compareJobFile)
		if err != nil {
			return err
		}

		return common.RunCommand(cmd.Context(), newRunner(services), "compare", compareConfig,
			func(ctx context.Context) (types.ComparisonOutput, error) {
				resumes, err := services.Files.ReadResumes(ctx, args...)
				if err != nil {
					return types.ComparisonOutput{}, err
				}
				candidates := make([]ai.CandidateText, len(resumes))
				for i, r := range resumes {
					candidates[i] = ai.CandidateText{ID: r.Name, Name: r.Name, Text: r.Text}
				}
				out, err := services.AI.CompareResumes(ctx, candidates, *requirements)
				if err != nil {
					return types.ComparisonOutput{}, err
				}
				return *out, nil
			})
	})
}
