package cli

import (
	"context"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var atsCmd = &cobra.Command{
	Use:   "ats [resume-file] [job-description-file]",
	Short: "Check how well a resume passes applicant tracking systems",
	Long: `Score a resume for ATS compatibility against a job description and list
missing keywords, formatting issues and suggestions. Requires an AI model.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &atsConfig)
	},
	RunE: runATS,
}

var atsConfig common.CommandConfig

func init() {
	addOutputFlags(atsCmd, &atsConfig)
}

func runATS(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		return common.RunCommand(cmd.Context(), newRunner(services), "ats", atsConfig,
			func(ctx context.Context) (types.ATSOutput, error) {
				docs, err := services.Files.ReadResumes(ctx, args[0], args[1])
				if err != nil {
					return types.ATSOutput{}, err
				}
				out, err := services.AI.AnalyzeATSOptimization(ctx, docs[0].Text, docs[1].Text)
				if err != nil {
					return types.ATSOutput{}, err
				}
				return *out, nil
			})
	})
}
