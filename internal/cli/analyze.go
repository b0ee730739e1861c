package cli

import (
	"context"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Analyze a resume",
	Long: `Analyze a resume and report contact details, skills, experience,
education, sentiment and red flags.

When --job is given the analysis also carries a match score against the job
requirements. Supported inputs are PDF, DOCX, HTML, Markdown and plain text.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &analyzeConfig)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig  common.CommandConfig
	analyzeJobFile string
	analyzeMode    string
)

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
	analyzeCmd.Flags().StringVar(&analyzeJobFile, "job", "", "Job requirements file (JSON)")
	analyzeCmd.Flags().StringVar(&analyzeMode, "mode", "", "Analysis mode: ai or rule (default from config)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		mode, err := services.ResolveMode(analyzeMode)
		if err != nil {
			return err
		}
		_, requirements, err := loadRequirements(services, analyzeJobFile)
		if err != nil {
			return err
		}

		return common.RunCommand(cmd.Context(), newRunner(services), "analyze", analyzeConfig,
			func(ctx context.Context) (types.ResumeAnalysis, error) {
				resume, err := services.Files.ReadResume(ctx, args[0])
				if err != nil {
					return types.ResumeAnalysis{}, err
				}
				services.Logger.Info("Starting resume analysis",
					"file", resume.Name,
					"mode", mode,
					"resume_chars", len(resume.Text),
					"with_job", requirements != nil)

				analysis, score, err := services.Screener.AnalyzeAndScore(ctx, resume.Text, requirements, mode)
				if err != nil {
					return types.ResumeAnalysis{}, err
				}
				analysis.EngineScore = score
				return analysis, nil
			})
	})
}
