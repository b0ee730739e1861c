package cli

import (
	"context"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/types"

	"github.com/spf13/cobra"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [resume-file]",
	Short: "Generate interview questions for a candidate",
	Long: `Generate interview questions tailored to a resume using the configured
AI model. Use --title for the role being hired and --focus to steer the
questions toward particular areas.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &questionsConfig)
	},
	RunE: runQuestions,
}

var (
	questionsConfig common.CommandConfig
	questionsTitle  string
	questionsFocus  []string
)

func init() {
	addOutputFlags(questionsCmd, &questionsConfig)
	questionsCmd.Flags().StringVar(&questionsTitle, "title", "", "Job title the candidate is interviewing for")
	questionsCmd.Flags().StringSliceVar(&questionsFocus, "focus", nil, "Areas to focus on (repeatable or comma separated)")
}

func runQuestions(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		return common.RunCommand(cmd.Context(), newRunner(services), "questions", questionsConfig,
			func(ctx context.Context) (types.InterviewQuestionsOutput, error) {
				resume, err := services.Files.ReadResume(ctx, args[0])
				if err != nil {
					return types.InterviewQuestionsOutput{}, err
				}
				out, err := services.AI.GenerateInterviewQuestions(ctx, resume.Text, questionsTitle, questionsFocus)
				if err != nil {
					return types.InterviewQuestionsOutput{}, err
				}
				return *out, nil
			})
	})
}
