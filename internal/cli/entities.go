package cli

import (
	"context"

	"resumescreen/internal/app"
	"resumescreen/internal/common"
	"resumescreen/internal/extract"

	"github.com/spf13/cobra"
)

var entitiesCmd = &cobra.Command{
	Use:   "entities [resume-file]",
	Short: "Extract entities and keywords from a resume",
	Long: `Extract contact details, names, dates, locations, organizations,
amounts, certifications, quantified achievements, spoken languages and the
most frequent keywords from a resume. No AI model is used.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutput(cmd, &entitiesConfig)
	},
	RunE: runEntities,
}

var (
	entitiesConfig common.CommandConfig
	entitiesTop    int
)

func init() {
	addOutputFlags(entitiesCmd, &entitiesConfig)
	entitiesCmd.Flags().IntVar(&entitiesTop, "top", extract.DefaultTopKeywords, "Number of keywords to report")
}

func runEntities(cmd *cobra.Command, args []string) error {
	return withServices(cmd, app.Options{}, func(services *app.Services) error {
		return common.RunCommand(cmd.Context(), newRunner(services), "entities", entitiesConfig,
			func(ctx context.Context) (extract.Entities, error) {
				resume, err := services.Files.ReadResume(ctx, args[0])
				if err != nil {
					return extract.Entities{}, err
				}
				return services.Entities.ExtractAll(resume.Text, entitiesTop), nil
			})
	})
}
