package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/igtools/igmigrate/internal/emit"
	"github.com/igtools/igmigrate/internal/reader"
	"github.com/igtools/igmigrate/pkg/logging"
	"github.com/igtools/igmigrate/pkg/migrate"
)

var validateFormat string

// validateCmd runs a pipeline for its issue report only.
var validateCmd = &cobra.Command{
	Use:   "validate {users|studies}",
	Short: "Run a pipeline and report issues without writing an import file",
	Long: `Validate runs the chosen pipeline end to end, prints the full issue report,
and discards the merged output. It reads the same source files and flags as
the pipeline subcommands.

Use it to vet fresh exports before committing to a migration run.`,
	Example: `  igmigrate validate users
  igmigrate validate studies --format json | jq length
  igmigrate validate studies --assets new-assets.csv`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"users", "studies"},
	RunE:      runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFormat, "format", "", "report format (table, json, yaml); default auto-detects")
	validateCmd.Flags().StringVar(&usersTrainingFile, "training", "training.csv", "training export file")
	validateCmd.Flags().StringVar(&usersAgreementFile, "agreement", "agreement.csv", "agreement export file")
	validateCmd.Flags().StringVar(&studiesFile, "studies", "studies.csv", "studies export file")
	validateCmd.Flags().StringVar(&studiesAssetsFile, "assets", "assets.csv", "assets export file")
	validateCmd.Flags().StringVar(&studiesContractFile, "contracts", "contracts.csv", "contracts export file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := logging.WithPipeline(cmd.Context(), "validate")
	cfg := pipelineConfig()

	format, err := emit.DetectFormat(validateFormat)
	if err != nil {
		return err
	}

	var issues []string
	switch args[0] {
	case "users":
		result, err := migrate.Users(ctx, cfg,
			reader.NewCSV(migrate.SourceTraining.String(), usersTrainingFile),
			reader.NewCSV(migrate.SourceAgreement.String(), usersAgreementFile),
		)
		if err != nil {
			return err
		}
		issues = result.Issues
	case "studies":
		result, err := migrate.Studies(ctx, cfg,
			reader.NewCSV(migrate.SourceStudies.String(), studiesFile),
			reader.NewCSV(migrate.SourceAssets.String(), studiesAssetsFile),
			reader.NewCSV(migrate.SourceContracts.String(), studiesContractFile),
		)
		if err != nil {
			return err
		}
		issues = result.Issues
	}

	return emit.WriteIssues(os.Stdout, issues, format)
}
