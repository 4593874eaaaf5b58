package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/igtools/igmigrate/internal/emit"
	"github.com/igtools/igmigrate/internal/reader"
	"github.com/igtools/igmigrate/pkg/errors"
	"github.com/igtools/igmigrate/pkg/logging"
	"github.com/igtools/igmigrate/pkg/migrate"
)

var (
	studiesFile         string
	studiesAssetsFile   string
	studiesContractFile string
	studiesOutputFile   string
	studiesFormat       string
	studiesFailOnIssues bool
)

// studiesCmd runs the hierarchical studies pipeline.
var studiesCmd = &cobra.Command{
	Use:   "studies",
	Short: "Build a nested study import file from study, asset, and contract exports",
	Long: `Studies reads three exports and produces one import document: an array of
study objects, each owning its assets and study-level contracts, attached by
CaseRef and sorted deterministically.

A child row without a CaseRef is a structural defect and aborts the run.
Children whose CaseRef matches no study are dropped from the output; each
drop is reported as an issue. Validation issues are reported on stderr and
never block emission unless --fail-on-issues is set.`,
	Example: `  igmigrate studies                                 # studies/assets/contracts .csv -> import.json
  igmigrate studies --format yaml -o import.yaml
  igmigrate studies --strict-dates=false            # tolerate unparseable source dates`,
	RunE: runStudies,
}

func init() {
	rootCmd.AddCommand(studiesCmd)

	studiesCmd.Flags().StringVar(&studiesFile, "studies", "studies.csv", "studies export file")
	studiesCmd.Flags().StringVar(&studiesAssetsFile, "assets", "assets.csv", "assets export file")
	studiesCmd.Flags().StringVar(&studiesContractFile, "contracts", "contracts.csv", "contracts export file")
	studiesCmd.Flags().StringVarP(&studiesOutputFile, "output", "o", "import.json", "output file (- for stdout)")
	studiesCmd.Flags().StringVar(&studiesFormat, "format", "json", "output format (json, yaml)")
	studiesCmd.Flags().BoolVar(&studiesFailOnIssues, "fail-on-issues", false, "abort before emission when validation finds issues")
}

func runStudies(cmd *cobra.Command, _ []string) error {
	ctx := logging.WithPipeline(cmd.Context(), "studies")
	cfg := pipelineConfig()

	format, err := emit.ParseFormat(studiesFormat)
	if err != nil {
		return err
	}
	if format == emit.FormatTable {
		return errors.NewConfigError("output", "studies output must be json or yaml", nil)
	}

	result, err := migrate.Studies(ctx, cfg,
		reader.NewCSV(migrate.SourceStudies.String(), studiesFile),
		reader.NewCSV(migrate.SourceAssets.String(), studiesAssetsFile),
		reader.NewCSV(migrate.SourceContracts.String(), studiesContractFile),
	)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("studies pipeline failed")
		return err
	}

	if len(result.Issues) > 0 {
		if err := emit.WriteIssues(os.Stderr, result.Issues, emit.FormatTable); err != nil {
			return err
		}
		if studiesFailOnIssues {
			return errors.NewValidationError("", nil,
				fmt.Sprintf("%d issue(s) found and --fail-on-issues is set", len(result.Issues)))
		}
	}

	w, closeOutput, err := openOutput(studiesOutputFile)
	if err != nil {
		return errors.WrapIO("create", studiesOutputFile, err)
	}
	if err := emit.WriteStudies(w, result.Studies, format); err != nil {
		_ = closeOutput()
		return err
	}
	if err := closeOutput(); err != nil {
		return errors.WrapIO("close", studiesOutputFile, err)
	}

	if !quiet {
		return emit.Summary(os.Stderr, "studies", len(result.Studies), result.Issues)
	}
	return nil
}
