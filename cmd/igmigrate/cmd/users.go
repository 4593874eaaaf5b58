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
	usersTrainingFile  string
	usersAgreementFile string
	usersOutputFile    string
	usersFailOnIssues  bool
)

// usersCmd runs the flat users pipeline.
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Merge training and agreement exports into a user import file",
	Long: `Users outer-joins the training export and the agreement export on
canonical identity and writes one import row per identity found in either.

Identities missing from a source take documented defaults: no agreement row
means has_signed_agreement=false, no training row means an empty training
date. Validation issues are reported on stderr and never block emission
unless --fail-on-issues is set.`,
	Example: `  igmigrate users                                   # training.csv + agreement.csv -> import.csv
  igmigrate users --training t.csv --output -       # write to stdout
  igmigrate users --fail-on-issues                  # non-empty issue list blocks emission`,
	RunE: runUsers,
}

func init() {
	rootCmd.AddCommand(usersCmd)

	usersCmd.Flags().StringVar(&usersTrainingFile, "training", "training.csv", "training export file")
	usersCmd.Flags().StringVar(&usersAgreementFile, "agreement", "agreement.csv", "agreement export file")
	usersCmd.Flags().StringVarP(&usersOutputFile, "output", "o", "import.csv", "output file (- for stdout)")
	usersCmd.Flags().BoolVar(&usersFailOnIssues, "fail-on-issues", false, "abort before emission when validation finds issues")
}

func runUsers(cmd *cobra.Command, _ []string) error {
	ctx := logging.WithPipeline(cmd.Context(), "users")
	cfg := pipelineConfig()

	result, err := migrate.Users(ctx, cfg,
		reader.NewCSV(migrate.SourceTraining.String(), usersTrainingFile),
		reader.NewCSV(migrate.SourceAgreement.String(), usersAgreementFile),
	)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("users pipeline failed")
		return err
	}

	if len(result.Issues) > 0 {
		if err := emit.WriteIssues(os.Stderr, result.Issues, emit.FormatTable); err != nil {
			return err
		}
		if usersFailOnIssues {
			return errors.NewValidationError("", nil,
				fmt.Sprintf("%d issue(s) found and --fail-on-issues is set", len(result.Issues)))
		}
	}

	w, closeOutput, err := openOutput(usersOutputFile)
	if err != nil {
		return errors.WrapIO("create", usersOutputFile, err)
	}
	if err := emit.WriteUsersCSV(w, result.Records); err != nil {
		_ = closeOutput()
		return err
	}
	if err := closeOutput(); err != nil {
		return errors.WrapIO("close", usersOutputFile, err)
	}

	if !quiet {
		return emit.Summary(os.Stderr, "user record(s)", len(result.Records), result.Issues)
	}
	return nil
}
