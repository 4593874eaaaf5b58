package migrate

import (
	"context"

	"github.com/igtools/igmigrate/pkg/identity"
	"github.com/igtools/igmigrate/pkg/logging"
	"github.com/igtools/igmigrate/pkg/rows"
)

// UsersResult is the output of the flat users pipeline.
type UsersResult struct {
	Records []UserRecord `json:"records" yaml:"records"`
	Issues  []string     `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// StudiesResult is the output of the hierarchical studies pipeline.
type StudiesResult struct {
	Studies []Study  `json:"studies" yaml:"studies"`
	Issues  []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Users runs the flat pipeline: extract training and agreement rows, outer
// join them on canonical identity, sort, and validate. A structural error in
// either source aborts; data-quality problems come back in Issues.
func Users(ctx context.Context, cfg Config, training, agreement rows.Source) (*UsersResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	trainingParts, err := ExtractTraining(training, cfg)
	if err != nil {
		return nil, err
	}
	agreementParts, err := ExtractAgreements(agreement, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("training", len(trainingParts)).
		Int("agreement", len(agreementParts)).
		Msg("extracted user partial records")

	merged, err := MergeUsers(cfg, map[SourceName]map[identity.Identity]UserPartial{
		SourceTraining:  trainingParts,
		SourceAgreement: agreementParts,
	})
	if err != nil {
		return nil, err
	}

	records := SortUsers(merged)
	issues := ValidateUsers(records, cfg.StrictDates)

	log.Info().
		Int("records", len(records)).
		Int("issues", len(issues)).
		Msg("users pipeline complete")

	return &UsersResult{Records: records, Issues: issues}, nil
}

// Studies runs the hierarchical pipeline: extract studies, assets, and
// contracts, attach children to their parents by CaseRef, sort, and
// validate. Orphaned children are dropped from output and reported in
// Issues, ahead of the validator's findings.
func Studies(ctx context.Context, cfg Config, studies, assets, contracts rows.Source) (*StudiesResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx)

	parents, err := ExtractStudies(studies, cfg)
	if err != nil {
		return nil, err
	}
	assetsByCase, err := ExtractAssets(assets, cfg)
	if err != nil {
		return nil, err
	}
	contractsByCase, err := ExtractContracts(contracts, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Int("studies", len(parents)).
		Int("asset_groups", len(assetsByCase)).
		Int("contract_groups", len(contractsByCase)).
		Msg("extracted study hierarchy")

	attached, orphanIssues := AttachChildren(parents, assetsByCase, contractsByCase)
	sorted := SortStudies(attached)

	issues := append(orphanIssues, ValidateStudies(sorted, cfg.StrictDates)...)

	log.Info().
		Int("studies", len(sorted)).
		Int("issues", len(issues)).
		Msg("studies pipeline complete")

	return &StudiesResult{Studies: sorted, Issues: issues}, nil
}
