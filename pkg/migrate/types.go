// Package migrate implements the cross-source reconciliation core: it joins
// typed partial records extracted from independent source exports into one
// internally-consistent output, imposes a reproducible order on it, and
// reports every data-quality problem found instead of failing on the first.
//
// The package performs no I/O. Rows come in through the rows.Source boundary
// and the merged entities go out as plain values for an external emitter.
package migrate

import (
	"slices"

	"github.com/igtools/igmigrate/pkg/errors"
	"github.com/igtools/igmigrate/pkg/identity"
)

// SourceName identifies one source export in diagnostics, issue strings, and
// the facet precedence order.
type SourceName string

// String returns the string representation of a source name.
func (sn SourceName) String() string {
	return string(sn)
}

// The source exports the two pipelines reconcile.
const (
	SourceTraining  SourceName = "training"
	SourceAgreement SourceName = "agreement"
	SourceStudies   SourceName = "studies"
	SourceAssets    SourceName = "assets"
	SourceContracts SourceName = "contracts"
)

// Config carries the call-time constants of a run. The core reads no
// environment; the CLI resolves flags and files into one of these.
type Config struct {
	// Identity holds the domain suffixes for identifier normalization.
	Identity identity.Config `json:"identity" yaml:"identity"`

	// StrictDates makes a non-blank source date that fails flexible parsing
	// a structural error during extraction, and requires every populated
	// derived date to be canonical ISO form during validation.
	StrictDates bool `json:"strict_dates" yaml:"strict_dates"`

	// Precedence is the fixed source order for conflicting facets in the
	// flat merge: a source later in the list wins over an earlier one.
	Precedence []SourceName `json:"precedence" yaml:"precedence"`
}

// DefaultConfig returns the standard run configuration: strict dates on and
// agreement facets winning over training facets on conflict.
func DefaultConfig() Config {
	return Config{
		Identity:    identity.DefaultConfig(),
		StrictDates: true,
		Precedence:  []SourceName{SourceTraining, SourceAgreement},
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if c.Identity.HomeTenantDomain == "" {
		return errors.NewConfigError("identity", "home tenant domain must not be empty", nil)
	}
	if c.Identity.LocalDomain == "" {
		return errors.NewConfigError("identity", "local domain must not be empty", nil)
	}
	if len(c.Precedence) == 0 {
		return errors.NewConfigError("precedence", "at least one source must be listed", nil)
	}
	seen := make(map[SourceName]bool, len(c.Precedence))
	for _, sn := range c.Precedence {
		if seen[sn] {
			return errors.NewConfigError("precedence", "source "+sn.String()+" listed twice", nil)
		}
		seen[sn] = true
	}
	return nil
}

// precedenceIndex returns the position of a source in the precedence order,
// or -1 when the source is not listed.
func (c Config) precedenceIndex(sn SourceName) int {
	return slices.Index(c.Precedence, sn)
}

// UserRecord is one flat-merged entity of the users pipeline: one record per
// identity appearing in any source, with documented defaults for absent
// facets.
type UserRecord struct {
	Identity identity.Identity `json:"username" yaml:"username"`

	// HasSignedAgreement defaults to false when no agreement row exists.
	HasSignedAgreement bool `json:"has_signed_agreement" yaml:"has_signed_agreement"`

	// TrainingCompletedAt is an ISO date, or "" when no training date is
	// known for the identity.
	TrainingCompletedAt string `json:"training_completed_at,omitempty" yaml:"training_completed_at,omitempty"`
}

// UserPartial is the typed partial record one source contributes for an
// identity. A nil pointer means the source supplied nothing for that facet;
// a non-nil pointer to "" means the source supplied the facet but its value
// was absent (e.g. a training row whose date failed to parse).
type UserPartial struct {
	TrainingCompletedAt *string
	HasSignedAgreement  *bool
}

// merge overlays the facets of other onto p. Facets other does not carry are
// left untouched.
func (p UserPartial) merge(other UserPartial) UserPartial {
	if other.TrainingCompletedAt != nil {
		p.TrainingCompletedAt = other.TrainingCompletedAt
	}
	if other.HasSignedAgreement != nil {
		p.HasSignedAgreement = other.HasSignedAgreement
	}
	return p
}

// Study is the parent tier of the hierarchical pipeline, keyed by CaseRef.
// Pointer fields serialize as null when the source left them blank.
type Study struct {
	CaseRef                            string     `json:"caseref" yaml:"caseref"`
	OwnerUserID                        string     `json:"owner_user_id" yaml:"owner_user_id"`
	AdminUserID                        string     `json:"admin_user_id" yaml:"admin_user_id"`
	Title                              string     `json:"title" yaml:"title"`
	ApprovalStatus                     string     `json:"approval_status" yaml:"approval_status"`
	Description                        *string    `json:"description" yaml:"description"`
	DataControllerOrganisation         string     `json:"data_controller_organisation" yaml:"data_controller_organisation"`
	InvolvesUclSponsorship             bool       `json:"involves_ucl_sponsorship" yaml:"involves_ucl_sponsorship"`
	InvolvesCag                        bool       `json:"involves_cag" yaml:"involves_cag"`
	CagReference                       *string    `json:"cag_reference" yaml:"cag_reference"`
	InvolvesEthicsApproval             bool       `json:"involves_ethics_approval" yaml:"involves_ethics_approval"`
	InvolvesHraApproval                bool       `json:"involves_hra_approval" yaml:"involves_hra_approval"`
	IrasID                             *string    `json:"iras_id" yaml:"iras_id"`
	IsNhsAssociated                    bool       `json:"is_nhs_associated" yaml:"is_nhs_associated"`
	InvolvesNhsEngland                 bool       `json:"involves_nhs_england" yaml:"involves_nhs_england"`
	NhsEnglandReference                *string    `json:"nhs_england_reference" yaml:"nhs_england_reference"`
	InvolvesMnca                       bool       `json:"involves_mnca" yaml:"involves_mnca"`
	RequiresDspt                       bool       `json:"requires_dspt" yaml:"requires_dspt"`
	RequiresDbs                        bool       `json:"requires_dbs" yaml:"requires_dbs"`
	IsDataProtectionOfficeRegistered   *bool      `json:"is_data_protection_office_registered" yaml:"is_data_protection_office_registered"`
	DataProtectionNumber               *string    `json:"data_protection_number" yaml:"data_protection_number"`
	InvolvesThirdParty                 bool       `json:"involves_third_party" yaml:"involves_third_party"`
	InvolvesExternalUsers              bool       `json:"involves_external_users" yaml:"involves_external_users"`
	InvolvesParticipantConsent         bool       `json:"involves_participant_consent" yaml:"involves_participant_consent"`
	InvolvesIndirectDataCollection     bool       `json:"involves_indirect_data_collection" yaml:"involves_indirect_data_collection"`
	InvolvesDataProcessingOutsideUkEea bool       `json:"involves_data_processing_outside_uk_eea" yaml:"involves_data_processing_outside_uk_eea"`
	DshActive                          bool       `json:"dsh_active" yaml:"dsh_active"`
	LastSignoff                        *string    `json:"last_signoff" yaml:"last_signoff"`
	Feedback                           *string    `json:"feedback" yaml:"feedback"`
	Contracts                          []Contract `json:"contracts" yaml:"contracts"`
	Assets                             []Asset    `json:"assets" yaml:"assets"`
}

// Asset is a child of a Study via CaseRef. AssetSpID is an optional natural
// key: blank values are allowed and exempt from uniqueness checks.
type Asset struct {
	CreatorUserID        string  `json:"creator_userID" yaml:"creator_userID"`
	CaseRef              string  `json:"caseref" yaml:"caseref"`
	AssetSpID            string  `json:"asset_sp_id" yaml:"asset_sp_id"`
	Title                string  `json:"title" yaml:"title"`
	Description          string  `json:"description" yaml:"description"`
	ClassificationImpact string  `json:"classification_impact" yaml:"classification_impact"`
	Tier                 int     `json:"tier" yaml:"tier"`
	Protection           string  `json:"protection" yaml:"protection"`
	LegalBasis           string  `json:"legal_basis" yaml:"legal_basis"`
	Format               string  `json:"format" yaml:"format"`
	ExpiresAt            *string `json:"expires_at" yaml:"expires_at"`
	RequiresContract     bool    `json:"requires_contract" yaml:"requires_contract"`
	HasDspt              bool    `json:"has_dspt" yaml:"has_dspt"`
	StoredOutsideUkEea   bool    `json:"stored_outside_uk_eea" yaml:"stored_outside_uk_eea"`
	Status               string  `json:"status" yaml:"status"`
	Locations            *string `json:"locations" yaml:"locations"`
}

// Contract is a child of a Study via CaseRef. ContractSpID must be present
// and globally unique across all studies.
type Contract struct {
	CreatorUserID         string  `json:"creator_userID" yaml:"creator_userID"`
	CaseRef               string  `json:"caseref" yaml:"caseref"`
	ContractSpID          string  `json:"contract_sp_id" yaml:"contract_sp_id"`
	Filename              string  `json:"filename" yaml:"filename"`
	Status                string  `json:"status" yaml:"status"`
	StartDate             *string `json:"start_date" yaml:"start_date"`
	ExpiryDate            *string `json:"expiry_date" yaml:"expiry_date"`
	OrganisationSignatory *string `json:"organisation_signatory" yaml:"organisation_signatory"`
	ThirdPartyName        *string `json:"third_party_name" yaml:"third_party_name"`
	CreatorUsername       *string `json:"creator_username" yaml:"creator_username"`
}
