package migrate

import (
	"strconv"

	"github.com/igtools/igmigrate/pkg/coerce"
	"github.com/igtools/igmigrate/pkg/errors"
	"github.com/igtools/igmigrate/pkg/identity"
	"github.com/igtools/igmigrate/pkg/rows"
)

// Per-source skip/fail rules. Getting this boundary wrong silently corrupts
// the join, so each extractor states its rule up front:
//
//	training:  skip rows with neither "Other email" nor "UserID" (nothing to
//	           join on); any date that fails to parse becomes absent.
//	agreement: skip rows with blank "UserID" or blank "Approved".
//	studies:   blank "CaseRef" is a structural error.
//	assets:    blank "CaseRef" is a structural error; in strict mode a
//	           non-blank unparseable date is too.
//	contracts: same as assets, for both contract dates.

// ExtractTraining maps training rows to user partial records keyed by
// canonical identity. The external email wins over the user id when a row
// carries both.
func ExtractTraining(src rows.Source, cfg Config) (map[identity.Identity]UserPartial, error) {
	rr, err := src.Rows()
	if err != nil {
		return nil, err
	}

	parts := make(map[identity.Identity]UserPartial, len(rr))
	for _, row := range rr {
		var id identity.Identity
		if email, ok := coerce.Optional(row.Get("Other email")); ok {
			id = cfg.Identity.Normalize(email)
		} else if userID, ok := coerce.Optional(row.Get("UserID")); ok {
			id = cfg.Identity.Normalize(userID)
		} else {
			continue // nothing to join on
		}

		completedAt := ""
		if iso, ok := coerce.FlexibleDate(row.Get("LastTrained")); ok {
			completedAt = iso
		}
		parts[id] = UserPartial{TrainingCompletedAt: &completedAt}
	}
	return parts, nil
}

// ExtractAgreements maps agreement rows to user partial records keyed by
// canonical identity.
func ExtractAgreements(src rows.Source, cfg Config) (map[identity.Identity]UserPartial, error) {
	rr, err := src.Rows()
	if err != nil {
		return nil, err
	}

	parts := make(map[identity.Identity]UserPartial, len(rr))
	for _, row := range rr {
		userID, ok := coerce.Optional(row.Get("UserID"))
		if !ok {
			continue
		}
		approved, ok := coerce.Optional(row.Get("Approved"))
		if !ok {
			continue
		}

		signed := coerce.Bool(approved)
		parts[cfg.Identity.Normalize(userID)] = UserPartial{HasSignedAgreement: &signed}
	}
	return parts, nil
}

// ExtractStudies maps study rows to parent entities keyed by CaseRef. A row
// without a CaseRef cannot be joined and aborts the run. Duplicate CaseRefs
// collapse last-row-wins; the validator re-checks uniqueness downstream.
func ExtractStudies(src rows.Source, cfg Config) (map[string]Study, error) {
	rr, err := src.Rows()
	if err != nil {
		return nil, err
	}

	studies := make(map[string]Study, len(rr))
	for _, row := range rr {
		caseRef, ok := coerce.Optional(row.Get("CaseRef"))
		if !ok {
			return nil, errors.NewStructuralError(src.Name(), row.Line, "CaseRef", "study row missing CaseRef")
		}

		s := Study{
			CaseRef:                            caseRef,
			OwnerUserID:                        trimmed(row, "OwnerUserID"),
			AdminUserID:                        trimmed(row, "AdminUserID"),
			Title:                              trimmed(row, "Title"),
			ApprovalStatus:                     trimmed(row, "ApprovalStatus"),
			Description:                        optional(row, "Description"),
			DataControllerOrganisation:         trimmed(row, "DataControllerOrganisation"),
			InvolvesUclSponsorship:             coerce.Bool(row.Get("InvolvesUclSponsorship")),
			InvolvesCag:                        coerce.Bool(row.Get("InvolvesCag")),
			CagReference:                       optional(row, "CagReference"),
			InvolvesEthicsApproval:             coerce.Bool(row.Get("InvolvesEthicsApproval")),
			InvolvesHraApproval:                coerce.Bool(row.Get("InvolvesHraApproval")),
			IrasID:                             optional(row, "IrasId"),
			IsNhsAssociated:                    coerce.Bool(row.Get("IsNhsAssociated")),
			InvolvesNhsEngland:                 coerce.Bool(row.Get("InvolvesNhsEngland")),
			NhsEnglandReference:                optional(row, "NhsEnglandReference"),
			InvolvesMnca:                       coerce.Bool(row.Get("InvolvesMnca")),
			RequiresDspt:                       coerce.Bool(row.Get("RequiresDspt")),
			RequiresDbs:                        coerce.Bool(row.Get("RequiresDbs")),
			DataProtectionNumber:               optional(row, "DataProtectionNumber"),
			InvolvesThirdParty:                 coerce.Bool(row.Get("InvolvesThirdParty")),
			InvolvesExternalUsers:              coerce.Bool(row.Get("InvolvesExternalUsers")),
			InvolvesParticipantConsent:         coerce.Bool(row.Get("InvolvesParticipantConsent")),
			InvolvesIndirectDataCollection:     coerce.Bool(row.Get("InvolvesIndirectDataCollection")),
			InvolvesDataProcessingOutsideUkEea: coerce.Bool(row.Get("InvolvesDataProcessingOutsideUkEea")),
			DshActive:                          coerce.Bool(row.Get("DSHActive")),
			Feedback:                           optional(row, "Feedback"),
			Contracts:                          []Contract{},
			Assets:                             []Asset{},
		}

		// Registration with the data protection office is derived, not
		// sourced: holding a number implies registration, no number means
		// unknown rather than false.
		if s.DataProtectionNumber != nil {
			registered := true
			s.IsDataProtectionOfficeRegistered = &registered
		}

		if iso, ok := coerce.FlexibleDate(row.Get("IAOSignoff")); ok {
			s.LastSignoff = &iso
		}

		studies[caseRef] = s
	}
	return studies, nil
}

// ExtractAssets maps asset rows to child records grouped by their CaseRef
// foreign key. The foreign key string is trimmed but otherwise used verbatim,
// so it compares equal to the parent's CaseRef.
func ExtractAssets(src rows.Source, cfg Config) (map[string][]Asset, error) {
	rr, err := src.Rows()
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Asset)
	for _, row := range rr {
		caseRef, ok := coerce.Optional(row.Get("CaseRef"))
		if !ok {
			return nil, errors.NewStructuralError(src.Name(), row.Line, "CaseRef", "asset row missing CaseRef")
		}

		expiresAt, err := deriveDate(src.Name(), row, "Next Scheduled Review", cfg.StrictDates)
		if err != nil {
			return nil, err
		}

		tier, err := parseTier(src.Name(), row)
		if err != nil {
			return nil, err
		}

		grouped[caseRef] = append(grouped[caseRef], Asset{
			CreatorUserID:        trimmed(row, "Created By"),
			CaseRef:              caseRef,
			AssetSpID:            trimmed(row, "ID"),
			Title:                trimmed(row, "Description"),
			Description:          trimmed(row, "Description"),
			ClassificationImpact: trimmed(row, "Classification"),
			Tier:                 tier,
			Protection:           trimmed(row, "Impact Mitigation"),
			LegalBasis:           trimmed(row, "Legal Basis"),
			Format:               trimmed(row, "Format"),
			ExpiresAt:            expiresAt,
			RequiresContract:     coerce.Bool(row.Get("RequiresContract")),
			HasDspt:              coerce.Bool(row.Get("DSP Toolkit")),
			StoredOutsideUkEea:   coerce.Bool(row.Get("Outside EEA")),
			Status:               trimmed(row, "STATUS"),
			Locations:            optional(row, "Current Location"),
		})
	}
	return grouped, nil
}

// ExtractContracts maps contract rows to child records grouped by their
// CaseRef foreign key.
func ExtractContracts(src rows.Source, cfg Config) (map[string][]Contract, error) {
	rr, err := src.Rows()
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]Contract)
	for _, row := range rr {
		caseRef, ok := coerce.Optional(row.Get("CaseRef"))
		if !ok {
			return nil, errors.NewStructuralError(src.Name(), row.Line, "CaseRef", "contract row missing CaseRef")
		}

		startDate, err := deriveDate(src.Name(), row, "Agreement date", cfg.StrictDates)
		if err != nil {
			return nil, err
		}
		expiryDate, err := deriveDate(src.Name(), row, "Contract expiry or review date", cfg.StrictDates)
		if err != nil {
			return nil, err
		}

		grouped[caseRef] = append(grouped[caseRef], Contract{
			CreatorUserID:         trimmed(row, "Created By"),
			CaseRef:               caseRef,
			ContractSpID:          trimmed(row, "ID"),
			Filename:              trimmed(row, "Agreement Reference"),
			Status:                trimmed(row, "STATUS"),
			StartDate:             startDate,
			ExpiryDate:            expiryDate,
			OrganisationSignatory: optional(row, "UCL signatory"),
			ThirdPartyName:        optional(row, "Third party"),
			CreatorUsername:       optional(row, "CreatorUsername"),
		})
	}
	return grouped, nil
}

// deriveDate parses one flexible date column. Blank is absent. An
// unparseable non-blank value is absent in lenient mode and a structural
// error in strict mode.
func deriveDate(source string, row rows.Row, column string, strict bool) (*string, error) {
	raw, present := coerce.Optional(row.Get(column))
	if !present {
		return nil, nil
	}
	iso, ok := coerce.FlexibleDate(raw)
	if !ok {
		if strict {
			return nil, errors.NewStructuralError(source, row.Line, column,
				"invalid date format (expected DD/MM/YYYY): "+strconv.Quote(raw))
		}
		return nil, nil
	}
	return &iso, nil
}

// parseTier reads the asset tier, defaulting blank to 0.
func parseTier(source string, row rows.Row) (int, error) {
	raw, present := coerce.Optional(row.Get("Tier"))
	if !present {
		return 0, nil
	}
	tier, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewStructuralError(source, row.Line, "Tier", "invalid tier: "+strconv.Quote(raw))
	}
	return tier, nil
}

// trimmed returns the trimmed cell value, blank included.
func trimmed(row rows.Row, column string) string {
	s, _ := coerce.Optional(row.Get(column))
	return s
}

// optional returns the trimmed cell value, or nil when blank.
func optional(row rows.Row, column string) *string {
	s, ok := coerce.Optional(row.Get(column))
	if !ok {
		return nil
	}
	return &s
}
