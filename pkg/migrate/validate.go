package migrate

import (
	"fmt"

	"github.com/igtools/igmigrate/pkg/coerce"
)

// The validator walks the sorted output once and collects every problem it
// finds as an independent human-readable issue string. Data-quality problems
// never raise; whether a non-empty issue list blocks emission is the
// caller's decision.

// ValidateStudies checks the merged study hierarchy:
//
//   - CaseRef present and unique (re-checked even though the merge is keyed
//     by it, to catch reconciliation bugs upstream);
//   - contract_sp_id present and unique globally across all studies;
//   - asset_sp_id unique globally across all studies when non-blank;
//   - with strictDates, every populated date field must be canonical ISO.
func ValidateStudies(studies []Study, strictDates bool) []string {
	var issues []string
	seenCase := make(map[string]bool)
	seenAsset := make(map[string]bool)
	seenContract := make(map[string]bool)

	for _, s := range studies {
		switch {
		case s.CaseRef == "":
			issues = append(issues, "Study missing CaseRef")
		case seenCase[s.CaseRef]:
			issues = append(issues, fmt.Sprintf("Duplicate CaseRef in merged data: %s", s.CaseRef))
		default:
			seenCase[s.CaseRef] = true
		}

		if strictDates {
			issues = append(issues, checkISO("Study "+s.CaseRef, "last_signoff", s.LastSignoff)...)
		}

		for _, c := range s.Contracts {
			switch {
			case c.ContractSpID == "":
				issues = append(issues, fmt.Sprintf("Study %s: contract missing contract_sp_id", s.CaseRef))
			case seenContract[c.ContractSpID]:
				issues = append(issues, fmt.Sprintf("Duplicate contract_sp_id: %s", c.ContractSpID))
			default:
				seenContract[c.ContractSpID] = true
			}
			if strictDates {
				owner := fmt.Sprintf("Study %s: contract %s", s.CaseRef, c.ContractSpID)
				issues = append(issues, checkISO(owner, "start_date", c.StartDate)...)
				issues = append(issues, checkISO(owner, "expiry_date", c.ExpiryDate)...)
			}
		}

		for _, a := range s.Assets {
			if a.AssetSpID != "" {
				if seenAsset[a.AssetSpID] {
					issues = append(issues, fmt.Sprintf("Duplicate asset_sp_id: %s", a.AssetSpID))
				} else {
					seenAsset[a.AssetSpID] = true
				}
			}
			if strictDates {
				owner := fmt.Sprintf("Study %s: asset %s", s.CaseRef, a.AssetSpID)
				issues = append(issues, checkISO(owner, "expires_at", a.ExpiresAt)...)
			}
		}
	}
	return issues
}

// ValidateUsers checks the flat-merged user records: identity present and
// unique, and with strictDates every populated training date canonical ISO.
func ValidateUsers(records []UserRecord, strictDates bool) []string {
	var issues []string
	seen := make(map[string]bool)

	for _, rec := range records {
		id := string(rec.Identity)
		switch {
		case id == "":
			issues = append(issues, "User record missing identity")
		case seen[id]:
			issues = append(issues, fmt.Sprintf("Duplicate identity in merged data: %s", id))
		default:
			seen[id] = true
		}

		if strictDates && rec.TrainingCompletedAt != "" {
			date := rec.TrainingCompletedAt
			issues = append(issues, checkISO("User "+id, "training_completed_at", &date)...)
		}
	}
	return issues
}

// checkISO produces one issue when a populated date field is not canonical
// ISO form. Absent and blank fields pass.
func checkISO(owner, field string, value *string) []string {
	if value == nil || *value == "" {
		return nil
	}
	if coerce.ValidISODate(*value) {
		return nil
	}
	return []string{fmt.Sprintf("%s invalid %s: %s", owner, field, *value)}
}
