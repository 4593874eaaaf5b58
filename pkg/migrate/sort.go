package migrate

import (
	"slices"
	"strings"

	"github.com/igtools/igmigrate/pkg/identity"
)

// The sorter is the reproducibility guarantee of the whole system: given the
// same input rows in any order, the sorted output is byte-identical across
// runs. All comparisons are ordinal string comparisons, so blank keys sort
// first.

// SortUsers orders merged user records by identity ascending.
func SortUsers(records map[identity.Identity]UserRecord) []UserRecord {
	out := make([]UserRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b UserRecord) int {
		return strings.Compare(string(a.Identity), string(b.Identity))
	})
	return out
}

// SortStudies orders studies by CaseRef ascending and gives every nested
// collection its documented composite order: assets by (asset_sp_id, title),
// contracts by (contract_sp_id, filename).
func SortStudies(studies map[string]Study) []Study {
	out := make([]Study, 0, len(studies))
	for _, s := range studies {
		slices.SortStableFunc(s.Assets, compareAssets)
		slices.SortStableFunc(s.Contracts, compareContracts)
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b Study) int {
		return strings.Compare(a.CaseRef, b.CaseRef)
	})
	return out
}

func compareAssets(a, b Asset) int {
	if c := strings.Compare(a.AssetSpID, b.AssetSpID); c != 0 {
		return c
	}
	return strings.Compare(a.Title, b.Title)
}

func compareContracts(a, b Contract) int {
	if c := strings.Compare(a.ContractSpID, b.ContractSpID); c != 0 {
		return c
	}
	return strings.Compare(a.Filename, b.Filename)
}
