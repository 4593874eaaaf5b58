package migrate

import (
	"fmt"
	"slices"

	"github.com/igtools/igmigrate/pkg/errors"
	"github.com/igtools/igmigrate/pkg/identity"
)

// MergeUsers performs the flat outer join of the users pipeline. The result
// key set is the union of every source's key set; no identity is dropped.
// When two sources supply the same facet for one identity, the source later
// in cfg.Precedence wins. Every source present in parts must appear in the
// precedence order, otherwise the conflict rule would silently depend on map
// iteration order.
func MergeUsers(cfg Config, parts map[SourceName]map[identity.Identity]UserPartial) (map[identity.Identity]UserRecord, error) {
	names := make([]SourceName, 0, len(parts))
	for sn := range parts {
		if cfg.precedenceIndex(sn) < 0 {
			return nil, errors.NewConfigError("precedence",
				fmt.Sprintf("source %s has no precedence position", sn), nil)
		}
		names = append(names, sn)
	}
	slices.SortFunc(names, func(a, b SourceName) int {
		return cfg.precedenceIndex(a) - cfg.precedenceIndex(b)
	})

	merged := make(map[identity.Identity]UserPartial)
	for _, sn := range names {
		for id, part := range parts[sn] {
			merged[id] = merged[id].merge(part)
		}
	}

	// Materialize with documented defaults: unsigned, no training date.
	records := make(map[identity.Identity]UserRecord, len(merged))
	for id, part := range merged {
		rec := UserRecord{Identity: id}
		if part.HasSignedAgreement != nil {
			rec.HasSignedAgreement = *part.HasSignedAgreement
		}
		if part.TrainingCompletedAt != nil {
			rec.TrainingCompletedAt = *part.TrainingCompletedAt
		}
		records[id] = rec
	}
	return records, nil
}

// AttachChildren populates each study's child collections from the
// by-foreign-key indexes the extractors built. Studies without children get
// empty collections. Children whose CaseRef matches no study are dropped
// from the output; each dropped child is reported as a data-quality issue so
// the drop is never silent.
func AttachChildren(studies map[string]Study, assets map[string][]Asset, contracts map[string][]Contract) (map[string]Study, []string) {
	attached := make(map[string]Study, len(studies))
	for caseRef, study := range studies {
		study.Assets = append([]Asset{}, assets[caseRef]...)
		study.Contracts = append([]Contract{}, contracts[caseRef]...)
		attached[caseRef] = study
	}

	var issues []string
	for _, caseRef := range sortedKeys(assets) {
		if _, ok := studies[caseRef]; ok {
			continue
		}
		for _, a := range assets[caseRef] {
			issues = append(issues, fmt.Sprintf("Dropped asset %q: no study with CaseRef %s", a.AssetSpID, caseRef))
		}
	}
	for _, caseRef := range sortedKeys(contracts) {
		if _, ok := studies[caseRef]; ok {
			continue
		}
		for _, c := range contracts[caseRef] {
			issues = append(issues, fmt.Sprintf("Dropped contract %q: no study with CaseRef %s", c.ContractSpID, caseRef))
		}
	}
	return attached, issues
}

// sortedKeys returns the map keys in ascending ordinal order so issue output
// is reproducible.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
