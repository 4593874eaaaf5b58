package migrate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igtools/igmigrate/pkg/migrate"
)

func TestValidateStudiesClean(t *testing.T) {
	studies := []migrate.Study{
		{
			CaseRef:     "S1",
			LastSignoff: strp("2023-12-25"),
			Assets:      []migrate.Asset{{AssetSpID: "A-1", ExpiresAt: strp("2025-06-01")}},
			Contracts:   []migrate.Contract{{ContractSpID: "C-1", StartDate: strp("2023-02-01")}},
		},
		{CaseRef: "S2"},
	}

	assert.Empty(t, migrate.ValidateStudies(studies, true))
}

// Two contract rows sharing a non-blank id produce exactly one duplicate
// issue naming the id.
func TestValidateStudiesDuplicateContract(t *testing.T) {
	studies := []migrate.Study{
		{CaseRef: "S1", Contracts: []migrate.Contract{{ContractSpID: "C-1"}}},
		{CaseRef: "S2", Contracts: []migrate.Contract{{ContractSpID: "C-1"}}},
	}

	issues := migrate.ValidateStudies(studies, false)
	require.Len(t, issues, 1)
	assert.Equal(t, "Duplicate contract_sp_id: C-1", issues[0])
}

func TestValidateStudiesAssetUniqueness(t *testing.T) {
	// Blank asset ids are exempt from the global uniqueness check; non-blank
	// ids are checked across studies.
	studies := []migrate.Study{
		{CaseRef: "S1", Assets: []migrate.Asset{{AssetSpID: ""}, {AssetSpID: "A-1"}}},
		{CaseRef: "S2", Assets: []migrate.Asset{{AssetSpID: ""}, {AssetSpID: "A-1"}}},
	}

	issues := migrate.ValidateStudies(studies, false)
	require.Len(t, issues, 1)
	assert.Equal(t, "Duplicate asset_sp_id: A-1", issues[0])
}

func TestValidateStudiesMissingKeys(t *testing.T) {
	studies := []migrate.Study{
		{CaseRef: ""},
		{CaseRef: "S1", Contracts: []migrate.Contract{{ContractSpID: ""}}},
		{CaseRef: "S1"},
	}

	issues := migrate.ValidateStudies(studies, false)
	assert.Contains(t, issues, "Study missing CaseRef")
	assert.Contains(t, issues, "Study S1: contract missing contract_sp_id")
	assert.Contains(t, issues, "Duplicate CaseRef in merged data: S1")
}

func TestValidateStudiesStrictDates(t *testing.T) {
	studies := []migrate.Study{
		{
			CaseRef:     "S1",
			LastSignoff: strp("25/12/2023"),
			Assets:      []migrate.Asset{{AssetSpID: "A-1", ExpiresAt: strp("June 2025")}},
			Contracts: []migrate.Contract{{
				ContractSpID: "C-1",
				StartDate:    strp("2023-2-01"), // unpadded month is not canonical
				ExpiryDate:   strp("2026-02-01"),
			}},
		},
	}

	issues := migrate.ValidateStudies(studies, true)
	assert.Contains(t, issues, "Study S1 invalid last_signoff: 25/12/2023")
	assert.Contains(t, issues, "Study S1: contract C-1 invalid start_date: 2023-2-01")
	assert.Contains(t, issues, "Study S1: asset A-1 invalid expires_at: June 2025")
	assert.Len(t, issues, 3)

	// Lenient mode reports none of these.
	assert.Empty(t, migrate.ValidateStudies(studies, false))
}

func TestValidateUsers(t *testing.T) {
	records := []migrate.UserRecord{
		{Identity: "a@ucl.ac.uk", TrainingCompletedAt: "2024-01-01"},
		{Identity: "a@ucl.ac.uk"},
		{Identity: ""},
		{Identity: "b@ucl.ac.uk", TrainingCompletedAt: "01/01/2024"},
	}

	issues := migrate.ValidateUsers(records, true)
	assert.Contains(t, issues, "Duplicate identity in merged data: a@ucl.ac.uk")
	assert.Contains(t, issues, "User record missing identity")
	assert.Contains(t, issues, "User b@ucl.ac.uk invalid training_completed_at: 01/01/2024")
	assert.Len(t, issues, 3)
}
