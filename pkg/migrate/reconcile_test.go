package migrate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igtools/igmigrate/pkg/identity"
	"github.com/igtools/igmigrate/pkg/migrate"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

// The output identity set must equal the union of all input identity sets;
// no identity is dropped, and absent facets take their defaults.
func TestMergeUsersTotality(t *testing.T) {
	cfg := migrate.DefaultConfig()

	parts := map[migrate.SourceName]map[identity.Identity]migrate.UserPartial{
		migrate.SourceTraining: {
			"a@ucl.ac.uk": {TrainingCompletedAt: strp("2024-01-01")},
			"b@ucl.ac.uk": {TrainingCompletedAt: strp("")},
		},
		migrate.SourceAgreement: {
			"b@ucl.ac.uk": {HasSignedAgreement: boolp(true)},
			"c@ucl.ac.uk": {HasSignedAgreement: boolp(false)},
		},
	}

	merged, err := migrate.MergeUsers(cfg, parts)
	require.NoError(t, err)
	require.Len(t, merged, 3)

	a := merged["a@ucl.ac.uk"]
	assert.Equal(t, "2024-01-01", a.TrainingCompletedAt)
	assert.False(t, a.HasSignedAgreement) // agreement facet absent: default false

	b := merged["b@ucl.ac.uk"]
	assert.Equal(t, "", b.TrainingCompletedAt)
	assert.True(t, b.HasSignedAgreement)

	c := merged["c@ucl.ac.uk"]
	assert.Equal(t, "", c.TrainingCompletedAt) // training facet absent: default empty
	assert.False(t, c.HasSignedAgreement)
}

// When two sources supply the same facet, the source later in the
// precedence order wins, independent of map iteration order.
func TestMergeUsersPrecedence(t *testing.T) {
	cfg := migrate.DefaultConfig()
	cfg.Precedence = []migrate.SourceName{migrate.SourceTraining, migrate.SourceAgreement}

	parts := map[migrate.SourceName]map[identity.Identity]migrate.UserPartial{
		migrate.SourceTraining: {
			"x@ucl.ac.uk": {TrainingCompletedAt: strp("2020-01-01"), HasSignedAgreement: boolp(false)},
		},
		migrate.SourceAgreement: {
			"x@ucl.ac.uk": {HasSignedAgreement: boolp(true)},
		},
	}

	merged, err := migrate.MergeUsers(cfg, parts)
	require.NoError(t, err)

	x := merged["x@ucl.ac.uk"]
	assert.True(t, x.HasSignedAgreement, "agreement is later in precedence and must win")
	assert.Equal(t, "2020-01-01", x.TrainingCompletedAt, "unconflicted facet must survive")

	// Reversed precedence flips the winner.
	cfg.Precedence = []migrate.SourceName{migrate.SourceAgreement, migrate.SourceTraining}
	merged, err = migrate.MergeUsers(cfg, parts)
	require.NoError(t, err)
	assert.False(t, merged["x@ucl.ac.uk"].HasSignedAgreement)
}

func TestMergeUsersUnlistedSource(t *testing.T) {
	cfg := migrate.DefaultConfig()

	parts := map[migrate.SourceName]map[identity.Identity]migrate.UserPartial{
		"surprise": {"a@ucl.ac.uk": {}},
	}

	_, err := migrate.MergeUsers(cfg, parts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precedence")
}

// A study with two asset rows gets both; studies without children get empty
// collections, not nil.
func TestAttachChildren(t *testing.T) {
	studies := map[string]migrate.Study{
		"S1": {CaseRef: "S1"},
		"S2": {CaseRef: "S2"},
	}
	assets := map[string][]migrate.Asset{
		"S1": {{CaseRef: "S1", AssetSpID: "A-2"}, {CaseRef: "S1", AssetSpID: "A-1"}},
	}
	contracts := map[string][]migrate.Contract{
		"S1": {{CaseRef: "S1", ContractSpID: "C-1"}},
	}

	attached, issues := migrate.AttachChildren(studies, assets, contracts)
	assert.Empty(t, issues)

	require.Len(t, attached["S1"].Assets, 2)
	require.Len(t, attached["S1"].Contracts, 1)
	assert.NotNil(t, attached["S2"].Assets)
	assert.Empty(t, attached["S2"].Assets)
	assert.NotNil(t, attached["S2"].Contracts)
	assert.Empty(t, attached["S2"].Contracts)
}

// Children whose foreign key matches no study are absent from every study's
// collections, and each drop is reported. Whether dropping (rather than
// failing) is the right policy is an open stakeholder question; this pins
// the current behavior.
func TestAttachChildrenDropsOrphans(t *testing.T) {
	studies := map[string]migrate.Study{"S1": {CaseRef: "S1"}}
	assets := map[string][]migrate.Asset{
		"S9": {{CaseRef: "S9", AssetSpID: "A-orphan"}},
	}
	contracts := map[string][]migrate.Contract{
		"S9": {{CaseRef: "S9", ContractSpID: "C-orphan"}},
	}

	attached, issues := migrate.AttachChildren(studies, assets, contracts)

	assert.Empty(t, attached["S1"].Assets)
	assert.Empty(t, attached["S1"].Contracts)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0], "A-orphan")
	assert.Contains(t, issues[0], "S9")
	assert.Contains(t, issues[1], "C-orphan")
}
