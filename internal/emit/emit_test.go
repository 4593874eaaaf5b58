package emit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igtools/igmigrate/internal/emit"
	"github.com/igtools/igmigrate/pkg/logging"
	"github.com/igtools/igmigrate/pkg/migrate"
	"github.com/igtools/igmigrate/pkg/rows"
)

func TestWriteUsersCSV(t *testing.T) {
	records := []migrate.UserRecord{
		{Identity: "a@ucl.ac.uk", HasSignedAgreement: true, TrainingCompletedAt: "2024-03-05"},
		{Identity: "b@ucl.ac.uk"},
	}

	var buf bytes.Buffer
	require.NoError(t, emit.WriteUsersCSV(&buf, records))

	// The import format has no header row, lowercase booleans, and an empty
	// cell for an absent training date.
	want := "a@ucl.ac.uk,true,2024-03-05\nb@ucl.ac.uk,false,\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteStudiesJSON(t *testing.T) {
	expiry := "2026-02-01"
	studies := []migrate.Study{
		{
			CaseRef:   "S1",
			Title:     "First",
			Contracts: []migrate.Contract{{ContractSpID: "C-1", CaseRef: "S1", ExpiryDate: &expiry}},
			Assets:    []migrate.Asset{},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, emit.WriteStudies(&buf, studies, emit.FormatJSON))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "S1", decoded[0]["caseref"])

	// Optional fields serialize as explicit nulls, matching the importer's
	// expectations.
	assert.Contains(t, buf.String(), `"description": null`)
	assert.Contains(t, buf.String(), `"expiry_date": "2026-02-01"`)
	assert.Contains(t, buf.String(), "  ") // two-space indent
}

func TestWriteStudiesYAML(t *testing.T) {
	studies := []migrate.Study{{CaseRef: "S1", Title: "First"}}

	var buf bytes.Buffer
	require.NoError(t, emit.WriteStudies(&buf, studies, emit.FormatYAML))
	assert.Contains(t, buf.String(), "caseref: S1")
}

// Running the pipeline twice on the same rows in different order must emit
// byte-identical documents.
func TestWriteStudiesByteIdenticalAcrossRuns(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())
	cfg := migrate.DefaultConfig()

	studyRows := []map[string]string{
		{"CaseRef": "S1", "Title": "First"},
		{"CaseRef": "S2", "Title": "Second"},
	}
	assetRows := []map[string]string{
		{"CaseRef": "S1", "ID": "A-1", "Description": "alpha"},
		{"CaseRef": "S1", "ID": "A-2", "Description": "beta"},
		{"CaseRef": "S2", "ID": "A-3", "Description": "gamma"},
	}

	render := func(sr, ar []map[string]string) string {
		result, err := migrate.Studies(ctx, cfg,
			rows.NewStatic("studies", sr...),
			rows.NewStatic("assets", ar...),
			rows.NewStatic("contracts"),
		)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, emit.WriteStudies(&buf, result.Studies, emit.FormatJSON))
		return buf.String()
	}

	first := render(studyRows, assetRows)
	second := render(
		[]map[string]string{studyRows[1], studyRows[0]},
		[]map[string]string{assetRows[2], assetRows[0], assetRows[1]},
	)
	assert.Equal(t, first, second)
}

func TestWriteIssuesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emit.WriteIssues(&buf, []string{"Duplicate contract_sp_id: C-1"}, emit.FormatTable))

	// Header cells keep their title casing; tablewriter's default header
	// uppercasing is disabled.
	out := buf.String()
	assert.Contains(t, out, "Issue")
	assert.NotContains(t, out, "ISSUE")
	assert.Contains(t, out, "Duplicate contract_sp_id: C-1")
}

func TestWriteIssuesTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emit.WriteIssues(&buf, nil, emit.FormatTable))
	assert.Equal(t, "No issues found.\n", buf.String())
}

func TestWriteIssuesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, emit.WriteIssues(&buf, nil, emit.FormatJSON))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))

	buf.Reset()
	require.NoError(t, emit.WriteIssues(&buf, []string{"a", "b"}, emit.FormatJSON))

	var decoded []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []string{"a", "b"}, decoded)
}

func TestDetectFormatRejectsUnknown(t *testing.T) {
	// An explicit format goes through the same validation as --format on the
	// pipeline subcommands instead of silently falling back to a table.
	_, err := emit.DetectFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")

	format, err := emit.DetectFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, emit.FormatYAML, format)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", "yaml", ""} {
		_, err := emit.ParseFormat(s)
		assert.NoError(t, err, "format %q should parse", s)
	}

	_, err := emit.ParseFormat("xml")
	assert.Error(t, err)
}
