// Package emit serializes pipeline results. The reconciliation core hands
// over plain entity collections and issue lists; everything about encodings
// and terminals lives here.
package emit

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	"github.com/igtools/igmigrate/pkg/errors"
	"github.com/igtools/igmigrate/pkg/migrate"
)

// Format selects an output encoding.
type Format string

// Supported output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// DetectFormat resolves the issue-report format: an explicit format string is
// validated, an empty one auto-detects based on the terminal — tables for
// humans, JSON for pipes.
func DetectFormat(explicitFormat string) (Format, error) {
	if explicitFormat != "" {
		return ParseFormat(explicitFormat)
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatTable, nil
	}
	return FormatJSON, nil
}

// ParseFormat converts a string to a Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, "":
		return format, nil
	default:
		return "", errors.NewConfigError("output", fmt.Sprintf("unknown format %q", s), nil)
	}
}

// WriteUsersCSV writes merged user records in the import format the target
// system consumes: identity, has_signed_agreement as lowercase true/false,
// training date as ISO or empty. The importer expects no header row.
func WriteUsersCSV(w io.Writer, records []migrate.UserRecord) error {
	cw := csv.NewWriter(w)
	for _, rec := range records {
		row := []string{
			string(rec.Identity),
			strconv.FormatBool(rec.HasSignedAgreement),
			rec.TrainingCompletedAt,
		}
		if err := cw.Write(row); err != nil {
			return errors.WrapIO("write", "users import", err)
		}
	}
	cw.Flush()
	return errors.WrapIO("write", "users import", cw.Error())
}

// WriteStudies writes the study hierarchy as JSON (two-space indent, the
// importer's expected layout) or YAML.
func WriteStudies(w io.Writer, studies []migrate.Study, format Format) error {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(studies)
		if err != nil {
			return errors.WrapParse("yaml", "studies import", err)
		}
		_, err = w.Write(data)
		return errors.WrapIO("write", "studies import", err)
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return errors.WrapIO("write", "studies import", enc.Encode(studies))
	default:
		return errors.NewConfigError("output", fmt.Sprintf("format %q cannot encode studies", format), nil)
	}
}
