package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/igtools/igmigrate/pkg/errors"
)

// issueColumns are the report's column names; they are title-cased for the
// table header.
var issueColumns = []string{"#", "issue"}

// WriteIssues renders the validation issue report. An empty list renders a
// short all-clear line in table mode and an empty collection otherwise.
func WriteIssues(w io.Writer, issues []string, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if issues == nil {
			issues = []string{}
		}
		return errors.WrapIO("write", "issue report", enc.Encode(issues))
	case FormatYAML:
		if issues == nil {
			issues = []string{}
		}
		data, err := yaml.Marshal(issues)
		if err != nil {
			return errors.WrapParse("yaml", "issue report", err)
		}
		_, err = w.Write(data)
		return errors.WrapIO("write", "issue report", err)
	default:
		return writeIssueTable(w, issues)
	}
}

func writeIssueTable(w io.Writer, issues []string) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(w, "No issues found.")
		return errors.WrapIO("write", "issue report", err)
	}

	// Header cells are title-cased below; tablewriter's own header casing
	// would uppercase them again, so it is switched off.
	config := tablewriter.Config{}
	config.Header.Formatting.AutoFormat = tw.Off
	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	title := cases.Title(language.English)
	headers := make([]any, len(issueColumns))
	for i, c := range issueColumns {
		headers[i] = title.String(c)
	}
	table.Header(headers...)

	for i, issue := range issues {
		if err := table.Append(strconv.Itoa(i+1), issue); err != nil {
			return errors.WrapIO("write", "issue report", err)
		}
	}
	return errors.WrapIO("write", "issue report", table.Render())
}

// Summary writes the one-line wrap-up the subcommands print after emission.
func Summary(w io.Writer, what string, entities int, issues []string) error {
	_, err := fmt.Fprintf(w, "Wrote %d %s with %d issue(s)\n", entities, what, len(issues))
	return errors.WrapIO("write", "summary", err)
}
