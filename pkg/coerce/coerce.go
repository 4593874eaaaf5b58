// Package coerce provides the field-level parsing rules shared by all source
// extractors. Every raw cell value passes through exactly one of these
// functions before it reaches a typed record, so absence is always an
// explicit ok=false rather than a value that formats badly downstream.
package coerce

import (
	"strings"
	"time"
)

// ISODate is the canonical date layout for all derived date fields.
const ISODate = "2006-01-02"

// flexibleDate is the day-first layout used by the source exports. The
// non-padded verbs accept both "05/03/2024" and "5/3/2024".
const flexibleDate = "2/1/2006"

// FlexibleDate parses a day/month/year date with '/' separators and returns
// it as an ISO YYYY-MM-DD string. Blank or unparseable input returns ok=false
// with no error; strict handling of unparseable non-blank input is the
// caller's policy, not this function's.
func FlexibleDate(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", false
	}
	t, err := time.Parse(flexibleDate, s)
	if err != nil {
		return "", false
	}
	return t.Format(ISODate), true
}

// ValidISODate reports whether text is exactly a YYYY-MM-DD string naming a
// real calendar date. The round-trip check rejects forms the time parser
// would otherwise tolerate, such as unpadded months.
func ValidISODate(text string) bool {
	t, err := time.Parse(ISODate, text)
	if err != nil {
		return false
	}
	return t.Format(ISODate) == text
}

// truthy is the fixed token set accepted as true.
var truthy = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
	"y":    true,
}

// Bool reports whether the trimmed, lowercased text is a truthy token.
// Everything else, including blank, is false.
func Bool(text string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(text))]
}

// Optional trims the text and returns it with ok=true, or ok=false when the
// result is blank.
func Optional(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", false
	}
	return s, true
}
